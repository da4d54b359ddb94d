package service

import (
	"sync"

	"github.com/okian/oche/internal/domain/types"
	"github.com/okian/oche/pkg/metrics"
)

// hub fans game updates out to stream subscribers. A subscriber that falls
// behind loses updates rather than stalling the game. Only games that were
// opened and not yet closed accept subscribers.
type hub struct {
	mu     sync.Mutex
	buffer int
	open   map[string]struct{}
	subs   map[string]map[*subscriber]struct{}
}

type subscriber struct {
	ch     chan types.Update
	closed bool
}

func newHub(buffer int) *hub {
	return &hub{
		buffer: buffer,
		open:   make(map[string]struct{}),
		subs:   make(map[string]map[*subscriber]struct{}),
	}
}

// openGame lets a game accept subscribers until closeGame.
func (h *hub) openGame(gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.open[gameID] = struct{}{}
}

// subscribe registers a subscriber whose first update is initial. It
// returns false when the game is not open.
func (h *hub) subscribe(gameID string, initial types.Update) (<-chan types.Update, func(), bool) {
	sub := &subscriber{ch: make(chan types.Update, h.buffer+1)}
	sub.ch <- initial

	h.mu.Lock()
	if _, ok := h.open[gameID]; !ok {
		h.mu.Unlock()
		return nil, nil, false
	}
	if h.subs[gameID] == nil {
		h.subs[gameID] = make(map[*subscriber]struct{})
	}
	h.subs[gameID][sub] = struct{}{}
	h.mu.Unlock()
	metrics.StreamClientConnected()

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.removeLocked(gameID, sub)
		})
	}, true
}

// publish returns how many subscribers dropped the update.
func (h *hub) publish(u types.Update) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	dropped := 0
	for sub := range h.subs[u.GameID] {
		select {
		case sub.ch <- u:
		default:
			dropped++
		}
	}
	return dropped
}

// closeGame disconnects every subscriber of a game and refuses new ones.
func (h *hub) closeGame(gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.open, gameID)
	for sub := range h.subs[gameID] {
		h.removeLocked(gameID, sub)
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	clear(h.open)
	for gameID, subs := range h.subs {
		for sub := range subs {
			h.removeLocked(gameID, sub)
		}
	}
}

func (h *hub) removeLocked(gameID string, sub *subscriber) {
	if sub.closed {
		return
	}
	sub.closed = true
	close(sub.ch)
	delete(h.subs[gameID], sub)
	if len(h.subs[gameID]) == 0 {
		delete(h.subs, gameID)
	}
	metrics.StreamClientDisconnected()
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, subs := range h.subs {
		n += len(subs)
	}
	return n
}
