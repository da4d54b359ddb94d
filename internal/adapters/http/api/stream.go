package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"github.com/okian/oche/internal/domain/types"
	"github.com/okian/oche/pkg/logger"
)

// Stream connection timings.
const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 25 * time.Second
	readLimit  = 1 << 10
)

// StreamDependencies defines the interface for live game updates.
type StreamDependencies interface {
	Subscribe(ctx context.Context, id string) (<-chan types.Update, func(), error)
}

// StreamHandler upgrades requests to WebSocket and forwards game updates.
// Clients only receive; anything they send is discarded.
type StreamHandler struct {
	deps     StreamDependencies
	upgrader websocket.Upgrader
	logger   logger.Logger
}

// NewStreamHandler creates a new stream handler.
func NewStreamHandler(deps StreamDependencies) *StreamHandler {
	return &StreamHandler{
		deps: deps,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger.Get().Named("stream"),
	}
}

// HandleStream handles GET /games/:id/stream requests.
func (h *StreamHandler) HandleStream(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	updates, cancel, err := h.deps.Subscribe(r.Context(), id)
	if err != nil {
		writeError(w, Wrap("api.stream", err))
		return
	}
	defer cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client.
		h.logger.Warn(r.Context(), "stream upgrade failed", logger.String("game", id), logger.Error(err))
		return
	}
	defer conn.Close()

	conn.SetReadLimit(readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case u, ok := <-updates:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "game closed"))
				return
			}
			if err := conn.WriteJSON(u); err != nil {
				h.logger.Debug(r.Context(), "stream write failed", logger.String("game", id), logger.Error(err))
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
