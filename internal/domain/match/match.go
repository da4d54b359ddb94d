// Package match implements the countdown game played with the darts: each
// player starts at the target score, throws a fixed number of darts per
// turn, and the first to land exactly on zero wins. A throw that would go
// below zero is a bust and leaves the score unchanged.
//
// A Match is not safe for concurrent use; callers serialize access.
package match

import (
	"fmt"
	"sort"
	"strings"
)

const (
	MinPlayers           = 2
	MaxPlayers           = 4
	DefaultTargetScore   = 501
	DefaultThrowsPerTurn = 3
)

// DefaultColors is the seat palette.
var DefaultColors = []string{"#FF6B6B", "#4ECDC4", "#45B7D1", "#96CEB4"}

// Player is one seat at the board.
type Player struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	Remaining int    `json:"remaining"`
	Throws    int    `json:"throws"`
}

// Outcome classifies a recorded throw.
type Outcome int

const (
	OutcomeScored Outcome = iota
	OutcomeBust
	OutcomeWin
)

func (o Outcome) String() string {
	switch o {
	case OutcomeScored:
		return "scored"
	case OutcomeBust:
		return "bust"
	case OutcomeWin:
		return "win"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// MarshalText implements encoding.TextMarshaler.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Result describes what a throw did to the match.
type Result struct {
	PlayerID  int     `json:"player_id"`
	Points    int     `json:"points"`
	Outcome   Outcome `json:"outcome"`
	Remaining int     `json:"remaining"`
	// TurnOver is set when this throw passed the turn to the next player.
	TurnOver bool `json:"turn_over"`
}

// Snapshot is a copy of the match state.
type Snapshot struct {
	Players       []Player `json:"players"`
	Current       int      `json:"current"`
	ThrowsInTurn  int      `json:"throws_in_turn"`
	ThrowsPerTurn int      `json:"throws_per_turn"`
	TargetScore   int      `json:"target_score"`
	Ended         bool     `json:"ended"`
	Winner        *Player  `json:"winner,omitempty"`
	Attempts      int      `json:"attempts"`
}

// Match is the turn and score state machine.
type Match struct {
	target  int
	perTurn int
	names   []string
	colors  []string

	players      []Player
	current      int
	throwsInTurn int
	ended        bool
	winner       int
	attempts     int
}

// New seats the given number of players.
func New(players int, opts ...Option) (*Match, error) {
	if players < MinPlayers || players > MaxPlayers {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPlayerCount, players)
	}
	m := &Match{
		target:  DefaultTargetScore,
		perTurn: DefaultThrowsPerTurn,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.players = make([]Player, players)
	for i := range m.players {
		m.players[i] = Player{
			ID:    i + 1,
			Name:  pick(m.names, i, fmt.Sprintf("Player %d", i+1)),
			Color: pick(m.colors, i, DefaultColors[i%len(DefaultColors)]),
		}
	}
	m.Restart()
	return m, nil
}

func pick(values []string, i int, fallback string) string {
	if i < len(values) {
		if v := strings.TrimSpace(values[i]); v != "" {
			return v
		}
	}
	return fallback
}

// Record applies one throw worth points to the current player.
func (m *Match) Record(points int) (Result, error) {
	if m.ended {
		return Result{}, ErrMatchOver
	}
	if points < 0 {
		return Result{}, fmt.Errorf("%w: %d", ErrInvalidPoints, points)
	}

	m.attempts++
	p := &m.players[m.current]
	res := Result{PlayerID: p.ID, Points: points}

	if left := p.Remaining - points; left >= 0 {
		p.Remaining = left
		p.Throws++
		res.Outcome = OutcomeScored
		if left == 0 {
			m.ended = true
			m.winner = m.current
			res.Outcome = OutcomeWin
		}
	} else {
		res.Outcome = OutcomeBust
	}
	res.Remaining = p.Remaining

	if !m.ended {
		m.throwsInTurn++
		if m.throwsInTurn >= m.perTurn {
			m.nextTurn()
			res.TurnOver = true
		}
	}
	return res, nil
}

// Skip ends the current turn early. At least one dart must have been thrown
// in it.
func (m *Match) Skip() error {
	if m.ended {
		return ErrMatchOver
	}
	if m.throwsInTurn == 0 {
		return ErrTurnNotStarted
	}
	m.nextTurn()
	return nil
}

// Restart keeps the roster and resets scores and turn order.
func (m *Match) Restart() {
	for i := range m.players {
		m.players[i].Remaining = m.target
		m.players[i].Throws = 0
	}
	m.current = 0
	m.throwsInTurn = 0
	m.ended = false
	m.winner = -1
	m.attempts = 0
}

func (m *Match) nextTurn() {
	m.current = (m.current + 1) % len(m.players)
	m.throwsInTurn = 0
}

// Ended reports whether a player has won.
func (m *Match) Ended() bool { return m.ended }

// Current returns the player whose turn it is.
func (m *Match) Current() Player { return m.players[m.current] }

// Winner returns the winning player once the match has ended.
func (m *Match) Winner() (Player, bool) {
	if !m.ended {
		return Player{}, false
	}
	return m.players[m.winner], true
}

// Ranking orders players by remaining score, closest to zero first. Ties
// keep seat order.
func (m *Match) Ranking() []Player {
	out := append([]Player(nil), m.players...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Remaining < out[j].Remaining
	})
	return out
}

// Snapshot returns a copy of the current state.
func (m *Match) Snapshot() Snapshot {
	s := Snapshot{
		Players:       append([]Player(nil), m.players...),
		Current:       m.current,
		ThrowsInTurn:  m.throwsInTurn,
		ThrowsPerTurn: m.perTurn,
		TargetScore:   m.target,
		Ended:         m.ended,
		Attempts:      m.attempts,
	}
	if w, ok := m.Winner(); ok {
		s.Winner = &w
	}
	return s
}
