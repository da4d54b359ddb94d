// Package types contains the views shared by the service and the HTTP API.
package types

import (
	"time"

	"github.com/okian/oche/internal/domain/aiming"
	"github.com/okian/oche/internal/domain/geometry"
	"github.com/okian/oche/internal/domain/match"
)

// Game is the public view of one game.
type Game struct {
	ID        string         `json:"id"`
	Variant   aiming.Variant `json:"variant"`
	CreatedAt time.Time      `json:"created_at"`
	Match     match.Snapshot `json:"match"`
	Aim       aiming.State   `json:"aim"`
	// Pending counts throws emitted but not yet applied to the match.
	Pending   int    `json:"pending"`
	LastThrow *Throw `json:"last_throw,omitempty"`
}

// NewGame describes a game to create. Zero values take the service
// defaults.
type NewGame struct {
	Players int      `json:"players"`
	Names   []string `json:"names,omitempty"`
	Colors  []string `json:"colors,omitempty"`
	Variant string   `json:"variant,omitempty"`
}

// Pointer event types accepted by drag games.
const (
	PointerDown = "down"
	PointerMove = "move"
	PointerUp   = "up"
)

// PointerEvent is one pointer sample in device pixels.
type PointerEvent struct {
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// AimResult reports whether an aim input was taken and the state after it.
type AimResult struct {
	Accepted bool         `json:"accepted"`
	Aim      aiming.State `json:"aim"`
}

// Entry is one row of a game's ranking.
type Entry struct {
	Rank      int    `json:"rank"`
	PlayerID  int    `json:"player_id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	Remaining int    `json:"remaining"`
	Throws    int    `json:"throws"`
}

// Throw is a throw after it was applied to the match.
type Throw struct {
	ThrowID   string         `json:"throw_id"`
	Seq       uint64         `json:"seq"`
	Impact    geometry.Point `json:"impact"`
	Points    int            `json:"points"`
	Ring      string         `json:"ring"`
	Distance  float64        `json:"distance"`
	Result    match.Result   `json:"result"`
	AppliedAt time.Time      `json:"applied_at"`
}

// Score is the score of an arbitrary board point. Band names the ring.
type Score struct {
	Points   int     `json:"points"`
	Band     string  `json:"band"`
	Distance float64 `json:"distance"`
}

// Stats describes the running service.
type Stats struct {
	Started       bool  `json:"started"`
	Games         int   `json:"games"`
	WorkerCount   int   `json:"worker_count"`
	QueueLength   int   `json:"queue_length"`
	QueueCapacity int   `json:"queue_capacity"`
	DedupeSize    int64 `json:"dedupe_size"`
	Subscribers   int   `json:"subscribers"`
}

// Update types sent to stream subscribers.
const (
	UpdateAim   = "aim"
	UpdateThrow = "throw"
	UpdateGame  = "game"
)

// Update is one message of a game's live stream. Exactly one payload field
// is set, matching Type.
type Update struct {
	Type   string        `json:"type"`
	GameID string        `json:"game_id"`
	Aim    *aiming.State `json:"aim,omitempty"`
	Throw  *Throw        `json:"throw,omitempty"`
	Game   *Game         `json:"game,omitempty"`
}

// Ranking converts match players, already ordered, into ranked entries.
// Players with equal remaining scores share a rank.
func Ranking(players []match.Player) []Entry {
	out := make([]Entry, len(players))
	for i, p := range players {
		rank := i + 1
		if i > 0 && p.Remaining == players[i-1].Remaining {
			rank = out[i-1].Rank
		}
		out[i] = Entry{
			Rank:      rank,
			PlayerID:  p.ID,
			Name:      p.Name,
			Color:     p.Color,
			Remaining: p.Remaining,
			Throws:    p.Throws,
		}
	}
	return out
}
