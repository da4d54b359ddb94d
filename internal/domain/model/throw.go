// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/okian/oche/internal/domain/aiming"
	"github.com/okian/oche/internal/domain/geometry"
)

// Throw is one dart that left an aim session and waits to be scored.
type Throw struct {
	ThrowID string         // unique id for idempotency
	GameID  string         // game the dart was thrown in
	Seq     uint64         // 1-based emission order within the game
	Impact  geometry.Point // where the dart landed
	Variant aiming.Variant // controller that produced it
	TS      time.Time      // emission time
}

// NewThrow stamps an impact with a fresh id and the current time.
func NewThrow(gameID string, seq uint64, impact geometry.Point, v aiming.Variant) Throw {
	return Throw{
		ThrowID: uuid.NewString(),
		GameID:  gameID,
		Seq:     seq,
		Impact:  impact,
		Variant: v,
		TS:      time.Now(),
	}
}

// ScoredThrow is a throw together with its score.
type ScoredThrow struct {
	Throw
	Points   int
	Ring     string
	Distance float64
}
