package autoplay

import (
	"math/rand/v2"

	"github.com/okian/oche/internal/domain/aiming"
	"github.com/okian/oche/internal/domain/types"
)

// Gesture origin in device pixels.
const (
	originX = 400.0
	originY = 300.0
)

// Gesture is one drag from the origin to the release point.
type Gesture struct {
	DX, DY float64
}

// Events returns the pointer events that play the gesture.
func (g Gesture) Events() []types.PointerEvent {
	return []types.PointerEvent{
		{Type: types.PointerDown, X: originX, Y: originY},
		{Type: types.PointerMove, X: originX + g.DX, Y: originY + g.DY},
		{Type: types.PointerUp},
	}
}

// Generator produces a reproducible stream of gestures aimed at the
// bullseye. Spread scales the scatter; zero throws every dart dead center.
type Generator struct {
	rng    *rand.Rand
	spread float64
}

// NewGenerator seeds a generator.
func NewGenerator(seed int64, spread float64) *Generator {
	s := uint64(seed)
	return &Generator{
		rng:    rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15)),
		spread: spread,
	}
}

// Next returns the next gesture. A perfect throw drags straight down by
// half the pull span.
func (g *Generator) Next() Gesture {
	return Gesture{
		DX: g.rng.NormFloat64() * g.spread * aiming.DefaultAimSpan / 8,
		DY: aiming.DefaultPullSpan/2 + g.rng.NormFloat64()*g.spread*aiming.DefaultPullSpan/6,
	}
}
