// Package scoring maps an impact point to the points it is worth.
//
// The board is modelled as concentric rings around (50,50); the wedge and
// double/triple artwork of a real board is not scored.
package scoring

import (
	"context"
	"fmt"

	"github.com/okian/oche/internal/domain/geometry"
)

// MissPoints is awarded outside the outermost ring.
const MissPoints = 0

// Ring is one scoring band: every distance up to and including MaxDistance
// (and beyond the previous ring) is worth Points.
type Ring struct {
	Name        string
	MaxDistance float64
	Points      int
}

// rings are ordered from the center outwards.
var rings = [...]Ring{
	{Name: "bullseye", MaxDistance: 8, Points: 50},
	{Name: "bull", MaxDistance: 12, Points: 25},
	{Name: "inner", MaxDistance: 20, Points: 20},
	{Name: "middle", MaxDistance: 30, Points: 15},
	{Name: "outer", MaxDistance: 40, Points: 10},
	{Name: "edge", MaxDistance: 45, Points: 5},
}

var missRing = Ring{Name: "miss", Points: MissPoints}

// validPoints is the closed set of score values a throw may carry.
var validPoints = map[int]struct{}{0: {}, 1: {}, 5: {}, 10: {}, 15: {}, 20: {}, 25: {}, 50: {}}

// Score returns the points for a throw landing at (horizontal, vertical).
func Score(horizontal, vertical float64) int {
	return RingAt(geometry.Point{H: horizontal, V: vertical}).Points
}

// ScorePoint is Score for a geometry.Point.
func ScorePoint(p geometry.Point) int {
	return RingAt(p).Points
}

// RingAt returns the ring containing p. A point exactly on a boundary
// belongs to the inner, higher scoring ring.
func RingAt(p geometry.Point) Ring {
	d := p.DistanceFromCenter()
	for _, r := range rings {
		if d <= r.MaxDistance {
			return r
		}
	}
	return missRing
}

// Rings returns the scoring rings from the center outwards.
func Rings() []Ring {
	out := make([]Ring, len(rings))
	copy(out, rings[:])
	return out
}

// IsValid reports whether points is a legal throw value.
func IsValid(points int) bool {
	_, ok := validPoints[points]
	return ok
}

// Input is a resolved throw handed to a Scorer.
type Input struct {
	GameID  string
	ThrowID string
	Impact  geometry.Point
}

// Result contains the computed score for a throw.
type Result struct {
	ThrowID  string
	Points   int
	Ring     string
	Distance float64
}

// Scorer computes the score of a throw.
type Scorer interface {
	// Score computes a score, honoring ctx for cancellation.
	Score(ctx context.Context, in Input) (Result, error)
}

// RadialScorer implements Scorer with the concentric ring table.
type RadialScorer struct{}

// NewRadialScorer creates a ring based scorer.
func NewRadialScorer() *RadialScorer {
	return &RadialScorer{}
}

// Score computes the score for the given input.
func (s *RadialScorer) Score(ctx context.Context, in Input) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("context cancelled: %w", err)
	}
	r := RingAt(in.Impact)
	return Result{
		ThrowID:  in.ThrowID,
		Points:   r.Points,
		Ring:     r.Name,
		Distance: in.Impact.DistanceFromCenter(),
	}, nil
}
