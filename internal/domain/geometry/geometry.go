// Package geometry holds the board-relative coordinate space shared by the
// aiming controllers and the scoring function.
//
// Positions are percentages of the board face: (0,0) is the top-left corner,
// (100,100) the bottom-right one and (50,50) the center.
package geometry

import "math"

// Board coordinate bounds.
const (
	BoardMin    = 0.0
	BoardMax    = 100.0
	CenterCoord = 50.0

	// SafetyMin and SafetyMax bound every aimed position so a throw never
	// starts off the board.
	SafetyMin = 5.0
	SafetyMax = 95.0

	safetySpan = SafetyMax - SafetyMin
)

// Center is the middle of the board.
var Center = Point{H: CenterCoord, V: CenterCoord}

// Point is a board-relative position.
type Point struct {
	H float64 `json:"horizontal"`
	V float64 `json:"vertical"`
}

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(p.H-q.H, p.V-q.V)
}

// DistanceFromCenter returns the distance between p and the board center.
func (p Point) DistanceFromCenter() float64 {
	return p.Distance(Center)
}

// InSafetyMargin reports whether both coordinates lie in [SafetyMin, SafetyMax].
func (p Point) InSafetyMargin() bool {
	return InRange(p.H, SafetyMin, SafetyMax) && InRange(p.V, SafetyMin, SafetyMax)
}

// Clamped returns p with both coordinates clamped to the safety margin.
func (p Point) Clamped() Point {
	return Point{H: ClampSafe(p.H), V: ClampSafe(p.V)}
}

// Clamp limits v to [lo, hi]. NaN collapses to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampUnit limits v to [0, 1].
func ClampUnit(v float64) float64 { return Clamp(v, 0, 1) }

// ClampSafe limits v to the safety margin.
func ClampSafe(v float64) float64 { return Clamp(v, SafetyMin, SafetyMax) }

// InRange reports whether lo <= v <= hi.
func InRange(v, lo, hi float64) bool { return v >= lo && v <= hi }

// Bounce advances pos by dir*step inside the safety margin. When the move
// crosses a boundary the position is clamped onto it and the direction is
// inverted, so the next call moves back into the board.
func Bounce(pos, dir, step float64) (float64, float64) {
	next := pos + dir*step
	switch {
	case next >= SafetyMax:
		return SafetyMax, -math.Abs(dir)
	case next <= SafetyMin:
		return SafetyMin, math.Abs(dir)
	default:
		return next, dir
	}
}

// FromGesture maps normalized drag values to a board position. aim moves the
// point left to right; pull is inverted so a stronger pull lands higher.
func FromGesture(aim, pull float64) Point {
	return Point{
		H: ClampUnit(aim)*safetySpan + SafetyMin,
		V: (1-ClampUnit(pull))*safetySpan + SafetyMin,
	}
}
