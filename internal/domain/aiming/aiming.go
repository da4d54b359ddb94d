// Package aiming turns player input into a board impact point.
//
// A Controller runs one aim session at a time. When the session resolves it
// hands the impact to a ThrowFunc exactly once and starts the next session.
// Two input styles exist, selected by Variant:
//
//   - VariantOscillation: a crosshair sweeps one axis at a time and the
//     player locks it (see Oscillator).
//   - VariantDrag: the player drags back from an origin and releases
//     (see Gesture).
//
// Controllers never produce a position outside the geometry safety margin.
package aiming

import (
	"fmt"
	"strings"

	"github.com/okian/oche/internal/domain/geometry"
)

// Release is the outcome of a resolved session. Epoch is the controller
// epoch the session resolved in; see Controller.Current.
type Release struct {
	Impact  geometry.Point
	Session uint64
	Epoch   uint64
}

// ThrowFunc receives the release of a resolved session.
type ThrowFunc func(rel Release)

// Observer receives a snapshot after every state change. It runs outside
// the controller lock and must not block for long.
type Observer func(State)

// Variant selects the input style of a controller.
type Variant int

const (
	VariantOscillation Variant = iota
	VariantDrag
)

var variantNames = map[Variant]string{
	VariantOscillation: "oscillation",
	VariantDrag:        "drag",
}

func (v Variant) String() string {
	if s, ok := variantNames[v]; ok {
		return s
	}
	return fmt.Sprintf("variant(%d)", int(v))
}

// MarshalText implements encoding.TextMarshaler.
func (v Variant) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Variant) UnmarshalText(b []byte) error {
	parsed, err := ParseVariant(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ParseVariant parses a variant name, case-insensitively.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "oscillation":
		return VariantOscillation, nil
	case "drag":
		return VariantDrag, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownVariant, s)
}

// Phase is the step an aim session is in.
type Phase int

const (
	PhaseHorizontal Phase = iota
	PhaseVertical
	PhaseReleasing
	PhaseResolved
	PhaseIdle
	PhaseDragging
	PhaseReleased
)

var phaseNames = map[Phase]string{
	PhaseHorizontal: "horizontal",
	PhaseVertical:   "vertical",
	PhaseReleasing:  "releasing",
	PhaseResolved:   "resolved",
	PhaseIdle:       "idle",
	PhaseDragging:   "dragging",
	PhaseReleased:   "released",
}

func (p Phase) String() string {
	if s, ok := phaseNames[p]; ok {
		return s
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// State is a snapshot of a controller. Rev grows with every snapshot a
// controller takes, so observers can order snapshots that reach them out of
// order.
type State struct {
	Rev      uint64         `json:"rev"`
	Variant  Variant        `json:"variant"`
	Phase    Phase          `json:"phase"`
	Session  uint64         `json:"session"`
	Position geometry.Point `json:"position"`
	Aim      float64        `json:"aim,omitempty"`
	Pull     float64        `json:"pull,omitempty"`
	Disabled bool           `json:"disabled"`
	// Impact is set only on the snapshot that resolves a session.
	Impact *geometry.Point `json:"impact,omitempty"`
}

// Controller is the contract shared by every input variant.
type Controller interface {
	Variant() Variant
	State() State
	// SetDisabled suppresses all movement and input while true. Disabling
	// abandons the running session; enabling starts a new one.
	SetDisabled(disabled bool)
	// Current reports whether a release stamped with epoch may still be
	// scored. Disabling and closing start a new epoch.
	Current(epoch uint64) bool
	// Close releases every resource. The controller is unusable afterwards.
	Close()
}

// Locker is implemented by controllers driven by lock actions.
type Locker interface {
	Controller
	Lock() bool
}

// Pointer is implemented by controllers driven by pointer gestures.
// Coordinates are device pixels.
type Pointer interface {
	Controller
	PointerDown(x, y float64) bool
	PointerMove(x, y float64) bool
	PointerUp() bool
}

// New builds a controller for the given variant.
func New(v Variant, onThrow ThrowFunc, opts ...Option) (Controller, error) {
	switch v {
	case VariantOscillation:
		return NewOscillator(onThrow, opts...), nil
	case VariantDrag:
		return NewGesture(onThrow, opts...), nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownVariant, v)
}
