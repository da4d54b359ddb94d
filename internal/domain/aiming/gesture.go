package aiming

import (
	"github.com/okian/oche/internal/domain/geometry"
)

// Gesture is the pull-and-aim controller. The player presses, drags
// sideways to aim and down to pull, then releases; the dart lands after the
// release delay.
//
//	Idle --PointerDown--> Dragging --PointerUp--> Released --delay--> emit, Idle
type Gesture struct {
	core

	phase   Phase
	originX float64
	originY float64
	aim     float64
	pull    float64
	impact  geometry.Point
}

var _ Pointer = (*Gesture)(nil)

// NewGesture creates a drag controller waiting for its first press.
func NewGesture(onThrow ThrowFunc, opts ...Option) *Gesture {
	g := &Gesture{core: newCore(onThrow, opts)}
	g.mu.Lock()
	g.resetLocked()
	g.mu.Unlock()
	return g
}

// Variant implements Controller.
func (g *Gesture) Variant() Variant { return VariantDrag }

// State implements Controller.
func (g *Gesture) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stateLocked()
}

// PointerDown starts a drag at (x, y).
func (g *Gesture) PointerDown(x, y float64) bool {
	g.mu.Lock()
	if !g.activeLocked() || g.phase != PhaseIdle {
		g.mu.Unlock()
		return false
	}
	g.phase = PhaseDragging
	g.originX, g.originY = x, y
	g.aim, g.pull = 0.5, 0
	st := g.stateLocked()
	g.mu.Unlock()

	g.notify(st)
	return true
}

// PointerMove updates aim and pull from the displacement to the origin.
// Moves outside a drag are ignored.
func (g *Gesture) PointerMove(x, y float64) bool {
	g.mu.Lock()
	if !g.activeLocked() || g.phase != PhaseDragging {
		g.mu.Unlock()
		return false
	}
	dx, dy := x-g.originX, y-g.originY
	g.aim = geometry.ClampUnit(0.5 + dx/g.cfg.aimSpan)
	g.pull = geometry.ClampUnit(dy / g.cfg.pullSpan)
	st := g.stateLocked()
	g.mu.Unlock()

	g.notify(st)
	return true
}

// PointerUp releases the dart. The impact is fixed now and emitted after
// the release delay.
func (g *Gesture) PointerUp() bool {
	g.mu.Lock()
	if !g.activeLocked() || g.phase != PhaseDragging {
		g.mu.Unlock()
		return false
	}
	g.phase = PhaseReleased
	g.impact = geometry.FromGesture(g.aim, g.pull)
	g.armTimerLocked(g.cfg.releaseDelay, g.landed)
	st := g.stateLocked()
	g.mu.Unlock()

	g.notify(st)
	return true
}

// SetDisabled implements Controller.
func (g *Gesture) SetDisabled(disabled bool) {
	g.mu.Lock()
	if g.closed || g.disabled == disabled {
		g.mu.Unlock()
		return
	}
	g.disabled = disabled
	if disabled {
		g.abandonLocked()
		g.releaseTimerLocked()
	} else {
		g.resetLocked()
	}
	st := g.stateLocked()
	g.mu.Unlock()

	g.notify(st)
}

// Close implements Controller.
func (g *Gesture) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	g.closed = true
	g.abandonLocked()
	g.releaseTimerLocked()
}

func (g *Gesture) landed(gen uint64) {
	g.mu.Lock()
	if !g.timerCurrentLocked(gen) || g.phase != PhaseReleased {
		g.mu.Unlock()
		return
	}
	rel := Release{Impact: g.impact, Session: g.session, Epoch: g.epoch}
	g.releaseTimerLocked()
	resolved := g.stateLocked()
	resolved.Phase = PhaseResolved
	resolved.Impact = &rel.Impact
	g.resetLocked()
	next := g.stateLocked()
	g.mu.Unlock()

	g.notify(resolved)
	g.emit(rel)
	g.notify(next)
}

func (g *Gesture) resetLocked() {
	g.session++
	g.phase = PhaseIdle
	g.aim, g.pull = 0.5, 0
	g.impact = geometry.Center
}

func (g *Gesture) stateLocked() State {
	st := State{
		Rev:      g.nextRevLocked(),
		Variant:  VariantDrag,
		Phase:    g.phase,
		Session:  g.session,
		Aim:      g.aim,
		Pull:     g.pull,
		Disabled: g.disabled,
	}
	switch g.phase {
	case PhaseDragging:
		st.Position = geometry.FromGesture(g.aim, g.pull)
	default:
		st.Position = g.impact
	}
	return st
}
