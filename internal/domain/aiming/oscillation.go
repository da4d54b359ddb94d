package aiming

import (
	"github.com/okian/oche/internal/domain/geometry"
)

// Oscillator is the timed reflex controller. A crosshair sweeps the
// horizontal axis until the player locks it, then the vertical axis, then
// the dart flies and lands on the two locked coordinates.
//
//	Horizontal --Lock+settle--> Vertical --Lock+settle--> Releasing --flight--> emit, Horizontal
//
// The sweep ticker exists only while a sweeping phase is active and not
// settling.
type Oscillator struct {
	core

	phase    Phase
	pos      geometry.Point
	dirH     float64
	dirV     float64
	settling bool

	tickGen  uint64
	stopTick func()
}

var _ Locker = (*Oscillator)(nil)

// NewOscillator creates an oscillating controller and starts its first
// session unless it is created disabled.
func NewOscillator(onThrow ThrowFunc, opts ...Option) *Oscillator {
	o := &Oscillator{core: newCore(onThrow, opts)}
	o.mu.Lock()
	o.resetLocked()
	o.mu.Unlock()
	return o
}

// Variant implements Controller.
func (o *Oscillator) Variant() Variant { return VariantOscillation }

// State implements Controller.
func (o *Oscillator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stateLocked()
}

// Lock freezes the sweeping axis. It returns false when the lock was
// ignored: disabled, closed, already settling, or the dart is in flight.
func (o *Oscillator) Lock() bool {
	o.mu.Lock()
	if !o.activeLocked() || o.settling || !o.sweepingLocked() {
		o.mu.Unlock()
		return false
	}
	o.settling = true
	o.releaseTickLocked()
	o.armTimerLocked(o.cfg.settleDelay, o.settled)
	st := o.stateLocked()
	o.mu.Unlock()

	o.notify(st)
	return true
}

// SetDisabled implements Controller.
func (o *Oscillator) SetDisabled(disabled bool) {
	o.mu.Lock()
	if o.closed || o.disabled == disabled {
		o.mu.Unlock()
		return
	}
	o.disabled = disabled
	if disabled {
		o.abandonLocked()
		o.releaseTickLocked()
		o.releaseTimerLocked()
		o.settling = false
	} else {
		o.resetLocked()
	}
	st := o.stateLocked()
	o.mu.Unlock()

	o.notify(st)
}

// Close implements Controller.
func (o *Oscillator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.closed = true
	o.abandonLocked()
	o.releaseTickLocked()
	o.releaseTimerLocked()
}

func (o *Oscillator) tick(gen uint64) {
	o.mu.Lock()
	if gen != o.tickGen || !o.activeLocked() || o.settling {
		o.mu.Unlock()
		return
	}
	switch o.phase {
	case PhaseHorizontal:
		o.pos.H, o.dirH = geometry.Bounce(o.pos.H, o.dirH, o.cfg.step)
	case PhaseVertical:
		o.pos.V, o.dirV = geometry.Bounce(o.pos.V, o.dirV, o.cfg.step)
	default:
		o.mu.Unlock()
		return
	}
	st := o.stateLocked()
	o.mu.Unlock()

	o.notify(st)
}

func (o *Oscillator) settled(gen uint64) {
	o.mu.Lock()
	if !o.timerCurrentLocked(gen) || !o.settling {
		o.mu.Unlock()
		return
	}
	o.settling = false
	o.stopTimer = nil
	switch o.phase {
	case PhaseHorizontal:
		o.phase = PhaseVertical
		o.armTickLocked()
	case PhaseVertical:
		o.phase = PhaseReleasing
		o.armTimerLocked(o.cfg.flightDuration, o.landed)
	}
	st := o.stateLocked()
	o.mu.Unlock()

	o.notify(st)
}

func (o *Oscillator) landed(gen uint64) {
	o.mu.Lock()
	if !o.timerCurrentLocked(gen) || o.phase != PhaseReleasing {
		o.mu.Unlock()
		return
	}
	rel := Release{Impact: o.pos, Session: o.session, Epoch: o.epoch}
	o.releaseTimerLocked()
	o.phase = PhaseResolved
	resolved := o.stateLocked()
	resolved.Impact = &rel.Impact
	o.resetLocked()
	next := o.stateLocked()
	o.mu.Unlock()

	o.notify(resolved)
	o.emit(rel)
	o.notify(next)
}

// resetLocked starts a new session at the board center.
func (o *Oscillator) resetLocked() {
	o.session++
	o.phase = PhaseHorizontal
	o.pos = geometry.Center
	o.dirH, o.dirV = 1, 1
	o.settling = false
	o.releaseTickLocked()
	if o.activeLocked() {
		o.armTickLocked()
	}
}

func (o *Oscillator) sweepingLocked() bool {
	return o.phase == PhaseHorizontal || o.phase == PhaseVertical
}

func (o *Oscillator) armTickLocked() {
	o.releaseTickLocked()
	gen := o.tickGen
	o.stopTick = o.cfg.scheduler.Every(o.cfg.tickInterval, func() { o.tick(gen) })
}

func (o *Oscillator) releaseTickLocked() {
	if o.stopTick != nil {
		o.stopTick()
		o.stopTick = nil
	}
	o.tickGen++
}

func (o *Oscillator) stateLocked() State {
	return State{
		Rev:      o.nextRevLocked(),
		Variant:  VariantOscillation,
		Phase:    o.phase,
		Session:  o.session,
		Position: o.pos,
		Disabled: o.disabled,
	}
}
