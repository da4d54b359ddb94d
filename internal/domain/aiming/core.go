package aiming

import (
	"sync"
	"time"
)

// core carries the bookkeeping shared by both controllers: the lock, the
// session counter, the disabled flag and the one-shot timer.
//
// Every timer callback is bound to the generation it was armed with.
// Releasing or re-arming bumps the generation, so a callback that was
// already in flight finds a mismatch and does nothing.
type core struct {
	mu      sync.Mutex
	cfg     settings
	onThrow ThrowFunc

	session  uint64
	epoch    uint64
	rev      uint64
	disabled bool
	closed   bool

	timerGen  uint64
	stopTimer func()
}

func newCore(onThrow ThrowFunc, opts []Option) core {
	cfg := newSettings(opts)
	return core{cfg: cfg, onThrow: onThrow, disabled: cfg.disabled}
}

func (c *core) activeLocked() bool {
	return !c.disabled && !c.closed
}

func (c *core) armTimerLocked(d time.Duration, fn func(gen uint64)) {
	c.releaseTimerLocked()
	gen := c.timerGen
	c.stopTimer = c.cfg.scheduler.After(d, func() { fn(gen) })
}

func (c *core) releaseTimerLocked() {
	if c.stopTimer != nil {
		c.stopTimer()
		c.stopTimer = nil
	}
	c.timerGen++
}

func (c *core) timerCurrentLocked(gen uint64) bool {
	return gen == c.timerGen && c.activeLocked()
}

// abandonLocked starts a new epoch. Releases stamped with an older epoch are
// no longer current.
func (c *core) abandonLocked() {
	c.epoch++
}

func (c *core) nextRevLocked() uint64 {
	c.rev++
	return c.rev
}

// Current implements Controller.
func (c *core) Current(epoch uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return epoch == c.epoch && c.activeLocked()
}

func (c *core) notify(states ...State) {
	if c.cfg.observer == nil {
		return
	}
	for _, st := range states {
		c.cfg.observer(st)
	}
}

// emit hands rel to the ThrowFunc unless its epoch was abandoned after the
// session resolved. The receiver must check Current again under its own
// lock; a disable can still land between this check and the call.
func (c *core) emit(rel Release) {
	if c.onThrow == nil || !c.Current(rel.Epoch) {
		return
	}
	c.onThrow(rel)
}
