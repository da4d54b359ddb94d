package aiming

import (
	"sync"
	"time"
)

// Scheduler hands out timer resources. The returned stop functions release
// the resource and may be called more than once.
type Scheduler interface {
	// Every calls fn every d until stopped.
	Every(d time.Duration, fn func()) (stop func())
	// After calls fn once after d unless stopped first.
	After(d time.Duration, fn func()) (stop func())
}

type realScheduler struct{}

// RealScheduler returns a Scheduler backed by the runtime timers.
func RealScheduler() Scheduler { return realScheduler{} }

func (realScheduler) Every(d time.Duration, fn func()) func() {
	ticker := time.NewTicker(d)
	done := make(chan struct{})
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

func (realScheduler) After(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}
