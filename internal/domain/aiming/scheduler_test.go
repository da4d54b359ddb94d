package aiming_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/oche/internal/domain/aiming"
	. "github.com/smartystreets/goconvey/convey"
)

// manualScheduler records timers and fires them only when the test says so.
type manualScheduler struct {
	mu   sync.Mutex
	jobs []*job
}

type job struct {
	d       time.Duration
	fn      func()
	repeat  bool
	stopped bool
	fired   bool
}

func (m *manualScheduler) add(d time.Duration, fn func(), repeat bool) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	j := &job{d: d, fn: fn, repeat: repeat}
	m.jobs = append(m.jobs, j)
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		j.stopped = true
	}
}

func (m *manualScheduler) Every(d time.Duration, fn func()) func() { return m.add(d, fn, true) }
func (m *manualScheduler) After(d time.Duration, fn func()) func() { return m.add(d, fn, false) }

func (m *manualScheduler) collect(match func(*job) bool) []*job {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*job
	for _, j := range m.jobs {
		if match(j) {
			out = append(out, j)
		}
	}
	return out
}

// tick fires every live ticker n times.
func (m *manualScheduler) tick(n int) {
	for i := 0; i < n; i++ {
		for _, j := range m.collect(func(j *job) bool { return j.repeat && !j.stopped }) {
			j.fn()
		}
	}
}

// fire runs every pending one-shot timer and returns how many ran.
func (m *manualScheduler) fire() int {
	jobs := m.collect(func(j *job) bool { return !j.repeat && !j.stopped && !j.fired })
	for _, j := range jobs {
		m.mu.Lock()
		j.fired = true
		m.mu.Unlock()
		j.fn()
	}
	return len(jobs)
}

// fireStale runs callbacks of released resources, as a runtime timer racing
// its Stop would.
func (m *manualScheduler) fireStale() {
	for _, j := range m.collect(func(j *job) bool { return j.stopped }) {
		j.fn()
	}
}

func (m *manualScheduler) tickers() int {
	return len(m.collect(func(j *job) bool { return j.repeat && !j.stopped }))
}

func (m *manualScheduler) timers() int {
	return len(m.collect(func(j *job) bool { return !j.repeat && !j.stopped && !j.fired }))
}

func (m *manualScheduler) lastTimer() time.Duration {
	jobs := m.collect(func(j *job) bool { return !j.repeat })
	if len(jobs) == 0 {
		return 0
	}
	return jobs[len(jobs)-1].d
}

func TestRealScheduler(t *testing.T) {
	Convey("Given the runtime scheduler", t, func() {
		s := aiming.RealScheduler()

		Convey("When a repeating job is stopped", func() {
			var calls atomic.Int64
			stop := s.Every(time.Millisecond, func() { calls.Add(1) })
			time.Sleep(20 * time.Millisecond)
			stop()
			stop()
			time.Sleep(5 * time.Millisecond)
			seen := calls.Load()
			time.Sleep(20 * time.Millisecond)

			Convey("Then it ran and then stopped running", func() {
				So(seen, ShouldBeGreaterThan, 0)
				So(calls.Load(), ShouldEqual, seen)
			})
		})

		Convey("When a one-shot job is stopped before its deadline", func() {
			var calls atomic.Int64
			stop := s.After(20*time.Millisecond, func() { calls.Add(1) })
			stop()
			time.Sleep(40 * time.Millisecond)

			Convey("Then it never runs", func() {
				So(calls.Load(), ShouldEqual, 0)
			})
		})

		Convey("When a one-shot job is left alone", func() {
			done := make(chan struct{})
			s.After(time.Millisecond, func() { close(done) })

			Convey("Then it runs", func() {
				select {
				case <-done:
				case <-time.After(time.Second):
					So("timer never fired", ShouldBeEmpty)
				}
			})
		})
	})
}
