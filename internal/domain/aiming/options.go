package aiming

import "time"

// Defaults for the oscillating and drag controllers.
const (
	DefaultTickInterval   = 40 * time.Millisecond
	DefaultStep           = 2.5
	DefaultSettleDelay    = 200 * time.Millisecond
	DefaultFlightDuration = 500 * time.Millisecond
	DefaultReleaseDelay   = 400 * time.Millisecond
	DefaultAimSpan        = 300.0 // px for full left/right deflection
	DefaultPullSpan       = 200.0 // px for a full pull
)

type settings struct {
	scheduler      Scheduler
	observer       Observer
	tickInterval   time.Duration
	step           float64
	settleDelay    time.Duration
	flightDuration time.Duration
	releaseDelay   time.Duration
	aimSpan        float64
	pullSpan       float64
	disabled       bool
}

// Option configures a controller.
type Option func(*settings)

func newSettings(opts []Option) settings {
	s := settings{
		scheduler:      RealScheduler(),
		tickInterval:   DefaultTickInterval,
		step:           DefaultStep,
		settleDelay:    DefaultSettleDelay,
		flightDuration: DefaultFlightDuration,
		releaseDelay:   DefaultReleaseDelay,
		aimSpan:        DefaultAimSpan,
		pullSpan:       DefaultPullSpan,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithScheduler sets the timer source.
func WithScheduler(s Scheduler) Option {
	return func(st *settings) {
		if s != nil {
			st.scheduler = s
		}
	}
}

// WithObserver registers a state observer.
func WithObserver(fn Observer) Option {
	return func(st *settings) {
		st.observer = fn
	}
}

// WithTickInterval sets the oscillation tick period.
func WithTickInterval(d time.Duration) Option {
	return func(st *settings) {
		if d > 0 {
			st.tickInterval = d
		}
	}
}

// WithStep sets how far the active axis moves per tick, in board percent.
func WithStep(step float64) Option {
	return func(st *settings) {
		if step > 0 {
			st.step = step
		}
	}
}

// WithSettleDelay sets the pause between a lock and the next phase.
func WithSettleDelay(d time.Duration) Option {
	return func(st *settings) {
		if d > 0 {
			st.settleDelay = d
		}
	}
}

// WithFlightDuration sets how long the releasing phase lasts.
func WithFlightDuration(d time.Duration) Option {
	return func(st *settings) {
		if d > 0 {
			st.flightDuration = d
		}
	}
}

// WithReleaseDelay sets the dart flight time after a drag release.
func WithReleaseDelay(d time.Duration) Option {
	return func(st *settings) {
		if d > 0 {
			st.releaseDelay = d
		}
	}
}

// WithGestureSpans sets the pixel distances for a full aim deflection
// (left to right) and a full pull.
func WithGestureSpans(aimSpan, pullSpan float64) Option {
	return func(st *settings) {
		if aimSpan > 0 {
			st.aimSpan = aimSpan
		}
		if pullSpan > 0 {
			st.pullSpan = pullSpan
		}
	}
}

// WithDisabled starts the controller disabled.
func WithDisabled(disabled bool) Option {
	return func(st *settings) {
		st.disabled = disabled
	}
}
