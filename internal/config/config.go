// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Flat snake_case keys shared by the YAML file and OCHE_* env vars.
// - New builds a Config with defaults; Load layers file and env on top.
// - Errors wrap this package's sentinels.
package config

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/okian/oche/internal/domain/aiming"
	"github.com/okian/oche/internal/domain/match"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory throw queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of scoring workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets how many throw ids are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	// ShardCount configures the number of shards in the game registry.
	ShardCount int `koanf:"shard_count"`

	// MaxGames caps the number of live games.
	MaxGames int `koanf:"max_games"`

	TargetScore    int    `koanf:"target_score"`
	ThrowsPerTurn  int    `koanf:"throws_per_turn"`
	DefaultVariant string `koanf:"default_variant"`

	// Oscillation timings.
	TickIntervalMS   int     `koanf:"tick_interval_ms"`
	OscillationStep  float64 `koanf:"oscillation_step"`
	SettleDelayMS    int     `koanf:"settle_delay_ms"`
	FlightDurationMS int     `koanf:"flight_duration_ms"`

	// Drag gesture tuning.
	ReleaseDelayMS int     `koanf:"release_delay_ms"`
	AimSpanPX      float64 `koanf:"aim_span_px"`
	PullSpanPX     float64 `koanf:"pull_span_px"`

	// StreamBuffer is the per-subscriber update buffer of the live stream.
	StreamBuffer int `koanf:"stream_buffer"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		QueueSize:        1024,
		WorkerCount:      runtime.NumCPU(),
		DedupeSize:       10_000,
		ShardCount:       16,
		MaxGames:         1024,
		TargetScore:      match.DefaultTargetScore,
		ThrowsPerTurn:    match.DefaultThrowsPerTurn,
		DefaultVariant:   aiming.VariantOscillation.String(),
		TickIntervalMS:   int(aiming.DefaultTickInterval / time.Millisecond),
		OscillationStep:  aiming.DefaultStep,
		SettleDelayMS:    int(aiming.DefaultSettleDelay / time.Millisecond),
		FlightDurationMS: int(aiming.DefaultFlightDuration / time.Millisecond),
		ReleaseDelayMS:   int(aiming.DefaultReleaseDelay / time.Millisecond),
		AimSpanPX:        aiming.DefaultAimSpan,
		PullSpanPX:       aiming.DefaultPullSpan,
		StreamBuffer:     64,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	positive := []struct {
		key string
		val int
	}{
		{"queue_size", c.QueueSize},
		{"worker_count", c.WorkerCount},
		{"dedupe_size", c.DedupeSize},
		{"shard_count", c.ShardCount},
		{"max_games", c.MaxGames},
		{"target_score", c.TargetScore},
		{"throws_per_turn", c.ThrowsPerTurn},
		{"tick_interval_ms", c.TickIntervalMS},
		{"settle_delay_ms", c.SettleDelayMS},
		{"flight_duration_ms", c.FlightDurationMS},
		{"release_delay_ms", c.ReleaseDelayMS},
		{"stream_buffer", c.StreamBuffer},
	}
	for _, p := range positive {
		if p.val <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidConfig, p.key, p.val)
		}
	}

	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.OscillationStep <= 0:
		return fmt.Errorf("%w: oscillation_step must be positive", ErrInvalidConfig)
	case c.AimSpanPX <= 0 || c.PullSpanPX <= 0:
		return fmt.Errorf("%w: aim_span_px and pull_span_px must be positive", ErrInvalidConfig)
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	if _, err := c.Variant(); err != nil {
		return err
	}
	return nil
}

// Variant parses DefaultVariant.
func (c *Config) Variant() (aiming.Variant, error) {
	v, err := aiming.ParseVariant(c.DefaultVariant)
	if err != nil {
		return 0, fmt.Errorf("%w: default_variant: %w", ErrInvalidConfig, err)
	}
	return v, nil
}

// AimOptions converts the timing and gesture settings to controller options.
func (c *Config) AimOptions() []aiming.Option {
	ms := func(n int) time.Duration { return time.Duration(n) * time.Millisecond }
	return []aiming.Option{
		aiming.WithTickInterval(ms(c.TickIntervalMS)),
		aiming.WithStep(c.OscillationStep),
		aiming.WithSettleDelay(ms(c.SettleDelayMS)),
		aiming.WithFlightDuration(ms(c.FlightDurationMS)),
		aiming.WithReleaseDelay(ms(c.ReleaseDelayMS)),
		aiming.WithGestureSpans(c.AimSpanPX, c.PullSpanPX),
	}
}
