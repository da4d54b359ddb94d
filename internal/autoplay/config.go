package autoplay

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/okian/oche/internal/domain/match"
)

// Defaults for the autoplay command.
const (
	DefaultBaseURL      = "http://localhost:9080"
	DefaultPlayers      = 2
	DefaultMaxThrows    = 60
	DefaultTimeout      = 10 * time.Second
	DefaultPollInterval = 25 * time.Millisecond
	DefaultSpread       = 1.0
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid autoplay config")

// Config holds configuration for an autoplay run.
type Config struct {
	BaseURL      string        // Base URL of the service
	Players      int           // Seats in the game
	MaxThrows    int           // Stop after this many throws without a winner
	Seed         int64         // Seed of the gesture generator
	Spread       float64       // Scatter of the gestures around the bullseye
	Timeout      time.Duration // HTTP timeout and per-throw wait
	PollInterval time.Duration // How often the game is polled while a dart flies
	Verbose      bool          // Log every throw
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: url %q", ErrInvalidConfig, c.BaseURL)
	}
	if c.Players < match.MinPlayers || c.Players > match.MaxPlayers {
		return fmt.Errorf("%w: players must be between %d and %d, got %d",
			ErrInvalidConfig, match.MinPlayers, match.MaxPlayers, c.Players)
	}
	if c.MaxThrows < 1 {
		return fmt.Errorf("%w: max-throws must be positive", ErrInvalidConfig)
	}
	if c.Spread < 0 {
		return fmt.Errorf("%w: spread must not be negative", ErrInvalidConfig)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	return nil
}
