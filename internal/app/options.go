package service

import (
	"github.com/okian/oche/internal/domain/aiming"
	"github.com/okian/oche/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of scoring workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the throw queue capacity.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many throw ids are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithShardCount sets the number of game registry shards.
func WithShardCount(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.shardCount = n
		}
	}
}

// WithMaxGames caps the number of live games.
func WithMaxGames(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxGames = n
		}
	}
}

// WithTargetScore sets the countdown start for new games.
func WithTargetScore(target int) Option {
	return func(s *Service) {
		if target > 0 {
			s.targetScore = target
		}
	}
}

// WithThrowsPerTurn sets the darts per turn for new games.
func WithThrowsPerTurn(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.throwsPerTurn = n
		}
	}
}

// WithDefaultVariant sets the variant used when a request names none.
func WithDefaultVariant(v aiming.Variant) Option {
	return func(s *Service) {
		s.defaultVariant = v
	}
}

// WithAimOptions adds options passed to every aiming controller.
func WithAimOptions(opts ...aiming.Option) Option {
	return func(s *Service) {
		s.aimOptions = append(s.aimOptions, opts...)
	}
}

// WithStreamBuffer sets the per-subscriber update buffer.
func WithStreamBuffer(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.streamBuffer = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
