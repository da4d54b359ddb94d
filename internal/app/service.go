// Package service runs dart games: it owns the aiming controllers, the
// scoring pipeline, the game registry and the live update streams, and
// implements the dependencies required by the HTTP API.
package service

import (
	"context"
	"runtime"
	"sync"

	eventqueue "github.com/okian/oche/internal/adapters/mq/queue"
	workerpool "github.com/okian/oche/internal/adapters/mq/worker"
	repository "github.com/okian/oche/internal/adapters/repository"
	"github.com/okian/oche/internal/domain/aiming"
	"github.com/okian/oche/internal/domain/dedupe"
	"github.com/okian/oche/internal/domain/match"
	"github.com/okian/oche/internal/domain/scoring"
	"github.com/okian/oche/internal/domain/types"
	"github.com/okian/oche/pkg/logger"
	"github.com/okian/oche/pkg/metrics"
)

// Service implements the API dependencies for the dart game.
type Service struct {
	mu sync.RWMutex

	games      *repository.Store[*game]
	deduper    dedupe.Deduper
	throwQueue *eventqueue.InMemoryQueue
	scorer     scoring.Scorer
	workerPool *workerpool.Pool
	hub        *hub

	workerCount    int
	queueSize      int
	dedupeSize     int
	shardCount     int
	maxGames       int
	targetScore    int
	throwsPerTurn  int
	defaultVariant aiming.Variant
	aimOptions     []aiming.Option
	streamBuffer   int

	started bool
	logger  logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:    runtime.NumCPU(),
		queueSize:      1024,
		dedupeSize:     dedupe.DefaultMaxSize,
		shardCount:     16,
		maxGames:       1024,
		targetScore:    match.DefaultTargetScore,
		throwsPerTurn:  match.DefaultThrowsPerTurn,
		defaultVariant: aiming.VariantOscillation,
		streamBuffer:   64,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the pipeline and starts the workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.games = repository.NewStore[*game](
		repository.WithShardCount(s.shardCount),
		repository.WithCapacity(s.maxGames),
	)
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.throwQueue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.scorer = scoring.NewRadialScorer()
	s.hub = newHub(s.streamBuffer)

	// workers outlive the request that started the service
	s.workerPool = workerpool.NewPool(s.workerCount, s.throwQueue, s.scorer, s, workerpool.WithLogger(s.logger.Named("worker")))
	s.workerPool.Start(context.WithoutCancel(ctx))

	s.started = true
	metrics.UpdateGamesActive(0)
	s.logger.Info(ctx, "game service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("maxGames", s.maxGames),
	)
	return nil
}

// Stop tears down every game, drains the pipeline and disconnects streams.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping game service...")

	for _, g := range s.games.List(ctx) {
		g.ctrl.Close()
	}
	if err := s.workerPool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown incomplete", logger.Error(err))
	}
	s.hub.closeAll()

	s.started = false
	s.logger.Info(ctx, "game service stopped")
}

func (s *Service) running() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() types.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := types.Stats{
		Started:       s.started,
		WorkerCount:   s.workerCount,
		QueueCapacity: s.queueSize,
	}
	if !s.started {
		return stats
	}

	ctx := context.Background()
	stats.Games = s.games.Count(ctx)
	stats.QueueLength = s.throwQueue.Len(ctx)
	stats.DedupeSize = s.deduper.Size()
	stats.Subscribers = s.hub.count()

	metrics.UpdateGamesActive(stats.Games)
	metrics.UpdateWorkerCount(s.workerCount)
	return stats
}
