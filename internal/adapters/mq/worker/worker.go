// Package worker scores queued throws and hands the results on.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/oche/internal/domain/model"
	"github.com/okian/oche/internal/domain/scoring"
	"github.com/okian/oche/pkg/logger"
	"github.com/okian/oche/pkg/metrics"
)

const poolShutdownTimeout = 30 * time.Second

// Updater receives the outcome of every dequeued throw, exactly once.
type Updater interface {
	// Apply takes a scored throw.
	Apply(ctx context.Context, t model.ScoredThrow) error
	// Fail reports a throw that could not be scored.
	Fail(ctx context.Context, t model.Throw, err error)
}

// Scorer computes the points of an impact.
type Scorer = scoring.Scorer

// Queue defines how workers receive throws.
type Queue interface {
	Dequeue(ctx context.Context) <-chan model.Throw
}

// Worker processes throws until stopped.
type Worker interface {
	Run(ctx context.Context)
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue   Queue
	scorer  Scorer
	updater Updater
	name    string

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, scorer Scorer, updater Updater, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		scorer:   scorer,
		updater:  updater,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run reads throws until the queue closes, ctx ends, or Shutdown is called.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	throws := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case t, ok := <-throws:
			if !ok {
				return
			}
			metrics.RecordQueueDequeue()
			if err := w.process(ctx, t); err != nil {
				w.logger.Error(ctx, "error processing throw", logger.Error(err))
			}
		}
	}
}

// Shutdown stops the worker after the throw in hand, if any.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) process(ctx context.Context, t model.Throw) error { //nolint:gocritic // hugeParam: Throw is passed by value for channel semantics
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	scoreStart := time.Now()
	res, err := w.scorer.Score(ctx, scoring.Input{GameID: t.GameID, ThrowID: t.ThrowID, Impact: t.Impact})
	metrics.RecordScoringLatency(float64(time.Since(scoreStart).Microseconds()) / 1000)
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "scoring_error")
		w.updater.Fail(ctx, t, err)
		return fmt.Errorf("score throw %s: %w", t.ThrowID, err)
	}

	metrics.RecordThrow(t.Variant.String(), res.Points, res.Distance)
	w.logger.Debug(ctx, "throw scored",
		logger.String("game", t.GameID),
		logger.Uint64("seq", t.Seq),
		logger.Int("points", res.Points),
		logger.String("ring", res.Ring),
	)

	scored := model.ScoredThrow{Throw: t, Points: res.Points, Ring: res.Ring, Distance: res.Distance}
	if err := w.updater.Apply(ctx, scored); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "apply_error")
		return fmt.Errorf("apply throw %s: %w", t.ThrowID, err)
	}
	return nil
}

// Pool manages multiple workers over one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates a pool of workerCount workers. A count below one uses the
// number of CPUs.
func NewPool(workerCount int, queue Queue, scorer Scorer, updater Updater, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   queue,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range pool.workers {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		pool.workers[i] = NewInMemoryWorker(queue, scorer, updater, wopts...)
	}
	metrics.UpdateWorkerCount(workerCount)
	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue so workers drain what is left, then waits for
// them to exit.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	waitCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()
	var err error
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-waitCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			err = fmt.Errorf("worker %d: %w", i, waitCtx.Err())
		}
	}
	metrics.UpdateWorkerCount(0)
	return err
}
