// Package worker runs the scoring pipeline for queued attempts: analyze the
// stroke, archive the result, update the leaderboard.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/adnan911/Perfect-Square/internal/adapters/archive"
	"github.com/adnan911/Perfect-Square/internal/domain/analyzer"
	"github.com/adnan911/Perfect-Square/internal/domain/geom"
	"github.com/adnan911/Perfect-Square/internal/domain/model"
	"github.com/adnan911/Perfect-Square/pkg/logger"
	"github.com/adnan911/Perfect-Square/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 4 // multiplier for runtime.NumCPU()
	workerShutdownTimeout   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
)

// Attempt abstracts what workers read off the queue.
type Attempt = model.Attempt

// Analyzer scores a raw pointer path.
type Analyzer interface {
	Analyze(path []geom.Point) analyzer.Result
}

// Updater keeps the leaderboard's best score per player.
type Updater interface {
	UpdateBestWithMetrics(ctx context.Context, playerID string, score int, m analyzer.Metrics) (bool, error)
}

// Archiver appends scored attempts to the history.
type Archiver interface {
	Record(ctx context.Context, playerID string, score int, m analyzer.Metrics) (archive.Record, error)
}

// Queue defines how workers receive attempts.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Attempt
}

// Worker processes attempts until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue    Queue
	analyzer Analyzer
	updater  Updater
	archiver Archiver
	name     string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a worker with configuration options.
func NewInMemoryWorker(q Queue, a Analyzer, u Updater, ar Archiver, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		analyzer: a,
		updater:  u,
		archiver: ar,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	attempts := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case a, ok := <-attempts:
			if !ok {
				return
			}
			if err := w.processAttempt(ctx, a); err != nil {
				w.logger.Error(ctx, "error processing attempt", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processAttempt scores a single attempt, archives it, and updates the
// leaderboard. Analysis is total so only the side effects can fail; an
// archive failure does not block the leaderboard update.
func (w *InMemoryWorker) processAttempt(ctx context.Context, a Attempt) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	analysisStart := time.Now()
	res := w.analyzer.Analyze(a.Points)
	metrics.RecordAnalysisLatency(float64(time.Since(analysisStart).Milliseconds()))
	metrics.ObserveScore(float64(res.Total))
	metrics.RecordAttemptProcessed()
	if res.Feedback == analyzer.FeedbackTooShort {
		metrics.RecordAttemptRejected()
	}

	var archiveErr error
	if _, err := w.archiver.Record(ctx, a.PlayerID, res.Total, res.Metrics); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "archive_error")
		w.logger.Error(ctx, "archiving failed for attempt",
			logger.String("attemptID", a.AttemptID),
			logger.Error(err),
		)
		archiveErr = fmt.Errorf("archive attempt %s: %w", a.AttemptID, err)
	}

	if _, err := w.updater.UpdateBestWithMetrics(ctx, a.PlayerID, res.Total, res.Metrics); err != nil {
		metrics.RecordLeaderboardError()
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "leaderboard_error")
		w.logger.Error(ctx, "leaderboard update failed for attempt",
			logger.String("attemptID", a.AttemptID),
			logger.Error(err),
		)
		return fmt.Errorf("leaderboard update failed: %w", err)
	}

	return archiveErr
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	shutdown chan struct{}

	logger logger.Logger
}

// NewPool creates a worker pool. workerCount < 1 sizes the pool off the
// number of CPUs.
func NewPool(workerCount int, q Queue, a Analyzer, u Updater, ar Archiver) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers:  make([]*InMemoryWorker, workerCount),
		queue:    q,
		shutdown: make(chan struct{}),
		logger:   logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(q, a, u, ar,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	metrics.UpdateWorkerCount(workerCount)
	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Size returns the number of workers in the pool.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Stop stops all workers, waiting briefly for each.
func (p *Pool) Stop() {
	close(p.shutdown)
	ctx, cancel := context.WithTimeout(context.Background(), workerShutdownTimeout)
	defer cancel()
	for _, w := range p.workers {
		w.Shutdown(ctx) //nolint:errcheck // best-effort stop
	}
}

// Shutdown closes the queue and waits for the workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	return nil
}
