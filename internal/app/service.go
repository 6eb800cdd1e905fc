// Package service provides the core business service that implements the
// dependencies required by the HTTP API: scoring, dedupe, queueing, the
// leaderboard and the score archive behind one lifecycle.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/adnan911/Perfect-Square/internal/adapters/archive"
	attemptqueue "github.com/adnan911/Perfect-Square/internal/adapters/mq/queue"
	workerpool "github.com/adnan911/Perfect-Square/internal/adapters/mq/worker"
	"github.com/adnan911/Perfect-Square/internal/adapters/repository"
	"github.com/adnan911/Perfect-Square/internal/domain/analyzer"
	"github.com/adnan911/Perfect-Square/internal/domain/dedupe"
	"github.com/adnan911/Perfect-Square/internal/domain/geom"
	"github.com/adnan911/Perfect-Square/internal/domain/model"
	"github.com/adnan911/Perfect-Square/pkg/logger"
	"github.com/adnan911/Perfect-Square/pkg/metrics"
)

// Service implements the API dependencies for the square-scoring system.
type Service struct {
	mu sync.RWMutex

	// Core components
	leaderboard  repository.Store
	scoreArchive *archive.Archive
	deduper      dedupe.Deduper
	attemptQueue attemptqueue.Queue
	analyzer     *analyzer.Analyzer
	workerPool   *workerpool.Pool

	// Configuration
	workerCount int
	queueSize   int
	dedupeSize  int
	minSamples  int
	archiveDSN  string

	// State
	started bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the attempt queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithMinSamples sets the analyzer's minimum stroke length.
func WithMinSamples(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.minSamples = n
		}
	}
}

// WithArchiveDSN sets the SQLite DSN for the score archive.
func WithArchiveDSN(dsn string) Option {
	return func(s *Service) {
		if dsn != "" {
			s.archiveDSN = dsn
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

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU() * 2,
		queueSize:   100000,
		dedupeSize:  50000,
		minSamples:  20,
		archiveDSN:  ":memory:",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting square-scoring service...")

	ar, err := archive.New(s.archiveDSN)
	if err != nil {
		return fmt.Errorf("open score archive: %w", err)
	}
	s.scoreArchive = ar

	s.leaderboard = repository.NewTreapStore(ctx)
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.attemptQueue = attemptqueue.NewInMemoryQueue(
		attemptqueue.WithCapacity(s.queueSize),
		attemptqueue.WithBufferSize(s.queueSize),
	)
	s.analyzer = analyzer.New(
		analyzer.WithMinSamples(s.minSamples),
	)

	s.workerPool = workerpool.NewPool(s.workerCount, s.attemptQueue, s.analyzer, s.leaderboard, s.scoreArchive)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "square-scoring service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.String("archiveDSN", s.archiveDSN),
	)
	return nil
}

// Stop gracefully shuts down the service: close the queue, drain the
// workers, then release the stores.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping square-scoring service...")

	if s.workerPool != nil {
		_ = s.workerPool.Shutdown(ctx)
	}
	if closer, ok := s.leaderboard.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	if s.scoreArchive != nil {
		_ = s.scoreArchive.Close()
	}

	s.started = false
	s.logger.Info(ctx, "square-scoring service stopped")
}

// SeenAndRecord atomically checks whether an attempt id was seen and records
// it if not. Returns true when the attempt was already seen.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordAttemptDuplicate()
	}
	return seen
}

// Unrecord removes an attempt ID from the seen list, allowing a retry.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}

// Analyze scores a raw pointer path synchronously.
func (s *Service) Analyze(path []geom.Point) analyzer.Result {
	return s.analyzer.Analyze(path)
}

// Enqueue submits an attempt for asynchronous processing.
func (s *Service) Enqueue(ctx context.Context, a model.Attempt) bool {
	ok := s.attemptQueue.Enqueue(ctx, a)
	if !ok {
		s.logger.Warn(ctx, "attempt rejected by queue",
			logger.String("attemptID", a.AttemptID),
			logger.String("playerID", a.PlayerID),
		)
	}
	return ok
}

// TopN returns the top N leaderboard entries.
func (s *Service) TopN(ctx context.Context, n int) ([]repository.Entry, error) {
	return s.leaderboard.TopN(ctx, n)
}

// Rank returns the rank and best score for a given player id.
func (s *Service) Rank(ctx context.Context, playerID string) (repository.Entry, error) {
	return s.leaderboard.Rank(ctx, playerID)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":      s.started,
		"worker_count": s.workerCount,
		"queue_size":   s.queueSize,
		"dedupe_size":  s.dedupeSize,
		"min_samples":  s.minSamples,
	}

	if s.started {
		queueLen := s.attemptQueue.Len(ctx)
		totalPlayers := s.leaderboard.Count(ctx)
		stats["queue_length"] = queueLen
		stats["total_players"] = totalPlayers

		if n, err := s.scoreArchive.Count(ctx); err == nil {
			stats["archived_scores"] = n
		}

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateTotalPlayers(totalPlayers)
	}
	return stats
}
