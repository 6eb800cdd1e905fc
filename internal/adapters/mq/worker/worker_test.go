package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	arch "github.com/adnan911/Perfect-Square/internal/adapters/archive"
	queue "github.com/adnan911/Perfect-Square/internal/adapters/mq/queue"
	worker "github.com/adnan911/Perfect-Square/internal/adapters/mq/worker"
	"github.com/adnan911/Perfect-Square/internal/domain/analyzer"
	"github.com/adnan911/Perfect-Square/internal/domain/geom"
	"github.com/adnan911/Perfect-Square/internal/domain/model"
	"github.com/adnan911/Perfect-Square/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type stubAnalyzer struct {
	result analyzer.Result
}

func (s *stubAnalyzer) Analyze(_ []geom.Point) analyzer.Result {
	return s.result
}

type recordingUpdater struct {
	mu      sync.Mutex
	updates map[string]int
	err     error
}

func (u *recordingUpdater) UpdateBestWithMetrics(_ context.Context, playerID string, score int, _ analyzer.Metrics) (bool, error) {
	if u.err != nil {
		return false, u.err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.updates == nil {
		u.updates = make(map[string]int)
	}
	if score <= u.updates[playerID] {
		return false, nil
	}
	u.updates[playerID] = score
	return true, nil
}

func (u *recordingUpdater) best(playerID string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.updates[playerID]
}

type recordingArchiver struct {
	mu      sync.Mutex
	records []int
	err     error
}

func (a *recordingArchiver) Record(_ context.Context, playerID string, score int, m analyzer.Metrics) (arch.Record, error) {
	if a.err != nil {
		return arch.Record{}, a.err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, score)
	return arch.Record{ID: "rec", PlayerID: playerID, Score: score, Metrics: m}, nil
}

func (a *recordingArchiver) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.records)
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestWorkerProcessesAttempts(t *testing.T) {
	Convey("Given a worker wired to a queue, analyzer, archive and leaderboard", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue()
		an := &stubAnalyzer{result: analyzer.Result{
			Total:    93,
			Metrics:  analyzer.Metrics{Closure: 100, Sides: 90, Angles: 95, Straightness: 88},
			Feedback: analyzer.FeedbackAlmost,
		}}
		up := &recordingUpdater{}
		ar := &recordingArchiver{}

		w := worker.NewInMemoryWorker(q, an, up, ar, worker.WithName("test-worker"))
		go w.Run(ctx)

		Convey("When an attempt is enqueued", func() {
			q.Enqueue(ctx, model.Attempt{AttemptID: "a-1", PlayerID: "p-1", TS: time.Now()})

			Convey("Then it is archived and the leaderboard updated", func() {
				So(waitFor(func() bool { return ar.count() == 1 }), ShouldBeTrue)
				So(waitFor(func() bool { return up.best("p-1") == 93 }), ShouldBeTrue)
			})
		})

		Convey("When shut down", func() {
			shutdownCtx, cancelShutdown := context.WithTimeout(ctx, time.Second)
			defer cancelShutdown()

			Convey("Then shutdown completes promptly", func() {
				So(w.Shutdown(shutdownCtx), ShouldBeNil)
			})
		})
	})
}

func TestWorkerFailures(t *testing.T) {
	Convey("Given downstream failures", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		an := &stubAnalyzer{result: analyzer.Result{Total: 80}}

		Convey("When the archive fails", func() {
			q := queue.NewInMemoryQueue()
			up := &recordingUpdater{}
			ar := &recordingArchiver{err: errors.New("disk full")}
			w := worker.NewInMemoryWorker(q, an, up, ar)
			go w.Run(ctx)

			q.Enqueue(ctx, model.Attempt{AttemptID: "a-1", PlayerID: "p-1"})

			Convey("Then the leaderboard is still updated", func() {
				So(waitFor(func() bool { return up.best("p-1") == 80 }), ShouldBeTrue)
			})
		})

		Convey("When the leaderboard fails", func() {
			q := queue.NewInMemoryQueue()
			up := &recordingUpdater{err: errors.New("store down")}
			ar := &recordingArchiver{}
			w := worker.NewInMemoryWorker(q, an, up, ar)
			go w.Run(ctx)

			q.Enqueue(ctx, model.Attempt{AttemptID: "a-1", PlayerID: "p-1"})

			Convey("Then the attempt is still archived and the worker keeps running", func() {
				So(waitFor(func() bool { return ar.count() == 1 }), ShouldBeTrue)

				q.Enqueue(ctx, model.Attempt{AttemptID: "a-2", PlayerID: "p-2"})
				So(waitFor(func() bool { return ar.count() == 2 }), ShouldBeTrue)
			})
		})
	})
}

func TestWorkerPool(t *testing.T) {
	Convey("Given a pool of workers sharing one queue", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue()
		an := &stubAnalyzer{result: analyzer.Result{Total: 75}}
		up := &recordingUpdater{}
		ar := &recordingArchiver{}

		pool := worker.NewPool(4, q, an, up, ar)
		So(pool.Size(), ShouldEqual, 4)
		pool.Start(ctx)

		Convey("When many attempts are enqueued", func() {
			const attempts = 40
			for i := 0; i < attempts; i++ {
				So(q.Enqueue(ctx, model.Attempt{
					AttemptID: fmt.Sprintf("a-%d", i),
					PlayerID:  "p-1",
				}), ShouldBeTrue)
			}

			Convey("Then all are processed", func() {
				So(waitFor(func() bool { return ar.count() == attempts }), ShouldBeTrue)
			})
		})

		Convey("When the pool shuts down", func() {
			Convey("Then the queue is closed and workers drain", func() {
				So(pool.Shutdown(ctx), ShouldBeNil)
				So(q.IsClosed(), ShouldBeTrue)
			})
		})
	})
}
