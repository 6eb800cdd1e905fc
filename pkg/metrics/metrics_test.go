package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewManagerOptions(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewManager(
		WithNamespace("testns"),
		WithSubsystem("testsub"),
		WithHistogramBuckets([]float64{1, 10, 100}),
		WithRegistry(reg),
	)
	if m.namespace != "testns" || m.subsystem != "testsub" {
		t.Fatalf("unexpected namespace/subsystem: %s/%s", m.namespace, m.subsystem)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	if len(families) == 0 {
		t.Fatal("no metric families registered")
	}
}

func TestGlobalHelpers(t *testing.T) {
	// Exercise every helper against the global manager; none may panic.
	RecordAttemptProcessed()
	RecordAttemptDuplicate()
	RecordAttemptRejected()
	RecordAnalysisLatency(1.5)
	ObserveScore(97)
	RecordLeaderboardUpdate()
	RecordLeaderboardError()
	UpdateTotalPlayers(3)
	UpdateRepositoryRecordsTotal(3)
	RecordRepositoryUpdateLatency(0.2)
	RecordRepositoryQueryLatency(0.1)
	RecordArchiveInsert()
	RecordArchiveError()
	UpdateQueueSize(1)
	UpdateQueueCapacity(100)
	UpdateQueueUtilization(0.01)
	RecordQueueEnqueue()
	RecordQueueDequeue()
	RecordQueueEnqueueError()
	UpdateWorkerCount(4)
	RecordWorkerProcessingLatency(2.0)
	RecordWorkerError()
	RecordHTTPRequest("/analyze", "POST", "200")
	RecordHTTPRequestDuration("/analyze", "POST", "200", 3.2)
	RecordErrorByComponent("queue", "full")

	families, err := GetRegistry().Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	if len(families) == 0 {
		t.Fatal("global registry is empty")
	}
}
