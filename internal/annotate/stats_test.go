package annotate

import (
	"testing"
	"time"
)

func TestLLMStatsSnapshotPercentiles(t *testing.T) {
	s := NewLLMStats(time.Hour)
	for _, d := range []int64{100, 200, 300, 400, 500} {
		s.Record(d)
	}

	snap := s.Snapshot()
	if snap.Count != 5 {
		t.Fatalf("count = %d, want 5", snap.Count)
	}
	if snap.MinMs != 100 || snap.MaxMs != 500 {
		t.Fatalf("min/max = %d/%d, want 100/500", snap.MinMs, snap.MaxMs)
	}
	if snap.AvgMs != 300 {
		t.Fatalf("avg = %v, want 300", snap.AvgMs)
	}
	if snap.P50Ms != 300 {
		t.Fatalf("p50 = %v, want 300", snap.P50Ms)
	}
	if snap.P95Ms != 480 {
		t.Fatalf("p95 = %v, want 480", snap.P95Ms)
	}
	if snap.P99Ms != 496 {
		t.Fatalf("p99 = %v, want 496", snap.P99Ms)
	}
}

func TestLLMStatsFailuresExcludedFromLatency(t *testing.T) {
	s := NewLLMStats(time.Hour)
	s.Record(100)
	s.RecordFailure(9000)
	s.RecordFailure(9000)

	snap := s.Snapshot()
	if snap.Count != 1 || snap.Failures != 2 {
		t.Fatalf("count/failures = %d/%d, want 1/2", snap.Count, snap.Failures)
	}
	if snap.MaxMs != 100 {
		t.Fatalf("max = %d, want 100", snap.MaxMs)
	}
}

func TestLLMStatsPrunesOldSamples(t *testing.T) {
	s := NewLLMStats(time.Minute)
	s.samples = append(s.samples,
		sample{timestamp: time.Now().Add(-2 * time.Minute), durationMs: 999},
		sample{timestamp: time.Now().Add(-2 * time.Minute), durationMs: 1, failed: true},
	)
	s.Record(50)

	snap := s.Snapshot()
	if snap.Count != 1 || snap.Failures != 0 {
		t.Fatalf("count/failures = %d/%d, want 1/0", snap.Count, snap.Failures)
	}
	if snap.MaxMs != 50 {
		t.Fatalf("max = %d, want 50", snap.MaxMs)
	}
}

func TestLLMStatsClampsNegative(t *testing.T) {
	s := NewLLMStats(0)
	s.Record(-5)
	if got := s.Snapshot().MinMs; got != 0 {
		t.Fatalf("min = %d, want 0", got)
	}
}
