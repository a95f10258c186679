package goGate

import (
	"sync"
	"testing"
	"time"
)

func TestMetricsDisabledNoOps(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})

	m.Inc(MetricRequests)
	m.Observe(MetricRequestLatency, 12*time.Millisecond)

	if m.Enabled() {
		t.Fatal("expected disabled metrics")
	}
	if got := m.Value(MetricRequests); got != 0 {
		t.Fatalf("expected zero count when disabled, got %d", got)
	}

	s := m.Snapshot()
	if len(s.Counters) != 0 || len(s.Histograms) != 0 {
		t.Fatalf("expected empty snapshot when disabled, got %d counters, %d histograms", len(s.Counters), len(s.Histograms))
	}
}

func TestMetricsNilReceiverSafe(t *testing.T) {
	var m *Metrics

	m.Inc(MetricRequests)
	m.Observe(MetricRequestLatency, time.Millisecond)

	if m.Enabled() || m.LatencyEnabled() {
		t.Fatal("nil metrics must report disabled")
	}
	if got := m.Value(MetricRequests); got != 0 {
		t.Fatalf("expected zero, got %d", got)
	}
	if s := m.Snapshot(); len(s.Counters) != 0 {
		t.Fatalf("expected empty snapshot, got %d counters", len(s.Counters))
	}
}

func TestMetricsIncAndValue(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	m.Inc(MetricRequests)
	m.Inc(MetricRequests)
	m.Inc(MetricRefreshSuccess)

	if got := m.Value(MetricRequests); got != 2 {
		t.Fatalf("expected 2 requests, got %d", got)
	}
	if got := m.Value(MetricRefreshSuccess); got != 1 {
		t.Fatalf("expected 1 refresh success, got %d", got)
	}
	if got := m.Value(MetricRefreshFailure); got != 0 {
		t.Fatalf("expected untouched counter to be zero, got %d", got)
	}
}

func TestMetricsIncOutOfRangeIgnored(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	m.Inc(metricIDCount)
	m.Inc(metricIDCount + 100)

	s := m.Snapshot()
	for id, v := range s.Counters {
		if v != 0 {
			t.Fatalf("expected all counters zero, metric %d has %d", id, v)
		}
	}
}

func TestMetricsConcurrentInc(t *testing.T) {
	const (
		goroutines = 16
		perWorker  = 1000
	)

	m := NewMetrics(MetricsConfig{Enabled: true})

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				m.Inc(MetricAuthChallenges)
			}
		}()
	}
	wg.Wait()

	if got := m.Value(MetricAuthChallenges); got != goroutines*perWorker {
		t.Fatalf("expected %d, got %d", goroutines*perWorker, got)
	}
}

func TestMetricsHistogramBuckets(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})

	samples := []struct {
		d      time.Duration
		bucket int
	}{
		{3 * time.Millisecond, 0},
		{5 * time.Millisecond, 0},
		{8 * time.Millisecond, 1},
		{20 * time.Millisecond, 2},
		{40 * time.Millisecond, 3},
		{90 * time.Millisecond, 4},
		{200 * time.Millisecond, 5},
		{400 * time.Millisecond, 6},
		{2 * time.Second, 7},
	}
	for _, s := range samples {
		m.Observe(MetricRequestLatency, s.d)
	}

	snap := m.Snapshot()
	buckets, ok := snap.Histograms[MetricRequestLatency]
	if !ok {
		t.Fatal("expected request latency histogram in snapshot")
	}

	want := make([]uint64, histBucketCount)
	for _, s := range samples {
		want[s.bucket]++
	}
	for i := range want {
		if buckets[i] != want[i] {
			t.Fatalf("bucket %d: expected %d, got %d", i, want[i], buckets[i])
		}
	}
}

func TestMetricsObserveRequiresHistogramMetric(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})

	// Counter IDs never accumulate histogram samples.
	m.Observe(MetricRequests, 10*time.Millisecond)

	snap := m.Snapshot()
	if _, ok := snap.Histograms[MetricRequests]; ok {
		t.Fatal("counter metric must not appear as a histogram")
	}
	for _, id := range []MetricID{MetricRequestLatency, MetricRefreshLatency} {
		for i, v := range snap.Histograms[id] {
			if v != 0 {
				t.Fatalf("metric %d bucket %d: expected 0, got %d", id, i, v)
			}
		}
	}
}

func TestMetricsObserveWithoutLatencyEnabled(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	m.Observe(MetricRequestLatency, 10*time.Millisecond)

	snap := m.Snapshot()
	if len(snap.Histograms) != 0 {
		t.Fatalf("expected no histograms without latency enabled, got %d", len(snap.Histograms))
	}
}

func TestMetricsSnapshotIsDetached(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})

	m.Inc(MetricRequests)
	m.Observe(MetricRefreshLatency, 30*time.Millisecond)

	first := m.Snapshot()

	m.Inc(MetricRequests)
	m.Observe(MetricRefreshLatency, 30*time.Millisecond)

	if got := first.Counters[MetricRequests]; got != 1 {
		t.Fatalf("snapshot must not track later increments, got %d", got)
	}
	if got := first.Histograms[MetricRefreshLatency][3]; got != 1 {
		t.Fatalf("snapshot histogram must be a copy, got %d", got)
	}

	second := m.Snapshot()
	if got := second.Counters[MetricRequests]; got != 2 {
		t.Fatalf("expected 2 after second snapshot, got %d", got)
	}
}
