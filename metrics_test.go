package otpgate

import (
	"sync"
	"testing"
)

func TestMetricsConcurrentIncrements(t *testing.T) {
	metrics := newMetrics(MetricsConfig{Enabled: true})

	const workers = 8
	const perWorker = 100

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				metrics.inc(MetricOTPIssued)
			}
		}()
	}
	wg.Wait()

	if got := metrics.Snapshot().Counters[MetricOTPIssued]; got != workers*perWorker {
		t.Fatalf("expected %d, got %d", workers*perWorker, got)
	}
}

func TestMetricsDisabled(t *testing.T) {
	metrics := newMetrics(MetricsConfig{Enabled: false})
	if metrics != nil {
		t.Fatal("disabled metrics must yield a nil collector")
	}

	metrics.inc(MetricOTPIssued)
	if got := metrics.Snapshot().Counters[MetricOTPIssued]; got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestMetricsIgnoresUnknownID(t *testing.T) {
	metrics := newMetrics(MetricsConfig{Enabled: true})
	metrics.inc(metricIDCount + 10)

	snap := metrics.Snapshot()
	for id, value := range snap.Counters {
		if value != 0 {
			t.Fatalf("counter %d unexpectedly %d", id, value)
		}
	}
}
