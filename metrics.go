package otpgate

import "sync/atomic"

// MetricID identifies one engine counter.
type MetricID uint16

const (
	// MetricOTPIssued counts persisted passcodes.
	MetricOTPIssued MetricID = iota
	// MetricOTPDenied counts issuance attempts refused by a lock or the tracker.
	MetricOTPDenied
	// MetricOTPVerifySuccess counts matched submissions.
	MetricOTPVerifySuccess
	// MetricOTPVerifyFailure counts wrong or expired submissions.
	MetricOTPVerifyFailure
	// MetricOTPLockout counts escalations to the account lock.
	MetricOTPLockout
	// MetricMailDeliveryFailure counts failed detached deliveries.
	MetricMailDeliveryFailure
	// MetricLoginSuccess counts minted token pairs.
	MetricLoginSuccess
	// MetricLoginFailure counts refused logins.
	MetricLoginFailure
	// MetricRegisterSuccess counts created user records.
	MetricRegisterSuccess
	// MetricRegisterDuplicate counts registrations refused for an existing email.
	MetricRegisterDuplicate
	// MetricResetRequest counts initiated password resets.
	MetricResetRequest
	// MetricResetSuccess counts applied password updates.
	MetricResetSuccess
	// MetricResetReuseRejected counts resets refused for reusing the old password.
	MetricResetReuseRejected
	metricIDCount
)

const cacheLineSize = 64

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds the engine's in-process counters. Counters are plain
// atomics with cache-line padding; exporters read via [Metrics.Snapshot].
type Metrics struct {
	enabled  bool
	counters [metricIDCount]paddedCounter
}

// MetricsSnapshot is a point-in-time copy of every counter.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

func newMetrics(cfg MetricsConfig) *Metrics {
	if !cfg.Enabled {
		return nil
	}
	return &Metrics{enabled: true}
}

func (m *Metrics) inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Snapshot copies all counters. Safe for concurrent use.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snapshot := MetricsSnapshot{Counters: make(map[MetricID]uint64, metricIDCount)}
	if m == nil || !m.enabled {
		return snapshot
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		snapshot.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	return snapshot
}
