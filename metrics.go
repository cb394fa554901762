package adminauth

import "sync/atomic"

// MetricID identifies one counter in the in-process metrics set.
type MetricID uint16

const (
	MetricBeginLoginSuccess MetricID = iota
	MetricBeginLoginFailure
	MetricVerifyLoginSuccess
	MetricVerifyLoginFailure
	MetricRefreshSuccess
	MetricRefreshFailure
	MetricLogout
	MetricRevokedTokenRejected
	MetricPasswordResetRequest
	MetricPasswordResetConfirmSuccess
	MetricPasswordResetConfirmFailure
	MetricEmailVerified
	MetricVerificationResent

	metricIDCount
)

// Metrics is a fixed set of atomic counters. When disabled every operation
// is a no-op; reads and writes are safe from any goroutine.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]atomic.Uint64
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	m.counters[id].Add(1)
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{Counters: make(map[MetricID]uint64, metricIDCount)}
	if m == nil || !m.enabled {
		return snap
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		snap.Counters[id] = m.counters[id].Load()
	}
	return snap
}
