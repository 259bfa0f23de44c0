package goConvert

import (
	"sync/atomic"
	"time"
)

// MetricID identifies one in-process counter or histogram.
type MetricID uint16

const (
	// MetricLoginSuccess counts submits that obtained a token.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure counts every failed submit, including 401s and timeouts.
	MetricLoginFailure
	// MetricLoginUnauthorized counts submits rejected with 401.
	MetricLoginUnauthorized
	// MetricLoginTimeout counts submits that exceeded Session.TokenTimeout.
	MetricLoginTimeout
	// MetricLoginBusy counts submits refused because one was in flight.
	MetricLoginBusy
	MetricLogout
	MetricNavigate
	// MetricTokenRestored counts start-up restores that found a usable token.
	MetricTokenRestored
	// MetricTokenExpired counts stored tokens discarded on restore.
	MetricTokenExpired
	MetricConversionIssued
	MetricConversionApplied
	// MetricConversionStale counts responses discarded because a newer request
	// had been issued.
	MetricConversionStale
	MetricConversionFailure
	MetricConversionTimeout
	// MetricConversionLatency is a histogram of conversion round trips.
	MetricConversionLatency
	// MetricTokenExchangeLatency is a histogram of token exchange round trips.
	MetricTokenExchangeLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics is a fixed set of lock-free counters and latency histograms.
//
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of every counter and, when latency
// histograms are enabled, every histogram's raw bucket counts.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics allocates a Metrics set configured by cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether counters are recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled reports whether histograms are recorded.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc adds one to the counter id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records d in histogram id. Counter IDs are ignored.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enableLatency || !IsLatencyMetric(id) {
		return
	}
	atomic.AddUint64(&m.histograms[id].buckets[bucketIndex(d)], 1)
}

// Value returns the current value of counter id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies every counter and histogram. Disabled metrics yield empty
// maps.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, len(latencyMetrics)),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		if IsLatencyMetric(id) {
			continue
		}
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		for _, id := range latencyMetrics {
			buckets := make([]uint64, histBucketCount)
			for i := 0; i < histBucketCount; i++ {
				buckets[i] = atomic.LoadUint64(&m.histograms[id].buckets[i])
			}
			s.Histograms[id] = buckets
		}
	}

	return s
}

var latencyMetrics = [...]MetricID{MetricConversionLatency, MetricTokenExchangeLatency}

// IsLatencyMetric reports whether id names a histogram rather than a counter.
func IsLatencyMetric(id MetricID) bool {
	return id == MetricConversionLatency || id == MetricTokenExchangeLatency
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
