package service

import (
	"runtime"
	"sync/atomic"
	"time"

	"invoicing-backend/internal/core/ports"
)

// MetricsServiceImpl collects in-process operational counters. It deliberately
// has no teacher analogue wired to an external exporter: nothing in this
// service exposes a scrape endpoint, only a self-reported JSON snapshot.
type MetricsServiceImpl struct {
	startedAt     time.Time
	totalRequests int64
	errorCount    int64
	latencySumMs  int64
	cache         ports.CacheService
}

// NewMetricsService creates a new MetricsServiceImpl.
func NewMetricsService(cache ports.CacheService) *MetricsServiceImpl {
	return &MetricsServiceImpl{
		startedAt: time.Now().UTC(),
		cache:     cache,
	}
}

// RecordRequest accumulates a completed request's outcome and latency.
func (m *MetricsServiceImpl) RecordRequest(path string, status int, latency time.Duration) {
	atomic.AddInt64(&m.totalRequests, 1)
	atomic.AddInt64(&m.latencySumMs, latency.Milliseconds())
	if status >= 500 {
		atomic.AddInt64(&m.errorCount, 1)
	}
}

// Snapshot returns a point-in-time read of collected metrics.
func (m *MetricsServiceImpl) Snapshot() ports.MetricsSnapshot {
	total := atomic.LoadInt64(&m.totalRequests)
	sumMs := atomic.LoadInt64(&m.latencySumMs)

	avgLatency := 0.0
	if total > 0 {
		avgLatency = float64(sumMs) / float64(total)
	}

	var hits, misses int64
	if m.cache != nil {
		hits, misses = m.cache.Stats()
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return ports.MetricsSnapshot{
		UptimeSeconds: int64(time.Since(m.startedAt).Seconds()),
		TotalRequests: total,
		ErrorCount:    atomic.LoadInt64(&m.errorCount),
		AvgLatencyMs:  avgLatency,
		CacheHits:     hits,
		CacheMisses:   misses,
		MemoryAllocMB: float64(memStats.Alloc) / (1024 * 1024),
	}
}
