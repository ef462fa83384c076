package monitoring

import (
	"sync/atomic"
	"time"

	"github.com/spacesedan/covidpulse/internal/models"
)

type Metrics struct {
	started          time.Time
	requestsTotal    atomic.Int64
	errorsTotal      atomic.Int64
	analysesTotal    atomic.Int64
	analysisFailures atomic.Int64
	cacheHits        atomic.Int64
	latencySum       atomic.Int64
	latencyCount     atomic.Int64
}

func NewMetrics() *Metrics {
	return &Metrics{started: time.Now()}
}

func (m *Metrics) RecordRequest(duration time.Duration, failed bool) {
	m.requestsTotal.Add(1)
	m.latencySum.Add(duration.Microseconds())
	m.latencyCount.Add(1)
	if failed {
		m.errorsTotal.Add(1)
	}
}

func (m *Metrics) RecordAnalysis(success bool) {
	m.analysesTotal.Add(1)
	if !success {
		m.analysisFailures.Add(1)
	}
}

func (m *Metrics) RecordCacheHit() {
	m.cacheHits.Add(1)
}

func (m *Metrics) GetAvgLatency() time.Duration {
	count := m.latencyCount.Load()
	if count == 0 {
		return 0
	}
	return time.Duration(m.latencySum.Load()/count) * time.Microsecond
}

func (m *Metrics) Snapshot() models.MetricsSnapshot {
	return models.MetricsSnapshot{
		Requests:         m.requestsTotal.Load(),
		Errors:           m.errorsTotal.Load(),
		Analyses:         m.analysesTotal.Load(),
		AnalysisFailures: m.analysisFailures.Load(),
		CacheHits:        m.cacheHits.Load(),
		AvgLatencyMs:     float64(m.GetAvgLatency().Microseconds()) / 1000,
		UptimeSeconds:    int64(time.Since(m.started).Seconds()),
	}
}
