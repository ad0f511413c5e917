package metrics

import (
	"sync"
	"time"

	"github.com/avelior/calex/internal/types"
)

// Metrics holds all application metrics
type Metrics struct {
	mu sync.RWMutex

	// Fetch metrics
	PagesFetchedTotal   int64
	RateLimitHitsTotal  int64
	WindowFailuresTotal int64
	DayFailuresTotal    int64

	// Run metrics
	RunsStartedTotal   int64
	RunsSucceededTotal int64
	RunsEmptyTotal     int64
	RunsFailedTotal    int64
	RowsExportedTotal  int64
	lastRunDuration    time.Duration

	// Timing
	startTime time.Time
}

// Global metrics instance
var instance *Metrics
var once sync.Once

// Get returns the singleton metrics instance
func Get() *Metrics {
	once.Do(func() {
		instance = &Metrics{startTime: time.Now()}
	})
	return instance
}

// RecordPageFetched increments the fetched-page counter
func (m *Metrics) RecordPageFetched() {
	m.mu.Lock()
	m.PagesFetchedTotal++
	m.mu.Unlock()
}

// RecordRateLimitHit increments the rate-limit counter
func (m *Metrics) RecordRateLimitHit() {
	m.mu.Lock()
	m.RateLimitHitsTotal++
	m.mu.Unlock()
}

// RecordWindowFailure increments the abandoned-window counter
func (m *Metrics) RecordWindowFailure() {
	m.mu.Lock()
	m.WindowFailuresTotal++
	m.mu.Unlock()
}

// RecordDayFailure increments the failed-day counter
func (m *Metrics) RecordDayFailure() {
	m.mu.Lock()
	m.DayFailuresTotal++
	m.mu.Unlock()
}

// RecordRunStarted increments the started-run counter
func (m *Metrics) RecordRunStarted() {
	m.mu.Lock()
	m.RunsStartedTotal++
	m.mu.Unlock()
}

// RecordRunFinished records the outcome of a run
func (m *Metrics) RecordRunFinished(rows int, status string, duration time.Duration) {
	m.mu.Lock()
	switch status {
	case types.RunStatusEmpty:
		m.RunsEmptyTotal++
	case types.RunStatusFailed:
		m.RunsFailedTotal++
	default:
		m.RunsSucceededTotal++
	}
	m.RowsExportedTotal += int64(rows)
	m.lastRunDuration = duration
	m.mu.Unlock()
}

// Snapshot returns the current counters for the stats endpoint
func (m *Metrics) Snapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"pages_fetched":     m.PagesFetchedTotal,
		"rate_limit_hits":   m.RateLimitHitsTotal,
		"window_failures":   m.WindowFailuresTotal,
		"day_failures":      m.DayFailuresTotal,
		"runs_started":      m.RunsStartedTotal,
		"runs_succeeded":    m.RunsSucceededTotal,
		"runs_empty":        m.RunsEmptyTotal,
		"runs_failed":       m.RunsFailedTotal,
		"rows_exported":     m.RowsExportedTotal,
		"last_run_duration": m.lastRunDuration.Seconds(),
		"uptime_seconds":    time.Since(m.startTime).Seconds(),
	}
}
