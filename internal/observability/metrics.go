package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters for requests and the escalation
// sweep.
type Metrics struct {
	mu             sync.Mutex
	requestCount   map[string]int64
	errorCount     map[string]int64
	sweepRuns      int64
	sweepChecked   int64
	sweepEscalated int64
	sweepFailed    int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordSweep accumulates one escalation sweep outcome.
func (m *Metrics) RecordSweep(checked, escalated, failed int) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepRuns++
	m.sweepChecked += int64(checked)
	m.sweepEscalated += int64(escalated)
	m.sweepFailed += int64(failed)
}

// SweepTotals returns cumulative sweep counters.
func (m *Metrics) SweepTotals() (runs, checked, escalated, failed int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sweepRuns, m.sweepChecked, m.sweepEscalated, m.sweepFailed
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
