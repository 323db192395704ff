package session

// monitor.go: per-session statistics

import (
	"fmt"
	"sync"
	"time"
)

// Stats holds the counters of one session.
type Stats struct {
	// Working memory
	Inserts  int // Facts inserted
	Updates  int // Fact updates notified
	Retracts int // Facts retracted
	Facts    int // Facts currently in working memory

	// Score calculation
	Calculations    int           // Score calculations performed
	CalculationTime time.Duration // Time spent calculating
	Failures        int           // Calculations that returned an error
}

// Monitor collects Stats. It is safe for concurrent use, so a reporter may
// read the stats while the session runs on another goroutine.
type Monitor struct {
	mu    sync.Mutex
	stats Stats
}

// NewMonitor creates an empty monitor.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// Stats returns a copy of the current statistics.
func (m *Monitor) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// RecordInsert records one inserted fact.
func (m *Monitor) RecordInsert() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.Inserts++
	m.stats.Facts++
}

// RecordUpdate records one fact update.
func (m *Monitor) RecordUpdate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.Updates++
}

// RecordRetract records one retracted fact.
func (m *Monitor) RecordRetract() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.Retracts++
	m.stats.Facts--
}

// StartCalculation marks the beginning of a score calculation. Pass the
// returned time to EndCalculation; sessions sharing a monitor each keep
// their own.
func (m *Monitor) StartCalculation() time.Time {
	return time.Now()
}

// EndCalculation records a score calculation begun at start and returns its
// duration. A zero start is ignored.
func (m *Monitor) EndCalculation(start time.Time, err error) time.Duration {
	if start.IsZero() {
		return 0
	}
	d := time.Since(start)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.Calculations++
	m.stats.CalculationTime += d
	if err != nil {
		m.stats.Failures++
	}
	return d
}

// Reset clears all statistics.
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats = Stats{}
}

// String returns a formatted summary of the statistics.
func (s Stats) String() string {
	avg := time.Duration(0)
	if s.Calculations > 0 {
		avg = s.CalculationTime / time.Duration(s.Calculations)
	}
	return fmt.Sprintf("Session Statistics:\n"+
		"  Facts: %d (inserts %d, updates %d, retracts %d)\n"+
		"  Calculations: %d (%d failed, %v total, %v average)",
		s.Facts, s.Inserts, s.Updates, s.Retracts,
		s.Calculations, s.Failures, s.CalculationTime, avg)
}
