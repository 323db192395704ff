package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonitor(t *testing.T) {
	t.Run("Records fact operations", func(t *testing.T) {
		m := NewMonitor()
		m.RecordInsert()
		m.RecordInsert()
		m.RecordUpdate()
		m.RecordRetract()

		stats := m.Stats()
		assert.Equal(t, 2, stats.Inserts)
		assert.Equal(t, 1, stats.Updates)
		assert.Equal(t, 1, stats.Retracts)
		assert.Equal(t, 1, stats.Facts)
	})

	t.Run("Records calculations", func(t *testing.T) {
		m := NewMonitor()
		m.EndCalculation(m.StartCalculation(), nil)
		m.EndCalculation(m.StartCalculation(), errors.New("boom"))

		stats := m.Stats()
		assert.Equal(t, 2, stats.Calculations)
		assert.Equal(t, 1, stats.Failures)
		assert.GreaterOrEqual(t, stats.CalculationTime.Nanoseconds(), int64(0))
	})

	t.Run("End without start is ignored", func(t *testing.T) {
		m := NewMonitor()
		assert.Zero(t, m.EndCalculation(time.Time{}, nil))
		assert.Zero(t, m.Stats().Calculations)
	})

	t.Run("Overlapping calculations keep their own start", func(t *testing.T) {
		m := NewMonitor()
		first := m.StartCalculation()
		time.Sleep(20 * time.Millisecond)
		second := m.StartCalculation()

		d1 := m.EndCalculation(first, nil)
		d2 := m.EndCalculation(second, nil)
		assert.GreaterOrEqual(t, d1, 20*time.Millisecond)
		assert.Less(t, d2, d1)
		assert.Equal(t, 2, m.Stats().Calculations)
		assert.Equal(t, d1+d2, m.Stats().CalculationTime)
	})

	t.Run("Reset", func(t *testing.T) {
		m := NewMonitor()
		m.RecordInsert()
		m.EndCalculation(m.StartCalculation(), nil)
		m.Reset()
		assert.Equal(t, Stats{}, m.Stats())
	})

	t.Run("Concurrent readers", func(t *testing.T) {
		m := NewMonitor()
		var wg sync.WaitGroup
		for range 4 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range 100 {
					m.RecordInsert()
					_ = m.Stats()
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 400, m.Stats().Inserts)
	})

	t.Run("String", func(t *testing.T) {
		s := Stats{Inserts: 3, Retracts: 1, Facts: 2, Calculations: 2}
		out := s.String()
		assert.Contains(t, out, "Facts: 2 (inserts 3, updates 0, retracts 1)")
		assert.Contains(t, out, "Calculations: 2 (0 failed")
	})
}
