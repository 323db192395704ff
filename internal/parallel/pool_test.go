package parallel

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gitrdm/gokanscore/internal/testdata"
	"github.com/gitrdm/gokanscore/pkg/score"
	"github.com/gitrdm/gokanscore/pkg/session"
	"github.com/gitrdm/gokanscore/pkg/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	worker int
	mu     sync.Mutex
	busy   bool
	runs   int
}

// run flags a replica used by two tasks at once.
func (c *counter) run(t *testing.T) {
	c.mu.Lock()
	assert.False(t, c.busy, "replica %d used concurrently", c.worker)
	c.busy = true
	c.mu.Unlock()

	c.runs++

	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
}

func counters(_ context.Context, worker int) (*counter, error) {
	return &counter{worker: worker}, nil
}

func TestReplicate(t *testing.T) {
	replicas, err := Replicate(context.Background(), 4, counters)
	require.NoError(t, err)
	require.Len(t, replicas, 4)
	for i, r := range replicas {
		assert.Equal(t, i, r.worker)
	}

	boom := errors.New("boom")
	_, err = Replicate(context.Background(), 4, func(_ context.Context, worker int) (*counter, error) {
		if worker == 2 {
			return nil, boom
		}
		return &counter{worker: worker}, nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestEach(t *testing.T) {
	replicas, err := Replicate(context.Background(), 3, counters)
	require.NoError(t, err)

	err = Each(context.Background(), replicas, func(_ context.Context, worker int, c *counter) error {
		assert.Equal(t, worker, c.worker)
		c.run(t)
		return nil
	})
	require.NoError(t, err)
	for _, r := range replicas {
		assert.Equal(t, 1, r.runs)
	}

	boom := errors.New("boom")
	err = Each(context.Background(), replicas, func(context.Context, int, *counter) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestPool(t *testing.T) {
	t.Run("Runs every task on an owned replica", func(t *testing.T) {
		p, err := NewPool(context.Background(), 3, counters)
		require.NoError(t, err)
		assert.Equal(t, 3, p.Size())

		var done atomic.Int64
		for range 100 {
			require.NoError(t, p.Submit(context.Background(), func(c *counter) {
				c.run(t)
				done.Add(1)
			}))
		}
		p.Shutdown()
		assert.Equal(t, int64(100), done.Load())

		runs := 0
		for _, r := range p.replicas {
			runs += r.runs
		}
		assert.Equal(t, 100, runs)
	})

	t.Run("Do returns the task result", func(t *testing.T) {
		p, err := NewPool(context.Background(), 2, counters)
		require.NoError(t, err)
		defer p.Shutdown()

		boom := errors.New("boom")
		assert.ErrorIs(t, p.Do(context.Background(), func(*counter) error { return boom }), boom)
		assert.NoError(t, p.Do(context.Background(), func(*counter) error { return nil }))
	})

	t.Run("Submit after shutdown", func(t *testing.T) {
		p, err := NewPool(context.Background(), 1, counters)
		require.NoError(t, err)
		p.Shutdown()
		p.Shutdown()

		assert.ErrorIs(t, p.Submit(context.Background(), func(*counter) {}), ErrPoolShutdown)
		assert.ErrorIs(t, p.Do(context.Background(), func(*counter) error { return nil }), ErrPoolShutdown)
	})

	t.Run("Default size", func(t *testing.T) {
		p, err := NewPool(context.Background(), 0, counters)
		require.NoError(t, err)
		defer p.Shutdown()
		assert.Positive(t, p.Size())
	})

	t.Run("Failed build", func(t *testing.T) {
		_, err := NewPool(context.Background(), 2, func(context.Context, int) (*counter, error) {
			return nil, errors.New("no replica")
		})
		assert.EqualError(t, err, "no replica")
	})
}

func TestReplicatedSessionsScoreIndependently(t *testing.T) {
	cfg := session.DefaultConfig()
	cfg.Score.Type = score.TypeHardSoft
	provider := func(f *stream.Factory) []*stream.Constraint {
		return []*stream.Constraint{
			stream.ForEachUniquePair(f, testdata.EntityCode, stream.EqualOn(testdata.EntityValue, testdata.EntityValue)).
				Penalize("same value", score.OfHardSoft(1, 0)),
		}
	}
	factory, err := session.NewFactory(context.Background(), cfg, provider)
	require.NoError(t, err)

	replicas, err := Replicate(context.Background(), 4, func(ctx context.Context, _ int) (session.Session, error) {
		return factory.NewSession(ctx)
	})
	require.NoError(t, err)

	scores := make([]score.Score, len(replicas))
	err = Each(context.Background(), replicas, func(_ context.Context, worker int, s session.Session) error {
		// Worker w has w+2 entities on 2 values.
		sol := testdata.Generate(testdata.Config{Values: 2, EntityGroups: 1, Entities: worker + 2})
		for _, f := range sol.Facts() {
			if err := s.Insert(f); err != nil {
				return err
			}
		}
		sc, err := s.CalculateScore(0)
		scores[worker] = sc
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, []score.Score{
		score.OfHardSoft(0, 0),
		score.OfHardSoft(-1, 0),
		score.OfHardSoft(-2, 0),
		score.OfHardSoft(-4, 0),
	}, scores)
}
