package problems

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/gitrdm/gokanscore/pkg/score"
	"github.com/gitrdm/gokanscore/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var backends = []session.Backend{session.BackendBavet, session.BackendRete}

func loaded(t *testing.T, backend session.Backend, p Problem) session.Session {
	t.Helper()
	cfg := session.DefaultConfig()
	cfg.Backend = backend
	cfg.ConstraintMatchEnabled = true
	f, err := session.NewFactory(context.Background(), Configure(cfg, p), p.Provider())
	require.NoError(t, err)
	s, err := f.NewSession(context.Background())
	require.NoError(t, err)
	require.NoError(t, Load(s, p))
	return s
}

func calculate(t *testing.T, s session.Session) score.Score {
	t.Helper()
	sc, err := s.CalculateScore(0)
	require.NoError(t, err)
	return sc
}

func TestQueensScore(t *testing.T) {
	for _, backend := range backends {
		t.Run(string(backend), func(t *testing.T) {
			b := NewQueens(4, rand.New(rand.NewPCG(1, 2)))
			for _, q := range b.Queens {
				q.Row = 0
			}
			s := loaded(t, backend, b)
			assert.Equal(t, score.OfSimple(-6), calculate(t, s))

			// 1 3 0 2 is a solution.
			for col, row := range []int{1, 3, 0, 2} {
				b.Queens[col].Row = row
				require.NoError(t, s.Update(b.Queens[col]))
			}
			assert.Equal(t, score.OfSimple(0), calculate(t, s))

			b.Queens[3].Row = 1
			require.NoError(t, s.Update(b.Queens[3]))
			// A row with queen 0 and one diagonal each with queens 1 and 2.
			assert.Equal(t, score.OfSimple(-3), calculate(t, s))
		})
	}
}

func TestColoringScore(t *testing.T) {
	for _, backend := range backends {
		t.Run(string(backend), func(t *testing.T) {
			c := NewColoring(7, rand.New(rand.NewPCG(1, 2)))
			require.Len(t, c.Regions, 7)
			require.Len(t, c.Borders, 9)
			for _, r := range c.Regions {
				r.Color = c.Colors[0]
			}
			s := loaded(t, backend, c)
			assert.Equal(t, score.OfHardSoft(-9, -1), calculate(t, s))

			// A proper three coloring.
			colors := []int{0, 1, 2, 0, 1, 0, 0}
			for i, r := range c.Regions {
				r.Color = c.Colors[colors[i]]
				require.NoError(t, s.Update(r))
			}
			assert.Equal(t, score.OfHardSoft(0, -3), calculate(t, s))
		})
	}
}

func TestColoringRing(t *testing.T) {
	c := NewColoring(12, rand.New(rand.NewPCG(1, 2)))
	assert.Len(t, c.Colors, 4)
	assert.Len(t, c.Regions, 12)
	assert.Len(t, c.Borders, 16)
}

func TestCloudScore(t *testing.T) {
	for _, backend := range backends {
		t.Run(string(backend), func(t *testing.T) {
			a := &Computer{ID: 0, CPU: 4, Memory: 8, Cost: 100}
			b := &Computer{ID: 1, CPU: 4, Memory: 8, Cost: 50}
			p0 := &Process{ID: 0, CPU: 3, Memory: 2, Computer: a}
			p1 := &Process{ID: 1, CPU: 3, Memory: 7, Computer: a}
			c := &Cloud{Computers: []*Computer{a, b}, Processes: []*Process{p0, p1}}

			s := loaded(t, backend, c)
			assert.Equal(t, score.OfHardSoft(-3, -100), calculate(t, s))

			totals, err := s.ConstraintMatchTotals()
			require.NoError(t, err)
			var cpu, memory score.Score
			for id, total := range totals {
				switch id.Name {
				case "required cpu":
					cpu = total.Score()
				case "required memory":
					memory = total.Score()
				}
			}
			assert.Equal(t, score.OfHardSoft(-2, 0), cpu)
			assert.Equal(t, score.OfHardSoft(-1, 0), memory)

			p1.Computer = b
			require.NoError(t, s.Update(p1))
			assert.Equal(t, score.OfHardSoft(0, -150), calculate(t, s))

			p0.Computer = b
			require.NoError(t, s.Update(p0))
			assert.Equal(t, score.OfHardSoft(-3, -50), calculate(t, s))
		})
	}
}

func TestSearchMatchesScoreFromScratch(t *testing.T) {
	for _, name := range Names() {
		for _, backend := range backends {
			t.Run(name+"/"+string(backend), func(t *testing.T) {
				r := rand.New(rand.NewPCG(7, 11))
				p, err := New(name, 8, r)
				require.NoError(t, err)
				s := loaded(t, backend, p)
				initial := calculate(t, s)

				res, err := Search(context.Background(), s, p, 300, r)
				require.NoError(t, err)
				assert.LessOrEqual(t, res.Steps, 300)
				assert.LessOrEqual(t, res.Accepted, res.Steps)
				assert.GreaterOrEqual(t, res.Score.CompareTo(initial), 0, "hill climbing never gets worse")

				fresh := loaded(t, backend, p)
				assert.Equal(t, res.Score, calculate(t, fresh))
			})
		}
	}
}

func TestSearchStopsOnCancel(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	p := NewCloud(4, r)
	s := loaded(t, session.BackendBavet, p)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Search(ctx, s, p, 100, r)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUnloadEmptiesSession(t *testing.T) {
	for _, backend := range backends {
		t.Run(string(backend), func(t *testing.T) {
			p := NewCloud(3, rand.New(rand.NewPCG(5, 6)))
			s := loaded(t, backend, p)
			require.NoError(t, Unload(s, p))
			assert.True(t, calculate(t, s).IsZero())
			assert.Zero(t, s.Stats().Facts)
		})
	}
}

func TestNew(t *testing.T) {
	assert.Equal(t, []string{"cloudbalancing", "graphcoloring", "nqueens"}, Names())

	r := rand.New(rand.NewPCG(1, 1))
	_, err := New("sudoku", 4, r)
	assert.ErrorContains(t, err, "unknown problem")
	_, err = New("nqueens", 0, r)
	assert.ErrorContains(t, err, "must be positive")

	p, err := New("nqueens", 5, r)
	require.NoError(t, err)
	assert.Len(t, p.Facts(), 5)
	assert.Contains(t, p.String(), "Q ")
}

func TestConfigureKeepsExplicitWeights(t *testing.T) {
	cfg := session.DefaultConfig()
	cfg.ConstraintWeights = map[string]string{"cloudbalancing/computer cost": "0hard/2soft"}
	got := Configure(cfg, NewCloud(1, rand.New(rand.NewPCG(1, 1))))

	assert.Equal(t, "cloudbalancing", got.ConstraintPackage)
	assert.Equal(t, score.TypeHardSoft, got.Score.Type)
	assert.Equal(t, map[string]string{"cloudbalancing/computer cost": "0hard/2soft"}, got.ConstraintWeights)
}
