package session

import (
	"context"
	"testing"

	"github.com/gitrdm/gokanscore/internal/testdata"
	"github.com/gitrdm/gokanscore/pkg/constraint"
	"github.com/gitrdm/gokanscore/pkg/score"
	"github.com/gitrdm/gokanscore/pkg/scoreerr"
	"github.com/gitrdm/gokanscore/pkg/scoreholder"
	"github.com/gitrdm/gokanscore/pkg/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	sameValue = constraint.NewID("test", "same value")
	property  = constraint.NewID("test", "property")
)

// lavishProvider penalizes entities sharing a value, rewards each entity by
// its integer property and carries one constraint disabled by a zero weight.
func lavishProvider(f *stream.Factory) []*stream.Constraint {
	return []*stream.Constraint{
		stream.ForEachUniquePair(f, testdata.EntityCode, stream.EqualOn(testdata.EntityValue, testdata.EntityValue)).
			Penalize("same value", score.OfHardSoft(1, 0)),
		stream.ForEach[*testdata.Entity](f).
			RewardConfigurableBy("property", stream.UniWeigher(func(e *testdata.Entity) int { return e.IntegerProperty })),
		stream.ForEach[*testdata.ExtraFact](f).
			Penalize("disabled", score.OfHardSoft(0, 0)),
	}
}

func lavishConfig(backend Backend) Config {
	return Config{
		Backend:                backend,
		ConstraintPackage:      "test",
		ConstraintMatchEnabled: true,
		Score:                  ScoreConfig{Type: score.TypeHardSoft},
		ConstraintWeights:      map[string]string{"test/property": "0hard/2soft"},
	}
}

func lavish() *testdata.Solution {
	return testdata.Generate(testdata.Config{ValueGroups: 1, Values: 3, EntityGroups: 1, Entities: 5, ExtraFacts: 2})
}

func newSession(t *testing.T, cfg Config, opts ...SessionOption) Session {
	t.Helper()
	f, err := NewFactory(context.Background(), cfg, lavishProvider)
	require.NoError(t, err)
	s, err := f.NewSession(context.Background(), opts...)
	require.NoError(t, err)
	return s
}

func insertAll(t *testing.T, s Session, facts []any) {
	t.Helper()
	for _, f := range facts {
		require.NoError(t, s.Insert(f))
	}
}

func calculate(t *testing.T, s Session) score.Score {
	t.Helper()
	sc, err := s.CalculateScore(0)
	require.NoError(t, err)
	return sc
}

var backends = []Backend{BackendBavet, BackendRete}

func TestSessionScoresOnEveryBackend(t *testing.T) {
	for _, backend := range backends {
		t.Run(string(backend), func(t *testing.T) {
			sol := lavish()
			s := newSession(t, lavishConfig(backend))
			assert.Equal(t, backend, s.Backend())
			assert.True(t, s.ConstraintMatchEnabled())

			insertAll(t, s, sol.Facts())
			assert.Equal(t, score.OfHardSoft(-2, 10), calculate(t, s))

			// Entity 2 joins entities 0 and 3 on value 0.
			e2 := sol.Entities[2]
			e2.Value = sol.Values[0]
			require.NoError(t, s.Update(e2))
			assert.Equal(t, score.OfHardSoft(-4, 10), calculate(t, s))

			require.NoError(t, s.Retract(sol.Entities[4]))
			assert.Equal(t, score.OfHardSoft(-3, 8), calculate(t, s))

			totals, err := s.ConstraintMatchTotals()
			require.NoError(t, err)
			assert.Equal(t, 3, totals[sameValue].MatchCount())
			assert.Equal(t, 4, totals[property].MatchCount())
			assert.NotContains(t, totals, constraint.NewID("test", "disabled"))

			stats := s.Stats()
			assert.Equal(t, len(sol.Facts()), stats.Inserts)
			assert.Equal(t, 1, stats.Updates)
			assert.Equal(t, 1, stats.Retracts)
			assert.Equal(t, len(sol.Facts())-1, stats.Facts)
			assert.Equal(t, 3, stats.Calculations)
			assert.Zero(t, stats.Failures)
		})
	}
}

func TestSessionInitScore(t *testing.T) {
	s := newSession(t, lavishConfig(BackendBavet))
	insertAll(t, s, lavish().Facts())

	sc, err := s.CalculateScore(-3)
	require.NoError(t, err)
	assert.Equal(t, -3, sc.InitScore())
	assert.False(t, sc.IsSolutionInitialized())
}

func TestSessionsAreIndependent(t *testing.T) {
	f, err := NewFactory(context.Background(), lavishConfig(BackendRete), lavishProvider)
	require.NoError(t, err)
	a, err := f.NewSession(context.Background())
	require.NoError(t, err)
	b, err := f.NewSession(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, a.ID(), b.ID())

	insertAll(t, a, lavish().Facts())
	assert.Equal(t, score.OfHardSoft(-2, 10), calculate(t, a))
	assert.Equal(t, score.OfHardSoft(0, 0), calculate(t, b))
}

func TestRejectedFactsAreNotCounted(t *testing.T) {
	for _, backend := range backends {
		t.Run(string(backend), func(t *testing.T) {
			sol := lavish()
			s := newSession(t, lavishConfig(backend))
			e := sol.Entities[0]
			require.NoError(t, s.Insert(e))

			assert.ErrorIs(t, s.Insert(e), scoreerr.ErrInvalidState)
			assert.ErrorIs(t, s.Update(sol.Entities[1]), scoreerr.ErrInvalidState)
			assert.ErrorIs(t, s.Retract(sol.Entities[1]), scoreerr.ErrInvalidState)
			assert.ErrorIs(t, s.Insert(nil), scoreerr.ErrInvalidArgument)

			stats := s.Stats()
			assert.Equal(t, 1, stats.Inserts)
			assert.Zero(t, stats.Updates)
			assert.Zero(t, stats.Retracts)
		})
	}
}

func TestMatchTrackingOverride(t *testing.T) {
	s := newSession(t, lavishConfig(BackendBavet), WithConstraintMatchEnabled(false))
	assert.False(t, s.ConstraintMatchEnabled())
	insertAll(t, s, lavish().Facts())
	assert.Equal(t, score.OfHardSoft(-2, 10), calculate(t, s))

	_, err := s.ConstraintMatchTotals()
	assert.ErrorIs(t, err, scoreerr.ErrInvalidState)
	_, err = s.Indictments()
	assert.ErrorIs(t, err, scoreerr.ErrInvalidState)
	_, err = Explain(s, 0)
	assert.ErrorIs(t, err, scoreerr.ErrInvalidState)
}

func TestSharedMonitor(t *testing.T) {
	m := NewMonitor()
	f, err := NewFactory(context.Background(), lavishConfig(BackendBavet), lavishProvider)
	require.NoError(t, err)
	for range 2 {
		s, err := f.NewSession(context.Background(), WithMonitor(m))
		require.NoError(t, err)
		insertAll(t, s, lavish().Facts())
		calculate(t, s)
	}
	assert.Equal(t, 2*len(lavish().Facts()), m.Stats().Inserts)
	assert.Equal(t, 2, m.Stats().Calculations)
}

func TestCustomScoreHolder(t *testing.T) {
	built := 0
	registry := scoreholder.NewRegistry()
	require.NoError(t, registry.Register("counting", func(def *score.Definition, enabled bool) (scoreholder.Holder, error) {
		built++
		return scoreholder.New(def, enabled, nil, "")
	}))

	cfg := lavishConfig(BackendRete)
	cfg.CustomScoreHolder = "counting"
	f, err := NewFactory(context.Background(), cfg, lavishProvider, WithRegistry(registry))
	require.NoError(t, err)
	s, err := f.NewSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, built)
	insertAll(t, s, lavish().Facts())
	assert.Equal(t, score.OfHardSoft(-2, 10), calculate(t, s))

	cfg.CustomScoreHolder = "missing"
	f, err = NewFactory(context.Background(), cfg, lavishProvider, WithRegistry(registry))
	require.NoError(t, err)
	_, err = f.NewSession(context.Background())
	assert.ErrorIs(t, err, scoreerr.ErrUnsupported)
}

func TestExplain(t *testing.T) {
	for _, backend := range backends {
		t.Run(string(backend), func(t *testing.T) {
			sol := lavish()
			s := newSession(t, lavishConfig(backend))
			insertAll(t, s, sol.Facts())

			e, err := Explain(s, 0)
			require.NoError(t, err)
			assert.Equal(t, score.OfHardSoft(-2, 10), e.Score)

			require.Len(t, e.Totals, 2)
			assert.Equal(t, TotalSummary{ID: sameValue, Weight: score.OfHardSoft(1, 0), Score: score.OfHardSoft(-2, 0), MatchCount: 2}, e.Totals[0])
			assert.Equal(t, TotalSummary{ID: property, Weight: score.OfHardSoft(0, 2), Score: score.OfHardSoft(0, 10), MatchCount: 5}, e.Totals[1])

			var order []any
			for _, ind := range e.Indictments {
				order = append(order, ind.Justification)
			}
			ents := sol.Entities
			assert.Equal(t, []any{ents[0], ents[1], ents[3], ents[4], ents[2]}, order)
			assert.Equal(t, score.OfHardSoft(-1, 2), e.Indictments[0].Score)
			assert.Equal(t, 2, e.Indictments[0].MatchCount)
			assert.Equal(t, score.OfHardSoft(0, 2), e.Indictments[4].Score)

			report := e.String()
			assert.Contains(t, report, "Score: -2hard/10soft")
			assert.Contains(t, report, "test/same value")
			assert.Contains(t, report, "Entity 2")
		})
	}
}

// twin facts all print the same, so only their order tells them apart.
type twin struct{ slot int }

func (*twin) String() string { return "twin" }

func TestExplainKeepsFirstMatchOrderOnTies(t *testing.T) {
	provider := func(f *stream.Factory) []*stream.Constraint {
		return []*stream.Constraint{
			stream.ForEach[*twin](f).Penalize("twin", score.OfHardSoft(0, 1)),
		}
	}
	for _, backend := range backends {
		t.Run(string(backend), func(t *testing.T) {
			cfg := Config{
				Backend:                backend,
				ConstraintPackage:      "test",
				ConstraintMatchEnabled: true,
				Score:                  ScoreConfig{Type: score.TypeHardSoft},
			}
			f, err := NewFactory(context.Background(), cfg, provider)
			require.NoError(t, err)

			for range 5 {
				s, err := f.NewSession(context.Background())
				require.NoError(t, err)
				var want []any
				for i := range 8 {
					tw := &twin{slot: i}
					want = append(want, tw)
					require.NoError(t, s.Insert(tw))
				}

				e, err := Explain(s, 0)
				require.NoError(t, err)
				var got []any
				for _, ind := range e.Indictments {
					got = append(got, ind.Justification)
				}
				assert.Equal(t, want, got)
			}
		})
	}
}
