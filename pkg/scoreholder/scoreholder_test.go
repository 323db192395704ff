package scoreholder

import (
	"errors"
	"testing"

	"github.com/gitrdm/gokanscore/pkg/constraint"
	"github.com/gitrdm/gokanscore/pkg/score"
	"github.com/gitrdm/gokanscore/pkg/scoreerr"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entity struct{ name string }

type activation struct {
	id    constraint.ID
	facts []any
}

func (a activation) ConstraintID() constraint.ID { return a.id }
func (a activation) Justifications() []any       { return a.facts }

var testID = constraint.NewID("pkg", "c")

func mustDefinition(t *testing.T, typ score.Type) *score.Definition {
	t.Helper()
	d, err := score.NewDefinition(typ)
	require.NoError(t, err)
	return d
}

func mustBendable(t *testing.T, typ score.Type, hard, soft int) *score.Definition {
	t.Helper()
	d, err := score.NewBendableDefinition(typ, hard, soft)
	require.NoError(t, err)
	return d
}

func TestSimpleHolderImpactAndUndo(t *testing.T) {
	h, err := NewSimpleHolder[int](mustDefinition(t, score.TypeSimple), true)
	require.NoError(t, err)
	require.NoError(t, h.ConfigureConstraintWeight(testID, score.OfSimple(1)))

	e := &entity{"e"}
	var undos []Undo
	for range 7 {
		undo, err := h.Penalize(activation{testID, []any{e}})
		require.NoError(t, err)
		undos = append(undos, undo)
	}
	assert.Equal(t, score.OfSimple(-7), h.ExtractScore(0))

	undo, err := h.PenalizeBy(activation{testID, nil}, 2)
	require.NoError(t, err)
	assert.Equal(t, score.NewSimpleScore(-1, -9), h.ExtractScore(-1))
	undo()
	for _, u := range undos {
		u()
	}
	assert.Equal(t, score.OfSimple(0), h.ExtractScore(0))

	totals, err := h.ConstraintMatchTotals()
	require.NoError(t, err)
	assert.Equal(t, 0, totals[testID].MatchCount())
	indictments, err := h.Indictments()
	require.NoError(t, err)
	assert.Empty(t, indictments)
}

func TestUndoTwicePanics(t *testing.T) {
	h, err := NewSimpleHolder[int](mustDefinition(t, score.TypeSimple), false)
	require.NoError(t, err)
	require.NoError(t, h.ConfigureConstraintWeight(testID, score.OfSimple(1)))

	undo, err := h.Reward(activation{id: testID})
	require.NoError(t, err)
	undo()
	assert.Panics(t, func() { undo() })
}

func TestBendableSingleHardLevelRouting(t *testing.T) {
	h, err := NewBendableHolder[int](mustBendable(t, score.TypeBendable, 2, 1), true)
	require.NoError(t, err)
	require.NoError(t, h.ConfigureConstraintWeight(testID, score.OfBendable([]int{3, 0}, []int{0})))

	e := &entity{"e"}
	_, err = h.ImpactScore(activation{testID, []any{e}}, 5)
	require.NoError(t, err)

	got := h.ExtractScore(0).(score.BendableScore)
	assert.Equal(t, 15, got.HardScore(0))
	assert.Equal(t, 0, got.HardScore(1))
	assert.Equal(t, 0, got.SoftScore(0))

	ledger, err := h.Ledger()
	require.NoError(t, err)
	total, ok := ledger.Total(testID)
	require.True(t, ok)
	require.Equal(t, 1, total.MatchCount())
	assert.Equal(t, score.OfBendable([]int{15, 0}, []int{0}), total.Matches()[0].Score())
}

func TestSingleLevelRoutingPerScoreType(t *testing.T) {
	tests := []struct {
		name   string
		typ    score.Type
		weight score.Score
		want   score.Score
	}{
		{"hard only", score.TypeHardSoft, score.OfHardSoft(2, 0), score.OfHardSoft(-2, 0)},
		{"soft only", score.TypeHardSoft, score.OfHardSoft(0, 3), score.OfHardSoft(0, -3)},
		{"both", score.TypeHardSoft, score.OfHardSoft(1, 1), score.OfHardSoft(-1, -1)},
		{"medium only", score.TypeHardMediumSoft, score.OfHardMediumSoft(0, 4, 0), score.OfHardMediumSoft(0, -4, 0)},
		{"long soft", score.TypeHardSoftLong, score.OfHardSoftLong(0, 1<<33), score.OfHardSoftLong(0, -(1 << 33))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := New(mustDefinition(t, tt.typ), true, nil, "")
			require.NoError(t, err)
			require.NoError(t, h.ConfigureConstraintWeight(testID, tt.weight))

			_, err = h.Penalize(activation{id: testID})
			require.NoError(t, err)

			assert.Equal(t, tt.want, h.ExtractScore(0))
			totals, err := h.ConstraintMatchTotals()
			require.NoError(t, err)
			assert.Equal(t, tt.want, totals[testID].Matches()[0].Score())
		})
	}
}

func TestBendableMultiLevelLengthValidation(t *testing.T) {
	h, err := NewBendableHolder[int64](mustBendable(t, score.TypeBendableLong, 2, 1), true)
	require.NoError(t, err)
	require.NoError(t, h.ConfigureConstraintWeight(testID, score.OfBendableLong([]int64{1, 0}, []int64{1})))
	_, err = h.Penalize(activation{id: testID})
	require.NoError(t, err)
	before := h.ExtractScore(0)

	_, err = h.AddMultiConstraintMatch(activation{id: testID}, []int64{1, 1, 1}, []int64{1})
	require.ErrorIs(t, err, scoreerr.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "(3)")
	assert.Contains(t, err.Error(), "(2)")

	_, err = h.AddMultiConstraintMatch(activation{id: testID}, []int64{1, 1}, nil)
	require.ErrorIs(t, err, scoreerr.ErrInvalidArgument)

	assert.Equal(t, before, h.ExtractScore(0), "a rejected match must not change any level")
	totals, err := h.ConstraintMatchTotals()
	require.NoError(t, err)
	assert.Equal(t, 1, totals[testID].MatchCount())
}

func TestBendableLevelBounds(t *testing.T) {
	h, err := NewBendableHolder[int](mustBendable(t, score.TypeBendable, 1, 1), false)
	require.NoError(t, err)

	_, err = h.AddHardConstraintMatch(activation{id: testID}, 1, 5)
	assert.ErrorIs(t, err, scoreerr.ErrInvalidArgument)
	_, err = h.AddSoftConstraintMatch(activation{id: testID}, -1, 5)
	assert.ErrorIs(t, err, scoreerr.ErrInvalidArgument)

	err = h.ConfigureConstraintWeight(testID, score.OfBendable([]int{1, 0}, []int{0}))
	assert.ErrorIs(t, err, scoreerr.ErrInvalidArgument)
}

func TestConfigureConstraintWeightErrors(t *testing.T) {
	h, err := New(mustDefinition(t, score.TypeHardSoft), false, nil, "")
	require.NoError(t, err)

	err = h.ConfigureConstraintWeight(testID, score.NewHardSoftScore(-1, 1, 0))
	assert.ErrorIs(t, err, scoreerr.ErrInvalidArgument, "initScore must be 0")

	err = h.ConfigureConstraintWeight(testID, score.OfSimple(1))
	assert.ErrorIs(t, err, scoreerr.ErrInvalidArgument, "weight type must match")

	err = h.ConfigureConstraintWeight(testID, score.OfHardSoftLong(1, 0))
	assert.ErrorIs(t, err, scoreerr.ErrInvalidArgument, "long weight on int holder")
}

func TestImpactWithoutWeightIsInvalidState(t *testing.T) {
	h, err := New(mustDefinition(t, score.TypeSimple), false, nil, "")
	require.NoError(t, err)

	_, err = h.Penalize(activation{id: testID})
	require.ErrorIs(t, err, scoreerr.ErrInvalidState)
	assert.Contains(t, err.Error(), "pkg/c")
}

func TestUnsupportedMultiplierTypes(t *testing.T) {
	intHolder, err := New(mustDefinition(t, score.TypeSimple), false, nil, "")
	require.NoError(t, err)
	require.NoError(t, intHolder.ConfigureConstraintWeight(testID, score.OfSimple(1)))

	_, err = intHolder.PenalizeLong(activation{id: testID}, 2)
	require.ErrorIs(t, err, scoreerr.ErrUnsupported)
	assert.Contains(t, err.Error(), "penalize()")

	_, err = intHolder.PenalizeDecimal(activation{id: testID}, decimal.NewFromInt(2))
	assert.ErrorIs(t, err, scoreerr.ErrUnsupported)

	longHolder, err := New(mustDefinition(t, score.TypeSimpleLong), false, nil, "")
	require.NoError(t, err)
	require.NoError(t, longHolder.ConfigureConstraintWeight(testID, score.OfSimpleLong(1)))
	_, err = longHolder.PenalizeLong(activation{id: testID}, 2)
	require.NoError(t, err)
	_, err = longHolder.PenalizeBy(activation{id: testID}, 3)
	require.NoError(t, err)
	assert.Equal(t, score.OfSimpleLong(-5), longHolder.ExtractScore(0))
	_, err = longHolder.RewardDecimal(activation{id: testID}, decimal.NewFromInt(2))
	require.ErrorIs(t, err, scoreerr.ErrUnsupported)
	assert.Contains(t, err.Error(), "penalizeLong()")
}

func TestDecimalHolderAcceptsEveryMultiplier(t *testing.T) {
	h, err := New(mustDefinition(t, score.TypeHardMediumSoftDecimal), true, nil, "")
	require.NoError(t, err)
	weight := score.OfHardMediumSoftDecimal(decimal.Zero, decimal.RequireFromString("0.5"), decimal.NewFromInt(1))
	require.NoError(t, h.ConfigureConstraintWeight(testID, weight))

	_, err = h.PenalizeBy(activation{id: testID}, 2)
	require.NoError(t, err)
	_, err = h.PenalizeLong(activation{id: testID}, 2)
	require.NoError(t, err)
	undo, err := h.RewardDecimal(activation{id: testID}, decimal.RequireFromString("1.5"))
	require.NoError(t, err)

	assert.Equal(t, "0hard/-1.25medium/-2.5soft", h.ExtractScore(0).String())
	undo()
	assert.Equal(t, "0hard/-2medium/-4soft", h.ExtractScore(0).String())
}

func TestZeroWeightRegistersNothing(t *testing.T) {
	h, err := New(mustDefinition(t, score.TypeHardSoft), true, nil, "")
	require.NoError(t, err)
	require.NoError(t, h.ConfigureConstraintWeight(testID, score.OfHardSoft(0, 0)))

	undo, err := h.Penalize(activation{testID, []any{&entity{"e"}}})
	require.NoError(t, err)
	undo()

	totals, err := h.ConstraintMatchTotals()
	require.NoError(t, err)
	assert.Empty(t, totals)
}

func TestLedgerAccessRequiresTracking(t *testing.T) {
	h, err := New(mustDefinition(t, score.TypeSimple), false, nil, "")
	require.NoError(t, err)
	assert.False(t, h.ConstraintMatchEnabled())

	_, err = h.ConstraintMatchTotals()
	assert.ErrorIs(t, err, scoreerr.ErrInvalidState)
	_, err = h.Indictments()
	assert.ErrorIs(t, err, scoreerr.ErrInvalidState)
}

func TestNonComparableJustificationRollsBack(t *testing.T) {
	h, err := NewHardSoftHolder[int](mustDefinition(t, score.TypeHardSoft), true)
	require.NoError(t, err)
	require.NoError(t, h.ConfigureConstraintWeight(testID, score.OfHardSoft(1, 1)))

	_, err = h.Penalize(activation{testID, []any{[]string{"x"}}})
	require.ErrorIs(t, err, scoreerr.ErrInvalidArgument)
	assert.Equal(t, score.OfHardSoft(0, 0), h.ExtractScore(0))
}

func TestRegistry(t *testing.T) {
	def := mustDefinition(t, score.TypeSimple)
	r := NewRegistry()
	require.NoError(t, r.Register("wrapped", func(d *score.Definition, enabled bool) (Holder, error) {
		return NewSimpleHolder[int](d, enabled)
	}))
	boom := errors.New("boom")
	require.NoError(t, r.Register("broken", func(*score.Definition, bool) (Holder, error) { return nil, boom }))
	assert.ErrorIs(t, r.Register("wrapped", nil), scoreerr.ErrInvalidArgument)
	assert.Equal(t, []string{"broken", "wrapped"}, r.Names())

	h, err := New(def, true, r, "wrapped")
	require.NoError(t, err)
	assert.True(t, h.ConstraintMatchEnabled())

	_, err = New(def, true, r, "broken")
	assert.ErrorIs(t, err, scoreerr.ErrInvalidState)
	assert.ErrorIs(t, err, boom)

	_, err = New(def, true, r, "missing")
	assert.ErrorIs(t, err, scoreerr.ErrUnsupported)
	_, err = New(def, true, nil, "missing")
	assert.ErrorIs(t, err, scoreerr.ErrUnsupported)
}

func TestNewBuildsEveryBuiltInType(t *testing.T) {
	for _, typ := range score.Types {
		t.Run(string(typ), func(t *testing.T) {
			var def *score.Definition
			if typ.IsBendable() {
				def = mustBendable(t, typ, 1, 2)
			} else {
				def = mustDefinition(t, typ)
			}
			h, err := New(def, false, nil, "")
			require.NoError(t, err)
			assert.True(t, h.ExtractScore(0).IsZero())
			assert.True(t, def.IsCompatible(h.ExtractScore(0)))
		})
	}
}
