package scoreholder

import (
	"github.com/gitrdm/gokanscore/pkg/constraint"
	"github.com/gitrdm/gokanscore/pkg/score"
	"github.com/shopspring/decimal"
)

// HardMediumSoftHolder accumulates a hard/medium/soft int or long score.
type HardMediumSoftHolder[N score.Number] struct {
	integral[N]
	hard   N
	medium N
	soft   N
}

// NewHardMediumSoftHolder returns a holder for the hard_medium_soft or
// hard_medium_soft_long definition matching N.
func NewHardMediumSoftHolder[N score.Number](def *score.Definition, constraintMatchEnabled bool) (*HardMediumSoftHolder[N], error) {
	h := &HardMediumSoftHolder[N]{}
	if err := h.setup(def, constraintMatchEnabled, score.TypeHardMediumSoft, score.TypeHardMediumSoftLong); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *HardMediumSoftHolder[N]) ConfigureConstraintWeight(id constraint.ID, weight score.Score) error {
	if err := h.StoreConstraintWeight(id, weight); err != nil {
		return err
	}
	w := weight.(score.HardMediumSoftScoreOf[N])
	hard, medium, soft := w.Hard(), w.Medium(), w.Soft()
	switch {
	case hard == 0 && medium == 0 && soft == 0:
		h.executors[id] = skip[N]
	case medium == 0 && soft == 0:
		h.executors[id] = func(a Activation, m N) (Undo, error) { return h.AddHardConstraintMatch(a, hard*m) }
	case hard == 0 && soft == 0:
		h.executors[id] = func(a Activation, m N) (Undo, error) { return h.AddMediumConstraintMatch(a, medium*m) }
	case hard == 0 && medium == 0:
		h.executors[id] = func(a Activation, m N) (Undo, error) { return h.AddSoftConstraintMatch(a, soft*m) }
	default:
		h.executors[id] = func(a Activation, m N) (Undo, error) {
			return h.AddMultiConstraintMatch(a, hard*m, medium*m, soft*m)
		}
	}
	return nil
}

func (h *HardMediumSoftHolder[N]) AddHardConstraintMatch(a Activation, delta N) (Undo, error) {
	h.hard += delta
	return h.RegisterConstraintMatch(a,
		func() { h.hard -= delta },
		func() score.Score { return score.NewHardMediumSoftScore(0, delta, 0, 0) })
}

func (h *HardMediumSoftHolder[N]) AddMediumConstraintMatch(a Activation, delta N) (Undo, error) {
	h.medium += delta
	return h.RegisterConstraintMatch(a,
		func() { h.medium -= delta },
		func() score.Score { return score.NewHardMediumSoftScore(0, 0, delta, 0) })
}

func (h *HardMediumSoftHolder[N]) AddSoftConstraintMatch(a Activation, delta N) (Undo, error) {
	h.soft += delta
	return h.RegisterConstraintMatch(a,
		func() { h.soft -= delta },
		func() score.Score { return score.NewHardMediumSoftScore(0, 0, 0, delta) })
}

func (h *HardMediumSoftHolder[N]) AddMultiConstraintMatch(a Activation, hardDelta, mediumDelta, softDelta N) (Undo, error) {
	h.hard += hardDelta
	h.medium += mediumDelta
	h.soft += softDelta
	return h.RegisterConstraintMatch(a,
		func() {
			h.hard -= hardDelta
			h.medium -= mediumDelta
			h.soft -= softDelta
		},
		func() score.Score { return score.NewHardMediumSoftScore(0, hardDelta, mediumDelta, softDelta) })
}

func (h *HardMediumSoftHolder[N]) ExtractScore(initScore int) score.Score {
	return score.NewHardMediumSoftScore(initScore, h.hard, h.medium, h.soft)
}

// HardMediumSoftDecimalHolder accumulates a hard/medium/soft decimal score.
type HardMediumSoftDecimalHolder struct {
	fractional
	hard   decimal.Decimal
	medium decimal.Decimal
	soft   decimal.Decimal
}

// NewHardMediumSoftDecimalHolder returns a holder for the
// hard_medium_soft_decimal definition.
func NewHardMediumSoftDecimalHolder(def *score.Definition, constraintMatchEnabled bool) (*HardMediumSoftDecimalHolder, error) {
	h := &HardMediumSoftDecimalHolder{hard: decimal.Zero, medium: decimal.Zero, soft: decimal.Zero}
	if err := h.setup(def, constraintMatchEnabled, score.TypeHardMediumSoftDecimal); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *HardMediumSoftDecimalHolder) ConfigureConstraintWeight(id constraint.ID, weight score.Score) error {
	if err := h.StoreConstraintWeight(id, weight); err != nil {
		return err
	}
	w := weight.(score.HardMediumSoftDecimalScore)
	hard, medium, soft := w.Hard(), w.Medium(), w.Soft()
	switch {
	case hard.IsZero() && medium.IsZero() && soft.IsZero():
		h.executors[id] = skip[decimal.Decimal]
	case medium.IsZero() && soft.IsZero():
		h.executors[id] = func(a Activation, m decimal.Decimal) (Undo, error) {
			return h.AddHardConstraintMatch(a, hard.Mul(m))
		}
	case hard.IsZero() && soft.IsZero():
		h.executors[id] = func(a Activation, m decimal.Decimal) (Undo, error) {
			return h.AddMediumConstraintMatch(a, medium.Mul(m))
		}
	case hard.IsZero() && medium.IsZero():
		h.executors[id] = func(a Activation, m decimal.Decimal) (Undo, error) {
			return h.AddSoftConstraintMatch(a, soft.Mul(m))
		}
	default:
		h.executors[id] = func(a Activation, m decimal.Decimal) (Undo, error) {
			return h.AddMultiConstraintMatch(a, hard.Mul(m), medium.Mul(m), soft.Mul(m))
		}
	}
	return nil
}

func (h *HardMediumSoftDecimalHolder) AddHardConstraintMatch(a Activation, delta decimal.Decimal) (Undo, error) {
	h.hard = h.hard.Add(delta)
	return h.RegisterConstraintMatch(a,
		func() { h.hard = h.hard.Sub(delta) },
		func() score.Score { return score.OfHardMediumSoftDecimal(delta, decimal.Zero, decimal.Zero) })
}

func (h *HardMediumSoftDecimalHolder) AddMediumConstraintMatch(a Activation, delta decimal.Decimal) (Undo, error) {
	h.medium = h.medium.Add(delta)
	return h.RegisterConstraintMatch(a,
		func() { h.medium = h.medium.Sub(delta) },
		func() score.Score { return score.OfHardMediumSoftDecimal(decimal.Zero, delta, decimal.Zero) })
}

func (h *HardMediumSoftDecimalHolder) AddSoftConstraintMatch(a Activation, delta decimal.Decimal) (Undo, error) {
	h.soft = h.soft.Add(delta)
	return h.RegisterConstraintMatch(a,
		func() { h.soft = h.soft.Sub(delta) },
		func() score.Score { return score.OfHardMediumSoftDecimal(decimal.Zero, decimal.Zero, delta) })
}

func (h *HardMediumSoftDecimalHolder) AddMultiConstraintMatch(a Activation,
	hardDelta, mediumDelta, softDelta decimal.Decimal) (Undo, error) {
	h.hard = h.hard.Add(hardDelta)
	h.medium = h.medium.Add(mediumDelta)
	h.soft = h.soft.Add(softDelta)
	return h.RegisterConstraintMatch(a,
		func() {
			h.hard = h.hard.Sub(hardDelta)
			h.medium = h.medium.Sub(mediumDelta)
			h.soft = h.soft.Sub(softDelta)
		},
		func() score.Score { return score.OfHardMediumSoftDecimal(hardDelta, mediumDelta, softDelta) })
}

func (h *HardMediumSoftDecimalHolder) ExtractScore(initScore int) score.Score {
	return score.NewHardMediumSoftDecimalScore(initScore, h.hard, h.medium, h.soft)
}
