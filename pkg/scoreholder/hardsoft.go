package scoreholder

import (
	"github.com/gitrdm/gokanscore/pkg/constraint"
	"github.com/gitrdm/gokanscore/pkg/score"
	"github.com/shopspring/decimal"
)

// HardSoftHolder accumulates a hard/soft int or long score.
type HardSoftHolder[N score.Number] struct {
	integral[N]
	hard N
	soft N
}

// NewHardSoftHolder returns a holder for the hard_soft or hard_soft_long
// definition matching N.
func NewHardSoftHolder[N score.Number](def *score.Definition, constraintMatchEnabled bool) (*HardSoftHolder[N], error) {
	h := &HardSoftHolder[N]{}
	if err := h.setup(def, constraintMatchEnabled, score.TypeHardSoft, score.TypeHardSoftLong); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *HardSoftHolder[N]) ConfigureConstraintWeight(id constraint.ID, weight score.Score) error {
	if err := h.StoreConstraintWeight(id, weight); err != nil {
		return err
	}
	w := weight.(score.HardSoftScoreOf[N])
	hard, soft := w.Hard(), w.Soft()
	switch {
	case hard == 0 && soft == 0:
		h.executors[id] = skip[N]
	case soft == 0:
		h.executors[id] = func(a Activation, m N) (Undo, error) { return h.AddHardConstraintMatch(a, hard*m) }
	case hard == 0:
		h.executors[id] = func(a Activation, m N) (Undo, error) { return h.AddSoftConstraintMatch(a, soft*m) }
	default:
		h.executors[id] = func(a Activation, m N) (Undo, error) {
			return h.AddMultiConstraintMatch(a, hard*m, soft*m)
		}
	}
	return nil
}

func (h *HardSoftHolder[N]) AddHardConstraintMatch(a Activation, delta N) (Undo, error) {
	h.hard += delta
	return h.RegisterConstraintMatch(a,
		func() { h.hard -= delta },
		func() score.Score { return score.NewHardSoftScore(0, delta, 0) })
}

func (h *HardSoftHolder[N]) AddSoftConstraintMatch(a Activation, delta N) (Undo, error) {
	h.soft += delta
	return h.RegisterConstraintMatch(a,
		func() { h.soft -= delta },
		func() score.Score { return score.NewHardSoftScore(0, 0, delta) })
}

func (h *HardSoftHolder[N]) AddMultiConstraintMatch(a Activation, hardDelta, softDelta N) (Undo, error) {
	h.hard += hardDelta
	h.soft += softDelta
	return h.RegisterConstraintMatch(a,
		func() {
			h.hard -= hardDelta
			h.soft -= softDelta
		},
		func() score.Score { return score.NewHardSoftScore(0, hardDelta, softDelta) })
}

func (h *HardSoftHolder[N]) ExtractScore(initScore int) score.Score {
	return score.NewHardSoftScore(initScore, h.hard, h.soft)
}

// HardSoftDecimalHolder accumulates a hard/soft decimal score.
type HardSoftDecimalHolder struct {
	fractional
	hard decimal.Decimal
	soft decimal.Decimal
}

// NewHardSoftDecimalHolder returns a holder for the hard_soft_decimal definition.
func NewHardSoftDecimalHolder(def *score.Definition, constraintMatchEnabled bool) (*HardSoftDecimalHolder, error) {
	h := &HardSoftDecimalHolder{hard: decimal.Zero, soft: decimal.Zero}
	if err := h.setup(def, constraintMatchEnabled, score.TypeHardSoftDecimal); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *HardSoftDecimalHolder) ConfigureConstraintWeight(id constraint.ID, weight score.Score) error {
	if err := h.StoreConstraintWeight(id, weight); err != nil {
		return err
	}
	w := weight.(score.HardSoftDecimalScore)
	hard, soft := w.Hard(), w.Soft()
	switch {
	case hard.IsZero() && soft.IsZero():
		h.executors[id] = skip[decimal.Decimal]
	case soft.IsZero():
		h.executors[id] = func(a Activation, m decimal.Decimal) (Undo, error) {
			return h.AddHardConstraintMatch(a, hard.Mul(m))
		}
	case hard.IsZero():
		h.executors[id] = func(a Activation, m decimal.Decimal) (Undo, error) {
			return h.AddSoftConstraintMatch(a, soft.Mul(m))
		}
	default:
		h.executors[id] = func(a Activation, m decimal.Decimal) (Undo, error) {
			return h.AddMultiConstraintMatch(a, hard.Mul(m), soft.Mul(m))
		}
	}
	return nil
}

func (h *HardSoftDecimalHolder) AddHardConstraintMatch(a Activation, delta decimal.Decimal) (Undo, error) {
	h.hard = h.hard.Add(delta)
	return h.RegisterConstraintMatch(a,
		func() { h.hard = h.hard.Sub(delta) },
		func() score.Score { return score.OfHardSoftDecimal(delta, decimal.Zero) })
}

func (h *HardSoftDecimalHolder) AddSoftConstraintMatch(a Activation, delta decimal.Decimal) (Undo, error) {
	h.soft = h.soft.Add(delta)
	return h.RegisterConstraintMatch(a,
		func() { h.soft = h.soft.Sub(delta) },
		func() score.Score { return score.OfHardSoftDecimal(decimal.Zero, delta) })
}

func (h *HardSoftDecimalHolder) AddMultiConstraintMatch(a Activation, hardDelta, softDelta decimal.Decimal) (Undo, error) {
	h.hard = h.hard.Add(hardDelta)
	h.soft = h.soft.Add(softDelta)
	return h.RegisterConstraintMatch(a,
		func() {
			h.hard = h.hard.Sub(hardDelta)
			h.soft = h.soft.Sub(softDelta)
		},
		func() score.Score { return score.OfHardSoftDecimal(hardDelta, softDelta) })
}

func (h *HardSoftDecimalHolder) ExtractScore(initScore int) score.Score {
	return score.NewHardSoftDecimalScore(initScore, h.hard, h.soft)
}
