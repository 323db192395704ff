package scoreholder

import (
	"github.com/gitrdm/gokanscore/pkg/constraint"
	"github.com/gitrdm/gokanscore/pkg/score"
	"github.com/shopspring/decimal"
)

// SimpleHolder accumulates a simple int or long score.
type SimpleHolder[N score.Number] struct {
	integral[N]
	score N
}

// NewSimpleHolder returns a holder for the simple or simple_long definition
// matching N.
func NewSimpleHolder[N score.Number](def *score.Definition, constraintMatchEnabled bool) (*SimpleHolder[N], error) {
	h := &SimpleHolder[N]{}
	if err := h.setup(def, constraintMatchEnabled, score.TypeSimple, score.TypeSimpleLong); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *SimpleHolder[N]) ConfigureConstraintWeight(id constraint.ID, weight score.Score) error {
	if err := h.StoreConstraintWeight(id, weight); err != nil {
		return err
	}
	w := weight.(score.SimpleScoreOf[N]).Score()
	if w == 0 {
		h.executors[id] = skip[N]
		return nil
	}
	h.executors[id] = func(a Activation, multiplier N) (Undo, error) {
		return h.AddConstraintMatch(a, w*multiplier)
	}
	return nil
}

// AddConstraintMatch adds delta to the score.
func (h *SimpleHolder[N]) AddConstraintMatch(a Activation, delta N) (Undo, error) {
	h.score += delta
	return h.RegisterConstraintMatch(a,
		func() { h.score -= delta },
		func() score.Score { return score.NewSimpleScore(0, delta) })
}

func (h *SimpleHolder[N]) ExtractScore(initScore int) score.Score {
	return score.NewSimpleScore(initScore, h.score)
}

// SimpleDecimalHolder accumulates a simple decimal score.
type SimpleDecimalHolder struct {
	fractional
	score decimal.Decimal
}

// NewSimpleDecimalHolder returns a holder for the simple_decimal definition.
func NewSimpleDecimalHolder(def *score.Definition, constraintMatchEnabled bool) (*SimpleDecimalHolder, error) {
	h := &SimpleDecimalHolder{score: decimal.Zero}
	if err := h.setup(def, constraintMatchEnabled, score.TypeSimpleDecimal); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *SimpleDecimalHolder) ConfigureConstraintWeight(id constraint.ID, weight score.Score) error {
	if err := h.StoreConstraintWeight(id, weight); err != nil {
		return err
	}
	w := weight.(score.SimpleDecimalScore).Score()
	if w.IsZero() {
		h.executors[id] = skip[decimal.Decimal]
		return nil
	}
	h.executors[id] = func(a Activation, multiplier decimal.Decimal) (Undo, error) {
		return h.AddConstraintMatch(a, w.Mul(multiplier))
	}
	return nil
}

// AddConstraintMatch adds delta to the score.
func (h *SimpleDecimalHolder) AddConstraintMatch(a Activation, delta decimal.Decimal) (Undo, error) {
	h.score = h.score.Add(delta)
	return h.RegisterConstraintMatch(a,
		func() { h.score = h.score.Sub(delta) },
		func() score.Score { return score.OfSimpleDecimal(delta) })
}

func (h *SimpleDecimalHolder) ExtractScore(initScore int) score.Score {
	return score.NewSimpleDecimalScore(initScore, h.score)
}
