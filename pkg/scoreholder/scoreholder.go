// Package scoreholder implements the score accumulators that constraint
// matching backends impact.
//
// A Holder keeps the running level sums of one score type. Each constraint
// is configured once with its weight; ConfigureConstraintWeight precomputes a
// match executor for it that multiplies the weight by the match weight and
// applies the result. When the weight has exactly one non-zero level the
// executor goes straight to that level's Add*ConstraintMatch method instead
// of the multi-level one.
//
// Every impact returns an Undo that reverses exactly what the impact applied.
// When constraint match tracking is enabled the impact also registers a
// constraint.Match in the holder's ledger and the Undo unregisters it. An
// Undo must be called at most once; a second call panics because it would
// corrupt the level sums and the ledger.
//
// Holders are not safe for concurrent use. Parallel evaluation uses one
// holder per session.
package scoreholder

import (
	"github.com/gitrdm/gokanscore/pkg/constraint"
	"github.com/gitrdm/gokanscore/pkg/score"
	"github.com/gitrdm/gokanscore/pkg/scoreerr"
	"github.com/shopspring/decimal"
)

// Activation is one firing of a constraint: the constraint it belongs to
// and the facts that justify it. Justifications is only called when
// constraint match tracking is enabled.
type Activation interface {
	ConstraintID() constraint.ID
	Justifications() []any
}

// Undo reverses one score impact.
type Undo func()

func once(f func()) Undo {
	done := false
	return func() {
		if done {
			panic("scoreholder: undo called twice")
		}
		done = true
		f()
	}
}

func noop() {}

// Holder is the score accumulator contract shared by every score type.
type Holder interface {
	Definition() *score.Definition
	ConstraintMatchEnabled() bool

	// ConfigureConstraintWeight registers constraint id with its weight.
	ConfigureConstraintWeight(id constraint.ID, weight score.Score) error
	// ConstraintWeight returns the configured weight of id.
	ConstraintWeight(id constraint.ID) (score.Score, bool)

	ImpactScore(a Activation, multiplier int) (Undo, error)
	ImpactScoreLong(a Activation, multiplier int64) (Undo, error)
	ImpactScoreDecimal(a Activation, multiplier decimal.Decimal) (Undo, error)

	Penalize(a Activation) (Undo, error)
	PenalizeBy(a Activation, multiplier int) (Undo, error)
	PenalizeLong(a Activation, multiplier int64) (Undo, error)
	PenalizeDecimal(a Activation, multiplier decimal.Decimal) (Undo, error)
	Reward(a Activation) (Undo, error)
	RewardBy(a Activation, multiplier int) (Undo, error)
	RewardLong(a Activation, multiplier int64) (Undo, error)
	RewardDecimal(a Activation, multiplier decimal.Decimal) (Undo, error)

	// ExtractScore returns a snapshot of the current sums with initScore.
	ExtractScore(initScore int) score.Score

	// ConstraintMatchTotals, Indictments and Ledger fail with
	// scoreerr.ErrInvalidState when match tracking is disabled.
	ConstraintMatchTotals() (map[constraint.ID]*constraint.MatchTotal, error)
	Indictments() (map[any]*constraint.Indictment, error)
	Ledger() (*constraint.Ledger, error)
}

// Base carries the state every holder shares: the score definition, the
// configured weights and the constraint match ledger. Custom holders embed
// it.
type Base struct {
	def     *score.Definition
	enabled bool
	weights map[constraint.ID]score.Score
	ledger  *constraint.Ledger
}

// NewBase returns the shared state of a holder for def.
func NewBase(def *score.Definition, constraintMatchEnabled bool) Base {
	b := Base{def: def, enabled: constraintMatchEnabled, weights: make(map[constraint.ID]score.Score)}
	if constraintMatchEnabled {
		b.ledger = constraint.NewLedger(def.ZeroScore())
	}
	return b
}

func (b *Base) Definition() *score.Definition { return b.def }
func (b *Base) ConstraintMatchEnabled() bool  { return b.enabled }

func (b *Base) ConstraintWeight(id constraint.ID) (score.Score, bool) {
	w, ok := b.weights[id]
	return w, ok
}

// StoreConstraintWeight validates weight against the holder's score type and
// remembers it for id.
func (b *Base) StoreConstraintWeight(id constraint.ID, weight score.Score) error {
	if weight == nil {
		return scoreerr.InvalidArgument("constraint (%s) has no weight", id)
	}
	if !b.def.IsCompatible(weight) {
		return scoreerr.InvalidArgument("constraint (%s) weight (%s) of type %T does not match score type %s",
			id, weight, weight, b.def)
	}
	if weight.InitScore() != 0 {
		return scoreerr.InvalidArgument("constraint (%s) weight (%s) must have an initScore of 0", id, weight)
	}
	b.weights[id] = weight
	return nil
}

// RegisterConstraintMatch wraps undo, the reversal of a delta the caller has
// already applied, into the Undo returned to the backend. With tracking on
// it also records a match worth matchScore() in the ledger; the returned
// Undo runs undo first and then removes the match. If the match cannot be
// recorded the delta is reverted before the error is returned.
func (b *Base) RegisterConstraintMatch(a Activation, undo func(), matchScore func() score.Score) (Undo, error) {
	if !b.enabled {
		return once(undo), nil
	}
	id := a.ConstraintID()
	m, err := b.ledger.Add(id, b.weights[id], a.Justifications(), matchScore())
	if err != nil {
		undo()
		return nil, err
	}
	return once(func() {
		undo()
		b.ledger.Remove(m)
	}), nil
}

func (b *Base) ConstraintMatchTotals() (map[constraint.ID]*constraint.MatchTotal, error) {
	l, err := b.Ledger()
	if err != nil {
		return nil, err
	}
	return l.TotalMap(), nil
}

func (b *Base) Indictments() (map[any]*constraint.Indictment, error) {
	l, err := b.Ledger()
	if err != nil {
		return nil, err
	}
	return l.IndictmentMap(), nil
}

func (b *Base) Ledger() (*constraint.Ledger, error) {
	if !b.enabled {
		return nil, scoreerr.InvalidState(
			"constraint matches are not tracked; build the session with constraint match enabled")
	}
	return b.ledger, nil
}

func (b *Base) missingWeight(id constraint.ID) error {
	return scoreerr.InvalidState(
		"constraint (%s) has no configured weight for score type %s; "+
			"check the constraint weight configuration and that the constraint's penalize/reward call matches the score type",
		id, b.def)
}

// impacter is the part of a holder the penalize/reward conveniences need.
type impacter interface {
	ImpactScore(a Activation, multiplier int) (Undo, error)
	ImpactScoreLong(a Activation, multiplier int64) (Undo, error)
	ImpactScoreDecimal(a Activation, multiplier decimal.Decimal) (Undo, error)
}

// conveniences implements the penalize/reward family on top of an impacter.
type conveniences struct {
	impl impacter
}

func (c conveniences) Penalize(a Activation) (Undo, error) { return c.impl.ImpactScore(a, -1) }
func (c conveniences) Reward(a Activation) (Undo, error)   { return c.impl.ImpactScore(a, 1) }

func (c conveniences) PenalizeBy(a Activation, multiplier int) (Undo, error) {
	return c.impl.ImpactScore(a, -multiplier)
}

func (c conveniences) PenalizeLong(a Activation, multiplier int64) (Undo, error) {
	return c.impl.ImpactScoreLong(a, -multiplier)
}

func (c conveniences) PenalizeDecimal(a Activation, multiplier decimal.Decimal) (Undo, error) {
	return c.impl.ImpactScoreDecimal(a, multiplier.Neg())
}

func (c conveniences) RewardBy(a Activation, multiplier int) (Undo, error) {
	return c.impl.ImpactScore(a, multiplier)
}

func (c conveniences) RewardLong(a Activation, multiplier int64) (Undo, error) {
	return c.impl.ImpactScoreLong(a, multiplier)
}

func (c conveniences) RewardDecimal(a Activation, multiplier decimal.Decimal) (Undo, error) {
	return c.impl.ImpactScoreDecimal(a, multiplier)
}
