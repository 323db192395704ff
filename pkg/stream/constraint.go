package stream

import (
	"github.com/gitrdm/gokanscore/pkg/constraint"
	"github.com/gitrdm/gokanscore/pkg/score"
	"github.com/gitrdm/gokanscore/pkg/scoreerr"
	"github.com/gitrdm/gokanscore/pkg/scoreholder"
	"github.com/shopspring/decimal"
)

// ImpactType is the declared direction of a constraint.
type ImpactType int

const (
	ImpactPenalty ImpactType = iota
	ImpactReward
	ImpactMixed
)

func (t ImpactType) String() string {
	switch t {
	case ImpactPenalty:
		return "penalize"
	case ImpactReward:
		return "reward"
	default:
		return "impact"
	}
}

// Constraint is a terminal stream step: every tuple of its stream impacts
// the score by weight × match weight in the direction of its impact type.
type Constraint struct {
	id           constraint.ID
	stream       *Stream
	impact       ImpactType
	weight       score.Score
	configurable bool
	weigher      *Weigher
	err          error
}

// Provider builds the constraints of a problem on a factory.
type Provider func(f *Factory) []*Constraint

func (c *Constraint) ID() constraint.ID      { return c.id }
func (c *Constraint) Stream() *Stream        { return c.stream }
func (c *Constraint) ImpactType() ImpactType { return c.impact }
func (c *Constraint) Weigher() *Weigher      { return c.weigher }

// Weight returns the fixed constraint weight, nil when it is configurable.
func (c *Constraint) Weight() score.Score { return c.weight }

// Configurable reports whether the weight comes from the session
// configuration.
func (c *Constraint) Configurable() bool { return c.configurable }

// Err returns the structural error of the constraint or of its stream.
func (c *Constraint) Err() error { return c.err }

// Multiplier returns the factor the match weight is multiplied by: -1 for a
// penalty, +1 otherwise.
func (c *Constraint) Multiplier() int {
	if c.impact == ImpactPenalty {
		return -1
	}
	return 1
}

// AssertCorrectImpact fails when a penalty or reward constraint computed a
// negative match weight. Mixed impact constraints accept any sign.
func (c *Constraint) AssertCorrectImpact(matchWeight any) error {
	if c.impact == ImpactMixed {
		return nil
	}
	negative := false
	switch w := matchWeight.(type) {
	case int:
		negative = w < 0
	case int64:
		negative = w < 0
	case decimal.Decimal:
		negative = w.IsNegative()
	}
	if negative {
		return scoreerr.InvalidState(
			"constraint (%s) is invalid: it has a negative match weight (%v); use impact instead of %s for mixed signs",
			c.id, matchWeight, c.impact)
	}
	return nil
}

// CheckWeight fails when weight is negative in any level for a penalty or
// reward constraint, or has an init score.
func (c *Constraint) CheckWeight(weight score.Score) error {
	if weight.InitScore() != 0 {
		return scoreerr.InvalidArgument("constraint (%s) weight (%s) must have an initScore of 0", c.id, weight)
	}
	if c.impact != ImpactMixed && hasNegativeLevel(weight) {
		return scoreerr.InvalidArgument("constraint (%s) weight (%s) cannot be negative for %s; use impact instead",
			c.id, weight, c.impact)
	}
	return nil
}

// Execute weighs facts and applies one match of c to h through the
// penalize, reward or impact method matching the weigher's number type.
// The returned undo reverses exactly that match.
func (c *Constraint) Execute(h scoreholder.Holder, a scoreholder.Activation, facts []any) (scoreholder.Undo, error) {
	switch c.weigher.Kind() {
	case WeigherNone:
		if c.impact == ImpactPenalty {
			return h.Penalize(a)
		}
		return h.Reward(a)
	case WeigherInt:
		w := c.weigher.Weigh(facts).(int)
		if err := c.AssertCorrectImpact(w); err != nil {
			return nil, err
		}
		switch c.impact {
		case ImpactPenalty:
			return h.PenalizeBy(a, w)
		case ImpactReward:
			return h.RewardBy(a, w)
		default:
			return h.ImpactScore(a, w)
		}
	case WeigherLong:
		w := c.weigher.Weigh(facts).(int64)
		if err := c.AssertCorrectImpact(w); err != nil {
			return nil, err
		}
		switch c.impact {
		case ImpactPenalty:
			return h.PenalizeLong(a, w)
		case ImpactReward:
			return h.RewardLong(a, w)
		default:
			return h.ImpactScoreLong(a, w)
		}
	default:
		w := c.weigher.Weigh(facts).(decimal.Decimal)
		if err := c.AssertCorrectImpact(w); err != nil {
			return nil, err
		}
		switch c.impact {
		case ImpactPenalty:
			return h.PenalizeDecimal(a, w)
		case ImpactReward:
			return h.RewardDecimal(a, w)
		default:
			return h.ImpactScoreDecimal(a, w)
		}
	}
}

// Match is the activation of a constraint for one tuple.
type Match struct {
	ID     constraint.ID
	Facts  []any
	Extras []any
}

func (m Match) ConstraintID() constraint.ID { return m.ID }

// Justifications returns Justify(m.Facts, m.Extras).
func (m Match) Justifications() []any { return Justify(m.Facts, m.Extras) }

func hasNegativeLevel(s score.Score) bool {
	for _, n := range s.LevelNumbers() {
		switch v := n.(type) {
		case int:
			if v < 0 {
				return true
			}
		case int64:
			if v < 0 {
				return true
			}
		case decimal.Decimal:
			if v.IsNegative() {
				return true
			}
		}
	}
	return false
}

func (s *Stream) terminal(name string, impact ImpactType, weight score.Score, weigher *Weigher) *Constraint {
	c := &Constraint{
		id:           constraint.NewID(s.factory.pkg, name),
		stream:       s,
		impact:       impact,
		weight:       weight,
		configurable: weight == nil,
		weigher:      weigher,
		err:          s.err,
	}
	if c.err == nil && weight != nil {
		c.err = c.CheckWeight(weight)
	}
	if c.err == nil && weigher != nil && weigher.arity != s.arity {
		c.err = scoreerr.InvalidArgument("constraint (%s) weigher arity (%d) differs from stream arity (%d)",
			c.id, weigher.arity, s.arity)
	}
	return c
}

// Penalize makes every tuple subtract weight.
func (s *Stream) Penalize(name string, weight score.Score) *Constraint {
	return s.terminal(name, ImpactPenalty, weight, nil)
}

// PenalizeBy makes every tuple subtract weight × weigher(tuple).
func (s *Stream) PenalizeBy(name string, weight score.Score, weigher *Weigher) *Constraint {
	return s.terminal(name, ImpactPenalty, weight, weigher)
}

// PenalizeConfigurable is Penalize with the weight taken from the
// constraint weight configuration.
func (s *Stream) PenalizeConfigurable(name string) *Constraint {
	return s.terminal(name, ImpactPenalty, nil, nil)
}

func (s *Stream) PenalizeConfigurableBy(name string, weigher *Weigher) *Constraint {
	return s.terminal(name, ImpactPenalty, nil, weigher)
}

// Reward makes every tuple add weight.
func (s *Stream) Reward(name string, weight score.Score) *Constraint {
	return s.terminal(name, ImpactReward, weight, nil)
}

func (s *Stream) RewardBy(name string, weight score.Score, weigher *Weigher) *Constraint {
	return s.terminal(name, ImpactReward, weight, weigher)
}

func (s *Stream) RewardConfigurable(name string) *Constraint {
	return s.terminal(name, ImpactReward, nil, nil)
}

func (s *Stream) RewardConfigurableBy(name string, weigher *Weigher) *Constraint {
	return s.terminal(name, ImpactReward, nil, weigher)
}

// Impact makes every tuple add weight; the sign of weight and of the match
// weight decide the direction.
func (s *Stream) Impact(name string, weight score.Score) *Constraint {
	return s.terminal(name, ImpactMixed, weight, nil)
}

func (s *Stream) ImpactBy(name string, weight score.Score, weigher *Weigher) *Constraint {
	return s.terminal(name, ImpactMixed, weight, weigher)
}

func (s *Stream) ImpactConfigurable(name string) *Constraint {
	return s.terminal(name, ImpactMixed, nil, nil)
}

func (s *Stream) ImpactConfigurableBy(name string, weigher *Weigher) *Constraint {
	return s.terminal(name, ImpactMixed, nil, weigher)
}

// Justify returns the justification list of a match: its facts, with
// collection results ([]any) flattened, followed by extra facts such as the
// ones satisfying an existence check.
func Justify(facts []any, extras []any) []any {
	out := make([]any, 0, len(facts)+len(extras))
	for _, f := range facts {
		if list, ok := f.([]any); ok {
			out = append(out, list...)
			continue
		}
		out = append(out, f)
	}
	return append(out, extras...)
}
