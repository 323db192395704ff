package scoreholder

import (
	"github.com/gitrdm/gokanscore/pkg/constraint"
	"github.com/gitrdm/gokanscore/pkg/score"
	"github.com/gitrdm/gokanscore/pkg/scoreerr"
	"github.com/shopspring/decimal"
)

// executor applies weight × multiplier for one constraint.
type executor[M any] func(a Activation, multiplier M) (Undo, error)

func skip[M any](Activation, M) (Undo, error) {
	return once(noop), nil
}

// integral dispatches impacts for the int and long holders. An int holder
// accepts int multipliers only; a long holder accepts int and int64.
type integral[N score.Number] struct {
	Base
	conveniences
	long      bool
	executors map[constraint.ID]executor[N]
}

func (g *integral[N]) setup(def *score.Definition, enabled bool, intType, longType score.Type) error {
	_, g.long = any(N(0)).(int64)
	want := intType
	if g.long {
		want = longType
	}
	if def.Type() != want {
		return scoreerr.InvalidArgument("score holder for %s cannot hold score type %s", want, def)
	}
	g.Base = NewBase(def, enabled)
	g.conveniences = conveniences{impl: g}
	g.executors = make(map[constraint.ID]executor[N])
	return nil
}

func (g *integral[N]) executor(id constraint.ID) (executor[N], error) {
	exec, ok := g.executors[id]
	if !ok {
		return nil, g.missingWeight(id)
	}
	return exec, nil
}

func (g *integral[N]) ImpactScore(a Activation, multiplier int) (Undo, error) {
	exec, err := g.executor(a.ConstraintID())
	if err != nil {
		return nil, err
	}
	return exec(a, N(multiplier))
}

func (g *integral[N]) ImpactScoreLong(a Activation, multiplier int64) (Undo, error) {
	if !g.long {
		return nil, scoreerr.Unsupported(
			"constraint (%s): score type %s cannot impact by a long match weight; maybe switch from penalizeLong() to penalize()",
			a.ConstraintID(), g.def)
	}
	exec, err := g.executor(a.ConstraintID())
	if err != nil {
		return nil, err
	}
	return exec(a, N(multiplier))
}

func (g *integral[N]) ImpactScoreDecimal(a Activation, _ decimal.Decimal) (Undo, error) {
	hint := "penalize()"
	if g.long {
		hint = "penalizeLong()"
	}
	return nil, scoreerr.Unsupported(
		"constraint (%s): score type %s cannot impact by a decimal match weight; maybe switch from penalizeDecimal() to %s",
		a.ConstraintID(), g.def, hint)
}

// fractional dispatches impacts for the decimal holders, which accept every
// multiplier type.
type fractional struct {
	Base
	conveniences
	executors map[constraint.ID]executor[decimal.Decimal]
}

func (f *fractional) setup(def *score.Definition, enabled bool, want score.Type) error {
	if def.Type() != want {
		return scoreerr.InvalidArgument("score holder for %s cannot hold score type %s", want, def)
	}
	f.Base = NewBase(def, enabled)
	f.conveniences = conveniences{impl: f}
	f.executors = make(map[constraint.ID]executor[decimal.Decimal])
	return nil
}

func (f *fractional) executor(id constraint.ID) (executor[decimal.Decimal], error) {
	exec, ok := f.executors[id]
	if !ok {
		return nil, f.missingWeight(id)
	}
	return exec, nil
}

func (f *fractional) ImpactScore(a Activation, multiplier int) (Undo, error) {
	return f.ImpactScoreDecimal(a, decimal.NewFromInt(int64(multiplier)))
}

func (f *fractional) ImpactScoreLong(a Activation, multiplier int64) (Undo, error) {
	return f.ImpactScoreDecimal(a, decimal.NewFromInt(multiplier))
}

func (f *fractional) ImpactScoreDecimal(a Activation, multiplier decimal.Decimal) (Undo, error) {
	exec, err := f.executor(a.ConstraintID())
	if err != nil {
		return nil, err
	}
	return exec(a, multiplier)
}
