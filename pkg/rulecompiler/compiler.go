// Package rulecompiler is the rule engine backend. It compiles the same
// constraint streams the bavet backend runs into rete rules, one rule per
// constraint, whose consequence impacts the score holder bound as the
// session global HolderGlobal.
//
// Streams translate as follows. A ForEach is a Pattern on the fact type and
// filters on a fact stream fold into the pattern filter; any later filter
// becomes an Eval. A join or existence check becomes a Join or Exists on the
// partner's pattern. Equality joiners turn into hash-indexed keys while the
// left side carries at most two facts; comparison joiners, filtering joiners
// and every joiner of a wider left side are merged into one test predicate.
// A group-by becomes an Accumulate over the conditions of its parent, and
// the group tuple it binds is flattened back into plain facts for every
// predicate, mapping and weigher downstream.
package rulecompiler

import (
	"github.com/gitrdm/gokanscore/internal/index"
	"github.com/gitrdm/gokanscore/pkg/rete"
	"github.com/gitrdm/gokanscore/pkg/scoreerr"
	"github.com/gitrdm/gokanscore/pkg/scoreholder"
	"github.com/gitrdm/gokanscore/pkg/stream"
)

// HolderGlobal is the session global the consequences read the score
// holder from.
const HolderGlobal = "scoreHolder"

// maxIndexedArity is the widest left side whose equality joiners are
// indexed.
const maxIndexedArity = 2

// compiled is a stream translated to conditions. view turns a token of
// those conditions into the facts the stream carries.
type compiled struct {
	conds []rete.Condition
	arity int
	view  func(token []any) []any
}

func plain(token []any) []any { return token }

// grouped expands the group tuple at the head of a token.
func grouped(token []any) []any {
	g := token[0].(*rete.GroupTuple)
	if len(token) == 1 {
		return g.Values
	}
	facts := make([]any, 0, len(g.Values)+len(token)-1)
	return append(append(facts, g.Values...), token[1:]...)
}

// Compile translates constraints into a rule base. Constraint and stream
// errors are reported here, before any session exists.
func Compile(constraints []*stream.Constraint) (*RuleBase, error) {
	c := &compiler{built: make(map[*stream.Stream]*compiled)}
	rules := make([]*rete.Rule, 0, len(constraints))
	for _, con := range constraints {
		if con == nil {
			return nil, scoreerr.InvalidArgument("rulecompiler: constraint is nil")
		}
		if err := con.Err(); err != nil {
			return nil, err
		}
		s, err := c.stream(con.Stream())
		if err != nil {
			return nil, err
		}
		rules = append(rules, &rete.Rule{
			Name:        con.ID().String(),
			Conditions:  s.conds,
			Consequence: consequence(con, s.view),
		})
	}
	kb, err := rete.NewKnowledgeBase(rules...)
	if err != nil {
		return nil, err
	}
	return &RuleBase{kb: kb, constraints: constraints}, nil
}

type compiler struct {
	built map[*stream.Stream]*compiled
}

func (c *compiler) stream(s *stream.Stream) (*compiled, error) {
	if r, ok := c.built[s]; ok {
		return r, nil
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	var r *compiled
	switch s.Kind() {
	case stream.KindForEach:
		r = &compiled{conds: []rete.Condition{rete.Pattern{Type: s.FactType()}}, arity: 1, view: plain}
	case stream.KindFilter:
		parent, err := c.stream(s.Parent())
		if err != nil {
			return nil, err
		}
		r = filter(parent, s.Predicate())
	case stream.KindJoin:
		parent, err := c.stream(s.Parent())
		if err != nil {
			return nil, err
		}
		keys, test := joiners(parent, s.Joiners())
		join := rete.Join{Pattern: pattern(s.Other()), Keys: keys, Test: test}
		r = &compiled{conds: extend(parent.conds, join), arity: parent.arity + 1, view: parent.view}
	case stream.KindIfExists, stream.KindIfNotExists:
		parent, err := c.stream(s.Parent())
		if err != nil {
			return nil, err
		}
		keys, test := joiners(parent, s.Joiners())
		exists := rete.Exists{
			Not:     s.Kind() == stream.KindIfNotExists,
			Pattern: pattern(s.Other()),
			Keys:    keys,
			Test:    test,
		}
		r = &compiled{conds: extend(parent.conds, exists), arity: parent.arity, view: parent.view}
	case stream.KindGroupBy:
		parent, err := c.stream(s.Parent())
		if err != nil {
			return nil, err
		}
		r = groupBy(parent, s.GroupKeys(), s.Collectors())
	default:
		return nil, scoreerr.Unsupported("rulecompiler: stream kind %s", s.Kind())
	}
	c.built[s] = r
	return r, nil
}

func extend(conds []rete.Condition, c rete.Condition) []rete.Condition {
	out := make([]rete.Condition, 0, len(conds)+1)
	return append(append(out, conds...), c)
}

func filter(parent *compiled, p *stream.Predicate) *compiled {
	if len(parent.conds) == 1 {
		if first, ok := parent.conds[0].(rete.Pattern); ok {
			first.Filter = and(first.Filter, func(fact any) bool { return p.Test([]any{fact}) })
			return &compiled{conds: []rete.Condition{first}, arity: 1, view: plain}
		}
	}
	view := parent.view
	eval := rete.Eval{Test: func(token []any) bool { return p.Test(view(token)) }}
	return &compiled{conds: extend(parent.conds, eval), arity: parent.arity, view: view}
}

func and(a, b func(any) bool) func(any) bool {
	if a == nil {
		return b
	}
	return func(fact any) bool { return a(fact) && b(fact) }
}

// pattern compiles a fact stream, a ForEach followed by filters, into one
// filtered pattern.
func pattern(s *stream.Stream) rete.Pattern {
	var filters []*stream.Predicate
	for cur := s; cur.Kind() == stream.KindFilter; cur = cur.Parent() {
		filters = append(filters, cur.Predicate())
	}
	p := rete.Pattern{Type: s.Root().FactType()}
	for i := len(filters) - 1; i >= 0; i-- {
		f := filters[i]
		p.Filter = and(p.Filter, func(fact any) bool { return f.Test([]any{fact}) })
	}
	return p
}

// joiners splits joiners into hash keys and one test predicate over the
// viewed left facts.
func joiners(left *compiled, js []*stream.Joiner) ([]rete.Key, func([]any, any) bool) {
	view := left.view
	var keys []rete.Key
	var rest []*stream.Joiner
	for _, j := range js {
		if left.arity <= maxIndexedArity && !j.IsFiltering() && j.Op() == index.Equal {
			keys = append(keys, rete.Key{
				Left:  func(token []any) any { return j.LeftKey(view(token)) },
				Right: j.RightKey,
			})
			continue
		}
		rest = append(rest, j)
	}
	combined := stream.Combine(rest)
	if combined == nil {
		return keys, nil
	}
	return keys, func(token []any, fact any) bool { return combined(view(token), fact) }
}

type accumulator struct {
	c    stream.Collector
	view func([]any) []any
}

func (a accumulator) Supply() any { return a.c.Supply() }

func (a accumulator) Accumulate(container any, token []any) func() {
	return a.c.Accumulate(container, a.view(token))
}

func (a accumulator) Finish(container any) any { return a.c.Finish(container) }

func groupBy(parent *compiled, keys []*stream.Mapping, collectors []stream.Collector) *compiled {
	view := parent.view
	acc := rete.Accumulate{Source: parent.conds, KeyCount: len(keys)}
	if len(keys) > 0 {
		acc.GroupBy = func(token []any) []any {
			facts := view(token)
			values := make([]any, len(keys))
			for i, k := range keys {
				values[i] = k.Apply(facts)
			}
			return values
		}
	}
	for _, c := range collectors {
		acc.Accumulators = append(acc.Accumulators, accumulator{c: c, view: view})
	}
	return &compiled{conds: []rete.Condition{acc}, arity: len(keys) + len(collectors), view: grouped}
}

func consequence(c *stream.Constraint, view func([]any) []any) rete.Consequence {
	return func(ctx *rete.Context) error {
		g, _ := ctx.Global(HolderGlobal)
		holder, ok := g.(scoreholder.Holder)
		if !ok {
			return scoreerr.InvalidState("rulecompiler: constraint (%s) fired without a %q global", c.ID(), HolderGlobal)
		}
		facts := view(ctx.Facts())
		undo, err := c.Execute(holder, stream.Match{ID: c.ID(), Facts: facts, Extras: ctx.Extras()}, facts)
		if err != nil {
			return err
		}
		ctx.OnUnmatch(undo)
		return nil
	}
}
