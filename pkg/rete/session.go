package rete

import (
	"fmt"
	"reflect"

	"github.com/gitrdm/gokanscore/internal/ordered"
	"github.com/gitrdm/gokanscore/pkg/scoreerr"
)

// Session is the working memory of one network instance. It is not safe
// for concurrent use, and consequences must not modify working memory.
type Session struct {
	alphas  map[reflect.Type][]*alphaNode
	facts   *ordered.Map[any, []*alphaNode]
	globals map[string]any
	agenda  agenda
	nodes   int
	err     error
}

// NewSession instantiates the network of kb with empty working memory.
func (kb *KnowledgeBase) NewSession() *Session {
	s := &Session{
		alphas:  make(map[reflect.Type][]*alphaNode),
		facts:   ordered.NewMap[any, []*alphaNode](),
		globals: make(map[string]any),
	}
	for _, r := range kb.rules {
		s.chain(r.Conditions, &terminalNode{rule: r, agenda: &s.agenda, acts: make(map[*token]*activation)})
	}
	return s
}

// chain compiles conds from the last condition backwards and connects the
// output of the last one to out.
func (s *Session) chain(conds []Condition, out sink) {
	s.nodes++
	next := out
	for i := len(conds) - 1; i >= 1; i-- {
		s.nodes++
		switch c := conds[i].(type) {
		case Join:
			n := newJoinNode(c, next)
			a := s.alpha(c.Pattern)
			a.sinks = append(a.sinks, n)
			next = n
		case Exists:
			n := newExistsNode(c, next)
			a := s.alpha(c.Pattern)
			a.sinks = append(a.sinks, n)
			next = n
		case Eval:
			next = &evalNode{test: c.Test, passed: make(map[*token]bool), next: next}
		}
	}
	switch c := conds[0].(type) {
	case Pattern:
		a := s.alpha(c)
		a.sinks = append(a.sinks, &rootNode{tokens: make(map[any]*token), next: next})
	case Accumulate:
		s.chain(c.Source, newAccumulateNode(c, next))
	}
}

// alpha returns the alpha node of p. Patterns are compared by their filter
// function, so nodes are only shared between conditions without a filter.
func (s *Session) alpha(p Pattern) *alphaNode {
	if p.Filter == nil {
		for _, a := range s.alphas[p.Type] {
			if a.pattern.Filter == nil {
				return a
			}
		}
	}
	a := newAlphaNode(p)
	s.alphas[p.Type] = append(s.alphas[p.Type], a)
	s.nodes++
	return a
}

// SetGlobal registers v under name for consequences to read.
func (s *Session) SetGlobal(name string, v any) { s.globals[name] = v }

// Global returns the global registered under name.
func (s *Session) Global(name string) (any, bool) {
	v, ok := s.globals[name]
	return v, ok
}

// NodeCount returns the number of network nodes, alpha nodes included.
func (s *Session) NodeCount() int { return s.nodes }

// FactCount returns the number of facts in working memory.
func (s *Session) FactCount() int { return s.facts.Len() }

// ActivationCount returns the number of live matches.
func (s *Session) ActivationCount() int { return s.agenda.live }

// AgendaSize returns the number of queued firings and un-match
// notifications, cancelled firings included.
func (s *Session) AgendaSize() int { return s.agenda.len() }

// Insert adds fact to working memory and matches it at once. Facts are
// dispatched by dynamic type and identified by ==.
func (s *Session) Insert(fact any) error {
	if err := s.check(fact); err != nil {
		return err
	}
	if s.facts.Has(fact) {
		return scoreerr.InvalidState("rete: fact %v is already inserted", fact)
	}
	alphas := s.alphas[reflect.TypeOf(fact)]
	s.facts.Put(fact, alphas)
	return s.propagate("insert", fact, alphas, (*alphaNode).assertFact)
}

// Update rematches fact after its fields changed.
func (s *Session) Update(fact any) error {
	alphas, err := s.known("update", fact)
	if err != nil {
		return err
	}
	if err := s.propagate("update", fact, alphas, (*alphaNode).retractFact); err != nil {
		return err
	}
	return s.propagate("update", fact, alphas, (*alphaNode).assertFact)
}

// Retract removes fact from working memory.
func (s *Session) Retract(fact any) error {
	alphas, err := s.known("retract", fact)
	if err != nil {
		return err
	}
	s.facts.Delete(fact)
	return s.propagate("retract", fact, alphas, (*alphaNode).retractFact)
}

func (s *Session) propagate(op string, fact any, alphas []*alphaNode, f func(*alphaNode, any) error) error {
	for _, a := range alphas {
		if err := f(a, fact); err != nil {
			s.err = fmt.Errorf("rete: %s of %v failed: %w", op, fact, err)
			return s.err
		}
	}
	return nil
}

func (s *Session) check(fact any) error {
	if s.err != nil {
		return s.err
	}
	if fact == nil {
		return scoreerr.InvalidArgument("rete: fact is nil")
	}
	if !reflect.TypeOf(fact).Comparable() {
		return scoreerr.InvalidArgument("rete: fact of type %T is not comparable; insert a pointer", fact)
	}
	return nil
}

func (s *Session) known(op string, fact any) ([]*alphaNode, error) {
	if err := s.check(fact); err != nil {
		return nil, err
	}
	alphas, ok := s.facts.Get(fact)
	if !ok {
		return nil, scoreerr.InvalidState("rete: cannot %s fact %v: it was never inserted", op, fact)
	}
	return alphas, nil
}

// FireAllRules runs the queued consequences and un-match callbacks in the
// order they were scheduled and returns how many consequences ran. A failed
// consequence leaves the session unusable.
func (s *Session) FireAllRules() (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	fired := 0
	for i, item := range s.agenda.items {
		act := item.act
		if item.unmatch {
			for _, f := range act.unmatch {
				f()
			}
			act.unmatch = nil
			continue
		}
		if act.cancelled {
			continue
		}
		act.fired = true
		if err := act.rule.Consequence(&Context{session: s, act: act}); err != nil {
			s.agenda.items = s.agenda.items[i+1:]
			s.err = fmt.Errorf("rete: rule %q failed: %w", act.rule.Name, err)
			return fired, s.err
		}
		fired++
	}
	s.agenda.items = s.agenda.items[:0]
	return fired, nil
}
