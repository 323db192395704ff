package rulecompiler

import (
	"github.com/gitrdm/gokanscore/pkg/rete"
	"github.com/gitrdm/gokanscore/pkg/score"
	"github.com/gitrdm/gokanscore/pkg/scoreerr"
	"github.com/gitrdm/gokanscore/pkg/scoreholder"
	"github.com/gitrdm/gokanscore/pkg/stream"
)

// RuleBase is a compiled set of constraints, shared by the sessions built
// from it.
type RuleBase struct {
	kb          *rete.KnowledgeBase
	constraints []*stream.Constraint
}

// KnowledgeBase returns the compiled rules.
func (rb *RuleBase) KnowledgeBase() *rete.KnowledgeBase { return rb.kb }

// NewSession returns a session impacting holder, which must already know
// the weight of every constraint.
func (rb *RuleBase) NewSession(holder scoreholder.Holder) (*Session, error) {
	if holder == nil {
		return nil, scoreerr.InvalidArgument("rulecompiler: score holder is nil")
	}
	for _, c := range rb.constraints {
		if _, ok := holder.ConstraintWeight(c.ID()); !ok {
			return nil, scoreerr.InvalidState("rulecompiler: constraint (%s) has no configured weight", c.ID())
		}
	}
	rs := rb.kb.NewSession()
	rs.SetGlobal(HolderGlobal, holder)
	return &Session{rules: rs, holder: holder}, nil
}

// Session drives one rete session. Fact changes are matched at once;
// CalculateScore fires the pending consequences and un-match callbacks.
type Session struct {
	rules  *rete.Session
	holder scoreholder.Holder
}

// Holder returns the score holder the session impacts.
func (s *Session) Holder() scoreholder.Holder { return s.holder }

// Rules returns the underlying rete session.
func (s *Session) Rules() *rete.Session { return s.rules }

func (s *Session) Insert(fact any) error  { return s.rules.Insert(fact) }
func (s *Session) Update(fact any) error  { return s.rules.Update(fact) }
func (s *Session) Retract(fact any) error { return s.rules.Retract(fact) }

// CalculateScore fires all rules and returns the score with initScore.
func (s *Session) CalculateScore(initScore int) (score.Score, error) {
	if _, err := s.rules.FireAllRules(); err != nil {
		return nil, err
	}
	return s.holder.ExtractScore(initScore), nil
}
