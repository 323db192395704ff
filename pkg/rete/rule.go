// Package rete is a small forward-chaining production rule engine.
//
// A KnowledgeBase holds validated rules. Each rule is a list of conditions
// matched left to right against working memory, followed by a consequence.
// Sessions compile the rules into an alpha/beta network: alpha nodes keep
// the facts of one type that pass their pattern filter, join and exists
// nodes combine the partial match tokens with those facts through hash
// indexes, and terminal nodes put activations on the agenda.
//
// Matching is eager: Insert and Retract propagate through the network at
// once, and Update is a retract followed by an insert. Consequences only
// run in FireAllRules, in the order their activations were created. A
// consequence may register un-match callbacks; they run, in FIFO order with
// the consequences, when the activation is cancelled.
package rete

import (
	"reflect"

	"github.com/gitrdm/gokanscore/pkg/scoreerr"
)

// Condition is one element of a rule's left-hand side.
type Condition interface {
	condition()
}

// Pattern matches one fact of Type that passes Filter and appends it to the
// token. A Pattern is only valid as the first condition of a rule or of an
// Accumulate source; later facts are bound with Join.
type Pattern struct {
	Type   reflect.Type
	Filter func(fact any) bool
}

// Key is one hash-indexed equality between the token and a candidate fact.
type Key struct {
	Left  func(token []any) any
	Right func(fact any) any
}

// Join binds a fact of Pattern to the token when every Key is equal and
// Test, if set, holds.
type Join struct {
	Pattern Pattern
	Keys    []Key
	Test    func(token []any, fact any) bool
}

// Exists keeps the token while at least one fact of Pattern matches it, or
// while none does when Not is set. The facts matching a positive Exists are
// recorded on the token as extras.
type Exists struct {
	Not     bool
	Pattern Pattern
	Keys    []Key
	Test    func(token []any, fact any) bool
}

// Eval keeps the tokens Test accepts.
type Eval struct {
	Test func(token []any) bool
}

// Accumulator aggregates the tokens of one group.
type Accumulator interface {
	Supply() any
	Accumulate(container any, token []any) func()
	Finish(container any) any
}

// Accumulate groups the tokens produced by Source and replaces them with
// one token per group holding a single *GroupTuple. Accumulate must be the
// first condition of its list.
type Accumulate struct {
	Source       []Condition
	GroupBy      func(token []any) []any
	KeyCount     int
	Accumulators []Accumulator
}

func (Pattern) condition()    {}
func (Join) condition()       {}
func (Exists) condition()     {}
func (Eval) condition()       {}
func (Accumulate) condition() {}

// GroupTuple is the fact an Accumulate binds: the group key values followed
// by the accumulator results.
type GroupTuple struct {
	Values []any
}

// Consequence is the right-hand side of a rule.
type Consequence func(ctx *Context) error

// Rule is a named production.
type Rule struct {
	Name        string
	Conditions  []Condition
	Consequence Consequence
}

// KnowledgeBase is an immutable set of validated rules shared by sessions.
type KnowledgeBase struct {
	rules []*Rule
}

// NewKnowledgeBase validates rules and returns a knowledge base holding
// them in order.
func NewKnowledgeBase(rules ...*Rule) (*KnowledgeBase, error) {
	seen := make(map[string]bool, len(rules))
	for i, r := range rules {
		if r == nil {
			return nil, scoreerr.InvalidArgument("rete: rule %d is nil", i)
		}
		if r.Name == "" {
			return nil, scoreerr.InvalidArgument("rete: rule %d has no name", i)
		}
		if seen[r.Name] {
			return nil, scoreerr.InvalidArgument("rete: duplicate rule name %q", r.Name)
		}
		seen[r.Name] = true
		if r.Consequence == nil {
			return nil, scoreerr.InvalidArgument("rete: rule %q has no consequence", r.Name)
		}
		if err := validate(r.Name, r.Conditions); err != nil {
			return nil, err
		}
	}
	return &KnowledgeBase{rules: append([]*Rule(nil), rules...)}, nil
}

// Rules returns the rules in declaration order.
func (kb *KnowledgeBase) Rules() []*Rule { return append([]*Rule(nil), kb.rules...) }

func validate(rule string, conds []Condition) error {
	if len(conds) == 0 {
		return scoreerr.InvalidArgument("rete: rule %q has an empty condition list", rule)
	}
	for i, c := range conds {
		switch c := c.(type) {
		case Pattern:
			if i != 0 {
				return scoreerr.InvalidArgument("rete: rule %q condition %d: a Pattern must come first; bind later facts with Join", rule, i)
			}
			if c.Type == nil {
				return scoreerr.InvalidArgument("rete: rule %q condition %d: pattern has no type", rule, i)
			}
		case Accumulate:
			if i != 0 {
				return scoreerr.InvalidArgument("rete: rule %q condition %d: an Accumulate must come first", rule, i)
			}
			if len(c.Accumulators) == 0 && c.KeyCount == 0 {
				return scoreerr.InvalidArgument("rete: rule %q condition %d: accumulate has no keys and no accumulators", rule, i)
			}
			if c.KeyCount > maxGroupKeys {
				return scoreerr.InvalidArgument("rete: rule %q condition %d: accumulate has %d keys, at most %d are supported", rule, i, c.KeyCount, maxGroupKeys)
			}
			if c.KeyCount > 0 && c.GroupBy == nil {
				return scoreerr.InvalidArgument("rete: rule %q condition %d: accumulate has %d keys and no GroupBy", rule, i, c.KeyCount)
			}
			if err := validate(rule, c.Source); err != nil {
				return err
			}
		case Join:
			if i == 0 {
				return scoreerr.InvalidArgument("rete: rule %q: a Join cannot come first", rule)
			}
			if err := validateBeta(rule, i, c.Pattern, c.Keys); err != nil {
				return err
			}
		case Exists:
			if i == 0 {
				return scoreerr.InvalidArgument("rete: rule %q: an Exists cannot come first", rule)
			}
			if err := validateBeta(rule, i, c.Pattern, c.Keys); err != nil {
				return err
			}
		case Eval:
			if i == 0 {
				return scoreerr.InvalidArgument("rete: rule %q: an Eval cannot come first", rule)
			}
			if c.Test == nil {
				return scoreerr.InvalidArgument("rete: rule %q condition %d: eval has no test", rule, i)
			}
		default:
			return scoreerr.Unsupported("rete: rule %q condition %d: unknown condition %T", rule, i, c)
		}
	}
	return nil
}

func validateBeta(rule string, i int, p Pattern, keys []Key) error {
	if p.Type == nil {
		return scoreerr.InvalidArgument("rete: rule %q condition %d: pattern has no type", rule, i)
	}
	for k, key := range keys {
		if key.Left == nil || key.Right == nil {
			return scoreerr.InvalidArgument("rete: rule %q condition %d: key %d is incomplete", rule, i, k)
		}
	}
	return nil
}
