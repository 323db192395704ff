// Package bavet is the tuple propagation network backend.
//
// A Session compiles constraint streams into a network of stateful nodes:
// from nodes wrap facts in tuples, filter nodes drop tuples, join nodes pair
// left tuples with right facts through an index, existence nodes gate left
// tuples on the presence of matching right facts, group nodes aggregate
// tuples with collectors, and one scoring node per constraint impacts the
// score holder.
//
// Fact changes only queue tuple transitions (creating, updating, dying) at
// the inputs of the affected nodes. CalculateScore refreshes the nodes in
// layer order, so each node touches only the tuples reachable from the
// changed facts. Structurally identical stream steps are compiled once and
// shared between constraints.
//
// A Session is not safe for concurrent use.
package bavet

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/gitrdm/gokanscore/internal/ordered"
	"github.com/gitrdm/gokanscore/pkg/score"
	"github.com/gitrdm/gokanscore/pkg/scoreerr"
	"github.com/gitrdm/gokanscore/pkg/scoreholder"
	"github.com/gitrdm/gokanscore/pkg/stream"
)

// Session is the working memory of one network instance.
type Session struct {
	holder scoreholder.Holder
	nodes  []node
	froms  map[reflect.Type][]*fromNode
	facts  *ordered.Map[any, []*fromNode]
	err    error
}

// buildPolicy compiles every stream step once.
type buildPolicy struct {
	holder scoreholder.Holder
	built  map[*stream.Stream]producer
	nodes  []node
	froms  map[reflect.Type][]*fromNode
}

// NewSession compiles constraints into a network that impacts holder. The
// holder must already know the weight of every constraint.
func NewSession(constraints []*stream.Constraint, holder scoreholder.Holder) (*Session, error) {
	if holder == nil {
		return nil, scoreerr.InvalidArgument("bavet: score holder is nil")
	}
	b := &buildPolicy{
		holder: holder,
		built:  make(map[*stream.Stream]producer),
		froms:  make(map[reflect.Type][]*fromNode),
	}
	for _, c := range constraints {
		if err := b.constraint(c); err != nil {
			return nil, err
		}
	}
	slices.SortStableFunc(b.nodes, func(x, y node) int { return x.layer() - y.layer() })
	return &Session{
		holder: holder,
		nodes:  b.nodes,
		froms:  b.froms,
		facts:  ordered.NewMap[any, []*fromNode](),
	}, nil
}

func (b *buildPolicy) constraint(c *stream.Constraint) error {
	if c == nil {
		return scoreerr.InvalidArgument("bavet: constraint is nil")
	}
	if err := c.Err(); err != nil {
		return err
	}
	if _, ok := b.holder.ConstraintWeight(c.ID()); !ok {
		return scoreerr.InvalidState("bavet: constraint (%s) has no configured weight", c.ID())
	}
	parent, err := b.stream(c.Stream())
	if err != nil {
		return err
	}
	n := newScoringNode(parent.layer()+1, c, b.holder)
	parent.attach(&n.queue)
	b.nodes = append(b.nodes, n)
	return nil
}

func (b *buildPolicy) stream(s *stream.Stream) (producer, error) {
	if p, ok := b.built[s]; ok {
		return p, nil
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	var p producer
	switch s.Kind() {
	case stream.KindForEach:
		n := newFromNode()
		b.froms[s.FactType()] = append(b.froms[s.FactType()], n)
		p = n
	case stream.KindFilter:
		parent, err := b.stream(s.Parent())
		if err != nil {
			return nil, err
		}
		n := newFilterNode(parent.layer()+1, s.Predicate())
		parent.attach(&n.queue)
		p = n
	case stream.KindJoin:
		left, right, err := b.pair(s)
		if err != nil {
			return nil, err
		}
		n := newJoinNode(max(left.layer(), right.layer())+1, s.Joiners())
		left.attach(&n.left)
		right.attach(&n.right)
		p = n
	case stream.KindIfExists, stream.KindIfNotExists:
		left, right, err := b.pair(s)
		if err != nil {
			return nil, err
		}
		n := newExistsNode(max(left.layer(), right.layer())+1, s.Kind() == stream.KindIfExists, s.Joiners())
		left.attach(&n.left)
		right.attach(&n.right)
		p = n
	case stream.KindGroupBy:
		parent, err := b.stream(s.Parent())
		if err != nil {
			return nil, err
		}
		n := newGroupNode(parent.layer()+1, s.GroupKeys(), s.Collectors())
		parent.attach(&n.queue)
		p = n
	default:
		return nil, scoreerr.Unsupported("bavet: stream kind %s", s.Kind())
	}
	b.built[s] = p
	b.nodes = append(b.nodes, p)
	return p, nil
}

func (b *buildPolicy) pair(s *stream.Stream) (producer, producer, error) {
	left, err := b.stream(s.Parent())
	if err != nil {
		return nil, nil, err
	}
	right, err := b.stream(s.Other())
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

// Holder returns the score holder the session impacts.
func (s *Session) Holder() scoreholder.Holder { return s.holder }

// NodeCount returns the number of compiled nodes, scoring nodes included.
func (s *Session) NodeCount() int { return len(s.nodes) }

// FactCount returns the number of facts in working memory.
func (s *Session) FactCount() int { return s.facts.Len() }

// Insert adds fact to working memory. Facts are matched by their dynamic
// type and identified by ==, so they are usually pointers. A fact whose
// type no constraint uses is accepted and ignored.
func (s *Session) Insert(fact any) error {
	if err := checkFact(fact); err != nil {
		return err
	}
	if s.facts.Has(fact) {
		return scoreerr.InvalidState("bavet: fact %v is already inserted", fact)
	}
	froms := s.froms[reflect.TypeOf(fact)]
	s.facts.Put(fact, froms)
	for _, n := range froms {
		n.insertFact(fact)
	}
	return nil
}

// Update notifies the session that fields of fact changed.
func (s *Session) Update(fact any) error {
	froms, err := s.known("update", fact)
	if err != nil {
		return err
	}
	for _, n := range froms {
		n.updateFact(fact)
	}
	return nil
}

// Retract removes fact from working memory.
func (s *Session) Retract(fact any) error {
	froms, err := s.known("retract", fact)
	if err != nil {
		return err
	}
	s.facts.Delete(fact)
	for _, n := range froms {
		n.retractFact(fact)
	}
	return nil
}

func (s *Session) known(op string, fact any) ([]*fromNode, error) {
	if err := checkFact(fact); err != nil {
		return nil, err
	}
	froms, ok := s.facts.Get(fact)
	if !ok {
		return nil, scoreerr.InvalidState("bavet: cannot %s fact %v: it was never inserted", op, fact)
	}
	return froms, nil
}

func checkFact(fact any) error {
	if fact == nil {
		return scoreerr.InvalidArgument("bavet: fact is nil")
	}
	if !reflect.TypeOf(fact).Comparable() {
		return scoreerr.InvalidArgument("bavet: fact of type %T is not comparable; insert a pointer", fact)
	}
	return nil
}

// CalculateScore settles every pending fact change and returns the score
// with initScore. After a failed calculation the network is inconsistent
// and every further calculation fails with the same error.
func (s *Session) CalculateScore(initScore int) (score.Score, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, n := range s.nodes {
		if err := n.calculate(); err != nil {
			s.err = fmt.Errorf("bavet: score calculation failed: %w", err)
			return nil, s.err
		}
	}
	return s.holder.ExtractScore(initScore), nil
}

// Pending returns the number of queued tuple transitions.
func (s *Session) Pending() int {
	total := 0
	for _, n := range s.nodes {
		total += n.pending()
	}
	return total
}
