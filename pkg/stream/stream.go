// Package stream describes constraints as a DAG of stream steps.
//
// A Factory creates root streams over fact types; each operation on a
// Stream returns a child step (filter, join, existence check, group-by) and
// the terminal Penalize/Reward/Impact methods turn a stream into a
// Constraint. The DAG is pure description: the bavet and rulecompiler
// backends compile it into a tuple network or into rules.
//
// Child steps are interned on their parent by operation and by the identity
// of the predicate, joiners, mappings and collectors they use. Building two
// constraints from the same parent with the same *Predicate yields one
// shared step, which the backends compile into one node that evaluates the
// predicate once per tuple.
//
// Structural mistakes (arity over four, joiners in the wrong order, mixing
// factories) do not panic: they are recorded on the resulting stream,
// inherited by its descendants, and reported when the session factory
// assembles the constraints.
//
// Facts flow through a stream as []any. Root streams carry one fact of
// their type; joins append the partner fact; a group-by replaces the facts
// with its group keys followed by its collector results.
package stream

import (
	"cmp"
	"fmt"
	"reflect"
	"regexp"
	"runtime"

	"github.com/gitrdm/gokanscore/pkg/scoreerr"
)

// MaxArity is the largest number of facts a stream tuple can carry.
const MaxArity = 4

// Kind identifies a stream step.
type Kind int

const (
	KindForEach Kind = iota
	KindFilter
	KindJoin
	KindIfExists
	KindIfNotExists
	KindGroupBy
)

func (k Kind) String() string {
	switch k {
	case KindForEach:
		return "ForEach"
	case KindFilter:
		return "Filter"
	case KindJoin:
		return "Join"
	case KindIfExists:
		return "IfExists"
	case KindIfNotExists:
		return "IfNotExists"
	case KindGroupBy:
		return "GroupBy"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Factory creates root streams and owns the constraint package.
type Factory struct {
	pkg   string
	roots map[reflect.Type]*Stream
	pairs map[pairKey]*Joiner
	count int
}

type pairKey struct {
	factType reflect.Type
	id       uintptr
}

// NewFactory returns a factory whose constraints live in defaultPackage.
func NewFactory(defaultPackage string) *Factory {
	return &Factory{
		pkg:   defaultPackage,
		roots: make(map[reflect.Type]*Stream),
		pairs: make(map[pairKey]*Joiner),
	}
}

// DefaultPackage returns the package of the constraints built here.
func (f *Factory) DefaultPackage() string { return f.pkg }

// ForEach returns the root stream of every fact of type T. Facts are
// dispatched by their dynamic type, so T is usually a pointer type such as
// *Queen.
func ForEach[T any](f *Factory) *Stream {
	t := reflect.TypeFor[T]()
	if s, ok := f.roots[t]; ok {
		return s
	}
	s := f.newStream(&Stream{kind: KindForEach, arity: 1, factType: t})
	f.roots[t] = s
	return s
}

// ForEachUniquePair returns every pair (a, b) of distinct T facts with
// id(a) < id(b) that also satisfies joiners.
//
// When id is a named function or a method expression, unique pairs built
// from it on the same factory share their id joiner, so identical unique
// pair streams share one join step. A closure may capture state and gets a
// joiner of its own.
func ForEachUniquePair[T any, K cmp.Ordered](f *Factory, id func(T) K, joiners ...*Joiner) *Stream {
	all := append([]*Joiner{uniquePairJoiner(f, id)}, joiners...)
	return ForEach[T](f).Join(ForEach[T](f), all...)
}

// closureName matches the symbol names the compiler gives function
// literals (pkg.Outer.func1, pkg.Outer.func1.2) and bound method values
// (pkg.T.M-fm).
var closureName = regexp.MustCompile(`\.func\d+(\.\d+)*$|-fm$`)

func uniquePairJoiner[T any, K cmp.Ordered](f *Factory, id func(T) K) *Joiner {
	pc := reflect.ValueOf(id).Pointer()
	fn := runtime.FuncForPC(pc)
	shared := fn != nil && !closureName.MatchString(fn.Name())
	k := pairKey{factType: reflect.TypeFor[T](), id: pc}
	if shared {
		if j, ok := f.pairs[k]; ok {
			return j
		}
	}
	key := UniKey(id)
	j := LessThan[K](key, key)
	if shared {
		f.pairs[k] = j
	}
	return j
}

func (f *Factory) newStream(s *Stream) *Stream {
	s.factory = f
	s.seq = f.count
	f.count++
	return s
}

// Stream is one step of the constraint DAG.
type Stream struct {
	factory    *Factory
	seq        int
	kind       Kind
	arity      int
	parent     *Stream
	other      *Stream
	factType   reflect.Type
	predicate  *Predicate
	joiners    []*Joiner
	groupKeys  []*Mapping
	collectors []Collector
	err        error
	children   []*Stream
}

func (s *Stream) Factory() *Factory { return s.factory }
func (s *Stream) Kind() Kind        { return s.kind }

// Arity returns the number of facts in a tuple of this stream.
func (s *Stream) Arity() int { return s.arity }

// Parent returns the upstream step, nil for a root.
func (s *Stream) Parent() *Stream { return s.parent }

// Other returns the right-hand stream of a join or existence check.
func (s *Stream) Other() *Stream { return s.other }

// FactType returns the fact type of a root stream.
func (s *Stream) FactType() reflect.Type { return s.factType }

func (s *Stream) Predicate() *Predicate   { return s.predicate }
func (s *Stream) Joiners() []*Joiner      { return s.joiners }
func (s *Stream) GroupKeys() []*Mapping   { return s.groupKeys }
func (s *Stream) Collectors() []Collector { return s.collectors }

// Err returns the first structural error of this step or its ancestors.
func (s *Stream) Err() error { return s.err }

// ID returns a number unique within the factory, in creation order.
func (s *Stream) ID() int { return s.seq }

func (s *Stream) String() string {
	switch s.kind {
	case KindForEach:
		return fmt.Sprintf("ForEach(%s)", s.factType)
	case KindJoin, KindIfExists, KindIfNotExists:
		return fmt.Sprintf("%s#%d(%s, %s)", s.kind, s.seq, s.parent, s.other)
	default:
		return fmt.Sprintf("%s#%d(%s)", s.kind, s.seq, s.parent)
	}
}

// IsFactStream reports whether s is a root optionally followed by filters,
// which is what joins and existence checks accept as their right side.
func (s *Stream) IsFactStream() bool {
	for cur := s; cur != nil; cur = cur.parent {
		switch cur.kind {
		case KindForEach:
			return true
		case KindFilter:
			continue
		default:
			return false
		}
	}
	return false
}

// Root returns the ForEach step a fact stream starts from.
func (s *Stream) Root() *Stream {
	cur := s
	for cur.parent != nil {
		cur = cur.parent
	}
	return cur
}

// Filter keeps the tuples p accepts.
func (s *Stream) Filter(p *Predicate) *Stream {
	child := &Stream{kind: KindFilter, arity: s.arity, parent: s, predicate: p}
	if s.err == nil {
		switch {
		case p == nil:
			child.err = scoreerr.InvalidArgument("%s: filter predicate is nil", s)
		case p.arity != s.arity:
			child.err = scoreerr.InvalidArgument("%s: filter predicate arity (%d) differs from stream arity (%d)",
				s, p.arity, s.arity)
		}
	}
	return s.intern(child)
}

// Join appends the facts of other, a uni fact stream, to every tuple they
// match through joiners.
func (s *Stream) Join(other *Stream, joiners ...*Joiner) *Stream {
	child := &Stream{kind: KindJoin, arity: s.arity + 1, parent: s, other: other, joiners: joiners}
	if s.err == nil {
		child.err = s.checkPartner("join", other, joiners)
		if child.err == nil && child.arity > MaxArity {
			child.err = scoreerr.InvalidArgument("%s: join would produce arity %d, over the maximum of %d",
				s, child.arity, MaxArity)
		}
	}
	return s.intern(child)
}

// IfExists keeps the tuples for which at least one fact of other matches
// joiners.
func (s *Stream) IfExists(other *Stream, joiners ...*Joiner) *Stream {
	child := &Stream{kind: KindIfExists, arity: s.arity, parent: s, other: other, joiners: joiners}
	if s.err == nil {
		child.err = s.checkPartner("ifExists", other, joiners)
	}
	return s.intern(child)
}

// IfNotExists keeps the tuples for which no fact of other matches joiners.
func (s *Stream) IfNotExists(other *Stream, joiners ...*Joiner) *Stream {
	child := &Stream{kind: KindIfNotExists, arity: s.arity, parent: s, other: other, joiners: joiners}
	if s.err == nil {
		child.err = s.checkPartner("ifNotExists", other, joiners)
	}
	return s.intern(child)
}

// GroupBy groups the tuples by keys and aggregates every group with
// collectors. The resulting tuples carry the key values followed by the
// collector results.
func (s *Stream) GroupBy(keys []*Mapping, collectors ...Collector) *Stream {
	n := len(keys) + len(collectors)
	child := &Stream{kind: KindGroupBy, arity: n, parent: s, groupKeys: keys, collectors: collectors}
	if s.err == nil {
		child.err = s.checkGroupBy(keys, collectors)
	}
	return s.intern(child)
}

func (s *Stream) checkPartner(op string, other *Stream, joiners []*Joiner) error {
	switch {
	case other == nil:
		return scoreerr.InvalidArgument("%s: %s partner is nil", s, op)
	case other.factory != s.factory:
		return scoreerr.InvalidState("%s: %s partner %s comes from a different constraint factory", s, op, other)
	case other.err != nil:
		return other.err
	case !other.IsFactStream():
		return scoreerr.InvalidArgument("%s: %s partner %s must be a forEach stream optionally followed by filters",
			s, op, other)
	}
	seenFiltering := false
	for i, j := range joiners {
		switch {
		case j == nil:
			return scoreerr.InvalidArgument("%s: %s joiner %d is nil", s, op, i)
		case j.filtering:
			seenFiltering = true
		case j.left == nil || j.right == nil:
			return scoreerr.InvalidArgument("%s: %s joiner %d has a nil mapping", s, op, i)
		case seenFiltering:
			return scoreerr.InvalidState("%s: %s indexing joiner %d (%s) follows a filtering joiner; "+
				"put indexing joiners before filtering joiners", s, op, i, j.op)
		case j.left.arity != s.arity:
			return scoreerr.InvalidArgument("%s: %s joiner %d left mapping arity (%d) differs from stream arity (%d)",
				s, op, i, j.left.arity, s.arity)
		case j.right.arity != 1:
			return scoreerr.InvalidArgument("%s: %s joiner %d right mapping arity (%d) must be 1",
				s, op, i, j.right.arity)
		}
	}
	return nil
}

func (s *Stream) checkGroupBy(keys []*Mapping, collectors []Collector) error {
	n := len(keys) + len(collectors)
	if n < 1 || n > MaxArity {
		return scoreerr.InvalidArgument("%s: groupBy needs 1 to %d mappings and collectors, got %d keys and %d collectors",
			s, MaxArity, len(keys), len(collectors))
	}
	for i, k := range keys {
		if k == nil || k.arity != s.arity {
			return scoreerr.InvalidArgument("%s: groupBy key mapping %d does not take %d facts", s, i, s.arity)
		}
	}
	for i, c := range collectors {
		if c == nil {
			return scoreerr.InvalidArgument("%s: groupBy collector %d is nil", s, i)
		}
		if !reflect.TypeOf(c).Comparable() {
			return scoreerr.InvalidArgument("%s: groupBy collector %d (%T) must be a pointer type", s, i, c)
		}
		if m, ok := c.(mapped); ok && m.mapping() != nil && m.mapping().arity != s.arity {
			return scoreerr.InvalidArgument("%s: groupBy collector %d mapping arity (%d) differs from stream arity (%d)",
				s, i, m.mapping().arity, s.arity)
		}
	}
	return nil
}

// intern returns the existing child equal to c, or registers c.
func (s *Stream) intern(c *Stream) *Stream {
	if c.err == nil {
		c.err = s.err
	}
	for _, existing := range s.children {
		if existing.sameStep(c) {
			return existing
		}
	}
	s.factory.newStream(c)
	s.children = append(s.children, c)
	return c
}

func (s *Stream) sameStep(o *Stream) bool {
	if s.kind != o.kind || s.other != o.other || s.predicate != o.predicate {
		return false
	}
	if len(s.joiners) != len(o.joiners) || len(s.groupKeys) != len(o.groupKeys) ||
		len(s.collectors) != len(o.collectors) {
		return false
	}
	for i := range s.joiners {
		if s.joiners[i] != o.joiners[i] {
			return false
		}
	}
	for i := range s.groupKeys {
		if s.groupKeys[i] != o.groupKeys[i] {
			return false
		}
	}
	for i := range s.collectors {
		if !sameCollector(s.collectors[i], o.collectors[i]) {
			return false
		}
	}
	return true
}

func sameCollector(a, b Collector) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	return ta == tb && ta.Comparable() && a == b
}
