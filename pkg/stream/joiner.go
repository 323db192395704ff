package stream

import (
	"cmp"

	"github.com/gitrdm/gokanscore/internal/index"
)

// Joiner correlates the left tuple of a join or existence check with a fact
// of the right stream. Indexing joiners compare a left key with a right key
// and let backends look partners up in an index; filtering joiners are
// arbitrary predicates evaluated per candidate.
type Joiner struct {
	filtering bool
	op        index.Op
	left      *Mapping
	right     *Mapping
	compare   func(a, b any) int
	filter    func(left []any, right any) bool
}

// Equal matches when the left and right keys are ==. Keys must be comparable.
func Equal(left, right *Mapping) *Joiner {
	return &Joiner{op: index.Equal, left: left, right: right}
}

// EqualOn is Equal for a uni left stream.
func EqualOn[A, B any, K comparable](left func(A) K, right func(B) K) *Joiner {
	return Equal(UniKey(left), UniKey(right))
}

func comparing[K cmp.Ordered](op index.Op, left, right *Mapping) *Joiner {
	return &Joiner{op: op, left: left, right: right, compare: func(a, b any) int {
		return cmp.Compare(a.(K), b.(K))
	}}
}

// LessThan matches when the left key is less than the right key.
func LessThan[K cmp.Ordered](left, right *Mapping) *Joiner {
	return comparing[K](index.LessThan, left, right)
}

func LessThanOrEqual[K cmp.Ordered](left, right *Mapping) *Joiner {
	return comparing[K](index.LessThanOrEqual, left, right)
}

func GreaterThan[K cmp.Ordered](left, right *Mapping) *Joiner {
	return comparing[K](index.GreaterThan, left, right)
}

func GreaterThanOrEqual[K cmp.Ordered](left, right *Mapping) *Joiner {
	return comparing[K](index.GreaterThanOrEqual, left, right)
}

// Filtering matches when f holds for the left facts and the right fact.
func Filtering(f func(left []any, right any) bool) *Joiner {
	return &Joiner{filtering: true, filter: f}
}

func (j *Joiner) IsFiltering() bool { return j.filtering }

// Op returns the relation "left Op right" of an indexing joiner.
func (j *Joiner) Op() index.Op { return j.op }

func (j *Joiner) LeftMapping() *Mapping  { return j.left }
func (j *Joiner) RightMapping() *Mapping { return j.right }

// Compare is the key order of a comparison joiner, nil for Equal.
func (j *Joiner) Compare() func(a, b any) int { return j.compare }

// LeftKey returns the key of the left facts.
func (j *Joiner) LeftKey(left []any) any { return j.left.Apply(left) }

// RightKey returns the key of the right fact.
func (j *Joiner) RightKey(right any) any { return j.right.Apply([]any{right}) }

// Matches evaluates the joiner for one candidate pair.
func (j *Joiner) Matches(left []any, right any) bool {
	if j.filtering {
		return j.filter(left, right)
	}
	l, r := j.LeftKey(left), j.RightKey(right)
	if j.op == index.Equal {
		return l == r
	}
	return j.op.Holds(j.compare(l, r))
}

// Split returns the leading indexing joiners and the trailing filtering ones.
func Split(joiners []*Joiner) (indexing, filtering []*Joiner) {
	for i, j := range joiners {
		if j.filtering {
			return joiners[:i], joiners[i:]
		}
	}
	return joiners, nil
}

// MatchesAll evaluates every joiner for one candidate pair.
func MatchesAll(joiners []*Joiner, left []any, right any) bool {
	for _, j := range joiners {
		if !j.Matches(left, right) {
			return false
		}
	}
	return true
}

// Combine merges joiners into one filtering predicate over the left facts
// and the right fact, or nil when there are none.
func Combine(joiners []*Joiner) func(left []any, right any) bool {
	switch len(joiners) {
	case 0:
		return nil
	case 1:
		return joiners[0].Matches
	default:
		return func(left []any, right any) bool { return MatchesAll(joiners, left, right) }
	}
}
