package stream

// Predicate is a filter over the facts of one stream tuple. Two stream steps
// share a node only when they use the same *Predicate, so reuse the value
// returned by the constructors to share work between constraints.
type Predicate struct {
	arity int
	test  func(facts []any) bool
}

// NewPredicate wraps a predicate over arity facts.
func NewPredicate(arity int, test func(facts []any) bool) *Predicate {
	return &Predicate{arity: arity, test: test}
}

func UniPredicate[A any](f func(A) bool) *Predicate {
	return NewPredicate(1, func(x []any) bool { return f(x[0].(A)) })
}

func BiPredicate[A, B any](f func(A, B) bool) *Predicate {
	return NewPredicate(2, func(x []any) bool { return f(x[0].(A), x[1].(B)) })
}

func TriPredicate[A, B, C any](f func(A, B, C) bool) *Predicate {
	return NewPredicate(3, func(x []any) bool { return f(x[0].(A), x[1].(B), x[2].(C)) })
}

func QuadPredicate[A, B, C, D any](f func(A, B, C, D) bool) *Predicate {
	return NewPredicate(4, func(x []any) bool { return f(x[0].(A), x[1].(B), x[2].(C), x[3].(D)) })
}

func (p *Predicate) Arity() int { return p.arity }

// Test evaluates the predicate.
func (p *Predicate) Test(facts []any) bool { return p.test(facts) }

// Mapping extracts a key or value from the facts of one stream tuple.
type Mapping struct {
	arity int
	apply func(facts []any) any
}

// NewMapping wraps a mapping over arity facts.
func NewMapping(arity int, apply func(facts []any) any) *Mapping {
	return &Mapping{arity: arity, apply: apply}
}

func UniKey[A, K any](f func(A) K) *Mapping {
	return NewMapping(1, func(x []any) any { return f(x[0].(A)) })
}

func BiKey[A, B, K any](f func(A, B) K) *Mapping {
	return NewMapping(2, func(x []any) any { return f(x[0].(A), x[1].(B)) })
}

func TriKey[A, B, C, K any](f func(A, B, C) K) *Mapping {
	return NewMapping(3, func(x []any) any { return f(x[0].(A), x[1].(B), x[2].(C)) })
}

func QuadKey[A, B, C, D, K any](f func(A, B, C, D) K) *Mapping {
	return NewMapping(4, func(x []any) any { return f(x[0].(A), x[1].(B), x[2].(C), x[3].(D)) })
}

func (m *Mapping) Arity() int { return m.arity }

// Apply evaluates the mapping.
func (m *Mapping) Apply(facts []any) any { return m.apply(facts) }
