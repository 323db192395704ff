package stream

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// WeigherKind is the number type a weigher produces.
type WeigherKind int

const (
	WeigherNone WeigherKind = iota
	WeigherInt
	WeigherLong
	WeigherDecimal
)

func (k WeigherKind) String() string {
	switch k {
	case WeigherNone:
		return "none"
	case WeigherInt:
		return "int"
	case WeigherLong:
		return "long"
	case WeigherDecimal:
		return "decimal"
	default:
		return fmt.Sprintf("WeigherKind(%d)", int(k))
	}
}

// Weight is the set of match weight types.
type Weight interface {
	int | int64 | decimal.Decimal
}

// Weigher computes the match weight that multiplies a constraint weight.
type Weigher struct {
	kind  WeigherKind
	arity int
	apply func(facts []any) any
}

// NewWeigher wraps a weigher over arity facts returning W.
func NewWeigher[W Weight](arity int, f func(facts []any) W) *Weigher {
	var zero W
	kind := WeigherDecimal
	switch any(zero).(type) {
	case int:
		kind = WeigherInt
	case int64:
		kind = WeigherLong
	}
	return &Weigher{kind: kind, arity: arity, apply: func(x []any) any { return f(x) }}
}

func UniWeigher[A any, W Weight](f func(A) W) *Weigher {
	return NewWeigher(1, func(x []any) W { return f(x[0].(A)) })
}

func BiWeigher[A, B any, W Weight](f func(A, B) W) *Weigher {
	return NewWeigher(2, func(x []any) W { return f(x[0].(A), x[1].(B)) })
}

func TriWeigher[A, B, C any, W Weight](f func(A, B, C) W) *Weigher {
	return NewWeigher(3, func(x []any) W { return f(x[0].(A), x[1].(B), x[2].(C)) })
}

func QuadWeigher[A, B, C, D any, W Weight](f func(A, B, C, D) W) *Weigher {
	return NewWeigher(4, func(x []any) W { return f(x[0].(A), x[1].(B), x[2].(C), x[3].(D)) })
}

// Kind returns WeigherNone for a nil weigher.
func (w *Weigher) Kind() WeigherKind {
	if w == nil {
		return WeigherNone
	}
	return w.kind
}

func (w *Weigher) Arity() int { return w.arity }

// Weigh returns the match weight as int, int64 or decimal.Decimal
// according to Kind.
func (w *Weigher) Weigh(facts []any) any { return w.apply(facts) }
