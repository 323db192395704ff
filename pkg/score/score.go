// Package score provides the immutable score value types the scoring core
// accumulates into.
//
// A score is a vector of numeric levels compared lexicographically from the
// hardest level to the softest. Hard levels express feasibility, soft levels
// express preference. Every score also carries an init score: a non-positive
// count of planning entities that are still unassigned, compared before any
// level.
//
// Six shapes are supported, each in int, long and arbitrary-precision decimal
// representations:
//
//	simple             -7
//	hard/soft          -1hard/-2soft
//	hard/medium/soft   -1hard/-2medium/-3soft
//	bendable           [0/-1]hard/[-2]soft
//
// The int and long variants share one generic implementation over Number
// (SimpleScoreOf[int] is SimpleScore, SimpleScoreOf[int64] is SimpleLongScore).
// The decimal variants are built on github.com/shopspring/decimal, whose values
// are immutable and are replaced rather than mutated.
//
// Score values are safe to copy and to share between goroutines.
package score

import (
	"cmp"
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// Number is the set of machine integer types the int and long score
// variants are instantiated with.
type Number interface {
	~int | ~int64
}

// Score is the behaviour shared by every score value.
//
// Arithmetic between two scores of different concrete types is a programming
// error and panics; use Definition.IsCompatible to check first when the types
// are not statically known.
type Score interface {
	// InitScore returns the non-positive count of uninitialized entities.
	InitScore() int
	// WithInitScore returns a copy with the init score replaced.
	WithInitScore(initScore int) Score
	// IsSolutionInitialized reports whether InitScore is zero.
	IsSolutionInitialized() bool

	Add(other Score) Score
	Subtract(other Score) Score
	// Multiply multiplies every level and the init score, rounding down.
	Multiply(factor float64) Score
	Negate() Score

	// CompareTo returns -1, 0 or +1. The init score is compared first, then
	// the levels from hardest to softest.
	CompareTo(other Score) int

	// IsZero reports whether the init score and every level are zero.
	IsZero() bool
	// IsFeasible reports whether the solution is initialized and no hard
	// level is negative.
	IsFeasible() bool

	// LevelNumbers returns the levels hardest first, as N or decimal.Decimal.
	LevelNumbers() []any

	String() string
}

// Numeric identifies the number representation of a score type.
type Numeric int

const (
	NumericInt Numeric = iota
	NumericLong
	NumericDecimal
)

func (n Numeric) String() string {
	switch n {
	case NumericInt:
		return "int"
	case NumericLong:
		return "long"
	case NumericDecimal:
		return "decimal"
	default:
		return fmt.Sprintf("Numeric(%d)", int(n))
	}
}

func sameType[T Score](op string, self Score, o Score) T {
	t, ok := o.(T)
	if !ok {
		panic(fmt.Sprintf("score: cannot %s %T and %T", op, self, o))
	}
	return t
}

func floorMul[N Number](n N, factor float64) N {
	return N(math.Floor(float64(n) * factor))
}

func floorMulInit(initScore int, factor float64) int {
	return int(math.Floor(float64(initScore) * factor))
}

// decimalFloorMul multiplies d by factor and rounds down to d's own scale.
func decimalFloorMul(d decimal.Decimal, factor float64) decimal.Decimal {
	places := int32(0)
	if exp := d.Exponent(); exp < 0 {
		places = -exp
	}
	return d.Mul(decimal.NewFromFloat(factor)).RoundFloor(places)
}

func compareLevels[N Number](a, b []N) int {
	for i := range a {
		if c := cmp.Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return 0
}

func compareDecimalLevels(a, b []decimal.Decimal) int {
	for i := range a {
		if c := a[i].Cmp(b[i]); c != 0 {
			return c
		}
	}
	return 0
}

func formatN[N Number](n N) string {
	return strconv.FormatInt(int64(n), 10)
}

func initPrefix(initScore int) string {
	if initScore == 0 {
		return ""
	}
	return strconv.Itoa(initScore) + "init/"
}
