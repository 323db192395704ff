package score

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// BendableScoreOf is a score with a configurable number of hard and soft
// levels. Arithmetic requires both operands to have the same level counts.
type BendableScoreOf[N Number] struct {
	initScore int
	hard      []N
	soft      []N
}

type (
	BendableScore     = BendableScoreOf[int]
	BendableLongScore = BendableScoreOf[int64]
)

// NewBendableScore returns a bendable score. The level slices are copied.
func NewBendableScore[N Number](initScore int, hard, soft []N) BendableScoreOf[N] {
	return BendableScoreOf[N]{initScore: initScore, hard: slices.Clone(hard), soft: slices.Clone(soft)}
}

// ZeroBendableScore returns the zero score for the given level counts.
func ZeroBendableScore[N Number](hardLevels, softLevels int) BendableScoreOf[N] {
	return BendableScoreOf[N]{hard: make([]N, hardLevels), soft: make([]N, softLevels)}
}

// OfBendable returns an initialized int bendable score.
func OfBendable(hard, soft []int) BendableScore { return NewBendableScore(0, hard, soft) }

// OfBendableLong returns an initialized int64 bendable score.
func OfBendableLong(hard, soft []int64) BendableLongScore { return NewBendableScore(0, hard, soft) }

func (s BendableScoreOf[N]) HardLevelsSize() int   { return len(s.hard) }
func (s BendableScoreOf[N]) SoftLevelsSize() int   { return len(s.soft) }
func (s BendableScoreOf[N]) HardScore(level int) N { return s.hard[level] }
func (s BendableScoreOf[N]) SoftScore(level int) N { return s.soft[level] }

// HardScores returns a copy of the hard levels.
func (s BendableScoreOf[N]) HardScores() []N { return slices.Clone(s.hard) }

// SoftScores returns a copy of the soft levels.
func (s BendableScoreOf[N]) SoftScores() []N { return slices.Clone(s.soft) }

func (s BendableScoreOf[N]) InitScore() int              { return s.initScore }
func (s BendableScoreOf[N]) IsSolutionInitialized() bool { return s.initScore == 0 }

func (s BendableScoreOf[N]) WithInitScore(initScore int) Score {
	s.initScore = initScore
	return s
}

func (s BendableScoreOf[N]) Add(other Score) Score {
	o := s.sameShape("add", other)
	return s.combine(o, s.initScore+o.initScore, func(a, b N) N { return a + b })
}

func (s BendableScoreOf[N]) Subtract(other Score) Score {
	o := s.sameShape("subtract", other)
	return s.combine(o, s.initScore-o.initScore, func(a, b N) N { return a - b })
}

func (s BendableScoreOf[N]) Multiply(factor float64) Score {
	return s.mapLevels(floorMulInit(s.initScore, factor), func(n N) N { return floorMul(n, factor) })
}

func (s BendableScoreOf[N]) Negate() Score {
	return s.mapLevels(-s.initScore, func(n N) N { return -n })
}

func (s BendableScoreOf[N]) CompareTo(other Score) int {
	o := s.sameShape("compare", other)
	if c := cmp.Compare(s.initScore, o.initScore); c != 0 {
		return c
	}
	if c := compareLevels(s.hard, o.hard); c != 0 {
		return c
	}
	return compareLevels(s.soft, o.soft)
}

func (s BendableScoreOf[N]) IsZero() bool {
	if s.initScore != 0 {
		return false
	}
	for _, n := range s.hard {
		if n != 0 {
			return false
		}
	}
	for _, n := range s.soft {
		if n != 0 {
			return false
		}
	}
	return true
}

func (s BendableScoreOf[N]) IsFeasible() bool {
	if s.initScore < 0 {
		return false
	}
	for _, n := range s.hard {
		if n < 0 {
			return false
		}
	}
	return true
}

func (s BendableScoreOf[N]) LevelNumbers() []any {
	out := make([]any, 0, len(s.hard)+len(s.soft))
	for _, n := range s.hard {
		out = append(out, n)
	}
	for _, n := range s.soft {
		out = append(out, n)
	}
	return out
}

func (s BendableScoreOf[N]) String() string {
	return initPrefix(s.initScore) + bendableString(s.hard, s.soft, formatN[N])
}

func (s BendableScoreOf[N]) sameShape(op string, other Score) BendableScoreOf[N] {
	o := sameType[BendableScoreOf[N]](op, s, other)
	if len(o.hard) != len(s.hard) || len(o.soft) != len(s.soft) {
		panic(fmt.Sprintf("score: cannot %s bendable scores with levels %d/%d and %d/%d",
			op, len(s.hard), len(s.soft), len(o.hard), len(o.soft)))
	}
	return o
}

func (s BendableScoreOf[N]) combine(o BendableScoreOf[N], initScore int, f func(a, b N) N) BendableScoreOf[N] {
	out := BendableScoreOf[N]{initScore: initScore, hard: make([]N, len(s.hard)), soft: make([]N, len(s.soft))}
	for i := range s.hard {
		out.hard[i] = f(s.hard[i], o.hard[i])
	}
	for i := range s.soft {
		out.soft[i] = f(s.soft[i], o.soft[i])
	}
	return out
}

func (s BendableScoreOf[N]) mapLevels(initScore int, f func(N) N) BendableScoreOf[N] {
	out := BendableScoreOf[N]{initScore: initScore, hard: make([]N, len(s.hard)), soft: make([]N, len(s.soft))}
	for i, n := range s.hard {
		out.hard[i] = f(n)
	}
	for i, n := range s.soft {
		out.soft[i] = f(n)
	}
	return out
}

func bendableString[T any](hard, soft []T, format func(T) string) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, n := range hard {
		if i > 0 {
			b.WriteByte('/')
		}
		b.WriteString(format(n))
	}
	b.WriteString("]hard/[")
	for i, n := range soft {
		if i > 0 {
			b.WriteByte('/')
		}
		b.WriteString(format(n))
	}
	b.WriteString("]soft")
	return b.String()
}

// BendableDecimalScore is the arbitrary-precision bendable score.
type BendableDecimalScore struct {
	initScore int
	hard      []decimal.Decimal
	soft      []decimal.Decimal
}

// NewBendableDecimalScore returns a bendable decimal score. The level
// slices are copied.
func NewBendableDecimalScore(initScore int, hard, soft []decimal.Decimal) BendableDecimalScore {
	return BendableDecimalScore{initScore: initScore, hard: slices.Clone(hard), soft: slices.Clone(soft)}
}

// ZeroBendableDecimalScore returns the zero score for the given level counts.
func ZeroBendableDecimalScore(hardLevels, softLevels int) BendableDecimalScore {
	s := BendableDecimalScore{hard: make([]decimal.Decimal, hardLevels), soft: make([]decimal.Decimal, softLevels)}
	for i := range s.hard {
		s.hard[i] = decimal.Zero
	}
	for i := range s.soft {
		s.soft[i] = decimal.Zero
	}
	return s
}

// OfBendableDecimal returns an initialized bendable decimal score.
func OfBendableDecimal(hard, soft []decimal.Decimal) BendableDecimalScore {
	return NewBendableDecimalScore(0, hard, soft)
}

func (s BendableDecimalScore) HardLevelsSize() int                 { return len(s.hard) }
func (s BendableDecimalScore) SoftLevelsSize() int                 { return len(s.soft) }
func (s BendableDecimalScore) HardScore(level int) decimal.Decimal { return s.hard[level] }
func (s BendableDecimalScore) SoftScore(level int) decimal.Decimal { return s.soft[level] }
func (s BendableDecimalScore) HardScores() []decimal.Decimal       { return slices.Clone(s.hard) }
func (s BendableDecimalScore) SoftScores() []decimal.Decimal       { return slices.Clone(s.soft) }
func (s BendableDecimalScore) InitScore() int                      { return s.initScore }
func (s BendableDecimalScore) IsSolutionInitialized() bool         { return s.initScore == 0 }

func (s BendableDecimalScore) WithInitScore(initScore int) Score {
	s.initScore = initScore
	return s
}

func (s BendableDecimalScore) Add(other Score) Score {
	o := s.sameShape("add", other)
	return s.combine(o, s.initScore+o.initScore, decimal.Decimal.Add)
}

func (s BendableDecimalScore) Subtract(other Score) Score {
	o := s.sameShape("subtract", other)
	return s.combine(o, s.initScore-o.initScore, decimal.Decimal.Sub)
}

func (s BendableDecimalScore) Multiply(factor float64) Score {
	return s.mapLevels(floorMulInit(s.initScore, factor), func(d decimal.Decimal) decimal.Decimal {
		return decimalFloorMul(d, factor)
	})
}

func (s BendableDecimalScore) Negate() Score {
	return s.mapLevels(-s.initScore, decimal.Decimal.Neg)
}

func (s BendableDecimalScore) CompareTo(other Score) int {
	o := s.sameShape("compare", other)
	if c := cmp.Compare(s.initScore, o.initScore); c != 0 {
		return c
	}
	if c := compareDecimalLevels(s.hard, o.hard); c != 0 {
		return c
	}
	return compareDecimalLevels(s.soft, o.soft)
}

func (s BendableDecimalScore) IsZero() bool {
	if s.initScore != 0 {
		return false
	}
	for _, d := range s.hard {
		if !d.IsZero() {
			return false
		}
	}
	for _, d := range s.soft {
		if !d.IsZero() {
			return false
		}
	}
	return true
}

func (s BendableDecimalScore) IsFeasible() bool {
	if s.initScore < 0 {
		return false
	}
	for _, d := range s.hard {
		if d.IsNegative() {
			return false
		}
	}
	return true
}

func (s BendableDecimalScore) LevelNumbers() []any {
	out := make([]any, 0, len(s.hard)+len(s.soft))
	for _, d := range s.hard {
		out = append(out, d)
	}
	for _, d := range s.soft {
		out = append(out, d)
	}
	return out
}

func (s BendableDecimalScore) String() string {
	return initPrefix(s.initScore) + bendableString(s.hard, s.soft, decimal.Decimal.String)
}

func (s BendableDecimalScore) sameShape(op string, other Score) BendableDecimalScore {
	o := sameType[BendableDecimalScore](op, s, other)
	if len(o.hard) != len(s.hard) || len(o.soft) != len(s.soft) {
		panic(fmt.Sprintf("score: cannot %s bendable scores with levels %d/%d and %d/%d",
			op, len(s.hard), len(s.soft), len(o.hard), len(o.soft)))
	}
	return o
}

func (s BendableDecimalScore) combine(o BendableDecimalScore, initScore int,
	f func(a, b decimal.Decimal) decimal.Decimal) BendableDecimalScore {
	out := BendableDecimalScore{
		initScore: initScore,
		hard:      make([]decimal.Decimal, len(s.hard)),
		soft:      make([]decimal.Decimal, len(s.soft)),
	}
	for i := range s.hard {
		out.hard[i] = f(s.hard[i], o.hard[i])
	}
	for i := range s.soft {
		out.soft[i] = f(s.soft[i], o.soft[i])
	}
	return out
}

func (s BendableDecimalScore) mapLevels(initScore int, f func(decimal.Decimal) decimal.Decimal) BendableDecimalScore {
	out := BendableDecimalScore{
		initScore: initScore,
		hard:      make([]decimal.Decimal, len(s.hard)),
		soft:      make([]decimal.Decimal, len(s.soft)),
	}
	for i, d := range s.hard {
		out.hard[i] = f(d)
	}
	for i, d := range s.soft {
		out.soft[i] = f(d)
	}
	return out
}
