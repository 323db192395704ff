package score

import (
	"cmp"

	"github.com/shopspring/decimal"
)

// SimpleScoreOf is a single-level score over an integer representation.
type SimpleScoreOf[N Number] struct {
	initScore int
	score     N
}

type (
	// SimpleScore is the int simple score.
	SimpleScore = SimpleScoreOf[int]
	// SimpleLongScore is the int64 simple score.
	SimpleLongScore = SimpleScoreOf[int64]
)

// NewSimpleScore returns a simple score with the given init score.
func NewSimpleScore[N Number](initScore int, score N) SimpleScoreOf[N] {
	return SimpleScoreOf[N]{initScore: initScore, score: score}
}

// OfSimple returns an initialized int simple score.
func OfSimple(score int) SimpleScore { return NewSimpleScore(0, score) }

// OfSimpleLong returns an initialized int64 simple score.
func OfSimpleLong(score int64) SimpleLongScore { return NewSimpleScore(0, score) }

// Score returns the single level.
func (s SimpleScoreOf[N]) Score() N { return s.score }

func (s SimpleScoreOf[N]) InitScore() int              { return s.initScore }
func (s SimpleScoreOf[N]) IsSolutionInitialized() bool { return s.initScore == 0 }

func (s SimpleScoreOf[N]) WithInitScore(initScore int) Score {
	return SimpleScoreOf[N]{initScore: initScore, score: s.score}
}

func (s SimpleScoreOf[N]) Add(other Score) Score {
	o := sameType[SimpleScoreOf[N]]("add", s, other)
	return SimpleScoreOf[N]{initScore: s.initScore + o.initScore, score: s.score + o.score}
}

func (s SimpleScoreOf[N]) Subtract(other Score) Score {
	o := sameType[SimpleScoreOf[N]]("subtract", s, other)
	return SimpleScoreOf[N]{initScore: s.initScore - o.initScore, score: s.score - o.score}
}

func (s SimpleScoreOf[N]) Multiply(factor float64) Score {
	return SimpleScoreOf[N]{initScore: floorMulInit(s.initScore, factor), score: floorMul(s.score, factor)}
}

func (s SimpleScoreOf[N]) Negate() Score {
	return SimpleScoreOf[N]{initScore: -s.initScore, score: -s.score}
}

func (s SimpleScoreOf[N]) CompareTo(other Score) int {
	o := sameType[SimpleScoreOf[N]]("compare", s, other)
	if c := cmp.Compare(s.initScore, o.initScore); c != 0 {
		return c
	}
	return cmp.Compare(s.score, o.score)
}

func (s SimpleScoreOf[N]) IsZero() bool     { return s.initScore == 0 && s.score == 0 }
func (s SimpleScoreOf[N]) IsFeasible() bool { return s.initScore >= 0 }
func (s SimpleScoreOf[N]) LevelNumbers() []any {
	return []any{s.score}
}

func (s SimpleScoreOf[N]) String() string {
	return initPrefix(s.initScore) + formatN(s.score)
}

// SimpleDecimalScore is a single-level arbitrary-precision score.
type SimpleDecimalScore struct {
	initScore int
	score     decimal.Decimal
}

// NewSimpleDecimalScore returns a simple decimal score with the given init score.
func NewSimpleDecimalScore(initScore int, score decimal.Decimal) SimpleDecimalScore {
	return SimpleDecimalScore{initScore: initScore, score: score}
}

// OfSimpleDecimal returns an initialized simple decimal score.
func OfSimpleDecimal(score decimal.Decimal) SimpleDecimalScore {
	return NewSimpleDecimalScore(0, score)
}

func (s SimpleDecimalScore) Score() decimal.Decimal      { return s.score }
func (s SimpleDecimalScore) InitScore() int              { return s.initScore }
func (s SimpleDecimalScore) IsSolutionInitialized() bool { return s.initScore == 0 }

func (s SimpleDecimalScore) WithInitScore(initScore int) Score {
	return SimpleDecimalScore{initScore: initScore, score: s.score}
}

func (s SimpleDecimalScore) Add(other Score) Score {
	o := sameType[SimpleDecimalScore]("add", s, other)
	return SimpleDecimalScore{initScore: s.initScore + o.initScore, score: s.score.Add(o.score)}
}

func (s SimpleDecimalScore) Subtract(other Score) Score {
	o := sameType[SimpleDecimalScore]("subtract", s, other)
	return SimpleDecimalScore{initScore: s.initScore - o.initScore, score: s.score.Sub(o.score)}
}

func (s SimpleDecimalScore) Multiply(factor float64) Score {
	return SimpleDecimalScore{
		initScore: floorMulInit(s.initScore, factor),
		score:     decimalFloorMul(s.score, factor),
	}
}

func (s SimpleDecimalScore) Negate() Score {
	return SimpleDecimalScore{initScore: -s.initScore, score: s.score.Neg()}
}

func (s SimpleDecimalScore) CompareTo(other Score) int {
	o := sameType[SimpleDecimalScore]("compare", s, other)
	if c := cmp.Compare(s.initScore, o.initScore); c != 0 {
		return c
	}
	return s.score.Cmp(o.score)
}

func (s SimpleDecimalScore) IsZero() bool        { return s.initScore == 0 && s.score.IsZero() }
func (s SimpleDecimalScore) IsFeasible() bool    { return s.initScore >= 0 }
func (s SimpleDecimalScore) LevelNumbers() []any { return []any{s.score} }

func (s SimpleDecimalScore) String() string {
	return initPrefix(s.initScore) + s.score.String()
}
