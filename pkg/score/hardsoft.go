package score

import (
	"cmp"

	"github.com/shopspring/decimal"
)

// HardSoftScoreOf is a two-level score: one hard level and one soft level.
type HardSoftScoreOf[N Number] struct {
	initScore int
	hard      N
	soft      N
}

type (
	HardSoftScore     = HardSoftScoreOf[int]
	HardSoftLongScore = HardSoftScoreOf[int64]
)

// NewHardSoftScore returns a hard/soft score with the given init score.
func NewHardSoftScore[N Number](initScore int, hard, soft N) HardSoftScoreOf[N] {
	return HardSoftScoreOf[N]{initScore: initScore, hard: hard, soft: soft}
}

// OfHardSoft returns an initialized int hard/soft score.
func OfHardSoft(hard, soft int) HardSoftScore { return NewHardSoftScore(0, hard, soft) }

// OfHardSoftLong returns an initialized int64 hard/soft score.
func OfHardSoftLong(hard, soft int64) HardSoftLongScore { return NewHardSoftScore(0, hard, soft) }

func (s HardSoftScoreOf[N]) Hard() N                     { return s.hard }
func (s HardSoftScoreOf[N]) Soft() N                     { return s.soft }
func (s HardSoftScoreOf[N]) InitScore() int              { return s.initScore }
func (s HardSoftScoreOf[N]) IsSolutionInitialized() bool { return s.initScore == 0 }

func (s HardSoftScoreOf[N]) WithInitScore(initScore int) Score {
	s.initScore = initScore
	return s
}

func (s HardSoftScoreOf[N]) Add(other Score) Score {
	o := sameType[HardSoftScoreOf[N]]("add", s, other)
	return HardSoftScoreOf[N]{s.initScore + o.initScore, s.hard + o.hard, s.soft + o.soft}
}

func (s HardSoftScoreOf[N]) Subtract(other Score) Score {
	o := sameType[HardSoftScoreOf[N]]("subtract", s, other)
	return HardSoftScoreOf[N]{s.initScore - o.initScore, s.hard - o.hard, s.soft - o.soft}
}

func (s HardSoftScoreOf[N]) Multiply(factor float64) Score {
	return HardSoftScoreOf[N]{floorMulInit(s.initScore, factor), floorMul(s.hard, factor), floorMul(s.soft, factor)}
}

func (s HardSoftScoreOf[N]) Negate() Score {
	return HardSoftScoreOf[N]{-s.initScore, -s.hard, -s.soft}
}

func (s HardSoftScoreOf[N]) CompareTo(other Score) int {
	o := sameType[HardSoftScoreOf[N]]("compare", s, other)
	if c := cmp.Compare(s.initScore, o.initScore); c != 0 {
		return c
	}
	if c := cmp.Compare(s.hard, o.hard); c != 0 {
		return c
	}
	return cmp.Compare(s.soft, o.soft)
}

func (s HardSoftScoreOf[N]) IsZero() bool        { return s.initScore == 0 && s.hard == 0 && s.soft == 0 }
func (s HardSoftScoreOf[N]) IsFeasible() bool    { return s.initScore >= 0 && s.hard >= 0 }
func (s HardSoftScoreOf[N]) LevelNumbers() []any { return []any{s.hard, s.soft} }

func (s HardSoftScoreOf[N]) String() string {
	return initPrefix(s.initScore) + formatN(s.hard) + "hard/" + formatN(s.soft) + "soft"
}

// HardSoftDecimalScore is the arbitrary-precision hard/soft score.
type HardSoftDecimalScore struct {
	initScore int
	hard      decimal.Decimal
	soft      decimal.Decimal
}

// NewHardSoftDecimalScore returns a hard/soft decimal score with the given init score.
func NewHardSoftDecimalScore(initScore int, hard, soft decimal.Decimal) HardSoftDecimalScore {
	return HardSoftDecimalScore{initScore: initScore, hard: hard, soft: soft}
}

// OfHardSoftDecimal returns an initialized hard/soft decimal score.
func OfHardSoftDecimal(hard, soft decimal.Decimal) HardSoftDecimalScore {
	return NewHardSoftDecimalScore(0, hard, soft)
}

func (s HardSoftDecimalScore) Hard() decimal.Decimal       { return s.hard }
func (s HardSoftDecimalScore) Soft() decimal.Decimal       { return s.soft }
func (s HardSoftDecimalScore) InitScore() int              { return s.initScore }
func (s HardSoftDecimalScore) IsSolutionInitialized() bool { return s.initScore == 0 }

func (s HardSoftDecimalScore) WithInitScore(initScore int) Score {
	s.initScore = initScore
	return s
}

func (s HardSoftDecimalScore) Add(other Score) Score {
	o := sameType[HardSoftDecimalScore]("add", s, other)
	return HardSoftDecimalScore{s.initScore + o.initScore, s.hard.Add(o.hard), s.soft.Add(o.soft)}
}

func (s HardSoftDecimalScore) Subtract(other Score) Score {
	o := sameType[HardSoftDecimalScore]("subtract", s, other)
	return HardSoftDecimalScore{s.initScore - o.initScore, s.hard.Sub(o.hard), s.soft.Sub(o.soft)}
}

func (s HardSoftDecimalScore) Multiply(factor float64) Score {
	return HardSoftDecimalScore{
		floorMulInit(s.initScore, factor),
		decimalFloorMul(s.hard, factor),
		decimalFloorMul(s.soft, factor),
	}
}

func (s HardSoftDecimalScore) Negate() Score {
	return HardSoftDecimalScore{-s.initScore, s.hard.Neg(), s.soft.Neg()}
}

func (s HardSoftDecimalScore) CompareTo(other Score) int {
	o := sameType[HardSoftDecimalScore]("compare", s, other)
	if c := cmp.Compare(s.initScore, o.initScore); c != 0 {
		return c
	}
	if c := s.hard.Cmp(o.hard); c != 0 {
		return c
	}
	return s.soft.Cmp(o.soft)
}

func (s HardSoftDecimalScore) IsZero() bool {
	return s.initScore == 0 && s.hard.IsZero() && s.soft.IsZero()
}

func (s HardSoftDecimalScore) IsFeasible() bool {
	return s.initScore >= 0 && !s.hard.IsNegative()
}

func (s HardSoftDecimalScore) LevelNumbers() []any { return []any{s.hard, s.soft} }

func (s HardSoftDecimalScore) String() string {
	return initPrefix(s.initScore) + s.hard.String() + "hard/" + s.soft.String() + "soft"
}
