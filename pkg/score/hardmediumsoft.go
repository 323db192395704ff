package score

import (
	"cmp"

	"github.com/shopspring/decimal"
)

// HardMediumSoftScoreOf is a three-level score.
type HardMediumSoftScoreOf[N Number] struct {
	initScore int
	hard      N
	medium    N
	soft      N
}

type (
	HardMediumSoftScore     = HardMediumSoftScoreOf[int]
	HardMediumSoftLongScore = HardMediumSoftScoreOf[int64]
)

// NewHardMediumSoftScore returns a hard/medium/soft score with the given init score.
func NewHardMediumSoftScore[N Number](initScore int, hard, medium, soft N) HardMediumSoftScoreOf[N] {
	return HardMediumSoftScoreOf[N]{initScore: initScore, hard: hard, medium: medium, soft: soft}
}

// OfHardMediumSoft returns an initialized int hard/medium/soft score.
func OfHardMediumSoft(hard, medium, soft int) HardMediumSoftScore {
	return NewHardMediumSoftScore(0, hard, medium, soft)
}

// OfHardMediumSoftLong returns an initialized int64 hard/medium/soft score.
func OfHardMediumSoftLong(hard, medium, soft int64) HardMediumSoftLongScore {
	return NewHardMediumSoftScore(0, hard, medium, soft)
}

func (s HardMediumSoftScoreOf[N]) Hard() N                     { return s.hard }
func (s HardMediumSoftScoreOf[N]) Medium() N                   { return s.medium }
func (s HardMediumSoftScoreOf[N]) Soft() N                     { return s.soft }
func (s HardMediumSoftScoreOf[N]) InitScore() int              { return s.initScore }
func (s HardMediumSoftScoreOf[N]) IsSolutionInitialized() bool { return s.initScore == 0 }

func (s HardMediumSoftScoreOf[N]) WithInitScore(initScore int) Score {
	s.initScore = initScore
	return s
}

func (s HardMediumSoftScoreOf[N]) Add(other Score) Score {
	o := sameType[HardMediumSoftScoreOf[N]]("add", s, other)
	return HardMediumSoftScoreOf[N]{s.initScore + o.initScore, s.hard + o.hard, s.medium + o.medium, s.soft + o.soft}
}

func (s HardMediumSoftScoreOf[N]) Subtract(other Score) Score {
	o := sameType[HardMediumSoftScoreOf[N]]("subtract", s, other)
	return HardMediumSoftScoreOf[N]{s.initScore - o.initScore, s.hard - o.hard, s.medium - o.medium, s.soft - o.soft}
}

func (s HardMediumSoftScoreOf[N]) Multiply(factor float64) Score {
	return HardMediumSoftScoreOf[N]{
		floorMulInit(s.initScore, factor),
		floorMul(s.hard, factor),
		floorMul(s.medium, factor),
		floorMul(s.soft, factor),
	}
}

func (s HardMediumSoftScoreOf[N]) Negate() Score {
	return HardMediumSoftScoreOf[N]{-s.initScore, -s.hard, -s.medium, -s.soft}
}

func (s HardMediumSoftScoreOf[N]) CompareTo(other Score) int {
	o := sameType[HardMediumSoftScoreOf[N]]("compare", s, other)
	if c := cmp.Compare(s.initScore, o.initScore); c != 0 {
		return c
	}
	return compareLevels([]N{s.hard, s.medium, s.soft}, []N{o.hard, o.medium, o.soft})
}

func (s HardMediumSoftScoreOf[N]) IsZero() bool {
	return s.initScore == 0 && s.hard == 0 && s.medium == 0 && s.soft == 0
}

func (s HardMediumSoftScoreOf[N]) IsFeasible() bool    { return s.initScore >= 0 && s.hard >= 0 }
func (s HardMediumSoftScoreOf[N]) LevelNumbers() []any { return []any{s.hard, s.medium, s.soft} }

func (s HardMediumSoftScoreOf[N]) String() string {
	return initPrefix(s.initScore) + formatN(s.hard) + "hard/" + formatN(s.medium) + "medium/" +
		formatN(s.soft) + "soft"
}

// HardMediumSoftDecimalScore is the arbitrary-precision hard/medium/soft score.
type HardMediumSoftDecimalScore struct {
	initScore int
	hard      decimal.Decimal
	medium    decimal.Decimal
	soft      decimal.Decimal
}

// NewHardMediumSoftDecimalScore returns a hard/medium/soft decimal score
// with the given init score.
func NewHardMediumSoftDecimalScore(initScore int, hard, medium, soft decimal.Decimal) HardMediumSoftDecimalScore {
	return HardMediumSoftDecimalScore{initScore: initScore, hard: hard, medium: medium, soft: soft}
}

// OfHardMediumSoftDecimal returns an initialized hard/medium/soft decimal score.
func OfHardMediumSoftDecimal(hard, medium, soft decimal.Decimal) HardMediumSoftDecimalScore {
	return NewHardMediumSoftDecimalScore(0, hard, medium, soft)
}

func (s HardMediumSoftDecimalScore) Hard() decimal.Decimal       { return s.hard }
func (s HardMediumSoftDecimalScore) Medium() decimal.Decimal     { return s.medium }
func (s HardMediumSoftDecimalScore) Soft() decimal.Decimal       { return s.soft }
func (s HardMediumSoftDecimalScore) InitScore() int              { return s.initScore }
func (s HardMediumSoftDecimalScore) IsSolutionInitialized() bool { return s.initScore == 0 }

func (s HardMediumSoftDecimalScore) WithInitScore(initScore int) Score {
	s.initScore = initScore
	return s
}

func (s HardMediumSoftDecimalScore) Add(other Score) Score {
	o := sameType[HardMediumSoftDecimalScore]("add", s, other)
	return HardMediumSoftDecimalScore{s.initScore + o.initScore, s.hard.Add(o.hard), s.medium.Add(o.medium), s.soft.Add(o.soft)}
}

func (s HardMediumSoftDecimalScore) Subtract(other Score) Score {
	o := sameType[HardMediumSoftDecimalScore]("subtract", s, other)
	return HardMediumSoftDecimalScore{s.initScore - o.initScore, s.hard.Sub(o.hard), s.medium.Sub(o.medium), s.soft.Sub(o.soft)}
}

func (s HardMediumSoftDecimalScore) Multiply(factor float64) Score {
	return HardMediumSoftDecimalScore{
		floorMulInit(s.initScore, factor),
		decimalFloorMul(s.hard, factor),
		decimalFloorMul(s.medium, factor),
		decimalFloorMul(s.soft, factor),
	}
}

func (s HardMediumSoftDecimalScore) Negate() Score {
	return HardMediumSoftDecimalScore{-s.initScore, s.hard.Neg(), s.medium.Neg(), s.soft.Neg()}
}

func (s HardMediumSoftDecimalScore) CompareTo(other Score) int {
	o := sameType[HardMediumSoftDecimalScore]("compare", s, other)
	if c := cmp.Compare(s.initScore, o.initScore); c != 0 {
		return c
	}
	return compareDecimalLevels(
		[]decimal.Decimal{s.hard, s.medium, s.soft},
		[]decimal.Decimal{o.hard, o.medium, o.soft},
	)
}

func (s HardMediumSoftDecimalScore) IsZero() bool {
	return s.initScore == 0 && s.hard.IsZero() && s.medium.IsZero() && s.soft.IsZero()
}

func (s HardMediumSoftDecimalScore) IsFeasible() bool {
	return s.initScore >= 0 && !s.hard.IsNegative()
}

func (s HardMediumSoftDecimalScore) LevelNumbers() []any {
	return []any{s.hard, s.medium, s.soft}
}

func (s HardMediumSoftDecimalScore) String() string {
	return initPrefix(s.initScore) + s.hard.String() + "hard/" + s.medium.String() + "medium/" +
		s.soft.String() + "soft"
}
