package scoreholder

import (
	"github.com/gitrdm/gokanscore/pkg/constraint"
	"github.com/gitrdm/gokanscore/pkg/score"
	"github.com/gitrdm/gokanscore/pkg/scoreerr"
	"github.com/shopspring/decimal"
)

// BendableHolder accumulates a bendable int or long score with the level
// counts of its definition.
type BendableHolder[N score.Number] struct {
	integral[N]
	hard []N
	soft []N
}

// NewBendableHolder returns a holder for the bendable or bendable_long
// definition matching N.
func NewBendableHolder[N score.Number](def *score.Definition, constraintMatchEnabled bool) (*BendableHolder[N], error) {
	h := &BendableHolder[N]{}
	if err := h.setup(def, constraintMatchEnabled, score.TypeBendable, score.TypeBendableLong); err != nil {
		return nil, err
	}
	h.hard = make([]N, def.HardLevelsSize())
	h.soft = make([]N, def.SoftLevelsSize())
	return h, nil
}

func (h *BendableHolder[N]) ConfigureConstraintWeight(id constraint.ID, weight score.Score) error {
	if w, ok := weight.(score.BendableScoreOf[N]); ok {
		if err := checkBendableWeight(id, h.def, w.HardLevelsSize(), w.SoftLevelsSize()); err != nil {
			return err
		}
	}
	if err := h.StoreConstraintWeight(id, weight); err != nil {
		return err
	}
	w := weight.(score.BendableScoreOf[N])
	hardWeights, softWeights := w.HardScores(), w.SoftScores()
	level, hardLevel, nonZero := singleLevel(len(hardWeights), len(softWeights), func(i int) bool {
		if i < len(hardWeights) {
			return hardWeights[i] != 0
		}
		return softWeights[i-len(hardWeights)] != 0
	})
	switch {
	case nonZero == 0:
		h.executors[id] = skip[N]
	case nonZero == 1 && hardLevel:
		lw := hardWeights[level]
		h.executors[id] = func(a Activation, m N) (Undo, error) { return h.AddHardConstraintMatch(a, level, lw*m) }
	case nonZero == 1:
		softLevel := level - len(hardWeights)
		lw := softWeights[softLevel]
		h.executors[id] = func(a Activation, m N) (Undo, error) { return h.AddSoftConstraintMatch(a, softLevel, lw*m) }
	default:
		h.executors[id] = func(a Activation, m N) (Undo, error) {
			hard := make([]N, len(hardWeights))
			for i, hw := range hardWeights {
				hard[i] = hw * m
			}
			soft := make([]N, len(softWeights))
			for i, sw := range softWeights {
				soft[i] = sw * m
			}
			return h.AddMultiConstraintMatch(a, hard, soft)
		}
	}
	return nil
}

// AddHardConstraintMatch adds delta to hard level hardLevel.
func (h *BendableHolder[N]) AddHardConstraintMatch(a Activation, hardLevel int, delta N) (Undo, error) {
	if hardLevel < 0 || hardLevel >= len(h.hard) {
		return nil, scoreerr.InvalidArgument("hard level (%d) is out of range for %d hard levels", hardLevel, len(h.hard))
	}
	h.hard[hardLevel] += delta
	return h.RegisterConstraintMatch(a,
		func() { h.hard[hardLevel] -= delta },
		func() score.Score {
			s := score.ZeroBendableScore[N](len(h.hard), len(h.soft))
			hard := s.HardScores()
			hard[hardLevel] = delta
			return score.NewBendableScore(0, hard, s.SoftScores())
		})
}

// AddSoftConstraintMatch adds delta to soft level softLevel.
func (h *BendableHolder[N]) AddSoftConstraintMatch(a Activation, softLevel int, delta N) (Undo, error) {
	if softLevel < 0 || softLevel >= len(h.soft) {
		return nil, scoreerr.InvalidArgument("soft level (%d) is out of range for %d soft levels", softLevel, len(h.soft))
	}
	h.soft[softLevel] += delta
	return h.RegisterConstraintMatch(a,
		func() { h.soft[softLevel] -= delta },
		func() score.Score {
			soft := make([]N, len(h.soft))
			soft[softLevel] = delta
			return score.NewBendableScore(0, make([]N, len(h.hard)), soft)
		})
}

// AddMultiConstraintMatch adds the deltas level by level. Both slices must
// have the configured lengths; on a mismatch nothing is changed.
func (h *BendableHolder[N]) AddMultiConstraintMatch(a Activation, hardDeltas, softDeltas []N) (Undo, error) {
	if err := checkDeltaLengths(len(h.hard), len(h.soft), len(hardDeltas), len(softDeltas)); err != nil {
		return nil, err
	}
	hard := append([]N(nil), hardDeltas...)
	soft := append([]N(nil), softDeltas...)
	for i, d := range hard {
		h.hard[i] += d
	}
	for i, d := range soft {
		h.soft[i] += d
	}
	return h.RegisterConstraintMatch(a,
		func() {
			for i, d := range hard {
				h.hard[i] -= d
			}
			for i, d := range soft {
				h.soft[i] -= d
			}
		},
		func() score.Score { return score.NewBendableScore(0, hard, soft) })
}

func (h *BendableHolder[N]) ExtractScore(initScore int) score.Score {
	return score.NewBendableScore(initScore, h.hard, h.soft)
}

// BendableDecimalHolder accumulates a bendable decimal score.
type BendableDecimalHolder struct {
	fractional
	hard []decimal.Decimal
	soft []decimal.Decimal
}

// NewBendableDecimalHolder returns a holder for the bendable_decimal definition.
func NewBendableDecimalHolder(def *score.Definition, constraintMatchEnabled bool) (*BendableDecimalHolder, error) {
	h := &BendableDecimalHolder{}
	if err := h.setup(def, constraintMatchEnabled, score.TypeBendableDecimal); err != nil {
		return nil, err
	}
	zero := score.ZeroBendableDecimalScore(def.HardLevelsSize(), def.SoftLevelsSize())
	h.hard, h.soft = zero.HardScores(), zero.SoftScores()
	return h, nil
}

func (h *BendableDecimalHolder) ConfigureConstraintWeight(id constraint.ID, weight score.Score) error {
	if w, ok := weight.(score.BendableDecimalScore); ok {
		if err := checkBendableWeight(id, h.def, w.HardLevelsSize(), w.SoftLevelsSize()); err != nil {
			return err
		}
	}
	if err := h.StoreConstraintWeight(id, weight); err != nil {
		return err
	}
	w := weight.(score.BendableDecimalScore)
	hardWeights, softWeights := w.HardScores(), w.SoftScores()
	level, hardLevel, nonZero := singleLevel(len(hardWeights), len(softWeights), func(i int) bool {
		if i < len(hardWeights) {
			return !hardWeights[i].IsZero()
		}
		return !softWeights[i-len(hardWeights)].IsZero()
	})
	switch {
	case nonZero == 0:
		h.executors[id] = skip[decimal.Decimal]
	case nonZero == 1 && hardLevel:
		lw := hardWeights[level]
		h.executors[id] = func(a Activation, m decimal.Decimal) (Undo, error) {
			return h.AddHardConstraintMatch(a, level, lw.Mul(m))
		}
	case nonZero == 1:
		softLevel := level - len(hardWeights)
		lw := softWeights[softLevel]
		h.executors[id] = func(a Activation, m decimal.Decimal) (Undo, error) {
			return h.AddSoftConstraintMatch(a, softLevel, lw.Mul(m))
		}
	default:
		h.executors[id] = func(a Activation, m decimal.Decimal) (Undo, error) {
			hard := make([]decimal.Decimal, len(hardWeights))
			for i, hw := range hardWeights {
				hard[i] = hw.Mul(m)
			}
			soft := make([]decimal.Decimal, len(softWeights))
			for i, sw := range softWeights {
				soft[i] = sw.Mul(m)
			}
			return h.AddMultiConstraintMatch(a, hard, soft)
		}
	}
	return nil
}

// AddHardConstraintMatch adds delta to hard level hardLevel.
func (h *BendableDecimalHolder) AddHardConstraintMatch(a Activation, hardLevel int, delta decimal.Decimal) (Undo, error) {
	if hardLevel < 0 || hardLevel >= len(h.hard) {
		return nil, scoreerr.InvalidArgument("hard level (%d) is out of range for %d hard levels", hardLevel, len(h.hard))
	}
	h.hard[hardLevel] = h.hard[hardLevel].Add(delta)
	return h.RegisterConstraintMatch(a,
		func() { h.hard[hardLevel] = h.hard[hardLevel].Sub(delta) },
		func() score.Score {
			zero := score.ZeroBendableDecimalScore(len(h.hard), len(h.soft))
			hard := zero.HardScores()
			hard[hardLevel] = delta
			return score.NewBendableDecimalScore(0, hard, zero.SoftScores())
		})
}

// AddSoftConstraintMatch adds delta to soft level softLevel.
func (h *BendableDecimalHolder) AddSoftConstraintMatch(a Activation, softLevel int, delta decimal.Decimal) (Undo, error) {
	if softLevel < 0 || softLevel >= len(h.soft) {
		return nil, scoreerr.InvalidArgument("soft level (%d) is out of range for %d soft levels", softLevel, len(h.soft))
	}
	h.soft[softLevel] = h.soft[softLevel].Add(delta)
	return h.RegisterConstraintMatch(a,
		func() { h.soft[softLevel] = h.soft[softLevel].Sub(delta) },
		func() score.Score {
			zero := score.ZeroBendableDecimalScore(len(h.hard), len(h.soft))
			soft := zero.SoftScores()
			soft[softLevel] = delta
			return score.NewBendableDecimalScore(0, zero.HardScores(), soft)
		})
}

// AddMultiConstraintMatch adds the deltas level by level. Both slices must
// have the configured lengths; on a mismatch nothing is changed.
func (h *BendableDecimalHolder) AddMultiConstraintMatch(a Activation, hardDeltas, softDeltas []decimal.Decimal) (Undo, error) {
	if err := checkDeltaLengths(len(h.hard), len(h.soft), len(hardDeltas), len(softDeltas)); err != nil {
		return nil, err
	}
	hard := append([]decimal.Decimal(nil), hardDeltas...)
	soft := append([]decimal.Decimal(nil), softDeltas...)
	for i, d := range hard {
		h.hard[i] = h.hard[i].Add(d)
	}
	for i, d := range soft {
		h.soft[i] = h.soft[i].Add(d)
	}
	return h.RegisterConstraintMatch(a,
		func() {
			for i, d := range hard {
				h.hard[i] = h.hard[i].Sub(d)
			}
			for i, d := range soft {
				h.soft[i] = h.soft[i].Sub(d)
			}
		},
		func() score.Score { return score.NewBendableDecimalScore(0, hard, soft) })
}

func (h *BendableDecimalHolder) ExtractScore(initScore int) score.Score {
	return score.NewBendableDecimalScore(initScore, h.hard, h.soft)
}

// singleLevel scans levels 0..hard+soft-1 and returns the last non-zero
// level, whether it is a hard level, and how many levels are non-zero.
func singleLevel(hardLevels, softLevels int, nonZero func(level int) bool) (level int, hard bool, count int) {
	level = -1
	for i := range hardLevels + softLevels {
		if nonZero(i) {
			level = i
			count++
		}
	}
	return level, level >= 0 && level < hardLevels, count
}

func checkBendableWeight(id constraint.ID, def *score.Definition, hardLevels, softLevels int) error {
	if hardLevels != def.HardLevelsSize() || softLevels != def.SoftLevelsSize() {
		return scoreerr.InvalidArgument(
			"constraint (%s) weight has %d hard and %d soft levels but the score has %d hard and %d soft levels",
			id, hardLevels, softLevels, def.HardLevelsSize(), def.SoftLevelsSize())
	}
	return nil
}

func checkDeltaLengths(hardLevels, softLevels, hardLen, softLen int) error {
	if hardLen != hardLevels {
		return scoreerr.InvalidArgument("hard scores length (%d) differs from hard levels size (%d)", hardLen, hardLevels)
	}
	if softLen != softLevels {
		return scoreerr.InvalidArgument("soft scores length (%d) differs from soft levels size (%d)", softLen, softLevels)
	}
	return nil
}
