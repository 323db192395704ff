package score

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gitrdm/gokanscore/pkg/scoreerr"
	"github.com/shopspring/decimal"
)

// Type names a score shape and representation. The names are the values
// accepted by the session configuration.
type Type string

const (
	TypeSimple                Type = "simple"
	TypeSimpleLong            Type = "simple_long"
	TypeSimpleDecimal         Type = "simple_decimal"
	TypeHardSoft              Type = "hard_soft"
	TypeHardSoftLong          Type = "hard_soft_long"
	TypeHardSoftDecimal       Type = "hard_soft_decimal"
	TypeHardMediumSoft        Type = "hard_medium_soft"
	TypeHardMediumSoftLong    Type = "hard_medium_soft_long"
	TypeHardMediumSoftDecimal Type = "hard_medium_soft_decimal"
	TypeBendable              Type = "bendable"
	TypeBendableLong          Type = "bendable_long"
	TypeBendableDecimal       Type = "bendable_decimal"
)

// Types lists every built-in score type.
var Types = []Type{
	TypeSimple, TypeSimpleLong, TypeSimpleDecimal,
	TypeHardSoft, TypeHardSoftLong, TypeHardSoftDecimal,
	TypeHardMediumSoft, TypeHardMediumSoftLong, TypeHardMediumSoftDecimal,
	TypeBendable, TypeBendableLong, TypeBendableDecimal,
}

// IsBendable reports whether the type has configurable level counts.
func (t Type) IsBendable() bool {
	return t == TypeBendable || t == TypeBendableLong || t == TypeBendableDecimal
}

// Numeric returns the number representation of the type.
func (t Type) Numeric() Numeric {
	switch {
	case strings.HasSuffix(string(t), "_long"):
		return NumericLong
	case strings.HasSuffix(string(t), "_decimal"):
		return NumericDecimal
	default:
		return NumericInt
	}
}

func (t Type) known() bool {
	for _, k := range Types {
		if k == t {
			return true
		}
	}
	return false
}

// Definition describes a score type and its level layout. It is immutable.
type Definition struct {
	typ        Type
	hardLevels int
	softLevels int
}

// NewDefinition returns the definition of a fixed-level score type.
// Bendable types need NewBendableDefinition.
func NewDefinition(t Type) (*Definition, error) {
	if !t.known() {
		return nil, scoreerr.Unsupported("score type (%s) is not a built-in score type", t)
	}
	if t.IsBendable() {
		return nil, scoreerr.InvalidArgument("score type (%s) needs hard and soft level counts", t)
	}
	d := &Definition{typ: t}
	switch {
	case strings.HasPrefix(string(t), "simple"):
		d.softLevels = 1
	case strings.HasPrefix(string(t), "hard_medium_soft"):
		d.hardLevels, d.softLevels = 1, 2
	default:
		d.hardLevels, d.softLevels = 1, 1
	}
	return d, nil
}

// NewBendableDefinition returns the definition of a bendable score type with
// the given level counts.
func NewBendableDefinition(t Type, hardLevels, softLevels int) (*Definition, error) {
	if !t.IsBendable() {
		return nil, scoreerr.InvalidArgument("score type (%s) is not bendable", t)
	}
	if hardLevels < 0 || softLevels < 0 || hardLevels+softLevels < 1 {
		return nil, scoreerr.InvalidArgument(
			"bendable levels (%d hard, %d soft) must be non-negative with at least one level",
			hardLevels, softLevels)
	}
	return &Definition{typ: t, hardLevels: hardLevels, softLevels: softLevels}, nil
}

func (d *Definition) Type() Type { return d.typ }

// LevelsSize returns the total number of levels.
func (d *Definition) LevelsSize() int { return d.hardLevels + d.softLevels }

// HardLevelsSize returns the number of hard levels. A simple score has none.
func (d *Definition) HardLevelsSize() int { return d.hardLevels }

// SoftLevelsSize returns the number of non-hard levels. The medium level of
// a hard/medium/soft score counts as soft here.
func (d *Definition) SoftLevelsSize() int { return d.softLevels }

// ZeroScore returns the initialized zero score of this type.
func (d *Definition) ZeroScore() Score {
	switch d.typ {
	case TypeSimple:
		return OfSimple(0)
	case TypeSimpleLong:
		return OfSimpleLong(0)
	case TypeSimpleDecimal:
		return OfSimpleDecimal(decimal.Zero)
	case TypeHardSoft:
		return OfHardSoft(0, 0)
	case TypeHardSoftLong:
		return OfHardSoftLong(0, 0)
	case TypeHardSoftDecimal:
		return OfHardSoftDecimal(decimal.Zero, decimal.Zero)
	case TypeHardMediumSoft:
		return OfHardMediumSoft(0, 0, 0)
	case TypeHardMediumSoftLong:
		return OfHardMediumSoftLong(0, 0, 0)
	case TypeHardMediumSoftDecimal:
		return OfHardMediumSoftDecimal(decimal.Zero, decimal.Zero, decimal.Zero)
	case TypeBendable:
		return ZeroBendableScore[int](d.hardLevels, d.softLevels)
	case TypeBendableLong:
		return ZeroBendableScore[int64](d.hardLevels, d.softLevels)
	default:
		return ZeroBendableDecimalScore(d.hardLevels, d.softLevels)
	}
}

// IsCompatible reports whether s is of this definition's type and, for
// bendable scores, has the same level counts.
func (d *Definition) IsCompatible(s Score) bool {
	switch v := s.(type) {
	case SimpleScore:
		return d.typ == TypeSimple
	case SimpleLongScore:
		return d.typ == TypeSimpleLong
	case SimpleDecimalScore:
		return d.typ == TypeSimpleDecimal
	case HardSoftScore:
		return d.typ == TypeHardSoft
	case HardSoftLongScore:
		return d.typ == TypeHardSoftLong
	case HardSoftDecimalScore:
		return d.typ == TypeHardSoftDecimal
	case HardMediumSoftScore:
		return d.typ == TypeHardMediumSoft
	case HardMediumSoftLongScore:
		return d.typ == TypeHardMediumSoftLong
	case HardMediumSoftDecimalScore:
		return d.typ == TypeHardMediumSoftDecimal
	case BendableScore:
		return d.typ == TypeBendable && d.sameLevels(v.HardLevelsSize(), v.SoftLevelsSize())
	case BendableLongScore:
		return d.typ == TypeBendableLong && d.sameLevels(v.HardLevelsSize(), v.SoftLevelsSize())
	case BendableDecimalScore:
		return d.typ == TypeBendableDecimal && d.sameLevels(v.HardLevelsSize(), v.SoftLevelsSize())
	default:
		return false
	}
}

func (d *Definition) sameLevels(hard, soft int) bool {
	return d.hardLevels == hard && d.softLevels == soft
}

func (d *Definition) String() string {
	if d.typ.IsBendable() {
		return fmt.Sprintf("%s(%d hard, %d soft)", d.typ, d.hardLevels, d.softLevels)
	}
	return string(d.typ)
}

// Parse parses the String form of a score of this type.
func (d *Definition) Parse(text string) (Score, error) {
	s, err := d.parse(strings.TrimSpace(text))
	if err != nil {
		return nil, fmt.Errorf("score: parse %q as %s: %w", text, d, err)
	}
	return s, nil
}

func (d *Definition) parse(text string) (Score, error) {
	initScore, rest, err := splitInit(text)
	if err != nil {
		return nil, err
	}
	switch d.typ {
	case TypeSimple:
		return parseSimple[int](initScore, rest)
	case TypeSimpleLong:
		return parseSimple[int64](initScore, rest)
	case TypeSimpleDecimal:
		v, err := parseDecimal(rest)
		if err != nil {
			return nil, err
		}
		return NewSimpleDecimalScore(initScore, v), nil
	case TypeHardSoft:
		return parseHardSoft[int](initScore, rest)
	case TypeHardSoftLong:
		return parseHardSoft[int64](initScore, rest)
	case TypeHardSoftDecimal:
		v, err := parseDecimalLevels(rest, "hard", "soft")
		if err != nil {
			return nil, err
		}
		return NewHardSoftDecimalScore(initScore, v[0], v[1]), nil
	case TypeHardMediumSoft:
		return parseHardMediumSoft[int](initScore, rest)
	case TypeHardMediumSoftLong:
		return parseHardMediumSoft[int64](initScore, rest)
	case TypeHardMediumSoftDecimal:
		v, err := parseDecimalLevels(rest, "hard", "medium", "soft")
		if err != nil {
			return nil, err
		}
		return NewHardMediumSoftDecimalScore(initScore, v[0], v[1], v[2]), nil
	case TypeBendable:
		return parseBendable[int](initScore, rest, d.hardLevels, d.softLevels)
	case TypeBendableLong:
		return parseBendable[int64](initScore, rest, d.hardLevels, d.softLevels)
	default:
		hard, soft, err := splitBendable(rest, d.hardLevels, d.softLevels)
		if err != nil {
			return nil, err
		}
		h, err := mapErr(hard, parseDecimal)
		if err != nil {
			return nil, err
		}
		s, err := mapErr(soft, parseDecimal)
		if err != nil {
			return nil, err
		}
		return NewBendableDecimalScore(initScore, h, s), nil
	}
}

func splitInit(text string) (int, string, error) {
	idx := strings.Index(text, "init/")
	if idx < 0 {
		return 0, text, nil
	}
	initScore, err := strconv.Atoi(text[:idx])
	if err != nil {
		return 0, "", fmt.Errorf("init score: %w", err)
	}
	return initScore, text[idx+len("init/"):], nil
}

// splitLevels splits "<a>hard/<b>soft" style text into the level numbers.
func splitLevels(text string, suffixes ...string) ([]string, error) {
	parts := strings.Split(text, "/")
	if len(parts) != len(suffixes) {
		return nil, fmt.Errorf("expected %d levels, got %d", len(suffixes), len(parts))
	}
	for i, suffix := range suffixes {
		if !strings.HasSuffix(parts[i], suffix) {
			return nil, fmt.Errorf("level %d (%s) lacks suffix %q", i, parts[i], suffix)
		}
		parts[i] = strings.TrimSuffix(parts[i], suffix)
	}
	return parts, nil
}

func splitBendable(text string, hardLevels, softLevels int) ([]string, []string, error) {
	hardPart, softPart, ok := strings.Cut(text, "]hard/[")
	if !ok || !strings.HasPrefix(hardPart, "[") || !strings.HasSuffix(softPart, "]soft") {
		return nil, nil, fmt.Errorf("expected [..]hard/[..]soft")
	}
	hard := splitList(strings.TrimPrefix(hardPart, "["))
	soft := splitList(strings.TrimSuffix(softPart, "]soft"))
	if len(hard) != hardLevels || len(soft) != softLevels {
		return nil, nil, fmt.Errorf("expected %d hard and %d soft levels, got %d and %d",
			hardLevels, softLevels, len(hard), len(soft))
	}
	return hard, soft, nil
}

func splitList(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, "/")
}

func parseN[N Number](text string) (N, error) {
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, err
	}
	return N(v), nil
}

func parseDecimal(text string) (decimal.Decimal, error) {
	return decimal.NewFromString(text)
}

func mapErr[T any](in []string, f func(string) (T, error)) ([]T, error) {
	out := make([]T, len(in))
	for i, s := range in {
		v, err := f(s)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func parseSimple[N Number](initScore int, text string) (Score, error) {
	v, err := parseN[N](text)
	if err != nil {
		return nil, err
	}
	return NewSimpleScore(initScore, v), nil
}

func parseHardSoft[N Number](initScore int, text string) (Score, error) {
	parts, err := splitLevels(text, "hard", "soft")
	if err != nil {
		return nil, err
	}
	v, err := mapErr(parts, parseN[N])
	if err != nil {
		return nil, err
	}
	return NewHardSoftScore(initScore, v[0], v[1]), nil
}

func parseHardMediumSoft[N Number](initScore int, text string) (Score, error) {
	parts, err := splitLevels(text, "hard", "medium", "soft")
	if err != nil {
		return nil, err
	}
	v, err := mapErr(parts, parseN[N])
	if err != nil {
		return nil, err
	}
	return NewHardMediumSoftScore(initScore, v[0], v[1], v[2]), nil
}

func parseBendable[N Number](initScore int, text string, hardLevels, softLevels int) (Score, error) {
	hard, soft, err := splitBendable(text, hardLevels, softLevels)
	if err != nil {
		return nil, err
	}
	h, err := mapErr(hard, parseN[N])
	if err != nil {
		return nil, err
	}
	s, err := mapErr(soft, parseN[N])
	if err != nil {
		return nil, err
	}
	return NewBendableScore(initScore, h, s), nil
}

func parseDecimalLevels(text string, suffixes ...string) ([]decimal.Decimal, error) {
	parts, err := splitLevels(text, suffixes...)
	if err != nil {
		return nil, err
	}
	return mapErr(parts, parseDecimal)
}
