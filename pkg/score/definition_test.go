package score

import (
	"testing"

	"github.com/gitrdm/gokanscore/pkg/scoreerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefinitionLevels(t *testing.T) {
	tests := []struct {
		typ        Type
		hard, soft int
		numeric    Numeric
	}{
		{TypeSimple, 0, 1, NumericInt},
		{TypeSimpleLong, 0, 1, NumericLong},
		{TypeHardSoftDecimal, 1, 1, NumericDecimal},
		{TypeHardMediumSoft, 1, 2, NumericInt},
		{TypeHardMediumSoftLong, 1, 2, NumericLong},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			d, err := NewDefinition(tt.typ)
			require.NoError(t, err)
			assert.Equal(t, tt.hard, d.HardLevelsSize())
			assert.Equal(t, tt.soft, d.SoftLevelsSize())
			assert.Equal(t, tt.hard+tt.soft, d.LevelsSize())
			assert.Equal(t, tt.numeric, d.Type().Numeric())
			assert.True(t, d.ZeroScore().IsZero())
			assert.True(t, d.IsCompatible(d.ZeroScore()))
		})
	}
}

func TestNewDefinitionErrors(t *testing.T) {
	_, err := NewDefinition("fuzzy")
	assert.ErrorIs(t, err, scoreerr.ErrUnsupported)

	_, err = NewDefinition(TypeBendable)
	assert.ErrorIs(t, err, scoreerr.ErrInvalidArgument)

	_, err = NewBendableDefinition(TypeHardSoft, 1, 1)
	assert.ErrorIs(t, err, scoreerr.ErrInvalidArgument)

	_, err = NewBendableDefinition(TypeBendable, 0, 0)
	assert.ErrorIs(t, err, scoreerr.ErrInvalidArgument)

	_, err = NewBendableDefinition(TypeBendableLong, -1, 2)
	assert.ErrorIs(t, err, scoreerr.ErrInvalidArgument)
}

func TestParseRoundTrip(t *testing.T) {
	bendable, err := NewBendableDefinition(TypeBendable, 2, 1)
	require.NoError(t, err)
	bendableDecimal, err := NewBendableDefinition(TypeBendableDecimal, 1, 2)
	require.NoError(t, err)

	tests := []struct {
		typ  Type
		def  *Definition
		text string
	}{
		{TypeSimple, nil, "-7"},
		{TypeSimple, nil, "-3init/-7"},
		{TypeSimpleLong, nil, "123456789012"},
		{TypeSimpleDecimal, nil, "-1.5"},
		{TypeHardSoft, nil, "-1hard/-2soft"},
		{TypeHardSoftLong, nil, "-2init/0hard/10soft"},
		{TypeHardSoftDecimal, nil, "0.5hard/-2.25soft"},
		{TypeHardMediumSoft, nil, "-1hard/-2medium/-3soft"},
		{TypeHardMediumSoftDecimal, nil, "1hard/2.5medium/-3soft"},
		{TypeBendable, bendable, "[0/-1]hard/[-2]soft"},
		{TypeBendableDecimal, bendableDecimal, "[1.5]hard/[0/-2]soft"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			d := tt.def
			if d == nil {
				var err error
				d, err = NewDefinition(tt.typ)
				require.NoError(t, err)
			}
			s, err := d.Parse(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.text, s.String())
			assert.True(t, d.IsCompatible(s))
		})
	}
}

func TestParseRejectsMalformedText(t *testing.T) {
	hardSoft, err := NewDefinition(TypeHardSoft)
	require.NoError(t, err)
	bendable, err := NewBendableDefinition(TypeBendable, 2, 1)
	require.NoError(t, err)

	for _, text := range []string{"-1", "-1hard", "-1soft/-2hard", "xhard/1soft", "ainit/1hard/1soft"} {
		_, err := hardSoft.Parse(text)
		assert.Error(t, err, text)
	}
	_, err = bendable.Parse("[0]hard/[-2]soft")
	assert.Error(t, err, "level count must match the definition")
}

func TestIsCompatibleChecksBendableShape(t *testing.T) {
	d, err := NewBendableDefinition(TypeBendable, 2, 1)
	require.NoError(t, err)

	assert.True(t, d.IsCompatible(OfBendable([]int{1, 2}, []int{3})))
	assert.False(t, d.IsCompatible(OfBendable([]int{1}, []int{3})))
	assert.False(t, d.IsCompatible(OfBendableLong([]int64{1, 2}, []int64{3})))
	assert.False(t, d.IsCompatible(OfSimple(1)))
}
