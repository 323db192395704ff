package rulecompiler

import (
	"fmt"
	"testing"

	"github.com/gitrdm/gokanscore/internal/testdata"
	"github.com/gitrdm/gokanscore/pkg/bavet"
	"github.com/gitrdm/gokanscore/pkg/score"
	"github.com/gitrdm/gokanscore/pkg/scoreholder"
	"github.com/gitrdm/gokanscore/pkg/stream"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type numberKind int

const (
	numInt numberKind = iota
	numLong
	numDecimal
)

func (k numberKind) entityWeigher(f func(*testdata.Entity) int) *stream.Weigher {
	switch k {
	case numLong:
		return stream.UniWeigher(func(e *testdata.Entity) int64 { return int64(f(e)) })
	case numDecimal:
		return stream.UniWeigher(func(e *testdata.Entity) decimal.Decimal { return decimal.NewFromInt(int64(f(e))) })
	default:
		return stream.UniWeigher(f)
	}
}

func (k numberKind) groupWeigher(f func(*testdata.Value, int) int) *stream.Weigher {
	switch k {
	case numLong:
		return stream.BiWeigher(func(v *testdata.Value, n int) int64 { return int64(f(v, n)) })
	case numDecimal:
		return stream.BiWeigher(func(v *testdata.Value, n int) decimal.Decimal { return decimal.NewFromInt(int64(f(v, n))) })
	default:
		return stream.BiWeigher(f)
	}
}

func dec(n int) decimal.Decimal { return decimal.NewFromInt(int64(n)) }

// holderKind maps three logical levels onto a score type. Simple types fold
// them into one number, hard/soft types fold medium into soft and the
// bendable types use one hard and two soft levels.
type holderKind struct {
	name     string
	typ      score.Type
	bendable bool
	number   numberKind
	of       func(hard, medium, soft int) score.Score
}

var holderKinds = []holderKind{
	{name: "simple", typ: score.TypeSimple, number: numInt,
		of: func(h, m, s int) score.Score { return score.OfSimple(100*h + 10*m + s) }},
	{name: "simple long", typ: score.TypeSimpleLong, number: numLong,
		of: func(h, m, s int) score.Score { return score.OfSimpleLong(int64(100*h + 10*m + s)) }},
	{name: "simple decimal", typ: score.TypeSimpleDecimal, number: numDecimal,
		of: func(h, m, s int) score.Score { return score.OfSimpleDecimal(dec(100*h + 10*m + s)) }},
	{name: "hard soft", typ: score.TypeHardSoft, number: numInt,
		of: func(h, m, s int) score.Score { return score.OfHardSoft(h, m+s) }},
	{name: "hard soft long", typ: score.TypeHardSoftLong, number: numLong,
		of: func(h, m, s int) score.Score { return score.OfHardSoftLong(int64(h), int64(m+s)) }},
	{name: "hard soft decimal", typ: score.TypeHardSoftDecimal, number: numDecimal,
		of: func(h, m, s int) score.Score { return score.OfHardSoftDecimal(dec(h), dec(m+s)) }},
	{name: "hard medium soft", typ: score.TypeHardMediumSoft, number: numInt,
		of: func(h, m, s int) score.Score { return score.OfHardMediumSoft(h, m, s) }},
	{name: "hard medium soft long", typ: score.TypeHardMediumSoftLong, number: numLong,
		of: func(h, m, s int) score.Score { return score.OfHardMediumSoftLong(int64(h), int64(m), int64(s)) }},
	{name: "hard medium soft decimal", typ: score.TypeHardMediumSoftDecimal, number: numDecimal,
		of: func(h, m, s int) score.Score { return score.OfHardMediumSoftDecimal(dec(h), dec(m), dec(s)) }},
	{name: "bendable", typ: score.TypeBendable, bendable: true, number: numInt,
		of: func(h, m, s int) score.Score { return score.OfBendable([]int{h}, []int{m, s}) }},
	{name: "bendable long", typ: score.TypeBendableLong, bendable: true, number: numLong,
		of: func(h, m, s int) score.Score {
			return score.OfBendableLong([]int64{int64(h)}, []int64{int64(m), int64(s)})
		}},
	{name: "bendable decimal", typ: score.TypeBendableDecimal, bendable: true, number: numDecimal,
		of: func(h, m, s int) score.Score {
			return score.OfBendableDecimal([]decimal.Decimal{dec(h)}, []decimal.Decimal{dec(m), dec(s)})
		}},
}

func (k holderKind) holder(t *testing.T, constraints []*stream.Constraint) scoreholder.Holder {
	t.Helper()
	def, err := score.NewDefinition(k.typ)
	if k.bendable {
		def, err = score.NewBendableDefinition(k.typ, 1, 2)
	}
	require.NoError(t, err)
	h, err := scoreholder.New(def, true, nil, "")
	require.NoError(t, err)
	for _, c := range constraints {
		require.NoError(t, c.Err())
		require.NoError(t, h.ConfigureConstraintWeight(c.ID(), c.Weight()))
	}
	return h
}

func (k holderKind) provider(f *stream.Factory) []*stream.Constraint {
	hard, medium, soft := k.of(1, 0, 0), k.of(0, 1, 0), k.of(0, 0, 1)
	grouped := stream.ForEachUniquePair(f, testdata.EntityCode, sameValue)
	inGroup := stream.ForEach[*testdata.Value](f).
		Filter(stream.UniPredicate(func(v *testdata.Value) bool { return v.Group != nil }))
	return []*stream.Constraint{
		grouped.Penalize("pair", hard),
		grouped.Join(inGroup, pairValue).Penalize("tri", hard),
		stream.ForEach[*testdata.Entity](f).
			GroupBy([]*stream.Mapping{stream.UniKey(testdata.EntityValue)}, stream.Count()).
			PenalizeBy("crowded", medium, k.number.groupWeigher(func(_ *testdata.Value, n int) int { return n * n })),
		stream.ForEach[*testdata.Value](f).
			IfNotExists(stream.ForEach[*testdata.Entity](f),
				stream.EqualOn(func(v *testdata.Value) *testdata.Value { return v }, testdata.EntityValue)).
			Penalize("unused value", medium),
		stream.ForEach[*testdata.Entity](f).
			RewardBy("property", soft, k.number.entityWeigher(func(e *testdata.Entity) int { return e.IntegerProperty })),
	}
}

// rendered is a session's score state as text, so decimal levels compare by
// value rather than by representation.
type rendered struct {
	score       string
	totals      map[string]string
	indictments map[any]string
}

func render(t *testing.T, s backend, h scoreholder.Holder) rendered {
	t.Helper()
	r := rendered{score: calculate(t, s).String(), totals: map[string]string{}, indictments: map[any]string{}}
	totals, err := h.ConstraintMatchTotals()
	require.NoError(t, err)
	for id, mt := range totals {
		if mt.MatchCount() > 0 {
			r.totals[id.Name] = fmt.Sprintf("%s x%d", mt.Score(), mt.MatchCount())
		}
	}
	indictments, err := h.Indictments()
	require.NoError(t, err)
	for j, ind := range indictments {
		r.indictments[j] = fmt.Sprintf("%s x%d", ind.Score(), ind.MatchCount())
	}
	return r
}

func matchCounts(t *testing.T, h scoreholder.Holder) map[string]int {
	t.Helper()
	totals, err := h.ConstraintMatchTotals()
	require.NoError(t, err)
	counts := map[string]int{}
	for id, mt := range totals {
		if mt.MatchCount() > 0 {
			counts[id.Name] = mt.MatchCount()
		}
	}
	return counts
}

type engine struct {
	name string
	s    backend
	h    scoreholder.Holder
}

func engines(t *testing.T, k holderKind) []engine {
	t.Helper()
	constraints := k.provider(stream.NewFactory("test"))
	bh := k.holder(t, constraints)
	b, err := bavet.NewSession(constraints, bh)
	require.NoError(t, err)
	rh := k.holder(t, constraints)
	rb, err := Compile(constraints)
	require.NoError(t, err)
	r, err := rb.NewSession(rh)
	require.NoError(t, err)
	return []engine{{"bavet", b, bh}, {"rete", r, rh}}
}

func TestHolderKindsUnderBatchedChanges(t *testing.T) {
	for _, k := range holderKinds {
		t.Run(k.name, func(t *testing.T) {
			sol := lavishTri()
			live := engines(t, k)
			for _, e := range live {
				insertAll(t, e.s, sol.Facts())
				assert.Equal(t, k.of(-4, -9, 5).String(), calculate(t, e.s).String(), e.name)
				assert.Equal(t, map[string]int{"pair": 2, "tri": 2, "crowded": 3, "property": 5},
					matchCounts(t, e.h), e.name)
			}

			v1, e2, e3 := sol.Values[1], sol.Entities[2], sol.Entities[3]
			v3 := &testdata.Value{Code: "Value 3", Group: sol.ValueGroups[0]}
			e5 := &testdata.Entity{Code: "Entity 5", Group: sol.EntityGroups[0], Value: sol.Values[0], IntegerProperty: 1}
			each := func(op func(s backend) error) {
				t.Helper()
				for _, e := range live {
					require.NoError(t, op(e.s), e.name)
				}
			}
			each(func(s backend) error { return s.Insert(v3) })
			each(func(s backend) error { return s.Insert(e5) })
			v1.Group = nil
			each(func(s backend) error { return s.Update(v1) })
			e2.Value = v3
			each(func(s backend) error { return s.Update(e2) })
			each(func(s backend) error { return s.Retract(e3) })

			for _, e := range live {
				assert.Equal(t, k.of(-3, -10, 5).String(), calculate(t, e.s).String(), e.name)
				assert.Equal(t, map[string]int{"pair": 2, "tri": 1, "crowded": 3, "unused value": 1, "property": 5},
					matchCounts(t, e.h), e.name)

				totals, err := e.h.ConstraintMatchTotals()
				require.NoError(t, err)
				for id, mt := range totals {
					if id.Name == "crowded" {
						assert.Equal(t, k.of(0, -9, 0).String(), mt.Score().String(), e.name)
					}
				}

				indictments, err := e.h.Indictments()
				require.NoError(t, err)
				assert.NotContains(t, indictments, any(e3), "%s: a retracted entity is not indicted", e.name)
				require.Contains(t, indictments, any(sol.Values[2]), e.name)
				unused := indictments[sol.Values[2]]
				assert.Equal(t, k.of(0, -1, 0).String(), unused.Score().String(), e.name)
				assert.Equal(t, 1, unused.MatchCount(), e.name)
				require.Contains(t, indictments, any(e5), e.name)
				assert.Equal(t, k.of(-2, 0, 1).String(), indictments[e5].Score().String(), e.name)
				assert.Equal(t, 3, indictments[e5].MatchCount(), e.name)
			}

			want := render(t, live[0].s, live[0].h)
			assert.Equal(t, want, render(t, live[1].s, live[1].h), "the engines agree")

			facts := []any{sol.ValueGroups[0]}
			for _, v := range append(sol.Values, v3) {
				facts = append(facts, v)
			}
			facts = append(facts, sol.EntityGroups[0])
			for _, e := range []*testdata.Entity{sol.Entities[0], sol.Entities[1], e2, sol.Entities[4], e5} {
				facts = append(facts, e)
			}
			for _, e := range engines(t, k) {
				insertAll(t, e.s, facts)
				assert.Equal(t, want, render(t, e.s, e.h), "%s from scratch", e.name)
			}
		})
	}
}
