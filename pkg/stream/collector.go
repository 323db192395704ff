package stream

import (
	"cmp"

	"github.com/gitrdm/gokanscore/internal/ordered"
	"github.com/shopspring/decimal"
)

// Collector aggregates the tuples of one group. Supply creates the mutable
// container of a new group, Accumulate adds one tuple and returns the undo
// that removes it again, and Finish reads the current result. Backends call
// the undo exactly once, when the tuple leaves the group or changes.
//
// Stream steps are shared by identity, so collectors are pointer types.
type Collector interface {
	Supply() any
	Accumulate(container any, facts []any) func()
	Finish(container any) any
}

type mapped interface {
	mapping() *Mapping
}

// countCollector counts tuples, or the distinct values of distinct when it
// is set.
type countCollector struct {
	distinct *Mapping
}

// Count counts the tuples of the group. The result is an int.
func Count() Collector { return &countCollector{} }

// CountDistinct counts the distinct values of m. The result is an int.
func CountDistinct(m *Mapping) Collector { return &countCollector{distinct: m} }

func (c *countCollector) mapping() *Mapping { return c.distinct }

func (c *countCollector) Supply() any {
	if c.distinct != nil {
		return newCounted()
	}
	return new(int)
}

func (c *countCollector) Accumulate(container any, facts []any) func() {
	if c.distinct != nil {
		return container.(*counted).add(c.distinct.Apply(facts))
	}
	n := container.(*int)
	*n++
	return func() { *n-- }
}

func (c *countCollector) Finish(container any) any {
	if c.distinct != nil {
		return container.(*counted).counts.Len()
	}
	return *container.(*int)
}

// counted is a multiset of values in first-insertion order.
type counted struct {
	counts *ordered.Map[any, int]
}

func newCounted() *counted { return &counted{counts: ordered.NewMap[any, int]()} }

func (c *counted) add(v any) func() {
	n, _ := c.counts.Get(v)
	c.counts.Put(v, n+1)
	return func() {
		n, _ := c.counts.Get(v)
		if n == 1 {
			c.counts.Delete(v)
			return
		}
		c.counts.Put(v, n-1)
	}
}

type sumCollector[N int | int64] struct{ m *Mapping }

// Sum sums the int values of m.
func Sum(m *Mapping) Collector { return &sumCollector[int]{m: m} }

// SumLong sums the int64 values of m.
func SumLong(m *Mapping) Collector { return &sumCollector[int64]{m: m} }

func (c *sumCollector[N]) mapping() *Mapping { return c.m }
func (c *sumCollector[N]) Supply() any       { return new(N) }

func (c *sumCollector[N]) Accumulate(container any, facts []any) func() {
	sum := container.(*N)
	v := c.m.Apply(facts).(N)
	*sum += v
	return func() { *sum -= v }
}

func (c *sumCollector[N]) Finish(container any) any { return *container.(*N) }

type sumDecimalCollector struct{ m *Mapping }

// SumDecimal sums the decimal.Decimal values of m.
func SumDecimal(m *Mapping) Collector { return &sumDecimalCollector{m: m} }

func (c *sumDecimalCollector) mapping() *Mapping { return c.m }

func (c *sumDecimalCollector) Supply() any {
	d := decimal.Zero
	return &d
}

func (c *sumDecimalCollector) Accumulate(container any, facts []any) func() {
	sum := container.(*decimal.Decimal)
	v := c.m.Apply(facts).(decimal.Decimal)
	*sum = sum.Add(v)
	return func() { *sum = sum.Sub(v) }
}

func (c *sumDecimalCollector) Finish(container any) any { return *container.(*decimal.Decimal) }

type extremeCollector[K cmp.Ordered] struct {
	m   *Mapping
	max bool
}

// Min returns the smallest value of m, or nil for an empty group.
func Min[K cmp.Ordered](m *Mapping) Collector { return &extremeCollector[K]{m: m} }

// Max returns the largest value of m, or nil for an empty group.
func Max[K cmp.Ordered](m *Mapping) Collector { return &extremeCollector[K]{m: m, max: true} }

func (c *extremeCollector[K]) mapping() *Mapping { return c.m }
func (c *extremeCollector[K]) Supply() any       { return newCounted() }

func (c *extremeCollector[K]) Accumulate(container any, facts []any) func() {
	return container.(*counted).add(c.m.Apply(facts))
}

func (c *extremeCollector[K]) Finish(container any) any {
	var best any
	for v := range container.(*counted).counts.All() {
		if best == nil {
			best = v
			continue
		}
		d := cmp.Compare(v.(K), best.(K))
		if (c.max && d > 0) || (!c.max && d < 0) {
			best = v
		}
	}
	return best
}

type listEntry struct{ v any }

type listCollector struct{ m *Mapping }

// ToList collects the values of m in insertion order. The result is []any.
func ToList(m *Mapping) Collector { return &listCollector{m: m} }

func (c *listCollector) mapping() *Mapping { return c.m }

func (c *listCollector) Supply() any { return ordered.NewMap[*listEntry, struct{}]() }

func (c *listCollector) Accumulate(container any, facts []any) func() {
	items := container.(*ordered.Map[*listEntry, struct{}])
	entry := &listEntry{v: c.m.Apply(facts)}
	items.Put(entry, struct{}{})
	return func() { items.Delete(entry) }
}

func (c *listCollector) Finish(container any) any {
	items := container.(*ordered.Map[*listEntry, struct{}])
	out := make([]any, 0, items.Len())
	for e := range items.All() {
		out = append(out, e.v)
	}
	return out
}

type setCollector struct{ m *Mapping }

// ToSet collects the distinct values of m in first-insertion order. The
// result is []any.
func ToSet(m *Mapping) Collector { return &setCollector{m: m} }

func (c *setCollector) mapping() *Mapping { return c.m }
func (c *setCollector) Supply() any       { return newCounted() }

func (c *setCollector) Accumulate(container any, facts []any) func() {
	return container.(*counted).add(c.m.Apply(facts))
}

func (c *setCollector) Finish(container any) any {
	return container.(*counted).counts.Keys()
}
