// Package index implements the nested key indexes behind join and existence
// lookups.
//
// An Index stores items under a key vector with one component per indexing
// joiner. Each component is matched at its own level: equality levels are
// hash lookups, comparison levels keep their keys in a B-tree and answer
// range queries by walking only the matching span. A lookup therefore
// touches only the buckets whose keys can match, never the whole population.
//
// Within a bucket items keep insertion order, and comparison levels visit
// their buckets in key order, so enumeration is deterministic.
package index

import (
	"fmt"

	"github.com/gitrdm/gokanscore/internal/ordered"
	"github.com/google/btree"
)

// degree is the B-tree degree of comparison levels.
const degree = 16

// Op is the relation a level enforces between a stored key and a query key:
// an item matches when "stored Op query" holds.
type Op int

const (
	Equal Op = iota
	LessThan
	LessThanOrEqual
	GreaterThan
	GreaterThanOrEqual
)

// Flip returns the relation with its operands swapped, so that
// "a Op b" equals "b Op.Flip() a".
func (o Op) Flip() Op {
	switch o {
	case LessThan:
		return GreaterThan
	case LessThanOrEqual:
		return GreaterThanOrEqual
	case GreaterThan:
		return LessThan
	case GreaterThanOrEqual:
		return LessThanOrEqual
	default:
		return o
	}
}

func (o Op) String() string {
	switch o {
	case Equal:
		return "=="
	case LessThan:
		return "<"
	case LessThanOrEqual:
		return "<="
	case GreaterThan:
		return ">"
	case GreaterThanOrEqual:
		return ">="
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// Holds reports whether "c Op 0" holds for a three-way comparison result c.
func (o Op) Holds(c int) bool {
	switch o {
	case Equal:
		return c == 0
	case LessThan:
		return c < 0
	case LessThanOrEqual:
		return c <= 0
	case GreaterThan:
		return c > 0
	default:
		return c >= 0
	}
}

// Level describes one key component. Compare is required for every Op
// except Equal, whose keys must be comparable with ==.
type Level struct {
	Op      Op
	Compare func(a, b any) int
}

// Index maps key vectors to insertion-ordered item sets.
type Index[T comparable] struct {
	levels []Level
	root   *bucket[T]
	size   int
}

type bucket[T comparable] struct {
	items  *ordered.Set[T]
	equal  *ordered.Map[any, *bucket[T]]
	sorted *btree.BTreeG[*sortedEntry[T]]
}

type sortedEntry[T comparable] struct {
	key   any
	child *bucket[T]
}

// New returns an empty index with the given levels. An index without
// levels is a single ordered set.
func New[T comparable](levels ...Level) *Index[T] {
	for i, l := range levels {
		if l.Op != Equal && l.Compare == nil {
			panic(fmt.Sprintf("index: level %d (%s) needs a compare function", i, l.Op))
		}
	}
	x := &Index[T]{levels: levels}
	x.root = x.newBucket(0)
	return x
}

func (x *Index[T]) newBucket(depth int) *bucket[T] {
	switch {
	case depth == len(x.levels):
		return &bucket[T]{items: ordered.NewSet[T]()}
	case x.levels[depth].Op == Equal:
		return &bucket[T]{equal: ordered.NewMap[any, *bucket[T]]()}
	default:
		compare := x.levels[depth].Compare
		return &bucket[T]{sorted: btree.NewG(degree, func(a, b *sortedEntry[T]) bool {
			return compare(a.key, b.key) < 0
		})}
	}
}

// Len returns the number of stored items.
func (x *Index[T]) Len() int { return x.size }

// Put stores item under keys. Storing the same item twice under the same
// keys is a no-op.
func (x *Index[T]) Put(keys []any, item T) {
	x.checkKeys(keys)
	b := x.root
	for depth, key := range keys {
		b = x.child(b, depth, key, true)
	}
	if b.items.Add(item) {
		x.size++
	}
}

// Remove deletes item from under keys and reports whether it was there.
// Buckets left empty are pruned.
func (x *Index[T]) Remove(keys []any, item T) bool {
	x.checkKeys(keys)
	removed := x.remove(x.root, 0, keys, item)
	if removed {
		x.size--
	}
	return removed
}

func (x *Index[T]) remove(b *bucket[T], depth int, keys []any, item T) bool {
	if depth == len(x.levels) {
		return b.items.Remove(item)
	}
	child := x.child(b, depth, keys[depth], false)
	if child == nil || !x.remove(child, depth+1, keys, item) {
		return false
	}
	if child.empty() {
		x.prune(b, depth, keys[depth])
	}
	return true
}

// Visit calls fn for every item whose stored keys relate to keys by each
// level's Op, in deterministic order. fn must not modify the index.
func (x *Index[T]) Visit(keys []any, fn func(T)) {
	x.checkKeys(keys)
	x.visit(x.root, 0, keys, fn)
}

// Count returns how many items Visit would report.
func (x *Index[T]) Count(keys []any) int {
	n := 0
	x.Visit(keys, func(T) { n++ })
	return n
}

func (x *Index[T]) visit(b *bucket[T], depth int, keys []any, fn func(T)) {
	if depth == len(x.levels) {
		for item := range b.items.All() {
			fn(item)
		}
		return
	}
	level := x.levels[depth]
	if level.Op == Equal {
		if child, ok := b.equal.Get(keys[depth]); ok {
			x.visit(child, depth+1, keys, fn)
		}
		return
	}
	pivot := &sortedEntry[T]{key: keys[depth]}
	next := func(e *sortedEntry[T]) bool {
		x.visit(e.child, depth+1, keys, fn)
		return true
	}
	switch level.Op {
	case LessThan:
		b.sorted.AscendLessThan(pivot, next)
	case LessThanOrEqual:
		b.sorted.Ascend(func(e *sortedEntry[T]) bool {
			return level.Compare(e.key, pivot.key) <= 0 && next(e)
		})
	case GreaterThan:
		b.sorted.AscendGreaterOrEqual(pivot, func(e *sortedEntry[T]) bool {
			return level.Compare(e.key, pivot.key) == 0 || next(e)
		})
	default:
		b.sorted.AscendGreaterOrEqual(pivot, next)
	}
}

func (x *Index[T]) child(b *bucket[T], depth int, key any, create bool) *bucket[T] {
	level := x.levels[depth]
	if level.Op == Equal {
		if c, ok := b.equal.Get(key); ok {
			return c
		}
		if !create {
			return nil
		}
		c := x.newBucket(depth + 1)
		b.equal.Put(key, c)
		return c
	}
	if e, ok := b.sorted.Get(&sortedEntry[T]{key: key}); ok {
		return e.child
	}
	if !create {
		return nil
	}
	c := x.newBucket(depth + 1)
	b.sorted.ReplaceOrInsert(&sortedEntry[T]{key: key, child: c})
	return c
}

func (x *Index[T]) prune(b *bucket[T], depth int, key any) {
	level := x.levels[depth]
	if level.Op == Equal {
		b.equal.Delete(key)
		return
	}
	b.sorted.Delete(&sortedEntry[T]{key: key})
}

func (b *bucket[T]) empty() bool {
	switch {
	case b.items != nil:
		return b.items.Len() == 0
	case b.equal != nil:
		return b.equal.Len() == 0
	default:
		return b.sorted.Len() == 0
	}
}

func (x *Index[T]) checkKeys(keys []any) {
	if len(keys) != len(x.levels) {
		panic(fmt.Sprintf("index: got %d keys for %d levels", len(keys), len(x.levels)))
	}
}
