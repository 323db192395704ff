// Package ordered provides insertion-ordered hash containers.
//
// Every index, node memory and ledger of the scoring core iterates its
// entries in insertion order so that match enumeration, and therefore the
// order in which score deltas and constraint matches are produced, is the
// same on every run. Go maps randomize iteration; these containers sit on
// go-ordered-map, which pairs a map with a linked list so insert, remove and
// lookup stay O(1) and iteration follows insertion.
//
// The containers are not safe for concurrent use.
package ordered

import (
	"iter"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Map is an insertion-ordered map. The zero value is not usable; call NewMap.
type Map[K comparable, V any] struct {
	pairs *orderedmap.OrderedMap[K, V]
}

// NewMap returns an empty map.
func NewMap[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{pairs: orderedmap.New[K, V]()}
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int { return m.pairs.Len() }

// Get returns the value stored under key.
func (m *Map[K, V]) Get(key K) (V, bool) { return m.pairs.Get(key) }

// Has reports whether key is present.
func (m *Map[K, V]) Has(key K) bool {
	_, ok := m.pairs.Get(key)
	return ok
}

// Put stores value under key. A new key goes to the end of the iteration
// order; an existing key keeps its position.
func (m *Map[K, V]) Put(key K, value V) { m.pairs.Set(key, value) }

// Delete removes key and reports whether it was present.
func (m *Map[K, V]) Delete(key K) bool {
	_, ok := m.pairs.Delete(key)
	return ok
}

// All iterates the entries in insertion order. Deleting the current entry
// during iteration is allowed.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for p := m.pairs.Oldest(); p != nil; {
			next := p.Next()
			if !yield(p.Key, p.Value) {
				return
			}
			p = next
		}
	}
}

// Keys returns the keys in insertion order.
func (m *Map[K, V]) Keys() []K {
	out := make([]K, 0, m.pairs.Len())
	for p := m.pairs.Oldest(); p != nil; p = p.Next() {
		out = append(out, p.Key)
	}
	return out
}

// Values returns the values in insertion order.
func (m *Map[K, V]) Values() []V {
	out := make([]V, 0, m.pairs.Len())
	for p := m.pairs.Oldest(); p != nil; p = p.Next() {
		out = append(out, p.Value)
	}
	return out
}

// Set is an insertion-ordered set.
type Set[T comparable] struct {
	m *Map[T, struct{}]
}

// NewSet returns an empty set.
func NewSet[T comparable]() *Set[T] {
	return &Set[T]{m: NewMap[T, struct{}]()}
}

func (s *Set[T]) Len() int { return s.m.Len() }

func (s *Set[T]) Has(item T) bool { return s.m.Has(item) }

// Remove deletes item and reports whether it was present.
func (s *Set[T]) Remove(item T) bool { return s.m.Delete(item) }

// Items returns the items in insertion order.
func (s *Set[T]) Items() []T { return s.m.Keys() }

// Add inserts item and reports whether it was new.
func (s *Set[T]) Add(item T) bool {
	if s.m.Has(item) {
		return false
	}
	s.m.Put(item, struct{}{})
	return true
}

// All iterates the items in insertion order.
func (s *Set[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for k := range s.m.All() {
			if !yield(k) {
				return
			}
		}
	}
}
