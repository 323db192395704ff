package bavet

import (
	"github.com/gitrdm/gokanscore/internal/index"
	"github.com/gitrdm/gokanscore/internal/ordered"
	"github.com/gitrdm/gokanscore/pkg/stream"
)

// joinSide is what both join and existence nodes know about their
// indexing joiners: how to key either side and how to index them.
type joinSide struct {
	indexing []*stream.Joiner
	filter   func(left []any, right any) bool
}

func newJoinSide(joiners []*stream.Joiner) joinSide {
	indexing, filtering := stream.Split(joiners)
	return joinSide{indexing: indexing, filter: stream.Combine(filtering)}
}

// leftLevels index left tuples so that a right key finds every left tuple
// with "left op right".
func (j joinSide) leftLevels() []index.Level {
	levels := make([]index.Level, len(j.indexing))
	for i, jn := range j.indexing {
		levels[i] = index.Level{Op: jn.Op(), Compare: jn.Compare()}
	}
	return levels
}

// rightLevels index right tuples so that a left key finds every right tuple
// with "left op right", which is "right flip(op) left".
func (j joinSide) rightLevels() []index.Level {
	levels := make([]index.Level, len(j.indexing))
	for i, jn := range j.indexing {
		levels[i] = index.Level{Op: jn.Op().Flip(), Compare: jn.Compare()}
	}
	return levels
}

func (j joinSide) leftKeys(facts []any) []any {
	keys := make([]any, len(j.indexing))
	for i, jn := range j.indexing {
		keys[i] = jn.LeftKey(facts)
	}
	return keys
}

func (j joinSide) rightKeys(fact any) []any {
	keys := make([]any, len(j.indexing))
	for i, jn := range j.indexing {
		keys[i] = jn.RightKey(fact)
	}
	return keys
}

func (j joinSide) accepts(left []any, right any) bool {
	return j.filter == nil || j.filter(left, right)
}

func sameKeys(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

type joinLeft struct {
	t       *Tuple
	keys    []any
	matches *ordered.Map[*joinRight, *Tuple]
}

type joinRight struct {
	t       *Tuple
	keys    []any
	matches *ordered.Map[*joinLeft, *Tuple]
}

// joinNode is the left and right bridge pair of a join. Each side keeps an
// index of its tuples by joiner keys; a change on one side only visits the
// matching bucket of the other side's index.
type joinNode struct {
	outputs
	joinSide
	depth      int
	left       queue
	right      queue
	leftIndex  *index.Index[*joinLeft]
	rightIndex *index.Index[*joinRight]
	lefts      map[*Tuple]*joinLeft
	rights     map[*Tuple]*joinRight
}

func newJoinNode(depth int, joiners []*stream.Joiner) *joinNode {
	n := &joinNode{
		joinSide: newJoinSide(joiners),
		depth:    depth,
		left:     newQueue(),
		right:    newQueue(),
		lefts:    make(map[*Tuple]*joinLeft),
		rights:   make(map[*Tuple]*joinRight),
	}
	n.leftIndex = index.New[*joinLeft](n.leftLevels()...)
	n.rightIndex = index.New[*joinRight](n.rightLevels()...)
	return n
}

func (n *joinNode) layer() int   { return n.depth }
func (n *joinNode) pending() int { return n.left.len() + n.right.len() }

func (n *joinNode) calculate() error {
	if err := n.left.drain(n.refreshLeft); err != nil {
		return err
	}
	return n.right.drain(n.refreshRight)
}

func (n *joinNode) refreshLeft(t *Tuple, s State) error {
	switch s {
	case StateCreating:
		l := &joinLeft{t: t, keys: n.leftKeys(t.facts), matches: ordered.NewMap[*joinRight, *Tuple]()}
		n.lefts[t] = l
		n.leftIndex.Put(l.keys, l)
		n.rightIndex.Visit(l.keys, func(r *joinRight) {
			if n.accepts(t.facts, r.t.facts[0]) {
				n.match(l, r)
			}
		})
	case StateUpdating:
		l := n.lefts[t]
		keys := n.leftKeys(t.facts)
		if !sameKeys(keys, l.keys) {
			n.unmatchLeft(l)
			n.leftIndex.Remove(l.keys, l)
			l.keys = keys
			n.leftIndex.Put(keys, l)
		}
		n.rightIndex.Visit(l.keys, func(r *joinRight) { n.rematch(l, r) })
	case StateDying:
		l := n.lefts[t]
		delete(n.lefts, t)
		n.leftIndex.Remove(l.keys, l)
		n.unmatchLeft(l)
	}
	return nil
}

func (n *joinNode) refreshRight(t *Tuple, s State) error {
	switch s {
	case StateCreating:
		r := &joinRight{t: t, keys: n.rightKeys(t.facts[0]), matches: ordered.NewMap[*joinLeft, *Tuple]()}
		n.rights[t] = r
		n.rightIndex.Put(r.keys, r)
		n.leftIndex.Visit(r.keys, func(l *joinLeft) {
			if n.accepts(l.t.facts, t.facts[0]) {
				n.match(l, r)
			}
		})
	case StateUpdating:
		r := n.rights[t]
		keys := n.rightKeys(t.facts[0])
		if !sameKeys(keys, r.keys) {
			n.unmatchRight(r)
			n.rightIndex.Remove(r.keys, r)
			r.keys = keys
			n.rightIndex.Put(keys, r)
		}
		n.leftIndex.Visit(r.keys, func(l *joinLeft) { n.rematch(l, r) })
	case StateDying:
		r := n.rights[t]
		delete(n.rights, t)
		n.rightIndex.Remove(r.keys, r)
		n.unmatchRight(r)
	}
	return nil
}

func (n *joinNode) match(l *joinLeft, r *joinRight) {
	out := &Tuple{facts: concat(l.t.facts, r.t.facts[0]), extras: l.t.extras}
	l.matches.Put(r, out)
	r.matches.Put(l, out)
	n.outputs.insert(out)
}

// rematch re-evaluates one candidate pair after either side changed.
func (n *joinNode) rematch(l *joinLeft, r *joinRight) {
	out, had := l.matches.Get(r)
	pass := n.accepts(l.t.facts, r.t.facts[0])
	switch {
	case had && pass:
		out.facts, out.extras = concat(l.t.facts, r.t.facts[0]), l.t.extras
		n.outputs.update(out)
	case had:
		l.matches.Delete(r)
		r.matches.Delete(l)
		n.outputs.retract(out)
	case pass:
		n.match(l, r)
	}
}

func (n *joinNode) unmatchLeft(l *joinLeft) {
	for r, out := range l.matches.All() {
		l.matches.Delete(r)
		r.matches.Delete(l)
		n.outputs.retract(out)
	}
}

func (n *joinNode) unmatchRight(r *joinRight) {
	for l, out := range r.matches.All() {
		r.matches.Delete(l)
		l.matches.Delete(r)
		n.outputs.retract(out)
	}
}
