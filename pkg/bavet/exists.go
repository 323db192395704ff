package bavet

import (
	"github.com/gitrdm/gokanscore/internal/index"
	"github.com/gitrdm/gokanscore/internal/ordered"
	"github.com/gitrdm/gokanscore/pkg/stream"
)

type existsLeft struct {
	t       *Tuple
	keys    []any
	matched *ordered.Set[*existsRight]
	out     *Tuple
	dead    bool
}

type existsRight struct {
	t       *Tuple
	keys    []any
	matched *ordered.Set[*existsLeft]
}

// existsNode implements IfExists and IfNotExists. It keeps, per left tuple,
// the set of right tuples that match it, and forwards the left tuple while
// that set is non-empty (IfExists) or empty (IfNotExists). Downstream
// tuples of an IfExists node carry the matching right facts as extras.
type existsNode struct {
	outputs
	joinSide
	depth       int
	shouldExist bool
	left        queue
	right       queue
	leftIndex   *index.Index[*existsLeft]
	rightIndex  *index.Index[*existsRight]
	lefts       map[*Tuple]*existsLeft
	rights      map[*Tuple]*existsRight
	touched     *ordered.Set[*existsLeft]
}

func newExistsNode(depth int, shouldExist bool, joiners []*stream.Joiner) *existsNode {
	n := &existsNode{
		joinSide:    newJoinSide(joiners),
		depth:       depth,
		shouldExist: shouldExist,
		left:        newQueue(),
		right:       newQueue(),
		lefts:       make(map[*Tuple]*existsLeft),
		rights:      make(map[*Tuple]*existsRight),
		touched:     ordered.NewSet[*existsLeft](),
	}
	n.leftIndex = index.New[*existsLeft](n.leftLevels()...)
	n.rightIndex = index.New[*existsRight](n.rightLevels()...)
	return n
}

func (n *existsNode) layer() int   { return n.depth }
func (n *existsNode) pending() int { return n.left.len() + n.right.len() }

func (n *existsNode) calculate() error {
	if err := n.left.drain(n.refreshLeft); err != nil {
		return err
	}
	if err := n.right.drain(n.refreshRight); err != nil {
		return err
	}
	for l := range n.touched.All() {
		n.touched.Remove(l)
		n.propagate(l)
	}
	return nil
}

func (n *existsNode) refreshLeft(t *Tuple, s State) error {
	l, ok := n.lefts[t]
	if !ok {
		l = &existsLeft{t: t, keys: n.leftKeys(t.facts), matched: ordered.NewSet[*existsRight]()}
		n.lefts[t] = l
		n.leftIndex.Put(l.keys, l)
	}
	n.unmatchLeft(l)
	if s == StateDying {
		delete(n.lefts, t)
		n.leftIndex.Remove(l.keys, l)
		l.dead = true
	} else {
		if keys := n.leftKeys(t.facts); !sameKeys(keys, l.keys) {
			n.leftIndex.Remove(l.keys, l)
			l.keys = keys
			n.leftIndex.Put(keys, l)
		}
		n.matchLeft(l)
	}
	n.touched.Add(l)
	return nil
}

func (n *existsNode) refreshRight(t *Tuple, s State) error {
	switch s {
	case StateCreating:
		r := &existsRight{t: t, keys: n.rightKeys(t.facts[0]), matched: ordered.NewSet[*existsLeft]()}
		n.rights[t] = r
		n.rightIndex.Put(r.keys, r)
		n.matchRight(r)
	case StateUpdating:
		r := n.rights[t]
		n.unmatchRight(r)
		if keys := n.rightKeys(t.facts[0]); !sameKeys(keys, r.keys) {
			n.rightIndex.Remove(r.keys, r)
			r.keys = keys
			n.rightIndex.Put(keys, r)
		}
		n.matchRight(r)
	case StateDying:
		r := n.rights[t]
		delete(n.rights, t)
		n.rightIndex.Remove(r.keys, r)
		n.unmatchRight(r)
	}
	return nil
}

func (n *existsNode) matchLeft(l *existsLeft) {
	n.rightIndex.Visit(l.keys, func(r *existsRight) {
		if n.accepts(l.t.facts, r.t.facts[0]) {
			l.matched.Add(r)
			r.matched.Add(l)
		}
	})
}

func (n *existsNode) unmatchLeft(l *existsLeft) {
	for r := range l.matched.All() {
		l.matched.Remove(r)
		r.matched.Remove(l)
	}
}

func (n *existsNode) matchRight(r *existsRight) {
	n.leftIndex.Visit(r.keys, func(l *existsLeft) {
		if n.accepts(l.t.facts, r.t.facts[0]) {
			l.matched.Add(r)
			r.matched.Add(l)
			n.touched.Add(l)
		}
	})
}

func (n *existsNode) unmatchRight(r *existsRight) {
	for l := range r.matched.All() {
		r.matched.Remove(l)
		l.matched.Remove(r)
		n.touched.Add(l)
	}
}

// propagate settles the downstream tuple of l after this pass.
func (n *existsNode) propagate(l *existsLeft) {
	want := !l.dead && (l.matched.Len() > 0) == n.shouldExist
	switch {
	case l.out != nil && want:
		l.out.facts, l.out.extras = l.t.facts, n.extras(l)
		n.outputs.update(l.out)
	case l.out != nil:
		n.outputs.retract(l.out)
		l.out = nil
	case want:
		l.out = &Tuple{facts: l.t.facts, extras: n.extras(l)}
		n.outputs.insert(l.out)
	}
}

func (n *existsNode) extras(l *existsLeft) []any {
	if !n.shouldExist {
		return l.t.extras
	}
	out := make([]any, 0, len(l.t.extras)+l.matched.Len())
	out = append(out, l.t.extras...)
	for r := range l.matched.All() {
		out = append(out, r.t.facts[0])
	}
	return out
}
