package bavet

import (
	"github.com/gitrdm/gokanscore/internal/ordered"
	"github.com/gitrdm/gokanscore/pkg/scoreholder"
	"github.com/gitrdm/gokanscore/pkg/stream"
)

// node is one stateful step of the network. Nodes are refreshed in
// ascending layer order; a node only feeds nodes of a higher layer, so one
// pass over the layers settles every pending transition.
type node interface {
	layer() int
	// calculate processes the node's dirty queues.
	calculate() error
	// pending reports how many input transitions are queued.
	pending() int
}

// producer is a node other nodes can consume tuples from.
type producer interface {
	node
	attach(s sink)
}

// fromNode is the root of a ForEach stream. It wraps every inserted fact of
// its type in a tuple and forwards the fact's lifecycle to its consumers
// immediately; it does no work of its own during calculation.
type fromNode struct {
	outputs
	tuples *ordered.Map[any, *Tuple]
}

func newFromNode() *fromNode {
	return &fromNode{tuples: ordered.NewMap[any, *Tuple]()}
}

func (n *fromNode) layer() int       { return 0 }
func (n *fromNode) calculate() error { return nil }
func (n *fromNode) pending() int     { return 0 }

func (n *fromNode) insertFact(fact any) {
	t := &Tuple{facts: []any{fact}}
	n.tuples.Put(fact, t)
	n.outputs.insert(t)
}

func (n *fromNode) updateFact(fact any) {
	if t, ok := n.tuples.Get(fact); ok {
		n.outputs.update(t)
	}
}

func (n *fromNode) retractFact(fact any) {
	if t, ok := n.tuples.Get(fact); ok {
		n.tuples.Delete(fact)
		n.outputs.retract(t)
	}
}

// filterNode forwards the tuples its predicate accepts. Shared filter
// steps compile to one filterNode, so the predicate runs once per tuple
// refresh however many constraints use it.
type filterNode struct {
	outputs
	queue
	depth     int
	predicate *stream.Predicate
	children  map[*Tuple]*Tuple
}

func newFilterNode(depth int, p *stream.Predicate) *filterNode {
	return &filterNode{queue: newQueue(), depth: depth, predicate: p, children: make(map[*Tuple]*Tuple)}
}

func (n *filterNode) layer() int   { return n.depth }
func (n *filterNode) pending() int { return n.queue.len() }

func (n *filterNode) calculate() error {
	return n.drain(func(t *Tuple, s State) error {
		child, had := n.children[t]
		if s == StateDying {
			if had {
				delete(n.children, t)
				n.outputs.retract(child)
			}
			return nil
		}
		pass := n.predicate.Test(t.facts)
		switch {
		case had && pass:
			child.facts, child.extras = t.facts, t.extras
			n.outputs.update(child)
		case had:
			delete(n.children, t)
			n.outputs.retract(child)
		case pass:
			child = &Tuple{facts: t.facts, extras: t.extras}
			n.children[t] = child
			n.outputs.insert(child)
		}
		return nil
	})
}

// scoringNode is the terminal node of one constraint. It keeps the undo of
// the impact of every tuple so that an update first reverses the previous
// impact and a retract reverses it for good.
type scoringNode struct {
	queue
	depth      int
	constraint *stream.Constraint
	holder     scoreholder.Holder
	undos      map[*Tuple]scoreholder.Undo
}

func newScoringNode(depth int, c *stream.Constraint, h scoreholder.Holder) *scoringNode {
	return &scoringNode{
		queue:      newQueue(),
		depth:      depth,
		constraint: c,
		holder:     h,
		undos:      make(map[*Tuple]scoreholder.Undo),
	}
}

func (n *scoringNode) layer() int   { return n.depth }
func (n *scoringNode) pending() int { return n.queue.len() }

func (n *scoringNode) calculate() error {
	return n.drain(func(t *Tuple, s State) error {
		if undo, ok := n.undos[t]; ok {
			delete(n.undos, t)
			undo()
		}
		if s == StateDying {
			return nil
		}
		m := stream.Match{ID: n.constraint.ID(), Facts: t.facts, Extras: t.extras}
		undo, err := n.constraint.Execute(n.holder, m, t.facts)
		if err != nil {
			return err
		}
		n.undos[t] = undo
		return nil
	})
}
