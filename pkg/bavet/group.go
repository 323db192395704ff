package bavet

import (
	"reflect"

	"github.com/gitrdm/gokanscore/internal/ordered"
	"github.com/gitrdm/gokanscore/pkg/scoreerr"
	"github.com/gitrdm/gokanscore/pkg/stream"
)

// groupKey is the comparable form of up to MaxArity group key values.
type groupKey [stream.MaxArity]any

type group struct {
	key        groupKey
	values     []any
	containers []any
	count      int
	out        *Tuple
}

type groupEntry struct {
	g     *group
	undos []func()
}

// groupNode is the group-by bridge. Every group counts the tuples that
// contribute to it; a group is created by its first contributor and dies
// with its last. Collector results are read once per calculation for every
// group that changed.
type groupNode struct {
	outputs
	queue
	depth      int
	keys       []*stream.Mapping
	collectors []stream.Collector
	groups     *ordered.Map[groupKey, *group]
	entries    map[*Tuple]*groupEntry
	touched    *ordered.Set[*group]
}

func newGroupNode(depth int, keys []*stream.Mapping, collectors []stream.Collector) *groupNode {
	return &groupNode{
		queue:      newQueue(),
		depth:      depth,
		keys:       keys,
		collectors: collectors,
		groups:     ordered.NewMap[groupKey, *group](),
		entries:    make(map[*Tuple]*groupEntry),
		touched:    ordered.NewSet[*group](),
	}
}

func (n *groupNode) layer() int   { return n.depth }
func (n *groupNode) pending() int { return n.queue.len() }

func (n *groupNode) calculate() error {
	err := n.drain(func(t *Tuple, s State) error {
		if e, ok := n.entries[t]; ok {
			delete(n.entries, t)
			n.leave(e)
		}
		if s == StateDying {
			return nil
		}
		return n.join(t)
	})
	if err != nil {
		return err
	}
	for g := range n.touched.All() {
		n.touched.Remove(g)
		n.settle(g)
	}
	return nil
}

func (n *groupNode) join(t *Tuple) error {
	var key groupKey
	values := make([]any, len(n.keys))
	for i, m := range n.keys {
		v := m.Apply(t.facts)
		if v != nil && !reflect.TypeOf(v).Comparable() {
			return scoreerr.InvalidArgument("groupBy key %d of %v has non-comparable type %T", i, t.facts, v)
		}
		key[i], values[i] = v, v
	}
	g, ok := n.groups.Get(key)
	if !ok {
		g = &group{key: key, values: values, containers: make([]any, len(n.collectors))}
		for i, c := range n.collectors {
			g.containers[i] = c.Supply()
		}
		n.groups.Put(key, g)
	}
	e := &groupEntry{g: g, undos: make([]func(), len(n.collectors))}
	for i, c := range n.collectors {
		e.undos[i] = c.Accumulate(g.containers[i], t.facts)
	}
	g.count++
	n.entries[t] = e
	n.touched.Add(g)
	return nil
}

func (n *groupNode) leave(e *groupEntry) {
	for _, undo := range e.undos {
		undo()
	}
	e.g.count--
	n.touched.Add(e.g)
}

// settle emits the transition of g: a group whose last contributor left
// dies, a new group is created, any other group is updated.
func (n *groupNode) settle(g *group) {
	if g.count == 0 {
		n.groups.Delete(g.key)
		if g.out != nil {
			n.outputs.retract(g.out)
			g.out = nil
		}
		return
	}
	facts := make([]any, 0, len(g.values)+len(g.containers))
	facts = append(facts, g.values...)
	for i, c := range n.collectors {
		facts = append(facts, c.Finish(g.containers[i]))
	}
	if g.out == nil {
		g.out = &Tuple{facts: facts}
		n.outputs.insert(g.out)
		return
	}
	g.out.facts = facts
	n.outputs.update(g.out)
}
