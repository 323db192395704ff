package bavet

import (
	"fmt"

	"github.com/gitrdm/gokanscore/internal/ordered"
)

// State is the pending lifecycle transition of a tuple at one node input.
type State int

const (
	// StateCreating marks a tuple the node has not seen yet.
	StateCreating State = iota
	// StateUpdating marks a known tuple whose facts changed.
	StateUpdating
	// StateDying marks a known tuple that left its producer.
	StateDying
	// StateAborting marks a tuple that died before the node ever saw it;
	// it is dropped from the queue instead of being processed.
	StateAborting
)

func (s State) String() string {
	switch s {
	case StateCreating:
		return "CREATING"
	case StateUpdating:
		return "UPDATING"
	case StateDying:
		return "DYING"
	case StateAborting:
		return "ABORTING"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Tuple carries the facts of one stream tuple between nodes. Each node owns
// the tuples it creates; consumers only read them. Extras holds the facts
// that satisfied an upstream existence check and justify matches downstream.
type Tuple struct {
	facts  []any
	extras []any
}

// Facts returns the facts of the tuple. Callers must not modify it.
func (t *Tuple) Facts() []any { return t.facts }

func (t *Tuple) String() string { return fmt.Sprint(t.facts) }

// sink is a node input.
type sink interface {
	insert(t *Tuple)
	update(t *Tuple)
	retract(t *Tuple)
}

// queue is the dirty tuple queue of one node input. It collapses repeated
// transitions of a tuple between two score calculations: an update of a
// creating tuple stays creating, and a creating tuple that dies is aborted.
type queue struct {
	pending *ordered.Map[*Tuple, State]
}

func newQueue() queue { return queue{pending: ordered.NewMap[*Tuple, State]()} }

func (q *queue) insert(t *Tuple) { q.pending.Put(t, StateCreating) }

func (q *queue) update(t *Tuple) {
	if s, ok := q.pending.Get(t); ok && s == StateCreating {
		return
	}
	q.pending.Put(t, StateUpdating)
}

func (q *queue) retract(t *Tuple) {
	if s, ok := q.pending.Get(t); ok && s == StateCreating {
		q.transition(t, StateAborting)
		return
	}
	q.pending.Put(t, StateDying)
}

func (q *queue) transition(t *Tuple, s State) {
	if s == StateAborting {
		q.pending.Delete(t)
		return
	}
	q.pending.Put(t, s)
}

func (q *queue) len() int { return q.pending.Len() }

// drain hands every pending tuple to fn in arrival order and empties the
// queue. It stops at the first error.
func (q *queue) drain(fn func(t *Tuple, s State) error) error {
	for t, s := range q.pending.All() {
		q.pending.Delete(t)
		if err := fn(t, s); err != nil {
			return err
		}
	}
	return nil
}

// outputs fans a node's tuple transitions out to its consumers.
type outputs struct {
	sinks []sink
}

func (o *outputs) attach(s sink) { o.sinks = append(o.sinks, s) }

func (o *outputs) insert(t *Tuple) {
	for _, s := range o.sinks {
		s.insert(t)
	}
}

func (o *outputs) update(t *Tuple) {
	for _, s := range o.sinks {
		s.update(t)
	}
}

func (o *outputs) retract(t *Tuple) {
	for _, s := range o.sinks {
		s.retract(t)
	}
}

func concat(a []any, b ...any) []any {
	out := make([]any, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
