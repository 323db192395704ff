package rete

import (
	"reflect"

	"github.com/gitrdm/gokanscore/internal/index"
	"github.com/gitrdm/gokanscore/internal/ordered"
	"github.com/gitrdm/gokanscore/pkg/scoreerr"
)

// maxGroupKeys bounds Accumulate.KeyCount so group keys stay comparable
// arrays.
const maxGroupKeys = 4

// token is a partial match: the facts bound so far and the facts recorded
// by positive Exists conditions.
type token struct {
	facts  []any
	extras []any
}

func (t *token) extend(fact any) *token {
	facts := make([]any, 0, len(t.facts)+1)
	facts = append(append(facts, t.facts...), fact)
	return &token{facts: facts, extras: t.extras}
}

// sink receives the tokens of the node before it.
type sink interface {
	assert(t *token) error
	retract(t *token) error
}

// factSink receives the facts of an alpha node.
type factSink interface {
	assertFact(fact any) error
	retractFact(fact any) error
}

// alphaNode holds the facts of one pattern.
type alphaNode struct {
	pattern Pattern
	memory  *ordered.Set[any]
	sinks   []factSink
}

func newAlphaNode(p Pattern) *alphaNode {
	return &alphaNode{pattern: p, memory: ordered.NewSet[any]()}
}

func (a *alphaNode) assertFact(fact any) error {
	if a.pattern.Filter != nil && !a.pattern.Filter(fact) {
		return nil
	}
	a.memory.Add(fact)
	for _, s := range a.sinks {
		if err := s.assertFact(fact); err != nil {
			return err
		}
	}
	return nil
}

func (a *alphaNode) retractFact(fact any) error {
	if !a.memory.Remove(fact) {
		return nil
	}
	for _, s := range a.sinks {
		if err := s.retractFact(fact); err != nil {
			return err
		}
	}
	return nil
}

// rootNode turns the facts of a rule's first pattern into tokens.
type rootNode struct {
	tokens map[any]*token
	next   sink
}

func (r *rootNode) assertFact(fact any) error {
	t := &token{facts: []any{fact}}
	r.tokens[fact] = t
	return r.next.assert(t)
}

func (r *rootNode) retractFact(fact any) error {
	t := r.tokens[fact]
	delete(r.tokens, fact)
	return r.next.retract(t)
}

func equalLevels(n int) []index.Level {
	levels := make([]index.Level, n)
	for i := range levels {
		levels[i] = index.Level{Op: index.Equal}
	}
	return levels
}

func leftKeys(keys []Key, t *token) ([]any, error) {
	values := make([]any, len(keys))
	for i, k := range keys {
		v := k.Left(t.facts)
		if err := checkKey(v); err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

func rightKeys(keys []Key, fact any) ([]any, error) {
	values := make([]any, len(keys))
	for i, k := range keys {
		v := k.Right(fact)
		if err := checkKey(v); err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

func checkKey(v any) error {
	if v != nil && !reflect.TypeOf(v).Comparable() {
		return scoreerr.InvalidArgument("rete: key of type %T is not comparable", v)
	}
	return nil
}

// betaMemory is the indexed left and right memory shared by join and
// exists nodes.
type betaMemory struct {
	keys      []Key
	test      func(token []any, fact any) bool
	left      *index.Index[*token]
	right     *index.Index[any]
	leftKeys  map[*token][]any
	rightKeys map[any][]any
}

func newBetaMemory(keys []Key, test func([]any, any) bool) betaMemory {
	return betaMemory{
		keys:      keys,
		test:      test,
		left:      index.New[*token](equalLevels(len(keys))...),
		right:     index.New[any](equalLevels(len(keys))...),
		leftKeys:  make(map[*token][]any),
		rightKeys: make(map[any][]any),
	}
}

func (m *betaMemory) accepts(t *token, fact any) bool {
	return m.test == nil || m.test(t.facts, fact)
}

// storeLeft indexes t and returns the right facts it matches.
func (m *betaMemory) storeLeft(t *token) ([]any, error) {
	keys, err := leftKeys(m.keys, t)
	if err != nil {
		return nil, err
	}
	m.leftKeys[t] = keys
	m.left.Put(keys, t)
	var matches []any
	m.right.Visit(keys, func(fact any) {
		if m.accepts(t, fact) {
			matches = append(matches, fact)
		}
	})
	return matches, nil
}

func (m *betaMemory) removeLeft(t *token) bool {
	keys, ok := m.leftKeys[t]
	if !ok {
		return false
	}
	delete(m.leftKeys, t)
	m.left.Remove(keys, t)
	return true
}

// storeRight indexes fact and returns the left tokens it matches.
func (m *betaMemory) storeRight(fact any) ([]*token, error) {
	keys, err := rightKeys(m.keys, fact)
	if err != nil {
		return nil, err
	}
	m.rightKeys[fact] = keys
	m.right.Put(keys, fact)
	var matches []*token
	m.left.Visit(keys, func(t *token) {
		if m.accepts(t, fact) {
			matches = append(matches, t)
		}
	})
	return matches, nil
}

func (m *betaMemory) removeRight(fact any) bool {
	keys, ok := m.rightKeys[fact]
	if !ok {
		return false
	}
	delete(m.rightKeys, fact)
	m.right.Remove(keys, fact)
	return true
}

// joinNode extends left tokens with every matching right fact.
type joinNode struct {
	betaMemory
	children map[*token]*ordered.Map[any, *token]
	byFact   map[any]*ordered.Set[*token]
	next     sink
}

func newJoinNode(c Join, next sink) *joinNode {
	return &joinNode{
		betaMemory: newBetaMemory(c.Keys, c.Test),
		children:   make(map[*token]*ordered.Map[any, *token]),
		byFact:     make(map[any]*ordered.Set[*token]),
		next:       next,
	}
}

func (n *joinNode) assert(t *token) error {
	facts, err := n.storeLeft(t)
	if err != nil {
		return err
	}
	for _, fact := range facts {
		if err := n.match(t, fact); err != nil {
			return err
		}
	}
	return nil
}

func (n *joinNode) retract(t *token) error {
	if !n.removeLeft(t) {
		return nil
	}
	children, ok := n.children[t]
	if !ok {
		return nil
	}
	delete(n.children, t)
	for fact, child := range children.All() {
		n.byFact[fact].Remove(t)
		if n.byFact[fact].Len() == 0 {
			delete(n.byFact, fact)
		}
		if err := n.next.retract(child); err != nil {
			return err
		}
	}
	return nil
}

func (n *joinNode) assertFact(fact any) error {
	tokens, err := n.storeRight(fact)
	if err != nil {
		return err
	}
	for _, t := range tokens {
		if err := n.match(t, fact); err != nil {
			return err
		}
	}
	return nil
}

func (n *joinNode) retractFact(fact any) error {
	if !n.removeRight(fact) {
		return nil
	}
	tokens, ok := n.byFact[fact]
	if !ok {
		return nil
	}
	delete(n.byFact, fact)
	for t := range tokens.All() {
		children := n.children[t]
		child, _ := children.Get(fact)
		children.Delete(fact)
		if children.Len() == 0 {
			delete(n.children, t)
		}
		if err := n.next.retract(child); err != nil {
			return err
		}
	}
	return nil
}

func (n *joinNode) match(t *token, fact any) error {
	children, ok := n.children[t]
	if !ok {
		children = ordered.NewMap[any, *token]()
		n.children[t] = children
	}
	tokens, ok := n.byFact[fact]
	if !ok {
		tokens = ordered.NewSet[*token]()
		n.byFact[fact] = tokens
	}
	child := t.extend(fact)
	children.Put(fact, child)
	tokens.Add(t)
	return n.next.assert(child)
}

// existsNode passes a left token on while its set of matching right facts
// is non-empty, or empty when negated. A positive node records the matching
// facts as extras and replaces its output whenever the set changes.
type existsNode struct {
	betaMemory
	not     bool
	matched map[*token]*ordered.Set[any]
	byFact  map[any]*ordered.Set[*token]
	out     map[*token]*token
	next    sink
}

func newExistsNode(c Exists, next sink) *existsNode {
	return &existsNode{
		betaMemory: newBetaMemory(c.Keys, c.Test),
		not:        c.Not,
		matched:    make(map[*token]*ordered.Set[any]),
		byFact:     make(map[any]*ordered.Set[*token]),
		out:        make(map[*token]*token),
		next:       next,
	}
}

func (n *existsNode) assert(t *token) error {
	facts, err := n.storeLeft(t)
	if err != nil {
		return err
	}
	set := ordered.NewSet[any]()
	for _, fact := range facts {
		set.Add(fact)
		n.link(fact, t)
	}
	n.matched[t] = set
	return n.refresh(t)
}

func (n *existsNode) retract(t *token) error {
	if !n.removeLeft(t) {
		return nil
	}
	for fact := range n.matched[t].All() {
		n.unlink(fact, t)
	}
	delete(n.matched, t)
	if out, ok := n.out[t]; ok {
		delete(n.out, t)
		return n.next.retract(out)
	}
	return nil
}

func (n *existsNode) assertFact(fact any) error {
	tokens, err := n.storeRight(fact)
	if err != nil {
		return err
	}
	for _, t := range tokens {
		n.matched[t].Add(fact)
		n.link(fact, t)
		if err := n.refresh(t); err != nil {
			return err
		}
	}
	return nil
}

func (n *existsNode) retractFact(fact any) error {
	if !n.removeRight(fact) {
		return nil
	}
	tokens, ok := n.byFact[fact]
	if !ok {
		return nil
	}
	delete(n.byFact, fact)
	for t := range tokens.All() {
		n.matched[t].Remove(fact)
		if err := n.refresh(t); err != nil {
			return err
		}
	}
	return nil
}

func (n *existsNode) link(fact any, t *token) {
	tokens, ok := n.byFact[fact]
	if !ok {
		tokens = ordered.NewSet[*token]()
		n.byFact[fact] = tokens
	}
	tokens.Add(t)
}

func (n *existsNode) unlink(fact any, t *token) {
	if tokens, ok := n.byFact[fact]; ok {
		tokens.Remove(t)
		if tokens.Len() == 0 {
			delete(n.byFact, fact)
		}
	}
}

func (n *existsNode) refresh(t *token) error {
	set := n.matched[t]
	old, had := n.out[t]
	if n.not {
		want := set.Len() == 0
		switch {
		case want && !had:
			n.out[t] = t
			return n.next.assert(t)
		case !want && had:
			delete(n.out, t)
			return n.next.retract(old)
		}
		return nil
	}
	if had {
		delete(n.out, t)
		if err := n.next.retract(old); err != nil {
			return err
		}
	}
	if set.Len() == 0 {
		return nil
	}
	extras := make([]any, 0, len(t.extras)+set.Len())
	extras = append(append(extras, t.extras...), set.Items()...)
	out := &token{facts: t.facts, extras: extras}
	n.out[t] = out
	return n.next.assert(out)
}

// evalNode passes the tokens its test accepts.
type evalNode struct {
	test   func([]any) bool
	passed map[*token]bool
	next   sink
}

func (n *evalNode) assert(t *token) error {
	if !n.test(t.facts) {
		return nil
	}
	n.passed[t] = true
	return n.next.assert(t)
}

func (n *evalNode) retract(t *token) error {
	if !n.passed[t] {
		return nil
	}
	delete(n.passed, t)
	return n.next.retract(t)
}

type groupKey [maxGroupKeys]any

type group struct {
	key        groupKey
	values     []any
	containers []any
	count      int
	out        *token
}

type groupEntry struct {
	g     *group
	undos []func()
}

// accumulateNode folds the tokens of its source into one token per group.
// A group lives while it has contributors and its token is replaced on
// every change.
type accumulateNode struct {
	cond    Accumulate
	groups  *ordered.Map[groupKey, *group]
	entries map[*token]*groupEntry
	next    sink
}

func newAccumulateNode(c Accumulate, next sink) *accumulateNode {
	return &accumulateNode{
		cond:    c,
		groups:  ordered.NewMap[groupKey, *group](),
		entries: make(map[*token]*groupEntry),
		next:    next,
	}
}

func (n *accumulateNode) assert(t *token) error {
	var key groupKey
	var values []any
	if n.cond.KeyCount > 0 {
		values = n.cond.GroupBy(t.facts)
		if len(values) != n.cond.KeyCount {
			return scoreerr.InvalidState("rete: accumulate returned %d keys, want %d", len(values), n.cond.KeyCount)
		}
		for i, v := range values {
			if err := checkKey(v); err != nil {
				return err
			}
			key[i] = v
		}
	}
	g, ok := n.groups.Get(key)
	if !ok {
		g = &group{key: key, values: values, containers: make([]any, len(n.cond.Accumulators))}
		for i, a := range n.cond.Accumulators {
			g.containers[i] = a.Supply()
		}
		n.groups.Put(key, g)
	}
	e := &groupEntry{g: g, undos: make([]func(), len(n.cond.Accumulators))}
	for i, a := range n.cond.Accumulators {
		e.undos[i] = a.Accumulate(g.containers[i], t.facts)
	}
	g.count++
	n.entries[t] = e
	return n.refresh(g)
}

func (n *accumulateNode) retract(t *token) error {
	e, ok := n.entries[t]
	if !ok {
		return nil
	}
	delete(n.entries, t)
	for _, undo := range e.undos {
		undo()
	}
	e.g.count--
	return n.refresh(e.g)
}

func (n *accumulateNode) refresh(g *group) error {
	if g.out != nil {
		old := g.out
		g.out = nil
		if err := n.next.retract(old); err != nil {
			return err
		}
	}
	if g.count == 0 {
		n.groups.Delete(g.key)
		return nil
	}
	values := make([]any, 0, len(g.values)+len(g.containers))
	values = append(values, g.values...)
	for i, a := range n.cond.Accumulators {
		values = append(values, a.Finish(g.containers[i]))
	}
	g.out = &token{facts: []any{&GroupTuple{Values: values}}}
	return n.next.assert(g.out)
}

// terminalNode puts an activation on the agenda for every complete match.
type terminalNode struct {
	rule   *Rule
	agenda *agenda
	acts   map[*token]*activation
}

func (n *terminalNode) assert(t *token) error {
	a := &activation{rule: n.rule, token: t}
	n.acts[t] = a
	n.agenda.schedule(a)
	return nil
}

func (n *terminalNode) retract(t *token) error {
	a, ok := n.acts[t]
	if !ok {
		return nil
	}
	delete(n.acts, t)
	n.agenda.cancel(a)
	return nil
}
