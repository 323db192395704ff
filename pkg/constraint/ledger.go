package constraint

import (
	"fmt"
	"reflect"

	"github.com/gitrdm/gokanscore/internal/ordered"
	"github.com/gitrdm/gokanscore/pkg/score"
	"github.com/gitrdm/gokanscore/pkg/scoreerr"
)

// MatchTotal aggregates the live matches of one constraint.
type MatchTotal struct {
	id      ID
	weight  score.Score
	score   score.Score
	matches *ordered.Set[*Match]
}

func (t *MatchTotal) ConstraintID() ID { return t.id }

// Weight returns the constraint weight the total was created with.
func (t *MatchTotal) Weight() score.Score { return t.weight }

// Score returns the sum of the live match scores.
func (t *MatchTotal) Score() score.Score { return t.score }

// Matches returns the live matches in registration order.
func (t *MatchTotal) Matches() []*Match { return t.matches.Items() }

func (t *MatchTotal) MatchCount() int { return t.matches.Len() }

// Indictment aggregates the live matches one fact justifies.
type Indictment struct {
	justification any
	score         score.Score
	matches       *ordered.Set[*Match]
}

func (i *Indictment) Justification() any { return i.justification }

// Score returns the sum of the live match scores.
func (i *Indictment) Score() score.Score { return i.score }

// Matches returns the live matches in registration order.
func (i *Indictment) Matches() []*Match { return i.matches.Items() }

func (i *Indictment) MatchCount() int { return i.matches.Len() }

// Ledger tracks every live match of a session. It is not safe for
// concurrent use.
type Ledger struct {
	zero        score.Score
	totals      *ordered.Map[ID, *MatchTotal]
	indictments *ordered.Map[any, *Indictment]
}

// NewLedger returns an empty ledger whose aggregates start at zero.
func NewLedger(zero score.Score) *Ledger {
	return &Ledger{
		zero:        zero,
		totals:      ordered.NewMap[ID, *MatchTotal](),
		indictments: ordered.NewMap[any, *Indictment](),
	}
}

// Add registers a match of constraint id contributing s and returns it.
// The total of id is created on first use with the given weight. Each
// distinct justification gets the match added to its indictment.
func (l *Ledger) Add(id ID, weight score.Score, justifications []any, s score.Score) (*Match, error) {
	for _, j := range justifications {
		if j != nil && !reflect.ValueOf(j).Comparable() {
			return nil, scoreerr.InvalidArgument(
				"constraint (%s) has a justification of non-comparable type %T; justify with pointers", id, j)
		}
	}
	m := &Match{id: id, justifications: append([]any(nil), justifications...), score: s}

	total, ok := l.totals.Get(id)
	if !ok {
		total = &MatchTotal{id: id, weight: weight, score: l.zero, matches: ordered.NewSet[*Match]()}
		l.totals.Put(id, total)
	}
	total.matches.Add(m)
	total.score = total.score.Add(s)

	for _, j := range distinct(justifications) {
		ind, ok := l.indictments.Get(j)
		if !ok {
			ind = &Indictment{justification: j, score: l.zero, matches: ordered.NewSet[*Match]()}
			l.indictments.Put(j, ind)
		}
		ind.matches.Add(m)
		ind.score = ind.score.Add(s)
	}
	return m, nil
}

// Remove unregisters m. The total of its constraint stays; indictments left
// without matches are deleted. Removing a match that is not live means the
// caller invoked an undo twice and panics.
func (l *Ledger) Remove(m *Match) {
	total, ok := l.totals.Get(m.id)
	if !ok || !total.matches.Remove(m) {
		panic(fmt.Sprintf("constraint: match %s is not registered", m))
	}
	total.score = total.score.Subtract(m.score)

	for _, j := range distinct(m.justifications) {
		ind, ok := l.indictments.Get(j)
		if !ok || !ind.matches.Remove(m) {
			panic(fmt.Sprintf("constraint: match %s is missing from the indictment of %v", m, j))
		}
		if ind.matches.Len() == 0 {
			l.indictments.Delete(j)
			continue
		}
		ind.score = ind.score.Subtract(m.score)
	}
}

// Total returns the total of constraint id.
func (l *Ledger) Total(id ID) (*MatchTotal, bool) { return l.totals.Get(id) }

// Indictment returns the indictment of justification j.
func (l *Ledger) Indictment(j any) (*Indictment, bool) { return l.indictments.Get(j) }

// Totals returns the totals in creation order.
func (l *Ledger) Totals() []*MatchTotal { return l.totals.Values() }

// Indictments returns the indictments in creation order.
func (l *Ledger) Indictments() []*Indictment { return l.indictments.Values() }

// TotalMap returns a snapshot of the totals keyed by constraint id.
func (l *Ledger) TotalMap() map[ID]*MatchTotal {
	out := make(map[ID]*MatchTotal, l.totals.Len())
	for id, t := range l.totals.All() {
		out[id] = t
	}
	return out
}

// IndictmentMap returns a snapshot of the indictments keyed by justification.
func (l *Ledger) IndictmentMap() map[any]*Indictment {
	out := make(map[any]*Indictment, l.indictments.Len())
	for j, ind := range l.indictments.All() {
		out[j] = ind
	}
	return out
}

func distinct(items []any) []any {
	if len(items) < 2 {
		return items
	}
	seen := make(map[any]struct{}, len(items))
	out := make([]any, 0, len(items))
	for _, it := range items {
		if _, dup := seen[it]; dup {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}
