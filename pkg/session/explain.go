package session

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gitrdm/gokanscore/pkg/constraint"
	"github.com/gitrdm/gokanscore/pkg/score"
)

// TotalSummary is one constraint of an Explanation.
type TotalSummary struct {
	ID         constraint.ID
	Weight     score.Score
	Score      score.Score
	MatchCount int
}

// IndictmentSummary is one justification of an Explanation.
type IndictmentSummary struct {
	Justification any
	Score         score.Score
	MatchCount    int
}

// Explanation breaks a score down by constraint and by justification.
// Entries are sorted worst score first; ties are ordered by name.
// Constraints without matches are left out.
type Explanation struct {
	Score       score.Score
	Totals      []TotalSummary
	Indictments []IndictmentSummary
}

// Explain calculates the score of s and explains it. It needs a session
// with constraint match tracking enabled.
func Explain(s Session, initScore int) (*Explanation, error) {
	sc, err := s.CalculateScore(initScore)
	if err != nil {
		return nil, err
	}
	ledger, err := s.Holder().Ledger()
	if err != nil {
		return nil, err
	}

	// The ledger lists entries in first-match order; stable sorting keeps
	// that order among equal scores and names.
	e := &Explanation{Score: sc}
	for _, t := range ledger.Totals() {
		if t.MatchCount() == 0 {
			continue
		}
		e.Totals = append(e.Totals, TotalSummary{ID: t.ConstraintID(), Weight: t.Weight(), Score: t.Score(), MatchCount: t.MatchCount()})
	}
	slices.SortStableFunc(e.Totals, func(a, b TotalSummary) int {
		if c := a.Score.CompareTo(b.Score); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	for _, ind := range ledger.Indictments() {
		e.Indictments = append(e.Indictments, IndictmentSummary{Justification: ind.Justification(), Score: ind.Score(), MatchCount: ind.MatchCount()})
	}
	slices.SortStableFunc(e.Indictments, func(a, b IndictmentSummary) int {
		if c := a.Score.CompareTo(b.Score); c != 0 {
			return c
		}
		return strings.Compare(fmt.Sprint(a.Justification), fmt.Sprint(b.Justification))
	})
	return e, nil
}

// String renders the explanation as an indented report.
func (e *Explanation) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Score: %s\n", e.Score)
	b.WriteString("Constraints:\n")
	for _, t := range e.Totals {
		fmt.Fprintf(&b, "  %-40s %12s  (%d matches, weight %s)\n", t.ID, t.Score, t.MatchCount, t.Weight)
	}
	b.WriteString("Indictments:\n")
	for _, i := range e.Indictments {
		fmt.Fprintf(&b, "  %-40v %12s  (%d matches)\n", i.Justification, i.Score, i.MatchCount)
	}
	return b.String()
}
