// Package constraint holds the explainability ledger of the scoring core:
// constraint ids, constraint matches, per-constraint totals and per-fact
// indictments.
//
// A Match is one live activation of a constraint with its score
// contribution and justifying facts. Each match is owned by the MatchTotal of
// its constraint and listed under the Indictment of every distinct fact that
// justifies it. Totals live for the whole session even when they run empty;
// indictments disappear with their last match.
//
// Justifications are keyed by identity. Pointers to facts are the intended
// justification values; two distinct pointers to equal facts produce two
// indictments.
package constraint

import (
	"strings"

	"github.com/gitrdm/gokanscore/pkg/score"
	"github.com/gitrdm/gokanscore/pkg/scoreerr"
)

// ID identifies a constraint by package and name.
type ID struct {
	Package string
	Name    string
}

// NewID returns the id of constraint name in package pkg.
func NewID(pkg, name string) ID {
	return ID{Package: pkg, Name: name}
}

// ParseID parses "package/name". The name is the text after the last slash.
func ParseID(text string) (ID, error) {
	i := strings.LastIndex(text, "/")
	if i <= 0 || i == len(text)-1 {
		return ID{}, scoreerr.InvalidArgument("constraint id (%s) is not of the form package/name", text)
	}
	return ID{Package: text[:i], Name: text[i+1:]}, nil
}

func (id ID) String() string {
	return id.Package + "/" + id.Name
}

// Match is one live activation of a constraint.
type Match struct {
	id             ID
	justifications []any
	score          score.Score
}

func (m *Match) ConstraintID() ID { return m.id }

// Justifications returns the facts behind the match in firing order.
func (m *Match) Justifications() []any {
	out := make([]any, len(m.justifications))
	copy(out, m.justifications)
	return out
}

// Score returns the score contribution of the match.
func (m *Match) Score() score.Score { return m.score }

func (m *Match) String() string {
	return m.id.String() + "=" + m.score.String()
}
