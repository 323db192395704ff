package problems

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/gitrdm/gokanscore/pkg/score"
	"github.com/gitrdm/gokanscore/pkg/session"
	"github.com/gitrdm/gokanscore/pkg/stream"
)

// Queen sits in its own column; the row is the planning variable.
type Queen struct {
	ID     int
	Column int
	Row    int
}

func (q *Queen) String() string { return fmt.Sprintf("queen %d", q.ID) }

func queenID(q *Queen) int { return q.ID }

// Queens is an n-queens board.
type Queens struct {
	N      int
	Queens []*Queen
}

// NewQueens places one queen per column on random rows.
func NewQueens(n int, r *rand.Rand) *Queens {
	b := &Queens{N: n}
	for col := range n {
		b.Queens = append(b.Queens, &Queen{ID: col, Column: col, Row: r.IntN(n)})
	}
	return b
}

func (b *Queens) Name() string { return "nqueens" }

func (b *Queens) Score() session.ScoreConfig {
	return session.ScoreConfig{Type: score.TypeSimple}
}

func (b *Queens) Weights() map[string]string { return nil }

// Provider penalizes every pair of queens sharing a row or a diagonal.
func (b *Queens) Provider() stream.Provider {
	return QueensConstraints
}

// QueensConstraints are the n-queens constraints.
func QueensConstraints(f *stream.Factory) []*stream.Constraint {
	on := func(key func(*Queen) int) *stream.Joiner { return stream.EqualOn(key, key) }
	return []*stream.Constraint{
		stream.ForEachUniquePair(f, queenID, on(func(q *Queen) int { return q.Row })).
			Penalize("row conflict", score.OfSimple(1)),
		stream.ForEachUniquePair(f, queenID, on(func(q *Queen) int { return q.Row - q.Column })).
			Penalize("ascending diagonal conflict", score.OfSimple(1)),
		stream.ForEachUniquePair(f, queenID, on(func(q *Queen) int { return q.Row + q.Column })).
			Penalize("descending diagonal conflict", score.OfSimple(1)),
	}
}

func (b *Queens) Facts() []any {
	facts := make([]any, len(b.Queens))
	for i, q := range b.Queens {
		facts[i] = q
	}
	return facts
}

// RandomMove moves a random queen to another row.
func (b *Queens) RandomMove(r *rand.Rand) Move {
	q := b.Queens[r.IntN(len(b.Queens))]
	from := q.Row
	to := from
	if b.N > 1 {
		to = (from + 1 + r.IntN(b.N-1)) % b.N
	}
	return Move{
		Entity: q,
		do:     func() { q.Row = to },
		undo:   func() { q.Row = from },
	}
}

func (b *Queens) String() string {
	var sb strings.Builder
	for row := range b.N {
		for col := range b.N {
			if b.Queens[col].Row == row {
				sb.WriteString("Q ")
			} else {
				sb.WriteString(". ")
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
