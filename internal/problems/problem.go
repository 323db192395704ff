// Package problems holds the demo planning problems the CLI and the
// examples score: n-queens, graph coloring and cloud balancing. Each comes
// with its constraints, a generator and a random move, which is all a toy
// local search needs.
package problems

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/gitrdm/gokanscore/pkg/score"
	"github.com/gitrdm/gokanscore/pkg/session"
	"github.com/gitrdm/gokanscore/pkg/stream"
)

// Problem is one generated instance. Instances are mutated by moves, so
// every session replica needs its own.
type Problem interface {
	// Name is also the constraint package.
	Name() string
	Score() session.ScoreConfig
	Provider() stream.Provider
	// Weights are the default weights of the configurable constraints.
	Weights() map[string]string
	Facts() []any
	// RandomMove changes one planning variable.
	RandomMove(r *rand.Rand) Move
	String() string
}

// Move is a change of one planning entity that can be reverted.
type Move struct {
	Entity any
	do     func()
	undo   func()
}

// Generator builds an instance of a problem with the given size.
type Generator func(size int, r *rand.Rand) Problem

var generators = map[string]Generator{
	"nqueens":        func(size int, r *rand.Rand) Problem { return NewQueens(size, r) },
	"graphcoloring":  func(size int, r *rand.Rand) Problem { return NewColoring(size, r) },
	"cloudbalancing": func(size int, r *rand.Rand) Problem { return NewCloud(size, r) },
}

// Names returns the registered problem names, sorted.
func Names() []string {
	names := make([]string, 0, len(generators))
	for name := range generators {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// New generates the named problem.
func New(name string, size int, r *rand.Rand) (Problem, error) {
	g, ok := generators[name]
	if !ok {
		return nil, fmt.Errorf("unknown problem %q (known: %v)", name, Names())
	}
	if size < 1 {
		return nil, fmt.Errorf("problem size must be positive, got %d", size)
	}
	return g(size, r), nil
}

// Configure copies the problem's package, score type and default weights
// into cfg. Weights already in cfg win.
func Configure(cfg session.Config, p Problem) session.Config {
	cfg.ConstraintPackage = p.Name()
	cfg.Score = p.Score()
	weights := make(map[string]string, len(p.Weights())+len(cfg.ConstraintWeights))
	for k, v := range p.Weights() {
		weights[k] = v
	}
	for k, v := range cfg.ConstraintWeights {
		weights[k] = v
	}
	cfg.ConstraintWeights = weights
	return cfg
}

// Load inserts every fact of p into s.
func Load(s session.Session, p Problem) error {
	for _, f := range p.Facts() {
		if err := s.Insert(f); err != nil {
			return err
		}
	}
	return nil
}

// Unload retracts every fact of p from s, leaving it empty for the next
// instance.
func Unload(s session.Session, p Problem) error {
	for _, f := range p.Facts() {
		if err := s.Retract(f); err != nil {
			return err
		}
	}
	return nil
}

// Result summarizes a search.
type Result struct {
	Score    score.Score
	Steps    int
	Accepted int
}

// Search hill-climbs from the current state of p, loaded into s. Each step
// applies a random move and keeps it unless the score gets worse. It stops
// after steps moves, when ctx is done or once the score is zero.
func Search(ctx context.Context, s session.Session, p Problem, steps int, r *rand.Rand) (Result, error) {
	current, err := s.CalculateScore(0)
	if err != nil {
		return Result{}, err
	}
	res := Result{Score: current}
	for res.Steps < steps && !current.IsZero() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Steps++
		m := p.RandomMove(r)
		m.do()
		if err := s.Update(m.Entity); err != nil {
			return res, err
		}
		next, err := s.CalculateScore(0)
		if err != nil {
			return res, err
		}
		if next.CompareTo(current) >= 0 {
			current = next
			res.Accepted++
			continue
		}
		m.undo()
		if err := s.Update(m.Entity); err != nil {
			return res, err
		}
	}
	// The last calculation may have been a rejected move.
	res.Score, err = s.CalculateScore(0)
	return res, err
}
