package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/gitrdm/gokanscore/internal/parallel"
	"github.com/gitrdm/gokanscore/internal/problems"
	"github.com/gitrdm/gokanscore/pkg/score"
	"github.com/gitrdm/gokanscore/pkg/session"
	"github.com/spf13/cobra"
)

func newBenchCmd() *cobra.Command {
	workers := runtime.NumCPU()
	var opts *problemOptions
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run local search on replicated sessions and report moves per second",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if workers < 1 {
				return fmt.Errorf("--workers must be positive, got %d", workers)
			}
			ctx := cmd.Context()

			// Every worker owns its problem instance and its session.
			instances := make([]problems.Problem, workers)
			rngs := make([]*rand.Rand, workers)
			for i := range instances {
				p, r, err := opts.newProblem(i)
				if err != nil {
					return err
				}
				instances[i], rngs[i] = p, r
			}
			f, err := opts.factory(ctx, instances[0])
			if err != nil {
				return err
			}
			replicas, err := parallel.Replicate(ctx, workers, func(ctx context.Context, _ int) (session.Session, error) {
				return f.NewSession(ctx, session.WithConstraintMatchEnabled(false))
			})
			if err != nil {
				return err
			}

			var moves atomic.Int64
			best := make([]score.Score, workers)
			start := time.Now()
			err = parallel.Each(ctx, replicas, func(ctx context.Context, worker int, s session.Session) error {
				p := instances[worker]
				if err := problems.Load(s, p); err != nil {
					return err
				}
				res, err := problems.Search(ctx, s, p, opts.steps, rngs[worker])
				moves.Add(int64(res.Steps))
				best[worker] = res.Score
				return err
			})
			elapsed := time.Since(start)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Problem: %s (size %d, %s backend, %d workers)\n", opts.problem, opts.size, f.Config().Backend, workers)
			for i, sc := range best {
				fmt.Fprintf(out, "  worker %d: %s\n", i, sc)
			}
			rate := float64(moves.Load()) / elapsed.Seconds()
			fmt.Fprintf(out, "%d moves in %v (%.0f moves/s)\n", moves.Load(), elapsed.Round(time.Millisecond), rate)
			return nil
		},
	}
	opts = newProblemOptions(cmd, 2000)
	cmd.Flags().IntVar(&workers, "workers", workers, "number of replicated sessions")
	return cmd
}
