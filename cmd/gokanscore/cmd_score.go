package main

import (
	"fmt"

	"github.com/gitrdm/gokanscore/internal/problems"
	"github.com/gitrdm/gokanscore/pkg/session"
	"github.com/spf13/cobra"
)

func newScoreCmd() *cobra.Command {
	explain := true
	var opts *problemOptions
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Generate a problem, improve it with local search and explain its score",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			p, r, err := opts.newProblem(0)
			if err != nil {
				return err
			}
			f, err := opts.factory(ctx, p)
			if err != nil {
				return err
			}
			s, err := f.NewSession(ctx, session.WithConstraintMatchEnabled(explain))
			if err != nil {
				return err
			}
			if err := problems.Load(s, p); err != nil {
				return err
			}
			initial, err := s.CalculateScore(0)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Problem: %s (size %d, %s backend)\n", p.Name(), opts.size, s.Backend())
			fmt.Fprintf(out, "Initial score: %s\n", initial)

			if opts.steps > 0 {
				res, err := problems.Search(ctx, s, p, opts.steps, r)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "After %d steps (%d accepted): %s\n", res.Steps, res.Accepted, res.Score)
			}
			fmt.Fprintf(out, "\n%s\n", p)

			if explain {
				e, err := session.Explain(s, 0)
				if err != nil {
					return err
				}
				fmt.Fprint(out, e)
			}
			fmt.Fprintln(out, s.Stats())
			return nil
		},
	}
	opts = newProblemOptions(cmd, 1000)
	cmd.Flags().BoolVar(&explain, "explain", explain, "track constraint matches and print the explanation")
	return cmd
}
