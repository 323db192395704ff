package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/gitrdm/gokanscore/internal/problems"
	"github.com/gitrdm/gokanscore/pkg/session"
	"github.com/spf13/cobra"
)

// problemOptions holds the flags that pick and configure a problem. Each
// command has its own.
type problemOptions struct {
	configPath string
	backend    string
	problem    string
	size       int
	seed       uint64
	steps      int
}

func newRootCmd() *cobra.Command {
	var logLevel, logFormat string
	root := &cobra.Command{
		Use:           "gokanscore",
		Short:         "Incremental constraint scoring",
		Long:          `gokanscore scores planning problems with the bavet tuple network or the rete rule engine.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(cmd.ErrOrStderr(), logLevel, logFormat)
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text or json")

	root.AddCommand(newScoreCmd(), newBenchCmd(), newVersionCmd())
	return root
}

func newProblemOptions(cmd *cobra.Command, steps int) *problemOptions {
	opts := &problemOptions{}
	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "session configuration YAML file")
	f.StringVar(&opts.backend, "backend", "", "scoring backend, bavet or rete (overrides the config file)")
	f.StringVar(&opts.problem, "problem", "nqueens", "problem: "+strings.Join(problems.Names(), ", "))
	f.IntVar(&opts.size, "size", 8, "problem size")
	f.Uint64Var(&opts.seed, "seed", 1, "random seed")
	f.IntVar(&opts.steps, "steps", steps, "local search steps")
	return opts
}

func setupLogging(w io.Writer, level, format string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", level, err)
	}
	hopts := &slog.HandlerOptions{Level: lvl}
	switch format {
	case "text":
		slog.SetDefault(slog.New(slog.NewTextHandler(w, hopts)))
	case "json":
		slog.SetDefault(slog.New(slog.NewJSONHandler(w, hopts)))
	default:
		return fmt.Errorf("invalid --log-format %q: want text or json", format)
	}
	return nil
}

// sessionConfig loads the config file, if any, and applies the problem and
// the backend flag.
func (o *problemOptions) sessionConfig(p problems.Problem) (session.Config, error) {
	cfg := session.DefaultConfig()
	if o.configPath != "" {
		loaded, err := session.LoadConfig(o.configPath)
		if err != nil {
			return session.Config{}, err
		}
		cfg = loaded
	} else {
		cfg.ApplyEnv()
	}
	if o.backend != "" {
		cfg.Backend = session.Backend(o.backend)
	}
	cfg = problems.Configure(cfg, p)
	return cfg, cfg.Validate()
}

// newProblem generates the selected problem with the seed of worker.
func (o *problemOptions) newProblem(worker int) (problems.Problem, *rand.Rand, error) {
	r := rand.New(rand.NewPCG(o.seed, uint64(worker)))
	p, err := problems.New(o.problem, o.size, r)
	return p, r, err
}

func (o *problemOptions) factory(ctx context.Context, p problems.Problem) (*session.Factory, error) {
	cfg, err := o.sessionConfig(p)
	if err != nil {
		return nil, err
	}
	return session.NewFactory(ctx, cfg, p.Provider(), session.WithLogger(slog.Default()))
}

func newVersionCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the library version and build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			info := versionInfo()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}
			fmt.Fprintf(out, "gokanscore %s (%s)\n", info.Version, info.GoVersion)
			if info.GitCommit != "" {
				dirty := ""
				if info.Modified {
					dirty = " (modified)"
				}
				fmt.Fprintf(out, "commit: %s%s\n", info.GitCommit, dirty)
			}
			if info.BuildDate != "" {
				fmt.Fprintf(out, "built: %s\n", info.BuildDate)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the build information as JSON")
	return cmd
}

// versionInfo overlays the linker-stamped build metadata on the library's.
func versionInfo() session.VersionInfo {
	info := session.GetVersionInfo()
	if gitCommit != "" {
		info.GitCommit = gitCommit
	}
	if buildDate != "" {
		info.BuildDate = buildDate
	}
	return info
}
