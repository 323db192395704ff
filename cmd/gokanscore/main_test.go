package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/gitrdm/gokanscore/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "gokanscore "+session.Version)
}

func TestVersionShowsLinkerStamps(t *testing.T) {
	oldCommit, oldDate := gitCommit, buildDate
	t.Cleanup(func() { gitCommit, buildDate = oldCommit, oldDate })
	gitCommit, buildDate = "0123abc", "2026-10-19T08:00:00Z"

	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "commit: 0123abc")
	assert.Contains(t, out, "built: 2026-10-19T08:00:00Z")

	out, err = run(t, "version", "--json")
	require.NoError(t, err)
	var info session.VersionInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, session.Version, info.Version)
	assert.Equal(t, "0123abc", info.GitCommit)
	assert.Equal(t, "2026-10-19T08:00:00Z", info.BuildDate)
	assert.NotEmpty(t, info.GoVersion)
}

func TestScore(t *testing.T) {
	for _, backend := range []string{"bavet", "rete"} {
		t.Run(backend, func(t *testing.T) {
			out, err := run(t, "score", "--problem", "nqueens", "--size", "6", "--steps", "200", "--backend", backend)
			require.NoError(t, err)
			assert.Contains(t, out, "Problem: nqueens (size 6, "+backend+" backend)")
			assert.Contains(t, out, "Initial score: ")
			assert.Contains(t, out, "After ")
			assert.Contains(t, out, "Constraints:")
			assert.Contains(t, out, "Session Statistics:")
		})
	}
}

func TestScoreWithConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	cfg := "backend: rete\nconstraint_weights:\n  cloudbalancing/computer cost: \"0hard/2soft\"\n"
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))

	out, err := run(t, "score", "--config", path, "--problem", "cloudbalancing", "--size", "3", "--steps", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "rete backend")
	assert.Contains(t, out, "weight 0hard/2soft")
	assert.NotContains(t, out, "After ")
}

func TestBench(t *testing.T) {
	out, err := run(t, "bench", "--problem", "graphcoloring", "--workers", "3", "--steps", "50")
	require.NoError(t, err)
	assert.Contains(t, out, "3 workers")
	assert.Contains(t, out, "worker 2: ")
	assert.Contains(t, out, "moves/s")
}

func TestCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown problem", []string{"score", "--problem", "sudoku"}, "unknown problem"},
		{"unknown backend", []string{"score", "--backend", "clips"}, "session config"},
		{"missing config", []string{"score", "--config", "/nonexistent/session.yaml"}, "reading session config"},
		{"bad log level", []string{"--log-level", "loud", "version"}, "invalid --log-level"},
		{"bad log format", []string{"--log-format", "xml", "version"}, "invalid --log-format"},
		{"no workers", []string{"bench", "--workers", "0"}, "--workers must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
