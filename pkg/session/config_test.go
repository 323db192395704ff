package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gitrdm/gokanscore/pkg/score"
	"github.com/gitrdm/gokanscore/pkg/scoreerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bendableYAML = `
backend: rete
constraint_package: test
constraint_match_enabled: true
score:
  type: bendable
  hard_levels: 1
  soft_levels: 2
constraint_weights:
  test/property: "[0]hard/[2/0]soft"
`

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(bendableYAML))
	require.NoError(t, err)

	assert.Equal(t, BackendRete, cfg.Backend)
	assert.Equal(t, "test", cfg.ConstraintPackage)
	assert.True(t, cfg.ConstraintMatchEnabled)
	assert.Equal(t, ScoreConfig{Type: score.TypeBendable, HardLevels: 1, SoftLevels: 2}, cfg.Score)
	assert.Equal(t, map[string]string{"test/property": "[0]hard/[2/0]soft"}, cfg.ConstraintWeights)

	def, err := cfg.Definition()
	require.NoError(t, err)
	assert.Equal(t, 3, def.LevelsSize())
}

func TestParseConfigKeepsDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte("backend: rete\n"))
	require.NoError(t, err)

	want := DefaultConfig()
	want.Backend = BackendRete
	assert.Equal(t, want, cfg)
}

func TestParseConfigRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"not yaml", "backend: [rete"},
		{"unknown backend", "backend: clips\n"},
		{"unknown score type", "score:\n  type: hard_soft_float\n"},
		{"empty package", "constraint_package: \"\"\n"},
		{"negative levels", "score:\n  type: bendable\n  hard_levels: -1\n  soft_levels: 2\n"},
		{"bendable without levels", "score:\n  type: bendable_long\n"},
		{"empty weight", "constraint_weights:\n  test/property: \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.yaml))
			require.Error(t, err)
			assert.ErrorIs(t, err, scoreerr.ErrInvalidArgument)
		})
	}
}

func TestCustomScoreHolderFromEnvironment(t *testing.T) {
	t.Setenv(CustomScoreHolderEnv, "audited")

	cfg, err := ParseConfig([]byte("custom_score_holder: plain\n"))
	require.NoError(t, err)
	assert.Equal(t, "audited", cfg.CustomScoreHolder)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	require.NoError(t, os.WriteFile(path, []byte(bendableYAML), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, score.TypeBendable, cfg.Score.Type)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
