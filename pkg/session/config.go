package session

import (
	"errors"
	"fmt"
	"os"

	"github.com/gitrdm/gokanscore/pkg/score"
	"github.com/gitrdm/gokanscore/pkg/scoreerr"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Backend selects the matching engine sessions run on.
type Backend string

const (
	// BackendBavet is the tuple propagation network.
	BackendBavet Backend = "bavet"
	// BackendRete compiles the constraints into rules for the rete engine.
	BackendRete Backend = "rete"
)

// DefaultConstraintPackage is the package of constraints when the
// configuration names none.
const DefaultConstraintPackage = "default"

// CustomScoreHolderEnv overrides Config.CustomScoreHolder when set.
const CustomScoreHolderEnv = "GOKANSCORE_CUSTOM_SCORE_HOLDER"

// ScoreConfig describes the score type. Level counts only apply to the
// bendable types.
type ScoreConfig struct {
	Type       score.Type `yaml:"type" validate:"required,oneof=simple simple_long simple_decimal hard_soft hard_soft_long hard_soft_decimal hard_medium_soft hard_medium_soft_long hard_medium_soft_decimal bendable bendable_long bendable_decimal"`
	HardLevels int        `yaml:"hard_levels" validate:"gte=0"`
	SoftLevels int        `yaml:"soft_levels" validate:"gte=0"`
}

// Config is the session factory configuration. It is fixed for the
// lifetime of the sessions built from it.
//
// # Fields
//
//   - Backend: "bavet" or "rete".
//   - ConstraintPackage: package of the constraints the provider builds.
//   - ConstraintMatchEnabled: track constraint matches and indictments.
//   - Score: the score type, plus level counts for bendable scores.
//   - ConstraintWeights: weights of configurable constraints keyed by
//     "package/name", in the score type's text form ("-1hard/0soft"). A
//     constraint with a fixed weight may be overridden here as well.
//   - CustomScoreHolder: name of a holder constructor registered with
//     WithRegistry, replacing the built-in holder of the score type.
type Config struct {
	Backend                Backend           `yaml:"backend" validate:"required,oneof=bavet rete"`
	ConstraintPackage      string            `yaml:"constraint_package" validate:"required"`
	ConstraintMatchEnabled bool              `yaml:"constraint_match_enabled"`
	Score                  ScoreConfig       `yaml:"score"`
	ConstraintWeights      map[string]string `yaml:"constraint_weights" validate:"dive,keys,required,endkeys,required"`
	CustomScoreHolder      string            `yaml:"custom_score_holder"`
}

var validate = validator.New()

// DefaultConfig returns a bavet configuration with a simple score and match
// tracking off.
func DefaultConfig() Config {
	return Config{
		Backend:           BackendBavet,
		ConstraintPackage: DefaultConstraintPackage,
		Score:             ScoreConfig{Type: score.TypeSimple},
	}
}

// LoadConfig reads a YAML configuration file. Missing keys keep their
// DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading session config %s: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML on top of DefaultConfig, applies the environment
// override and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, scoreerr.Wrap(scoreerr.ErrInvalidArgument, err, "session config is not valid YAML")
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv applies the environment overrides.
func (c *Config) ApplyEnv() {
	if name, ok := os.LookupEnv(CustomScoreHolderEnv); ok && name != "" {
		c.CustomScoreHolder = name
	}
}

// Validate checks the struct tags and the level counts of bendable scores.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fields validator.ValidationErrors
		if errors.As(err, &fields) && len(fields) > 0 {
			f := fields[0]
			return scoreerr.InvalidArgument("session config: %s fails %q (value %v)", f.Namespace(), f.Tag(), f.Value())
		}
		return scoreerr.Wrap(scoreerr.ErrInvalidArgument, err, "session config")
	}
	if c.Score.Type.IsBendable() && c.Score.HardLevels+c.Score.SoftLevels < 1 {
		return scoreerr.InvalidArgument("session config: bendable score needs at least one level, got %d hard and %d soft",
			c.Score.HardLevels, c.Score.SoftLevels)
	}
	return nil
}

// Definition returns the score definition the configuration describes.
func (c Config) Definition() (*score.Definition, error) {
	if c.Score.Type.IsBendable() {
		return score.NewBendableDefinition(c.Score.Type, c.Score.HardLevels, c.Score.SoftLevels)
	}
	return score.NewDefinition(c.Score.Type)
}
