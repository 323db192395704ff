package session

import (
	"context"
	"log/slog"

	"github.com/gitrdm/gokanscore/pkg/constraint"
	"github.com/gitrdm/gokanscore/pkg/rulecompiler"
	"github.com/gitrdm/gokanscore/pkg/score"
	"github.com/gitrdm/gokanscore/pkg/scoreerr"
	"github.com/gitrdm/gokanscore/pkg/scoreholder"
	"github.com/gitrdm/gokanscore/pkg/stream"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Option configures a Factory.
type Option func(*Factory)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(f *Factory) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithRegistry sets the registry Config.CustomScoreHolder is looked up in.
func WithRegistry(r *scoreholder.Registry) Option {
	return func(f *Factory) { f.registry = r }
}

// Factory assembles the constraints of a provider once and builds any
// number of independent sessions from them.
type Factory struct {
	cfg         Config
	def         *score.Definition
	constraints []*stream.Constraint
	weights     map[constraint.ID]score.Score
	rules       *rulecompiler.RuleBase
	logger      *slog.Logger
	registry    *scoreholder.Registry
}

// NewFactory validates cfg, builds the constraints of provider and resolves
// their weights. Every stream error, duplicate constraint id and weight
// problem is reported here. Constraints whose weight is zero are dropped.
func NewFactory(ctx context.Context, cfg Config, provider stream.Provider, opts ...Option) (*Factory, error) {
	_, span := tracer.Start(ctx, "session.NewFactory")
	defer span.End()

	f, err := newFactory(cfg, provider, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.String("session.backend", string(cfg.Backend)),
		attribute.String("session.score_type", string(cfg.Score.Type)),
		attribute.Int("session.constraints", len(f.constraints)),
	)
	span.SetStatus(codes.Ok, "")
	return f, nil
}

func newFactory(cfg Config, provider stream.Provider, opts []Option) (*Factory, error) {
	f := &Factory{cfg: cfg, logger: slog.Default(), weights: make(map[constraint.ID]score.Score)}
	for _, opt := range opts {
		opt(f)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, scoreerr.InvalidArgument("constraint provider is nil")
	}
	def, err := cfg.Definition()
	if err != nil {
		return nil, err
	}
	f.def = def

	configured, err := f.configuredWeights()
	if err != nil {
		return nil, err
	}
	seen := make(map[constraint.ID]bool)
	for _, c := range provider(stream.NewFactory(cfg.ConstraintPackage)) {
		if c == nil {
			return nil, scoreerr.InvalidArgument("constraint provider returned a nil constraint")
		}
		if err := c.Err(); err != nil {
			return nil, err
		}
		if seen[c.ID()] {
			return nil, scoreerr.InvalidArgument("constraint (%s) is defined twice", c.ID())
		}
		seen[c.ID()] = true
		w, err := f.weight(c, configured)
		if err != nil {
			return nil, err
		}
		if w.IsZero() {
			f.logger.Debug("constraint disabled by zero weight", "constraint", c.ID().String())
			continue
		}
		f.logger.Debug("constraint configured", "constraint", c.ID().String(), "weight", w.String(), "impact", c.ImpactType().String())
		f.weights[c.ID()] = w
		f.constraints = append(f.constraints, c)
	}
	for id := range configured {
		if !seen[id] {
			return nil, scoreerr.InvalidArgument("constraint_weights names unknown constraint (%s)", id)
		}
	}

	if cfg.Backend == BackendRete {
		rules, err := rulecompiler.Compile(f.constraints)
		if err != nil {
			return nil, err
		}
		f.rules = rules
	}
	return f, nil
}

func (f *Factory) configuredWeights() (map[constraint.ID]score.Score, error) {
	out := make(map[constraint.ID]score.Score, len(f.cfg.ConstraintWeights))
	for key, text := range f.cfg.ConstraintWeights {
		id, err := constraint.ParseID(key)
		if err != nil {
			return nil, err
		}
		w, err := f.def.Parse(text)
		if err != nil {
			return nil, scoreerr.Wrap(scoreerr.ErrInvalidArgument, err, "constraint (%s) weight %q", id, text)
		}
		out[id] = w
	}
	return out, nil
}

func (f *Factory) weight(c *stream.Constraint, configured map[constraint.ID]score.Score) (score.Score, error) {
	w, ok := configured[c.ID()]
	if !ok {
		w = c.Weight()
	}
	if w == nil {
		return nil, scoreerr.InvalidState("constraint (%s) is configurable but constraint_weights has no weight for it", c.ID())
	}
	if !f.def.IsCompatible(w) {
		return nil, scoreerr.InvalidArgument("constraint (%s) weight (%s) does not fit score definition %s", c.ID(), w, f.def)
	}
	if err := c.CheckWeight(w); err != nil {
		return nil, err
	}
	return w, nil
}

// Config returns the configuration the factory was built with.
func (f *Factory) Config() Config { return f.cfg }

// Definition returns the score definition.
func (f *Factory) Definition() *score.Definition { return f.def }

// Constraints returns the active constraints, in provider order.
func (f *Factory) Constraints() []*stream.Constraint {
	return append([]*stream.Constraint(nil), f.constraints...)
}

// Weight returns the resolved weight of an active constraint.
func (f *Factory) Weight(id constraint.ID) (score.Score, bool) {
	w, ok := f.weights[id]
	return w, ok
}
