package session

import (
	"context"

	"github.com/gitrdm/gokanscore/pkg/bavet"
	"github.com/gitrdm/gokanscore/pkg/constraint"
	"github.com/gitrdm/gokanscore/pkg/score"
	"github.com/gitrdm/gokanscore/pkg/scoreholder"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Session is the working memory of one scoring run. Sessions are not safe
// for concurrent use; parallel search uses one session per goroutine.
type Session interface {
	ID() uuid.UUID
	Backend() Backend

	// Insert, Update and Retract notify the session of fact changes. Facts
	// are matched by their dynamic type and identified by ==.
	Insert(fact any) error
	Update(fact any) error
	Retract(fact any) error

	// CalculateScore brings the score up to date with every fact change
	// and returns it with initScore.
	CalculateScore(initScore int) (score.Score, error)

	ConstraintMatchEnabled() bool
	// ConstraintMatchTotals and Indictments reflect the last calculation.
	// They fail with scoreerr.ErrInvalidState when match tracking is off.
	ConstraintMatchTotals() (map[constraint.ID]*constraint.MatchTotal, error)
	Indictments() (map[any]*constraint.Indictment, error)

	// Holder returns the score accumulator the backend reports to.
	Holder() scoreholder.Holder
	Stats() Stats
}

// engine is what both backends provide.
type engine interface {
	Insert(fact any) error
	Update(fact any) error
	Retract(fact any) error
	CalculateScore(initScore int) (score.Score, error)
}

// SessionOption configures one session.
type SessionOption func(*sessionOptions)

type sessionOptions struct {
	matchEnabled bool
	monitor      *Monitor
}

// WithConstraintMatchEnabled overrides Config.ConstraintMatchEnabled for
// one session.
func WithConstraintMatchEnabled(enabled bool) SessionOption {
	return func(o *sessionOptions) { o.matchEnabled = enabled }
}

// WithMonitor makes the session record its statistics in m.
func WithMonitor(m *Monitor) SessionOption {
	return func(o *sessionOptions) { o.monitor = m }
}

// NewSession builds an empty session on the configured backend.
func (f *Factory) NewSession(ctx context.Context, opts ...SessionOption) (Session, error) {
	_, span := tracer.Start(ctx, "session.NewSession",
		trace.WithAttributes(attribute.Int("session.constraints", len(f.constraints))))
	defer span.End()

	s, err := f.newSession(opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.String("session.id", s.id.String()),
		attribute.String("session.backend", string(s.backend)),
	)
	span.SetStatus(codes.Ok, "")
	sessionsBuilt.WithLabelValues(string(s.backend)).Inc()
	f.logger.Info("session built",
		"session_id", s.id.String(),
		"backend", string(s.backend),
		"constraints", len(f.constraints),
		"constraint_match_enabled", s.holder.ConstraintMatchEnabled())
	return s, nil
}

func (f *Factory) newSession(opts []SessionOption) (*scoreSession, error) {
	o := sessionOptions{matchEnabled: f.cfg.ConstraintMatchEnabled}
	for _, opt := range opts {
		opt(&o)
	}
	if o.monitor == nil {
		o.monitor = NewMonitor()
	}
	h, err := scoreholder.New(f.def, o.matchEnabled, f.registry, f.cfg.CustomScoreHolder)
	if err != nil {
		return nil, err
	}
	for _, c := range f.constraints {
		if err := h.ConfigureConstraintWeight(c.ID(), f.weights[c.ID()]); err != nil {
			return nil, err
		}
	}
	var e engine
	switch f.cfg.Backend {
	case BackendRete:
		e, err = f.rules.NewSession(h)
	default:
		e, err = bavet.NewSession(f.constraints, h)
	}
	if err != nil {
		return nil, err
	}
	return &scoreSession{
		id:      uuid.New(),
		backend: f.cfg.Backend,
		engine:  e,
		holder:  h,
		monitor: o.monitor,
	}, nil
}

type scoreSession struct {
	id      uuid.UUID
	backend Backend
	engine  engine
	holder  scoreholder.Holder
	monitor *Monitor
}

func (s *scoreSession) ID() uuid.UUID    { return s.id }
func (s *scoreSession) Backend() Backend { return s.backend }
func (s *scoreSession) Stats() Stats     { return s.monitor.Stats() }

func (s *scoreSession) Holder() scoreholder.Holder { return s.holder }

func (s *scoreSession) ConstraintMatchEnabled() bool { return s.holder.ConstraintMatchEnabled() }

func (s *scoreSession) Insert(fact any) error {
	if err := s.engine.Insert(fact); err != nil {
		return err
	}
	s.monitor.RecordInsert()
	factOperations.WithLabelValues(string(s.backend), "insert").Inc()
	return nil
}

func (s *scoreSession) Update(fact any) error {
	if err := s.engine.Update(fact); err != nil {
		return err
	}
	s.monitor.RecordUpdate()
	factOperations.WithLabelValues(string(s.backend), "update").Inc()
	return nil
}

func (s *scoreSession) Retract(fact any) error {
	if err := s.engine.Retract(fact); err != nil {
		return err
	}
	s.monitor.RecordRetract()
	factOperations.WithLabelValues(string(s.backend), "retract").Inc()
	return nil
}

func (s *scoreSession) CalculateScore(initScore int) (score.Score, error) {
	start := s.monitor.StartCalculation()
	sc, err := s.engine.CalculateScore(initScore)
	d := s.monitor.EndCalculation(start, err)
	result := "ok"
	if err != nil {
		result = "error"
	}
	calculations.WithLabelValues(string(s.backend), result).Inc()
	calculationDuration.WithLabelValues(string(s.backend)).Observe(d.Seconds())
	return sc, err
}

func (s *scoreSession) ConstraintMatchTotals() (map[constraint.ID]*constraint.MatchTotal, error) {
	return s.holder.ConstraintMatchTotals()
}

func (s *scoreSession) Indictments() (map[any]*constraint.Indictment, error) {
	return s.holder.Indictments()
}
