package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/garyjia/swenshares/internal/application/dispatcher"
	"github.com/garyjia/swenshares/internal/application/port"
	"github.com/garyjia/swenshares/internal/domain/audit"
	"github.com/garyjia/swenshares/internal/domain/authz"
	"github.com/garyjia/swenshares/internal/domain/calc"
	"github.com/garyjia/swenshares/internal/domain/entity"
	"github.com/garyjia/swenshares/internal/domain/event"
	domainwf "github.com/garyjia/swenshares/internal/domain/workflow"
	"github.com/garyjia/swenshares/internal/metrics"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// serviceImpl is the concrete implementation of WorkflowService
type serviceImpl struct {
	records   port.RecordRepository
	audits    port.AuditRepository
	txManager port.TransactionManager
	gate      *authz.Gate
	recorder  *audit.Recorder

	dispatcher     dispatcher.Dispatcher
	metrics        *metrics.Metrics
	logger         Logger
	clearReviewers bool
	validate       func(entity.Record) error
}

// Option configures the workflow service
type Option func(*serviceImpl)

// WithDispatcher sets the event dispatcher for emitting events after commit
func WithDispatcher(d dispatcher.Dispatcher) Option {
	return func(s *serviceImpl) {
		s.dispatcher = d
	}
}

// WithMetrics records transition counters and latency
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *serviceImpl) {
		s.metrics = m
	}
}

// WithLogger sets the service logger
func WithLogger(l Logger) Option {
	return func(s *serviceImpl) {
		s.logger = l
	}
}

// WithClearReviewersOnResubmit resets ExaminedBy and ApprovedBy when a
// rejected record returns to SUBMITTED
func WithClearReviewersOnResubmit(clear bool) Option {
	return func(s *serviceImpl) {
		s.clearReviewers = clear
	}
}

// WithValidator checks a record's required fields again when it is
// resubmitted after a rejection
func WithValidator(v func(entity.Record) error) Option {
	return func(s *serviceImpl) {
		s.validate = v
	}
}

// NewService creates a new workflow service
func NewService(
	records port.RecordRepository,
	audits port.AuditRepository,
	txManager port.TransactionManager,
	gate *authz.Gate,
	recorder *audit.Recorder,
	opts ...Option,
) WorkflowService {
	s := &serviceImpl{
		records:   records,
		audits:    audits,
		txManager: txManager,
		gate:      gate,
		recorder:  recorder,
		logger:    nopLogger{},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Transition runs load, authorize, mutate, recalculate, persist and audit.
// Nothing is persisted unless every step succeeds.
func (s *serviceImpl) Transition(ctx context.Context, req TransitionRequest) (*Snapshot, error) {
	start := time.Now()
	snap, err := s.transition(ctx, req)
	s.metrics.ObserveTransition(req.Kind.String(), req.Target.String(), Outcome(err), start)

	if err != nil {
		s.logger.Error("Transition failed",
			"kind", req.Kind,
			"id", req.ID,
			"target", req.Target,
			"principal", req.Principal.Username,
			"error", err,
		)
	}
	return snap, err
}

func (s *serviceImpl) transition(ctx context.Context, req TransitionRequest) (*Snapshot, error) {
	fail := func(from domainwf.State, err error) (*Snapshot, error) {
		return nil, &TransitionError{Kind: req.Kind, ID: req.ID, From: from, To: req.Target, Err: err}
	}

	if !req.Target.IsValid() {
		return fail("", wrap(ErrIllegalTransition, domainwf.ErrInvalidState))
	}

	current, err := s.load(ctx, req.Kind, req.ID)
	if err != nil {
		return fail("", err)
	}
	from := current.Meta().State

	if err := s.gate.AuthorizeRecord(req.Kind, from, req.Target, current.Meta().CreatedBy, req.Principal); err != nil {
		if errors.Is(err, authz.ErrForbidden) {
			return fail(from, wrap(ErrUnauthorized, err))
		}
		return fail(from, wrap(ErrIllegalTransition, err))
	}

	next := current.Clone()
	s.apply(next, req.Target, req.Principal.Ref())

	if req.Target == domainwf.StateSubmitted && s.validate != nil {
		if err := s.validate(next); err != nil {
			return fail(from, wrap(ErrInvalidRecord, err))
		}
	}

	if err := calc.Recalculate(next); err != nil {
		return fail(from, wrap(ErrCalculationFailed, err))
	}

	action := domainwf.ActionFor(req.Target)
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.records.Save(txCtx, next); err != nil {
			return err
		}
		entry := s.recorder.Record(next, action, req.Principal.Ref(), req.Comment)
		return s.audits.Append(txCtx, req.Kind, req.ID, entry)
	})
	if err != nil {
		return fail(from, wrap(ErrStorage, err))
	}

	s.logger.Info("Record transitioned",
		"kind", req.Kind,
		"id", req.ID,
		"from", from,
		"to", req.Target,
		"principal", req.Principal.Username,
	)

	s.emit(ctx, next, from, action, req)
	return NewSnapshot(next), nil
}

// apply sets the new state and the reviewer matching it
func (s *serviceImpl) apply(rec entity.Record, target domainwf.State, actor authz.PrincipalRef) {
	m := rec.Meta()
	m.State = target

	switch target {
	case domainwf.StateExamined:
		m.ExaminedBy = &actor
	case domainwf.StateApproved, domainwf.StateRejected:
		m.ApprovedBy = &actor
	case domainwf.StateSubmitted:
		if s.clearReviewers {
			m.ExaminedBy = nil
			m.ApprovedBy = nil
		}
	}
}

func (s *serviceImpl) emit(ctx context.Context, rec entity.Record, from domainwf.State, action domainwf.Action, req TransitionRequest) {
	if s.dispatcher == nil {
		return
	}

	creator := rec.Meta().CreatedBy
	evt := event.New(event.ForAction(action), req.Kind.String(), req.ID, req.Principal.Ref().Key(), map[string]string{
		event.KeyFromState: from.String(),
		event.KeyToState:   req.Target.String(),
		event.KeyComment:   req.Comment,
		event.KeyCreatedBy: creator.Key(),
	})
	s.dispatcher.DispatchAsync(ctx, evt)
}

func (s *serviceImpl) load(ctx context.Context, kind domainwf.Kind, id string) (entity.Record, error) {
	if !kind.IsValid() {
		return nil, wrap(ErrNotFound, domainwf.ErrUnknownKind)
	}

	rec, err := s.records.Load(ctx, kind, id)
	if err != nil {
		if errors.Is(err, port.ErrNotFound) {
			return nil, wrap(ErrNotFound, err)
		}
		return nil, wrap(ErrStorage, err)
	}
	return rec, nil
}

func (s *serviceImpl) AvailableTransitions(ctx context.Context, kind domainwf.Kind, id string, p authz.Principal) ([]domainwf.State, error) {
	rec, err := s.loadVisible(ctx, kind, id, p)
	if err != nil {
		return nil, err
	}
	m := rec.Meta()
	return s.gate.Permitted(kind, m.State, m.CreatedBy, p), nil
}

func (s *serviceImpl) History(ctx context.Context, kind domainwf.Kind, id string, p authz.Principal) ([]entity.AuditEntry, error) {
	if _, err := s.loadVisible(ctx, kind, id, p); err != nil {
		return nil, err
	}

	entries, err := s.audits.ListByRecord(ctx, kind, id)
	if err != nil {
		return nil, wrap(ErrStorage, err)
	}
	return entries, nil
}

// loadVisible loads a record and hides it unless p may read it
func (s *serviceImpl) loadVisible(ctx context.Context, kind domainwf.Kind, id string, p authz.Principal) (entity.Record, error) {
	rec, err := s.load(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if !Visible(s.gate.RolesOf(p), p.Ref(), rec) {
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
	}
	return rec, nil
}
