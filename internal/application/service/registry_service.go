package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/garyjia/swenshares/internal/application/dispatcher"
	"github.com/garyjia/swenshares/internal/application/port"
	appwf "github.com/garyjia/swenshares/internal/application/workflow"
	"github.com/garyjia/swenshares/internal/domain/audit"
	"github.com/garyjia/swenshares/internal/domain/authz"
	"github.com/garyjia/swenshares/internal/domain/calc"
	"github.com/garyjia/swenshares/internal/domain/entity"
	"github.com/garyjia/swenshares/internal/domain/event"
	"github.com/garyjia/swenshares/internal/domain/workflow"
	"github.com/garyjia/swenshares/internal/metrics"
	"github.com/garyjia/swenshares/pkg/utils"
)

// RegistryService creates and reads registry records
type RegistryService interface {
	// Create stores a new record in SUBMITTED state owned by p
	Create(ctx context.Context, rec entity.Record, p authz.Principal) (*appwf.Snapshot, error)

	// Get returns one record. Records p may not see are reported as not found.
	Get(ctx context.Context, kind workflow.Kind, id string, p authz.Principal) (*appwf.Snapshot, error)

	// List returns the records of kind visible to p
	List(ctx context.Context, kind workflow.Kind, p authz.Principal, limit, offset int) ([]*appwf.Snapshot, error)
}

type registryServiceImpl struct {
	records    port.RecordRepository
	audits     port.AuditRepository
	txManager  port.TransactionManager
	authority  authz.RoleAuthority
	recorder   *audit.Recorder
	dispatcher dispatcher.Dispatcher
	metrics    *metrics.Metrics
	logger     Logger
}

// NewRegistryService creates a new RegistryService. dispatcher and m may be nil.
func NewRegistryService(
	records port.RecordRepository,
	audits port.AuditRepository,
	txManager port.TransactionManager,
	authority authz.RoleAuthority,
	recorder *audit.Recorder,
	d dispatcher.Dispatcher,
	m *metrics.Metrics,
	logger Logger,
) RegistryService {
	return &registryServiceImpl{
		records:    records,
		audits:     audits,
		txManager:  txManager,
		authority:  authority,
		recorder:   recorder,
		dispatcher: d,
		metrics:    m,
		logger:     logger,
	}
}

func (s *registryServiceImpl) Create(ctx context.Context, rec entity.Record, p authz.Principal) (*appwf.Snapshot, error) {
	if err := requireRole(s.authority, p, authz.RoleEditor); err != nil {
		return nil, err
	}
	if !rec.Kind().IsValid() {
		return nil, fmt.Errorf("%w: %w", appwf.ErrNotFound, workflow.ErrUnknownKind)
	}

	if err := ValidateRecord(rec); err != nil {
		return nil, err
	}

	if rec.RecordID() == "" {
		rec.SetRecordID(uuid.NewString())
	}
	meta := rec.Meta()
	*meta = entity.Workflow{
		State:     workflow.StateSubmitted,
		CreatedBy: p.Ref(),
	}

	if err := calc.Recalculate(rec); err != nil {
		return nil, fmt.Errorf("%w: %w", appwf.ErrCalculationFailed, err)
	}

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.records.Create(txCtx, rec); err != nil {
			return err
		}
		entry := s.recorder.Record(rec, workflow.ActionSubmitted, p.Ref(), "")
		return s.audits.Append(txCtx, rec.Kind(), rec.RecordID(), entry)
	})
	if err != nil {
		s.logger.Error("Failed to create record", "kind", rec.Kind(), "id", rec.RecordID(), "error", err)
		return nil, fmt.Errorf("%w: %w", appwf.ErrStorage, err)
	}

	s.logger.Info("Record created", "kind", rec.Kind(), "id", rec.RecordID(), "created_by", p.Username)
	s.metrics.IncrementRecordCreated(rec.Kind().String())

	if s.dispatcher != nil {
		s.dispatcher.DispatchAsync(ctx, event.New(event.TypeRecordCreated, rec.Kind().String(), rec.RecordID(), p.Ref().Key(),
			map[string]string{event.KeyCreatedBy: p.Ref().Key(), event.KeyToState: workflow.StateSubmitted.String()}))
	}
	return appwf.NewSnapshot(rec), nil
}

func (s *registryServiceImpl) Get(ctx context.Context, kind workflow.Kind, id string, p authz.Principal) (*appwf.Snapshot, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %w", appwf.ErrNotFound, workflow.ErrUnknownKind)
	}
	rec, err := s.records.Load(ctx, kind, id)
	if err != nil {
		return nil, storageErr(err)
	}
	if !appwf.Visible(s.authority.RolesOf(p), p.Ref(), rec) {
		return nil, fmt.Errorf("%w: %s %s", appwf.ErrNotFound, kind, id)
	}
	return appwf.NewSnapshot(rec), nil
}

func (s *registryServiceImpl) List(ctx context.Context, kind workflow.Kind, p authz.Principal, limit, offset int) ([]*appwf.Snapshot, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %w", appwf.ErrNotFound, workflow.ErrUnknownKind)
	}

	filter, ok := appwf.VisibilityFilter(s.authority.RolesOf(p), p.Ref())
	if !ok {
		return []*appwf.Snapshot{}, nil
	}
	filter.Limit, filter.Offset = limit, offset

	recs, err := s.records.List(ctx, kind, filter)
	if err != nil {
		return nil, storageErr(err)
	}

	out := make([]*appwf.Snapshot, len(recs))
	for i, r := range recs {
		out[i] = appwf.NewSnapshot(r)
	}
	return out, nil
}

// ValidateRecord checks the identifying fields a record must carry before
// it is stored or resubmitted
func ValidateRecord(rec entity.Record) error {
	switch r := rec.(type) {
	case *entity.IssuingCompany:
		if strings.TrimSpace(r.Name) == "" {
			return fmt.Errorf("%w: company name is required", ErrInvalidInput)
		}
		if r.NINEA != "" {
			if err := utils.ValidateNINEA(r.NINEA); err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidInput, err)
			}
		}
		if r.Currency != "" {
			if err := utils.ValidateCurrency(r.Currency); err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidInput, err)
			}
		}
		if r.ShareCapital.IsNegative() || r.ValueOfShares.IsNegative() || r.NumberOfShares < 0 {
			return fmt.Errorf("%w: capital figures cannot be negative", ErrInvalidInput)
		}
	case *entity.Shareholder:
		if r.Physical == nil && r.Legal == nil {
			return fmt.Errorf("%w: shareholder details are required", ErrInvalidInput)
		}
		if r.TotalShares < 0 {
			return fmt.Errorf("%w: total shares cannot be negative", ErrInvalidInput)
		}
	}
	return nil
}
