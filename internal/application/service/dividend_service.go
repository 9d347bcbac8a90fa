package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/garyjia/swenshares/internal/application/dispatcher"
	"github.com/garyjia/swenshares/internal/application/port"
	"github.com/garyjia/swenshares/internal/domain/audit"
	"github.com/garyjia/swenshares/internal/domain/authz"
	"github.com/garyjia/swenshares/internal/domain/entity"
	"github.com/garyjia/swenshares/internal/domain/event"
)

var (
	// ErrAlreadyValidated is returned when validating a validated dividend
	ErrAlreadyValidated = fmt.Errorf("%w: dividend is already validated", ErrInvalidInput)

	// ErrNotValidated is returned when cancelling a dividend that is not validated
	ErrNotValidated = fmt.Errorf("%w: dividend is not validated", ErrInvalidInput)

	// ErrAlreadyPaid is returned when cancelling a dividend whose payment date has passed
	ErrAlreadyPaid = fmt.Errorf("%w: cannot cancel validation for paid dividends", ErrInvalidInput)
)

// DividendService manages dividend declarations and their validation
type DividendService interface {
	Create(ctx context.Context, d *entity.Dividend, p authz.Principal) (*entity.Dividend, error)
	Get(ctx context.Context, id string) (*entity.Dividend, error)
	Validate(ctx context.Context, id string, p authz.Principal) (*entity.Dividend, error)
	CancelValidation(ctx context.Context, id string, p authz.Principal) (*entity.Dividend, error)

	// Upcoming returns validated dividends of a company paid after today, soonest first
	Upcoming(ctx context.Context, companyID string) ([]*entity.Dividend, error)
}

type dividendServiceImpl struct {
	repo       port.DividendRepository
	authority  authz.RoleAuthority
	clock      audit.Clock
	dispatcher dispatcher.Dispatcher
	logger     Logger
}

// NewDividendService creates a new DividendService. d may be nil.
func NewDividendService(repo port.DividendRepository, authority authz.RoleAuthority, clock audit.Clock, d dispatcher.Dispatcher, logger Logger) DividendService {
	if clock == nil {
		clock = audit.SystemClock{}
	}
	return &dividendServiceImpl{
		repo:       repo,
		authority:  authority,
		clock:      clock,
		dispatcher: d,
		logger:     logger,
	}
}

func (s *dividendServiceImpl) Create(ctx context.Context, d *entity.Dividend, p authz.Principal) (*entity.Dividend, error) {
	if err := requireRole(s.authority, p, authz.RoleEditor); err != nil {
		return nil, err
	}
	if d.IssuingCompanyID == "" {
		return nil, fmt.Errorf("%w: issuing company is required", ErrInvalidInput)
	}
	if !d.PaymentDate.After(d.GeneralAssemblyDate) {
		return nil, fmt.Errorf("%w: payment date must be after the general assembly date", ErrInvalidInput)
	}
	if !d.PerShare.IsPositive() {
		return nil, fmt.Errorf("%w: dividend per share must be greater than zero", ErrInvalidInput)
	}
	if !d.TotalAmount.IsPositive() {
		return nil, fmt.Errorf("%w: total dividend amount must be greater than zero", ErrInvalidInput)
	}

	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	d.IsValidated = false
	d.ValidatedBy = nil

	if err := s.repo.Create(ctx, d); err != nil {
		return nil, storageErr(err)
	}

	s.logger.Info("Dividend created", "id", d.ID, "issuing_company_id", d.IssuingCompanyID)
	s.emit(ctx, event.TypeDividendCreated, d, p)
	return d, nil
}

func (s *dividendServiceImpl) Get(ctx context.Context, id string) (*entity.Dividend, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr(err)
	}
	return d, nil
}

func (s *dividendServiceImpl) Validate(ctx context.Context, id string, p authz.Principal) (*entity.Dividend, error) {
	if err := requireRole(s.authority, p, authz.RoleEditor); err != nil {
		return nil, err
	}

	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.IsValidated {
		return nil, ErrAlreadyValidated
	}

	ref := p.Ref()
	d.IsValidated = true
	d.ValidatedBy = &ref
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, storageErr(err)
	}

	s.logger.Info("Dividend validated", "id", d.ID, "validated_by", p.Username)
	s.emit(ctx, event.TypeDividendValidated, d, p)
	return d, nil
}

func (s *dividendServiceImpl) CancelValidation(ctx context.Context, id string, p authz.Principal) (*entity.Dividend, error) {
	if err := requireRole(s.authority, p, authz.RoleEditor); err != nil {
		return nil, err
	}

	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !d.IsValidated {
		return nil, ErrNotValidated
	}
	if !d.PaymentDate.After(today(s.clock)) {
		return nil, ErrAlreadyPaid
	}

	d.IsValidated = false
	d.ValidatedBy = nil
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, storageErr(err)
	}

	s.logger.Info("Dividend validation cancelled", "id", d.ID, "cancelled_by", p.Username)
	s.emit(ctx, event.TypeDividendValidationCancelled, d, p)
	return d, nil
}

func (s *dividendServiceImpl) Upcoming(ctx context.Context, companyID string) ([]*entity.Dividend, error) {
	all, err := s.repo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, storageErr(err)
	}

	now := today(s.clock)
	out := make([]*entity.Dividend, 0, len(all))
	for _, d := range all {
		if d.IsValidated && d.PaymentDate.After(now) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaymentDate.Before(out[j].PaymentDate) })
	return out, nil
}

func (s *dividendServiceImpl) emit(ctx context.Context, t event.Type, d *entity.Dividend, p authz.Principal) {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.DispatchAsync(ctx, event.New(t, "dividend", d.ID, p.Ref().Key(),
		map[string]string{"issuing_company_id": d.IssuingCompanyID}))
}

// today truncates the clock to midnight UTC, matching date-only payment dates
func today(c audit.Clock) time.Time {
	now := c.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
