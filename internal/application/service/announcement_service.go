package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/garyjia/swenshares/internal/application/dispatcher"
	"github.com/garyjia/swenshares/internal/application/port"
	appwf "github.com/garyjia/swenshares/internal/application/workflow"
	"github.com/garyjia/swenshares/internal/domain/audit"
	"github.com/garyjia/swenshares/internal/domain/authz"
	"github.com/garyjia/swenshares/internal/domain/entity"
	"github.com/garyjia/swenshares/internal/domain/event"
)

// ErrNotAnnouncementOwner is returned when someone other than the creator changes an announcement
var ErrNotAnnouncementOwner = fmt.Errorf("%w: you can only change your own announcements", appwf.ErrUnauthorized)

// AnnouncementService manages share sale and purchase announcements.
// Any authenticated principal may publish one; only its creator may change it.
type AnnouncementService interface {
	Create(ctx context.Context, a *entity.Announcement, p authz.Principal) (*entity.Announcement, error)
	Get(ctx context.Context, id string) (*entity.Announcement, error)

	// ListActive returns announcements still offered today, newest first
	ListActive(ctx context.Context) ([]*entity.Announcement, error)

	// Mine returns every announcement p created, including inactive and expired ones
	Mine(ctx context.Context, p authz.Principal) ([]*entity.Announcement, error)

	Deactivate(ctx context.Context, id string, p authz.Principal) (*entity.Announcement, error)

	// ExtendExpiration moves the expiration date to newDate, which must be after today
	ExtendExpiration(ctx context.Context, id string, newDate time.Time, p authz.Principal) (*entity.Announcement, error)
}

type announcementServiceImpl struct {
	repo       port.AnnouncementRepository
	clock      audit.Clock
	dispatcher dispatcher.Dispatcher
	logger     Logger
}

// NewAnnouncementService creates a new AnnouncementService. d may be nil.
func NewAnnouncementService(repo port.AnnouncementRepository, clock audit.Clock, d dispatcher.Dispatcher, logger Logger) AnnouncementService {
	if clock == nil {
		clock = audit.SystemClock{}
	}
	return &announcementServiceImpl{
		repo:       repo,
		clock:      clock,
		dispatcher: d,
		logger:     logger,
	}
}

func (s *announcementServiceImpl) Create(ctx context.Context, a *entity.Announcement, p authz.Principal) (*entity.Announcement, error) {
	if p.Ref().IsZero() {
		return nil, fmt.Errorf("%w: announcements need an identified author", appwf.ErrUnauthorized)
	}

	a.Type = strings.ToUpper(strings.TrimSpace(a.Type))
	if a.Type == "" {
		a.Type = entity.AnnouncementSale
	}
	if a.Type != entity.AnnouncementSale && a.Type != entity.AnnouncementPurchase {
		return nil, fmt.Errorf("%w: unknown announcement type %q", ErrInvalidInput, a.Type)
	}
	if strings.TrimSpace(a.IssuingCompanyID) == "" {
		return nil, fmt.Errorf("%w: issuing company is required", ErrInvalidInput)
	}
	if strings.TrimSpace(a.Description) == "" {
		return nil, fmt.Errorf("%w: description is required", ErrInvalidInput)
	}
	if a.Quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
	}
	if a.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price cannot be negative", ErrInvalidInput)
	}

	now := today(s.clock)
	if !a.ExpirationDate.After(now) {
		return nil, fmt.Errorf("%w: expiration date must be after announcement date", ErrInvalidInput)
	}

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.AnnouncementDate = now
	a.IsActive = true
	a.CreatedBy = p.Ref()

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, storageErr(err)
	}

	s.logger.Info("Announcement created", "id", a.ID, "type", a.Type, "created_by", p.Username)
	s.emit(ctx, event.TypeAnnouncementCreated, a, p)
	return a, nil
}

func (s *announcementServiceImpl) Get(ctx context.Context, id string) (*entity.Announcement, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr(err)
	}
	return a, nil
}

func (s *announcementServiceImpl) ListActive(ctx context.Context) ([]*entity.Announcement, error) {
	list, err := s.repo.ListActive(ctx, today(s.clock))
	if err != nil {
		return nil, storageErr(err)
	}
	if list == nil {
		list = []*entity.Announcement{}
	}
	return list, nil
}

func (s *announcementServiceImpl) Mine(ctx context.Context, p authz.Principal) ([]*entity.Announcement, error) {
	if p.Ref().IsZero() {
		return []*entity.Announcement{}, nil
	}
	list, err := s.repo.ListByCreator(ctx, p.Ref().Key())
	if err != nil {
		return nil, storageErr(err)
	}
	if list == nil {
		list = []*entity.Announcement{}
	}
	return list, nil
}

func (s *announcementServiceImpl) Deactivate(ctx context.Context, id string, p authz.Principal) (*entity.Announcement, error) {
	a, err := s.owned(ctx, id, p)
	if err != nil {
		return nil, err
	}
	if !a.IsActive {
		return a, nil
	}

	a.IsActive = false
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, storageErr(err)
	}

	s.logger.Info("Announcement deactivated", "id", a.ID, "deactivated_by", p.Username)
	s.emit(ctx, event.TypeAnnouncementDeactivated, a, p)
	return a, nil
}

func (s *announcementServiceImpl) ExtendExpiration(ctx context.Context, id string, newDate time.Time, p authz.Principal) (*entity.Announcement, error) {
	if !newDate.After(today(s.clock)) {
		return nil, fmt.Errorf("%w: new expiration date must be in the future", ErrInvalidInput)
	}

	a, err := s.owned(ctx, id, p)
	if err != nil {
		return nil, err
	}

	a.ExpirationDate = newDate
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, storageErr(err)
	}

	s.logger.Info("Announcement expiration extended", "id", a.ID, "expiration_date", newDate.Format("2006-01-02"))
	s.emit(ctx, event.TypeAnnouncementExtended, a, p)
	return a, nil
}

// owned loads an announcement and checks that p created it
func (s *announcementServiceImpl) owned(ctx context.Context, id string, p authz.Principal) (*entity.Announcement, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.CreatedBy.Same(p.Ref()) {
		return nil, ErrNotAnnouncementOwner
	}
	return a, nil
}

func (s *announcementServiceImpl) emit(ctx context.Context, t event.Type, a *entity.Announcement, p authz.Principal) {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.DispatchAsync(ctx, event.New(t, "announcement", a.ID, p.Ref().Key(),
		map[string]string{"issuing_company_id": a.IssuingCompanyID}))
}
