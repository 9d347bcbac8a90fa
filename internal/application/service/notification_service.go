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
	"github.com/garyjia/swenshares/internal/domain/entity"
	"github.com/garyjia/swenshares/internal/domain/event"
	"github.com/garyjia/swenshares/internal/metrics"
)

// NotificationService turns committed transitions into in-app notifications
// for the record's creator
type NotificationService interface {
	// Register subscribes the service to transition events
	Register(d dispatcher.Dispatcher)

	// HandleTransition creates the notification for one transition event
	HandleTransition(ctx context.Context, evt *event.Event) error

	// List returns p's notifications, newest first
	List(ctx context.Context, p authz.Principal, unreadOnly bool) ([]*entity.Notification, error)

	// MarkRead flags one of p's notifications as read
	MarkRead(ctx context.Context, id string, p authz.Principal) error

	// MarkAllRead flags every unread notification of p and returns how many changed
	MarkAllRead(ctx context.Context, p authz.Principal) (int64, error)

	UnreadCount(ctx context.Context, p authz.Principal) (int, error)
}

type notificationServiceImpl struct {
	repo    port.NotificationRepository
	clock   audit.Clock
	metrics *metrics.Metrics
	logger  Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(repo port.NotificationRepository, clock audit.Clock, m *metrics.Metrics, logger Logger) NotificationService {
	if clock == nil {
		clock = audit.SystemClock{}
	}
	return &notificationServiceImpl{
		repo:    repo,
		clock:   clock,
		metrics: m,
		logger:  logger,
	}
}

func (s *notificationServiceImpl) Register(d dispatcher.Dispatcher) {
	d.Subscribe("notify-creator", "notifies the record creator of each transition", s.HandleTransition, event.TransitionTypes...)
}

func (s *notificationServiceImpl) HandleTransition(ctx context.Context, evt *event.Event) error {
	recipient := evt.Get(event.KeyCreatedBy)
	if recipient == "" || recipient == evt.Actor {
		return nil
	}

	to := evt.Get(event.KeyToState)
	desc := fmt.Sprintf("%s %s moved from %s to %s.", humanKind(evt.Kind), evt.SubjectID, evt.Get(event.KeyFromState), to)
	if c := evt.Get(event.KeyComment); c != "" {
		desc += " Comment: " + c
	}

	n := &entity.Notification{
		ID:          uuid.NewString(),
		Recipient:   recipient,
		Title:       fmt.Sprintf("%s %s", humanKind(evt.Kind), strings.ToLower(to)),
		Description: desc,
		Type:        entity.NotificationTypeInApp,
		Status:      entity.NotificationStatusPending,
		RecordKind:  evt.Kind,
		RecordID:    evt.SubjectID,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to create notification for %s: %w", evt.SubjectID, err)
	}

	s.metrics.IncrementNotification()
	s.logger.Info("Notification created", "recipient", recipient, "kind", evt.Kind, "id", evt.SubjectID, "event_id", evt.ID)
	return nil
}

func (s *notificationServiceImpl) List(ctx context.Context, p authz.Principal, unreadOnly bool) ([]*entity.Notification, error) {
	list, err := s.repo.ListByRecipient(ctx, p.Ref().Key(), unreadOnly)
	if err != nil {
		return nil, storageErr(err)
	}
	if list == nil {
		list = []*entity.Notification{}
	}
	return list, nil
}

func (s *notificationServiceImpl) MarkRead(ctx context.Context, id string, p authz.Principal) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return storageErr(err)
	}
	if n.Recipient != p.Ref().Key() {
		return fmt.Errorf("%w: notification belongs to another user", appwf.ErrUnauthorized)
	}
	if n.IsRead {
		return nil
	}
	if err := s.repo.MarkRead(ctx, id); err != nil {
		return storageErr(err)
	}
	return nil
}

func (s *notificationServiceImpl) MarkAllRead(ctx context.Context, p authz.Principal) (int64, error) {
	key := p.Ref().Key()
	if key == "" {
		return 0, nil
	}
	n, err := s.repo.MarkAllRead(ctx, key)
	if err != nil {
		return 0, storageErr(err)
	}
	if n > 0 {
		s.logger.Info("Notifications marked read", "recipient", key, "count", n)
	}
	return n, nil
}

func (s *notificationServiceImpl) UnreadCount(ctx context.Context, p authz.Principal) (int, error) {
	key := p.Ref().Key()
	if key == "" {
		return 0, nil
	}
	n, err := s.repo.CountUnread(ctx, key)
	if err != nil {
		return 0, storageErr(err)
	}
	return n, nil
}

func humanKind(kind string) string {
	s := strings.ReplaceAll(kind, "_", " ")
	if s == "" {
		return "Record"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
