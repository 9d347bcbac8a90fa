package port

import (
	"context"
	"errors"
	"time"

	"github.com/garyjia/swenshares/internal/domain/entity"
	"github.com/garyjia/swenshares/internal/domain/workflow"
)

var (
	// ErrNotFound is returned when a row does not exist
	ErrNotFound = errors.New("not found")

	// ErrConcurrentUpdate is returned when a record changed since it was loaded
	ErrConcurrentUpdate = errors.New("concurrent update")
)

// RecordFilter narrows a registry listing. A record matches when its state
// is in States or its creator's key (authz.PrincipalRef.Key) equals
// CreatedBy. An empty filter matches all.
type RecordFilter struct {
	States    []workflow.State
	CreatedBy string
	Limit     int
	Offset    int
}

// Unrestricted reports whether the filter matches every record
func (f RecordFilter) Unrestricted() bool {
	return len(f.States) == 0 && f.CreatedBy == ""
}

// Matches reports whether rec passes the filter, ignoring paging
func (f RecordFilter) Matches(rec entity.Record) bool {
	if f.Unrestricted() {
		return true
	}
	m := rec.Meta()
	if f.CreatedBy != "" && m.CreatedBy.Key() == f.CreatedBy {
		return true
	}
	for _, s := range f.States {
		if m.State == s {
			return true
		}
	}
	return false
}

// RecordRepository persists workflow-managed records
type RecordRepository interface {
	Create(ctx context.Context, rec entity.Record) error
	Load(ctx context.Context, kind workflow.Kind, id string) (entity.Record, error)

	// Save writes the record if its stored version still equals
	// rec.Meta().Version, then increments the version.
	Save(ctx context.Context, rec entity.Record) error

	List(ctx context.Context, kind workflow.Kind, filter RecordFilter) ([]entity.Record, error)
}

// AuditRepository persists transition history
type AuditRepository interface {
	Append(ctx context.Context, kind workflow.Kind, recordID string, entry entity.AuditEntry) error
	ListByRecord(ctx context.Context, kind workflow.Kind, recordID string) ([]entity.AuditEntry, error)
}

// DividendRepository persists dividends
type DividendRepository interface {
	Create(ctx context.Context, d *entity.Dividend) error
	GetByID(ctx context.Context, id string) (*entity.Dividend, error)
	Update(ctx context.Context, d *entity.Dividend) error
	ListByCompany(ctx context.Context, companyID string) ([]*entity.Dividend, error)
}

// NotificationRepository persists in-app notifications
type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	GetByID(ctx context.Context, id string) (*entity.Notification, error)
	ListByRecipient(ctx context.Context, recipient string, unreadOnly bool) ([]*entity.Notification, error)
	MarkRead(ctx context.Context, id string) error

	// MarkAllRead flags every unread notification of recipient and returns how many changed
	MarkAllRead(ctx context.Context, recipient string) (int64, error)
	CountUnread(ctx context.Context, recipient string) (int, error)
}

// AnnouncementRepository persists share announcements
type AnnouncementRepository interface {
	Create(ctx context.Context, a *entity.Announcement) error
	GetByID(ctx context.Context, id string) (*entity.Announcement, error)
	Update(ctx context.Context, a *entity.Announcement) error

	// ListActive returns active announcements expiring on or after day, newest first
	ListActive(ctx context.Context, day time.Time) ([]*entity.Announcement, error)

	// ListByCreator returns announcements whose creator key (authz.PrincipalRef.Key) is creator
	ListByCreator(ctx context.Context, creator string) ([]*entity.Announcement, error)
}

// TransactionManager runs fn inside a single database transaction carried by ctx
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
