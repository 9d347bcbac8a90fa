package service

import (
	"context"
	"sync"
	"time"

	"github.com/garyjia/swenshares/internal/application/dispatcher"
	"github.com/garyjia/swenshares/internal/application/port"
	"github.com/garyjia/swenshares/internal/domain/entity"
	"github.com/garyjia/swenshares/internal/domain/event"
	"github.com/garyjia/swenshares/internal/domain/workflow"
)

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}

type mockTxManager struct{}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockRecordRepo struct {
	records    map[string]entity.Record
	createErr  error
	lastFilter port.RecordFilter
}

func newMockRecordRepo() *mockRecordRepo {
	return &mockRecordRepo{records: make(map[string]entity.Record)}
}

func (m *mockRecordRepo) Create(ctx context.Context, rec entity.Record) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.records[string(rec.Kind())+"/"+rec.RecordID()] = rec.Clone()
	return nil
}

func (m *mockRecordRepo) Load(ctx context.Context, kind workflow.Kind, id string) (entity.Record, error) {
	rec, ok := m.records[string(kind)+"/"+id]
	if !ok {
		return nil, port.ErrNotFound
	}
	return rec.Clone(), nil
}

func (m *mockRecordRepo) Save(ctx context.Context, rec entity.Record) error {
	m.records[string(rec.Kind())+"/"+rec.RecordID()] = rec.Clone()
	return nil
}

func (m *mockRecordRepo) List(ctx context.Context, kind workflow.Kind, filter port.RecordFilter) ([]entity.Record, error) {
	m.lastFilter = filter
	var out []entity.Record
	for _, r := range m.records {
		if r.Kind() == kind {
			out = append(out, r.Clone())
		}
	}
	return out, nil
}

type mockAuditRepo struct {
	entries []entity.AuditEntry
}

func (m *mockAuditRepo) Append(ctx context.Context, kind workflow.Kind, id string, entry entity.AuditEntry) error {
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockAuditRepo) ListByRecord(ctx context.Context, kind workflow.Kind, id string) ([]entity.AuditEntry, error) {
	return m.entries, nil
}

type mockDividendRepo struct {
	dividends map[string]*entity.Dividend
}

func newMockDividendRepo() *mockDividendRepo {
	return &mockDividendRepo{dividends: make(map[string]*entity.Dividend)}
}

func (m *mockDividendRepo) Create(ctx context.Context, d *entity.Dividend) error {
	c := *d
	m.dividends[d.ID] = &c
	return nil
}

func (m *mockDividendRepo) GetByID(ctx context.Context, id string) (*entity.Dividend, error) {
	d, ok := m.dividends[id]
	if !ok {
		return nil, port.ErrNotFound
	}
	c := *d
	return &c, nil
}

func (m *mockDividendRepo) Update(ctx context.Context, d *entity.Dividend) error {
	if _, ok := m.dividends[d.ID]; !ok {
		return port.ErrNotFound
	}
	c := *d
	m.dividends[d.ID] = &c
	return nil
}

func (m *mockDividendRepo) ListByCompany(ctx context.Context, companyID string) ([]*entity.Dividend, error) {
	var out []*entity.Dividend
	for _, d := range m.dividends {
		if d.IssuingCompanyID == companyID {
			c := *d
			out = append(out, &c)
		}
	}
	return out, nil
}

type mockNotificationRepo struct {
	mu    sync.Mutex
	items map[string]*entity.Notification
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{items: make(map[string]*entity.Notification)}
}

func (m *mockNotificationRepo) Create(ctx context.Context, n *entity.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *n
	m.items[n.ID] = &c
	return nil
}

func (m *mockNotificationRepo) GetByID(ctx context.Context, id string) (*entity.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.items[id]
	if !ok {
		return nil, port.ErrNotFound
	}
	c := *n
	return &c, nil
}

func (m *mockNotificationRepo) ListByRecipient(ctx context.Context, recipient string, unreadOnly bool) ([]*entity.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Notification
	for _, n := range m.items {
		if n.Recipient == recipient && (!unreadOnly || !n.IsRead) {
			c := *n
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *mockNotificationRepo) MarkRead(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.items[id]
	if !ok {
		return port.ErrNotFound
	}
	n.IsRead = true
	return nil
}

func (m *mockNotificationRepo) MarkAllRead(ctx context.Context, recipient string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, item := range m.items {
		if item.Recipient == recipient && !item.IsRead {
			item.IsRead = true
			n++
		}
	}
	return n, nil
}

func (m *mockNotificationRepo) CountUnread(ctx context.Context, recipient string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, item := range m.items {
		if item.Recipient == recipient && !item.IsRead {
			n++
		}
	}
	return n, nil
}

type mockAnnouncementRepo struct {
	items map[string]*entity.Announcement
}

func newMockAnnouncementRepo() *mockAnnouncementRepo {
	return &mockAnnouncementRepo{items: make(map[string]*entity.Announcement)}
}

func (m *mockAnnouncementRepo) Create(ctx context.Context, a *entity.Announcement) error {
	c := *a
	m.items[a.ID] = &c
	return nil
}

func (m *mockAnnouncementRepo) GetByID(ctx context.Context, id string) (*entity.Announcement, error) {
	a, ok := m.items[id]
	if !ok {
		return nil, port.ErrNotFound
	}
	c := *a
	return &c, nil
}

func (m *mockAnnouncementRepo) Update(ctx context.Context, a *entity.Announcement) error {
	if _, ok := m.items[a.ID]; !ok {
		return port.ErrNotFound
	}
	c := *a
	m.items[a.ID] = &c
	return nil
}

func (m *mockAnnouncementRepo) ListActive(ctx context.Context, day time.Time) ([]*entity.Announcement, error) {
	var out []*entity.Announcement
	for _, a := range m.items {
		if a.IsListed(day) {
			c := *a
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *mockAnnouncementRepo) ListByCreator(ctx context.Context, creator string) ([]*entity.Announcement, error) {
	var out []*entity.Announcement
	for _, a := range m.items {
		if a.CreatedBy.Key() == creator {
			c := *a
			out = append(out, &c)
		}
	}
	return out, nil
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []*event.Event
}

func (d *recordingDispatcher) Subscribe(name, description string, handler dispatcher.Handler, types ...event.Type) {
}
func (d *recordingDispatcher) Unsubscribe(eventType event.Type, name string) bool { return false }
func (d *recordingDispatcher) Dispatch(ctx context.Context, evt *event.Event) error {
	d.DispatchAsync(ctx, evt)
	return nil
}
func (d *recordingDispatcher) DispatchAsync(ctx context.Context, evt *event.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, evt)
}
func (d *recordingDispatcher) ListHandlers(eventType event.Type) []dispatcher.HandlerInfo { return nil }
func (d *recordingDispatcher) Close() error                                          { return nil }
