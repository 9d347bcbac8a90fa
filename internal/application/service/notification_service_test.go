package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/swenshares/internal/application/dispatcher"
	appwf "github.com/garyjia/swenshares/internal/application/workflow"
	"github.com/garyjia/swenshares/internal/domain/audit"
	"github.com/garyjia/swenshares/internal/domain/entity"
	"github.com/garyjia/swenshares/internal/domain/event"
)

func transitionEvent(actor, creator string) *event.Event {
	return event.New(event.TypeRecordApproved, "social_act", "s-1", actor, map[string]string{
		event.KeyFromState: "EXAMINED",
		event.KeyToState:   "APPROVED",
		event.KeyComment:   "all good",
		event.KeyCreatedBy: creator,
	})
}

func newNotifications(repo *mockNotificationRepo) NotificationService {
	clock := audit.ClockFunc(func() time.Time { return fixedNow })
	return NewNotificationService(repo, clock, nil, &mockLogger{})
}

func TestNotificationService_NotifiesCreator(t *testing.T) {
	repo := newMockNotificationRepo()
	svc := newNotifications(repo)

	require.NoError(t, svc.HandleTransition(context.Background(), transitionEvent("approver", "ed")))

	list, err := svc.List(context.Background(), principalWith("ed"), false)
	require.NoError(t, err)
	require.Len(t, list, 1)

	n := list[0]
	assert.Equal(t, "Social act approved", n.Title)
	assert.Equal(t, "Social act s-1 moved from EXAMINED to APPROVED. Comment: all good", n.Description)
	assert.Equal(t, entity.NotificationStatusPending, n.Status)
	assert.Equal(t, "s-1", n.RecordID)
	assert.Equal(t, fixedNow, n.CreatedAt)
}

func TestNotificationService_SkipsSelfAndAnonymous(t *testing.T) {
	repo := newMockNotificationRepo()
	svc := newNotifications(repo)

	require.NoError(t, svc.HandleTransition(context.Background(), transitionEvent("ed", "ed")))
	require.NoError(t, svc.HandleTransition(context.Background(), transitionEvent("approver", "")))
	assert.Empty(t, repo.items)
}

func TestNotificationService_MarkReadOwnOnly(t *testing.T) {
	repo := newMockNotificationRepo()
	svc := newNotifications(repo)
	ctx := context.Background()
	require.NoError(t, svc.HandleTransition(ctx, transitionEvent("approver", "ed")))

	list, err := svc.List(ctx, principalWith("ed"), true)
	require.NoError(t, err)
	require.Len(t, list, 1)
	id := list[0].ID

	assert.ErrorIs(t, svc.MarkRead(ctx, id, principalWith("someone-else")), appwf.ErrUnauthorized)
	require.NoError(t, svc.MarkRead(ctx, id, principalWith("ed")))
	require.NoError(t, svc.MarkRead(ctx, id, principalWith("ed")))

	unread, err := svc.List(ctx, principalWith("ed"), true)
	require.NoError(t, err)
	assert.Empty(t, unread)

	assert.ErrorIs(t, svc.MarkRead(ctx, "missing", principalWith("ed")), appwf.ErrNotFound)
}

func TestNotificationService_RegisteredOnDispatcher(t *testing.T) {
	repo := newMockNotificationRepo()
	svc := newNotifications(repo)
	d := dispatcher.NewDispatcher()
	svc.Register(d)

	require.NoError(t, d.Dispatch(context.Background(), transitionEvent("approver", "ed")))
	assert.Len(t, repo.items, 1)
	assert.Len(t, d.ListHandlers(event.TypeRecordExamined), 1)
}

func TestNotificationService_MarkAllReadAndUnreadCount(t *testing.T) {
	repo := newMockNotificationRepo()
	svc := newNotifications(repo)
	ctx := context.Background()
	ed := principalWith("ed")

	require.NoError(t, svc.HandleTransition(ctx, transitionEvent("approver", "ed")))
	require.NoError(t, svc.HandleTransition(ctx, transitionEvent("examiner", "ed")))
	require.NoError(t, svc.HandleTransition(ctx, transitionEvent("approver", "other")))

	count, err := svc.UnreadCount(ctx, ed)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	changed, err := svc.MarkAllRead(ctx, ed)
	require.NoError(t, err)
	assert.Equal(t, int64(2), changed)

	count, err = svc.UnreadCount(ctx, ed)
	require.NoError(t, err)
	assert.Zero(t, count)

	changed, err = svc.MarkAllRead(ctx, ed)
	require.NoError(t, err)
	assert.Zero(t, changed)

	// other recipients keep their unread notifications
	count, err = svc.UnreadCount(ctx, principalWith("other"))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
