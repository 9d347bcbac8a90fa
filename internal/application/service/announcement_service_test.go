package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/swenshares/internal/application/dispatcher"
	appwf "github.com/garyjia/swenshares/internal/application/workflow"
	"github.com/garyjia/swenshares/internal/domain/audit"
	"github.com/garyjia/swenshares/internal/domain/entity"
	"github.com/garyjia/swenshares/internal/domain/event"
)

func newAnnouncements(repo *mockAnnouncementRepo, d *recordingDispatcher) AnnouncementService {
	clock := audit.ClockFunc(func() time.Time { return fixedNow })
	var disp dispatcher.Dispatcher
	if d != nil {
		disp = d
	}
	return NewAnnouncementService(repo, clock, disp, &mockLogger{})
}

func validAnnouncement() *entity.Announcement {
	return &entity.Announcement{
		IssuingCompanyID: "c-1",
		Type:             "sale",
		Description:      "100 shares of c-1",
		Quantity:         100,
		Price:            decimal.RequireFromString("12.50"),
		ExpirationDate:   date(2026, 7, 1),
	}
}

func TestAnnouncementService_Create(t *testing.T) {
	repo := newMockAnnouncementRepo()
	disp := &recordingDispatcher{}
	svc := newAnnouncements(repo, disp)

	// no role is needed to publish
	a, err := svc.Create(context.Background(), validAnnouncement(), principalWith("trader"))
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID)
	assert.Equal(t, entity.AnnouncementSale, a.Type)
	assert.Equal(t, date(2026, 6, 15), a.AnnouncementDate)
	assert.True(t, a.IsActive)
	assert.Equal(t, "trader", a.CreatedBy.Key())
	require.Len(t, disp.events, 1)
	assert.Equal(t, event.TypeAnnouncementCreated, disp.events[0].Type)
}

func TestAnnouncementService_CreateValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(a *entity.Announcement)
	}{
		{"unknown type", func(a *entity.Announcement) { a.Type = "SWAP" }},
		{"no company", func(a *entity.Announcement) { a.IssuingCompanyID = "" }},
		{"blank description", func(a *entity.Announcement) { a.Description = "  " }},
		{"zero quantity", func(a *entity.Announcement) { a.Quantity = 0 }},
		{"negative price", func(a *entity.Announcement) { a.Price = decimal.NewFromInt(-1) }},
		{"expires today", func(a *entity.Announcement) { a.ExpirationDate = date(2026, 6, 15) }},
		{"expired", func(a *entity.Announcement) { a.ExpirationDate = date(2026, 6, 1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newAnnouncements(newMockAnnouncementRepo(), nil)
			a := validAnnouncement()
			tt.mutate(a)

			_, err := svc.Create(context.Background(), a, principalWith("trader"))
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestAnnouncementService_CreateNeedsIdentity(t *testing.T) {
	svc := newAnnouncements(newMockAnnouncementRepo(), nil)

	_, err := svc.Create(context.Background(), validAnnouncement(), principalWith(""))
	assert.ErrorIs(t, err, appwf.ErrUnauthorized)
}

func TestAnnouncementService_ListActiveAndMine(t *testing.T) {
	repo := newMockAnnouncementRepo()
	svc := newAnnouncements(repo, nil)
	ctx := context.Background()
	trader := principalWith("trader")

	kept, err := svc.Create(ctx, validAnnouncement(), trader)
	require.NoError(t, err)
	dropped, err := svc.Create(ctx, validAnnouncement(), trader)
	require.NoError(t, err)
	_, err = svc.Create(ctx, validAnnouncement(), principalWith("other"))
	require.NoError(t, err)

	_, err = svc.Deactivate(ctx, dropped.ID, trader)
	require.NoError(t, err)

	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 2)
	for _, a := range active {
		assert.NotEqual(t, dropped.ID, a.ID)
	}

	mine, err := svc.Mine(ctx, trader)
	require.NoError(t, err)
	ids := []string{}
	for _, a := range mine {
		ids = append(ids, a.ID)
	}
	assert.ElementsMatch(t, []string{kept.ID, dropped.ID}, ids)

	none, err := svc.Mine(ctx, principalWith(""))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAnnouncementService_OwnerOnlyChanges(t *testing.T) {
	repo := newMockAnnouncementRepo()
	disp := &recordingDispatcher{}
	svc := newAnnouncements(repo, disp)
	ctx := context.Background()
	trader := principalWith("trader")

	a, err := svc.Create(ctx, validAnnouncement(), trader)
	require.NoError(t, err)

	_, err = svc.Deactivate(ctx, a.ID, principalWith("other"))
	assert.ErrorIs(t, err, appwf.ErrUnauthorized)
	_, err = svc.ExtendExpiration(ctx, a.ID, date(2026, 8, 1), principalWith("other"))
	assert.ErrorIs(t, err, appwf.ErrUnauthorized)

	extended, err := svc.ExtendExpiration(ctx, a.ID, date(2026, 8, 1), trader)
	require.NoError(t, err)
	assert.Equal(t, date(2026, 8, 1), extended.ExpirationDate)

	off, err := svc.Deactivate(ctx, a.ID, trader)
	require.NoError(t, err)
	assert.False(t, off.IsActive)

	// a second deactivation is a no-op
	_, err = svc.Deactivate(ctx, a.ID, trader)
	require.NoError(t, err)

	types := []event.Type{}
	for _, e := range disp.events {
		types = append(types, e.Type)
	}
	assert.Equal(t, []event.Type{
		event.TypeAnnouncementCreated,
		event.TypeAnnouncementExtended,
		event.TypeAnnouncementDeactivated,
	}, types)
}

func TestAnnouncementService_ExtendExpirationRejectsPastDates(t *testing.T) {
	repo := newMockAnnouncementRepo()
	svc := newAnnouncements(repo, nil)
	ctx := context.Background()
	trader := principalWith("trader")

	a, err := svc.Create(ctx, validAnnouncement(), trader)
	require.NoError(t, err)

	_, err = svc.ExtendExpiration(ctx, a.ID, date(2026, 6, 15), trader)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.ExtendExpiration(ctx, "missing", date(2026, 8, 1), trader)
	assert.ErrorIs(t, err, appwf.ErrNotFound)
}
