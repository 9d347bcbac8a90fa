package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/swenshares/internal/application/port"
	"github.com/garyjia/swenshares/internal/domain/authz"
	"github.com/garyjia/swenshares/internal/domain/entity"
	"github.com/garyjia/swenshares/internal/domain/workflow"
	"github.com/garyjia/swenshares/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/swenshares/migrations"
	"github.com/garyjia/swenshares/pkg/database"
)

func setupDB(t *testing.T) *sqlite.DB {
	t.Helper()

	logger, err := zap.NewDevelopment()
	require.NoError(t, err)

	db, err := database.New(database.Config{Path: filepath.Join(t.TempDir(), "registry.db"), MaxOpenConns: 1}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.NewMigrator(db, logger).RunMigrationsFS(migrations.FS))
	return sqlite.NewDB(db.DB, logger)
}

var alice = authz.PrincipalRef{ID: "u-1", Username: "alice"}

func newTransaction(id string, state workflow.State) *entity.Transaction {
	tx := &entity.Transaction{
		ID:            id,
		Type:          entity.TransactionSale,
		SellerID:      "sh-1",
		BuyerID:       "sh-2",
		Quantity:      10,
		PricePerShare: decimal.NewNullDecimal(decimal.RequireFromString("5.00")),
		TotalAmount:   decimal.RequireFromString("50.00"),
		Shares:        []entity.Share{{ID: "s-1", Price: decimal.NewFromInt(2), Quantity: 3}},
	}
	tx.State = state
	tx.CreatedBy = alice
	return tx
}

func TestRecordRepository_CreateAndLoad(t *testing.T) {
	db := setupDB(t)
	repo := NewRecordRepository(db.DB, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTransaction("t-1", workflow.StateSubmitted)))

	rec, err := repo.Load(ctx, workflow.KindTransaction, "t-1")
	require.NoError(t, err)

	tx, ok := rec.(*entity.Transaction)
	require.True(t, ok)
	assert.Equal(t, "t-1", tx.ID)
	assert.Equal(t, workflow.StateSubmitted, tx.State)
	assert.Equal(t, alice, tx.CreatedBy)
	assert.Nil(t, tx.ExaminedBy)
	assert.True(t, tx.TotalAmount.Equal(decimal.NewFromInt(50)))
	assert.True(t, tx.PricePerShare.Valid)
	require.Len(t, tx.Shares, 1)
	assert.Equal(t, int64(0), tx.Version)
	assert.Empty(t, tx.History)
}

func TestRecordRepository_LoadNotFound(t *testing.T) {
	db := setupDB(t)
	repo := NewRecordRepository(db.DB, zap.NewNop())

	_, err := repo.Load(context.Background(), workflow.KindSocialAct, "missing")
	assert.ErrorIs(t, err, port.ErrNotFound)
}

func TestRecordRepository_CreateRejectsUnknownState(t *testing.T) {
	db := setupDB(t)
	repo := NewRecordRepository(db.DB, zap.NewNop())

	err := repo.Create(context.Background(), newTransaction("t-1", workflow.State("DRAFT")))
	assert.ErrorIs(t, err, workflow.ErrInvalidState)
}

func TestRecordRepository_SaveChecksVersion(t *testing.T) {
	db := setupDB(t)
	repo := NewRecordRepository(db.DB, zap.NewNop())
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newTransaction("t-1", workflow.StateSubmitted)))

	first, err := repo.Load(ctx, workflow.KindTransaction, "t-1")
	require.NoError(t, err)
	stale, err := repo.Load(ctx, workflow.KindTransaction, "t-1")
	require.NoError(t, err)

	first.Meta().State = workflow.StateExamined
	ref := authz.PrincipalRef{ID: "u-2", Username: "bob"}
	first.Meta().ExaminedBy = &ref
	require.NoError(t, repo.Save(ctx, first))
	assert.Equal(t, int64(1), first.Meta().Version)

	stale.Meta().State = workflow.StateExamined
	err = repo.Save(ctx, stale)
	assert.ErrorIs(t, err, port.ErrConcurrentUpdate)

	reloaded, err := repo.Load(ctx, workflow.KindTransaction, "t-1")
	require.NoError(t, err)
	assert.Equal(t, workflow.StateExamined, reloaded.Meta().State)
	require.NotNil(t, reloaded.Meta().ExaminedBy)
	assert.Equal(t, ref, *reloaded.Meta().ExaminedBy)
	assert.Equal(t, int64(1), reloaded.Meta().Version)
}

func TestRecordRepository_SaveNotFound(t *testing.T) {
	db := setupDB(t)
	repo := NewRecordRepository(db.DB, zap.NewNop())

	err := repo.Save(context.Background(), newTransaction("ghost", workflow.StateExamined))
	assert.ErrorIs(t, err, port.ErrNotFound)
}

func TestRecordRepository_ListFilter(t *testing.T) {
	db := setupDB(t)
	repo := NewRecordRepository(db.DB, zap.NewNop())
	ctx := context.Background()

	mine := newTransaction("t-mine", workflow.StateRejected)
	theirs := newTransaction("t-theirs", workflow.StateApproved)
	theirs.CreatedBy = authz.PrincipalRef{ID: "u-9", Username: "zed"}
	pending := newTransaction("t-pending", workflow.StateSubmitted)
	pending.CreatedBy = theirs.CreatedBy
	for _, tx := range []*entity.Transaction{mine, theirs, pending} {
		require.NoError(t, repo.Create(ctx, tx))
	}

	all, err := repo.List(ctx, workflow.KindTransaction, port.RecordFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	visible, err := repo.List(ctx, workflow.KindTransaction, port.RecordFilter{
		States:    []workflow.State{workflow.StateSubmitted},
		CreatedBy: alice.Key(),
	})
	require.NoError(t, err)
	ids := make([]string, 0, len(visible))
	for _, r := range visible {
		ids = append(ids, r.RecordID())
	}
	assert.ElementsMatch(t, []string{"t-mine", "t-pending"}, ids)

	none, err := repo.List(ctx, workflow.KindSocialAct, port.RecordFilter{})
	require.NoError(t, err)
	assert.Empty(t, none)

	page, err := repo.List(ctx, workflow.KindTransaction, port.RecordFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page, 2)
}

func TestRecordRepository_ListFilterByUsernameOnlyCreator(t *testing.T) {
	db := setupDB(t)
	repo := NewRecordRepository(db.DB, zap.NewNop())
	ctx := context.Background()

	bob := authz.PrincipalRef{Username: "bob"}
	own := newTransaction("t-bob", workflow.StateRejected)
	own.CreatedBy = bob
	require.NoError(t, repo.Create(ctx, own))
	require.NoError(t, repo.Create(ctx, newTransaction("t-alice", workflow.StateRejected)))

	got, err := repo.List(ctx, workflow.KindTransaction, port.RecordFilter{CreatedBy: bob.Key()})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "t-bob", got[0].RecordID())

	// an id-bearing creator is never matched by username
	got, err = repo.List(ctx, workflow.KindTransaction, port.RecordFilter{CreatedBy: "alice"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAuditRepository_OrderAndHydration(t *testing.T) {
	db := setupDB(t)
	records := NewRecordRepository(db.DB, zap.NewNop())
	audits := NewAuditRepository(db.DB, zap.NewNop())
	ctx := context.Background()
	require.NoError(t, records.Create(ctx, newTransaction("t-1", workflow.StateSubmitted)))

	base := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	actions := []workflow.Action{workflow.ActionExamined, workflow.ActionRejected, workflow.ActionSubmitted}
	for i, a := range actions {
		require.NoError(t, audits.Append(ctx, workflow.KindTransaction, "t-1", entity.AuditEntry{
			Action:    a,
			Actor:     alice,
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Comment:   string(a) + " note",
		}))
	}

	entries, err := audits.ListByRecord(ctx, workflow.KindTransaction, "t-1")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i, a := range actions {
		assert.Equal(t, a, entries[i].Action)
		assert.True(t, entries[i].Timestamp.Equal(base.Add(time.Duration(i)*time.Hour)))
	}

	rec, err := records.Load(ctx, workflow.KindTransaction, "t-1")
	require.NoError(t, err)
	assert.Len(t, rec.Meta().History, 3)
	assert.Equal(t, "[examined 2026-02-01T08:00:00Z]: examined note", rec.Meta().Notes[0])
}

func TestTransaction_RollbackDiscardsSaveAndAudit(t *testing.T) {
	db := setupDB(t)
	records := NewRecordRepository(db.DB, zap.NewNop())
	audits := NewAuditRepository(db.DB, zap.NewNop())
	ctx := context.Background()
	require.NoError(t, records.Create(ctx, newTransaction("t-1", workflow.StateSubmitted)))

	rec, err := records.Load(ctx, workflow.KindTransaction, "t-1")
	require.NoError(t, err)
	boom := errors.New("boom")

	err = db.WithTransaction(ctx, func(txCtx context.Context) error {
		rec.Meta().State = workflow.StateExamined
		if err := records.Save(txCtx, rec); err != nil {
			return err
		}
		if err := audits.Append(txCtx, workflow.KindTransaction, "t-1", entity.AuditEntry{
			Action: workflow.ActionExamined, Actor: alice, Timestamp: time.Now().UTC(),
		}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	reloaded, err := records.Load(ctx, workflow.KindTransaction, "t-1")
	require.NoError(t, err)
	assert.Equal(t, workflow.StateSubmitted, reloaded.Meta().State)
	assert.Equal(t, int64(0), reloaded.Meta().Version)
	assert.Empty(t, reloaded.Meta().History)
}

func TestDividendRepository_Lifecycle(t *testing.T) {
	db := setupDB(t)
	repo := NewDividendRepository(db.DB, zap.NewNop())
	ctx := context.Background()

	d := &entity.Dividend{
		ID:                  "d-1",
		IssuingCompanyID:    "c-1",
		GeneralAssemblyDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		PaymentDate:         time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		TotalAmount:         decimal.RequireFromString("100000.50"),
		PerShare:            decimal.RequireFromString("12.25"),
	}
	require.NoError(t, repo.Create(ctx, d))

	d.IsValidated = true
	d.ValidatedBy = &alice
	require.NoError(t, repo.Update(ctx, d))

	got, err := repo.GetByID(ctx, "d-1")
	require.NoError(t, err)
	assert.True(t, got.IsValidated)
	assert.Equal(t, alice, *got.ValidatedBy)
	assert.True(t, got.TotalAmount.Equal(d.TotalAmount))
	assert.True(t, got.PaymentDate.Equal(d.PaymentDate))

	list, err := repo.ListByCompany(ctx, "c-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = repo.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, port.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, &entity.Dividend{ID: "nope"}), port.ErrNotFound)
}

func TestNotificationRepository_ListAndMarkRead(t *testing.T) {
	db := setupDB(t)
	repo := NewNotificationRepository(db.DB, zap.NewNop())
	ctx := context.Background()

	for i, id := range []string{"n-1", "n-2"} {
		require.NoError(t, repo.Create(ctx, &entity.Notification{
			ID:        id,
			Recipient: "u-1",
			Title:     "Record approved",
			Type:      entity.NotificationTypeInApp,
			Status:    entity.NotificationStatusPending,
			CreatedAt: time.Date(2026, 1, 1, i, 0, 0, 0, time.UTC),
		}))
	}

	list, err := repo.ListByRecipient(ctx, "u-1", false)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "n-2", list[0].ID)

	require.NoError(t, repo.MarkRead(ctx, "n-1"))
	unread, err := repo.ListByRecipient(ctx, "u-1", true)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "n-2", unread[0].ID)

	n, err := repo.GetByID(ctx, "n-1")
	require.NoError(t, err)
	assert.True(t, n.IsRead)

	assert.ErrorIs(t, repo.MarkRead(ctx, "missing"), port.ErrNotFound)
}

func TestNotificationRepository_RejectsSentBeforeCreated(t *testing.T) {
	db := setupDB(t)
	repo := NewNotificationRepository(db.DB, zap.NewNop())

	created := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	sent := created.Add(-time.Hour)
	err := repo.Create(context.Background(), &entity.Notification{
		ID: "n-1", Recipient: "u-1", Title: "x",
		Type: entity.NotificationTypeEmail, Status: entity.NotificationStatusSent,
		CreatedAt: created, SentAt: &sent,
	})
	assert.Error(t, err)
}

func TestNotificationRepository_MarkAllReadAndCount(t *testing.T) {
	db := setupDB(t)
	repo := NewNotificationRepository(db.DB, zap.NewNop())
	ctx := context.Background()

	for i, recipient := range []string{"u-1", "u-1", "u-2"} {
		require.NoError(t, repo.Create(ctx, &entity.Notification{
			ID:        "n-" + string(rune('a'+i)),
			Recipient: recipient,
			Title:     "Record examined",
			Type:      entity.NotificationTypeInApp,
			Status:    entity.NotificationStatusPending,
			CreatedAt: time.Date(2026, 1, 1, i, 0, 0, 0, time.UTC),
		}))
	}

	count, err := repo.CountUnread(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	changed, err := repo.MarkAllRead(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), changed)

	count, err = repo.CountUnread(ctx, "u-1")
	require.NoError(t, err)
	assert.Zero(t, count)

	count, err = repo.CountUnread(ctx, "u-2")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAnnouncementRepository_Lifecycle(t *testing.T) {
	db := setupDB(t)
	repo := NewAnnouncementRepository(db.DB, zap.NewNop())
	ctx := context.Background()
	day := func(d int) time.Time { return time.Date(2026, 6, d, 0, 0, 0, 0, time.UTC) }
	bob := authz.PrincipalRef{Username: "bob"}

	newAnnouncement := func(id string, by authz.PrincipalRef, expires time.Time) *entity.Announcement {
		return &entity.Announcement{
			ID:               id,
			IssuingCompanyID: "c-1",
			Type:             entity.AnnouncementSale,
			Description:      "shares for sale",
			Quantity:         5,
			Price:            decimal.RequireFromString("9.75"),
			AnnouncementDate: day(1),
			ExpirationDate:   expires,
			IsActive:         true,
			CreatedBy:        by,
		}
	}
	require.NoError(t, repo.Create(ctx, newAnnouncement("a-1", alice, day(20))))
	require.NoError(t, repo.Create(ctx, newAnnouncement("a-2", alice, day(10))))
	require.NoError(t, repo.Create(ctx, newAnnouncement("a-3", bob, day(15))))

	got, err := repo.GetByID(ctx, "a-1")
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("9.75")))
	assert.True(t, got.ExpirationDate.Equal(day(20)))
	assert.Equal(t, alice, got.CreatedBy)

	// a-2 expired before the 15th, a-3 expires on it
	active, err := repo.ListActive(ctx, day(15))
	require.NoError(t, err)
	ids := []string{}
	for _, a := range active {
		ids = append(ids, a.ID)
	}
	assert.ElementsMatch(t, []string{"a-1", "a-3"}, ids)

	got.IsActive = false
	require.NoError(t, repo.Update(ctx, got))
	active, err = repo.ListActive(ctx, day(15))
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "a-3", active[0].ID)

	mine, err := repo.ListByCreator(ctx, alice.Key())
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	byName, err := repo.ListByCreator(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "a-3", byName[0].ID)

	_, err = repo.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, port.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, &entity.Announcement{ID: "nope"}), port.ErrNotFound)
}
