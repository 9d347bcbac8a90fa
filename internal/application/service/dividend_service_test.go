package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/swenshares/internal/application/dispatcher"
	appwf "github.com/garyjia/swenshares/internal/application/workflow"
	"github.com/garyjia/swenshares/internal/domain/audit"
	"github.com/garyjia/swenshares/internal/domain/authz"
	"github.com/garyjia/swenshares/internal/domain/entity"
	"github.com/garyjia/swenshares/internal/domain/event"
)

var fixedNow = time.Date(2026, 6, 15, 14, 30, 0, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newDividends(repo *mockDividendRepo, d *recordingDispatcher) DividendService {
	clock := audit.ClockFunc(func() time.Time { return fixedNow })
	var disp dispatcher.Dispatcher
	if d != nil {
		disp = d
	}
	return NewDividendService(repo, authz.TokenRoles{}, clock, disp, &mockLogger{})
}

func validDividend() *entity.Dividend {
	return &entity.Dividend{
		IssuingCompanyID:    "c-1",
		GeneralAssemblyDate: date(2026, 5, 1),
		PaymentDate:         date(2026, 7, 1),
		TotalAmount:         decimal.NewFromInt(10000),
		PerShare:            decimal.RequireFromString("2.50"),
	}
}

func TestDividendService_CreateValidation(t *testing.T) {
	editor := principalWith("ed", authz.RoleEditor)

	tests := []struct {
		name   string
		mutate func(d *entity.Dividend)
	}{
		{"payment before assembly", func(d *entity.Dividend) { d.PaymentDate = date(2026, 4, 1) }},
		{"payment on assembly day", func(d *entity.Dividend) { d.PaymentDate = d.GeneralAssemblyDate }},
		{"zero per share", func(d *entity.Dividend) { d.PerShare = decimal.Zero }},
		{"negative total", func(d *entity.Dividend) { d.TotalAmount = decimal.NewFromInt(-1) }},
		{"no company", func(d *entity.Dividend) { d.IssuingCompanyID = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newDividends(newMockDividendRepo(), nil)
			d := validDividend()
			tt.mutate(d)

			_, err := svc.Create(context.Background(), d, editor)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestDividendService_ValidateAndCancel(t *testing.T) {
	repo := newMockDividendRepo()
	disp := &recordingDispatcher{}
	svc := newDividends(repo, disp)
	editor := principalWith("ed", authz.RoleEditor)
	ctx := context.Background()

	d, err := svc.Create(ctx, validDividend(), editor)
	require.NoError(t, err)
	require.NotEmpty(t, d.ID)

	validated, err := svc.Validate(ctx, d.ID, editor)
	require.NoError(t, err)
	assert.True(t, validated.IsValidated)
	assert.Equal(t, editor.Ref(), *validated.ValidatedBy)

	_, err = svc.Validate(ctx, d.ID, editor)
	assert.ErrorIs(t, err, ErrAlreadyValidated)

	cancelled, err := svc.CancelValidation(ctx, d.ID, editor)
	require.NoError(t, err)
	assert.False(t, cancelled.IsValidated)
	assert.Nil(t, cancelled.ValidatedBy)

	_, err = svc.CancelValidation(ctx, d.ID, editor)
	assert.ErrorIs(t, err, ErrNotValidated)

	types := make([]event.Type, 0, len(disp.events))
	for _, e := range disp.events {
		types = append(types, e.Type)
	}
	assert.Equal(t, []event.Type{
		event.TypeDividendCreated,
		event.TypeDividendValidated,
		event.TypeDividendValidationCancelled,
	}, types)
}

func TestDividendService_CancelAfterPayment(t *testing.T) {
	repo := newMockDividendRepo()
	svc := newDividends(repo, nil)
	editor := principalWith("ed", authz.RoleEditor)
	ctx := context.Background()

	paidToday := validDividend()
	paidToday.ID = "d-today"
	paidToday.PaymentDate = date(2026, 6, 15)
	paidToday.IsValidated = true
	require.NoError(t, repo.Create(ctx, paidToday))

	_, err := svc.CancelValidation(ctx, "d-today", editor)
	assert.ErrorIs(t, err, ErrAlreadyPaid)
}

func TestDividendService_RequiresEditor(t *testing.T) {
	svc := newDividends(newMockDividendRepo(), nil)

	_, err := svc.Create(context.Background(), validDividend(), principalWith("ap", authz.RoleApprover))
	assert.True(t, errors.Is(err, appwf.ErrUnauthorized))

	_, err = svc.Validate(context.Background(), "any", principalWith("ap", authz.RoleApprover))
	assert.True(t, errors.Is(err, appwf.ErrUnauthorized))
}

func TestDividendService_ValidateMissing(t *testing.T) {
	svc := newDividends(newMockDividendRepo(), nil)

	_, err := svc.Validate(context.Background(), "missing", principalWith("ed", authz.RoleEditor))
	assert.ErrorIs(t, err, appwf.ErrNotFound)
}

func TestDividendService_Upcoming(t *testing.T) {
	repo := newMockDividendRepo()
	svc := newDividends(repo, nil)
	ctx := context.Background()

	seed := []struct {
		id        string
		pay       time.Time
		validated bool
	}{
		{"past", date(2026, 6, 1), true},
		{"today", date(2026, 6, 15), true},
		{"later", date(2026, 9, 1), true},
		{"sooner", date(2026, 7, 1), true},
		{"unvalidated", date(2026, 8, 1), false},
	}
	for _, s := range seed {
		d := validDividend()
		d.ID, d.PaymentDate, d.IsValidated = s.id, s.pay, s.validated
		require.NoError(t, repo.Create(ctx, d))
	}

	got, err := svc.Upcoming(ctx, "c-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "sooner", got[0].ID)
	assert.Equal(t, "later", got[1].ID)
}
