package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/garyjia/swenshares/internal/application/port"
	"github.com/garyjia/swenshares/internal/domain/entity"
	"github.com/garyjia/swenshares/internal/infrastructure/persistence/sqlite"
)

// DividendRepository implements port.DividendRepository
type DividendRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDividendRepository creates a new dividend repository
func NewDividendRepository(db *sql.DB, logger *zap.Logger) *DividendRepository {
	return &DividendRepository{
		db:     db,
		logger: logger,
	}
}

const dividendColumns = `
	id, issuing_company_id, general_assembly_date, payment_date,
	total_amount, per_share, is_validated,
	validated_by_id, validated_by_username, created_at, updated_at`

// Create inserts a dividend
func (r *DividendRepository) Create(ctx context.Context, d *entity.Dividend) error {
	now := time.Now().UTC()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now

	vID, vName := refColumns(d.ValidatedBy)
	query := `INSERT INTO dividends (` + dividendColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		d.ID, d.IssuingCompanyID, d.GeneralAssemblyDate, d.PaymentDate,
		d.TotalAmount.String(), d.PerShare.String(), d.IsValidated,
		vID, vName, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create dividend",
			zap.String("id", d.ID),
			zap.String("issuing_company_id", d.IssuingCompanyID),
			zap.Error(err))
		return fmt.Errorf("failed to create dividend: %w", err)
	}
	return nil
}

// GetByID retrieves a dividend by ID
func (r *DividendRepository) GetByID(ctx context.Context, id string) (*entity.Dividend, error) {
	query := `SELECT ` + dividendColumns + ` FROM dividends WHERE id = ?`
	d, err := scanDividend(sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("dividend %s: %w", id, port.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get dividend", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get dividend: %w", err)
	}
	return d, nil
}

// Update writes the validation state of a dividend
func (r *DividendRepository) Update(ctx context.Context, d *entity.Dividend) error {
	now := time.Now().UTC()
	vID, vName := refColumns(d.ValidatedBy)

	query := `
		UPDATE dividends
		SET payment_date = ?, total_amount = ?, per_share = ?, is_validated = ?,
			validated_by_id = ?, validated_by_username = ?, updated_at = ?
		WHERE id = ?
	`
	res, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		d.PaymentDate, d.TotalAmount.String(), d.PerShare.String(), d.IsValidated,
		vID, vName, now, d.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update dividend", zap.String("id", d.ID), zap.Error(err))
		return fmt.Errorf("failed to update dividend: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("dividend %s: %w", d.ID, port.ErrNotFound)
	}

	d.UpdatedAt = now
	return nil
}

// ListByCompany returns a company's dividends, latest assembly first
func (r *DividendRepository) ListByCompany(ctx context.Context, companyID string) ([]*entity.Dividend, error) {
	query := `SELECT ` + dividendColumns + ` FROM dividends WHERE issuing_company_id = ? ORDER BY general_assembly_date DESC`
	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, companyID)
	if err != nil {
		r.logger.Error("Failed to list dividends", zap.String("issuing_company_id", companyID), zap.Error(err))
		return nil, fmt.Errorf("failed to list dividends: %w", err)
	}
	defer rows.Close()

	var out []*entity.Dividend
	for rows.Next() {
		d, err := scanDividend(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dividend: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func scanDividend(s scanner) (*entity.Dividend, error) {
	var (
		d          entity.Dividend
		total, per string
		vID, vName sql.NullString
	)
	if err := s.Scan(
		&d.ID, &d.IssuingCompanyID, &d.GeneralAssemblyDate, &d.PaymentDate,
		&total, &per, &d.IsValidated,
		&vID, &vName, &d.CreatedAt, &d.UpdatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if d.TotalAmount, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("dividend %s total amount: %w", d.ID, err)
	}
	if d.PerShare, err = decimal.NewFromString(per); err != nil {
		return nil, fmt.Errorf("dividend %s per share: %w", d.ID, err)
	}
	d.ValidatedBy = refFromColumns(vID, vName)
	return &d, nil
}

var _ port.DividendRepository = (*DividendRepository)(nil)
