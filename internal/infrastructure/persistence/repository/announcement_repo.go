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

// AnnouncementRepository implements port.AnnouncementRepository
type AnnouncementRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAnnouncementRepository creates a new announcement repository
func NewAnnouncementRepository(db *sql.DB, logger *zap.Logger) *AnnouncementRepository {
	return &AnnouncementRepository{
		db:     db,
		logger: logger,
	}
}

const announcementColumns = `
	id, issuing_company_id, type, description, quantity, price,
	announcement_date, expiration_date, is_active,
	created_by_id, created_by_username, created_at, updated_at`

// Create inserts an announcement
func (r *AnnouncementRepository) Create(ctx context.Context, a *entity.Announcement) error {
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now

	query := `INSERT INTO announcements (` + announcementColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		a.ID, a.IssuingCompanyID, a.Type, a.Description, a.Quantity, a.Price.String(),
		a.AnnouncementDate, a.ExpirationDate, a.IsActive,
		a.CreatedBy.ID, a.CreatedBy.Username, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create announcement",
			zap.String("id", a.ID),
			zap.String("issuing_company_id", a.IssuingCompanyID),
			zap.Error(err))
		return fmt.Errorf("failed to create announcement: %w", err)
	}
	return nil
}

// GetByID retrieves an announcement by ID
func (r *AnnouncementRepository) GetByID(ctx context.Context, id string) (*entity.Announcement, error) {
	query := `SELECT ` + announcementColumns + ` FROM announcements WHERE id = ?`
	a, err := scanAnnouncement(sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("announcement %s: %w", id, port.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get announcement", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get announcement: %w", err)
	}
	return a, nil
}

// Update writes the mutable fields of an announcement
func (r *AnnouncementRepository) Update(ctx context.Context, a *entity.Announcement) error {
	now := time.Now().UTC()

	query := `
		UPDATE announcements
		SET description = ?, quantity = ?, price = ?, expiration_date = ?, is_active = ?, updated_at = ?
		WHERE id = ?
	`
	res, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		a.Description, a.Quantity, a.Price.String(), a.ExpirationDate, a.IsActive, now, a.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update announcement", zap.String("id", a.ID), zap.Error(err))
		return fmt.Errorf("failed to update announcement: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("announcement %s: %w", a.ID, port.ErrNotFound)
	}

	a.UpdatedAt = now
	return nil
}

// ListActive returns active announcements that have not expired before day
func (r *AnnouncementRepository) ListActive(ctx context.Context, day time.Time) ([]*entity.Announcement, error) {
	query := `SELECT ` + announcementColumns + ` FROM announcements
		WHERE is_active = 1 AND expiration_date >= ?
		ORDER BY announcement_date DESC, created_at DESC`
	return r.list(ctx, query, day)
}

// ListByCreator returns every announcement created by the principal with key creator
func (r *AnnouncementRepository) ListByCreator(ctx context.Context, creator string) ([]*entity.Announcement, error) {
	query := `SELECT ` + announcementColumns + ` FROM announcements
		WHERE (CASE WHEN created_by_id <> '' THEN created_by_id ELSE created_by_username END) = ?
		ORDER BY announcement_date DESC, created_at DESC`
	return r.list(ctx, query, creator)
}

func (r *AnnouncementRepository) list(ctx context.Context, query string, args ...interface{}) ([]*entity.Announcement, error) {
	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list announcements", zap.Error(err))
		return nil, fmt.Errorf("failed to list announcements: %w", err)
	}
	defer rows.Close()

	var out []*entity.Announcement
	for rows.Next() {
		a, err := scanAnnouncement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan announcement: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAnnouncement(s scanner) (*entity.Announcement, error) {
	var (
		a     entity.Announcement
		price string
	)
	if err := s.Scan(
		&a.ID, &a.IssuingCompanyID, &a.Type, &a.Description, &a.Quantity, &price,
		&a.AnnouncementDate, &a.ExpirationDate, &a.IsActive,
		&a.CreatedBy.ID, &a.CreatedBy.Username, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if a.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("announcement %s price: %w", a.ID, err)
	}
	return &a, nil
}

var _ port.AnnouncementRepository = (*AnnouncementRepository)(nil)
