package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/swenshares/internal/application/port"
	"github.com/garyjia/swenshares/internal/domain/entity"
	"github.com/garyjia/swenshares/internal/infrastructure/persistence/sqlite"
)

// NotificationRepository implements port.NotificationRepository
type NotificationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *sql.DB, logger *zap.Logger) *NotificationRepository {
	return &NotificationRepository{
		db:     db,
		logger: logger,
	}
}

const notificationColumns = `
	id, recipient, title, description, type, status, is_read,
	record_kind, record_id, created_at, sent_at`

// Create inserts a notification
func (r *NotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	if n.SentAt != nil && n.SentAt.Before(n.CreatedAt) {
		return fmt.Errorf("notification %s: sent date cannot be before created date", n.ID)
	}

	var sentAt sql.NullTime
	if n.SentAt != nil {
		sentAt = sql.NullTime{Time: *n.SentAt, Valid: true}
	}

	query := `INSERT INTO notifications (` + notificationColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		n.ID, n.Recipient, n.Title, n.Description, n.Type, n.Status, n.IsRead,
		n.RecordKind, n.RecordID, n.CreatedAt, sentAt,
	)
	if err != nil {
		r.logger.Error("Failed to create notification",
			zap.String("recipient", n.Recipient),
			zap.String("record_id", n.RecordID),
			zap.Error(err))
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// GetByID retrieves a notification by ID
func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*entity.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = ?`
	n, err := scanNotification(sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("notification %s: %w", id, port.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get notification", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return n, nil
}

// ListByRecipient returns a user's notifications, newest first
func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipient string, unreadOnly bool) ([]*entity.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE recipient = ?`
	if unreadOnly {
		query += ` AND is_read = 0`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, recipient)
	if err != nil {
		r.logger.Error("Failed to list notifications", zap.String("recipient", recipient), zap.Error(err))
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var out []*entity.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead flags a notification as read
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	res, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, `UPDATE notifications SET is_read = 1 WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to mark notification read", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("notification %s: %w", id, port.ErrNotFound)
	}
	return nil
}

// MarkAllRead flags every unread notification of recipient as read
func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipient string) (int64, error) {
	res, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE recipient = ? AND is_read = 0`, recipient)
	if err != nil {
		r.logger.Error("Failed to mark notifications read", zap.String("recipient", recipient), zap.Error(err))
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n, nil
}

// CountUnread returns how many of recipient's notifications are unread
func (r *NotificationRepository) CountUnread(ctx context.Context, recipient string) (int, error) {
	var count int
	err := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE recipient = ? AND is_read = 0`, recipient).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count unread notifications", zap.String("recipient", recipient), zap.Error(err))
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

func scanNotification(s scanner) (*entity.Notification, error) {
	var (
		n      entity.Notification
		sentAt sql.NullTime
	)
	if err := s.Scan(
		&n.ID, &n.Recipient, &n.Title, &n.Description, &n.Type, &n.Status, &n.IsRead,
		&n.RecordKind, &n.RecordID, &n.CreatedAt, &sentAt,
	); err != nil {
		return nil, err
	}
	if sentAt.Valid {
		n.SentAt = &sentAt.Time
	}
	return &n, nil
}

var _ port.NotificationRepository = (*NotificationRepository)(nil)
