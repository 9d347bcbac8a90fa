package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/swenshares/internal/application/port"
	"github.com/garyjia/swenshares/internal/domain/authz"
	"github.com/garyjia/swenshares/internal/domain/entity"
	"github.com/garyjia/swenshares/internal/domain/workflow"
	"github.com/garyjia/swenshares/internal/infrastructure/persistence/sqlite"
)

// AuditRepository implements port.AuditRepository. Rows are insert-only.
type AuditRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *sql.DB, logger *zap.Logger) *AuditRepository {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

// Append stores one history entry for a record
func (r *AuditRepository) Append(ctx context.Context, kind workflow.Kind, recordID string, entry entity.AuditEntry) error {
	query := `
		INSERT INTO audit_entries (
			record_kind, record_id, action, actor_id, actor_username, comment, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		kind, recordID, entry.Action,
		entry.Actor.ID, entry.Actor.Username,
		entry.Comment, entry.Timestamp,
	)
	if err != nil {
		r.logger.Error("Failed to append audit entry",
			zap.String("kind", kind.String()),
			zap.String("record_id", recordID),
			zap.String("action", entry.Action.String()),
			zap.Error(err))
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

// ListByRecord returns a record's entries in insertion order
func (r *AuditRepository) ListByRecord(ctx context.Context, kind workflow.Kind, recordID string) ([]entity.AuditEntry, error) {
	query := `
		SELECT action, actor_id, actor_username, comment, created_at
		FROM audit_entries
		WHERE record_kind = ? AND record_id = ?
		ORDER BY id ASC
	`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, kind, recordID)
	if err != nil {
		r.logger.Error("Failed to list audit entries",
			zap.String("kind", kind.String()),
			zap.String("record_id", recordID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []entity.AuditEntry
	for rows.Next() {
		var (
			action, actorID, actorName, comment string
			ts                                  time.Time
		)
		if err := rows.Scan(&action, &actorID, &actorName, &comment, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, entity.AuditEntry{
			Action:    workflow.Action(action),
			Actor:     authz.PrincipalRef{ID: actorID, Username: actorName},
			Timestamp: ts.UTC(),
			Comment:   comment,
		})
	}
	return entries, rows.Err()
}

var _ port.AuditRepository = (*AuditRepository)(nil)
