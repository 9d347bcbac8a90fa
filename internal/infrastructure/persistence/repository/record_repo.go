package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/swenshares/internal/application/port"
	"github.com/garyjia/swenshares/internal/domain/audit"
	"github.com/garyjia/swenshares/internal/domain/authz"
	"github.com/garyjia/swenshares/internal/domain/entity"
	"github.com/garyjia/swenshares/internal/domain/workflow"
	"github.com/garyjia/swenshares/internal/infrastructure/persistence/sqlite"
)

// RecordRepository implements port.RecordRepository on the registry_records table
type RecordRepository struct {
	db     *sql.DB
	audits *AuditRepository
	logger *zap.Logger
}

// NewRecordRepository creates a new record repository
func NewRecordRepository(db *sql.DB, logger *zap.Logger) *RecordRepository {
	return &RecordRepository{
		db:     db,
		audits: NewAuditRepository(db, logger),
		logger: logger,
	}
}

const recordColumns = `
	kind, id, state,
	created_by_id, created_by_username,
	examined_by_id, examined_by_username,
	approved_by_id, approved_by_username,
	payload, version, created_at, updated_at`

// Create inserts a new record at version 0
func (r *RecordRepository) Create(ctx context.Context, rec entity.Record) error {
	meta := rec.Meta()
	if !meta.State.IsValid() {
		return fmt.Errorf("create %s: %w: %q", rec.Kind(), workflow.ErrInvalidState, meta.State)
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", rec.Kind(), err)
	}

	now := time.Now().UTC()
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = now
	}
	meta.UpdatedAt = now
	meta.Version = 0

	exID, exName := refColumns(meta.ExaminedBy)
	apID, apName := refColumns(meta.ApprovedBy)

	query := `INSERT INTO registry_records (` + recordColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		rec.Kind(), rec.RecordID(), meta.State,
		meta.CreatedBy.ID, meta.CreatedBy.Username,
		exID, exName,
		apID, apName,
		string(payload), meta.Version, meta.CreatedAt, meta.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create record",
			zap.String("kind", rec.Kind().String()),
			zap.String("id", rec.RecordID()),
			zap.Error(err))
		return fmt.Errorf("failed to create record: %w", err)
	}
	return nil
}

// Load returns the record with its history and rendered notes
func (r *RecordRepository) Load(ctx context.Context, kind workflow.Kind, id string) (entity.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM registry_records WHERE kind = ? AND id = ?`
	row := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, kind, id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s %s: %w", kind, id, port.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to load record",
			zap.String("kind", kind.String()),
			zap.String("id", id),
			zap.Error(err))
		return nil, fmt.Errorf("failed to load record: %w", err)
	}

	if err := r.hydrate(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Save updates the record when the stored version matches, then bumps the version
func (r *RecordRepository) Save(ctx context.Context, rec entity.Record) error {
	meta := rec.Meta()
	if !meta.State.IsValid() {
		return fmt.Errorf("save %s: %w: %q", rec.Kind(), workflow.ErrInvalidState, meta.State)
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", rec.Kind(), err)
	}

	now := time.Now().UTC()
	exID, exName := refColumns(meta.ExaminedBy)
	apID, apName := refColumns(meta.ApprovedBy)

	query := `
		UPDATE registry_records
		SET state = ?,
			examined_by_id = ?, examined_by_username = ?,
			approved_by_id = ?, approved_by_username = ?,
			payload = ?, version = version + 1, updated_at = ?
		WHERE kind = ? AND id = ? AND version = ?`

	exec := sqlite.ExecutorFrom(ctx, r.db)
	res, err := exec.ExecContext(ctx, query,
		meta.State,
		exID, exName,
		apID, apName,
		string(payload), now,
		rec.Kind(), rec.RecordID(), meta.Version,
	)
	if err != nil {
		r.logger.Error("Failed to save record",
			zap.String("kind", rec.Kind().String()),
			zap.String("id", rec.RecordID()),
			zap.Error(err))
		return fmt.Errorf("failed to save record: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		var exists int
		err := exec.QueryRowContext(ctx,
			`SELECT 1 FROM registry_records WHERE kind = ? AND id = ?`, rec.Kind(), rec.RecordID()).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%s %s: %w", rec.Kind(), rec.RecordID(), port.ErrNotFound)
		}
		return fmt.Errorf("%s %s at version %d: %w", rec.Kind(), rec.RecordID(), meta.Version, port.ErrConcurrentUpdate)
	}

	meta.Version++
	meta.UpdatedAt = now
	return nil
}

// creatorKey mirrors authz.PrincipalRef.Key: the subject id, or the
// username when the token carried no subject
const creatorKey = `(CASE WHEN created_by_id <> '' THEN created_by_id ELSE created_by_username END)`

// List returns records of kind matching filter, newest first
func (r *RecordRepository) List(ctx context.Context, kind workflow.Kind, filter port.RecordFilter) ([]entity.Record, error) {
	var (
		where = []string{"kind = ?"}
		args  = []interface{}{kind}
		or    []string
	)

	if len(filter.States) > 0 {
		marks := make([]string, len(filter.States))
		for i, s := range filter.States {
			marks[i] = "?"
			args = append(args, s)
		}
		or = append(or, "state IN ("+strings.Join(marks, ", ")+")")
	}
	if filter.CreatedBy != "" {
		or = append(or, creatorKey+" = ?")
		args = append(args, filter.CreatedBy)
	}
	if len(or) > 0 {
		where = append(where, "("+strings.Join(or, " OR ")+")")
	}

	query := `SELECT ` + recordColumns + ` FROM registry_records WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY created_at DESC, id`
	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list records", zap.String("kind", kind.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var out []entity.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}

	for _, rec := range out {
		if err := r.hydrate(ctx, rec); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *RecordRepository) hydrate(ctx context.Context, rec entity.Record) error {
	history, err := r.audits.ListByRecord(ctx, rec.Kind(), rec.RecordID())
	if err != nil {
		return err
	}
	meta := rec.Meta()
	meta.History = history
	meta.Notes = audit.RenderNotes(history)
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(s scanner) (entity.Record, error) {
	var (
		kind, id, state, payload string
		createdID, createdName   string
		exID, exName             sql.NullString
		apID, apName             sql.NullString
		version                  int64
		createdAt, updatedAt     time.Time
	)

	if err := s.Scan(
		&kind, &id, &state,
		&createdID, &createdName,
		&exID, &exName,
		&apID, &apName,
		&payload, &version, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	st := workflow.State(state)
	if !st.IsValid() {
		return nil, fmt.Errorf("%s %s: %w: %q", kind, id, workflow.ErrInvalidState, state)
	}

	rec, err := entity.New(workflow.Kind(kind))
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(payload), rec); err != nil {
		return nil, fmt.Errorf("failed to decode %s payload: %w", kind, err)
	}
	rec.SetRecordID(id)

	meta := rec.Meta()
	meta.State = st
	meta.CreatedBy = authz.PrincipalRef{ID: createdID, Username: createdName}
	meta.ExaminedBy = refFromColumns(exID, exName)
	meta.ApprovedBy = refFromColumns(apID, apName)
	meta.Version = version
	meta.CreatedAt = createdAt
	meta.UpdatedAt = updatedAt
	return rec, nil
}

func refColumns(ref *authz.PrincipalRef) (sql.NullString, sql.NullString) {
	if ref == nil {
		return sql.NullString{}, sql.NullString{}
	}
	return sql.NullString{String: ref.ID, Valid: true}, sql.NullString{String: ref.Username, Valid: true}
}

func refFromColumns(id, name sql.NullString) *authz.PrincipalRef {
	if !id.Valid && !name.Valid {
		return nil
	}
	return &authz.PrincipalRef{ID: id.String, Username: name.String}
}

var _ port.RecordRepository = (*RecordRepository)(nil)
