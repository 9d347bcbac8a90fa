package workflow

import (
	"context"
	"time"

	"github.com/garyjia/swenshares/internal/domain/authz"
	"github.com/garyjia/swenshares/internal/domain/entity"
	domainwf "github.com/garyjia/swenshares/internal/domain/workflow"
)

// WorkflowService is the single entry point for moving registry records
// through the approval pipeline
type WorkflowService interface {
	// Transition moves one record to Target on behalf of Principal
	Transition(ctx context.Context, req TransitionRequest) (*Snapshot, error)

	// AvailableTransitions lists the targets the principal may request now.
	// Records the principal may not see are reported as ErrNotFound.
	AvailableTransitions(ctx context.Context, kind domainwf.Kind, id string, p authz.Principal) ([]domainwf.State, error)

	// History returns the record's audit entries, oldest first.
	// Records the principal may not see are reported as ErrNotFound.
	History(ctx context.Context, kind domainwf.Kind, id string, p authz.Principal) ([]entity.AuditEntry, error)
}

// TransitionRequest carries one transition demand from the API layer
type TransitionRequest struct {
	Kind      domainwf.Kind
	ID        string
	Target    domainwf.State
	Principal authz.Principal
	Comment   string
}

// Snapshot is a read-only copy of a record after an operation
type Snapshot struct {
	Kind       domainwf.Kind       `json:"kind"`
	ID         string              `json:"id"`
	State      domainwf.State      `json:"state"`
	CreatedBy  authz.PrincipalRef  `json:"created_by"`
	ExaminedBy *authz.PrincipalRef `json:"examined_by,omitempty"`
	ApprovedBy *authz.PrincipalRef `json:"approved_by,omitempty"`
	Notes      []string            `json:"notes"`
	History    []entity.AuditEntry `json:"history"`
	Version    int64               `json:"version"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
	Data       entity.Record       `json:"data"`
}

// NewSnapshot copies rec into a Snapshot
func NewSnapshot(rec entity.Record) *Snapshot {
	c := rec.Clone()
	m := c.Meta()
	return &Snapshot{
		Kind:       c.Kind(),
		ID:         c.RecordID(),
		State:      m.State,
		CreatedBy:  m.CreatedBy,
		ExaminedBy: m.ExaminedBy,
		ApprovedBy: m.ApprovedBy,
		Notes:      m.Notes,
		History:    m.History,
		Version:    m.Version,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
		Data:       c,
	}
}
