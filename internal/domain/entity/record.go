package entity

import (
	"time"

	"github.com/garyjia/swenshares/internal/domain/authz"
	"github.com/garyjia/swenshares/internal/domain/workflow"
)

// Workflow holds the approval metadata shared by every registry record.
// It is persisted in dedicated columns, never in the record payload.
type Workflow struct {
	State      workflow.State
	CreatedBy  authz.PrincipalRef
	ExaminedBy *authz.PrincipalRef
	ApprovedBy *authz.PrincipalRef
	Notes      []string
	History    []AuditEntry
	Version    int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (w Workflow) clone() Workflow {
	out := w
	if w.ExaminedBy != nil {
		ref := *w.ExaminedBy
		out.ExaminedBy = &ref
	}
	if w.ApprovedBy != nil {
		ref := *w.ApprovedBy
		out.ApprovedBy = &ref
	}
	out.Notes = append([]string(nil), w.Notes...)
	out.History = append([]AuditEntry(nil), w.History...)
	return out
}

// Record is a workflow-managed registry entry
type Record interface {
	Kind() workflow.Kind
	RecordID() string
	SetRecordID(id string)
	Meta() *Workflow
	Clone() Record
}

// New returns an empty record of the given kind, ready to be decoded into
func New(kind workflow.Kind) (Record, error) {
	switch kind {
	case workflow.KindIssuingCompany:
		return &IssuingCompany{}, nil
	case workflow.KindPhysicalShareholder:
		return &Shareholder{Type: ShareholderPhysical}, nil
	case workflow.KindLegalShareholder:
		return &Shareholder{Type: ShareholderLegal}, nil
	case workflow.KindSocialAct:
		return &SocialAct{}, nil
	case workflow.KindTransaction:
		return &Transaction{}, nil
	default:
		return nil, workflow.ErrUnknownKind
	}
}
