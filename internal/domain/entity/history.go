package entity

import (
	"time"

	"github.com/garyjia/swenshares/internal/domain/authz"
	"github.com/garyjia/swenshares/internal/domain/workflow"
)

// AuditEntry is one immutable line of a record's transition history
type AuditEntry struct {
	Action    workflow.Action    `json:"action"`
	Actor     authz.PrincipalRef `json:"actor"`
	Timestamp time.Time          `json:"timestamp"`
	Comment   string             `json:"comment,omitempty"`
}
