package event

import "github.com/garyjia/swenshares/internal/domain/workflow"

// Type identifies the type of domain event
type Type string

const (
	TypeRecordCreated   Type = "record.created"
	TypeRecordSubmitted Type = "record.submitted"
	TypeRecordExamined  Type = "record.examined"
	TypeRecordApproved  Type = "record.approved"
	TypeRecordRejected  Type = "record.rejected"

	TypeDividendCreated             Type = "dividend.created"
	TypeDividendValidated           Type = "dividend.validated"
	TypeDividendValidationCancelled Type = "dividend.validation_cancelled"

	TypeAnnouncementCreated     Type = "announcement.created"
	TypeAnnouncementDeactivated Type = "announcement.deactivated"
	TypeAnnouncementExtended    Type = "announcement.extended"
)

// TransitionTypes lists the events emitted after a committed transition
var TransitionTypes = []Type{
	TypeRecordSubmitted,
	TypeRecordExamined,
	TypeRecordApproved,
	TypeRecordRejected,
}

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeRecordCreated,
		TypeRecordSubmitted,
		TypeRecordExamined,
		TypeRecordApproved,
		TypeRecordRejected,
		TypeDividendCreated,
		TypeDividendValidated,
		TypeDividendValidationCancelled,
		TypeAnnouncementCreated,
		TypeAnnouncementDeactivated,
		TypeAnnouncementExtended:
		return true
	default:
		return false
	}
}

// ForAction returns the event type emitted for a workflow action
func ForAction(a workflow.Action) Type {
	return Type("record." + string(a))
}
