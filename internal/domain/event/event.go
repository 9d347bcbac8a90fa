package event

import (
	"time"

	"github.com/google/uuid"
)

// Event represents a domain event
type Event struct {
	ID            string            `json:"id"`
	Type          Type              `json:"type"`
	Kind          string            `json:"kind"`
	SubjectID     string            `json:"subject_id"`
	Actor         string            `json:"actor,omitempty"`
	Payload       map[string]string `json:"payload,omitempty"`
	Timestamp     time.Time         `json:"timestamp"`
	CorrelationID string            `json:"correlation_id"`
}

// New creates a domain event about the subject identified by kind and id
func New(eventType Type, kind, subjectID, actor string, payload map[string]string) *Event {
	return NewWithCorrelation(eventType, kind, subjectID, actor, payload, uuid.NewString())
}

// NewWithCorrelation creates an event linked to a correlation chain
func NewWithCorrelation(eventType Type, kind, subjectID, actor string, payload map[string]string, correlationID string) *Event {
	return &Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		Kind:          kind,
		SubjectID:     subjectID,
		Actor:         actor,
		Payload:       payload,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
	}
}

// WithPayload returns a copy of the event with key set in the payload
func (e *Event) WithPayload(key, value string) *Event {
	payload := make(map[string]string, len(e.Payload)+1)
	for k, v := range e.Payload {
		payload[k] = v
	}
	payload[key] = value

	out := *e
	out.Payload = payload
	return &out
}

// Get returns a payload value or the empty string
func (e *Event) Get(key string) string {
	return e.Payload[key]
}

// Payload keys used by transition events
const (
	KeyFromState = "from_state"
	KeyToState   = "to_state"
	KeyComment   = "comment"
	KeyCreatedBy = "created_by"
)
