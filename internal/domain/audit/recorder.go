// Package audit appends transition history to registry records.
package audit

import (
	"fmt"
	"strings"
	"time"

	"github.com/garyjia/swenshares/internal/domain/authz"
	"github.com/garyjia/swenshares/internal/domain/entity"
	"github.com/garyjia/swenshares/internal/domain/workflow"
)

// Clock provides the current time
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC
type SystemClock struct{}

// Now returns the current UTC time
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// ClockFunc adapts a function to Clock
type ClockFunc func() time.Time

// Now calls f
func (f ClockFunc) Now() time.Time {
	return f()
}

// Recorder appends audit entries and their rendered notes to records
type Recorder struct {
	clock Clock
}

// NewRecorder creates a recorder reading time from clock
func NewRecorder(clock Clock) *Recorder {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Recorder{clock: clock}
}

// Record appends one entry to rec's history and one line to its notes.
// Existing entries are never touched.
func (r *Recorder) Record(rec entity.Record, action workflow.Action, actor authz.PrincipalRef, comment string) entity.AuditEntry {
	entry := entity.AuditEntry{
		Action:    action,
		Actor:     actor,
		Timestamp: r.clock.Now(),
		Comment:   comment,
	}

	meta := rec.Meta()
	meta.History = append(meta.History, entry)
	meta.Notes = append(meta.Notes, FormatNote(entry))
	return entry
}

// FormatNote renders an entry as "[<action> <timestamp>]: <comment>"
func FormatNote(e entity.AuditEntry) string {
	return strings.TrimSpace(fmt.Sprintf("[%s %s]: %s", e.Action, e.Timestamp.Format(time.RFC3339), e.Comment))
}

// RenderNotes renders the notes view of a history
func RenderNotes(history []entity.AuditEntry) []string {
	if len(history) == 0 {
		return nil
	}
	notes := make([]string, len(history))
	for i, e := range history {
		notes[i] = FormatNote(e)
	}
	return notes
}
