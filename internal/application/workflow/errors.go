package workflow

import (
	"errors"
	"fmt"

	domainwf "github.com/garyjia/swenshares/internal/domain/workflow"
)

var (
	// ErrIllegalTransition is returned when the requested edge is not in the table
	ErrIllegalTransition = errors.New("illegal transition")

	// ErrUnauthorized is returned when the principal lacks the edge's role
	ErrUnauthorized = errors.New("unauthorized")

	// ErrCalculationFailed is returned when derived fields cannot be computed
	ErrCalculationFailed = errors.New("calculation failed")

	// ErrStorage is returned when persistence fails
	ErrStorage = errors.New("storage failure")

	// ErrNotFound is returned when the record does not exist or the
	// principal may not see it
	ErrNotFound = errors.New("record not found")

	// ErrInvalidRecord is returned when a resubmitted record misses required fields
	ErrInvalidRecord = errors.New("invalid record")
)

// TransitionError describes a failed transition. Err matches both the
// category sentinel and the underlying cause under errors.Is.
type TransitionError struct {
	Kind domainwf.Kind
	ID   string
	From domainwf.State
	To   domainwf.State
	Err  error
}

func (e *TransitionError) Error() string {
	if e.From == "" {
		return fmt.Sprintf("transition %s/%s to %s: %v", e.Kind, e.ID, e.To, e.Err)
	}
	return fmt.Sprintf("transition %s/%s %s -> %s: %v", e.Kind, e.ID, e.From, e.To, e.Err)
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}

// wrap pairs a category sentinel with its cause
func wrap(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %w", sentinel, cause)
}

// Outcome returns a short label for err, used in metrics and logs
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrIllegalTransition):
		return "illegal"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrCalculationFailed):
		return "calculation_failed"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidRecord):
		return "invalid"
	default:
		return "storage"
	}
}
