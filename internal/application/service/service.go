package service

import (
	"errors"
	"fmt"

	"github.com/garyjia/swenshares/internal/application/port"
	appwf "github.com/garyjia/swenshares/internal/application/workflow"
	"github.com/garyjia/swenshares/internal/domain/authz"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ErrInvalidInput is returned when a request fails validation
var ErrInvalidInput = errors.New("invalid input")

// requireRole returns ErrUnauthorized unless p holds role or ADMIN
func requireRole(a authz.RoleAuthority, p authz.Principal, role authz.Role) error {
	if authz.HasAnyRole(a, p, role, authz.RoleAdmin) {
		return nil
	}
	return fmt.Errorf("%w: %s role required", appwf.ErrUnauthorized, role)
}

// storageErr maps repository errors onto the workflow categories
func storageErr(err error) error {
	if errors.Is(err, port.ErrNotFound) {
		return fmt.Errorf("%w: %w", appwf.ErrNotFound, err)
	}
	return fmt.Errorf("%w: %w", appwf.ErrStorage, err)
}
