package workflow

import (
	"github.com/garyjia/swenshares/internal/application/port"
	"github.com/garyjia/swenshares/internal/domain/authz"
	"github.com/garyjia/swenshares/internal/domain/entity"
	domainwf "github.com/garyjia/swenshares/internal/domain/workflow"
)

// VisibilityFilter returns which records a principal with roles may read.
// ADMIN sees everything, EDITOR its own records, EXAMINER submitted ones
// and APPROVER examined ones. The second result is false when nothing is
// visible.
func VisibilityFilter(roles authz.RoleSet, self authz.PrincipalRef) (port.RecordFilter, bool) {
	if roles.Has(authz.RoleAdmin) {
		return port.RecordFilter{}, true
	}

	var f port.RecordFilter
	if roles.Has(authz.RoleEditor) && !self.IsZero() {
		f.CreatedBy = self.Key()
	}
	if roles.Has(authz.RoleExaminer) {
		f.States = append(f.States, domainwf.StateSubmitted)
	}
	if roles.Has(authz.RoleApprover) {
		f.States = append(f.States, domainwf.StateExamined)
	}
	return f, !f.Unrestricted()
}

// Visible reports whether a principal with roles may read rec
func Visible(roles authz.RoleSet, self authz.PrincipalRef, rec entity.Record) bool {
	f, ok := VisibilityFilter(roles, self)
	return ok && f.Matches(rec)
}
