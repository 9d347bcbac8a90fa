package authz

import (
	"errors"
	"fmt"

	"github.com/garyjia/swenshares/internal/domain/workflow"
)

var (
	// ErrIllegalTransition is returned when the edge is not in the table
	ErrIllegalTransition = errors.New("illegal transition")

	// ErrForbidden is returned when the principal lacks the edge's role
	ErrForbidden = errors.New("forbidden")

	// ErrNotOwner is returned when an edge reserved to the record's creator
	// is requested by someone else
	ErrNotOwner = fmt.Errorf("%w: only the record's creator may take this transition", ErrForbidden)
)

// edgeRoles maps each table edge to the role allowed to traverse it
var edgeRoles = map[[2]workflow.State]Role{
	{workflow.StateSubmitted, workflow.StateExamined}: RoleExaminer,
	{workflow.StateExamined, workflow.StateApproved}:  RoleApprover,
	{workflow.StateExamined, workflow.StateRejected}:  RoleApprover,
	{workflow.StateRejected, workflow.StateSubmitted}: RoleEditor,
}

// ownerEdges are reserved to the principal who created the record
var ownerEdges = map[[2]workflow.State]bool{
	{workflow.StateRejected, workflow.StateSubmitted}: true,
}

// Gate decides whether a principal may move a record between two states.
// It has no side effects.
type Gate struct {
	authority RoleAuthority
	machine   workflow.Machine
}

// NewGate creates a gate backed by authority
func NewGate(authority RoleAuthority) *Gate {
	if authority == nil {
		authority = TokenRoles{}
	}
	return &Gate{authority: authority}
}

// RequiredRole returns the role needed for from -> to
func RequiredRole(from, to workflow.State) (Role, bool) {
	r, ok := edgeRoles[[2]workflow.State{from, to}]
	return r, ok
}

// Authorize returns nil when p may move a record of kind from current to target.
// ADMIN skips the role check but not the legality check.
func (g *Gate) Authorize(kind workflow.Kind, current, target workflow.State, p Principal) error {
	if !g.machine.IsLegal(kind, current, target) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, current, target)
	}

	roles := g.authority.RolesOf(p)
	if roles.Has(RoleAdmin) {
		return nil
	}

	required, _ := RequiredRole(current, target)
	if !roles.Has(required) {
		return fmt.Errorf("%w: %s -> %s requires %s", ErrForbidden, current, target, required)
	}
	return nil
}

// AuthorizeRecord is Authorize plus the ownership rule: resubmitting a
// rejected record is left to its creator. ADMIN skips the ownership rule
// and a record without a recorded creator has no owner to enforce.
func (g *Gate) AuthorizeRecord(kind workflow.Kind, current, target workflow.State, owner PrincipalRef, p Principal) error {
	if err := g.Authorize(kind, current, target, p); err != nil {
		return err
	}
	if !ownerEdges[[2]workflow.State{current, target}] || owner.IsZero() {
		return nil
	}
	if g.authority.RolesOf(p).Has(RoleAdmin) || owner.Same(p.Ref()) {
		return nil
	}
	return fmt.Errorf("%w: %s -> %s", ErrNotOwner, current, target)
}

// Permitted returns the targets p may request from current on a record
// created by owner
func (g *Gate) Permitted(kind workflow.Kind, current workflow.State, owner PrincipalRef, p Principal) []workflow.State {
	var out []workflow.State
	for _, target := range g.machine.LegalTransitions(kind, current) {
		if g.AuthorizeRecord(kind, current, target, owner, p) == nil {
			out = append(out, target)
		}
	}
	return out
}

// RolesOf exposes the gate's authority
func (g *Gate) RolesOf(p Principal) RoleSet {
	return g.authority.RolesOf(p)
}
