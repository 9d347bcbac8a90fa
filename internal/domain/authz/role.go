package authz

import (
	"sort"
	"strings"
)

// Role is a named capability held by a principal
type Role string

const (
	RoleEditor   Role = "EDITOR"
	RoleExaminer Role = "EXAMINER"
	RoleApprover Role = "APPROVER"
	RoleAdmin    Role = "ADMIN"
)

// ParseRole normalizes a role name from a token or config file.
// Unknown names are kept as-is.
func ParseRole(s string) Role {
	return Role(strings.ToUpper(strings.TrimSpace(s)))
}

// RoleSet is the set of roles held by a principal
type RoleSet map[Role]struct{}

// NewRoleSet builds a set from role names
func NewRoleSet(roles ...Role) RoleSet {
	rs := make(RoleSet, len(roles))
	for _, r := range roles {
		if r == "" {
			continue
		}
		rs[r] = struct{}{}
	}
	return rs
}

// ParseRoleSet builds a set from raw role names
func ParseRoleSet(names []string) RoleSet {
	rs := make(RoleSet, len(names))
	for _, n := range names {
		if r := ParseRole(n); r != "" {
			rs[r] = struct{}{}
		}
	}
	return rs
}

// Has reports whether the set holds role
func (rs RoleSet) Has(role Role) bool {
	_, ok := rs[role]
	return ok
}

// HasAny reports whether the set holds at least one of roles
func (rs RoleSet) HasAny(roles ...Role) bool {
	for _, r := range roles {
		if rs.Has(r) {
			return true
		}
	}
	return false
}

// Merge returns a new set holding the roles of both sets
func (rs RoleSet) Merge(other RoleSet) RoleSet {
	out := make(RoleSet, len(rs)+len(other))
	for r := range rs {
		out[r] = struct{}{}
	}
	for r := range other {
		out[r] = struct{}{}
	}
	return out
}

// Slice returns the roles sorted by name
func (rs RoleSet) Slice() []Role {
	out := make([]Role, 0, len(rs))
	for r := range rs {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
