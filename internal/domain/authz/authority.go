package authz

import "strings"

// RoleAuthority answers which roles a principal holds
type RoleAuthority interface {
	RolesOf(p Principal) RoleSet
}

// HasAnyRole reports whether the authority grants any of roles to p
func HasAnyRole(a RoleAuthority, p Principal, roles ...Role) bool {
	return a.RolesOf(p).HasAny(roles...)
}

// TokenRoles trusts the roles already attached to the principal
type TokenRoles struct{}

// RolesOf returns the principal's own roles
func (TokenRoles) RolesOf(p Principal) RoleSet {
	if p.Roles == nil {
		return RoleSet{}
	}
	return p.Roles
}

// GrantingAuthority adds statically configured roles to the token roles,
// keyed by username. Usernames match case-insensitively since config
// loaders lowercase map keys.
type GrantingAuthority struct {
	grants map[string]RoleSet
}

// NewGrantingAuthority builds an authority from username -> role names
func NewGrantingAuthority(grants map[string][]string) *GrantingAuthority {
	g := &GrantingAuthority{grants: make(map[string]RoleSet, len(grants))}
	for user, roles := range grants {
		key := strings.ToLower(strings.TrimSpace(user))
		g.grants[key] = g.grants[key].Merge(ParseRoleSet(roles))
	}
	return g
}

// RolesOf returns the union of token roles and configured grants
func (g *GrantingAuthority) RolesOf(p Principal) RoleSet {
	base := TokenRoles{}.RolesOf(p)
	extra, ok := g.grants[strings.ToLower(p.Username)]
	if !ok {
		return base
	}
	return base.Merge(extra)
}
