package authz

// Principal is the authenticated actor requesting an operation
type Principal struct {
	ID       string
	Username string
	Roles    RoleSet
}

// Ref returns the identity part of the principal
func (p Principal) Ref() PrincipalRef {
	return PrincipalRef{ID: p.ID, Username: p.Username}
}

// PrincipalRef identifies a principal in stored records
type PrincipalRef struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// IsZero reports whether the reference is empty
func (r PrincipalRef) IsZero() bool {
	return r.ID == "" && r.Username == ""
}

// Same reports whether two references name the same principal
func (r PrincipalRef) Same(o PrincipalRef) bool {
	if r.ID != "" && o.ID != "" {
		return r.ID == o.ID
	}
	return r.Username != "" && r.Username == o.Username
}

// Key returns the stable identifier used to address the principal
func (r PrincipalRef) Key() string {
	if r.ID != "" {
		return r.ID
	}
	return r.Username
}
