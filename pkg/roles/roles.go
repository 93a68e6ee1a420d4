package roles

import "strings"

// Role is the account type carried in the token.
type Role string

const (
	Recipient Role = "RECIPIENT"
	Donor     Role = "DONOR"
	Admin     Role = "ADMIN"
)

func NewRole(value string) Role {
	return Role(strings.ToUpper(strings.TrimSpace(value)))
}

// HasPermission reports whether r may act as requiredRole. Admin may act as anyone.
func (r Role) HasPermission(requiredRole Role) bool {
	if !r.IsValid() {
		return false
	}
	return r == Admin || r == requiredRole
}

func (r Role) IsValid() bool {
	switch r {
	case Recipient, Donor, Admin:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}
