package auth

import "strings"

// Role is an authority granted to a principal by the authentication service
type Role string

// Accepted spellings of the administrator role
const (
	RoleAdmin       Role = "ADMIN"
	RoleAdminPrefix Role = "ROLE_ADMIN"
)

// IsAdmin reports whether the principal holds an admin role, ignoring case
func IsAdmin(p *Principal) bool {
	for _, role := range p.roles {
		if strings.EqualFold(role, string(RoleAdmin)) || strings.EqualFold(role, string(RoleAdminPrefix)) {
			return true
		}
	}
	return false
}
