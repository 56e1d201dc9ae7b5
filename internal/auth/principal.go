package auth

// Principal is the identity the auth service vouched for.
// It is built once per request and never mutated afterwards.
type Principal struct {
	ID    string
	Email string
	roles []string
}

// NewPrincipal creates a Principal. Duplicate roles are dropped, order is kept.
func NewPrincipal(id, email string, roles []string) *Principal {
	seen := make(map[string]struct{}, len(roles))
	ordered := make([]string, 0, len(roles))
	for _, role := range roles {
		if _, ok := seen[role]; ok {
			continue
		}
		seen[role] = struct{}{}
		ordered = append(ordered, role)
	}
	return &Principal{ID: id, Email: email, roles: ordered}
}

// Roles returns a copy of the principal's roles
func (p *Principal) Roles() []string {
	out := make([]string, len(p.roles))
	copy(out, p.roles)
	return out
}

// Authentication is the security context handed to later authorization checks.
// It carries no credential material.
type Authentication struct {
	Subject     string
	Authorities []string
}

// NewAuthentication pairs the principal's email with its roles
func NewAuthentication(p *Principal) *Authentication {
	return &Authentication{
		Subject:     p.Email,
		Authorities: p.Roles(),
	}
}

// HasAuthority reports whether the authentication carries the given authority
func (a *Authentication) HasAuthority(authority string) bool {
	for _, granted := range a.Authorities {
		if granted == authority {
			return true
		}
	}
	return false
}
