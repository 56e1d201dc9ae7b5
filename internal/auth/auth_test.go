package auth

import (
	"testing"

	"github.com/modernbank/api-gateway/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		wantToken string
		wantErr   bool
	}{
		{name: "valid bearer", header: "Bearer abc.def.ghi", wantToken: "abc.def.ghi"},
		{name: "token is not trimmed", header: "Bearer  padded ", wantToken: " padded "},
		{name: "empty token after prefix", header: "Bearer ", wantToken: ""},
		{name: "missing header", header: "", wantErr: true},
		{name: "lowercase scheme", header: "bearer abc", wantErr: true},
		{name: "basic scheme", header: "Basic dXNlcjpwYXNz", wantErr: true},
		{name: "scheme without space", header: "Bearerabc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := ExtractBearerToken(tt.header)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, shared.IsKind(err, shared.KindUnauthenticated))
				assert.Empty(t, token)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantToken, token)
		})
	}
}

func TestNewPrincipal(t *testing.T) {
	t.Run("keeps role order and drops duplicates", func(t *testing.T) {
		p := NewPrincipal("u1", "a@b.com", []string{"USER", "ADMIN", "USER"})
		assert.Equal(t, []string{"USER", "ADMIN"}, p.Roles())
	})

	t.Run("roles cannot be mutated through the accessor", func(t *testing.T) {
		p := NewPrincipal("u1", "a@b.com", []string{"USER"})
		roles := p.Roles()
		roles[0] = "ADMIN"
		assert.Equal(t, []string{"USER"}, p.Roles())
		assert.False(t, IsAdmin(p))
	})

	t.Run("nil roles", func(t *testing.T) {
		p := NewPrincipal("u1", "a@b.com", nil)
		assert.Empty(t, p.Roles())
	})
}

func TestIsAdmin(t *testing.T) {
	tests := []struct {
		name  string
		roles []string
		want  bool
	}{
		{"ADMIN", []string{"ADMIN"}, true},
		{"ROLE_ADMIN", []string{"ROLE_ADMIN"}, true},
		{"lowercase admin", []string{"admin"}, true},
		{"mixed case role_admin", []string{"USER", "Role_Admin"}, true},
		{"user only", []string{"USER"}, false},
		{"admin as substring", []string{"SUPERADMIN", "ADMIN_READONLY"}, false},
		{"no roles", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAdmin(NewPrincipal("u1", "a@b.com", tt.roles)))
		})
	}
}

func TestNewAuthentication(t *testing.T) {
	p := NewPrincipal("u1", "a@b.com", []string{"USER", "ADMIN"})
	a := NewAuthentication(p)

	assert.Equal(t, "a@b.com", a.Subject)
	assert.Equal(t, []string{"USER", "ADMIN"}, a.Authorities)
	assert.True(t, a.HasAuthority("ADMIN"))
	assert.False(t, a.HasAuthority("admin"))
}
