package routing

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyPath(t *testing.T) {
	c := NewClassifier(DefaultRules())

	tests := []struct {
		name    string
		path    string
		upgrade bool
		want    PathClass
	}{
		{"login", "/authentication/login", false, Public},
		{"auth root", "/authentication", false, Public},
		{"root verification", "/api/v1/verification/user/confirm", false, Public},
		{"account verification", "/account/api/v1/verification/user/123", false, Public},
		{"notification websocket", "/notification/notification-websocket/info", false, WebSocketPublic},
		{"notification websocket upgrade", "/notification/notification-websocket", true, WebSocketPublic},
		{"root chat websocket", "/chat-websocket/abc", true, WebSocketPublic},
		{"public wins over admin segment", "/authentication/admin", false, Public},
		{"other websocket upgrade", "/account/stream", true, WebSocketProtected},
		{"websocket upgrade on admin path", "/admin/stream", true, WebSocketProtected},
		{"admin segment", "/admin/cache", false, ProtectedAdmin},
		{"nested admin segment", "/account/admin/users", false, ProtectedAdmin},
		{"cache segment", "/transaction/cache/clear", false, ProtectedAdmin},
		{"standard", "/account/api/v1/accounts", false, ProtectedStandard},
		{"root", "/", false, ProtectedStandard},
		{"empty", "", false, ProtectedStandard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.ClassifyPath(tt.path, tt.upgrade))
		})
	}
}

func TestClassify(t *testing.T) {
	c := NewClassifier(DefaultRules())

	t.Run("websocket handshake headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/transaction/live", nil)
		req.Header.Set("Connection", "Upgrade")
		req.Header.Set("Upgrade", "websocket")
		assert.Equal(t, WebSocketProtected, c.Classify(req))
	})

	t.Run("upgrade to another protocol is not websocket", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/transaction/live", nil)
		req.Header.Set("Connection", "Upgrade")
		req.Header.Set("Upgrade", "h2c")
		assert.Equal(t, ProtectedStandard, c.Classify(req))
	})

	t.Run("plain request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/cache", nil)
		assert.Equal(t, ProtectedAdmin, c.Classify(req))
	})
}

func TestDefaultRulesExtraPublic(t *testing.T) {
	c := NewClassifier(DefaultRules("/docs"))

	assert.Equal(t, Public, c.ClassifyPath("/docs/index.html", false))
	assert.Equal(t, Public, c.ClassifyPath("/authentication/login", false))
	assert.Equal(t, ProtectedStandard, c.ClassifyPath("/other", false))
}

func TestClassifierIsImmutable(t *testing.T) {
	rules := DefaultRules()
	c := NewClassifier(rules)

	rules[1].Prefixes[0] = "/changed"
	rules[1].Class = ProtectedAdmin

	assert.Equal(t, Public, c.ClassifyPath("/authentication/login", false))
}

func TestPathClass(t *testing.T) {
	assert.True(t, Public.Bypass())
	assert.True(t, WebSocketPublic.Bypass())
	assert.False(t, WebSocketProtected.Bypass())
	assert.False(t, ProtectedAdmin.Bypass())
	assert.False(t, ProtectedStandard.Bypass())

	assert.Equal(t, "protected_admin", ProtectedAdmin.String())
	assert.Equal(t, "websocket_public", WebSocketPublic.String())
}
