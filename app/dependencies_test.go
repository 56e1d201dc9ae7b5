package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/modernbank/api-gateway/config"
	"github.com/modernbank/api-gateway/internal/router"
	"github.com/modernbank/api-gateway/internal/routing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	target, err := url.Parse("http://account.internal:8082")
	require.NoError(t, err)

	return &config.Config{
		Environment: "development",
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            8080,
			ShutdownTimeout: time.Second,
		},
		AuthService: config.AuthServiceConfig{
			URL:          "http://auth.internal:8081",
			ValidatePath: "/authentication/validate",
			Timeout:      time.Second,
		},
		Gateway: config.GatewayConfig{
			PublicPathPrefixes: []string{"/docs"},
			Routes:             []router.Route{{Prefix: "/account", Target: target}},
		},
		RateLimit: config.RateLimitConfig{RPS: 1, Burst: 1, MaxKeys: 10},
		Observability: config.ObservabilityConfig{
			LogLevel:       "info",
			LogFormat:      "json",
			MetricsEnabled: true,
		},
	}
}

func TestNewDependencies(t *testing.T) {
	t.Run("successful initialization with all components", func(t *testing.T) {
		ctx := context.Background()
		cfg := testConfig(t)

		deps, err := NewDependencies(ctx, cfg, zaptest.NewLogger(t))
		require.NoError(t, err)
		require.NotNil(t, deps)

		assert.NotNil(t, deps.Config)
		assert.NotNil(t, deps.Logger)
		assert.NotNil(t, deps.Registry)
		assert.NotNil(t, deps.Metrics)
		assert.NotNil(t, deps.AuthClient)
		assert.NotNil(t, deps.AuthMiddleware)
		assert.NotNil(t, deps.ErrorMiddleware)
		assert.NotNil(t, deps.RateLimitMiddleware)
		assert.Equal(t, 1, deps.Proxy.RouteCount())

		// extra public prefixes reach the classifier
		assert.Equal(t, routing.Public, deps.Classifier.ClassifyPath("/docs/index.html", false))

		assert.NoError(t, deps.Close(ctx))
	})

	t.Run("metrics disabled", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Observability.MetricsEnabled = false

		deps, err := NewDependencies(context.Background(), cfg, zaptest.NewLogger(t))
		require.NoError(t, err)
		assert.Nil(t, deps.Metrics)

		families, err := deps.Registry.Gather()
		require.NoError(t, err)
		assert.Empty(t, families)
	})

	t.Run("tracing and rate limiting enabled", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Observability.TracingEnabled = true
		cfg.RateLimit.Enabled = true

		deps, err := NewDependencies(context.Background(), cfg, zaptest.NewLogger(t))
		require.NoError(t, err)
		assert.NotNil(t, deps.RateLimitMiddleware)
	})

	t.Run("invalid auth service url", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.AuthService.URL = "auth.internal"

		deps, err := NewDependencies(context.Background(), cfg, zaptest.NewLogger(t))
		assert.Error(t, err)
		assert.Nil(t, deps)
		assert.Contains(t, err.Error(), "failed to initialize auth client")
	})

	t.Run("invalid rate limit", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.RateLimit.Enabled = true
		cfg.RateLimit.RPS = 0

		_, err := NewDependencies(context.Background(), cfg, zaptest.NewLogger(t))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to initialize rate limiter")
	})
}

func TestGateway_RejectsAnonymousProtectedRequest(t *testing.T) {
	deps, err := NewDependencies(context.Background(), testConfig(t), zaptest.NewLogger(t))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	deps.Gateway().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/account/balance", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"processCode":"UNAUTHENTICATED"`)
}
