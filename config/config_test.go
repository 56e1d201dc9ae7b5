package config

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantErr bool
		check   func(*testing.T, *Config)
	}{
		{
			name: "default configuration",
			envVars: map[string]string{
				"ENVIRONMENT": "development",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.IsDevelopment())
				assert.Equal(t, "0.0.0.0", cfg.Server.Host)
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, "0.0.0.0:8080", cfg.Server.Address())
				assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
				assert.Equal(t, "http://localhost:8081", cfg.AuthService.URL)
				assert.Equal(t, "/authentication/validate", cfg.AuthService.ValidatePath)
				assert.Equal(t, 10*time.Second, cfg.AuthService.Timeout)
				assert.Empty(t, cfg.Gateway.Routes)
				assert.Empty(t, cfg.Gateway.PublicPathPrefixes)
				assert.Empty(t, cfg.Gateway.CORSAllowedOrigins)
				assert.False(t, cfg.RateLimit.Enabled)
				assert.Equal(t, 10.0, cfg.RateLimit.RPS)
				assert.Equal(t, 20, cfg.RateLimit.Burst)
				assert.Equal(t, "info", cfg.Observability.LogLevel)
				assert.Equal(t, "json", cfg.Observability.LogFormat)
				assert.True(t, cfg.Observability.MetricsEnabled)
			},
		},
		{
			name: "production configuration with routes",
			envVars: map[string]string{
				"ENVIRONMENT":      "production",
				"SERVER_PORT":      "9000",
				"AUTH_SERVICE_URL": "http://authentication:8081",
				"UPSTREAM_ROUTES":  "/account=http://account:8082,/payments=http://payments:8083",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.IsProduction())
				assert.False(t, cfg.IsDevelopment())
				assert.Equal(t, 9000, cfg.Server.Port)
				assert.Equal(t, "http://authentication:8081", cfg.AuthService.URL)
				require.Len(t, cfg.Gateway.Routes, 2)
				assert.Equal(t, "/payments", cfg.Gateway.Routes[1].Prefix)
				assert.Equal(t, "payments:8083", cfg.Gateway.Routes[1].Target.Host)
			},
		},
		{
			name: "gateway lists",
			envVars: map[string]string{
				"PUBLIC_PATH_PREFIXES": "/docs, /status ,",
				"CORS_ALLOWED_ORIGINS": "https://app.example.com",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"/docs", "/status"}, cfg.Gateway.PublicPathPrefixes)
				assert.Equal(t, []string{"https://app.example.com"}, cfg.Gateway.CORSAllowedOrigins)
			},
		},
		{
			name: "rate limit and timeouts",
			envVars: map[string]string{
				"RATE_LIMIT_ENABLED":   "true",
				"RATE_LIMIT_RPS":       "2.5",
				"RATE_LIMIT_BURST":     "5",
				"AUTH_SERVICE_TIMEOUT": "0s",
				"SERVER_WRITE_TIMEOUT": "90s",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.RateLimit.Enabled)
				assert.Equal(t, 2.5, cfg.RateLimit.RPS)
				assert.Equal(t, 5, cfg.RateLimit.Burst)
				assert.Equal(t, time.Duration(0), cfg.AuthService.Timeout)
				assert.Equal(t, 90*time.Second, cfg.Server.WriteTimeout)
			},
		},
		{
			name: "observability configuration",
			envVars: map[string]string{
				"LOG_LEVEL":       "debug",
				"LOG_FORMAT":      "text",
				"METRICS_ENABLED": "false",
				"TRACING_ENABLED": "true",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "debug", cfg.Observability.LogLevel)
				assert.Equal(t, "text", cfg.Observability.LogFormat)
				assert.False(t, cfg.Observability.MetricsEnabled)
				assert.True(t, cfg.Observability.TracingEnabled)
			},
		},
		{
			name: "PORT env var takes precedence over SERVER_PORT",
			envVars: map[string]string{
				"PORT":        "9443",
				"SERVER_PORT": "9000",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9443, cfg.Server.Port)
			},
		},
		{
			name: "production without routes",
			envVars: map[string]string{
				"ENVIRONMENT": "production",
			},
			wantErr: true,
		},
		{
			name: "malformed routes",
			envVars: map[string]string{
				"UPSTREAM_ROUTES": "/account",
			},
			wantErr: true,
		},
		{
			name: "invalid auth service url",
			envVars: map[string]string{
				"AUTH_SERVICE_URL": "not a url",
			},
			wantErr: true,
		},
		{
			name: "public prefix without leading slash",
			envVars: map[string]string{
				"PUBLIC_PATH_PREFIXES": "docs",
			},
			wantErr: true,
		},
		{
			name: "unknown log format",
			envVars: map[string]string{
				"LOG_FORMAT": "xml",
			},
			wantErr: true,
		},
		{
			name: "zero port",
			envVars: map[string]string{
				"PORT": "0",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clear environment
			os.Clearenv()

			for k, v := range tt.envVars {
				os.Setenv(k, v)
			}

			cfg, err := New(context.Background())

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, cfg)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestValidate_RateLimitBounds(t *testing.T) {
	os.Clearenv()
	cfg, err := New(context.Background())
	require.NoError(t, err)

	cfg.RateLimit.Burst = 0
	assert.Error(t, cfg.Validate())
}
