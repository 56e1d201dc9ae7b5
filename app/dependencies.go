package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/modernbank/api-gateway/authclient"
	"github.com/modernbank/api-gateway/config"
	"github.com/modernbank/api-gateway/internal/observability"
	"github.com/modernbank/api-gateway/internal/ratelimit"
	"github.com/modernbank/api-gateway/internal/router"
	"github.com/modernbank/api-gateway/internal/routing"
	"github.com/modernbank/api-gateway/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config   *config.Config
	Logger   *zap.Logger
	Registry *prometheus.Registry
	Metrics  *observability.Metrics

	// Authentication
	AuthClient *authclient.Client
	Classifier *routing.Classifier

	// Forwarding
	Proxy *router.Proxy

	// Middleware
	AuthMiddleware      *middleware.AuthMiddleware
	ErrorMiddleware     *middleware.ErrorMiddleware
	RateLimitMiddleware *middleware.RateLimitMiddleware
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initMetrics(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	if err := deps.initAuth(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize auth client: %w", err)
	}

	if err := deps.initProxy(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize proxy: %w", err)
	}

	if err := deps.initRateLimit(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize rate limiter: %w", err)
	}

	deps.ErrorMiddleware = middleware.NewErrorMiddleware(logger)

	logger.Info("all dependencies initialized successfully",
		zap.String("auth_service", cfg.AuthService.URL),
		zap.Int("routes", deps.Proxy.RouteCount()))
	return deps, nil
}

// initMetrics creates a private registry so tests can build several
// dependency sets in one process
func (d *Dependencies) initMetrics(cfg *config.Config) error {
	d.Registry = prometheus.NewRegistry()
	if !cfg.Observability.MetricsEnabled {
		return nil
	}

	d.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := observability.NewMetrics(d.Registry)
	if err != nil {
		return err
	}
	d.Metrics = metrics
	return nil
}

func (d *Dependencies) initAuth(cfg *config.Config) error {
	var httpClient *http.Client
	if !cfg.Observability.TracingEnabled {
		httpClient = &http.Client{Timeout: cfg.AuthService.Timeout}
	}

	client, err := authclient.New(authclient.Config{
		BaseURL:      cfg.AuthService.URL,
		ValidatePath: cfg.AuthService.ValidatePath,
		Timeout:      cfg.AuthService.Timeout,
		HTTPClient:   httpClient,
	}, d.Logger.Named("authclient"))
	if err != nil {
		return err
	}

	d.AuthClient = client
	d.Classifier = routing.NewClassifier(routing.DefaultRules(cfg.Gateway.PublicPathPrefixes...))
	d.AuthMiddleware = middleware.NewAuthMiddleware(d.Classifier, client, d.Metrics, d.Logger)
	return nil
}

func (d *Dependencies) initProxy(cfg *config.Config) error {
	var transport http.RoundTripper
	if cfg.Observability.TracingEnabled {
		transport = otelhttp.NewTransport(http.DefaultTransport)
	}

	proxy, err := router.NewProxy(cfg.Gateway.Routes, transport, d.Logger)
	if err != nil {
		return err
	}
	if proxy.RouteCount() == 0 {
		d.Logger.Warn("no upstream routes configured, admitted requests will get 404")
	}
	d.Proxy = proxy
	return nil
}

func (d *Dependencies) initRateLimit(cfg *config.Config) error {
	if !cfg.RateLimit.Enabled {
		d.RateLimitMiddleware = middleware.NewRateLimitMiddleware(nil, d.Logger)
		return nil
	}

	limiter, err := ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.MaxKeys)
	if err != nil {
		return err
	}
	d.RateLimitMiddleware = middleware.NewRateLimitMiddleware(limiter, d.Logger)
	d.Logger.Info("rate limiting enabled",
		zap.Float64("rps", cfg.RateLimit.RPS),
		zap.Int("burst", cfg.RateLimit.Burst))
	return nil
}

// Gateway returns the full gateway chain: authentication, rate limiting and
// forwarding, with failures rendered by the error middleware
func (d *Dependencies) Gateway() http.Handler {
	return d.ErrorMiddleware.Handle(
		d.AuthMiddleware.Authenticate(
			d.RateLimitMiddleware.Limit(d.Proxy.Forward),
		),
	)
}

// Close releases resources held by the dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	if d.AuthClient != nil {
		d.AuthClient.Close()
	}
	d.Logger.Info("dependencies closed")
	return nil
}
