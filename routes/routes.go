package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/modernbank/api-gateway/app"
	"github.com/modernbank/api-gateway/handlers"
	"github.com/modernbank/api-gateway/internal/shared"
	"github.com/modernbank/api-gateway/middleware"
	"github.com/modernbank/api-gateway/utils"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures the gateway's own endpoints and sends everything else
// through the authentication chain to the backends
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(chimw.RealIP)
	r.Use(middleware.CorrelationID)
	r.Use(middleware.RequestLogger(deps.Logger))

	// CORS is handled here only when origins are configured; otherwise
	// preflight requests are forwarded to the backends
	if origins := deps.Config.Gateway.CORSAllowedOrigins; len(origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", shared.HeaderCorrelationID},
			ExposedHeaders:   []string{shared.HeaderCorrelationID},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check endpoints
	r.Get("/healthz", handlers.HealthCheck())
	r.Get("/readyz", handlers.ReadinessCheck(deps))
	if deps.Config.Observability.MetricsEnabled {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.HandleFunc("/fallback/authentication", handlers.AuthenticationFallback(deps))

	// Everything else goes through authentication and on to the backends
	r.Handle("/*", deps.Gateway())

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteFailure(w, http.StatusMethodNotAllowed, "ERR-405", middleware.StatusMessage(http.StatusMethodNotAllowed))
	})

	return r
}
