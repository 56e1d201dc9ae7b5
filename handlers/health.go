package handlers

import (
	"net/http"

	"github.com/modernbank/api-gateway/app"
	"github.com/modernbank/api-gateway/utils"
)

// HealthCheck returns a liveness handler. It never looks at dependencies.
func HealthCheck() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// ReadinessCheck reports ready once the gateway has somewhere to forward to
func ReadinessCheck(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{}
		ready := true

		if deps.Proxy == nil || deps.Proxy.RouteCount() == 0 {
			checks["routes"] = "none_configured"
			ready = false
		} else {
			checks["routes"] = "configured"
		}

		if deps.AuthClient == nil {
			checks["auth_service"] = "not_initialized"
			ready = false
		} else {
			checks["auth_service"] = "configured"
		}

		status, code := "ready", http.StatusOK
		if !ready {
			status, code = "not_ready", http.StatusServiceUnavailable
		}
		_ = utils.WriteJSON(w, code, map[string]interface{}{
			"status": status,
			"checks": checks,
		})
	}
}
