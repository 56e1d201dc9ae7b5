package handlers

import (
	"net/http"

	"github.com/modernbank/api-gateway/app"
	"github.com/modernbank/api-gateway/middleware"
	"github.com/modernbank/api-gateway/utils"
	"go.uber.org/zap"
)

// AuthenticationFallback answers in place of the authentication service while
// it is unavailable
func AuthenticationFallback(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deps.Logger.Warn("authentication fallback served",
			zap.String("correlation_id", middleware.GetCorrelationIDFromContext(r.Context())),
			zap.String("method", r.Method))
		_ = utils.WriteFailure(w, http.StatusServiceUnavailable, "ERR-503", "Authentication service temporarily unavailable")
	}
}
