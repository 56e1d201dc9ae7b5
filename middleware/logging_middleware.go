package middleware

import (
	"context"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const anonymousUser = "anonymous"

// RequestLogger logs every request on the way in and its outcome on the way out.
// Responses with a status of 400 or above are logged at error level. A WebSocket
// upgrade whose connection was taken over without a written status is logged
// as 101.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			fields := &logFields{}
			ctx := context.WithValue(r.Context(), logFieldsKey, fields)

			logger.Info("incoming request",
				zap.String("ip", r.RemoteAddr),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("correlation_id", GetCorrelationIDFromContext(ctx)))

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			upgraded := false
			switch {
			case status == 0 && websocket.IsWebSocketUpgrade(r):
				status = http.StatusSwitchingProtocols
				upgraded = true
			case status == 0:
				status = http.StatusOK
			case status == http.StatusSwitchingProtocols:
				upgraded = true
			}
			userID := fields.userID
			if userID == "" {
				userID = anonymousUser
			}

			log := logger.Info
			if status >= http.StatusBadRequest {
				log = logger.Error
			}
			log("response",
				zap.String("ip", r.RemoteAddr),
				zap.String("user_id", userID),
				zap.Int("status", status),
				zap.Bool("upgraded", upgraded),
				zap.String("path", r.URL.Path),
				zap.Duration("duration", time.Since(start)),
				zap.String("correlation_id", GetCorrelationIDFromContext(ctx)))
		})
	}
}
