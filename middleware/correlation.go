package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/modernbank/api-gateway/internal/shared"
)

// CorrelationID resolves the correlation id once at the edge, stores it in the
// request context and echoes it on the response
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := resolveCorrelationID(r)
		w.Header().Set(shared.HeaderCorrelationID, id)
		next.ServeHTTP(w, r.WithContext(WithCorrelationID(r.Context(), id)))
	})
}

// resolveCorrelationID prefers an id already resolved for this request, then a
// non-empty inbound header, and otherwise generates a fresh one
func resolveCorrelationID(r *http.Request) string {
	if id := GetCorrelationIDFromContext(r.Context()); id != "" {
		return id
	}
	if id := r.Header.Get(shared.HeaderCorrelationID); id != "" {
		return id
	}
	return uuid.NewString()
}
