package middleware

import (
	"context"
	"net/http"

	"github.com/modernbank/api-gateway/internal/auth"
)

// HandlerFunc is a request handler that reports failures instead of writing them.
// The error middleware turns a returned error into the response envelope.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Context key type to avoid collisions
type contextKey string

const (
	// CorrelationIDKey is the context key for the correlation id
	CorrelationIDKey contextKey = "correlation_id"

	// PrincipalKey is the context key for the validated principal
	PrincipalKey contextKey = "principal"

	// AuthenticationKey is the context key for the security context
	AuthenticationKey contextKey = "authentication"

	// logFieldsKey carries per-request fields filled in for the request logger
	logFieldsKey contextKey = "log_fields"
)

// GetCorrelationIDFromContext retrieves the correlation id from context
func GetCorrelationIDFromContext(ctx context.Context) string {
	if val := ctx.Value(CorrelationIDKey); val != nil {
		if id, ok := val.(string); ok {
			return id
		}
	}
	return ""
}

// WithCorrelationID adds a correlation id to the context
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationIDKey, id)
}

// GetPrincipalFromContext retrieves the validated principal from context
func GetPrincipalFromContext(ctx context.Context) *auth.Principal {
	if val := ctx.Value(PrincipalKey); val != nil {
		if p, ok := val.(*auth.Principal); ok {
			return p
		}
	}
	return nil
}

// WithPrincipal adds a validated principal to the context
func WithPrincipal(ctx context.Context, p *auth.Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}

// GetAuthenticationFromContext retrieves the security context
func GetAuthenticationFromContext(ctx context.Context) *auth.Authentication {
	if val := ctx.Value(AuthenticationKey); val != nil {
		if a, ok := val.(*auth.Authentication); ok {
			return a
		}
	}
	return nil
}

// WithAuthentication adds the security context to the context
func WithAuthentication(ctx context.Context, a *auth.Authentication) context.Context {
	return context.WithValue(ctx, AuthenticationKey, a)
}

// logFields is owned by one request; only its goroutine touches it
type logFields struct {
	userID string
}

func annotateUser(ctx context.Context, userID string) {
	if f, ok := ctx.Value(logFieldsKey).(*logFields); ok {
		f.userID = userID
	}
}
