package middleware

import (
	"net/http"
	"strings"

	"github.com/modernbank/api-gateway/internal/shared"
	"go.uber.org/zap"
)

// RateLimiter decides whether one more request for key may proceed
type RateLimiter interface {
	Allow(key string) bool
}

// RateLimitKey buckets requests by the authenticated user id, falling back to a
// single shared anonymous bucket. It must run after Authenticate so that the
// user id header is one the pipeline set.
func RateLimitKey(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(shared.HeaderUserID)); id != "" {
		return id
	}
	return anonymousUser
}

// RateLimitMiddleware enforces per-key request rates
type RateLimitMiddleware struct {
	limiter RateLimiter
	logger  *zap.Logger
}

// NewRateLimitMiddleware creates a new RateLimitMiddleware.
// A nil limiter disables limiting.
func NewRateLimitMiddleware(limiter RateLimiter, logger *zap.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter: limiter,
		logger:  logger,
	}
}

// Limit fails the request with 429 once its key is over the limit
func (m *RateLimitMiddleware) Limit(next HandlerFunc) HandlerFunc {
	if m.limiter == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) error {
		key := RateLimitKey(r)
		if !m.limiter.Allow(key) {
			m.logger.Warn("rate limit exceeded",
				zap.String("key", key),
				zap.String("path", r.URL.Path),
				zap.String("correlation_id", GetCorrelationIDFromContext(r.Context())))
			return shared.NewStatusError(http.StatusTooManyRequests, "Too many requests, please slow down.")
		}
		return next(w, r)
	}
}
