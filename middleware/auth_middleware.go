package middleware

import (
	"context"
	"errors"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/modernbank/api-gateway/internal/auth"
	"github.com/modernbank/api-gateway/internal/observability"
	"github.com/modernbank/api-gateway/internal/routing"
	"github.com/modernbank/api-gateway/internal/shared"
	"go.uber.org/zap"
)

// TokenValidator defines the interface for validating bearer tokens
type TokenValidator interface {
	// Validate asks the authentication service who owns token
	Validate(ctx context.Context, token string) (*auth.Principal, error)
}

// AuthMiddleware runs the authorization pipeline in front of the forwarder
type AuthMiddleware struct {
	classifier *routing.Classifier
	validator  TokenValidator
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(classifier *routing.Classifier, validator TokenValidator, metrics *observability.Metrics, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		classifier: classifier,
		validator:  validator,
		metrics:    metrics,
		logger:     logger,
	}
}

// Authenticate decides, per request, whether to forward it untouched, forward it
// enriched with the caller's identity, or fail it.
//
// Paths that are not in canonical form are refused before anything else, so
// that classification and the backend always see the same resource. Preflight
// requests and public paths are forwarded without any check. Protected
// WebSocket upgrades are enriched when a valid token is present and forwarded
// anonymously otherwise. Every other path needs a valid token, and admin paths
// additionally need an administrator role.
func (m *AuthMiddleware) Authenticate(next HandlerFunc) HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		if !canonicalPath(r.URL.Path, r.URL.RawPath) {
			m.logger.Warn("non canonical path refused",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("raw_path", r.URL.RawPath))
			m.metrics.RecordDecision("invalid_path", observability.OutcomeRejected)
			return shared.NewStatusError(http.StatusBadRequest, "")
		}

		if r.Method == http.MethodOptions {
			m.metrics.RecordDecision("preflight", observability.OutcomePreflight)
			return next(w, stripIdentity(r))
		}

		correlationID := resolveCorrelationID(r)
		w.Header().Set(shared.HeaderCorrelationID, correlationID)

		class := m.classifier.Classify(r)
		switch {
		case class.Bypass():
			m.metrics.RecordDecision(class.String(), observability.OutcomeBypass)
			return next(w, stripIdentity(r))
		case class == routing.WebSocketProtected:
			return m.authenticateWebSocket(w, r, next, correlationID)
		default:
			return m.authenticateRequest(w, r, next, class, correlationID)
		}
	}
}

func (m *AuthMiddleware) authenticateRequest(w http.ResponseWriter, r *http.Request, next HandlerFunc, class routing.PathClass, correlationID string) error {
	token, err := auth.ExtractBearerToken(r.Header.Get("Authorization"))
	if err != nil {
		return m.reject(r, class, correlationID, err)
	}

	principal, err := m.validate(r.Context(), token)
	if err != nil {
		return m.reject(r, class, correlationID, err)
	}

	if class == routing.ProtectedAdmin && !auth.IsAdmin(principal) {
		m.logger.Warn("admin path denied",
			zap.String("correlation_id", correlationID),
			zap.String("path", r.URL.Path),
			zap.String("user_id", principal.ID),
			zap.Strings("roles", principal.Roles()))
		return m.reject(r, class, correlationID, shared.NewForbidden())
	}

	m.metrics.RecordDecision(class.String(), observability.OutcomeForwarded)
	return next(w, enrichRequest(r, principal, correlationID))
}

// authenticateWebSocket never fails the upgrade; a missing or rejected token
// only means the connection is forwarded without identity headers
func (m *AuthMiddleware) authenticateWebSocket(w http.ResponseWriter, r *http.Request, next HandlerFunc, correlationID string) error {
	class := routing.WebSocketProtected

	token, err := auth.ExtractBearerToken(r.Header.Get("Authorization"))
	if err != nil {
		m.metrics.RecordDecision(class.String(), observability.OutcomeForwardedAnon)
		return next(w, stripIdentity(r))
	}

	principal, err := m.validate(r.Context(), token)
	if err != nil {
		m.logger.Warn("websocket token rejected, forwarding without identity",
			zap.String("correlation_id", correlationID),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		m.metrics.RecordDecision(class.String(), observability.OutcomeForwardedAnon)
		return next(w, stripIdentity(r))
	}

	m.metrics.RecordDecision(class.String(), observability.OutcomeForwarded)
	return next(w, enrichRequest(r, principal, correlationID))
}

func (m *AuthMiddleware) validate(ctx context.Context, token string) (*auth.Principal, error) {
	start := time.Now()
	principal, err := m.validator.Validate(ctx, token)

	result := "ok"
	if err != nil {
		result = "error"
		var failure *shared.Failure
		if errors.As(err, &failure) {
			result = failure.Kind.String()
		}
	}
	m.metrics.RecordValidation(result, time.Since(start))

	if err == nil && principal == nil {
		return nil, shared.NewInternal(errors.New("validator returned no principal"))
	}
	return principal, err
}

func (m *AuthMiddleware) reject(r *http.Request, class routing.PathClass, correlationID string, err error) error {
	m.logger.Warn("request rejected",
		zap.String("correlation_id", correlationID),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("path_class", class.String()),
		zap.Error(err))
	m.metrics.RecordDecision(class.String(), observability.OutcomeRejected)
	return err
}

// canonicalPath reports whether p has no dot segments, empty segments or
// backslashes, and whether raw encodes no path separator. A single trailing
// slash is allowed.
func canonicalPath(p, raw string) bool {
	if p == "" || p == "*" {
		return true
	}
	if strings.Contains(p, "\\") {
		return false
	}
	cleaned := path.Clean(p)
	if strings.HasSuffix(p, "/") && cleaned != "/" {
		cleaned += "/"
	}
	if cleaned != p {
		return false
	}
	raw = strings.ToLower(raw)
	return !strings.Contains(raw, "%2f") && !strings.Contains(raw, "%5c")
}

// enrichRequest returns a copy of r carrying the validated identity, both as
// downstream headers and in the request context. Headers overwrite whatever the
// client sent.
func enrichRequest(r *http.Request, p *auth.Principal, correlationID string) *http.Request {
	ctx := WithPrincipal(r.Context(), p)
	ctx = WithAuthentication(ctx, auth.NewAuthentication(p))
	ctx = WithCorrelationID(ctx, correlationID)
	annotateUser(ctx, p.ID)

	out := r.Clone(ctx)
	out.Header.Set(shared.HeaderUserID, p.ID)
	out.Header.Set(shared.HeaderUserEmail, p.Email)
	out.Header.Set(shared.HeaderUserRole, strings.Join(p.Roles(), ","))
	out.Header.Set(shared.HeaderCorrelationID, correlationID)
	return out
}

// stripIdentity drops client-supplied identity headers so that only the
// pipeline can assert who the caller is. r is returned as is when there is
// nothing to drop.
func stripIdentity(r *http.Request) *http.Request {
	spoofed := false
	for _, h := range shared.IdentityHeaders {
		if _, ok := r.Header[h]; ok {
			spoofed = true
			break
		}
	}
	if !spoofed {
		return r
	}

	out := r.Clone(r.Context())
	for _, h := range shared.IdentityHeaders {
		out.Header.Del(h)
	}
	return out
}
