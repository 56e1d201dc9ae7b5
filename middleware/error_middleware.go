package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/modernbank/api-gateway/internal/shared"
	"github.com/modernbank/api-gateway/utils"
	"go.uber.org/zap"
)

const (
	codeUpstream   = "ERR-UPSTREAM"
	codeUnexpected = "ERR-UNEXPECTED"

	messageUpstream   = "Unable to connect. Please try again later."
	messageUnexpected = "An unexpected error occurred. Please try again later."

	defaultFailureStatus  = http.StatusUnauthorized
	defaultFailureCode    = "AUTH-001"
	defaultFailureMessage = "Authorization error."
)

// ErrorMiddleware renders errors returned by the gateway chain as the uniform
// failure envelope
type ErrorMiddleware struct {
	logger *zap.Logger
}

// NewErrorMiddleware creates a new ErrorMiddleware
func NewErrorMiddleware(logger *zap.Logger) *ErrorMiddleware {
	return &ErrorMiddleware{logger: logger}
}

// Handle adapts next to an http.Handler. Errors and panics become a failure
// envelope, unless the response has already started, in which case they are
// only logged.
func (m *ErrorMiddleware) Handle(next HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		err := callRecovering(next, ww, r)
		if err == nil {
			return
		}

		correlationID := ww.Header().Get(shared.HeaderCorrelationID)
		if correlationID == "" {
			correlationID = GetCorrelationIDFromContext(r.Context())
		}

		if ww.Status() != 0 {
			m.logger.Error("error after response started",
				zap.String("correlation_id", correlationID),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Error(err))
			return
		}

		status, code, message := m.resolve(err, r, correlationID)
		if werr := utils.WriteFailure(ww, status, code, message); werr != nil {
			m.logger.Error("failed to write error response",
				zap.String("correlation_id", correlationID),
				zap.Error(werr))
		}
	})
}

// resolve maps err to the envelope's status, process code and message
func (m *ErrorMiddleware) resolve(err error, r *http.Request, correlationID string) (int, string, string) {
	var (
		failure   *shared.Failure
		upstream  *shared.UpstreamError
		statusErr *shared.StatusError
	)

	switch {
	case errors.As(err, &failure):
		status, code, message := failure.Status, failure.Code, failure.Message
		if status == 0 {
			status = defaultFailureStatus
		}
		if !errorStatus(status) {
			m.logger.Warn("failure status out of range",
				zap.String("correlation_id", correlationID),
				zap.Int("status", status))
			status = http.StatusInternalServerError
		}
		if code == "" {
			code = defaultFailureCode
		}
		if message == "" {
			message = defaultFailureMessage
		}
		return status, code, message

	case errors.As(err, &upstream):
		m.logger.Warn("upstream unreachable",
			zap.String("correlation_id", correlationID),
			zap.String("route", upstream.Route),
			zap.String("path", r.URL.Path),
			zap.Error(upstream.Err))
		return http.StatusBadGateway, codeUpstream, messageUpstream

	case errors.As(err, &statusErr):
		status := statusErr.Status
		if !errorStatus(status) {
			m.logger.Warn("status error out of range",
				zap.String("correlation_id", correlationID),
				zap.Int("status", status))
			status = http.StatusInternalServerError
		}
		message := statusErr.Reason
		if message == "" {
			message = StatusMessage(status)
		}
		return status, "ERR-" + strconv.Itoa(status), message

	default:
		m.logger.Error("unexpected error",
			zap.String("correlation_id", correlationID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		return http.StatusInternalServerError, codeUnexpected, messageUnexpected
	}
}

// errorStatus reports whether status can head a failure envelope
func errorStatus(status int) bool {
	return status >= http.StatusBadRequest && status <= 599
}

// StatusMessage is the default client-facing message for an HTTP status
func StatusMessage(status int) string {
	switch {
	case status == http.StatusUnauthorized:
		return "Authorization error."
	case status == http.StatusForbidden:
		return "Access denied."
	case status == http.StatusNotFound:
		return "The requested resource was not found."
	case status >= 500:
		return "Server error, please try again later."
	default:
		return "An error occurred."
	}
}

// callRecovering runs next and converts a panic into an error.
// http.ErrAbortHandler is re-raised so the server can abort the connection.
func callRecovering(next HandlerFunc, w http.ResponseWriter, r *http.Request) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			if e, ok := rec.(error); ok {
				err = fmt.Errorf("panic: %w", e)
				return
			}
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return next(w, r)
}
