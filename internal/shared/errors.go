package shared

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies the category of a gateway failure
type Kind int

const (
	KindUnauthenticated Kind = iota + 1
	KindInvalidCredentials
	KindUpstreamUnavailable
	KindUpstreamBadResponse
	KindForbidden
	KindInternal
)

// String returns the kind name used in logs and metrics
func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindUpstreamUnavailable:
		return "upstream_unavailable"
	case KindUpstreamBadResponse:
		return "upstream_bad_response"
	case KindForbidden:
		return "forbidden"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Process codes carried by gateway failures
const (
	CodeUnauthenticated        = "UNAUTHENTICATED"
	CodeBadCredentials         = "BAD_CREDENTIALS_PROVIDED"
	CodeAuthServiceUnavailable = "AUTH_SERVICE_UNAVAILABLE"
	CodeServiceUnavailable     = "SERVICE_UNAVAILABLE"
	CodeAuthServiceBadResponse = "AUTH_SERVICE_BAD_RESPONSE"
	CodeAuthServiceError       = "AUTH_SERVICE_ERROR"
	CodeNotFound               = "ERR-404"
)

// AccessRestrictedMessage is shown to callers that lack the admin role.
// It reads as a not-found so the resource's existence is not confirmed.
const AccessRestrictedMessage = "The requested resource was not found or the permissions required for this operation were not granted."

// Failure is a failure raised by the authentication pipeline.
// It is created where the failure happens and rendered once by the error middleware.
type Failure struct {
	Kind    Kind
	Status  int
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", f.Kind, f.Message, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

// Unwrap implements errors.Unwrap
func (f *Failure) Unwrap() error {
	return f.Err
}

// Is reports whether target is a Failure of the same kind
func (f *Failure) Is(target error) bool {
	t, ok := target.(*Failure)
	if !ok {
		return false
	}
	return f.Kind == t.Kind
}

// NewUnauthenticated is returned when no usable bearer credential is present
func NewUnauthenticated() *Failure {
	return &Failure{
		Kind:    KindUnauthenticated,
		Status:  http.StatusUnauthorized,
		Code:    CodeUnauthenticated,
		Message: "Authentication required.",
	}
}

// NewInvalidCredentials is returned when the auth service rejects the token.
// detail is the auth service's answer; it is kept for logs and never rendered.
func NewInvalidCredentials(detail string) *Failure {
	return &Failure{
		Kind:    KindInvalidCredentials,
		Status:  http.StatusUnauthorized,
		Code:    CodeBadCredentials,
		Message: "User validation failed.",
		Err:     errorFromDetail(detail),
	}
}

// NewUpstreamUnavailable is returned when the auth service answers with a 5xx
func NewUpstreamUnavailable(detail string) *Failure {
	return &Failure{
		Kind:    KindUpstreamUnavailable,
		Status:  http.StatusBadGateway,
		Code:    CodeAuthServiceUnavailable,
		Message: "Authentication service is unreachable.",
		Err:     errorFromDetail(detail),
	}
}

// NewUpstreamUnreachable is returned when the auth service cannot be dialed.
// It shares the kind of NewUpstreamUnavailable but surfaces as 503.
func NewUpstreamUnreachable(err error) *Failure {
	return &Failure{
		Kind:    KindUpstreamUnavailable,
		Status:  http.StatusServiceUnavailable,
		Code:    CodeServiceUnavailable,
		Message: "The related service is not responding or is unreachable.",
		Err:     err,
	}
}

// NewUpstreamBadResponse is returned for auth service statuses outside 2xx, 4xx and 5xx
func NewUpstreamBadResponse(status int) *Failure {
	return &Failure{
		Kind:    KindUpstreamBadResponse,
		Status:  http.StatusBadGateway,
		Code:    CodeAuthServiceBadResponse,
		Message: fmt.Sprintf("Authentication service returned an unexpected status: %d", status),
	}
}

// NewForbidden is returned when a non-admin principal requests an admin path
func NewForbidden() *Failure {
	return &Failure{
		Kind:    KindForbidden,
		Status:  http.StatusNotFound,
		Code:    CodeNotFound,
		Message: AccessRestrictedMessage,
	}
}

// NewInternal wraps any other error raised while validating a credential
func NewInternal(err error) *Failure {
	return &Failure{
		Kind:    KindInternal,
		Status:  http.StatusNotAcceptable,
		Code:    CodeAuthServiceError,
		Message: "Error during authentication: " + err.Error(),
		Err:     err,
	}
}

// IsKind checks if err is a Failure of the given kind
func IsKind(err error, kind Kind) bool {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind == kind
	}
	return false
}

// StatusError is an explicit HTTP status raised by routing or request checks
type StatusError struct {
	Status int
	Reason string
}

// NewStatusError creates a StatusError. An empty reason selects the default message.
func NewStatusError(status int, reason string) *StatusError {
	return &StatusError{Status: status, Reason: reason}
}

// Error implements the error interface
func (e *StatusError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("status %d: %s", e.Status, e.Reason)
	}
	return fmt.Sprintf("status %d", e.Status)
}

// UpstreamError reports that a backend could not be reached while forwarding
type UpstreamError struct {
	Route string
	Err   error
}

// Error implements the error interface
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s: %v", e.Route, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func errorFromDetail(detail string) error {
	if detail == "" {
		return nil
	}
	return errors.New(detail)
}
