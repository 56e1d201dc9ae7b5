package shared

// Headers asserted to backends once a request is authenticated.
// Client-supplied values of the identity headers are never trusted.
const (
	HeaderUserID        = "X-User-Id"
	HeaderUserEmail     = "X-User-Email"
	HeaderUserRole      = "X-User-Role"
	HeaderCorrelationID = "X-Correlation-Id"
)

// IdentityHeaders lists the headers that assert who the caller is
var IdentityHeaders = []string{HeaderUserID, HeaderUserEmail, HeaderUserRole}
