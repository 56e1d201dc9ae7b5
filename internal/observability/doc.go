// Package observability provides structured logging and metrics for the
// gateway.
//
// This package implements:
//   - zap logger construction from LOG_LEVEL / LOG_FORMAT
//   - Prometheus collectors for authentication decisions
//   - Latency of calls to the authentication service
package observability
