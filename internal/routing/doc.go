// Package routing decides how the gateway treats a request before any
// credential is looked at.
//
// This package provides:
//   - The PathClass buckets (public, websocket, admin, standard)
//   - The ordered, immutable rule table of public namespaces
//   - WebSocket upgrade detection
//
// Preflight requests never reach the classifier; the auth middleware lets
// them through first.
package routing
