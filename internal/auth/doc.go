// Package auth provides the identity primitives of the gateway.
//
// This package implements:
//   - Bearer credential extraction from the Authorization header
//   - The Principal built from a validated token
//   - The Authentication security context (subject + authorities)
//   - The admin role check used on administrative paths
//
// Token validation itself happens remotely, see package authclient.
package auth
