// Package authclient talks to the remote authentication service.
//
// Validate maps every outcome of the call onto a *shared.Failure:
//
//	2xx + identity payload   -> principal
//	4xx                      -> InvalidCredentials (401)
//	5xx                      -> UpstreamUnavailable (502)
//	dial / DNS failure       -> UpstreamUnavailable (503)
//	1xx / 3xx                -> UpstreamBadResponse (502)
//	anything else            -> Internal (406)
package authclient
