// Package gateway defines the boundary to the remote authentication API
// and ships two implementations: an HTTP JSON client with transient-error
// retry, and an in-process stub for development and tests.
//
// # Failure shape
//
// A *Result with Success=false is the server rejecting the credentials; a
// non-nil error is a transport failure (network unreachable, non-2xx,
// malformed payload). Callers in this module fold both into the same
// lockout transition, so implementations only need to keep the two shapes
// distinct, not graded.
//
// # What this package must NOT do
//
//   - Verify credentials itself (the stub excepted, and only for dev/test).
//   - Parse or validate tokens on behalf of the client.
//   - Import authcore or lockout (no upward imports).
package gateway
