// Package lockout provides the pure failed-attempt counting and temporary
// login suspension state machine used by the authcore Controller.
//
// # Decision semantics
//
// All functions are total and perform no I/O. Every decision takes a single
// caller-supplied clock reading; callers must not mix two different `now`
// values inside one decision. Timestamps are epoch milliseconds, matching
// the persisted layout.
//
// # What this package must NOT do
//
//   - Read the wall clock itself.
//   - Persist state (the Controller mirrors state into durable storage).
//   - Import authcore, session, or gateway (no upward imports).
package lockout
