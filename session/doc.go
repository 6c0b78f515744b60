// Package session provides persistence and restoration of the locally held
// proof of authentication: the user identity plus the opaque server token.
//
// # Persistence layout
//
// Two independent entries in the durable store: "user" (JSON identity) and
// "token" (opaque string). The token is written first; load is keyed on the
// user entry, so a torn write can only resolve to logged-out, never to a
// token without an identity. Corrupt entries are deleted on load and
// reported as no session.
//
// # Architecture boundaries
//
// This package owns the [Store] and the [Session] model. It never parses
// the token, never expires sessions (token lifetime is the server's
// concern), and never talks to the network.
//
// # What this package must NOT do
//
//   - Import authcore, gateway, or lockout (no upward imports).
//   - Validate or decode the opaque token.
//   - Surface corrupt persisted data to callers.
package session
