// Package kv provides the durable string-keyed store the session core
// persists into, with adapters for common client environments.
//
// # Adapters
//
//   - [Memory]  — in-process map, for tests and ephemeral runs.
//   - [File]    — single JSON file with atomic replace-on-write.
//   - [SQLite]  — single-file database via the pure-Go driver.
//   - [Redis]   — shared store for multi-process deployments.
//
// # Semantics
//
// Stores are synchronous: a returned nil error means the write is durable
// as far as the backing medium allows. Missing keys return [ErrNotFound],
// never an empty value. Adapters are safe for concurrent use.
//
// # What this package must NOT do
//
//   - Interpret values (serialization belongs to the callers).
//   - Expire or evict entries.
//   - Import authcore, session, or lockout (no upward imports).
package kv
