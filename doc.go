// Package authcore provides the client-side authentication session core for a
// recipe-sharing application: login and registration orchestration, account
// lockout after repeated failures, and session restoration across process
// restarts from a durable key-value store.
//
// The package is designed around a single [Controller] instance per process:
// Controller methods are safe to call from multiple goroutines after
// initialization through [Builder.Build].
//
// # Architecture boundaries
//
// authcore is the public surface. It exposes [Controller], [Builder], [Config],
// and value types (Snapshot, MetricsSnapshot, etc.). Pure lockout arithmetic
// lives in the lockout package, persistence in session and kv, and the remote
// credential boundary in gateway.
//
// # What this package must NOT do
//
//   - Verify credentials, parse tokens, or apply token expiry. The remote
//     gateway owns all of that; this core only mirrors its verdicts.
//   - Treat the lockout as a security boundary. It is a UX throttle; the
//     server must rate-limit independently.
//   - Expose the underlying kv.Store or persisted key layout in its public API.
//
// # Liveness contract
//
// A background reconciliation ticker re-evaluates lockout expiry once per
// interval, so a lock that ends while the user is idle becomes visible to
// subscribers without any user action. The gateway call is the only
// suspension point in a login; no lock is held across it.
package authcore
