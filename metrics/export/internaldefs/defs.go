package internaldefs

import (
	authcore "github.com/recipeshare/authcore"
)

// CounterDef defines a public type used by authcore APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   authcore.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by authcore APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   authcore.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the session core.
var CounterDefs = []CounterDef{
	{ID: authcore.MetricLoginSuccess, Name: "authcore_login_success_total", Help: "Successful login attempts."},
	{ID: authcore.MetricLoginFailure, Name: "authcore_login_failure_total", Help: "Failed login attempts."},
	{ID: authcore.MetricLoginRejectedLocked, Name: "authcore_login_rejected_locked_total", Help: "Login attempts rejected before any gateway call while locked."},
	{ID: authcore.MetricLockoutTriggered, Name: "authcore_lockout_triggered_total", Help: "Lockouts triggered by reaching the failure budget."},
	{ID: authcore.MetricLockoutExpired, Name: "authcore_lockout_expired_total", Help: "Lockouts cleared by natural expiry."},
	{ID: authcore.MetricRegisterSuccess, Name: "authcore_register_success_total", Help: "Successful registrations."},
	{ID: authcore.MetricRegisterFailure, Name: "authcore_register_failure_total", Help: "Failed registrations."},
	{ID: authcore.MetricLogout, Name: "authcore_logout_total", Help: "Logout operations."},
	{ID: authcore.MetricSessionRestored, Name: "authcore_session_restored_total", Help: "Sessions restored from the durable store at startup."},
	{ID: authcore.MetricSessionRestoreFailed, Name: "authcore_session_restore_failed_total", Help: "Startup restore attempts that fell back to logged out."},
	{ID: authcore.MetricStaleLoginDiscarded, Name: "authcore_stale_login_discarded_total", Help: "Login responses discarded because a logout superseded them."},
}

// HistogramDefs is an exported constant or variable used by the session core.
var HistogramDefs = []HistogramDef{
	{ID: authcore.MetricLoginLatency, Name: "authcore_login_latency_seconds", Help: "Login latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the session core.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the session core.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets may return an error when input validation, dependency calls, or security checks fail.
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets may return an error when input validation, dependency calls, or security checks fail.
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
