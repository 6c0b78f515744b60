package authcore

import (
	"errors"
	"time"
)

// Config defines a public type used by authcore APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Lockout   LockoutConfig
	Reconcile ReconcileConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
}

/*
====================================
LOCKOUT CONFIG
====================================
*/

// LockoutConfig defines a public type used by authcore APIs.
//
// LockoutConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type LockoutConfig struct {
	// MaxAttempts is the consecutive failure count that triggers a lock.
	MaxAttempts int
	// Duration is the length of the lock window.
	Duration time.Duration
}

/*
====================================
RECONCILE CONFIG
====================================
*/

// ReconcileConfig defines a public type used by authcore APIs.
//
// ReconcileConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ReconcileConfig struct {
	// Interval is how often the background ticker re-evaluates lock
	// expiry against the clock.
	Interval time.Duration
}

// AuditConfig defines a public type used by authcore APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by authcore APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig describes the defaultconfig operation and its observable behavior.
//
// DefaultConfig may return an error when input validation, dependency calls, or security checks fail.
// DefaultConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Lockout: LockoutConfig{
			MaxAttempts: 3,
			Duration:    3 * time.Minute,
		},
		Reconcile: ReconcileConfig{
			Interval: time.Second,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	// Lockout
	if c.Lockout.MaxAttempts <= 0 {
		return errors.New("Lockout MaxAttempts must be > 0")
	}
	if c.Lockout.Duration <= 0 {
		return errors.New("Lockout Duration must be > 0")
	}
	if c.Lockout.Duration < time.Second {
		return errors.New("Lockout Duration must be >= 1s")
	}

	// Reconcile
	if c.Reconcile.Interval <= 0 {
		return errors.New("Reconcile Interval must be > 0")
	}
	if c.Reconcile.Interval > c.Lockout.Duration {
		return errors.New("Reconcile Interval must not exceed Lockout Duration")
	}

	// Audit
	if c.Audit.Enabled {
		if c.Audit.BufferSize <= 0 {
			return errors.New("Audit BufferSize must be > 0 when audit is enabled")
		}
	}

	return nil
}
