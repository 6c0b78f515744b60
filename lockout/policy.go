package lockout

import "time"

const (
	// DefaultMaxAttempts is the number of consecutive failures that triggers
	// a lock. The lock engages on the Nth failure itself, not after it.
	DefaultMaxAttempts = 3

	// DefaultDuration is the cool-down window applied when a lock engages.
	DefaultDuration = 3 * time.Minute
)

// State is the lockout machine's complete state. LockedUntil is epoch
// milliseconds; zero means no lock is set. The zero value is the initial
// state: unlocked with no recorded failures.
type State struct {
	FailedAttempts int
	LockedUntil    int64
}

// Locked reports whether the state holds an unexpired lock at now.
func (s State) Locked(now int64) bool {
	return s.LockedUntil != 0 && now < s.LockedUntil
}

// Policy computes lockout transitions for a fixed attempt budget and
// lock duration. The zero value is not usable; construct via [New].
type Policy struct {
	maxAttempts int
	duration    time.Duration
}

// New creates a [Policy]. Non-positive arguments fall back to the defaults.
func New(maxAttempts int, duration time.Duration) Policy {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if duration <= 0 {
		duration = DefaultDuration
	}
	return Policy{maxAttempts: maxAttempts, duration: duration}
}

// MaxAttempts returns the configured attempt budget.
func (p Policy) MaxAttempts() int {
	return p.maxAttempts
}

// CanAttempt reports whether a login attempt is permitted at now.
// It is false exactly while an unexpired lock is held.
func (p Policy) CanAttempt(s State, now int64) bool {
	return !s.Locked(now)
}

// OnFailure returns the state after a rejected login at now. While locked
// it is a no-op; callers are expected to reject pre-flight, but the policy
// stays idempotent if one slips through. Reaching the attempt budget sets
// LockedUntil = now + duration.
func (p Policy) OnFailure(s State, now int64) State {
	if !p.CanAttempt(s, now) {
		return s
	}

	next := State{FailedAttempts: s.FailedAttempts + 1}
	if next.FailedAttempts > p.maxAttempts {
		next.FailedAttempts = p.maxAttempts
	}
	if next.FailedAttempts >= p.maxAttempts {
		next.LockedUntil = now + p.duration.Milliseconds()
	}
	return next
}

// OnSuccess returns the fully reset state. Unconditional: a successful
// login clears both the counter and any stale lock timestamp.
func (p Policy) OnSuccess() State {
	return State{}
}

// Reconcile returns the reset state if the lock has naturally expired at
// now, and the input unchanged otherwise. This is the function the
// periodic ticker calls; it converges and stays at the reset state once
// the lock is past.
func (p Policy) Reconcile(s State, now int64) State {
	if s.LockedUntil != 0 && now >= s.LockedUntil {
		return State{}
	}
	return s
}

// RemainingMinutes returns the lock time left at now, rounded up to whole
// minutes. While a lock holds it never returns less than 1; unlocked
// states return 0.
func (p Policy) RemainingMinutes(s State, now int64) int {
	if !s.Locked(now) {
		return 0
	}
	remainingMS := s.LockedUntil - now
	minutes := int((remainingMS + 59_999) / 60_000)
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
