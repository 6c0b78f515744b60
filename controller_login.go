package authcore

import (
	"context"
	"fmt"
	"time"

	"github.com/recipeshare/authcore/session"
)

// Login describes the login operation and its observable behavior.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
// Login does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// While a lock is active Login rejects before any gateway call. Gateway
// failures and transport failures feed the lockout policy identically;
// only the returned message differs from the caller's point of view.
func (c *Controller) Login(ctx context.Context, email, password string) error {
	if c.metrics != nil && c.metrics.LatencyEnabled() {
		start := time.Now()
		defer func() {
			c.metrics.Observe(MetricLoginLatency, time.Since(start))
		}()
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrControllerClosed
	}

	now := c.now()
	// Fold an expired lock before the preflight check so an attempt made
	// just after expiry is not rejected on stale state.
	c.reconcileLocked(ctx, now)

	if !c.policy.CanAttempt(c.state, now) {
		minutes := c.policy.RemainingMinutes(c.state, now)
		c.metricInc(MetricLoginRejectedLocked)
		c.emitAuditLocked(auditEventLoginRejectedLocked, false, ErrLoginLocked, func() map[string]string {
			return map[string]string{
				"email": email,
			}
		})
		c.publishLocked()
		c.mu.Unlock()
		return fmt.Errorf("%w, retry in %d %s", ErrLoginLocked, minutes, minuteUnit(minutes))
	}

	generation := c.generation
	c.loading = true
	c.publishLocked()
	c.mu.Unlock()

	// The gateway call is the only suspension point; no lock is held
	// across it.
	result, gwErr := c.gateway.Login(ctx, email, password)

	c.mu.Lock()
	defer func() {
		c.loading = false
		c.publishLocked()
		c.mu.Unlock()
	}()

	if c.closed {
		return ErrControllerClosed
	}
	if generation != c.generation {
		c.metricInc(MetricStaleLoginDiscarded)
		c.emitAudit(ctx, auditEventStaleLoginDiscarded, false, "", email, ErrLoginSuperseded, nil)
		return ErrLoginSuperseded
	}

	if gwErr != nil || result == nil || !result.Success {
		return c.applyLoginFailureLocked(ctx, email)
	}

	c.state = c.policy.OnSuccess()
	if err := c.lockouts.Save(ctx, c.state); err != nil {
		c.emitAudit(ctx, auditEventLoginFailure, false, "", email, err, func() map[string]string {
			return map[string]string{
				"reason": "lockout_persist_failed",
			}
		})
	}

	sess := &session.Session{Token: result.Token}
	if result.User != nil {
		sess.User = *result.User
	}
	if err := c.sessions.Save(ctx, sess); err != nil {
		// Session remains valid in memory for this process; only the
		// restart mirror is degraded.
		c.emitAudit(ctx, auditEventLoginSuccess, true, sess.User.ID, email, err, func() map[string]string {
			return map[string]string{
				"reason": "session_persist_failed",
			}
		})
	} else {
		c.emitAudit(ctx, auditEventLoginSuccess, true, sess.User.ID, email, nil, nil)
	}
	c.current = sess
	c.metricInc(MetricLoginSuccess)

	return nil
}

// applyLoginFailureLocked feeds one failed attempt into the policy and
// returns the user-facing error. Caller holds c.mu.
func (c *Controller) applyLoginFailureLocked(ctx context.Context, email string) error {
	now := c.now()
	prev := c.state
	c.state = c.policy.OnFailure(c.state, now)
	if err := c.lockouts.Save(ctx, c.state); err != nil {
		c.emitAudit(ctx, auditEventLoginFailure, false, "", email, err, func() map[string]string {
			return map[string]string{
				"reason": "lockout_persist_failed",
			}
		})
	}

	c.metricInc(MetricLoginFailure)

	if c.state.Locked(now) && !prev.Locked(now) {
		c.metricInc(MetricLockoutTriggered)
		c.emitAudit(ctx, auditEventLockoutTriggered, false, "", email, ErrAccountLocked, nil)
		return ErrAccountLocked
	}

	remaining := c.policy.MaxAttempts() - c.state.FailedAttempts
	c.emitAudit(ctx, auditEventLoginFailure, false, "", email, ErrLoginFailed, func() map[string]string {
		return map[string]string{
			"attempts_remaining": fmt.Sprintf("%d", remaining),
		}
	})
	return fmt.Errorf("%w, %d attempts remaining", ErrLoginFailed, remaining)
}

func minuteUnit(n int) string {
	if n == 1 {
		return "minute"
	}
	return "minutes"
}
