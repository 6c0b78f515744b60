package authcore

import (
	"context"
	"fmt"

	"github.com/recipeshare/authcore/gateway"
	"github.com/recipeshare/authcore/session"
)

// Register describes the register operation and its observable behavior.
//
// Register may return an error when input validation, dependency calls, or security checks fail.
// Register does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Registration never consults or advances the lockout policy; lockout
// applies to login attempts only. When the gateway returns an identity
// and token the success path behaves like a successful login.
func (c *Controller) Register(ctx context.Context, req RegisterRequest) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrControllerClosed
	}
	generation := c.generation
	c.loading = true
	c.publishLocked()
	c.mu.Unlock()

	result, gwErr := c.gateway.Register(ctx, gateway.RegisterRequest{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})

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
		c.emitAudit(ctx, auditEventStaleLoginDiscarded, false, "", req.Email, ErrLoginSuperseded, nil)
		return ErrLoginSuperseded
	}

	if gwErr != nil {
		c.metricInc(MetricRegisterFailure)
		c.emitAudit(ctx, auditEventRegisterFailure, false, "", req.Email, gwErr, nil)
		return fmt.Errorf("%w: %v", ErrRegistrationFailed, gwErr)
	}
	if result == nil || !result.Success {
		c.metricInc(MetricRegisterFailure)
		c.emitAudit(ctx, auditEventRegisterFailure, false, "", req.Email, ErrRegistrationFailed, func() map[string]string {
			if result == nil || result.Message == "" {
				return nil
			}
			return map[string]string{
				"message": result.Message,
			}
		})
		if result != nil && result.Message != "" {
			return fmt.Errorf("%w: %s", ErrRegistrationFailed, result.Message)
		}
		return ErrRegistrationFailed
	}

	// Some gateways create the account without signing the user in.
	if result.User != nil && result.Token != "" {
		sess := &session.Session{User: *result.User, Token: result.Token}
		if err := c.sessions.Save(ctx, sess); err != nil {
			c.emitAudit(ctx, auditEventRegisterSuccess, true, sess.User.ID, req.Email, err, func() map[string]string {
				return map[string]string{
					"reason": "session_persist_failed",
				}
			})
		} else {
			c.emitAudit(ctx, auditEventRegisterSuccess, true, sess.User.ID, req.Email, nil, nil)
		}
		c.current = sess
	} else {
		c.emitAudit(ctx, auditEventRegisterSuccess, true, "", req.Email, nil, nil)
	}
	c.metricInc(MetricRegisterSuccess)

	return nil
}

// Logout describes the logout operation and its observable behavior.
//
// Logout may return an error when input validation, dependency calls, or security checks fail.
// Logout does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Logout clears the session and its persisted entries but leaves the
// lockout state untouched. Any login still in flight when Logout runs is
// discarded when its response arrives.
func (c *Controller) Logout(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrControllerClosed
	}

	c.generation++
	c.current = nil
	err := c.sessions.Clear(ctx)

	c.metricInc(MetricLogout)
	c.emitAudit(ctx, auditEventLogout, err == nil, "", "", err, nil)
	c.publishLocked()

	return err
}
