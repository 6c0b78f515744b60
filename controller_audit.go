package authcore

import (
	"context"
	"errors"
	"time"

	"github.com/recipeshare/authcore/gateway"
	"github.com/recipeshare/authcore/kv"
)

const (
	auditEventLoginSuccess         = "login_success"
	auditEventLoginFailure         = "login_failure"
	auditEventLoginRejectedLocked  = "login_rejected_locked"
	auditEventLockoutTriggered     = "lockout_triggered"
	auditEventLockoutExpired       = "lockout_expired"
	auditEventRegisterSuccess      = "register_success"
	auditEventRegisterFailure      = "register_failure"
	auditEventLogout               = "logout"
	auditEventSessionRestored      = "session_restored"
	auditEventSessionRestoreFailed = "session_restore_failed"
	auditEventStaleLoginDiscarded  = "stale_login_discarded"
)

// AuditErrorCode defines a public type used by authcore APIs.
//
// AuditErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditErrorCode string

const (
	auditErrLocked              AuditErrorCode = "locked"
	auditErrAccountLocked       AuditErrorCode = "account_locked"
	auditErrLoginFailed         AuditErrorCode = "login_failed"
	auditErrRegistrationFailed  AuditErrorCode = "registration_failed"
	auditErrLoginSuperseded     AuditErrorCode = "login_superseded"
	auditErrGatewayUnavailable  AuditErrorCode = "gateway_unavailable"
	auditErrStoreUnavailable    AuditErrorCode = "store_unavailable"
	auditErrControllerClosed    AuditErrorCode = "controller_closed"
	auditErrInternal            AuditErrorCode = "internal_error"
)

func (c *Controller) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	email string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if c == nil || c.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		UserID:    userID,
		Email:     email,
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	c.audit.Emit(ctx, event)
}

// emitAuditLocked is the variant used while c.mu is held. The dispatcher
// itself never blocks in drop-if-full mode, so holding the mutex is safe.
func (c *Controller) emitAuditLocked(
	eventType string,
	success bool,
	err error,
	metadataBuilder func() map[string]string,
) {
	userID := ""
	email := ""
	if c.current != nil {
		userID = c.current.User.ID
		email = c.current.User.Email
	}
	c.emitAudit(context.Background(), eventType, success, userID, email, err, metadataBuilder)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrLoginLocked):
		return auditErrLocked
	case errors.Is(err, ErrAccountLocked):
		return auditErrAccountLocked
	case errors.Is(err, ErrLoginFailed):
		return auditErrLoginFailed
	case errors.Is(err, ErrRegistrationFailed):
		return auditErrRegistrationFailed
	case errors.Is(err, ErrLoginSuperseded):
		return auditErrLoginSuperseded
	case errors.Is(err, ErrControllerClosed):
		return auditErrControllerClosed
	case errors.Is(err, gateway.ErrGatewayUnavailable):
		return auditErrGatewayUnavailable
	case errors.Is(err, kv.ErrStoreUnavailable):
		return auditErrStoreUnavailable
	default:
		return auditErrInternal
	}
}
