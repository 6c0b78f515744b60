package authcore

import "github.com/recipeshare/authcore/session"

// Snapshot defines a public type used by authcore APIs.
//
// Snapshot instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Snapshot struct {
	// User is nil while logged out.
	User           *session.Identity
	IsLoading      bool
	FailedAttempts int
	IsLocked       bool
	// LockoutTime is the lock expiry in milliseconds since epoch,
	// 0 when no lock is active.
	LockoutTime int64
}

// LoggedIn reports whether the snapshot carries an authenticated identity.
func (s Snapshot) LoggedIn() bool {
	return s.User != nil
}

// RegisterRequest mirrors gateway.RegisterRequest at the public surface so
// callers do not need to import the gateway package for the common path.
type RegisterRequest struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}
