package authcore

import "errors"

var (
	// ErrLoginLocked is an exported constant or variable used by the session core.
	ErrLoginLocked = errors.New("locked")
	// ErrLoginFailed is an exported constant or variable used by the session core.
	ErrLoginFailed = errors.New("login failed")
	// ErrAccountLocked is an exported constant or variable used by the session core.
	ErrAccountLocked = errors.New("account locked due to multiple failed attempts")
	// ErrRegistrationFailed is an exported constant or variable used by the session core.
	ErrRegistrationFailed = errors.New("registration failed")
	// ErrLoginSuperseded is an exported constant or variable used by the session core.
	ErrLoginSuperseded = errors.New("login superseded by logout")
	// ErrControllerClosed is an exported constant or variable used by the session core.
	ErrControllerClosed = errors.New("controller closed")
)
