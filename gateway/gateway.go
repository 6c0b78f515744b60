package gateway

import (
	"context"

	"github.com/recipeshare/authcore/session"
)

// Result is the gateway's answer to a login or register call. When
// Success is true, User and Token are populated; otherwise Message
// carries the server's rejection text (may be empty).
type Result struct {
	Success bool
	Message string
	User    *session.Identity
	Token   string
}

// RegisterRequest carries the fields of a registration call.
type RegisterRequest struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// Gateway is the remote service performing actual credential
// verification. Implementations must be safe for concurrent use.
type Gateway interface {
	Login(ctx context.Context, email, password string) (*Result, error)
	Register(ctx context.Context, req RegisterRequest) (*Result, error)
}
