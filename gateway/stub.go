package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/recipeshare/authcore/session"
)

type stubAccount struct {
	identity session.Identity
	password string
}

// Stub is an in-memory [Gateway] for development and tests. Accounts
// live only for the lifetime of the process and tokens are signed with
// the provided secret.
type Stub struct {
	mu       sync.Mutex
	accounts map[string]stubAccount
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
}

// NewStub creates an in-memory gateway. secret signs issued tokens and
// must not be empty in anything resembling production use.
func NewStub(secret []byte) *Stub {
	return &Stub{
		accounts: make(map[string]stubAccount),
		secret:   secret,
		tokenTTL: 24 * time.Hour,
		now:      time.Now,
	}
}

// Seed registers an account without going through Register. It is
// intended for test setup.
func (s *Stub) Seed(identity session.Identity, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if identity.ID == "" {
		identity.ID = uuid.NewString()
	}
	s.accounts[identity.Email] = stubAccount{identity: identity, password: password}
}

// Login describes the login operation and its observable behavior.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
// Login does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Stub) Login(ctx context.Context, email, password string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	account, ok := s.accounts[email]
	s.mu.Unlock()

	if !ok || account.password != password {
		return &Result{Success: false, Message: "invalid email or password"}, nil
	}

	token, err := s.mintToken(account.identity)
	if err != nil {
		return nil, err
	}

	identity := account.identity
	return &Result{
		Success: true,
		User:    &identity,
		Token:   token,
	}, nil
}

// Register describes the register operation and its observable behavior.
//
// Register may return an error when input validation, dependency calls, or security checks fail.
// Register does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Stub) Register(ctx context.Context, req RegisterRequest) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Email == "" || req.Password == "" {
		return &Result{Success: false, Message: "email and password are required"}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[req.Email]; exists {
		return &Result{Success: false, Message: "an account with this email already exists"}, nil
	}

	identity := session.Identity{
		ID:        uuid.NewString(),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	}
	s.accounts[req.Email] = stubAccount{identity: identity, password: req.Password}

	token, err := s.mintToken(identity)
	if err != nil {
		return nil, err
	}
	return &Result{
		Success: true,
		Message: "account created",
		User:    &identity,
		Token:   token,
	}, nil
}

func (s *Stub) mintToken(identity session.Identity) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":   identity.ID,
		"email": identity.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(s.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
