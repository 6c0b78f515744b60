package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/recipeshare/authcore/kv"
)

const (
	userKey  = "user"
	tokenKey = "token"
)

// Store persists and restores the [Session] through a durable key-value
// store. It is a mirror of server state, not an authority: no expiry
// logic lives here.
type Store struct {
	kv kv.Store
}

// NewStore creates a session [Store] over the given durable store.
func NewStore(store kv.Store) *Store {
	return &Store{kv: store}
}

// Load restores the persisted session. A missing user entry means no
// session (nil, nil). A user entry that fails to parse is deleted along
// with the token, failing safe to logged-out rather than returning a
// half-valid session.
func (s *Store) Load(ctx context.Context) (*Session, error) {
	rawUser, err := s.kv.Get(ctx, userKey)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("session load: %w", err)
	}

	var user Identity
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil || user.ID == "" {
		// Corrupt entry: discard both halves and report logged-out.
		if clearErr := s.Clear(ctx); clearErr != nil {
			return nil, fmt.Errorf("session discard corrupt: %w", clearErr)
		}
		return nil, nil
	}

	token, err := s.kv.Get(ctx, tokenKey)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			token = ""
		} else {
			return nil, fmt.Errorf("session load token: %w", err)
		}
	}

	return &Session{User: user, Token: token}, nil
}

// Save persists the session as two entries. Token first: if the second
// write fails the dangling token is invisible to [Store.Load], which keys
// off the user entry, so the caller-observable prior state is unaffected.
func (s *Store) Save(ctx context.Context, sess *Session) error {
	if sess == nil {
		return errors.New("session save: nil session")
	}

	data, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("session encode: %w", err)
	}

	if err := s.kv.Set(ctx, tokenKey, sess.Token); err != nil {
		return fmt.Errorf("session save token: %w", err)
	}
	if err := s.kv.Set(ctx, userKey, string(data)); err != nil {
		return fmt.Errorf("session save user: %w", err)
	}
	return nil
}

// Clear deletes both persisted entries.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, userKey, tokenKey); err != nil {
		return fmt.Errorf("session clear: %w", err)
	}
	return nil
}
