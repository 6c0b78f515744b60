package authcore

import (
	"context"
	"errors"
	"strconv"

	"github.com/recipeshare/authcore/kv"
	"github.com/recipeshare/authcore/lockout"
)

const (
	keyFailedAttempts = "failedAttempts"
	keyLockoutTime    = "lockoutTime"
)

// lockoutStore mirrors lockout state into the durable store so a lock
// survives a process restart. The persisted copy is the source of truth
// on construction; in-memory state is authoritative afterwards.
type lockoutStore struct {
	kv kv.Store
}

func newLockoutStore(store kv.Store) *lockoutStore {
	return &lockoutStore{kv: store}
}

// Load reads persisted lockout state. The two entries are one unit: if
// either is unparseable, or a lock timestamp exists without a failure
// count, both are deleted and the zero state is returned. A partial
// restore could otherwise produce a lock with no recorded failures.
func (s *lockoutStore) Load(ctx context.Context) (lockout.State, error) {
	rawAttempts, haveAttempts, err := s.get(ctx, keyFailedAttempts)
	if err != nil {
		return lockout.State{}, err
	}
	rawLock, haveLock, err := s.get(ctx, keyLockoutTime)
	if err != nil {
		return lockout.State{}, err
	}

	var state lockout.State
	valid := true

	if haveAttempts {
		n, parseErr := strconv.Atoi(rawAttempts)
		if parseErr != nil || n < 0 {
			valid = false
		} else {
			state.FailedAttempts = n
		}
	}
	if haveLock {
		ts, parseErr := strconv.ParseInt(rawLock, 10, 64)
		if parseErr != nil || ts < 0 {
			valid = false
		} else {
			state.LockedUntil = ts
		}
	}
	if state.LockedUntil != 0 && !haveAttempts {
		valid = false
	}

	if !valid {
		_ = s.kv.Delete(ctx, keyFailedAttempts, keyLockoutTime)
		return lockout.State{}, nil
	}
	return state, nil
}

func (s *lockoutStore) get(ctx context.Context, key string) (string, bool, error) {
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return raw, true, nil
}

// Save writes the state. The lockoutTime entry is removed rather than
// written as zero while no lock is active.
func (s *lockoutStore) Save(ctx context.Context, state lockout.State) error {
	if err := s.kv.Set(ctx, keyFailedAttempts, strconv.Itoa(state.FailedAttempts)); err != nil {
		return err
	}
	if state.LockedUntil == 0 {
		return s.kv.Delete(ctx, keyLockoutTime)
	}
	return s.kv.Set(ctx, keyLockoutTime, strconv.FormatInt(state.LockedUntil, 10))
}
