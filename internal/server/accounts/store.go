// Package accounts implements the credential store: account management plus
// the sign-in state machine with brute-force lockout. It composes the
// generic resource proxy rather than extending it; the lockout counters are
// ordinary record fields mutated only through the store's atomic update
// path.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yzt-loan/loanadmin/internal/common"
	"github.com/yzt-loan/loanadmin/internal/server/resource"
	"github.com/yzt-loan/loanadmin/internal/server/store"
)

// Collection is the record-store collection holding credential records.
const Collection = "user"

// Credential record fields owned by this package.
const (
	FieldUsername = "username"
	FieldPassword = "password"
	fieldAttempts = "login_attempts"
	fieldLockTill = "lock_until"
)

// Status is the caller-visible outcome of an authentication attempt.
type Status int

const (
	StatusNotFound Status = iota
	StatusBadPassword
	StatusLocked
	StatusSuccess
)

// Outcome carries the authentication status and, on success, the account
// record.
type Outcome struct {
	Status Status
	Record store.Record
}

// Store manages credential records. MaxAttempts consecutive failures lock
// the account for LockWindow; the lock self-expires and overrides a correct
// password while active.
type Store struct {
	proxy       *resource.Proxy
	col         store.Collection
	maxAttempts int64
	lockWindow  time.Duration

	now func() time.Time // test seam
}

// New builds a credential store on top of the given record store.
func New(s store.Store, maxAttempts int, lockWindow time.Duration) *Store {
	return &Store{
		proxy:       resource.New(s, Collection, nil),
		col:         s.Collection(Collection),
		maxAttempts: int64(maxAttempts),
		lockWindow:  lockWindow,
		now:         time.Now,
	}
}

// Proxy exposes the generic CRUD layer for the account collection, reused by
// the plain /user resource handlers.
func (s *Store) Proxy() *resource.Proxy { return s.proxy }

// FindByUsername returns the account record or common.ErrNotFound.
// The match is a case-sensitive exact comparison.
func (s *Store) FindByUsername(ctx context.Context, username string) (store.Record, error) {
	return s.proxy.FindOne(ctx, map[string]any{FieldUsername: username})
}

// CreateAccount registers a new account with a freshly derived password
// digest. Returns common.ErrConflict when the username is taken.
func (s *Store) CreateAccount(ctx context.Context, username, password string) (store.Record, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", common.ErrValidation)
	}

	if _, err := s.FindByUsername(ctx, username); err == nil {
		return nil, fmt.Errorf("%w: username %q", common.ErrConflict, username)
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	return s.proxy.Create(ctx, map[string]any{
		FieldUsername: username,
		FieldPassword: HashPassword(password),
		fieldAttempts: 0,
	})
}

// Authenticate runs the sign-in state machine:
//
//	unknown username          → NOT_FOUND
//	inside the lock window    → LOCKED (even for a correct password)
//	wrong password            → BAD_PASSWORD, counter incremented; reaching
//	                            the threshold sets the lock and reports
//	                            LOCKED for that attempt
//	correct password          → SUCCESS, counter reset
//
// The failed-attempt counter is incremented with the store's atomic
// single-document update, so concurrent failures are never lost.
func (s *Store) Authenticate(ctx context.Context, username, password string) (Outcome, error) {
	rec, err := s.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return Outcome{Status: StatusNotFound}, nil
		}
		return Outcome{}, err
	}

	if s.lockedUntil(rec).After(s.now()) {
		return Outcome{Status: StatusLocked}, nil
	}

	filter := map[string]any{FieldUsername: username}
	digest, _ := rec[FieldPassword].(string)

	if VerifyPassword(digest, password) {
		if err := s.col.SetFields(ctx, filter, map[string]any{
			fieldAttempts: 0,
			fieldLockTill: "",
		}); err != nil && !errors.Is(err, common.ErrNotFound) {
			return Outcome{}, err
		}
		return Outcome{Status: StatusSuccess, Record: rec}, nil
	}

	attempts, err := s.col.IncrementField(ctx, filter, fieldAttempts, 1)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return Outcome{}, err
	}

	if attempts >= s.maxAttempts {
		if err := s.col.SetFields(ctx, filter, map[string]any{
			fieldAttempts: 0,
			fieldLockTill: s.now().Add(s.lockWindow).Format(time.RFC3339Nano),
		}); err != nil && !errors.Is(err, common.ErrNotFound) {
			return Outcome{}, err
		}
		return Outcome{Status: StatusLocked}, nil
	}

	return Outcome{Status: StatusBadPassword}, nil
}

// ResetPassword verifies the old password and stores a digest of the new
// one. A locked account cannot reset its password.
func (s *Store) ResetPassword(ctx context.Context, username, oldPassword, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("%w: new password is required", common.ErrValidation)
	}

	rec, err := s.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	if s.lockedUntil(rec).After(s.now()) {
		return common.ErrUnauthorized
	}

	digest, _ := rec[FieldPassword].(string)
	if !VerifyPassword(digest, oldPassword) {
		return common.ErrUnauthorized
	}

	_, err = s.proxy.Update(ctx,
		map[string]any{FieldUsername: username},
		map[string]any{FieldPassword: HashPassword(newPassword)})
	return err
}

// EnsureSuperAdmin creates the bootstrap admin account when it does not
// exist yet. Returns true when the account was created.
func (s *Store) EnsureSuperAdmin(ctx context.Context, username, password string) (bool, error) {
	_, err := s.CreateAccount(ctx, username, password)
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Store) lockedUntil(rec store.Record) time.Time {
	raw, _ := rec[fieldLockTill].(string)
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
