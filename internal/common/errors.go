// Package common defines shared constants and sentinel errors used across
// the loan-intake server layers. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Store-level errors. ErrNotFound is a normal outcome, not a failure:
	// handlers map it to a code=1 envelope, never to a 500.
	ErrNotFound = errors.New("not found")
	ErrStore    = errors.New("store error")

	// Validation / uniqueness errors on create and update payloads.
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")

	// Token lifecycle errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
