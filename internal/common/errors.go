// Package common defines shared constants and sentinel errors used across
// the expense service. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Credential errors. Every verification failure collapses into
	// ErrInvalidToken so callers cannot tell an expired token from a
	// tampered one.
	ErrInvalidToken      = errors.New("invalid token")
	ErrPrincipalNotFound = errors.New("principal not found")

	// Google sign-in errors.
	ErrMissingAuthCode = errors.New("no code returned from provider")
	ErrExchangeFailed  = errors.New("failed to get id_token from provider")
	ErrMissingEmail    = errors.New("provider assertion has no email")
)
