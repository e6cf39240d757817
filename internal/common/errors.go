// Package common defines shared constants and sentinel errors used across
// the portal. Callers should use errors.Is (and errors.As for typed errors)
// to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")

	// Account errors.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountExists      = errors.New("account already exists")
	ErrAccountBanned      = errors.New("account is banned")

	// Delivery errors.
	ErrRealmNotFound        = errors.New("realm not found")
	ErrCharacterNotFound    = errors.New("character not found")
	ErrItemTemplateNotFound = errors.New("item template not found")
	ErrTooManyMailSlots     = errors.New("too many mail slots")
	ErrCategoryNotAllowed   = errors.New("item category not allowed")

	// ErrStoreUnavailable is returned only after the failed request has been
	// rolled back, so a single caller-side retry is safe.
	ErrStoreUnavailable = errors.New("store unavailable")

	// Validation errors, rejected before the store is touched.
	ErrInvalidRequest = errors.New("invalid request")

	// Auth token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// ErrInsufficientFunds is the sentinel every InsufficientFundsError unwraps to.
var ErrInsufficientFunds = errors.New("insufficient funds")

// InsufficientFundsError reports how much money the character is short of.
// Match with errors.As, or with errors.Is against ErrInsufficientFunds.
type InsufficientFundsError struct {
	Shortfall int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: short %d", e.Shortfall)
}

func (e *InsufficientFundsError) Unwrap() error { return ErrInsufficientFunds }
