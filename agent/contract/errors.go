package contract

import "errors"

var (
	// ErrInvalidInput rejects a turn before any side effect: empty message,
	// oversized message, or a blocked injection pattern.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSessionNotFound signals a storage inconsistency mid-turn and is
	// fatal for that turn.
	ErrSessionNotFound = errors.New("session not found")

	// Provider signals. Only ErrRateLimited is retried.
	ErrRateLimited         = errors.New("provider rate limited")
	ErrQuotaExhausted      = errors.New("provider quota exhausted")
	ErrProviderUnavailable = errors.New("provider unavailable")

	ErrModelInvoke = errors.New("model invoke failed")
	ErrValidation  = errors.New("validation failed")
)
