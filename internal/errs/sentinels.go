// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist or is not
	// owned by the caller. The two cases are deliberately indistinguishable.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates missing or malformed input fields.
	ErrValidation = errors.New("validation failed")

	// ErrConflict indicates a concurrent-write race the caller may retry
	// once. Unused with the current store: visibility flips and tag
	// get-or-create resolve races with atomic single-statement writes.
	ErrConflict = errors.New("conflict")

	// ErrUnauthorized indicates failed authentication/authorization.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., username taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrGenerationFailed indicates the external text generator returned
	// an error or empty output. Nothing is persisted in that case.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrUnavailable indicates the underlying store is unreachable.
	ErrUnavailable = errors.New("store unavailable")
)
