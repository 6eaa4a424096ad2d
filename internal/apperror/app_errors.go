// Package apperror defines the error taxonomy shared across the engine.
// Every precondition violation maps to exactly one of these sentinels;
// callers discriminate with errors.Is.
package apperror

import "errors"

var (
	// ErrAlreadyExists is returned on double initialization of a registry,
	// a second rating record mint for the same player, or a duplicate entity.
	ErrAlreadyExists = errors.New("already exists")

	// ErrNotFound is returned when a registry, record, match, or entity
	// is absent at its derived address.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned for malformed team sets and
	// out-of-range winner indexes.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAlreadyResolved is returned on a second resolution attempt.
	ErrAlreadyResolved = errors.New("match already complete")

	// ErrUnauthorized is returned when the caller is not the
	// designated admin of the game namespace.
	ErrUnauthorized = errors.New("unauthorized")
)
