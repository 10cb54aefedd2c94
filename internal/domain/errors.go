package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by repo and service functions when the requested
// record does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing plate, unknown physical state).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned when a write collides with existing data: a
// duplicate plate or username, or a record still referenced by a trip.
// Handlers should map this to HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrUnauthorized is returned when credentials or tokens are missing or invalid.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden is returned when an authenticated user lacks a permission.
var ErrForbidden = errors.New("forbidden")

// ErrTripFinalized is returned by writes that target a finalized trip.
// It wraps ErrConflict.
var ErrTripFinalized = fmt.Errorf("%w: trip is finalized", ErrConflict)
