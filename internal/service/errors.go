// Package service holds the booking lifecycle: creation, pricing,
// availability, status transitions and payment updates.
package service

import (
	"errors"

	"github.com/iliyamo/travel-booking/internal/repository"
)

var (
	// ErrInvalidTransition means the requested status change is not an
	// edge of the booking state machine or its preconditions fail.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrUnavailable means the room, car or seats are already taken for
	// the requested dates.
	ErrUnavailable = errors.New("not available for the requested dates")
	// ErrCapacityExceeded means more guests than the offering holds.
	ErrCapacityExceeded = errors.New("guests exceed capacity")
	ErrInvalidDates     = errors.New("invalid dates")
	ErrInactive         = errors.New("service is not active")
	ErrValidation       = errors.New("validation failed")

	// Shared with the repository layer so handlers map one set of
	// sentinels.
	ErrNotFound  = repository.ErrNotFound
	ErrForbidden = repository.ErrForbidden
)
