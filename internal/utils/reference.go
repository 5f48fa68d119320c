package utils

import (
	"strings"

	"github.com/google/uuid"
)

// NewBookingReference returns a short human friendly booking reference such
// as "BK-3F9A0C1D". It is derived from a random UUID; uniqueness is enforced
// by the bookings.reference index and callers retry on collision.
func NewBookingReference() string {
	id := uuid.New()
	return "BK-" + strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])
}

// NewState returns an opaque random value for OAuth state parameters.
func NewState() string {
	return uuid.NewString()
}
