package model

import (
	"strings"
	"time"
)

// Role is the value stored in users.role and carried in the JWT role claim.
type Role string

const (
	RoleCustomer   Role = "CUSTOMER"
	RoleAdmin      Role = "ADMIN"
	RoleHotelOwner Role = "HOTEL_OWNER"
	RoleCarOwner   Role = "CAR_OWNER"
	RoleTourGuide  Role = "TOUR_GUIDE"
)

// AllRoles lists every role in display order.
var AllRoles = []Role{RoleCustomer, RoleAdmin, RoleHotelOwner, RoleCarOwner, RoleTourGuide}

// ParseRole normalizes s and reports whether it names a known role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range AllRoles {
		if r == known {
			return r, true
		}
	}
	return "", false
}

// IsOwner reports whether the role owns bookable services.
func (r Role) IsOwner() bool {
	_, ok := ownedServiceTypes[r]
	return ok
}

// OwnedServiceType returns the service type an owner role manages.
func (r Role) OwnedServiceType() (ServiceType, bool) {
	st, ok := ownedServiceTypes[r]
	return st, ok
}

var ownedServiceTypes = map[Role]ServiceType{
	RoleHotelOwner: ServiceHotel,
	RoleCarOwner:   ServiceCar,
	RoleTourGuide:  ServiceTour,
}

// SelfRegisterable reports whether a user may pick this role at sign-up.
// ADMIN accounts are only created by other admins.
func (r Role) SelfRegisterable() bool {
	return r != RoleAdmin && r != ""
}

// User mirrors a row of the users table. PasswordHash is empty for accounts
// created through an OAuth provider.
type User struct {
	ID            uint64    `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	FullName      string    `json:"full_name"`
	Role          Role      `json:"role"`
	OAuthProvider *string   `json:"oauth_provider,omitempty"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// RefreshToken models an entry in the refresh_tokens table. Only the
// SHA-256 hash of the token is stored.
type RefreshToken struct {
	ID        uint64
	UserID    uint64
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}
