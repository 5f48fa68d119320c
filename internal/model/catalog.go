package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Hotel is a property owned by a HOTEL_OWNER. Localized fields live in
// hotel_translations.
type Hotel struct {
	ID           uint64                      `json:"id"`
	OwnerID      uint64                      `json:"owner_id"`
	City         string                      `json:"city"`
	Country      string                      `json:"country"`
	Stars        uint8                       `json:"stars"`
	Amenities    []string                    `json:"amenities"`
	ImageURL     string                      `json:"image_url"`
	IsActive     bool                        `json:"is_active"`
	Translations map[string]HotelTranslation `json:"translations,omitempty"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
}

// HotelTranslation is one row of hotel_translations.
type HotelTranslation struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Address     string `json:"address"`
}

// Room is a bookable room type inside a hotel. Quantity is how many
// identical rooms exist, which bounds overlapping bookings.
type Room struct {
	ID            uint64                     `json:"id"`
	HotelID       uint64                     `json:"hotel_id"`
	RoomType      string                     `json:"room_type"`
	PricePerNight decimal.Decimal            `json:"price_per_night"`
	Capacity      uint32                     `json:"capacity"`
	Beds          uint32                     `json:"beds"`
	Quantity      uint32                     `json:"quantity"`
	Amenities     []string                   `json:"amenities"`
	IsActive      bool                       `json:"is_active"`
	Translations  map[string]TextTranslation `json:"translations,omitempty"`
	CreatedAt     time.Time                  `json:"created_at"`
	UpdatedAt     time.Time                  `json:"updated_at"`
}

// Car is a rental vehicle owned by a CAR_OWNER.
type Car struct {
	ID           uint64                     `json:"id"`
	OwnerID      uint64                     `json:"owner_id"`
	Brand        string                     `json:"brand"`
	Model        string                     `json:"model"`
	Year         uint16                     `json:"year"`
	Transmission string                     `json:"transmission"`
	FuelType     string                     `json:"fuel_type"`
	Seats        uint32                     `json:"seats"`
	PricePerDay  decimal.Decimal            `json:"price_per_day"`
	Location     string                     `json:"location"`
	ImageURL     string                     `json:"image_url"`
	IsActive     bool                       `json:"is_active"`
	Translations map[string]TextTranslation `json:"translations,omitempty"`
	CreatedAt    time.Time                  `json:"created_at"`
	UpdatedAt    time.Time                  `json:"updated_at"`
}

// TextTranslation is the name/description pair used by rooms and cars.
type TextTranslation struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// PackageKind names one of the per-person offering tables.
type PackageKind string

const (
	PackageTour        PackageKind = "tours"
	PackageUmrah       PackageKind = "umrah"
	PackageHealth      PackageKind = "health"
	PackageEducational PackageKind = "educational"
)

var packageServiceTypes = map[PackageKind]ServiceType{
	PackageTour:        ServiceTour,
	PackageUmrah:       ServiceUmrah,
	PackageHealth:      ServiceHealth,
	PackageEducational: ServiceEducational,
}

var packageTables = map[PackageKind]string{
	PackageTour:        "tours",
	PackageUmrah:       "umrah_packages",
	PackageHealth:      "health_services",
	PackageEducational: "educational_programs",
}

// ParsePackageKind accepts the URL segment used by the API.
func ParsePackageKind(s string) (PackageKind, bool) {
	k := PackageKind(s)
	_, ok := packageTables[k]
	return k, ok
}

// ServiceType maps the kind to the booking service type.
func (k PackageKind) ServiceType() ServiceType { return packageServiceTypes[k] }

// Table returns the backing table name. Translations live in
// "<table>_translations".
func (k PackageKind) Table() string { return packageTables[k] }

// Package is a per-person offering: a guided tour, an Umrah package, a
// health service or an educational program.
type Package struct {
	ID           uint64                       `json:"id"`
	Kind         PackageKind                  `json:"kind"`
	OwnerID      uint64                       `json:"owner_id"`
	Location     string                       `json:"location"`
	Price        decimal.Decimal              `json:"price"`
	DurationDays uint32                       `json:"duration_days"`
	Capacity     uint32                       `json:"capacity"`
	StartsOn     *time.Time                   `json:"starts_on,omitempty"`
	ImageURL     string                       `json:"image_url"`
	IsActive     bool                         `json:"is_active"`
	Translations map[string]TitledTranslation `json:"translations,omitempty"`
	CreatedAt    time.Time                    `json:"created_at"`
	UpdatedAt    time.Time                    `json:"updated_at"`
}

// TitledTranslation is the title/description pair used by packages and
// bundles.
type TitledTranslation struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Bundle combines a hotel, a car and a guided tour at a combined price.
type Bundle struct {
	ID              uint64                       `json:"id"`
	HotelID         *uint64                      `json:"hotel_id,omitempty"`
	CarID           *uint64                      `json:"car_id,omitempty"`
	TourID          *uint64                      `json:"tour_id,omitempty"`
	Price           decimal.Decimal              `json:"price"`
	DiscountPercent uint8                        `json:"discount_percent"`
	Capacity        uint32                       `json:"capacity"`
	ImageURL        string                       `json:"image_url"`
	IsActive        bool                         `json:"is_active"`
	Translations    map[string]TitledTranslation `json:"translations,omitempty"`
	CreatedAt       time.Time                    `json:"created_at"`
	UpdatedAt       time.Time                    `json:"updated_at"`
}
