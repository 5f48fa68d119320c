package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ServiceType tags which entity a booking polymorphically references.
type ServiceType string

const (
	ServiceHotel       ServiceType = "HOTEL"
	ServiceCar         ServiceType = "CAR"
	ServiceTour        ServiceType = "TOUR"
	ServiceHealth      ServiceType = "HEALTH"
	ServiceEducational ServiceType = "EDUCATIONAL"
	ServiceUmrah       ServiceType = "UMRAH"
	ServiceBundle      ServiceType = "BUNDLE"
)

// AllServiceTypes lists every bookable service type.
var AllServiceTypes = []ServiceType{
	ServiceHotel, ServiceCar, ServiceTour, ServiceHealth,
	ServiceEducational, ServiceUmrah, ServiceBundle,
}

// ParseServiceType normalizes s and reports whether it is known.
func ParseServiceType(s string) (ServiceType, bool) {
	st := ServiceType(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range AllServiceTypes {
		if st == known {
			return st, true
		}
	}
	return "", false
}

// PackageKind returns the package table family for per-person offerings.
func (st ServiceType) PackageKind() (PackageKind, bool) {
	for k, t := range packageServiceTypes {
		if t == st {
			return k, true
		}
	}
	return "", false
}

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	StatusPending               BookingStatus = "PENDING"
	StatusConfirmed             BookingStatus = "CONFIRMED"
	StatusCancellationRequested BookingStatus = "CANCELLATION_REQUESTED"
	StatusCancelled             BookingStatus = "CANCELLED"
	StatusCompleted             BookingStatus = "COMPLETED"
)

// AllBookingStatuses lists the statuses in lifecycle order.
var AllBookingStatuses = []BookingStatus{
	StatusPending, StatusConfirmed, StatusCancellationRequested, StatusCancelled, StatusCompleted,
}

// ParseBookingStatus normalizes s and reports whether it is known.
func ParseBookingStatus(s string) (BookingStatus, bool) {
	st := BookingStatus(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range AllBookingStatuses {
		if st == known {
			return st, true
		}
	}
	return "", false
}

// Active reports whether the booking still holds inventory.
func (s BookingStatus) Active() bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusCancellationRequested
}

// Terminal reports whether no further transition is possible.
func (s BookingStatus) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// ActiveBookingStatuses are the statuses that count against availability.
var ActiveBookingStatuses = []BookingStatus{StatusPending, StatusConfirmed, StatusCancellationRequested}

// PaymentStatus tracks the money side of a booking.
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "UNPAID"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentRefunded PaymentStatus = "REFUNDED"
	PaymentFailed   PaymentStatus = "FAILED"
)

// ParsePaymentStatus normalizes s and reports whether it is known.
func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	ps := PaymentStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch ps {
	case PaymentUnpaid, PaymentPaid, PaymentRefunded, PaymentFailed:
		return ps, true
	}
	return "", false
}

// Booking mirrors a row of the bookings table.
type Booking struct {
	ID                 uint64          `json:"id"`
	Reference          string          `json:"reference"`
	UserID             uint64          `json:"user_id"`
	ServiceType        ServiceType     `json:"service_type"`
	ServiceID          uint64          `json:"service_id"`
	RoomID             *uint64         `json:"room_id,omitempty"`
	StartDate          time.Time       `json:"start_date"`
	EndDate            time.Time       `json:"end_date"`
	Guests             uint32          `json:"guests"`
	TotalPrice         decimal.Decimal `json:"total_price"`
	Currency           string          `json:"currency"`
	Status             BookingStatus   `json:"status"`
	PaymentStatus      PaymentStatus   `json:"payment_status"`
	PaymentRef         *string         `json:"payment_ref,omitempty"`
	Notes              string          `json:"notes"`
	CancellationReason string          `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// DefaultCurrency is used for every price in the catalog.
const DefaultCurrency = "USD"
