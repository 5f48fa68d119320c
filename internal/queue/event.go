// Package queue defines the booking event payloads exchanged over RabbitMQ
// and the background consumer that records them.
package queue

import (
	"time"

	"github.com/iliyamo/travel-booking/internal/model"
)

// BookingQueue is the durable queue every booking event is routed to.
const BookingQueue = "booking.events"

// Event types carried in BookingEvent.Type.
const (
	EventBookingCreated       = "booking.created"
	EventBookingStatusChanged = "booking.status_changed"
	EventBookingPaymentUpdate = "booking.payment_updated"
)

// BookingEvent describes a change to a booking. It carries enough detail
// for downstream consumers to log or notify without querying the database.
type BookingEvent struct {
	Type          string              `json:"type"`
	BookingID     uint64              `json:"booking_id"`
	Reference     string              `json:"reference"`
	UserID        uint64              `json:"user_id"`
	ServiceType   model.ServiceType   `json:"service_type"`
	ServiceID     uint64              `json:"service_id"`
	FromStatus    model.BookingStatus `json:"from_status,omitempty"`
	Status        model.BookingStatus `json:"status"`
	PaymentStatus model.PaymentStatus `json:"payment_status"`
	TotalPrice    string              `json:"total_price"`
	Currency      string              `json:"currency"`
	ActorID       uint64              `json:"actor_id"`
	ActorRole     model.Role          `json:"actor_role"`
	Reason        string              `json:"reason,omitempty"`
	OccurredAt    time.Time           `json:"occurred_at"`
}

// NewBookingEvent snapshots b into an event of the given type.
func NewBookingEvent(typ string, b model.Booking, actorID uint64, actorRole model.Role) BookingEvent {
	return BookingEvent{
		Type:          typ,
		BookingID:     b.ID,
		Reference:     b.Reference,
		UserID:        b.UserID,
		ServiceType:   b.ServiceType,
		ServiceID:     b.ServiceID,
		Status:        b.Status,
		PaymentStatus: b.PaymentStatus,
		TotalPrice:    b.TotalPrice.StringFixed(2),
		Currency:      b.Currency,
		ActorID:       actorID,
		ActorRole:     actorRole,
		OccurredAt:    time.Now().UTC(),
	}
}
