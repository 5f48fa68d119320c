package service

import (
	"fmt"

	"github.com/iliyamo/travel-booking/internal/model"
)

// Relation is how an actor relates to a booking. An actor can hold several
// relations at once, e.g. a hotel owner who booked their own room.
type Relation uint8

const (
	RelCustomer     Relation = 1 << iota // the user who made the booking
	RelServiceOwner                      // owner of the booked hotel, car or tour
	RelAdmin
)

// Has reports whether r includes every bit of other.
func (r Relation) Has(other Relation) bool { return r&other == other && other != 0 }

type edge struct{ from, to model.BookingStatus }

// transitions lists every legal edge and the relations allowed to take it.
var transitions = map[edge]Relation{
	{model.StatusPending, model.StatusConfirmed}:               RelServiceOwner | RelAdmin,
	{model.StatusPending, model.StatusCancelled}:               RelCustomer | RelServiceOwner | RelAdmin,
	{model.StatusConfirmed, model.StatusCancellationRequested}: RelCustomer,
	{model.StatusConfirmed, model.StatusCompleted}:             RelServiceOwner | RelAdmin,
	{model.StatusConfirmed, model.StatusCancelled}:             RelAdmin,
	{model.StatusCancellationRequested, model.StatusCancelled}: RelServiceOwner | RelAdmin,
	{model.StatusCancellationRequested, model.StatusConfirmed}: RelServiceOwner | RelAdmin,
}

// CheckTransition validates from→to for an actor holding rel. It returns
// ErrInvalidTransition for edges outside the table and ErrForbidden when
// the edge exists but none of the actor's relations may take it.
func CheckTransition(from, to model.BookingStatus, rel Relation) error {
	allowed, ok := transitions[edge{from, to}]
	if !ok {
		return fmt.Errorf("%s -> %s: %w", from, to, ErrInvalidTransition)
	}
	if allowed&rel == 0 {
		return fmt.Errorf("%s -> %s: %w", from, to, ErrForbidden)
	}
	return nil
}

// AllowedTargets lists the statuses rel may move a booking to from its
// current status, in lifecycle order. The UI uses it to render actions.
func AllowedTargets(from model.BookingStatus, rel Relation) []model.BookingStatus {
	out := []model.BookingStatus{}
	for _, to := range model.AllBookingStatuses {
		if allowed, ok := transitions[edge{from, to}]; ok && allowed&rel != 0 {
			out = append(out, to)
		}
	}
	return out
}

// paymentAfter returns the payment status a booking carries after moving
// to the given status. Cancelling a paid booking refunds it.
func paymentAfter(to model.BookingStatus, current model.PaymentStatus) model.PaymentStatus {
	if to == model.StatusCancelled && current == model.PaymentPaid {
		return model.PaymentRefunded
	}
	return current
}

var paymentEdges = map[model.PaymentStatus][]model.PaymentStatus{
	model.PaymentUnpaid: {model.PaymentPaid, model.PaymentFailed},
	model.PaymentFailed: {model.PaymentPaid, model.PaymentUnpaid},
	model.PaymentPaid:   {model.PaymentRefunded},
}

// CheckPayment validates a payment status change on a booking currently in
// status. A cancelled booking cannot be marked PAID.
func CheckPayment(status model.BookingStatus, from, to model.PaymentStatus) error {
	ok := false
	for _, next := range paymentEdges[from] {
		if next == to {
			ok = true
			break
		}
	}
	if !ok {
		return fmt.Errorf("payment %s -> %s: %w", from, to, ErrInvalidTransition)
	}
	if to == model.PaymentPaid && status == model.StatusCancelled {
		return fmt.Errorf("payment on cancelled booking: %w", ErrInvalidTransition)
	}
	return nil
}
