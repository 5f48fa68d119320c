package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/repository"
	"github.com/iliyamo/travel-booking/internal/service"
)

// bookingService is the subset of *service.BookingService the handlers
// use.
type bookingService interface {
	Create(ctx context.Context, userID uint64, in service.CreateBookingInput) (model.Booking, error)
	Transition(ctx context.Context, actor service.Actor, id uint64, target model.BookingStatus, reason string) (model.Booking, error)
	Cancel(ctx context.Context, actor service.Actor, id uint64, reason string) (model.Booking, error)
	UpdatePayment(ctx context.Context, actor service.Actor, id uint64, status model.PaymentStatus, ref *string) (model.Booking, error)
	GetForActor(ctx context.Context, actor service.Actor, id uint64) (model.Booking, service.Relation, error)
	ListForUser(ctx context.Context, userID uint64, f repository.BookingFilter) ([]model.Booking, int, error)
	ListForOwner(ctx context.Context, actor service.Actor, f repository.BookingFilter) ([]model.Booking, int, error)
	ListAll(ctx context.Context, f repository.BookingFilter) ([]model.Booking, int, error)
}

// BookingHandler exposes the booking lifecycle to customers, owners and
// admins.
type BookingHandler struct {
	Bookings bookingService
}

func NewBookingHandler(s *service.BookingService) *BookingHandler {
	return &BookingHandler{Bookings: s}
}

const dateLayout = "2006-01-02"

type createBookingReq struct {
	ServiceType string  `json:"service_type" validate:"required,service_type"`
	ServiceID   uint64  `json:"service_id" validate:"required"`
	RoomID      *uint64 `json:"room_id" validate:"omitempty,gt=0"`
	StartDate   string  `json:"start_date" validate:"omitempty,datetime=2006-01-02"` // packages with a fixed start may omit it
	EndDate     string  `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Guests      uint32  `json:"guests" validate:"required,min=1,max=50"`
	Notes       string  `json:"notes" validate:"max=1000"`
}

type statusReq struct {
	Status string `json:"status" validate:"required,booking_status"`
	Reason string `json:"reason" validate:"max=500"`
}

type cancelReq struct {
	Reason string `json:"reason" validate:"max=500"`
}

type paymentReq struct {
	PaymentStatus string  `json:"payment_status" validate:"required,payment_status"`
	PaymentRef    *string `json:"payment_ref" validate:"omitempty,max=128"`
}

// bookingView adds the transitions the viewer may trigger next.
type bookingView struct {
	model.Booking
	Actions []model.BookingStatus `json:"actions"`
}

func viewOf(b model.Booking, rel service.Relation) bookingView {
	return bookingView{Booking: b, Actions: service.AllowedTargets(b.Status, rel)}
}

// Create books a service for the authenticated customer.
func (h *BookingHandler) Create(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	var req createBookingReq
	if err := bindValid(c, &req); err != nil {
		return fail(c, err)
	}
	st, _ := model.ParseServiceType(req.ServiceType)
	in := service.CreateBookingInput{
		ServiceType: st,
		ServiceID:   req.ServiceID,
		RoomID:      req.RoomID,
		Guests:      req.Guests,
		Notes:       req.Notes,
	}
	if req.StartDate != "" {
		in.StartDate, _ = time.Parse(dateLayout, req.StartDate)
	}
	if req.EndDate != "" {
		in.EndDate, _ = time.Parse(dateLayout, req.EndDate)
	}

	ctx, cancel := withTimeout(c)
	defer cancel()
	b, err := h.Bookings.Create(ctx, actor.UserID, in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, viewOf(b, service.RelCustomer))
}

// bookingFilter reads the listing query parameters.
func bookingFilter(c echo.Context) (repository.BookingFilter, error) {
	f := repository.BookingFilter{Page: pageFrom(c)}
	if s := c.QueryParam("status"); s != "" {
		st, ok := model.ParseBookingStatus(s)
		if !ok {
			return f, fmt.Errorf("invalid status: %w", errValidation)
		}
		f.Status = st
	}
	if s := c.QueryParam("service_type"); s != "" {
		st, ok := model.ParseServiceType(s)
		if !ok {
			return f, fmt.Errorf("invalid service_type: %w", errValidation)
		}
		f.ServiceType = st
	}
	if s := c.QueryParam("payment_status"); s != "" {
		ps, ok := model.ParsePaymentStatus(s)
		if !ok {
			return f, fmt.Errorf("invalid payment_status: %w", errValidation)
		}
		f.PaymentStatus = ps
	}
	return f, nil
}

func (h *BookingHandler) list(c echo.Context, fn func(context.Context, service.Actor, repository.BookingFilter) ([]model.Booking, int, error)) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	f, err := bookingFilter(c)
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	items, total, err := fn(ctx, actor, f)
	if err != nil {
		return fail(c, err)
	}
	return paged(c, items, f.Page, total)
}

// MyBookings lists the caller's bookings.
func (h *BookingHandler) MyBookings(c echo.Context) error {
	return h.list(c, func(ctx context.Context, a service.Actor, f repository.BookingFilter) ([]model.Booking, int, error) {
		return h.Bookings.ListForUser(ctx, a.UserID, f)
	})
}

// OwnerBookings lists bookings on services the caller owns.
func (h *BookingHandler) OwnerBookings(c echo.Context) error {
	return h.list(c, h.Bookings.ListForOwner)
}

// AdminBookings lists every booking.
func (h *BookingHandler) AdminBookings(c echo.Context) error {
	return h.list(c, func(ctx context.Context, _ service.Actor, f repository.BookingFilter) ([]model.Booking, int, error) {
		return h.Bookings.ListAll(ctx, f)
	})
}

// Get returns a booking visible to the caller. Bookings the caller has no
// relation to are reported as 404.
func (h *BookingHandler) Get(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	b, rel, err := h.Bookings.GetForActor(ctx, actor, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, viewOf(b, rel))
}

// Cancel cancels a PENDING booking or requests cancellation of a CONFIRMED
// one.
func (h *BookingHandler) Cancel(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req cancelReq
	if c.Request().ContentLength > 0 {
		if err := bindValid(c, &req); err != nil {
			return fail(c, err)
		}
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	b, err := h.Bookings.Cancel(ctx, actor, id, req.Reason)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, viewOf(b, service.RelCustomer))
}

// UpdateStatus moves a booking along the state machine. Owners and admins
// share this handler; the service checks the caller's relation.
func (h *BookingHandler) UpdateStatus(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req statusReq
	if err := bindValid(c, &req); err != nil {
		return fail(c, err)
	}
	target, _ := model.ParseBookingStatus(req.Status)

	ctx, cancel := withTimeout(c)
	defer cancel()
	b, err := h.Bookings.Transition(ctx, actor, id, target, req.Reason)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// UpdatePayment records a payment status change. Admin only.
func (h *BookingHandler) UpdatePayment(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req paymentReq
	if err := bindValid(c, &req); err != nil {
		return fail(c, err)
	}
	ps, _ := model.ParsePaymentStatus(req.PaymentStatus)

	ctx, cancel := withTimeout(c)
	defer cancel()
	b, err := h.Bookings.UpdatePayment(ctx, actor, id, ps, req.PaymentRef)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, b)
}
