package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/queue"
	"github.com/iliyamo/travel-booking/internal/repository"
	"github.com/iliyamo/travel-booking/internal/utils"
)

// EventPublisher delivers booking events. queue.Publisher implements it.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.BookingEvent) error
}

// Actor is the authenticated user performing an operation.
type Actor struct {
	UserID uint64
	Role   model.Role
}

// CreateBookingInput is what a customer submits from a booking form.
// EndDate may be zero for packages and bundles.
type CreateBookingInput struct {
	ServiceType model.ServiceType
	ServiceID   uint64
	RoomID      *uint64
	StartDate   time.Time
	EndDate     time.Time
	Guests      uint32
	Notes       string
}

// BookingService applies the booking rules on top of a BookingStore.
type BookingService struct {
	store BookingStore
	pub   EventPublisher
	now   func() time.Time
}

// NewBookingService builds the service. pub may be nil to disable events.
func NewBookingService(store BookingStore, pub EventPublisher) *BookingService {
	return &BookingService{store: store, pub: pub, now: time.Now}
}

func (s *BookingService) today() time.Time { return civilDate(s.now().UTC()) }

// Create validates, prices and stores a new PENDING booking.
func (s *BookingService) Create(ctx context.Context, userID uint64, in CreateBookingInput) (model.Booking, error) {
	if _, ok := model.ParseServiceType(string(in.ServiceType)); !ok {
		return model.Booking{}, fmt.Errorf("service_type %q: %w", in.ServiceType, ErrValidation)
	}
	if in.ServiceID == 0 {
		return model.Booking{}, fmt.Errorf("service_id required: %w", ErrValidation)
	}
	if in.Guests == 0 {
		return model.Booking{}, fmt.Errorf("guests must be at least 1: %w", ErrValidation)
	}
	if in.RoomID != nil && in.ServiceType != model.ServiceHotel {
		return model.Booking{}, fmt.Errorf("room_id only applies to hotels: %w", ErrValidation)
	}

	b := model.Booking{
		UserID:        userID,
		ServiceType:   in.ServiceType,
		ServiceID:     in.ServiceID,
		RoomID:        in.RoomID,
		Guests:        in.Guests,
		Currency:      model.DefaultCurrency,
		Status:        model.StatusPending,
		PaymentStatus: model.PaymentUnpaid,
		Notes:         strings.TrimSpace(in.Notes),
	}
	if !in.StartDate.IsZero() {
		b.StartDate = civilDate(in.StartDate)
	}
	if !in.EndDate.IsZero() {
		b.EndDate = civilDate(in.EndDate)
	}

	err := s.store.InTx(ctx, func(tx BookingTx) error {
		price, err := s.reserve(ctx, tx, &b)
		if err != nil {
			return err
		}
		b.TotalPrice = price
		return insertWithReference(ctx, tx, &b)
	})
	if err != nil {
		return model.Booking{}, err
	}
	b.CreatedAt = s.now().UTC()
	b.UpdatedAt = b.CreatedAt
	s.publish(ctx, queue.NewBookingEvent(queue.EventBookingCreated, b, userID, model.RoleCustomer))
	return b, nil
}

// reserve locks the target, completes and checks the dates, checks
// capacity and availability, and returns the price.
func (s *BookingService) reserve(ctx context.Context, tx BookingTx, b *model.Booking) (decimal.Decimal, error) {
	switch b.ServiceType {
	case model.ServiceHotel:
		if b.RoomID == nil {
			return decimal.Zero, fmt.Errorf("room_id required for hotel bookings: %w", ErrValidation)
		}
		room, err := tx.LockRoom(ctx, *b.RoomID)
		if err != nil {
			return decimal.Zero, err
		}
		if room.HotelID != b.ServiceID {
			return decimal.Zero, fmt.Errorf("room %d is not part of hotel %d: %w", room.ID, b.ServiceID, ErrValidation)
		}
		active, err := tx.HotelActive(ctx, room.HotelID)
		if err != nil {
			return decimal.Zero, err
		}
		if !active || !room.IsActive {
			return decimal.Zero, ErrInactive
		}
		if err := s.checkDates(b, true); err != nil {
			return decimal.Zero, err
		}
		if b.Guests > room.Capacity {
			return decimal.Zero, ErrCapacityExceeded
		}
		n, err := tx.CountOverlappingRoom(ctx, room.ID, b.StartDate, b.EndDate)
		if err != nil {
			return decimal.Zero, err
		}
		if n >= int(room.Quantity) {
			return decimal.Zero, ErrUnavailable
		}
		return HotelPrice(room.PricePerNight, b.StartDate, b.EndDate), nil

	case model.ServiceCar:
		car, err := tx.LockCar(ctx, b.ServiceID)
		if err != nil {
			return decimal.Zero, err
		}
		if !car.IsActive {
			return decimal.Zero, ErrInactive
		}
		if err := s.checkDates(b, false); err != nil {
			return decimal.Zero, err
		}
		if b.Guests > car.Seats {
			return decimal.Zero, ErrCapacityExceeded
		}
		n, err := tx.CountOverlappingCar(ctx, car.ID, b.StartDate, b.EndDate)
		if err != nil {
			return decimal.Zero, err
		}
		if n > 0 {
			return decimal.Zero, ErrUnavailable
		}
		return CarPrice(car.PricePerDay, b.StartDate, b.EndDate), nil

	case model.ServiceBundle:
		bundle, err := tx.LockBundle(ctx, b.ServiceID)
		if err != nil {
			return decimal.Zero, err
		}
		if !bundle.IsActive {
			return decimal.Zero, ErrInactive
		}
		if b.EndDate.IsZero() {
			b.EndDate = b.StartDate
		}
		if err := s.checkDates(b, false); err != nil {
			return decimal.Zero, err
		}
		if err := checkSeats(ctx, tx, b, bundle.Capacity); err != nil {
			return decimal.Zero, err
		}
		return BundlePrice(bundle.Price, b.Guests, bundle.DiscountPercent), nil
	}

	kind, ok := b.ServiceType.PackageKind()
	if !ok {
		return decimal.Zero, fmt.Errorf("service_type %q: %w", b.ServiceType, ErrValidation)
	}
	pkg, err := tx.LockPackage(ctx, kind, b.ServiceID)
	if err != nil {
		return decimal.Zero, err
	}
	if !pkg.IsActive {
		return decimal.Zero, ErrInactive
	}
	if pkg.StartsOn != nil {
		fixed := civilDate(*pkg.StartsOn)
		if b.StartDate.IsZero() {
			b.StartDate = fixed
		} else if !b.StartDate.Equal(fixed) {
			return decimal.Zero, fmt.Errorf("package starts on %s: %w", fixed.Format("2006-01-02"), ErrInvalidDates)
		}
	}
	if b.EndDate.IsZero() && !b.StartDate.IsZero() {
		days := int(pkg.DurationDays)
		if days < 1 {
			days = 1
		}
		b.EndDate = b.StartDate.AddDate(0, 0, days-1)
	}
	if err := s.checkDates(b, false); err != nil {
		return decimal.Zero, err
	}
	if err := checkSeats(ctx, tx, b, pkg.Capacity); err != nil {
		return decimal.Zero, err
	}
	return PerPersonPrice(pkg.Price, b.Guests), nil
}

// checkDates requires a start date no earlier than today and an end date
// not before it. Hotel stays need at least one night.
func (s *BookingService) checkDates(b *model.Booking, overnight bool) error {
	if b.StartDate.IsZero() || b.EndDate.IsZero() {
		return fmt.Errorf("start_date and end_date required: %w", ErrInvalidDates)
	}
	if b.StartDate.Before(s.today()) {
		return fmt.Errorf("start_date in the past: %w", ErrInvalidDates)
	}
	if b.EndDate.Before(b.StartDate) {
		return fmt.Errorf("end_date before start_date: %w", ErrInvalidDates)
	}
	if overnight && !b.EndDate.After(b.StartDate) {
		return fmt.Errorf("check-out must be after check-in: %w", ErrInvalidDates)
	}
	return nil
}

// checkSeats enforces per-person capacity across active bookings.
func checkSeats(ctx context.Context, tx BookingTx, b *model.Booking, capacity uint32) error {
	if b.Guests > capacity {
		return ErrCapacityExceeded
	}
	taken, err := tx.SumActiveGuests(ctx, b.ServiceType, b.ServiceID)
	if err != nil {
		return err
	}
	if taken+int(b.Guests) > int(capacity) {
		return ErrUnavailable
	}
	return nil
}

// insertWithReference retries on the unlikely reference collision.
func insertWithReference(ctx context.Context, tx BookingTx, b *model.Booking) error {
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		b.Reference = utils.NewBookingReference()
		if err = tx.Insert(ctx, b); !errors.Is(err, repository.ErrConflict) {
			return err
		}
	}
	return err
}

// relation works out how actor relates to b. A zero relation means the
// booking is not visible to the actor.
func relation(ctx context.Context, owner func(context.Context, model.ServiceType, uint64) (uint64, error), actor Actor, b model.Booking) (Relation, error) {
	var rel Relation
	if actor.Role == model.RoleAdmin {
		rel |= RelAdmin
	}
	if b.UserID == actor.UserID {
		rel |= RelCustomer
	}
	if st, ok := actor.Role.OwnedServiceType(); ok && st == b.ServiceType {
		ownerID, err := owner(ctx, b.ServiceType, b.ServiceID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return 0, err
		}
		if err == nil && ownerID == actor.UserID {
			rel |= RelServiceOwner
		}
	}
	return rel, nil
}

// Transition moves a booking to target on behalf of actor.
func (s *BookingService) Transition(ctx context.Context, actor Actor, bookingID uint64, target model.BookingStatus, reason string) (model.Booking, error) {
	return s.apply(ctx, actor, bookingID, reason, func(model.BookingStatus) (model.BookingStatus, error) {
		return target, nil
	})
}

// Cancel is the customer's cancel button: a PENDING booking is cancelled
// outright, a CONFIRMED one gets a cancellation request.
func (s *BookingService) Cancel(ctx context.Context, actor Actor, bookingID uint64, reason string) (model.Booking, error) {
	return s.apply(ctx, actor, bookingID, reason, func(current model.BookingStatus) (model.BookingStatus, error) {
		switch current {
		case model.StatusPending:
			return model.StatusCancelled, nil
		case model.StatusConfirmed:
			return model.StatusCancellationRequested, nil
		}
		return "", fmt.Errorf("cannot cancel a %s booking: %w", current, ErrInvalidTransition)
	})
}

func (s *BookingService) apply(ctx context.Context, actor Actor, bookingID uint64, reason string, pick func(model.BookingStatus) (model.BookingStatus, error)) (model.Booking, error) {
	var (
		b    model.Booking
		from model.BookingStatus
		rel  Relation
	)
	reason = strings.TrimSpace(reason)
	err := s.store.InTx(ctx, func(tx BookingTx) error {
		var err error
		b, err = tx.LockBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		rel, err = relation(ctx, tx.ServiceOwner, actor, b)
		if err != nil {
			return err
		}
		if rel == 0 {
			return ErrNotFound
		}
		target, err := pick(b.Status)
		if err != nil {
			return err
		}
		if err := CheckTransition(b.Status, target, rel); err != nil {
			return err
		}
		if target == model.StatusCancellationRequested && !s.today().Before(civilDate(b.StartDate)) {
			return fmt.Errorf("cancellation requests close on the start date: %w", ErrInvalidTransition)
		}
		if target == model.StatusCompleted && b.PaymentStatus != model.PaymentPaid && !rel.Has(RelAdmin) {
			return fmt.Errorf("booking must be paid before completion: %w", ErrInvalidTransition)
		}

		from = b.Status
		payment := paymentAfter(target, b.PaymentStatus)
		if err := tx.UpdateStatus(ctx, b.ID, target, payment, reason); err != nil {
			return err
		}
		b.Status, b.PaymentStatus = target, payment
		if reason != "" {
			b.CancellationReason = reason
		}
		b.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return model.Booking{}, err
	}
	ev := queue.NewBookingEvent(queue.EventBookingStatusChanged, b, actor.UserID, actor.Role)
	ev.FromStatus = from
	ev.Reason = reason
	s.publish(ctx, ev)
	return b, nil
}

// UpdatePayment sets the payment status. Only admins record payments.
func (s *BookingService) UpdatePayment(ctx context.Context, actor Actor, bookingID uint64, status model.PaymentStatus, ref *string) (model.Booking, error) {
	if actor.Role != model.RoleAdmin {
		return model.Booking{}, ErrForbidden
	}
	var b model.Booking
	err := s.store.InTx(ctx, func(tx BookingTx) error {
		var err error
		b, err = tx.LockBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if err := CheckPayment(b.Status, b.PaymentStatus, status); err != nil {
			return err
		}
		if err := tx.UpdatePayment(ctx, b.ID, status, ref); err != nil {
			return err
		}
		b.PaymentStatus = status
		if ref != nil {
			b.PaymentRef = ref
		}
		b.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return model.Booking{}, err
	}
	s.publish(ctx, queue.NewBookingEvent(queue.EventBookingPaymentUpdate, b, actor.UserID, actor.Role))
	return b, nil
}

// GetForActor returns a booking the actor may see: their own, one on a
// service they own, or any booking for admins.
func (s *BookingService) GetForActor(ctx context.Context, actor Actor, id uint64) (model.Booking, Relation, error) {
	b, err := s.store.Get(ctx, id)
	if err != nil {
		return model.Booking{}, 0, err
	}
	rel, err := relation(ctx, s.store.ServiceOwner, actor, b)
	if err != nil {
		return model.Booking{}, 0, err
	}
	if rel == 0 {
		return model.Booking{}, 0, ErrNotFound
	}
	return b, rel, nil
}

// ListForUser lists the caller's own bookings.
func (s *BookingService) ListForUser(ctx context.Context, userID uint64, f repository.BookingFilter) ([]model.Booking, int, error) {
	f.UserID = userID
	f.OwnerID, f.OwnerType = 0, ""
	return s.store.List(ctx, f)
}

// ListForOwner lists bookings on services the actor owns. Admins see all.
func (s *BookingService) ListForOwner(ctx context.Context, actor Actor, f repository.BookingFilter) ([]model.Booking, int, error) {
	if actor.Role == model.RoleAdmin {
		return s.ListAll(ctx, f)
	}
	st, ok := actor.Role.OwnedServiceType()
	if !ok {
		return nil, 0, ErrForbidden
	}
	f.UserID = 0
	f.OwnerID, f.OwnerType = actor.UserID, st
	return s.store.List(ctx, f)
}

// ListAll is the admin listing with optional filters.
func (s *BookingService) ListAll(ctx context.Context, f repository.BookingFilter) ([]model.Booking, int, error) {
	f.OwnerID, f.OwnerType = 0, ""
	return s.store.List(ctx, f)
}

// publish sends ev without letting a broker problem fail the request.
func (s *BookingService) publish(ctx context.Context, ev queue.BookingEvent) {
	if s.pub == nil {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := s.pub.Publish(pctx, ev); err != nil {
		log.Printf("booking %d: publish %s failed: %v", ev.BookingID, ev.Type, err)
	}
}
