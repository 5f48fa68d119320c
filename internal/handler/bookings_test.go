package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	mw "github.com/iliyamo/travel-booking/internal/middleware"
	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/repository"
	"github.com/iliyamo/travel-booking/internal/service"
)

type fakeBookings struct {
	err     error
	booking model.Booking
	rel     service.Relation

	gotUser   uint64
	gotInput  service.CreateBookingInput
	gotActor  service.Actor
	gotTarget model.BookingStatus
	gotPay    model.PaymentStatus
	gotFilter repository.BookingFilter
}

func (f *fakeBookings) Create(_ context.Context, userID uint64, in service.CreateBookingInput) (model.Booking, error) {
	f.gotUser, f.gotInput = userID, in
	return f.booking, f.err
}

func (f *fakeBookings) Transition(_ context.Context, a service.Actor, _ uint64, target model.BookingStatus, _ string) (model.Booking, error) {
	f.gotActor, f.gotTarget = a, target
	return f.booking, f.err
}

func (f *fakeBookings) Cancel(_ context.Context, a service.Actor, _ uint64, _ string) (model.Booking, error) {
	f.gotActor = a
	return f.booking, f.err
}

func (f *fakeBookings) UpdatePayment(_ context.Context, a service.Actor, _ uint64, ps model.PaymentStatus, _ *string) (model.Booking, error) {
	f.gotActor, f.gotPay = a, ps
	return f.booking, f.err
}

func (f *fakeBookings) GetForActor(_ context.Context, a service.Actor, _ uint64) (model.Booking, service.Relation, error) {
	f.gotActor = a
	return f.booking, f.rel, f.err
}

func (f *fakeBookings) ListForUser(_ context.Context, userID uint64, fl repository.BookingFilter) ([]model.Booking, int, error) {
	f.gotUser, f.gotFilter = userID, fl
	return []model.Booking{f.booking}, 1, f.err
}

func (f *fakeBookings) ListForOwner(_ context.Context, a service.Actor, fl repository.BookingFilter) ([]model.Booking, int, error) {
	f.gotActor, f.gotFilter = a, fl
	return nil, 0, f.err
}

func (f *fakeBookings) ListAll(_ context.Context, fl repository.BookingFilter) ([]model.Booking, int, error) {
	f.gotFilter = fl
	return nil, 0, f.err
}

func newBookingEcho(f *fakeBookings) *echo.Echo {
	h := &BookingHandler{Bookings: f}
	e := newEcho()
	g := e.Group("", mw.JWTAuth(testSecret))
	g.POST("/bookings", h.Create)
	g.GET("/my-bookings", h.MyBookings)
	g.GET("/owner/bookings", h.OwnerBookings)
	g.GET("/bookings/:id", h.Get)
	g.POST("/bookings/:id/cancel", h.Cancel)
	g.PATCH("/bookings/:id/status", h.UpdateStatus)
	g.PATCH("/bookings/:id/payment", h.UpdatePayment)
	return e
}

func sampleBooking(status model.BookingStatus) model.Booking {
	return model.Booking{
		ID: 5, Reference: "BK-0000ABCD", UserID: 7, ServiceType: model.ServiceHotel, ServiceID: 3,
		StartDate: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), EndDate: time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC),
		Guests: 2, TotalPrice: decimal.RequireFromString("300.00"), Currency: model.DefaultCurrency,
		Status: status, PaymentStatus: model.PaymentUnpaid,
	}
}

func TestCreateBookingParsesInput(t *testing.T) {
	f := &fakeBookings{booking: sampleBooking(model.StatusPending)}
	e := newBookingEcho(f)

	body := `{"service_type":"hotel","service_id":3,"room_id":9,"start_date":"2026-07-01","end_date":"2026-07-04","guests":2,"notes":"late arrival"}`
	rec := do(e, http.MethodPost, "/bookings", body, bearerFor(t, 7, model.RoleCustomer))
	wantStatus(t, rec, http.StatusCreated)

	in := f.gotInput
	if f.gotUser != 7 || in.ServiceType != model.ServiceHotel || in.ServiceID != 3 {
		t.Fatalf("input = %+v user=%d", in, f.gotUser)
	}
	if in.RoomID == nil || *in.RoomID != 9 {
		t.Fatalf("room = %v", in.RoomID)
	}
	if !in.StartDate.Equal(time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)) || !in.EndDate.Equal(time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("dates = %s..%s", in.StartDate, in.EndDate)
	}

	var got bookingView
	decode(t, rec, &got)
	if got.Reference != "BK-0000ABCD" || len(got.Actions) != 1 || got.Actions[0] != model.StatusCancelled {
		t.Fatalf("view = %+v", got)
	}
}

func TestCreateBookingOptionalEndDate(t *testing.T) {
	f := &fakeBookings{booking: sampleBooking(model.StatusPending)}
	e := newBookingEcho(f)

	body := `{"service_type":"UMRAH","service_id":1,"start_date":"2026-09-01","guests":3}`
	wantStatus(t, do(e, http.MethodPost, "/bookings", body, bearerFor(t, 7, model.RoleCustomer)), http.StatusCreated)
	if !f.gotInput.EndDate.IsZero() || f.gotInput.ServiceType != model.ServiceUmrah {
		t.Fatalf("input = %+v", f.gotInput)
	}
}

func TestCreateBookingWithoutStartDate(t *testing.T) {
	f := &fakeBookings{booking: sampleBooking(model.StatusPending)}
	e := newBookingEcho(f)
	auth := bearerFor(t, 7, model.RoleCustomer)

	body := `{"service_type":"TOUR","service_id":4,"guests":2}`
	wantStatus(t, do(e, http.MethodPost, "/bookings", body, auth), http.StatusCreated)
	if !f.gotInput.StartDate.IsZero() || f.gotInput.ServiceType != model.ServiceTour {
		t.Fatalf("input = %+v", f.gotInput)
	}

	// The service decides whether a start date can be derived.
	f.err = service.ErrInvalidDates
	body = `{"service_type":"CAR","service_id":3,"guests":1}`
	wantStatus(t, do(e, http.MethodPost, "/bookings", body, auth), http.StatusBadRequest)
}

func TestCreateBookingValidation(t *testing.T) {
	e := newBookingEcho(&fakeBookings{})
	auth := bearerFor(t, 7, model.RoleCustomer)

	for _, body := range []string{
		`{"service_type":"HOTEL","service_id":3,"start_date":"2026-07-01"}`,
		`{"service_type":"HOTEL","service_id":3,"start_date":"2026-13-01","guests":2}`,
		`{"service_type":"SPACESHIP","service_id":3,"start_date":"2026-07-01","guests":2}`,
		`{"service_type":"CAR","service_id":3,"start_date":"2026-07-01","guests":0}`,
		`not json`,
	} {
		if rec := do(e, http.MethodPost, "/bookings", body, auth); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status %d", body, rec.Code)
		}
	}
	wantStatus(t, do(e, http.MethodPost, "/bookings", `{}`, ""), http.StatusUnauthorized)
}

func TestCreateBookingMapsServiceErrors(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{service.ErrUnavailable, http.StatusConflict},
		{service.ErrInactive, http.StatusConflict},
		{service.ErrCapacityExceeded, http.StatusBadRequest},
		{service.ErrInvalidDates, http.StatusBadRequest},
		{service.ErrNotFound, http.StatusNotFound},
		{errors.New("db down"), http.StatusInternalServerError},
	}
	body := `{"service_type":"CAR","service_id":3,"start_date":"2026-07-01","end_date":"2026-07-02","guests":1}`
	for _, tc := range cases {
		e := newBookingEcho(&fakeBookings{err: tc.err})
		rec := do(e, http.MethodPost, "/bookings", body, bearerFor(t, 7, model.RoleCustomer))
		if rec.Code != tc.want {
			t.Errorf("%v: status %d, want %d", tc.err, rec.Code, tc.want)
		}
	}
}

func TestBookingListFilters(t *testing.T) {
	f := &fakeBookings{booking: sampleBooking(model.StatusConfirmed)}
	e := newBookingEcho(f)
	auth := bearerFor(t, 7, model.RoleCustomer)

	wantStatus(t, do(e, http.MethodGet, "/my-bookings?status=lost", "", auth), http.StatusBadRequest)
	wantStatus(t, do(e, http.MethodGet, "/my-bookings?service_type=boat", "", auth), http.StatusBadRequest)

	rec := do(e, http.MethodGet, "/my-bookings?status=confirmed&payment_status=unpaid&page=2&page_size=5", "", auth)
	wantStatus(t, rec, http.StatusOK)
	if f.gotUser != 7 || f.gotFilter.Status != model.StatusConfirmed || f.gotFilter.PaymentStatus != model.PaymentUnpaid {
		t.Fatalf("filter = %+v", f.gotFilter)
	}
	if f.gotFilter.Page.Page != 2 || f.gotFilter.Page.PageSize != 5 {
		t.Fatalf("page = %+v", f.gotFilter.Page)
	}

	rec = do(e, http.MethodGet, "/owner/bookings", "", bearerFor(t, 11, model.RoleHotelOwner))
	wantStatus(t, rec, http.StatusOK)
	if f.gotActor.UserID != 11 || f.gotActor.Role != model.RoleHotelOwner {
		t.Fatalf("actor = %+v", f.gotActor)
	}
	if body := rec.Body.String(); !strings.Contains(body, `"items":[]`) {
		t.Fatalf("empty list should render []: %s", body)
	}
}

func TestGetBookingShowsActions(t *testing.T) {
	f := &fakeBookings{booking: sampleBooking(model.StatusConfirmed), rel: service.RelServiceOwner}
	e := newBookingEcho(f)

	rec := do(e, http.MethodGet, "/bookings/5", "", bearerFor(t, 11, model.RoleHotelOwner))
	wantStatus(t, rec, http.StatusOK)
	var got bookingView
	decode(t, rec, &got)
	want := service.AllowedTargets(model.StatusConfirmed, service.RelServiceOwner)
	if len(got.Actions) != len(want) {
		t.Fatalf("actions = %v, want %v", got.Actions, want)
	}
	for i := range want {
		if got.Actions[i] != want[i] {
			t.Fatalf("actions = %v, want %v", got.Actions, want)
		}
	}

	wantStatus(t, do(e, http.MethodGet, "/bookings/abc", "", bearerFor(t, 11, model.RoleHotelOwner)), http.StatusBadRequest)
}

func TestStatusAndPaymentUpdates(t *testing.T) {
	f := &fakeBookings{booking: sampleBooking(model.StatusConfirmed)}
	e := newBookingEcho(f)
	admin := bearerFor(t, 1, model.RoleAdmin)

	wantStatus(t, do(e, http.MethodPatch, "/bookings/5/status", `{"status":"confirmed"}`, admin), http.StatusOK)
	if f.gotTarget != model.StatusConfirmed || f.gotActor.Role != model.RoleAdmin {
		t.Fatalf("target=%s actor=%+v", f.gotTarget, f.gotActor)
	}
	wantStatus(t, do(e, http.MethodPatch, "/bookings/5/status", `{"status":"teleported"}`, admin), http.StatusBadRequest)

	wantStatus(t, do(e, http.MethodPatch, "/bookings/5/payment", `{"payment_status":"paid","payment_ref":"tx-1"}`, admin), http.StatusOK)
	if f.gotPay != model.PaymentPaid {
		t.Fatalf("payment = %s", f.gotPay)
	}

	f.err = service.ErrInvalidTransition
	wantStatus(t, do(e, http.MethodPatch, "/bookings/5/status", `{"status":"completed"}`, admin), http.StatusConflict)
	f.err = service.ErrForbidden
	wantStatus(t, do(e, http.MethodPost, "/bookings/5/cancel", "", bearerFor(t, 8, model.RoleCustomer)), http.StatusForbidden)
}
