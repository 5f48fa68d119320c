package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/travel-booking/internal/database"
	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/repository"
)

// BookingStore is the persistence BookingService needs. Writes go through
// InTx so availability checks and the insert share one transaction.
type BookingStore interface {
	InTx(ctx context.Context, fn func(BookingTx) error) error
	Get(ctx context.Context, id uint64) (model.Booking, error)
	List(ctx context.Context, f repository.BookingFilter) ([]model.Booking, int, error)
	ServiceOwner(ctx context.Context, st model.ServiceType, serviceID uint64) (uint64, error)
}

// BookingTx is the transactional view of the store. Lock* methods take row
// locks held until the transaction ends.
type BookingTx interface {
	LockRoom(ctx context.Context, id uint64) (model.Room, error)
	HotelActive(ctx context.Context, hotelID uint64) (bool, error)
	LockCar(ctx context.Context, id uint64) (model.Car, error)
	LockPackage(ctx context.Context, kind model.PackageKind, id uint64) (model.Package, error)
	LockBundle(ctx context.Context, id uint64) (model.Bundle, error)
	CountOverlappingRoom(ctx context.Context, roomID uint64, start, end time.Time) (int, error)
	CountOverlappingCar(ctx context.Context, carID uint64, start, end time.Time) (int, error)
	SumActiveGuests(ctx context.Context, st model.ServiceType, serviceID uint64) (int, error)
	Insert(ctx context.Context, b *model.Booking) error
	LockBooking(ctx context.Context, id uint64) (model.Booking, error)
	ServiceOwner(ctx context.Context, st model.ServiceType, serviceID uint64) (uint64, error)
	UpdateStatus(ctx context.Context, id uint64, status model.BookingStatus, payment model.PaymentStatus, reason string) error
	UpdatePayment(ctx context.Context, id uint64, payment model.PaymentStatus, ref *string) error
}

// SQLBookingStore implements BookingStore on the MySQL repositories.
type SQLBookingStore struct {
	DB       *sql.DB
	Bookings *repository.BookingRepo
	Hotels   *repository.HotelRepo
	Rooms    *repository.RoomRepo
	Cars     *repository.CarRepo
	Packages *repository.PackageRepo
	Bundles  *repository.BundleRepo
}

// NewSQLBookingStore wires the repositories over one pool.
func NewSQLBookingStore(db *sql.DB) *SQLBookingStore {
	return &SQLBookingStore{
		DB:       db,
		Bookings: repository.NewBookingRepo(db),
		Hotels:   repository.NewHotelRepo(db),
		Rooms:    repository.NewRoomRepo(db),
		Cars:     repository.NewCarRepo(db),
		Packages: repository.NewPackageRepo(db),
		Bundles:  repository.NewBundleRepo(db),
	}
}

func (s *SQLBookingStore) InTx(ctx context.Context, fn func(BookingTx) error) error {
	return database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		return fn(&sqlBookingTx{s: s, tx: tx})
	})
}

func (s *SQLBookingStore) Get(ctx context.Context, id uint64) (model.Booking, error) {
	return s.Bookings.GetByID(ctx, id)
}

func (s *SQLBookingStore) List(ctx context.Context, f repository.BookingFilter) ([]model.Booking, int, error) {
	return s.Bookings.List(ctx, f)
}

func (s *SQLBookingStore) ServiceOwner(ctx context.Context, st model.ServiceType, serviceID uint64) (uint64, error) {
	return s.Bookings.ServiceOwner(ctx, s.DB, st, serviceID)
}

type sqlBookingTx struct {
	s  *SQLBookingStore
	tx *sql.Tx
}

func (t *sqlBookingTx) LockRoom(ctx context.Context, id uint64) (model.Room, error) {
	return t.s.Rooms.GetForUpdateTx(ctx, t.tx, id)
}

func (t *sqlBookingTx) HotelActive(ctx context.Context, hotelID uint64) (bool, error) {
	return t.s.Hotels.IsActiveTx(ctx, t.tx, hotelID)
}

func (t *sqlBookingTx) LockCar(ctx context.Context, id uint64) (model.Car, error) {
	return t.s.Cars.GetForUpdateTx(ctx, t.tx, id)
}

func (t *sqlBookingTx) LockPackage(ctx context.Context, kind model.PackageKind, id uint64) (model.Package, error) {
	return t.s.Packages.GetForUpdateTx(ctx, t.tx, kind, id)
}

func (t *sqlBookingTx) LockBundle(ctx context.Context, id uint64) (model.Bundle, error) {
	return t.s.Bundles.GetForUpdateTx(ctx, t.tx, id)
}

func (t *sqlBookingTx) CountOverlappingRoom(ctx context.Context, roomID uint64, start, end time.Time) (int, error) {
	return t.s.Bookings.CountOverlappingRoomTx(ctx, t.tx, roomID, start, end)
}

func (t *sqlBookingTx) CountOverlappingCar(ctx context.Context, carID uint64, start, end time.Time) (int, error) {
	return t.s.Bookings.CountOverlappingCarTx(ctx, t.tx, carID, start, end)
}

func (t *sqlBookingTx) SumActiveGuests(ctx context.Context, st model.ServiceType, serviceID uint64) (int, error) {
	return t.s.Bookings.SumActiveGuestsTx(ctx, t.tx, st, serviceID)
}

func (t *sqlBookingTx) Insert(ctx context.Context, b *model.Booking) error {
	return t.s.Bookings.CreateTx(ctx, t.tx, b)
}

func (t *sqlBookingTx) LockBooking(ctx context.Context, id uint64) (model.Booking, error) {
	return t.s.Bookings.GetForUpdateTx(ctx, t.tx, id)
}

func (t *sqlBookingTx) ServiceOwner(ctx context.Context, st model.ServiceType, serviceID uint64) (uint64, error) {
	return t.s.Bookings.ServiceOwner(ctx, t.tx, st, serviceID)
}

func (t *sqlBookingTx) UpdateStatus(ctx context.Context, id uint64, status model.BookingStatus, payment model.PaymentStatus, reason string) error {
	return t.s.Bookings.UpdateStatusTx(ctx, t.tx, id, status, payment, reason)
}

func (t *sqlBookingTx) UpdatePayment(ctx context.Context, id uint64, payment model.PaymentStatus, ref *string) error {
	return t.s.Bookings.UpdatePaymentTx(ctx, t.tx, id, payment, ref)
}
