package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/travel-booking/internal/model"
)

// BookingRepo reads and writes the bookings table. Methods ending in Tx
// must run inside the caller's transaction; the service layer owns it.
type BookingRepo struct{ DB *sql.DB }

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{DB: db} }

const bookingColumns = `id, reference, user_id, service_type, service_id, room_id, start_date, end_date, guests,
	total_price, currency, status, payment_status, payment_ref, notes, cancellation_reason, created_at, updated_at`

const activeStatusList = "('PENDING','CONFIRMED','CANCELLATION_REQUESTED')"

const dateLayout = "2006-01-02"

func scanBooking(row interface{ Scan(...any) error }) (model.Booking, error) {
	var (
		b      model.Booking
		roomID sql.NullInt64
		payRef sql.NullString
	)
	err := row.Scan(&b.ID, &b.Reference, &b.UserID, &b.ServiceType, &b.ServiceID, &roomID, &b.StartDate, &b.EndDate, &b.Guests,
		&b.TotalPrice, &b.Currency, &b.Status, &b.PaymentStatus, &payRef, &b.Notes, &b.CancellationReason, &b.CreatedAt, &b.UpdatedAt)
	b.RoomID = nullID(roomID)
	if payRef.Valid {
		b.PaymentRef = &payRef.String
	}
	return b, err
}

// CreateTx inserts b and sets its ID.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (reference, user_id, service_type, service_id, room_id, start_date, end_date, guests,
		 total_price, currency, status, payment_status, notes)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		b.Reference, b.UserID, b.ServiceType, b.ServiceID, idArg(b.RoomID),
		b.StartDate.Format(dateLayout), b.EndDate.Format(dateLayout), b.Guests,
		b.TotalPrice, b.Currency, b.Status, b.PaymentStatus, b.Notes)
	if err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("booking reference %s: %w", b.Reference, ErrConflict)
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// GetByID loads a booking.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (model.Booking, error) {
	b, err := scanBooking(r.DB.QueryRowContext(ctx, "SELECT "+bookingColumns+" FROM bookings WHERE id=?", id))
	if err == sql.ErrNoRows {
		return b, ErrNotFound
	}
	return b, err
}

// GetForUpdateTx loads and locks a booking row.
func (r *BookingRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Booking, error) {
	b, err := scanBooking(tx.QueryRowContext(ctx, "SELECT "+bookingColumns+" FROM bookings WHERE id=? FOR UPDATE", id))
	if err == sql.ErrNoRows {
		return b, ErrNotFound
	}
	return b, err
}

// UpdateStatusTx writes the lifecycle and payment status of a booking. An
// empty reason leaves cancellation_reason untouched.
func (r *BookingRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status model.BookingStatus, payment model.PaymentStatus, reason string) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE bookings SET status=?, payment_status=?, cancellation_reason=IF(?='', cancellation_reason, ?) WHERE id=?",
		status, payment, reason, reason, id)
	return err
}

// UpdatePaymentTx writes the payment status and optional external reference.
func (r *BookingRepo) UpdatePaymentTx(ctx context.Context, tx *sql.Tx, id uint64, payment model.PaymentStatus, ref *string) error {
	var refArg any
	if ref != nil {
		refArg = *ref
	}
	_, err := tx.ExecContext(ctx,
		"UPDATE bookings SET payment_status=?, payment_ref=COALESCE(?, payment_ref) WHERE id=?",
		payment, refArg, id)
	return err
}

// CountOverlappingRoomTx counts active bookings of a room whose stay
// intersects [start, end). Check-out day is free for the next guest.
func (r *BookingRepo) CountOverlappingRoomTx(ctx context.Context, tx *sql.Tx, roomID uint64, start, end time.Time) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM bookings WHERE room_id=? AND status IN "+activeStatusList+" AND start_date < ? AND end_date > ? FOR UPDATE",
		roomID, end.Format(dateLayout), start.Format(dateLayout)).Scan(&n)
	return n, err
}

// CountOverlappingCarTx counts active bookings of a car whose rental days
// intersect [start, end] inclusive.
func (r *BookingRepo) CountOverlappingCarTx(ctx context.Context, tx *sql.Tx, carID uint64, start, end time.Time) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM bookings WHERE service_type='CAR' AND service_id=? AND status IN "+activeStatusList+" AND start_date <= ? AND end_date >= ? FOR UPDATE",
		carID, end.Format(dateLayout), start.Format(dateLayout)).Scan(&n)
	return n, err
}

// SumActiveGuestsTx returns the seats already taken on a per-person
// offering by active bookings.
func (r *BookingRepo) SumActiveGuestsTx(ctx context.Context, tx *sql.Tx, st model.ServiceType, serviceID uint64) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(guests),0) FROM bookings WHERE service_type=? AND service_id=? AND status IN "+activeStatusList+" FOR UPDATE",
		st, serviceID).Scan(&n)
	return n, err
}

// ServiceOwner returns the user owning the booked service. Bundles and
// admin-run offerings without an owner role return 0.
func (r *BookingRepo) ServiceOwner(ctx context.Context, q Querier, st model.ServiceType, serviceID uint64) (uint64, error) {
	table := ""
	switch st {
	case model.ServiceHotel:
		table = "hotels"
	case model.ServiceCar:
		table = "cars"
	case model.ServiceBundle:
		return 0, nil
	default:
		kind, ok := st.PackageKind()
		if !ok {
			return 0, ErrNotFound
		}
		table = kind.Table()
	}
	var owner uint64
	err := q.QueryRowContext(ctx, "SELECT owner_id FROM "+table+" WHERE id=?", serviceID).Scan(&owner)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	return owner, err
}

// HasCompleted reports whether a user has a COMPLETED booking of a service.
func (r *BookingRepo) HasCompleted(ctx context.Context, userID uint64, st model.ServiceType, serviceID uint64) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM bookings WHERE user_id=? AND service_type=? AND service_id=? AND status='COMPLETED'",
		userID, st, serviceID).Scan(&n)
	return n > 0, err
}

// BookingFilter narrows booking listings. Zero values mean "any".
type BookingFilter struct {
	UserID        uint64
	ServiceType   model.ServiceType
	Status        model.BookingStatus
	PaymentStatus model.PaymentStatus
	// OwnerID with OwnerType restricts to bookings of services the owner
	// owns.
	OwnerID   uint64
	OwnerType model.ServiceType
	Page      Page
}

func (f BookingFilter) where() (string, []any, error) {
	var (
		conds []string
		args  []any
	)
	if f.UserID != 0 {
		conds = append(conds, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.ServiceType != "" {
		conds = append(conds, "service_type = ?")
		args = append(args, f.ServiceType)
	}
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, f.Status)
	}
	if f.PaymentStatus != "" {
		conds = append(conds, "payment_status = ?")
		args = append(args, f.PaymentStatus)
	}
	if f.OwnerID != 0 {
		var table string
		switch f.OwnerType {
		case model.ServiceHotel:
			table = "hotels"
		case model.ServiceCar:
			table = "cars"
		default:
			kind, ok := f.OwnerType.PackageKind()
			if !ok {
				return "", nil, fmt.Errorf("owner listing for %q: %w", f.OwnerType, ErrForbidden)
			}
			table = kind.Table()
		}
		conds = append(conds, "service_type = ? AND service_id IN (SELECT id FROM "+table+" WHERE owner_id = ?)")
		args = append(args, f.OwnerType, f.OwnerID)
	}
	if len(conds) == 0 {
		return "", nil, nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

// List returns one page of bookings, newest first, and the total count.
func (r *BookingRepo) List(ctx context.Context, f BookingFilter) ([]model.Booking, int, error) {
	clause, args, err := f.where()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM bookings"+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	p := f.Page.Normalize()
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings"+clause+" ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
		append(args, p.PageSize, p.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []model.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}

// BookingStats aggregates bookings for the control panel dashboard.
type BookingStats struct {
	ByStatus      map[model.BookingStatus]int `json:"by_status"`
	ByServiceType map[model.ServiceType]int   `json:"by_service_type"`
	Revenue       decimal.Decimal             `json:"revenue"`
	Total         int                         `json:"total"`
}

// Stats counts bookings per status and service type and sums the revenue
// of PAID bookings.
func (r *BookingRepo) Stats(ctx context.Context) (BookingStats, error) {
	s := BookingStats{
		ByStatus:      make(map[model.BookingStatus]int, len(model.AllBookingStatuses)),
		ByServiceType: make(map[model.ServiceType]int, len(model.AllServiceTypes)),
	}
	for _, st := range model.AllBookingStatuses {
		s.ByStatus[st] = 0
	}
	for _, st := range model.AllServiceTypes {
		s.ByServiceType[st] = 0
	}

	rows, err := r.DB.QueryContext(ctx, "SELECT status, service_type, COUNT(*) FROM bookings GROUP BY status, service_type")
	if err != nil {
		return s, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status model.BookingStatus
			st     model.ServiceType
			n      int
		)
		if err := rows.Scan(&status, &st, &n); err != nil {
			return s, err
		}
		s.ByStatus[status] += n
		s.ByServiceType[st] += n
		s.Total += n
	}
	if err := rows.Err(); err != nil {
		return s, err
	}

	var revenue decimal.NullDecimal
	if err := r.DB.QueryRowContext(ctx,
		"SELECT SUM(total_price) FROM bookings WHERE payment_status='PAID'").Scan(&revenue); err != nil {
		return s, err
	}
	s.Revenue = decimal.Zero
	if revenue.Valid {
		s.Revenue = revenue.Decimal
	}
	return s, nil
}
