package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/travel-booking/internal/model"
)

// RoomRepo handles rooms of a hotel.
type RoomRepo struct{ DB *sql.DB }

func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{DB: db} }

const roomColumns = "id, hotel_id, room_type, price_per_night, capacity, beds, quantity, amenities, is_active, created_at, updated_at"

func scanRoom(row interface{ Scan(...any) error }) (model.Room, error) {
	var (
		rm        model.Room
		amenities string
	)
	err := row.Scan(&rm.ID, &rm.HotelID, &rm.RoomType, &rm.PricePerNight, &rm.Capacity, &rm.Beds, &rm.Quantity, &amenities, &rm.IsActive, &rm.CreatedAt, &rm.UpdatedAt)
	rm.Amenities = splitCSV(amenities)
	return rm, err
}

func textTranslationRows(tr map[string]model.TextTranslation) map[string][]string {
	rows := make(map[string][]string, len(tr))
	for lang, t := range tr {
		rows[lang] = []string{t.Name, t.Description}
	}
	return rows
}

func toTextTranslations(v map[string][]string) map[string]model.TextTranslation {
	m := make(map[string]model.TextTranslation, len(v))
	for lang, cols := range v {
		m[lang] = model.TextTranslation{Name: cols[0], Description: cols[1]}
	}
	return m
}

// Create inserts a room with translations and sets rm.ID.
func (r *RoomRepo) Create(ctx context.Context, rm *model.Room) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO rooms (hotel_id, room_type, price_per_night, capacity, beds, quantity, amenities, is_active) VALUES (?,?,?,?,?,?,?,?)",
		rm.HotelID, rm.RoomType, rm.PricePerNight, rm.Capacity, rm.Beds, rm.Quantity, joinCSV(rm.Amenities), rm.IsActive)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrNotFound
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rm.ID = uint64(id)
	if err := roomTr.upsert(ctx, tx, rm.ID, textTranslationRows(rm.Translations)); err != nil {
		return err
	}
	return tx.Commit()
}

// Update overwrites the base columns and upserts the supplied translations.
func (r *RoomRepo) Update(ctx context.Context, rm model.Room) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"UPDATE rooms SET room_type=?, price_per_night=?, capacity=?, beds=?, quantity=?, amenities=?, is_active=? WHERE id=?",
		rm.RoomType, rm.PricePerNight, rm.Capacity, rm.Beds, rm.Quantity, joinCSV(rm.Amenities), rm.IsActive, rm.ID); err != nil {
		return err
	}
	if err := roomTr.upsert(ctx, tx, rm.ID, textTranslationRows(rm.Translations)); err != nil {
		return err
	}
	return tx.Commit()
}

// GetByID returns a room with translations.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (model.Room, error) {
	return r.get(ctx, r.DB, "SELECT "+roomColumns+" FROM rooms WHERE id=?", id)
}

// GetForUpdateTx locks the room row for the duration of tx.
func (r *RoomRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Room, error) {
	return r.get(ctx, tx, "SELECT "+roomColumns+" FROM rooms WHERE id=? FOR UPDATE", id)
}

func (r *RoomRepo) get(ctx context.Context, q Querier, query string, id uint64) (model.Room, error) {
	rm, err := scanRoom(q.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return rm, ErrNotFound
	}
	if err != nil {
		return rm, err
	}
	tr, err := roomTr.load(ctx, q, []uint64{id})
	if err != nil {
		return rm, err
	}
	rm.Translations = toTextTranslations(tr[id])
	return rm, nil
}

// ListByHotel returns every room of a hotel with translations. Inactive
// rooms are skipped when activeOnly is set.
func (r *RoomRepo) ListByHotel(ctx context.Context, hotelID uint64, activeOnly bool) ([]model.Room, error) {
	query := "SELECT " + roomColumns + " FROM rooms WHERE hotel_id=?"
	if activeOnly {
		query += " AND is_active = 1"
	}
	rows, err := r.DB.QueryContext(ctx, query+" ORDER BY id", hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Room{}
	ids := []uint64{}
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rm)
		ids = append(ids, rm.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	tr, err := roomTr.load(ctx, r.DB, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Translations = toTextTranslations(tr[out[i].ID])
	}
	return out, nil
}

// OwnerOf returns the owner of the hotel the room belongs to.
func (r *RoomRepo) OwnerOf(ctx context.Context, roomID uint64) (uint64, error) {
	var owner uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT h.owner_id FROM rooms r JOIN hotels h ON h.id = r.hotel_id WHERE r.id=?", roomID).Scan(&owner)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	return owner, err
}

// Delete removes a room unless active bookings reference it. The room row
// is locked first so a concurrent booking cannot commit between the count
// and the delete.
func (r *RoomRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var one int
	if err := tx.QueryRowContext(ctx, "SELECT 1 FROM rooms WHERE id=? FOR UPDATE", id).Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return err
	}
	var n int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM bookings WHERE room_id=? AND status IN ('PENDING','CONFIRMED','CANCELLATION_REQUESTED')",
		id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM rooms WHERE id=?", id); err != nil {
		if isForeignKeyViolation(err) {
			return ErrConflict
		}
		return err
	}
	return tx.Commit()
}
