package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/travel-booking/internal/model"
)

// HotelRepo handles hotels and their translations.
type HotelRepo struct{ DB *sql.DB }

func NewHotelRepo(db *sql.DB) *HotelRepo { return &HotelRepo{DB: db} }

const hotelColumns = "id, owner_id, city, country, stars, amenities, image_url, is_active, created_at, updated_at"

func scanHotel(row interface{ Scan(...any) error }) (model.Hotel, error) {
	var (
		h         model.Hotel
		amenities string
	)
	err := row.Scan(&h.ID, &h.OwnerID, &h.City, &h.Country, &h.Stars, &amenities, &h.ImageURL, &h.IsActive, &h.CreatedAt, &h.UpdatedAt)
	h.Amenities = splitCSV(amenities)
	return h, err
}

func hotelTranslationRows(tr map[string]model.HotelTranslation) map[string][]string {
	rows := make(map[string][]string, len(tr))
	for lang, t := range tr {
		rows[lang] = []string{t.Name, t.Description, t.Address}
	}
	return rows
}

func (r *HotelRepo) attachTranslations(ctx context.Context, q Querier, hotels []model.Hotel) error {
	ids := make([]uint64, len(hotels))
	for i := range hotels {
		ids[i] = hotels[i].ID
	}
	tr, err := hotelTr.load(ctx, q, ids)
	if err != nil {
		return err
	}
	for i := range hotels {
		m := map[string]model.HotelTranslation{}
		for lang, v := range tr[hotels[i].ID] {
			m[lang] = model.HotelTranslation{Name: v[0], Description: v[1], Address: v[2]}
		}
		hotels[i].Translations = m
	}
	return nil
}

// Create inserts the hotel and its translations in one transaction and sets
// h.ID.
func (r *HotelRepo) Create(ctx context.Context, h *model.Hotel) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO hotels (owner_id, city, country, stars, amenities, image_url, is_active) VALUES (?,?,?,?,?,?,?)",
		h.OwnerID, h.City, h.Country, h.Stars, joinCSV(h.Amenities), h.ImageURL, h.IsActive)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = uint64(id)
	if err := hotelTr.upsert(ctx, tx, h.ID, hotelTranslationRows(h.Translations)); err != nil {
		return err
	}
	return tx.Commit()
}

// Update overwrites the base columns and upserts the supplied translations.
func (r *HotelRepo) Update(ctx context.Context, h model.Hotel) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"UPDATE hotels SET city=?, country=?, stars=?, amenities=?, image_url=?, is_active=? WHERE id=?",
		h.City, h.Country, h.Stars, joinCSV(h.Amenities), h.ImageURL, h.IsActive, h.ID); err != nil {
		return err
	}
	if err := hotelTr.upsert(ctx, tx, h.ID, hotelTranslationRows(h.Translations)); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteTranslation removes one language of a hotel.
func (r *HotelRepo) DeleteTranslation(ctx context.Context, id uint64, lang string) error {
	return hotelTr.deleteLanguage(ctx, r.DB, id, lang)
}

// GetByID returns the hotel with all translations.
func (r *HotelRepo) GetByID(ctx context.Context, id uint64) (model.Hotel, error) {
	h, err := scanHotel(r.DB.QueryRowContext(ctx, "SELECT "+hotelColumns+" FROM hotels WHERE id=?", id))
	if err == sql.ErrNoRows {
		return h, ErrNotFound
	}
	if err != nil {
		return h, err
	}
	list := []model.Hotel{h}
	if err := r.attachTranslations(ctx, r.DB, list); err != nil {
		return h, err
	}
	return list[0], nil
}

// CatalogFilter narrows management listings. OwnerID 0 means every owner.
type CatalogFilter struct {
	OwnerID    uint64
	ActiveOnly bool
	Page       Page
}

func (f CatalogFilter) where(ownerCol string) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.OwnerID != 0 && ownerCol != "" {
		conds = append(conds, ownerCol+" = ?")
		args = append(args, f.OwnerID)
	}
	if f.ActiveOnly {
		conds = append(conds, "is_active = 1")
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List returns one page of hotels with translations and the total count.
func (r *HotelRepo) List(ctx context.Context, f CatalogFilter) ([]model.Hotel, int, error) {
	clause, args := f.where("owner_id")
	var total int
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM hotels"+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	p := f.Page.Normalize()
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+hotelColumns+" FROM hotels"+clause+" ORDER BY id LIMIT ? OFFSET ?",
		append(args, p.PageSize, p.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []model.Hotel{}
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, r.attachTranslations(ctx, r.DB, out)
}

// OwnerOf returns the owner id of a hotel.
func (r *HotelRepo) OwnerOf(ctx context.Context, id uint64) (uint64, error) {
	var owner uint64
	err := r.DB.QueryRowContext(ctx, "SELECT owner_id FROM hotels WHERE id=?", id).Scan(&owner)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	return owner, err
}

// Delete removes a hotel and its rooms. Hotels with active bookings yield
// ErrConflict.
func (r *HotelRepo) Delete(ctx context.Context, id uint64) error {
	return deleteService(ctx, r.DB, "hotels", model.ServiceHotel, id)
}

// deleteService deletes a catalog row unless active bookings reference it.
// Translations and child rows go with ON DELETE CASCADE.
func deleteService(ctx context.Context, db *sql.DB, table string, st model.ServiceType, id uint64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var one int
	if err := tx.QueryRowContext(ctx, "SELECT 1 FROM "+table+" WHERE id=? FOR UPDATE", id).Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return err
	}
	n, err := countActiveBookings(ctx, tx, st, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE id=?", id); err != nil {
		if isForeignKeyViolation(err) {
			return ErrConflict
		}
		return err
	}
	return tx.Commit()
}

// countActiveBookings counts bookings holding inventory on a service.
func countActiveBookings(ctx context.Context, q Querier, st model.ServiceType, id uint64) (int, error) {
	var n int
	err := q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM bookings WHERE service_type=? AND service_id=? AND status IN ('PENDING','CONFIRMED','CANCELLATION_REQUESTED')",
		st, id).Scan(&n)
	return n, err
}

// IsActiveTx reports whether a hotel is bookable, holding a shared lock so
// it cannot be deactivated mid-booking.
func (r *HotelRepo) IsActiveTx(ctx context.Context, tx *sql.Tx, id uint64) (bool, error) {
	var active bool
	err := tx.QueryRowContext(ctx, "SELECT is_active FROM hotels WHERE id=? LOCK IN SHARE MODE", id).Scan(&active)
	if err == sql.ErrNoRows {
		return false, ErrNotFound
	}
	return active, err
}
