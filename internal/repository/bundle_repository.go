package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/travel-booking/internal/model"
)

// BundleRepo handles admin-managed bundles.
type BundleRepo struct{ DB *sql.DB }

func NewBundleRepo(db *sql.DB) *BundleRepo { return &BundleRepo{DB: db} }

const bundleColumns = "id, hotel_id, car_id, tour_id, price, discount_percent, capacity, image_url, is_active, created_at, updated_at"

func scanBundle(row interface{ Scan(...any) error }) (model.Bundle, error) {
	var (
		b                model.Bundle
		hotel, car, tour sql.NullInt64
	)
	err := row.Scan(&b.ID, &hotel, &car, &tour, &b.Price, &b.DiscountPercent, &b.Capacity, &b.ImageURL, &b.IsActive, &b.CreatedAt, &b.UpdatedAt)
	b.HotelID, b.CarID, b.TourID = nullID(hotel), nullID(car), nullID(tour)
	return b, err
}

func nullID(v sql.NullInt64) *uint64 {
	if !v.Valid {
		return nil
	}
	id := uint64(v.Int64)
	return &id
}

func idArg(id *uint64) any {
	if id == nil {
		return nil
	}
	return *id
}

// Create inserts a bundle with translations and sets b.ID. Referencing a
// missing hotel, car or tour yields ErrNotFound.
func (r *BundleRepo) Create(ctx context.Context, b *model.Bundle) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO bundles (hotel_id, car_id, tour_id, price, discount_percent, capacity, image_url, is_active) VALUES (?,?,?,?,?,?,?,?)",
		idArg(b.HotelID), idArg(b.CarID), idArg(b.TourID), b.Price, b.DiscountPercent, b.Capacity, b.ImageURL, b.IsActive)
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
	b.ID = uint64(id)
	if err := bundleTr.upsert(ctx, tx, b.ID, titledTranslationRows(b.Translations)); err != nil {
		return err
	}
	return tx.Commit()
}

// Update overwrites the base columns and upserts the supplied translations.
func (r *BundleRepo) Update(ctx context.Context, b model.Bundle) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"UPDATE bundles SET hotel_id=?, car_id=?, tour_id=?, price=?, discount_percent=?, capacity=?, image_url=?, is_active=? WHERE id=?",
		idArg(b.HotelID), idArg(b.CarID), idArg(b.TourID), b.Price, b.DiscountPercent, b.Capacity, b.ImageURL, b.IsActive, b.ID); err != nil {
		if isForeignKeyViolation(err) {
			return ErrNotFound
		}
		return err
	}
	if err := bundleTr.upsert(ctx, tx, b.ID, titledTranslationRows(b.Translations)); err != nil {
		return err
	}
	return tx.Commit()
}

// GetByID returns a bundle with translations.
func (r *BundleRepo) GetByID(ctx context.Context, id uint64) (model.Bundle, error) {
	return r.get(ctx, r.DB, "SELECT "+bundleColumns+" FROM bundles WHERE id=?", id)
}

// GetForUpdateTx locks the bundle row for the duration of tx.
func (r *BundleRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Bundle, error) {
	return r.get(ctx, tx, "SELECT "+bundleColumns+" FROM bundles WHERE id=? FOR UPDATE", id)
}

func (r *BundleRepo) get(ctx context.Context, q Querier, query string, id uint64) (model.Bundle, error) {
	b, err := scanBundle(q.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return b, ErrNotFound
	}
	if err != nil {
		return b, err
	}
	tr, err := bundleTr.load(ctx, q, []uint64{id})
	if err != nil {
		return b, err
	}
	b.Translations = toTitledTranslations(tr[id])
	return b, nil
}

// List returns one page of bundles and the total count.
func (r *BundleRepo) List(ctx context.Context, f CatalogFilter) ([]model.Bundle, int, error) {
	clause, args := f.where("")
	var total int
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM bundles"+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	p := f.Page.Normalize()
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+bundleColumns+" FROM bundles"+clause+" ORDER BY id LIMIT ? OFFSET ?",
		append(args, p.PageSize, p.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []model.Bundle{}
	ids := []uint64{}
	for rows.Next() {
		b, err := scanBundle(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, b)
		ids = append(ids, b.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	tr, err := bundleTr.load(ctx, r.DB, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range out {
		out[i].Translations = toTitledTranslations(tr[out[i].ID])
	}
	return out, total, nil
}

// Delete removes a bundle unless active bookings reference it.
func (r *BundleRepo) Delete(ctx context.Context, id uint64) error {
	return deleteService(ctx, r.DB, "bundles", model.ServiceBundle, id)
}
