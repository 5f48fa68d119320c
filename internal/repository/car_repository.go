package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/travel-booking/internal/model"
)

// CarRepo handles rental cars.
type CarRepo struct{ DB *sql.DB }

func NewCarRepo(db *sql.DB) *CarRepo { return &CarRepo{DB: db} }

const carColumns = "id, owner_id, brand, model, year, transmission, fuel_type, seats, price_per_day, location, image_url, is_active, created_at, updated_at"

func scanCar(row interface{ Scan(...any) error }) (model.Car, error) {
	var c model.Car
	err := row.Scan(&c.ID, &c.OwnerID, &c.Brand, &c.Model, &c.Year, &c.Transmission, &c.FuelType, &c.Seats, &c.PricePerDay, &c.Location, &c.ImageURL, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// Create inserts a car with translations and sets c.ID.
func (r *CarRepo) Create(ctx context.Context, c *model.Car) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO cars (owner_id, brand, model, year, transmission, fuel_type, seats, price_per_day, location, image_url, is_active)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		c.OwnerID, c.Brand, c.Model, c.Year, c.Transmission, c.FuelType, c.Seats, c.PricePerDay, c.Location, c.ImageURL, c.IsActive)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	if err := carTr.upsert(ctx, tx, c.ID, textTranslationRows(c.Translations)); err != nil {
		return err
	}
	return tx.Commit()
}

// Update overwrites the base columns and upserts the supplied translations.
func (r *CarRepo) Update(ctx context.Context, c model.Car) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE cars SET brand=?, model=?, year=?, transmission=?, fuel_type=?, seats=?, price_per_day=?, location=?, image_url=?, is_active=?
		 WHERE id=?`,
		c.Brand, c.Model, c.Year, c.Transmission, c.FuelType, c.Seats, c.PricePerDay, c.Location, c.ImageURL, c.IsActive, c.ID); err != nil {
		return err
	}
	if err := carTr.upsert(ctx, tx, c.ID, textTranslationRows(c.Translations)); err != nil {
		return err
	}
	return tx.Commit()
}

// GetByID returns a car with translations.
func (r *CarRepo) GetByID(ctx context.Context, id uint64) (model.Car, error) {
	return r.get(ctx, r.DB, "SELECT "+carColumns+" FROM cars WHERE id=?", id)
}

// GetForUpdateTx locks the car row for the duration of tx.
func (r *CarRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Car, error) {
	return r.get(ctx, tx, "SELECT "+carColumns+" FROM cars WHERE id=? FOR UPDATE", id)
}

func (r *CarRepo) get(ctx context.Context, q Querier, query string, id uint64) (model.Car, error) {
	c, err := scanCar(q.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return c, ErrNotFound
	}
	if err != nil {
		return c, err
	}
	tr, err := carTr.load(ctx, q, []uint64{id})
	if err != nil {
		return c, err
	}
	c.Translations = toTextTranslations(tr[id])
	return c, nil
}

// List returns one page of cars with translations and the total count.
func (r *CarRepo) List(ctx context.Context, f CatalogFilter) ([]model.Car, int, error) {
	clause, args := f.where("owner_id")
	var total int
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM cars"+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	p := f.Page.Normalize()
	out, err := r.query(ctx, "SELECT "+carColumns+" FROM cars"+clause+" ORDER BY id LIMIT ? OFFSET ?",
		append(args, p.PageSize, p.Offset())...)
	return out, total, err
}

// ListActive returns every active car. The public car listing filters this
// slice in memory.
func (r *CarRepo) ListActive(ctx context.Context) ([]model.Car, error) {
	return r.query(ctx, "SELECT "+carColumns+" FROM cars WHERE is_active = 1 ORDER BY id")
}

func (r *CarRepo) query(ctx context.Context, query string, args ...any) ([]model.Car, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Car{}
	ids := []uint64{}
	for rows.Next() {
		c, err := scanCar(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
		ids = append(ids, c.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	tr, err := carTr.load(ctx, r.DB, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Translations = toTextTranslations(tr[out[i].ID])
	}
	return out, nil
}

// OwnerOf returns the owner id of a car.
func (r *CarRepo) OwnerOf(ctx context.Context, id uint64) (uint64, error) {
	var owner uint64
	err := r.DB.QueryRowContext(ctx, "SELECT owner_id FROM cars WHERE id=?", id).Scan(&owner)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	return owner, err
}

// Delete removes a car unless active bookings reference it.
func (r *CarRepo) Delete(ctx context.Context, id uint64) error {
	return deleteService(ctx, r.DB, "cars", model.ServiceCar, id)
}
