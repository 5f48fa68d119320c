package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/travel-booking/internal/model"
)

// PackageRepo serves the four per-person offering tables (tours, Umrah,
// health, educational). They share one column layout so every method takes
// the kind.
type PackageRepo struct{ DB *sql.DB }

func NewPackageRepo(db *sql.DB) *PackageRepo { return &PackageRepo{DB: db} }

const packageColumns = "id, owner_id, location, price, duration_days, capacity, starts_on, image_url, is_active, created_at, updated_at"

func scanPackage(kind model.PackageKind, row interface{ Scan(...any) error }) (model.Package, error) {
	var (
		p        model.Package
		startsOn sql.NullTime
	)
	err := row.Scan(&p.ID, &p.OwnerID, &p.Location, &p.Price, &p.DurationDays, &p.Capacity, &startsOn, &p.ImageURL, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	p.Kind = kind
	if startsOn.Valid {
		t := startsOn.Time
		p.StartsOn = &t
	}
	return p, err
}

func titledTranslationRows(tr map[string]model.TitledTranslation) map[string][]string {
	rows := make(map[string][]string, len(tr))
	for lang, t := range tr {
		rows[lang] = []string{t.Title, t.Description}
	}
	return rows
}

func toTitledTranslations(v map[string][]string) map[string]model.TitledTranslation {
	m := make(map[string]model.TitledTranslation, len(v))
	for lang, cols := range v {
		m[lang] = model.TitledTranslation{Title: cols[0], Description: cols[1]}
	}
	return m
}

func nullDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format("2006-01-02")
}

// Create inserts a package of p.Kind with translations and sets p.ID.
func (r *PackageRepo) Create(ctx context.Context, p *model.Package) error {
	table := p.Kind.Table()
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO "+table+" (owner_id, location, price, duration_days, capacity, starts_on, image_url, is_active) VALUES (?,?,?,?,?,?,?,?)",
		p.OwnerID, p.Location, p.Price, p.DurationDays, p.Capacity, nullDate(p.StartsOn), p.ImageURL, p.IsActive)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	if err := packageTr(table).upsert(ctx, tx, p.ID, titledTranslationRows(p.Translations)); err != nil {
		return err
	}
	return tx.Commit()
}

// Update overwrites the base columns and upserts the supplied translations.
func (r *PackageRepo) Update(ctx context.Context, p model.Package) error {
	table := p.Kind.Table()
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"UPDATE "+table+" SET location=?, price=?, duration_days=?, capacity=?, starts_on=?, image_url=?, is_active=? WHERE id=?",
		p.Location, p.Price, p.DurationDays, p.Capacity, nullDate(p.StartsOn), p.ImageURL, p.IsActive, p.ID); err != nil {
		return err
	}
	if err := packageTr(table).upsert(ctx, tx, p.ID, titledTranslationRows(p.Translations)); err != nil {
		return err
	}
	return tx.Commit()
}

// GetByID returns a package with translations.
func (r *PackageRepo) GetByID(ctx context.Context, kind model.PackageKind, id uint64) (model.Package, error) {
	return r.get(ctx, r.DB, kind, "SELECT "+packageColumns+" FROM "+kind.Table()+" WHERE id=?", id)
}

// GetForUpdateTx locks the package row for the duration of tx.
func (r *PackageRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, kind model.PackageKind, id uint64) (model.Package, error) {
	return r.get(ctx, tx, kind, "SELECT "+packageColumns+" FROM "+kind.Table()+" WHERE id=? FOR UPDATE", id)
}

func (r *PackageRepo) get(ctx context.Context, q Querier, kind model.PackageKind, query string, id uint64) (model.Package, error) {
	p, err := scanPackage(kind, q.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return p, ErrNotFound
	}
	if err != nil {
		return p, err
	}
	tr, err := packageTr(kind.Table()).load(ctx, q, []uint64{id})
	if err != nil {
		return p, err
	}
	p.Translations = toTitledTranslations(tr[id])
	return p, nil
}

// List returns one page of packages of a kind and the total count.
func (r *PackageRepo) List(ctx context.Context, kind model.PackageKind, f CatalogFilter) ([]model.Package, int, error) {
	table := kind.Table()
	clause, args := f.where("owner_id")
	var total int
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	pg := f.Page.Normalize()
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+packageColumns+" FROM "+table+clause+" ORDER BY COALESCE(starts_on, '9999-12-31'), id LIMIT ? OFFSET ?",
		append(args, pg.PageSize, pg.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []model.Package{}
	ids := []uint64{}
	for rows.Next() {
		p, err := scanPackage(kind, rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	tr, err := packageTr(table).load(ctx, r.DB, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range out {
		out[i].Translations = toTitledTranslations(tr[out[i].ID])
	}
	return out, total, nil
}

// OwnerOf returns the owner id of a package.
func (r *PackageRepo) OwnerOf(ctx context.Context, kind model.PackageKind, id uint64) (uint64, error) {
	var owner uint64
	err := r.DB.QueryRowContext(ctx, "SELECT owner_id FROM "+kind.Table()+" WHERE id=?", id).Scan(&owner)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	return owner, err
}

// Delete removes a package unless active bookings reference it.
func (r *PackageRepo) Delete(ctx context.Context, kind model.PackageKind, id uint64) error {
	return deleteService(ctx, r.DB, kind.Table(), kind.ServiceType(), id)
}
