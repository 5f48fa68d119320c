package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/travel-booking/internal/model"
)

// SearchRepo is the read model behind the public listing pages. It joins
// the translation tables so each row comes back already localized.
type SearchRepo struct{ db *sqlx.DB }

func NewSearchRepo(db *sqlx.DB) *SearchRepo { return &SearchRepo{db: db} }

// HotelQuery holds the listing filters. Cities matches any of the given
// names.
type HotelQuery struct {
	Cities   []string
	Country  string
	MinStars int
	Keyword  string
	Lang     string
	Sort     string // price_asc, price_desc, stars_desc; default id
	Page     Page
}

// HotelSummary is one localized row of the hotel listing.
type HotelSummary struct {
	ID          uint64              `db:"id" json:"id"`
	City        string              `db:"city" json:"city"`
	Country     string              `db:"country" json:"country"`
	Stars       uint8               `db:"stars" json:"stars"`
	ImageURL    string              `db:"image_url" json:"image_url"`
	Name        string              `db:"name" json:"name"`
	Description string              `db:"description" json:"description"`
	Language    string              `db:"language" json:"language"`
	MinPrice    decimal.NullDecimal `db:"min_price" json:"min_price"`
}

// localizedColumn picks the requested language, then English, then the
// lowest language code present.
func localizedColumn(col, table, key, alias string) string {
	return fmt.Sprintf("COALESCE(t.%[1]s, te.%[1]s, (SELECT x.%[1]s FROM %[2]s x WHERE x.%[3]s = %[4]s.id ORDER BY x.language LIMIT 1), '')",
		col, table, key, alias)
}

// Hotels returns one page of active hotels and the total match count.
func (r *SearchRepo) Hotels(ctx context.Context, q HotelQuery) ([]HotelSummary, int, error) {
	from := ` FROM hotels h
		LEFT JOIN hotel_translations t ON t.hotel_id = h.id AND t.language = ?
		LEFT JOIN hotel_translations te ON te.hotel_id = h.id AND te.language = 'en'
		WHERE h.is_active = 1`
	args := []any{q.Lang}

	if len(q.Cities) > 0 {
		from += " AND h.city IN (?)"
		args = append(args, q.Cities)
	}
	if q.Country != "" {
		from += " AND LOWER(h.country) = LOWER(?)"
		args = append(args, q.Country)
	}
	if q.MinStars > 0 {
		from += " AND h.stars >= ?"
		args = append(args, q.MinStars)
	}
	if kw := strings.TrimSpace(q.Keyword); kw != "" {
		like := "%" + strings.ToLower(kw) + "%"
		from += ` AND (LOWER(h.city) LIKE ? OR EXISTS (SELECT 1 FROM hotel_translations k
			WHERE k.hotel_id = h.id AND (LOWER(k.name) LIKE ? OR LOWER(k.description) LIKE ?)))`
		args = append(args, like, like, like)
	}

	countQuery, countArgs, err := sqlx.In("SELECT COUNT(*)"+from, args...)
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(countQuery), countArgs...); err != nil {
		return nil, 0, err
	}

	order := " ORDER BY h.id"
	switch q.Sort {
	case "price_asc":
		order = " ORDER BY min_price IS NULL, min_price, h.id"
	case "price_desc":
		order = " ORDER BY min_price DESC, h.id"
	case "stars_desc":
		order = " ORDER BY h.stars DESC, h.id"
	}
	p := q.Page.Normalize()
	selectQuery := `SELECT h.id, h.city, h.country, h.stars, h.image_url, ` +
		localizedColumn("name", "hotel_translations", "hotel_id", "h") + ` AS name, ` +
		`COALESCE(t.description, te.description, '') AS description, ` +
		`COALESCE(t.language, te.language, '') AS language, ` +
		`(SELECT MIN(r.price_per_night) FROM rooms r WHERE r.hotel_id = h.id AND r.is_active = 1) AS min_price` +
		from + order + " LIMIT ? OFFSET ?"
	query, qargs, err := sqlx.In(selectQuery, append(args, p.PageSize, p.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	out := []HotelSummary{}
	if err := r.db.SelectContext(ctx, &out, r.db.Rebind(query), qargs...); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// PackageQuery holds the package listing filters.
type PackageQuery struct {
	Kind     model.PackageKind
	Location string
	Keyword  string
	MaxPrice *decimal.Decimal
	Lang     string
	Page     Page
}

// PackageSummary is one localized row of a package listing.
type PackageSummary struct {
	ID           uint64          `db:"id" json:"id"`
	Location     string          `db:"location" json:"location"`
	Price        decimal.Decimal `db:"price" json:"price"`
	DurationDays uint32          `db:"duration_days" json:"duration_days"`
	Capacity     uint32          `db:"capacity" json:"capacity"`
	ImageURL     string          `db:"image_url" json:"image_url"`
	Title        string          `db:"title" json:"title"`
	Description  string          `db:"description" json:"description"`
	Language     string          `db:"language" json:"language"`
}

// Packages returns one page of active packages of a kind.
func (r *SearchRepo) Packages(ctx context.Context, q PackageQuery) ([]PackageSummary, int, error) {
	table := q.Kind.Table()
	trTable := table + "_translations"
	from := fmt.Sprintf(` FROM %[1]s p
		LEFT JOIN %[2]s t ON t.entity_id = p.id AND t.language = ?
		LEFT JOIN %[2]s te ON te.entity_id = p.id AND te.language = 'en'
		WHERE p.is_active = 1`, table, trTable)
	args := []any{q.Lang}
	if q.Location != "" {
		from += " AND LOWER(p.location) = LOWER(?)"
		args = append(args, q.Location)
	}
	if q.MaxPrice != nil {
		from += " AND p.price <= ?"
		args = append(args, *q.MaxPrice)
	}
	if kw := strings.TrimSpace(q.Keyword); kw != "" {
		like := "%" + strings.ToLower(kw) + "%"
		from += fmt.Sprintf(` AND EXISTS (SELECT 1 FROM %s k WHERE k.entity_id = p.id AND (LOWER(k.title) LIKE ? OR LOWER(k.description) LIKE ?))`, trTable)
		args = append(args, like, like)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*)"+from, args...); err != nil {
		return nil, 0, err
	}
	p := q.Page.Normalize()
	query := `SELECT p.id, p.location, p.price, p.duration_days, p.capacity, p.image_url, ` +
		localizedColumn("title", trTable, "entity_id", "p") + ` AS title, ` +
		`COALESCE(t.description, te.description, '') AS description, ` +
		`COALESCE(t.language, te.language, '') AS language` +
		from + " ORDER BY p.id LIMIT ? OFFSET ?"
	out := []PackageSummary{}
	if err := r.db.SelectContext(ctx, &out, query, append(args, p.PageSize, p.Offset())...); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
