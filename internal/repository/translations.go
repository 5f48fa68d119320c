package repository

import (
	"context"
	"fmt"
	"strings"
)

// translationTable describes a per-language side table keyed by
// (keyCol, language). All value columns are text.
type translationTable struct {
	name   string
	keyCol string
	cols   []string
}

var (
	hotelTr  = translationTable{"hotel_translations", "hotel_id", []string{"name", "description", "address"}}
	roomTr   = translationTable{"room_translations", "room_id", []string{"name", "description"}}
	carTr    = translationTable{"car_translations", "car_id", []string{"name", "description"}}
	bundleTr = translationTable{"bundle_translations", "bundle_id", []string{"title", "description"}}
)

func packageTr(table string) translationTable {
	return translationTable{table + "_translations", "entity_id", []string{"title", "description"}}
}

// upsert writes one row per language. Languages absent from rows are left
// untouched so partial updates do not erase other languages.
func (t translationTable) upsert(ctx context.Context, q Querier, id uint64, rows map[string][]string) error {
	if len(rows) == 0 {
		return nil
	}
	cols := append([]string{t.keyCol, "language"}, t.cols...)
	updates := make([]string, len(t.cols))
	for i, c := range t.cols {
		updates[i] = fmt.Sprintf("%s = VALUES(%s)", c, c)
	}
	var (
		tuples []string
		args   []any
	)
	for lang, vals := range rows {
		if len(vals) != len(t.cols) {
			return fmt.Errorf("%s: expected %d values, got %d", t.name, len(t.cols), len(vals))
		}
		tuples = append(tuples, "("+placeholders(len(cols))+")")
		args = append(args, id, lang)
		for _, v := range vals {
			args = append(args, v)
		}
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s ON DUPLICATE KEY UPDATE %s",
		t.name, strings.Join(cols, ", "), strings.Join(tuples, ","), strings.Join(updates, ", "))
	_, err := q.ExecContext(ctx, query, args...)
	return err
}

// deleteLanguage removes a single language row.
func (t translationTable) deleteLanguage(ctx context.Context, q Querier, id uint64, lang string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ? AND language = ?", t.name, t.keyCol)
	_, err := q.ExecContext(ctx, query, id, lang)
	return err
}

// load returns id -> language -> column values for the given ids.
func (t translationTable) load(ctx context.Context, q Querier, ids []uint64) (map[uint64]map[string][]string, error) {
	out := make(map[uint64]map[string][]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query := fmt.Sprintf("SELECT %s, language, %s FROM %s WHERE %s IN (%s)",
		t.keyCol, strings.Join(t.cols, ", "), t.name, t.keyCol, placeholders(len(ids)))
	rows, err := q.QueryContext(ctx, query, uint64Args(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id   uint64
			lang string
		)
		vals := make([]string, len(t.cols))
		dest := []any{&id, &lang}
		for i := range vals {
			dest = append(dest, &vals[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		if out[id] == nil {
			out[id] = map[string][]string{}
		}
		out[id][lang] = vals
	}
	return out, rows.Err()
}
