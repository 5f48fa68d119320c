// Package search composes multi-criteria filters over catalog slices that
// were already loaded from the database.
package search

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Predicate reports whether an item matches a single criterion.
type Predicate[T any] func(T) bool

// All matches when every predicate matches. Nil predicates are skipped, so
// callers can pass optional criteria without branching.
func All[T any](ps ...Predicate[T]) Predicate[T] {
	active := make([]Predicate[T], 0, len(ps))
	for _, p := range ps {
		if p != nil {
			active = append(active, p)
		}
	}
	return func(v T) bool {
		for _, p := range active {
			if !p(v) {
				return false
			}
		}
		return true
	}
}

// Filter returns the items matching p, preserving order. The result is never
// nil so it encodes as an empty JSON array.
func Filter[T any](items []T, p Predicate[T]) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if p == nil || p(it) {
			out = append(out, it)
		}
	}
	return out
}

// PriceRange bounds a price inclusively. A nil bound is open.
type PriceRange struct {
	Min *decimal.Decimal
	Max *decimal.Decimal
}

// Contains reports whether p lies within the range.
func (r PriceRange) Contains(p decimal.Decimal) bool {
	if r.Min != nil && p.LessThan(*r.Min) {
		return false
	}
	if r.Max != nil && p.GreaterThan(*r.Max) {
		return false
	}
	return true
}

// Empty reports whether no bound is set.
func (r PriceRange) Empty() bool { return r.Min == nil && r.Max == nil }

// Sort orders supported by the room and car listings.
const (
	SortDefault      = ""
	SortPriceAsc     = "price_asc"
	SortPriceDesc    = "price_desc"
	SortCapacityDesc = "capacity_desc"
)

func parseSort(s string) (string, error) {
	switch s = strings.ToLower(strings.TrimSpace(s)); s {
	case SortDefault, SortPriceAsc, SortPriceDesc, SortCapacityDesc:
		return s, nil
	}
	return "", fmt.Errorf("unknown sort %q", s)
}

func sortItems[T any](items []T, order string, price func(T) decimal.Decimal, capacity func(T) uint32, id func(T) uint64) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch order {
		case SortPriceAsc:
			if c := price(a).Cmp(price(b)); c != 0 {
				return c < 0
			}
		case SortPriceDesc:
			if c := price(a).Cmp(price(b)); c != 0 {
				return c > 0
			}
		case SortCapacityDesc:
			if capacity(a) != capacity(b) {
				return capacity(a) > capacity(b)
			}
		}
		return id(a) < id(b)
	})
}

func parsePriceRange(q url.Values) (PriceRange, error) {
	var r PriceRange
	for _, f := range []struct {
		key string
		dst **decimal.Decimal
	}{{"min_price", &r.Min}, {"max_price", &r.Max}} {
		raw := strings.TrimSpace(q.Get(f.key))
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil || d.IsNegative() {
			return PriceRange{}, fmt.Errorf("invalid %s", f.key)
		}
		*f.dst = &d
	}
	if r.Min != nil && r.Max != nil && r.Min.GreaterThan(*r.Max) {
		return PriceRange{}, fmt.Errorf("min_price exceeds max_price")
	}
	return r, nil
}

func parseUint(q url.Values, key string) (uint32, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint32(n), nil
}

// splitCSV accepts both repeated keys (?amenity=a&amenity=b) and a comma
// separated value (?amenities=a,b).
func splitCSV(values ...string) []string {
	var out []string
	for _, v := range values {
		for _, p := range strings.Split(v, ",") {
			if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func hasAll(have []string, want []string) bool {
	set := make(map[string]struct{}, len(have))
	for _, h := range have {
		set[strings.ToLower(strings.TrimSpace(h))] = struct{}{}
	}
	for _, w := range want {
		if _, ok := set[w]; !ok {
			return false
		}
	}
	return true
}
