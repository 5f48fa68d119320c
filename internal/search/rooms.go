package search

import (
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/travel-booking/internal/i18n"
	"github.com/iliyamo/travel-booking/internal/model"
)

// RoomCriteria are the filters offered on a hotel's room list.
type RoomCriteria struct {
	Price     PriceRange
	Guests    uint32   // room capacity must be at least this
	RoomType  string   // exact, case-insensitive
	Amenities []string // all must be present
	Query     string   // substring of the localized name or description
	Sort      string
}

// ParseRoomCriteria reads the criteria from query parameters.
func ParseRoomCriteria(q url.Values) (RoomCriteria, error) {
	var (
		c   RoomCriteria
		err error
	)
	if c.Price, err = parsePriceRange(q); err != nil {
		return c, err
	}
	if c.Guests, err = parseUint(q, "guests"); err != nil {
		return c, err
	}
	if c.Sort, err = parseSort(q.Get("sort")); err != nil {
		return c, err
	}
	c.RoomType = strings.TrimSpace(q.Get("room_type"))
	c.Amenities = splitCSV(append(q["amenity"], q.Get("amenities"))...)
	c.Query = strings.TrimSpace(q.Get("q"))
	return c, nil
}

// Predicate builds the composed room predicate. Text matching uses the
// translation resolved for lang.
func (c RoomCriteria) Predicate(lang i18n.Lang) Predicate[model.Room] {
	var ps []Predicate[model.Room]
	ps = append(ps, func(r model.Room) bool { return r.IsActive })
	if !c.Price.Empty() {
		ps = append(ps, func(r model.Room) bool { return c.Price.Contains(r.PricePerNight) })
	}
	if c.Guests > 0 {
		ps = append(ps, func(r model.Room) bool { return r.Capacity >= c.Guests })
	}
	if c.RoomType != "" {
		ps = append(ps, func(r model.Room) bool { return strings.EqualFold(r.RoomType, c.RoomType) })
	}
	if len(c.Amenities) > 0 {
		ps = append(ps, func(r model.Room) bool { return hasAll(r.Amenities, c.Amenities) })
	}
	if c.Query != "" {
		ps = append(ps, func(r model.Room) bool {
			tr, _, _ := i18n.Resolve(r.Translations, lang)
			return containsFold(tr.Name, c.Query) || containsFold(tr.Description, c.Query)
		})
	}
	return All(ps...)
}

// FilterRooms applies the criteria and the requested order.
func FilterRooms(rooms []model.Room, c RoomCriteria, lang i18n.Lang) []model.Room {
	out := Filter(rooms, c.Predicate(lang))
	sortItems(out, c.Sort,
		func(r model.Room) decimal.Decimal { return r.PricePerNight },
		func(r model.Room) uint32 { return r.Capacity },
		func(r model.Room) uint64 { return r.ID })
	return out
}
