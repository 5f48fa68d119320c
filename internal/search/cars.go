package search

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/travel-booking/internal/i18n"
	"github.com/iliyamo/travel-booking/internal/model"
)

// CarCriteria are the filters offered on the car rental list.
type CarCriteria struct {
	Price        PriceRange
	Brand        string
	Transmission string // AUTOMATIC or MANUAL
	FuelType     string
	MinSeats     uint32
	Location     string // substring, case-insensitive
	Query        string // brand, model or localized name
	Sort         string
}

// ParseCarCriteria reads the criteria from query parameters.
func ParseCarCriteria(q url.Values) (CarCriteria, error) {
	var (
		c   CarCriteria
		err error
	)
	if c.Price, err = parsePriceRange(q); err != nil {
		return c, err
	}
	if c.MinSeats, err = parseUint(q, "seats"); err != nil {
		return c, err
	}
	if c.Sort, err = parseSort(q.Get("sort")); err != nil {
		return c, err
	}
	c.Transmission = strings.ToUpper(strings.TrimSpace(q.Get("transmission")))
	if c.Transmission != "" && c.Transmission != "AUTOMATIC" && c.Transmission != "MANUAL" {
		return c, fmt.Errorf("invalid transmission")
	}
	c.Brand = strings.TrimSpace(q.Get("brand"))
	c.FuelType = strings.TrimSpace(q.Get("fuel_type"))
	c.Location = strings.TrimSpace(q.Get("location"))
	c.Query = strings.TrimSpace(q.Get("q"))
	return c, nil
}

// Predicate builds the composed car predicate.
func (c CarCriteria) Predicate(lang i18n.Lang) Predicate[model.Car] {
	ps := []Predicate[model.Car]{func(car model.Car) bool { return car.IsActive }}
	if !c.Price.Empty() {
		ps = append(ps, func(car model.Car) bool { return c.Price.Contains(car.PricePerDay) })
	}
	if c.Brand != "" {
		ps = append(ps, func(car model.Car) bool { return strings.EqualFold(car.Brand, c.Brand) })
	}
	if c.Transmission != "" {
		ps = append(ps, func(car model.Car) bool { return strings.EqualFold(car.Transmission, c.Transmission) })
	}
	if c.FuelType != "" {
		ps = append(ps, func(car model.Car) bool { return strings.EqualFold(car.FuelType, c.FuelType) })
	}
	if c.MinSeats > 0 {
		ps = append(ps, func(car model.Car) bool { return car.Seats >= c.MinSeats })
	}
	if c.Location != "" {
		ps = append(ps, func(car model.Car) bool { return containsFold(car.Location, c.Location) })
	}
	if c.Query != "" {
		ps = append(ps, func(car model.Car) bool {
			if containsFold(car.Brand+" "+car.Model, c.Query) {
				return true
			}
			tr, _, _ := i18n.Resolve(car.Translations, lang)
			return containsFold(tr.Name, c.Query)
		})
	}
	return All(ps...)
}

// FilterCars applies the criteria and the requested order.
func FilterCars(cars []model.Car, c CarCriteria, lang i18n.Lang) []model.Car {
	out := Filter(cars, c.Predicate(lang))
	sortItems(out, c.Sort,
		func(car model.Car) decimal.Decimal { return car.PricePerDay },
		func(car model.Car) uint32 { return car.Seats },
		func(car model.Car) uint64 { return car.ID })
	return out
}
