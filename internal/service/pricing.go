package service

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// civilDate drops the clock so date arithmetic is not skewed by time zones
// or DST.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Nights is the number of nights between check-in and check-out.
func Nights(start, end time.Time) int {
	return int(civilDate(end).Sub(civilDate(start)).Hours() / 24)
}

// RentalDays counts calendar days of a rental, both ends inclusive, with a
// minimum of one.
func RentalDays(start, end time.Time) int {
	if n := Nights(start, end) + 1; n > 1 {
		return n
	}
	return 1
}

// HotelPrice is price per night times nights.
func HotelPrice(perNight decimal.Decimal, start, end time.Time) decimal.Decimal {
	return perNight.Mul(decimal.NewFromInt(int64(Nights(start, end)))).Round(2)
}

// CarPrice is price per day times inclusive rental days.
func CarPrice(perDay decimal.Decimal, start, end time.Time) decimal.Decimal {
	return perDay.Mul(decimal.NewFromInt(int64(RentalDays(start, end)))).Round(2)
}

// PerPersonPrice prices tours, Umrah, health and educational packages.
func PerPersonPrice(price decimal.Decimal, guests uint32) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(guests))).Round(2)
}

// BundlePrice applies the bundle discount to the per-person price.
func BundlePrice(price decimal.Decimal, guests uint32, discountPercent uint8) decimal.Decimal {
	if discountPercent > 100 {
		discountPercent = 100
	}
	factor := hundred.Sub(decimal.NewFromInt(int64(discountPercent))).Div(hundred)
	return price.Mul(decimal.NewFromInt(int64(guests))).Mul(factor).Round(2)
}
