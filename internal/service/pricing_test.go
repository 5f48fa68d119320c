package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestNightsAndRentalDays(t *testing.T) {
	if n := Nights(day("2026-06-01"), day("2026-06-04")); n != 3 {
		t.Fatalf("nights = %d", n)
	}
	if n := RentalDays(day("2026-06-01"), day("2026-06-01")); n != 1 {
		t.Fatalf("same-day rental = %d", n)
	}
	if n := RentalDays(day("2026-06-01"), day("2026-06-03")); n != 3 {
		t.Fatalf("inclusive rental = %d", n)
	}
	// Clock time and zone do not change the count.
	start := time.Date(2026, 3, 28, 23, 30, 0, 0, time.UTC)
	end := time.Date(2026, 3, 30, 1, 0, 0, 0, time.UTC)
	if n := Nights(start, end); n != 2 {
		t.Fatalf("nights across clock times = %d", n)
	}
}

func TestPrices(t *testing.T) {
	cases := []struct {
		name string
		got  decimal.Decimal
		want string
	}{
		{"hotel", HotelPrice(decimal.RequireFromString("89.99"), day("2026-06-01"), day("2026-06-04")), "269.97"},
		{"car", CarPrice(decimal.RequireFromString("40"), day("2026-06-01"), day("2026-06-03")), "120"},
		{"tour", PerPersonPrice(decimal.RequireFromString("150.50"), 3), "451.5"},
		{"bundle", BundlePrice(decimal.RequireFromString("1000"), 2, 15), "1700"},
		{"bundle rounding", BundlePrice(decimal.RequireFromString("99.99"), 1, 33), "66.99"},
		{"bundle discount capped", BundlePrice(decimal.RequireFromString("50"), 2, 150), "0"},
	}
	for _, c := range cases {
		if !c.got.Equal(decimal.RequireFromString(c.want)) {
			t.Errorf("%s: got %s, want %s", c.name, c.got, c.want)
		}
	}
}
