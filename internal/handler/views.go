package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/travel-booking/internal/i18n"
	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/service"
)

// Localized projections returned by the public catalog. Language is the
// translation actually used after fallback.

type hotelView struct {
	ID          uint64     `json:"id"`
	City        string     `json:"city"`
	Country     string     `json:"country"`
	Stars       uint8      `json:"stars"`
	Amenities   []string   `json:"amenities"`
	ImageURL    string     `json:"image_url"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Address     string     `json:"address"`
	Language    i18n.Lang  `json:"language"`
	Rooms       []roomView `json:"rooms,omitempty"`
}

func hotelOf(h model.Hotel, lang i18n.Lang) hotelView {
	tr, used, _ := i18n.Resolve(h.Translations, lang)
	return hotelView{
		ID: h.ID, City: h.City, Country: h.Country, Stars: h.Stars,
		Amenities: h.Amenities, ImageURL: h.ImageURL,
		Name: tr.Name, Description: tr.Description, Address: tr.Address,
		Language: used,
	}
}

type roomView struct {
	ID            uint64          `json:"id"`
	HotelID       uint64          `json:"hotel_id"`
	RoomType      string          `json:"room_type"`
	PricePerNight decimal.Decimal `json:"price_per_night"`
	Capacity      uint32          `json:"capacity"`
	Beds          uint32          `json:"beds"`
	Quantity      uint32          `json:"quantity"`
	Amenities     []string        `json:"amenities"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Language      i18n.Lang       `json:"language"`
}

func roomOf(r model.Room, lang i18n.Lang) roomView {
	tr, used, _ := i18n.Resolve(r.Translations, lang)
	return roomView{
		ID: r.ID, HotelID: r.HotelID, RoomType: r.RoomType,
		PricePerNight: r.PricePerNight, Capacity: r.Capacity, Beds: r.Beds,
		Quantity: r.Quantity, Amenities: r.Amenities,
		Name: tr.Name, Description: tr.Description, Language: used,
	}
}

type carView struct {
	ID           uint64          `json:"id"`
	Brand        string          `json:"brand"`
	Model        string          `json:"model"`
	Year         uint16          `json:"year"`
	Transmission string          `json:"transmission"`
	FuelType     string          `json:"fuel_type"`
	Seats        uint32          `json:"seats"`
	PricePerDay  decimal.Decimal `json:"price_per_day"`
	Location     string          `json:"location"`
	ImageURL     string          `json:"image_url"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Language     i18n.Lang       `json:"language"`
}

func carOf(c model.Car, lang i18n.Lang) carView {
	tr, used, _ := i18n.Resolve(c.Translations, lang)
	return carView{
		ID: c.ID, Brand: c.Brand, Model: c.Model, Year: c.Year,
		Transmission: c.Transmission, FuelType: c.FuelType, Seats: c.Seats,
		PricePerDay: c.PricePerDay, Location: c.Location, ImageURL: c.ImageURL,
		Name: tr.Name, Description: tr.Description, Language: used,
	}
}

type packageView struct {
	ID           uint64            `json:"id"`
	Kind         model.PackageKind `json:"kind"`
	Location     string            `json:"location"`
	Price        decimal.Decimal   `json:"price"`
	DurationDays uint32            `json:"duration_days"`
	Capacity     uint32            `json:"capacity"`
	StartsOn     *time.Time        `json:"starts_on,omitempty"`
	ImageURL     string            `json:"image_url"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Language     i18n.Lang         `json:"language"`
}

func packageOf(p model.Package, lang i18n.Lang) packageView {
	tr, used, _ := i18n.Resolve(p.Translations, lang)
	return packageView{
		ID: p.ID, Kind: p.Kind, Location: p.Location, Price: p.Price,
		DurationDays: p.DurationDays, Capacity: p.Capacity, StartsOn: p.StartsOn,
		ImageURL: p.ImageURL, Title: tr.Title, Description: tr.Description,
		Language: used,
	}
}

type bundleView struct {
	ID              uint64          `json:"id"`
	HotelID         *uint64         `json:"hotel_id,omitempty"`
	CarID           *uint64         `json:"car_id,omitempty"`
	TourID          *uint64         `json:"tour_id,omitempty"`
	Price           decimal.Decimal `json:"price"`
	DiscountPercent uint8           `json:"discount_percent"`
	FinalPrice      decimal.Decimal `json:"final_price"`
	Capacity        uint32          `json:"capacity"`
	ImageURL        string          `json:"image_url"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Language        i18n.Lang       `json:"language"`
}

func bundleOf(b model.Bundle, lang i18n.Lang) bundleView {
	tr, used, _ := i18n.Resolve(b.Translations, lang)
	return bundleView{
		ID: b.ID, HotelID: b.HotelID, CarID: b.CarID, TourID: b.TourID,
		Price: b.Price, DiscountPercent: b.DiscountPercent,
		FinalPrice: service.BundlePrice(b.Price, 1, b.DiscountPercent),
		Capacity:   b.Capacity, ImageURL: b.ImageURL,
		Title: tr.Title, Description: tr.Description, Language: used,
	}
}

type blogView struct {
	ID          uint64     `json:"id"`
	Slug        string     `json:"slug"`
	CoverURL    string     `json:"cover_url"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Title       string     `json:"title"`
	Body        string     `json:"body,omitempty"`
	Language    i18n.Lang  `json:"language"`
}

func blogOf(b model.Blog, lang i18n.Lang, withBody bool) blogView {
	byLang := make(map[string]model.BlogTranslation, len(b.Translations))
	for _, t := range b.Translations {
		byLang[t.Language] = t
	}
	tr, used, _ := i18n.Resolve(byLang, lang)
	v := blogView{
		ID: b.ID, Slug: b.Slug, CoverURL: b.CoverURL, PublishedAt: b.PublishedAt,
		Title: tr.Title, Language: used,
	}
	if withBody {
		v.Body = tr.Body
	}
	return v
}

func mapSlice[T, V any](in []T, f func(T) V) []V {
	out := make([]V, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}
