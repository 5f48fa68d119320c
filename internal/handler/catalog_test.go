package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/travel-booking/internal/i18n"
	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/repository"
)

type fakeCatalog struct {
	hotels   map[uint64]model.Hotel
	rooms    map[uint64][]model.Room
	cars     []model.Car
	packages map[uint64]model.Package

	hotelQuery   repository.HotelQuery
	packageQuery repository.PackageQuery
}

func (f *fakeCatalog) hotel(_ context.Context, id uint64) (model.Hotel, error) {
	h, ok := f.hotels[id]
	if !ok {
		return h, repository.ErrNotFound
	}
	return h, nil
}

type hotelsOf struct{ *fakeCatalog }

func (f hotelsOf) GetByID(ctx context.Context, id uint64) (model.Hotel, error) {
	return f.hotel(ctx, id)
}

func (f *fakeCatalog) ListByHotel(_ context.Context, hotelID uint64, activeOnly bool) ([]model.Room, error) {
	var out []model.Room
	for _, r := range f.rooms[hotelID] {
		if !activeOnly || r.IsActive {
			out = append(out, r)
		}
	}
	return out, nil
}

type carsOf struct{ *fakeCatalog }

func (f carsOf) GetByID(_ context.Context, id uint64) (model.Car, error) {
	for _, c := range f.cars {
		if c.ID == id {
			return c, nil
		}
	}
	return model.Car{}, repository.ErrNotFound
}

func (f carsOf) ListActive(context.Context) ([]model.Car, error) {
	var out []model.Car
	for _, c := range f.cars {
		if c.IsActive {
			out = append(out, c)
		}
	}
	return out, nil
}

type packagesOf struct{ *fakeCatalog }

func (f packagesOf) GetByID(_ context.Context, kind model.PackageKind, id uint64) (model.Package, error) {
	p, ok := f.packages[id]
	if !ok || p.Kind != kind {
		return p, repository.ErrNotFound
	}
	return p, nil
}

func (f *fakeCatalog) Hotels(_ context.Context, q repository.HotelQuery) ([]repository.HotelSummary, int, error) {
	f.hotelQuery = q
	return nil, 0, nil
}

func (f *fakeCatalog) Packages(_ context.Context, q repository.PackageQuery) ([]repository.PackageSummary, int, error) {
	f.packageQuery = q
	return nil, 0, nil
}

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newCatalog() (*fakeCatalog, *echo.Echo) {
	f := &fakeCatalog{
		hotels: map[uint64]model.Hotel{
			1: {ID: 1, City: "Makkah", Stars: 5, IsActive: true, Translations: map[string]model.HotelTranslation{
				"en": {Name: "Harbor View"},
				"ar": {Name: "إطلالة الميناء"},
			}},
			2: {ID: 2, City: "Paris", IsActive: false, Translations: map[string]model.HotelTranslation{"en": {Name: "Closed"}}},
		},
		rooms: map[uint64][]model.Room{
			1: {
				{ID: 10, HotelID: 1, RoomType: "double", PricePerNight: price("80"), Capacity: 2, IsActive: true,
					Amenities: []string{"wifi"}, Translations: map[string]model.TextTranslation{"en": {Name: "Double"}}},
				{ID: 11, HotelID: 1, RoomType: "suite", PricePerNight: price("250"), Capacity: 4, IsActive: true,
					Amenities: []string{"wifi", "balcony"}, Translations: map[string]model.TextTranslation{
						"en": {Name: "Suite"}, "ar": {Name: "جناح"}}},
				{ID: 12, HotelID: 1, RoomType: "single", PricePerNight: price("40"), Capacity: 1, IsActive: false},
			},
		},
		packages: map[uint64]model.Package{
			3: {ID: 3, Kind: model.PackageUmrah, Price: price("1200"), IsActive: true,
				Translations: map[string]model.TitledTranslation{"fr": {Title: "Omra"}}},
		},
	}
	for i := uint64(1); i <= 5; i++ {
		f.cars = append(f.cars, model.Car{ID: i, Brand: "Toyota", Seats: 5, PricePerDay: price("30"), IsActive: i != 5})
	}
	h := &CatalogHandler{
		Hotels: hotelsOf{f}, Rooms: f, Cars: carsOf{f},
		Packages: packagesOf{f}, Search: f,
	}
	e := newEcho()
	e.GET("/hotels", h.SearchHotels)
	e.GET("/hotels/:id", h.GetHotel)
	e.GET("/hotels/:id/rooms", h.HotelRooms)
	e.GET("/cars", h.ListCars)
	e.GET("/cars/:id", h.GetCar)
	e.GET("/packages/:kind", h.ListPackages)
	e.GET("/packages/:kind/:id", h.GetPackage)
	e.GET("/languages", Languages)
	return f, e
}

type pageResp[T any] struct {
	Items []T    `json:"items"`
	Total int    `json:"total"`
	Lang  string `json:"lang"`
	Dir   string `json:"dir"`
}

type dataResp[T any] struct {
	Data T      `json:"data"`
	Lang string `json:"lang"`
	Dir  string `json:"dir"`
}

func TestGetHotelLocalized(t *testing.T) {
	_, e := newCatalog()

	rec := do(e, http.MethodGet, "/hotels/1?lang=ar", "", "")
	wantStatus(t, rec, http.StatusOK)
	var got dataResp[hotelView]
	decode(t, rec, &got)
	if got.Dir != "rtl" || got.Lang != "ar" || got.Data.Name != "إطلالة الميناء" {
		t.Fatalf("got %+v", got)
	}
	if len(got.Data.Rooms) != 2 {
		t.Fatalf("rooms = %d, want only active ones", len(got.Data.Rooms))
	}
	// the double room has no Arabic text and falls back to English
	if r := got.Data.Rooms[0]; r.Name != "Double" || r.Language != i18n.English {
		t.Fatalf("fallback room = %+v", r)
	}
	if got := rec.Header().Get("Content-Language"); got != "ar" {
		t.Fatalf("Content-Language = %q", got)
	}

	wantStatus(t, do(e, http.MethodGet, "/hotels/2", "", ""), http.StatusNotFound)
	wantStatus(t, do(e, http.MethodGet, "/hotels/99", "", ""), http.StatusNotFound)
	wantStatus(t, do(e, http.MethodGet, "/hotels/x", "", ""), http.StatusBadRequest)
}

func TestHotelRoomsFilters(t *testing.T) {
	_, e := newCatalog()

	rec := do(e, http.MethodGet, "/hotels/1/rooms?min_price=100&amenities=balcony", "", "")
	wantStatus(t, rec, http.StatusOK)
	var got pageResp[roomView]
	decode(t, rec, &got)
	if got.Total != 1 || got.Items[0].ID != 11 {
		t.Fatalf("rooms = %+v", got.Items)
	}

	rec = do(e, http.MethodGet, "/hotels/1/rooms?guests=3", "", "")
	decode(t, rec, &got)
	if got.Total != 1 || got.Items[0].RoomType != "suite" {
		t.Fatalf("guests filter = %+v", got.Items)
	}

	wantStatus(t, do(e, http.MethodGet, "/hotels/1/rooms?min_price=abc", "", ""), http.StatusBadRequest)
	wantStatus(t, do(e, http.MethodGet, "/hotels/1/rooms?min_price=300&max_price=100", "", ""), http.StatusBadRequest)
	wantStatus(t, do(e, http.MethodGet, "/hotels/2/rooms", "", ""), http.StatusNotFound)
}

func TestListCarsPages(t *testing.T) {
	_, e := newCatalog()

	rec := do(e, http.MethodGet, "/cars?page=2&page_size=3", "", "")
	wantStatus(t, rec, http.StatusOK)
	var got pageResp[carView]
	decode(t, rec, &got)
	if got.Total != 4 || len(got.Items) != 1 || got.Items[0].ID != 4 {
		t.Fatalf("page 2 = %+v total=%d", got.Items, got.Total)
	}

	rec = do(e, http.MethodGet, "/cars?page=9", "", "")
	decode(t, rec, &got)
	if len(got.Items) != 0 || got.Total != 4 {
		t.Fatalf("past the end = %+v", got)
	}

	wantStatus(t, do(e, http.MethodGet, "/cars/5", "", ""), http.StatusNotFound)
	wantStatus(t, do(e, http.MethodGet, "/cars/1", "", ""), http.StatusOK)
}

func TestSearchHotelsParams(t *testing.T) {
	f, e := newCatalog()

	rec := do(e, http.MethodGet, "/hotels?city=Makkah,Madinah&city=Jeddah&min_stars=4&sort=price_asc&lang=fr", "", "")
	wantStatus(t, rec, http.StatusOK)
	q := f.hotelQuery
	if len(q.Cities) != 3 || q.Cities[2] != "Jeddah" || q.MinStars != 4 || q.Sort != "price_asc" || q.Lang != "fr" {
		t.Fatalf("query = %+v", q)
	}

	for _, bad := range []string{"min_stars=6", "min_stars=x", "sort=random"} {
		if rec := do(e, http.MethodGet, "/hotels?"+bad, "", ""); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status %d", bad, rec.Code)
		}
	}
}

func TestPackages(t *testing.T) {
	f, e := newCatalog()

	wantStatus(t, do(e, http.MethodGet, "/packages/cruises", "", ""), http.StatusNotFound)
	wantStatus(t, do(e, http.MethodGet, "/packages/tours?max_price=-1", "", ""), http.StatusBadRequest)

	wantStatus(t, do(e, http.MethodGet, "/packages/health?max_price=500&location=Amman", "", ""), http.StatusOK)
	if f.packageQuery.Kind != model.PackageHealth || f.packageQuery.MaxPrice == nil || f.packageQuery.Location != "Amman" {
		t.Fatalf("query = %+v", f.packageQuery)
	}

	rec := do(e, http.MethodGet, "/packages/umrah/3", "", "")
	wantStatus(t, rec, http.StatusOK)
	var got dataResp[packageView]
	decode(t, rec, &got)
	if got.Data.Title != "Omra" || got.Data.Language != i18n.French {
		t.Fatalf("package = %+v", got.Data)
	}
	wantStatus(t, do(e, http.MethodGet, "/packages/tours/3", "", ""), http.StatusNotFound)
}

func TestLanguages(t *testing.T) {
	_, e := newCatalog()
	rec := do(e, http.MethodGet, "/languages", "", "")
	wantStatus(t, rec, http.StatusOK)
	var got struct {
		Items []struct {
			Code string `json:"code"`
			Dir  string `json:"dir"`
		} `json:"items"`
		Default string `json:"default"`
	}
	decode(t, rec, &got)
	if len(got.Items) != 3 || got.Default != "en" {
		t.Fatalf("languages = %+v", got)
	}
	for _, l := range got.Items {
		if (l.Code == "ar") != (l.Dir == "rtl") {
			t.Fatalf("direction for %s = %s", l.Code, l.Dir)
		}
	}
}
