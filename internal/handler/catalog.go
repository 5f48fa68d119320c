package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/travel-booking/internal/i18n"
	mw "github.com/iliyamo/travel-booking/internal/middleware"
	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/repository"
	"github.com/iliyamo/travel-booking/internal/search"
)

type hotelGetter interface {
	GetByID(ctx context.Context, id uint64) (model.Hotel, error)
}

type roomLister interface {
	ListByHotel(ctx context.Context, hotelID uint64, activeOnly bool) ([]model.Room, error)
}

type carReader interface {
	GetByID(ctx context.Context, id uint64) (model.Car, error)
	ListActive(ctx context.Context) ([]model.Car, error)
}

type packageGetter interface {
	GetByID(ctx context.Context, kind model.PackageKind, id uint64) (model.Package, error)
}

type bundleReader interface {
	GetByID(ctx context.Context, id uint64) (model.Bundle, error)
	List(ctx context.Context, f repository.CatalogFilter) ([]model.Bundle, int, error)
}

type searcher interface {
	Hotels(ctx context.Context, q repository.HotelQuery) ([]repository.HotelSummary, int, error)
	Packages(ctx context.Context, q repository.PackageQuery) ([]repository.PackageSummary, int, error)
}

// CatalogHandler serves the public, localized catalog. Inactive entities
// are reported as missing.
type CatalogHandler struct {
	Hotels   hotelGetter
	Rooms    roomLister
	Cars     carReader
	Packages packageGetter
	Bundles  bundleReader
	Search   searcher
}

func NewCatalogHandler(h *repository.HotelRepo, r *repository.RoomRepo, c *repository.CarRepo,
	p *repository.PackageRepo, b *repository.BundleRepo, s *repository.SearchRepo) *CatalogHandler {
	return &CatalogHandler{Hotels: h, Rooms: r, Cars: c, Packages: p, Bundles: b, Search: s}
}

// SearchHotels lists active hotels. Filters: city (repeatable or comma
// separated), country, min_stars, q, sort.
func (h *CatalogHandler) SearchHotels(c echo.Context) error {
	q := repository.HotelQuery{
		Country: strings.TrimSpace(c.QueryParam("country")),
		Keyword: strings.TrimSpace(c.QueryParam("q")),
		Lang:    string(mw.Lang(c)),
		Sort:    c.QueryParam("sort"),
		Page:    pageFrom(c),
	}
	for _, v := range c.QueryParams()["city"] {
		for _, city := range strings.Split(v, ",") {
			if city = strings.TrimSpace(city); city != "" {
				q.Cities = append(q.Cities, city)
			}
		}
	}
	if s := c.QueryParam("min_stars"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 || n > 5 {
			return badRequest(c, "invalid min_stars")
		}
		q.MinStars = n
	}
	switch q.Sort {
	case "", "price_asc", "price_desc", "stars_desc":
	default:
		return badRequest(c, "invalid sort")
	}

	ctx, cancel := withTimeout(c)
	defer cancel()
	items, total, err := h.Search.Hotels(ctx, q)
	if err != nil {
		return fail(c, err)
	}
	return paged(c, items, q.Page, total)
}

// GetHotel returns one active hotel with its active rooms.
func (h *CatalogHandler) GetHotel(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	hotel, err := h.activeHotel(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	rooms, err := h.Rooms.ListByHotel(ctx, id, true)
	if err != nil {
		return fail(c, err)
	}
	lang := mw.Lang(c)
	v := hotelOf(hotel, lang)
	v.Rooms = mapSlice(rooms, func(r model.Room) roomView { return roomOf(r, lang) })
	return localized(c, v)
}

func (h *CatalogHandler) activeHotel(ctx context.Context, id uint64) (model.Hotel, error) {
	hotel, err := h.Hotels.GetByID(ctx, id)
	if err != nil {
		return hotel, err
	}
	if !hotel.IsActive {
		return hotel, repository.ErrNotFound
	}
	return hotel, nil
}

// HotelRooms lists a hotel's rooms filtered by price range, guests,
// room_type, amenities and a localized keyword.
func (h *CatalogHandler) HotelRooms(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	crit, err := search.ParseRoomCriteria(c.QueryParams())
	if err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	if _, err := h.activeHotel(ctx, id); err != nil {
		return fail(c, err)
	}
	rooms, err := h.Rooms.ListByHotel(ctx, id, true)
	if err != nil {
		return fail(c, err)
	}
	lang := mw.Lang(c)
	matched := search.FilterRooms(rooms, crit, lang)
	views := mapSlice(matched, func(r model.Room) roomView { return roomOf(r, lang) })
	return paged(c, views, repository.Page{Page: 1, PageSize: len(views)}, len(views))
}

// ListCars filters active cars in memory and pages the result.
func (h *CatalogHandler) ListCars(c echo.Context) error {
	crit, err := search.ParseCarCriteria(c.QueryParams())
	if err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	cars, err := h.Cars.ListActive(ctx)
	if err != nil {
		return fail(c, err)
	}
	lang := mw.Lang(c)
	matched := search.FilterCars(cars, crit, lang)
	page := pageFrom(c)
	views := mapSlice(pageOf(matched, page), func(car model.Car) carView { return carOf(car, lang) })
	return paged(c, views, page, len(matched))
}

func pageOf[T any](items []T, p repository.Page) []T {
	start := p.Offset()
	if start >= len(items) {
		return nil
	}
	end := start + p.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func (h *CatalogHandler) GetCar(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	car, err := h.Cars.GetByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	if !car.IsActive {
		return fail(c, repository.ErrNotFound)
	}
	return localized(c, carOf(car, mw.Lang(c)))
}

func packageKind(c echo.Context) (model.PackageKind, bool) {
	return model.ParsePackageKind(c.Param("kind"))
}

// ListPackages lists one package kind. Filters: location, q, max_price.
func (h *CatalogHandler) ListPackages(c echo.Context) error {
	kind, ok := packageKind(c)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown package kind"})
	}
	q := repository.PackageQuery{
		Kind:     kind,
		Location: strings.TrimSpace(c.QueryParam("location")),
		Keyword:  strings.TrimSpace(c.QueryParam("q")),
		Lang:     string(mw.Lang(c)),
		Page:     pageFrom(c),
	}
	if s := c.QueryParam("max_price"); s != "" {
		d, err := decimal.NewFromString(s)
		if err != nil || d.IsNegative() {
			return badRequest(c, "invalid max_price")
		}
		q.MaxPrice = &d
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	items, total, err := h.Search.Packages(ctx, q)
	if err != nil {
		return fail(c, err)
	}
	return paged(c, items, q.Page, total)
}

func (h *CatalogHandler) GetPackage(c echo.Context) error {
	kind, ok := packageKind(c)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown package kind"})
	}
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	p, err := h.Packages.GetByID(ctx, kind, id)
	if err != nil {
		return fail(c, err)
	}
	if !p.IsActive {
		return fail(c, repository.ErrNotFound)
	}
	return localized(c, packageOf(p, mw.Lang(c)))
}

func (h *CatalogHandler) ListBundles(c echo.Context) error {
	page := pageFrom(c)
	ctx, cancel := withTimeout(c)
	defer cancel()
	bundles, total, err := h.Bundles.List(ctx, repository.CatalogFilter{ActiveOnly: true, Page: page})
	if err != nil {
		return fail(c, err)
	}
	lang := mw.Lang(c)
	return paged(c, mapSlice(bundles, func(b model.Bundle) bundleView { return bundleOf(b, lang) }), page, total)
}

func (h *CatalogHandler) GetBundle(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	b, err := h.Bundles.GetByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	if !b.IsActive {
		return fail(c, repository.ErrNotFound)
	}
	return localized(c, bundleOf(b, mw.Lang(c)))
}

var languageNames = map[i18n.Lang]string{
	i18n.English: "English",
	i18n.Arabic:  "العربية",
	i18n.French:  "Français",
}

// Languages lists the supported site languages with their text direction.
func Languages(c echo.Context) error {
	out := make([]echo.Map, 0, len(i18n.Supported))
	for _, l := range i18n.Supported {
		out = append(out, echo.Map{"code": l, "name": languageNames[l], "dir": i18n.Direction(l)})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out, "default": i18n.Default})
}
