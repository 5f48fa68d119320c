package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/travel-booking/internal/i18n"
	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/repository"
	"github.com/iliyamo/travel-booking/internal/service"
)

// ManageHandler is the catalog CRUD used by owners and admins. Owners only
// touch their own service type and their own rows; umrah, health and
// educational packages and bundles are admin-only.
type ManageHandler struct {
	Users    *repository.UserRepo
	Hotels   *repository.HotelRepo
	Rooms    *repository.RoomRepo
	Cars     *repository.CarRepo
	Packages *repository.PackageRepo
	Bundles  *repository.BundleRepo
}

func NewManageHandler(u *repository.UserRepo, h *repository.HotelRepo, r *repository.RoomRepo,
	c *repository.CarRepo, p *repository.PackageRepo, b *repository.BundleRepo) *ManageHandler {
	return &ManageHandler{Users: u, Hotels: h, Rooms: r, Cars: c, Packages: p, Bundles: b}
}

// canCreate reports whether actor may create services of type st.
func canCreate(actor service.Actor, st model.ServiceType) bool {
	if actor.Role == model.RoleAdmin {
		return true
	}
	owned, ok := actor.Role.OwnedServiceType()
	return ok && owned == st
}

// authorizeOwner allows admins and the owner of the row.
func authorizeOwner(actor service.Actor, st model.ServiceType, ownerID uint64) error {
	if actor.Role == model.RoleAdmin {
		return nil
	}
	if canCreate(actor, st) && ownerID == actor.UserID {
		return nil
	}
	return repository.ErrForbidden
}

// listOwner returns the owner filter for management listings; admins see
// everything.
func listOwner(actor service.Actor) uint64 {
	if actor.Role == model.RoleAdmin {
		return 0
	}
	return actor.UserID
}

// resolveOwner picks the owner of a new row. Admins may create on behalf
// of a user whose role owns st.
func (h *ManageHandler) resolveOwner(ctx context.Context, actor service.Actor, st model.ServiceType, requested *uint64) (uint64, error) {
	if actor.Role != model.RoleAdmin || requested == nil || *requested == actor.UserID {
		return actor.UserID, nil
	}
	u, err := h.Users.GetByID(ctx, *requested)
	if err != nil {
		return 0, fmt.Errorf("owner_id: %w", err)
	}
	if owned, ok := u.Role.OwnedServiceType(); !ok || owned != st {
		return 0, fmt.Errorf("owner_id: user cannot own %s: %w", st, errValidation)
	}
	return u.ID, nil
}

// normalizeLangs rewrites translation keys to canonical codes.
func normalizeLangs[T any](in map[string]T) map[string]T {
	out := make(map[string]T, len(in))
	for k, v := range in {
		if l, ok := i18n.Parse(k); ok {
			out[string(l)] = v
		}
	}
	return out
}

func requireTranslations(n int) error {
	if n == 0 {
		return fmt.Errorf("at least one translation required: %w", errValidation)
	}
	return nil
}

func requirePositive(name string, d decimal.Decimal) error {
	if !d.IsPositive() {
		return fmt.Errorf("%s must be positive: %w", name, errValidation)
	}
	return nil
}

func activeOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ----- hotels -----

type hotelTrReq struct {
	Name        string `json:"name" validate:"required,max=191"`
	Description string `json:"description" validate:"max=5000"`
	Address     string `json:"address" validate:"max=255"`
}

type hotelReq struct {
	OwnerID      *uint64               `json:"owner_id"`
	City         string                `json:"city" validate:"required,max=100"`
	Country      string                `json:"country" validate:"required,max=100"`
	Stars        uint8                 `json:"stars" validate:"max=5"`
	Amenities    []string              `json:"amenities" validate:"dive,max=64"`
	ImageURL     string                `json:"image_url" validate:"omitempty,url,max=512"`
	IsActive     *bool                 `json:"is_active"`
	Translations map[string]hotelTrReq `json:"translations" validate:"dive,keys,lang,endkeys"`
}

func (r hotelReq) translations() map[string]model.HotelTranslation {
	out := make(map[string]model.HotelTranslation, len(r.Translations))
	for k, t := range normalizeLangs(r.Translations) {
		out[k] = model.HotelTranslation{Name: t.Name, Description: t.Description, Address: t.Address}
	}
	return out
}

func (h *ManageHandler) ListHotels(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	page := pageFrom(c)
	ctx, cancel := withTimeout(c)
	defer cancel()
	items, total, err := h.Hotels.List(ctx, repository.CatalogFilter{OwnerID: listOwner(actor), Page: page})
	if err != nil {
		return fail(c, err)
	}
	return paged(c, items, page, total)
}

func (h *ManageHandler) CreateHotel(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	if !canCreate(actor, model.ServiceHotel) {
		return fail(c, repository.ErrForbidden)
	}
	var req hotelReq
	if err := bindValid(c, &req); err != nil {
		return fail(c, err)
	}
	tr := req.translations()
	if err := requireTranslations(len(tr)); err != nil {
		return fail(c, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	owner, err := h.resolveOwner(ctx, actor, model.ServiceHotel, req.OwnerID)
	if err != nil {
		return fail(c, err)
	}
	hotel := model.Hotel{
		OwnerID: owner, City: strings.TrimSpace(req.City), Country: strings.TrimSpace(req.Country),
		Stars: req.Stars, Amenities: cleanList(req.Amenities), ImageURL: req.ImageURL,
		IsActive: activeOr(req.IsActive, true), Translations: tr,
	}
	if err := h.Hotels.Create(ctx, &hotel); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, hotel)
}

// ownedHotel loads hotel :id and checks the caller may manage it.
func (h *ManageHandler) ownedHotel(ctx context.Context, actor service.Actor, id uint64) (model.Hotel, error) {
	hotel, err := h.Hotels.GetByID(ctx, id)
	if err != nil {
		return hotel, err
	}
	return hotel, authorizeOwner(actor, model.ServiceHotel, hotel.OwnerID)
}

func (h *ManageHandler) UpdateHotel(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req hotelReq
	if err := bindValid(c, &req); err != nil {
		return fail(c, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	hotel, err := h.ownedHotel(ctx, actor, id)
	if err != nil {
		return fail(c, err)
	}
	hotel.City, hotel.Country = strings.TrimSpace(req.City), strings.TrimSpace(req.Country)
	hotel.Stars, hotel.Amenities, hotel.ImageURL = req.Stars, cleanList(req.Amenities), req.ImageURL
	hotel.IsActive = activeOr(req.IsActive, hotel.IsActive)
	hotel.Translations = req.translations()
	if err := h.Hotels.Update(ctx, hotel); err != nil {
		return fail(c, err)
	}
	if hotel, err = h.Hotels.GetByID(ctx, id); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, hotel)
}

// DeleteHotelTranslation drops one language of a hotel. The last remaining
// translation cannot be removed.
func (h *ManageHandler) DeleteHotelTranslation(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	lang, ok := i18n.Parse(c.Param("lang"))
	if !ok {
		return badRequest(c, "unsupported language")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	hotel, err := h.ownedHotel(ctx, actor, id)
	if err != nil {
		return fail(c, err)
	}
	if _, exists := hotel.Translations[string(lang)]; !exists {
		return fail(c, repository.ErrNotFound)
	}
	if len(hotel.Translations) == 1 {
		return fail(c, fmt.Errorf("cannot remove the last translation: %w", repository.ErrConflict))
	}
	if err := h.Hotels.DeleteTranslation(ctx, id, string(lang)); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ManageHandler) DeleteHotel(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	owner, err := h.Hotels.OwnerOf(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	if err := authorizeOwner(actor, model.ServiceHotel, owner); err != nil {
		return fail(c, err)
	}
	if err := h.Hotels.Delete(ctx, id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ----- rooms -----

type textTrReq struct {
	Name        string `json:"name" validate:"required,max=191"`
	Description string `json:"description" validate:"max=5000"`
}

func textTranslations(in map[string]textTrReq) map[string]model.TextTranslation {
	out := make(map[string]model.TextTranslation, len(in))
	for k, t := range normalizeLangs(in) {
		out[k] = model.TextTranslation{Name: t.Name, Description: t.Description}
	}
	return out
}

type roomReq struct {
	RoomType      string               `json:"room_type" validate:"required,max=64"`
	PricePerNight decimal.Decimal      `json:"price_per_night"`
	Capacity      uint32               `json:"capacity" validate:"required,min=1,max=50"`
	Beds          uint32               `json:"beds" validate:"max=50"`
	Quantity      uint32               `json:"quantity" validate:"required,min=1,max=10000"`
	Amenities     []string             `json:"amenities" validate:"dive,max=64"`
	IsActive      *bool                `json:"is_active"`
	Translations  map[string]textTrReq `json:"translations" validate:"dive,keys,lang,endkeys"`
}

func (h *ManageHandler) ListRooms(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	if _, err := h.ownedHotel(ctx, actor, id); err != nil {
		return fail(c, err)
	}
	rooms, err := h.Rooms.ListByHotel(ctx, id, false)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": rooms})
}

func (h *ManageHandler) CreateRoom(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	hotelID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req roomReq
	if err := bindValid(c, &req); err != nil {
		return fail(c, err)
	}
	if err := requirePositive("price_per_night", req.PricePerNight); err != nil {
		return fail(c, err)
	}
	tr := textTranslations(req.Translations)
	if err := requireTranslations(len(tr)); err != nil {
		return fail(c, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	if _, err := h.ownedHotel(ctx, actor, hotelID); err != nil {
		return fail(c, err)
	}
	room := model.Room{
		HotelID: hotelID, RoomType: strings.TrimSpace(req.RoomType), PricePerNight: req.PricePerNight,
		Capacity: req.Capacity, Beds: req.Beds, Quantity: req.Quantity,
		Amenities: cleanList(req.Amenities), IsActive: activeOr(req.IsActive, true), Translations: tr,
	}
	if err := h.Rooms.Create(ctx, &room); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, room)
}

func (h *ManageHandler) ownedRoom(ctx context.Context, actor service.Actor, id uint64) error {
	owner, err := h.Rooms.OwnerOf(ctx, id)
	if err != nil {
		return err
	}
	return authorizeOwner(actor, model.ServiceHotel, owner)
}

func (h *ManageHandler) UpdateRoom(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req roomReq
	if err := bindValid(c, &req); err != nil {
		return fail(c, err)
	}
	if err := requirePositive("price_per_night", req.PricePerNight); err != nil {
		return fail(c, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	if err := h.ownedRoom(ctx, actor, id); err != nil {
		return fail(c, err)
	}
	room, err := h.Rooms.GetByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	room.RoomType, room.PricePerNight = strings.TrimSpace(req.RoomType), req.PricePerNight
	room.Capacity, room.Beds, room.Quantity = req.Capacity, req.Beds, req.Quantity
	room.Amenities = cleanList(req.Amenities)
	room.IsActive = activeOr(req.IsActive, room.IsActive)
	room.Translations = textTranslations(req.Translations)
	if err := h.Rooms.Update(ctx, room); err != nil {
		return fail(c, err)
	}
	if room, err = h.Rooms.GetByID(ctx, id); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, room)
}

func (h *ManageHandler) DeleteRoom(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	if err := h.ownedRoom(ctx, actor, id); err != nil {
		return fail(c, err)
	}
	if err := h.Rooms.Delete(ctx, id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ----- cars -----

type carReq struct {
	OwnerID      *uint64              `json:"owner_id"`
	Brand        string               `json:"brand" validate:"required,max=64"`
	Model        string               `json:"model" validate:"required,max=64"`
	Year         uint16               `json:"year" validate:"required,min=1950,max=2100"`
	Transmission string               `json:"transmission" validate:"required,oneof=AUTOMATIC MANUAL"`
	FuelType     string               `json:"fuel_type" validate:"max=32"`
	Seats        uint32               `json:"seats" validate:"required,min=1,max=60"`
	PricePerDay  decimal.Decimal      `json:"price_per_day"`
	Location     string               `json:"location" validate:"required,max=100"`
	ImageURL     string               `json:"image_url" validate:"omitempty,url,max=512"`
	IsActive     *bool                `json:"is_active"`
	Translations map[string]textTrReq `json:"translations" validate:"dive,keys,lang,endkeys"`
}

func (r *carReq) apply(car *model.Car) {
	car.Brand, car.Model, car.Year = strings.TrimSpace(r.Brand), strings.TrimSpace(r.Model), r.Year
	car.Transmission, car.FuelType, car.Seats = r.Transmission, strings.TrimSpace(r.FuelType), r.Seats
	car.PricePerDay, car.Location, car.ImageURL = r.PricePerDay, strings.TrimSpace(r.Location), r.ImageURL
	car.Translations = textTranslations(r.Translations)
}

func (h *ManageHandler) ListCars(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	page := pageFrom(c)
	ctx, cancel := withTimeout(c)
	defer cancel()
	items, total, err := h.Cars.List(ctx, repository.CatalogFilter{OwnerID: listOwner(actor), Page: page})
	if err != nil {
		return fail(c, err)
	}
	return paged(c, items, page, total)
}

func (h *ManageHandler) CreateCar(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	if !canCreate(actor, model.ServiceCar) {
		return fail(c, repository.ErrForbidden)
	}
	var req carReq
	if err := bindValid(c, &req); err != nil {
		return fail(c, err)
	}
	if err := requirePositive("price_per_day", req.PricePerDay); err != nil {
		return fail(c, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	owner, err := h.resolveOwner(ctx, actor, model.ServiceCar, req.OwnerID)
	if err != nil {
		return fail(c, err)
	}
	car := model.Car{OwnerID: owner, IsActive: activeOr(req.IsActive, true)}
	req.apply(&car)
	if err := requireTranslations(len(car.Translations)); err != nil {
		return fail(c, err)
	}
	if err := h.Cars.Create(ctx, &car); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, car)
}

func (h *ManageHandler) UpdateCar(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req carReq
	if err := bindValid(c, &req); err != nil {
		return fail(c, err)
	}
	if err := requirePositive("price_per_day", req.PricePerDay); err != nil {
		return fail(c, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	car, err := h.Cars.GetByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	if err := authorizeOwner(actor, model.ServiceCar, car.OwnerID); err != nil {
		return fail(c, err)
	}
	req.apply(&car)
	car.IsActive = activeOr(req.IsActive, car.IsActive)
	if err := h.Cars.Update(ctx, car); err != nil {
		return fail(c, err)
	}
	if car, err = h.Cars.GetByID(ctx, id); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, car)
}

func (h *ManageHandler) DeleteCar(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	owner, err := h.Cars.OwnerOf(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	if err := authorizeOwner(actor, model.ServiceCar, owner); err != nil {
		return fail(c, err)
	}
	if err := h.Cars.Delete(ctx, id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ----- packages -----

type titledTrReq struct {
	Title       string `json:"title" validate:"required,max=191"`
	Description string `json:"description" validate:"max=5000"`
}

func titledTranslations(in map[string]titledTrReq) map[string]model.TitledTranslation {
	out := make(map[string]model.TitledTranslation, len(in))
	for k, t := range normalizeLangs(in) {
		out[k] = model.TitledTranslation{Title: t.Title, Description: t.Description}
	}
	return out
}

type packageReq struct {
	OwnerID      *uint64                `json:"owner_id"`
	Location     string                 `json:"location" validate:"required,max=100"`
	Price        decimal.Decimal        `json:"price"`
	DurationDays uint32                 `json:"duration_days" validate:"required,min=1,max=365"`
	Capacity     uint32                 `json:"capacity" validate:"required,min=1,max=10000"`
	StartsOn     string                 `json:"starts_on" validate:"omitempty,datetime=2006-01-02"`
	ImageURL     string                 `json:"image_url" validate:"omitempty,url,max=512"`
	IsActive     *bool                  `json:"is_active"`
	Translations map[string]titledTrReq `json:"translations" validate:"dive,keys,lang,endkeys"`
}

func (r *packageReq) apply(p *model.Package) {
	p.Location, p.Price = strings.TrimSpace(r.Location), r.Price
	p.DurationDays, p.Capacity, p.ImageURL = r.DurationDays, r.Capacity, r.ImageURL
	p.StartsOn = nil
	if r.StartsOn != "" {
		if t, err := time.Parse(dateLayout, r.StartsOn); err == nil {
			p.StartsOn = &t
		}
	}
	p.Translations = titledTranslations(r.Translations)
}

// kindFor parses :kind and checks the caller may manage that kind at all.
func kindFor(c echo.Context, actor service.Actor) (model.PackageKind, error) {
	kind, ok := model.ParsePackageKind(c.Param("kind"))
	if !ok {
		return "", fmt.Errorf("unknown package kind: %w", repository.ErrNotFound)
	}
	if !canCreate(actor, kind.ServiceType()) {
		return "", repository.ErrForbidden
	}
	return kind, nil
}

func (h *ManageHandler) ListPackages(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	kind, err := kindFor(c, actor)
	if err != nil {
		return fail(c, err)
	}
	page := pageFrom(c)
	ctx, cancel := withTimeout(c)
	defer cancel()
	items, total, err := h.Packages.List(ctx, kind, repository.CatalogFilter{OwnerID: listOwner(actor), Page: page})
	if err != nil {
		return fail(c, err)
	}
	return paged(c, items, page, total)
}

func (h *ManageHandler) CreatePackage(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	kind, err := kindFor(c, actor)
	if err != nil {
		return fail(c, err)
	}
	var req packageReq
	if err := bindValid(c, &req); err != nil {
		return fail(c, err)
	}
	if err := requirePositive("price", req.Price); err != nil {
		return fail(c, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	owner := actor.UserID
	if kind == model.PackageTour {
		if owner, err = h.resolveOwner(ctx, actor, model.ServiceTour, req.OwnerID); err != nil {
			return fail(c, err)
		}
	}
	p := model.Package{Kind: kind, OwnerID: owner, IsActive: activeOr(req.IsActive, true)}
	req.apply(&p)
	if err := requireTranslations(len(p.Translations)); err != nil {
		return fail(c, err)
	}
	if err := h.Packages.Create(ctx, &p); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *ManageHandler) UpdatePackage(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	kind, err := kindFor(c, actor)
	if err != nil {
		return fail(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req packageReq
	if err := bindValid(c, &req); err != nil {
		return fail(c, err)
	}
	if err := requirePositive("price", req.Price); err != nil {
		return fail(c, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	p, err := h.Packages.GetByID(ctx, kind, id)
	if err != nil {
		return fail(c, err)
	}
	if err := authorizeOwner(actor, kind.ServiceType(), p.OwnerID); err != nil {
		return fail(c, err)
	}
	req.apply(&p)
	p.IsActive = activeOr(req.IsActive, p.IsActive)
	if err := h.Packages.Update(ctx, p); err != nil {
		return fail(c, err)
	}
	if p, err = h.Packages.GetByID(ctx, kind, id); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ManageHandler) DeletePackage(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	kind, err := kindFor(c, actor)
	if err != nil {
		return fail(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	owner, err := h.Packages.OwnerOf(ctx, kind, id)
	if err != nil {
		return fail(c, err)
	}
	if err := authorizeOwner(actor, kind.ServiceType(), owner); err != nil {
		return fail(c, err)
	}
	if err := h.Packages.Delete(ctx, kind, id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ----- bundles (admin) -----

type bundleReq struct {
	HotelID         *uint64                `json:"hotel_id" validate:"omitempty,gt=0"`
	CarID           *uint64                `json:"car_id" validate:"omitempty,gt=0"`
	TourID          *uint64                `json:"tour_id" validate:"omitempty,gt=0"`
	Price           decimal.Decimal        `json:"price"`
	DiscountPercent uint8                  `json:"discount_percent" validate:"max=100"`
	Capacity        uint32                 `json:"capacity" validate:"required,min=1,max=10000"`
	ImageURL        string                 `json:"image_url" validate:"omitempty,url,max=512"`
	IsActive        *bool                  `json:"is_active"`
	Translations    map[string]titledTrReq `json:"translations" validate:"dive,keys,lang,endkeys"`
}

func (r *bundleReq) apply(b *model.Bundle) error {
	if r.HotelID == nil && r.CarID == nil && r.TourID == nil {
		return fmt.Errorf("bundle needs at least one component: %w", errValidation)
	}
	if err := requirePositive("price", r.Price); err != nil {
		return err
	}
	b.HotelID, b.CarID, b.TourID = r.HotelID, r.CarID, r.TourID
	b.Price, b.DiscountPercent, b.Capacity, b.ImageURL = r.Price, r.DiscountPercent, r.Capacity, r.ImageURL
	b.Translations = titledTranslations(r.Translations)
	return nil
}

func (h *ManageHandler) ListBundles(c echo.Context) error {
	page := pageFrom(c)
	ctx, cancel := withTimeout(c)
	defer cancel()
	items, total, err := h.Bundles.List(ctx, repository.CatalogFilter{Page: page})
	if err != nil {
		return fail(c, err)
	}
	return paged(c, items, page, total)
}

func (h *ManageHandler) CreateBundle(c echo.Context) error {
	var req bundleReq
	if err := bindValid(c, &req); err != nil {
		return fail(c, err)
	}
	b := model.Bundle{IsActive: activeOr(req.IsActive, true)}
	if err := req.apply(&b); err != nil {
		return fail(c, err)
	}
	if err := requireTranslations(len(b.Translations)); err != nil {
		return fail(c, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	if err := h.Bundles.Create(ctx, &b); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *ManageHandler) UpdateBundle(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req bundleReq
	if err := bindValid(c, &req); err != nil {
		return fail(c, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	b, err := h.Bundles.GetByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	if err := req.apply(&b); err != nil {
		return fail(c, err)
	}
	b.IsActive = activeOr(req.IsActive, b.IsActive)
	if err := h.Bundles.Update(ctx, b); err != nil {
		return fail(c, err)
	}
	if b, err = h.Bundles.GetByID(ctx, id); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *ManageHandler) DeleteBundle(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	if err := h.Bundles.Delete(ctx, id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
