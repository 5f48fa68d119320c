package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-booking/internal/handler"
	"github.com/iliyamo/travel-booking/internal/middleware"
)

// RegisterOwner registers the booking inbox of service owners and the
// catalog management routes. Admins pass the role check too; handlers
// enforce row ownership. invalidate purges the public cache after writes.
func RegisterOwner(e *echo.Echo, b *handler.BookingHandler, m *handler.ManageHandler, jwtSecret string, invalidate echo.MiddlewareFunc) {
	auth := []echo.MiddlewareFunc{middleware.JWTAuth(jwtSecret), middleware.RequireRole(ownerRoles...)}

	o := e.Group("/v1/owner", auth...)
	o.GET("/bookings", b.OwnerBookings)
	o.PATCH("/bookings/:id/status", b.UpdateStatus)

	g := e.Group("/v1/manage", append(auth, invalidate)...)
	g.GET("/hotels", m.ListHotels)
	g.POST("/hotels", m.CreateHotel)
	g.PUT("/hotels/:id", m.UpdateHotel)
	g.DELETE("/hotels/:id", m.DeleteHotel)
	g.DELETE("/hotels/:id/translations/:lang", m.DeleteHotelTranslation)

	g.GET("/hotels/:id/rooms", m.ListRooms)
	g.POST("/hotels/:id/rooms", m.CreateRoom)
	g.PUT("/rooms/:id", m.UpdateRoom)
	g.DELETE("/rooms/:id", m.DeleteRoom)

	g.GET("/cars", m.ListCars)
	g.POST("/cars", m.CreateCar)
	g.PUT("/cars/:id", m.UpdateCar)
	g.DELETE("/cars/:id", m.DeleteCar)

	g.GET("/packages/:kind", m.ListPackages)
	g.POST("/packages/:kind", m.CreatePackage)
	g.PUT("/packages/:kind/:id", m.UpdatePackage)
	g.DELETE("/packages/:kind/:id", m.DeletePackage)
}
