package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-booking/internal/handler"
	"github.com/iliyamo/travel-booking/internal/middleware"
	"github.com/iliyamo/travel-booking/internal/model"
)

// RegisterCustomer registers booking and review routes. Booking and
// reviewing need the CUSTOMER role; reading and cancelling are open to any
// session and checked per booking by the service.
func RegisterCustomer(e *echo.Echo, b *handler.BookingHandler, ct *handler.ContentHandler, jwtSecret string) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret), middleware.RequireRole(allRoles...))
	customer := middleware.RequireRole(model.RoleCustomer)

	g.POST("/bookings", b.Create, customer)
	g.GET("/my-bookings", b.MyBookings)
	g.GET("/bookings/:id", b.Get)
	g.POST("/bookings/:id/cancel", b.Cancel)

	g.POST("/reviews", ct.CreateReview, customer)
}
