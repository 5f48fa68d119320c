package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-booking/internal/handler"
	"github.com/iliyamo/travel-booking/internal/middleware"
	"github.com/iliyamo/travel-booking/internal/model"
)

// AdminHandlers groups the handlers mounted under /v1/admin.
type AdminHandlers struct {
	Bookings *handler.BookingHandler
	Manage   *handler.ManageHandler
	Users    *handler.AdminHandler
	Content  *handler.ContentHandler
}

// RegisterAdmin registers the control panel API. Every route requires the
// ADMIN role; writes purge the public cache.
func RegisterAdmin(e *echo.Echo, h AdminHandlers, jwtSecret string, invalidate echo.MiddlewareFunc) {
	g := e.Group("/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
		invalidate,
	)

	g.GET("/stats", h.Users.Stats)

	g.GET("/bookings", h.Bookings.AdminBookings)
	g.PATCH("/bookings/:id/status", h.Bookings.UpdateStatus)
	g.PATCH("/bookings/:id/payment", h.Bookings.UpdatePayment)

	g.GET("/users", h.Users.ListUsers)
	g.GET("/users/:id", h.Users.GetUser)
	g.PATCH("/users/:id/role", h.Users.UpdateRole)
	g.PATCH("/users/:id/active", h.Users.SetActive)
	g.DELETE("/users/:id", h.Users.DeleteUser)

	g.GET("/bundles", h.Manage.ListBundles)
	g.POST("/bundles", h.Manage.CreateBundle)
	g.PUT("/bundles/:id", h.Manage.UpdateBundle)
	g.DELETE("/bundles/:id", h.Manage.DeleteBundle)

	g.GET("/blogs", h.Content.AdminListBlogs)
	g.POST("/blogs", h.Content.CreateBlog)
	g.PUT("/blogs/:id", h.Content.UpdateBlog)
	g.DELETE("/blogs/:id", h.Content.DeleteBlog)

	g.GET("/reviews", h.Content.AdminListReviews)
	g.PATCH("/reviews/:id", h.Content.ModerateReview)
	g.DELETE("/reviews/:id", h.Content.DeleteReview)

	g.GET("/settings", h.Content.AdminSettings)
	g.PUT("/settings/:key", h.Content.PutSetting)
	g.DELETE("/settings/:key", h.Content.DeleteSetting)
}
