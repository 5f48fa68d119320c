// Package router registers the HTTP routes and their middleware chains.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-booking/internal/handler"
	"github.com/iliyamo/travel-booking/internal/middleware"
	"github.com/iliyamo/travel-booking/internal/model"
)

// allRoles is every role that may hold a session.
var allRoles = model.AllRoles

// ownerRoles can manage catalog entries; admins manage everything.
var ownerRoles = []model.Role{model.RoleHotelOwner, model.RoleCarOwner, model.RoleTourGuide, model.RoleAdmin}

// RegisterRoutes registers routes that need neither a session nor the
// response cache.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
	e.GET("/v1/languages", handler.Languages)
}

// RegisterAuth registers sign-up, login and token routes under /v1/auth and
// the profile route under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh) // rotates the refresh token
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout takes a refresh token or a bearer, so no JWTAuth here.
	g.POST("/logout", a.Logout)
	g.GET("/google/login", a.GoogleLogin)
	g.GET("/google/callback", a.GoogleCallback)

	e.GET("/v1/me", a.Me, middleware.JWTAuth(jwtSecret), middleware.RequireRole(allRoles...))
}
