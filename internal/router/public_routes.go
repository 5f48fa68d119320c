package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-booking/internal/handler"
)

// RegisterPublic registers the guest catalog. Every route goes through the
// response cache; catalog writes elsewhere purge it.
func RegisterPublic(e *echo.Echo, p *handler.CatalogHandler, ct *handler.ContentHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1", cache)

	g.GET("/hotels", p.SearchHotels)
	g.GET("/search/hotels", p.SearchHotels)
	g.GET("/hotels/:id", p.GetHotel)
	g.GET("/hotels/:id/rooms", p.HotelRooms)

	g.GET("/cars", p.ListCars)
	g.GET("/cars/:id", p.GetCar)

	// kind is tours, umrah, health or educational.
	g.GET("/packages/:kind", p.ListPackages)
	g.GET("/packages/:kind/:id", p.GetPackage)

	g.GET("/bundles", p.ListBundles)
	g.GET("/bundles/:id", p.GetBundle)

	g.GET("/blogs", ct.ListBlogs)
	g.GET("/blogs/:slug", ct.GetBlog)
	g.GET("/reviews", ct.ListReviews)
	g.GET("/settings/public", ct.PublicSettings)
}
