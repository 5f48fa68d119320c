package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-booking/internal/i18n"
)

// Negotiate picks the response language from ?lang= or Accept-Language and
// echoes it in Content-Language. Vary keeps shared caches per language.
func Negotiate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			r := c.Request()
			l := i18n.Negotiate(r.URL.Query().Get("lang"), r.Header.Get(headerAcceptLanguage))
			c.Set(ctxLang, l)
			h := c.Response().Header()
			h.Set("Content-Language", string(l))
			h.Add("Vary", headerAcceptLanguage)
			return next(c)
		}
	}
}
