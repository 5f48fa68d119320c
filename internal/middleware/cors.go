package middleware

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// headerAcceptLanguage has no constant in echo.
const headerAcceptLanguage = "Accept-Language"

// corsHeaders are the request headers browsers may send cross-origin.
var corsHeaders = []string{
	echo.HeaderOrigin,
	echo.HeaderContentType,
	echo.HeaderAuthorization,
	headerAcceptLanguage,
}

// CORS allows the configured origins and the headers the API reads.
func CORS(origins []string) echo.MiddlewareFunc {
	return echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: origins,
		AllowHeaders: corsHeaders,
	})
}
