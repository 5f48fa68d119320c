package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-booking/internal/i18n"
	"github.com/iliyamo/travel-booking/internal/model"
)

// Context keys set by JWTAuth and Lang.
const (
	ctxUserID = "user_id"
	ctxRole   = "role"
	ctxLang   = "lang"
)

// UserID returns the authenticated user id.
func UserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(ctxUserID).(uint64)
	return id, ok && id != 0
}

// Role returns the authenticated user's role, or "" for guests.
func Role(c echo.Context) model.Role {
	r, _ := c.Get(ctxRole).(model.Role)
	return r
}

// Lang returns the negotiated language, defaulting to English.
func Lang(c echo.Context) i18n.Lang {
	if l, ok := c.Get(ctxLang).(i18n.Lang); ok {
		return l
	}
	return i18n.Default
}

// identity is the user part of rate limit keys; "anon" for guests.
func identity(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
