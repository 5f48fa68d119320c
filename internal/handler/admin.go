package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/repository"
)

type userAdminStore interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
	List(ctx context.Context, f repository.UserFilter) ([]model.User, int, error)
	UpdateRole(ctx context.Context, id uint64, role model.Role) error
	SetActive(ctx context.Context, id uint64, active bool) error
	Delete(ctx context.Context, id uint64) error
	CountByRole(ctx context.Context) (map[model.Role]int, error)
}

type sessionRevoker interface {
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

type statsSource interface {
	Stats(ctx context.Context) (repository.BookingStats, error)
}

// AdminHandler serves user management and the dashboard numbers.
type AdminHandler struct {
	Users    userAdminStore
	Tokens   sessionRevoker
	Bookings statsSource
}

func NewAdminHandler(u *repository.UserRepo, t *repository.TokenRepo, b *repository.BookingRepo) *AdminHandler {
	return &AdminHandler{Users: u, Tokens: t, Bookings: b}
}

type roleReq struct {
	Role string `json:"role" validate:"required,role"`
}

type activeReq struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// targetUser parses :id and refuses changes to the caller's own account so
// an admin cannot lock themselves out.
func targetUser(c echo.Context) (uint64, error) {
	id, err := parseID(c, "id")
	if err != nil {
		return 0, err
	}
	if self, _ := actorFrom(c); self.UserID == id {
		return 0, fmt.Errorf("cannot modify your own account: %w", repository.ErrConflict)
	}
	return id, nil
}

// ListUsers filters by ?role and ?q (email or name).
func (h *AdminHandler) ListUsers(c echo.Context) error {
	f := repository.UserFilter{Query: c.QueryParam("q"), Page: pageFrom(c)}
	if s := c.QueryParam("role"); s != "" {
		role, ok := model.ParseRole(s)
		if !ok {
			return badRequest(c, "invalid role")
		}
		f.Role = role
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	users, total, err := h.Users.List(ctx, f)
	if err != nil {
		return fail(c, err)
	}
	return paged(c, users, f.Page, total)
}

func (h *AdminHandler) GetUser(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// UpdateRole changes a user's role. Existing sessions are revoked so the
// new role takes effect at the next login.
func (h *AdminHandler) UpdateRole(c echo.Context) error {
	id, err := targetUser(c)
	if err != nil {
		return fail(c, err)
	}
	var req roleReq
	if err := bindValid(c, &req); err != nil {
		return fail(c, err)
	}
	role, _ := model.ParseRole(req.Role)
	ctx, cancel := withTimeout(c)
	defer cancel()
	if err := h.Users.UpdateRole(ctx, id, role); err != nil {
		return fail(c, err)
	}
	if err := h.Tokens.RevokeAllForUser(ctx, id); err != nil {
		return fail(c, err)
	}
	return h.reply(ctx, c, id)
}

// SetActive enables or disables an account. Disabling revokes every
// refresh token of the user.
func (h *AdminHandler) SetActive(c echo.Context) error {
	id, err := targetUser(c)
	if err != nil {
		return fail(c, err)
	}
	var req activeReq
	if err := bindValid(c, &req); err != nil {
		return fail(c, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	if err := h.Users.SetActive(ctx, id, *req.IsActive); err != nil {
		return fail(c, err)
	}
	if !*req.IsActive {
		if err := h.Tokens.RevokeAllForUser(ctx, id); err != nil {
			return fail(c, err)
		}
	}
	return h.reply(ctx, c, id)
}

func (h *AdminHandler) reply(ctx context.Context, c echo.Context, id uint64) error {
	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// DeleteUser removes an account without active bookings or owned services.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	id, err := targetUser(c)
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	if err := h.Users.Delete(ctx, id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Stats is the control panel dashboard.
func (h *AdminHandler) Stats(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()
	bookings, err := h.Bookings.Stats(ctx)
	if err != nil {
		return fail(c, err)
	}
	users, err := h.Users.CountByRole(ctx)
	if err != nil {
		return fail(c, err)
	}
	total := 0
	for _, n := range users {
		total += n
	}
	return c.JSON(http.StatusOK, echo.Map{
		"bookings": bookings,
		"users":    echo.Map{"by_role": users, "total": total},
	})
}
