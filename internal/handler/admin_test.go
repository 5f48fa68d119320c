package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	mw "github.com/iliyamo/travel-booking/internal/middleware"
	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/repository"
)

func (f *fakeUsers) List(_ context.Context, flt repository.UserFilter) ([]model.User, int, error) {
	var out []model.User
	for _, u := range f.users {
		if flt.Role != "" && u.Role != flt.Role {
			continue
		}
		if flt.Query != "" && !strings.Contains(u.Email, flt.Query) && !strings.Contains(u.FullName, flt.Query) {
			continue
		}
		out = append(out, u)
	}
	return out, len(out), nil
}

func (f *fakeUsers) UpdateRole(_ context.Context, id uint64, role model.Role) error {
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Role = role
	f.users[id] = u
	return nil
}

func (f *fakeUsers) SetActive(_ context.Context, id uint64, active bool) error {
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.IsActive = active
	f.users[id] = u
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id uint64) error {
	if _, ok := f.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUsers) CountByRole(context.Context) (map[model.Role]int, error) {
	out := map[model.Role]int{}
	for _, u := range f.users {
		out[u.Role]++
	}
	return out, nil
}

type fakeStats struct{ stats repository.BookingStats }

func (f fakeStats) Stats(context.Context) (repository.BookingStats, error) { return f.stats, nil }

func newAdmin() (*fakeUsers, *fakeTokens, *echo.Echo) {
	users, tokens := newFakeUsers(), newFakeTokens()
	users.add(model.User{Email: "root@example.com", Role: model.RoleAdmin, IsActive: true})
	users.add(model.User{Email: "guide@example.com", FullName: "Samir", Role: model.RoleTourGuide, IsActive: true})
	users.add(model.User{Email: "c@example.com", Role: model.RoleCustomer, IsActive: true})

	h := &AdminHandler{Users: users, Tokens: tokens, Bookings: fakeStats{repository.BookingStats{
		ByStatus: map[model.BookingStatus]int{model.StatusPending: 2},
		Revenue:  decimal.RequireFromString("420.50"),
		Total:    2,
	}}}
	e := newEcho()
	g := e.Group("/admin", mw.JWTAuth(testSecret), mw.RequireRole(model.RoleAdmin))
	g.GET("/users", h.ListUsers)
	g.GET("/users/:id", h.GetUser)
	g.PATCH("/users/:id/role", h.UpdateRole)
	g.PATCH("/users/:id/active", h.SetActive)
	g.DELETE("/users/:id", h.DeleteUser)
	g.GET("/stats", h.Stats)
	return users, tokens, e
}

func TestAdminRequiresAdminRole(t *testing.T) {
	_, _, e := newAdmin()
	wantStatus(t, do(e, http.MethodGet, "/admin/users", "", bearerFor(t, 3, model.RoleCustomer)), http.StatusForbidden)
	wantStatus(t, do(e, http.MethodGet, "/admin/users", "", ""), http.StatusUnauthorized)
}

func TestAdminCannotModifySelf(t *testing.T) {
	_, _, e := newAdmin()
	admin := bearerFor(t, 1, model.RoleAdmin)
	wantStatus(t, do(e, http.MethodPatch, "/admin/users/1/role", `{"role":"CUSTOMER"}`, admin), http.StatusConflict)
	wantStatus(t, do(e, http.MethodPatch, "/admin/users/1/active", `{"is_active":false}`, admin), http.StatusConflict)
	wantStatus(t, do(e, http.MethodDelete, "/admin/users/1", "", admin), http.StatusConflict)
}

func TestAdminUpdateRoleRevokesSessions(t *testing.T) {
	users, tokens, e := newAdmin()
	admin := bearerFor(t, 1, model.RoleAdmin)

	wantStatus(t, do(e, http.MethodPatch, "/admin/users/3/role", `{"role":"superuser"}`, admin), http.StatusBadRequest)

	rec := do(e, http.MethodPatch, "/admin/users/3/role", `{"role":"hotel_owner"}`, admin)
	wantStatus(t, rec, http.StatusOK)
	if users.users[3].Role != model.RoleHotelOwner {
		t.Fatalf("role = %s", users.users[3].Role)
	}
	if len(tokens.revokedAll) != 1 || tokens.revokedAll[0] != 3 {
		t.Fatalf("revoked = %v", tokens.revokedAll)
	}
}

func TestAdminSetActive(t *testing.T) {
	users, tokens, e := newAdmin()
	admin := bearerFor(t, 1, model.RoleAdmin)

	wantStatus(t, do(e, http.MethodPatch, "/admin/users/2/active", `{}`, admin), http.StatusBadRequest)

	wantStatus(t, do(e, http.MethodPatch, "/admin/users/2/active", `{"is_active":true}`, admin), http.StatusOK)
	if len(tokens.revokedAll) != 0 {
		t.Fatalf("enabling must not revoke sessions: %v", tokens.revokedAll)
	}

	wantStatus(t, do(e, http.MethodPatch, "/admin/users/2/active", `{"is_active":false}`, admin), http.StatusOK)
	if users.users[2].IsActive || len(tokens.revokedAll) != 1 {
		t.Fatalf("user = %+v revoked = %v", users.users[2], tokens.revokedAll)
	}

	wantStatus(t, do(e, http.MethodPatch, "/admin/users/42/active", `{"is_active":false}`, admin), http.StatusNotFound)
}

func TestAdminListAndDelete(t *testing.T) {
	users, _, e := newAdmin()
	admin := bearerFor(t, 1, model.RoleAdmin)

	rec := do(e, http.MethodGet, "/admin/users?role=tour_guide", "", admin)
	wantStatus(t, rec, http.StatusOK)
	var got pageResp[model.User]
	decode(t, rec, &got)
	if got.Total != 1 || got.Items[0].Email != "guide@example.com" {
		t.Fatalf("users = %+v", got.Items)
	}
	wantStatus(t, do(e, http.MethodGet, "/admin/users?role=pilot", "", admin), http.StatusBadRequest)

	wantStatus(t, do(e, http.MethodDelete, "/admin/users/3", "", admin), http.StatusNoContent)
	if _, ok := users.users[3]; ok {
		t.Fatal("user 3 still present")
	}
	wantStatus(t, do(e, http.MethodGet, "/admin/users/3", "", admin), http.StatusNotFound)
}

func TestAdminStats(t *testing.T) {
	_, _, e := newAdmin()
	rec := do(e, http.MethodGet, "/admin/stats", "", bearerFor(t, 1, model.RoleAdmin))
	wantStatus(t, rec, http.StatusOK)

	var got struct {
		Bookings repository.BookingStats `json:"bookings"`
		Users    struct {
			ByRole map[model.Role]int `json:"by_role"`
			Total  int                `json:"total"`
		} `json:"users"`
	}
	decode(t, rec, &got)
	if got.Users.Total != 3 || got.Users.ByRole[model.RoleTourGuide] != 1 {
		t.Fatalf("users = %+v", got.Users)
	}
	if got.Bookings.Total != 2 || !got.Bookings.Revenue.Equal(decimal.RequireFromString("420.5")) {
		t.Fatalf("bookings = %+v", got.Bookings)
	}
}
