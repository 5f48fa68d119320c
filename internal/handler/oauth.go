package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/iliyamo/travel-booking/internal/config"
	"github.com/iliyamo/travel-booking/internal/repository"
	"github.com/iliyamo/travel-booking/internal/utils"
)

const (
	oauthStateCookie = "oauth_state"
	googleUserInfo   = "https://openidconnect.googleapis.com/v1/userinfo"
)

// GoogleOAuth is the authorization code flow for "sign in with Google".
type GoogleOAuth struct {
	Conf        *oauth2.Config
	UserInfoURL string
}

func NewGoogleOAuth(cfg config.GoogleOAuth) *GoogleOAuth {
	return &GoogleOAuth{
		Conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		UserInfoURL: googleUserInfo,
	}
}

type googleProfile struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

// profile exchanges the code and fetches the signed-in user's profile.
func (g *GoogleOAuth) profile(ctx context.Context, code string) (googleProfile, error) {
	tok, err := g.Conf.Exchange(ctx, code)
	if err != nil {
		return googleProfile{}, fmt.Errorf("exchange: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.UserInfoURL, nil)
	if err != nil {
		return googleProfile{}, err
	}
	resp, err := g.Conf.Client(ctx, tok).Do(req)
	if err != nil {
		return googleProfile{}, fmt.Errorf("userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return googleProfile{}, fmt.Errorf("userinfo: status %d", resp.StatusCode)
	}
	var p googleProfile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return googleProfile{}, fmt.Errorf("userinfo: %w", err)
	}
	return p, nil
}

// GoogleLogin redirects to Google's consent page with a state cookie.
func (h *AuthHandler) GoogleLogin(c echo.Context) error {
	if h.Google == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "google sign-in disabled"})
	}
	state := utils.NewState()
	c.SetCookie(&http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   h.Cfg.IsProd(),
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusFound, h.Google.Conf.AuthCodeURL(state))
}

// GoogleCallback completes the flow and answers with the usual token pair.
func (h *AuthHandler) GoogleCallback(c echo.Context) error {
	if h.Google == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "google sign-in disabled"})
	}
	cookie, err := c.Cookie(oauthStateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != c.QueryParam("state") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid oauth state"})
	}
	c.SetCookie(&http.Cookie{Name: oauthStateCookie, Path: "/", MaxAge: -1})
	code := c.QueryParam("code")
	if code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	p, err := h.Google.profile(ctx, code)
	if err != nil {
		c.Logger().Warnf("google oauth: %v", err)
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "google sign-in failed"})
	}
	if p.Subject == "" || p.Email == "" || !p.EmailVerified {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "google account email not verified"})
	}
	u, err := h.Users.UpsertOAuth(ctx, "google", p.Subject, p.Email, p.Name)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email linked to another provider"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "link account failed"})
	}
	if !u.IsActive {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "account disabled"})
	}
	resp, err := h.issue(ctx, u)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	return c.JSON(http.StatusOK, resp)
}
