package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"golang.org/x/oauth2"

	"github.com/iliyamo/travel-booking/internal/config"
)

func TestGoogleDisabled(t *testing.T) {
	_, _, _, e := newAuth()
	wantStatus(t, do(e, http.MethodGet, "/google/login", "", ""), http.StatusNotFound)
}

func TestGoogleLoginSetsStateCookie(t *testing.T) {
	h, _, _, e := newAuth()
	h.Google = NewGoogleOAuth(config.GoogleOAuth{ClientID: "cid", ClientSecret: "cs", RedirectURL: "http://localhost/cb"})

	rec := do(e, http.MethodGet, "/google/login", "", "")
	wantStatus(t, rec, http.StatusFound)

	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(loc.Host, "google.com") || loc.Query().Get("client_id") != "cid" {
		t.Fatalf("location = %s", loc)
	}
	var state string
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == oauthStateCookie {
			state = ck.Value
		}
	}
	if state == "" || loc.Query().Get("state") != state {
		t.Fatalf("state cookie %q vs query %q", state, loc.Query().Get("state"))
	}
}

func googleStub(t *testing.T, profile googleProfile) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer at" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(profile)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func callback(h *AuthHandler, srv *httptest.Server) {
	h.Google = &GoogleOAuth{
		Conf: &oauth2.Config{
			ClientID:     "cid",
			ClientSecret: "cs",
			Endpoint:     oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"},
		},
		UserInfoURL: srv.URL + "/userinfo",
	}
}

func TestGoogleCallbackLinksAccount(t *testing.T) {
	h, users, _, e := newAuth()
	srv := googleStub(t, googleProfile{Subject: "g-1", Email: "g@example.com", EmailVerified: true, Name: "Gee"})
	callback(h, srv)

	rec := do(e, http.MethodGet, "/google/callback?state=s1&code=c1", "", "", "Cookie", oauthStateCookie+"=s1")
	wantStatus(t, rec, http.StatusOK)

	var resp authResp
	decode(t, rec, &resp)
	if resp.User.Email != "g@example.com" || resp.Access.Token == "" {
		t.Fatalf("resp = %+v", resp)
	}
	u, err := users.GetByEmail(context.Background(), "g@example.com")
	if err != nil || u.OAuthProvider == nil || *u.OAuthProvider != "google" {
		t.Fatalf("user = %+v err=%v", u, err)
	}
}

func TestGoogleCallbackRejects(t *testing.T) {
	h, _, _, e := newAuth()
	srv := googleStub(t, googleProfile{Subject: "g-2", Email: "u@example.com", EmailVerified: false})
	callback(h, srv)

	rec := do(e, http.MethodGet, "/google/callback?state=a&code=c", "", "", "Cookie", oauthStateCookie+"=b")
	wantStatus(t, rec, http.StatusBadRequest)

	rec = do(e, http.MethodGet, "/google/callback?state=a", "", "", "Cookie", oauthStateCookie+"=a")
	wantStatus(t, rec, http.StatusBadRequest)

	rec = do(e, http.MethodGet, "/google/callback?state=a&code=c", "", "", "Cookie", oauthStateCookie+"=a")
	wantStatus(t, rec, http.StatusUnauthorized)
}
