package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"gorm.io/datatypes"

	mw "github.com/iliyamo/travel-booking/internal/middleware"
	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/repository"
)

// fakeContent implements the parts of contentStore the tests reach; other
// methods panic through the nil embedded interface.
type fakeContent struct {
	contentStore

	blogs    []model.Blog
	reviews  []model.Review
	settings map[string]model.Setting
	filter   repository.ReviewFilter
}

func (f *fakeContent) CreateBlog(_ context.Context, b *model.Blog) error {
	for _, existing := range f.blogs {
		if existing.Slug == b.Slug {
			return repository.ErrConflict
		}
	}
	b.ID = uint64(len(f.blogs) + 1)
	f.blogs = append(f.blogs, *b)
	return nil
}

func (f *fakeContent) GetBlogBySlug(_ context.Context, slug string, publishedOnly bool) (model.Blog, error) {
	for _, b := range f.blogs {
		if b.Slug == slug && (b.IsPublished || !publishedOnly) {
			return b, nil
		}
	}
	return model.Blog{}, repository.ErrNotFound
}

func (f *fakeContent) CreateReview(_ context.Context, rv *model.Review) error {
	rv.ID = uint64(len(f.reviews) + 1)
	f.reviews = append(f.reviews, *rv)
	return nil
}

func (f *fakeContent) ListReviews(_ context.Context, flt repository.ReviewFilter) ([]model.Review, int64, error) {
	f.filter = flt
	var out []model.Review
	for _, rv := range f.reviews {
		if rv.ServiceType == flt.ServiceType && rv.ServiceID == flt.ServiceID && (rv.IsApproved || !flt.ApprovedOnly) {
			out = append(out, rv)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeContent) Rating(context.Context, model.ServiceType, uint64) (repository.RatingSummary, error) {
	return repository.RatingSummary{Count: 1, Average: 4}, nil
}

func (f *fakeContent) ListSettings(_ context.Context, publicOnly bool) ([]model.Setting, error) {
	var out []model.Setting
	for _, s := range f.settings {
		if s.IsPublic || !publicOnly {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeContent) UpsertSetting(_ context.Context, key string, value datatypes.JSON, public bool) (model.Setting, error) {
	s := model.Setting{Key: key, Value: value, IsPublic: public}
	f.settings[key] = s
	return s, nil
}

type completions map[uint64]bool

func (c completions) HasCompleted(_ context.Context, userID uint64, _ model.ServiceType, _ uint64) (bool, error) {
	return c[userID], nil
}

func newContent() (*fakeContent, *echo.Echo) {
	f := &fakeContent{settings: map[string]model.Setting{}}
	h := &ContentHandler{Content: f, Bookings: completions{7: true}}
	e := newEcho()
	e.GET("/blogs/:slug", h.GetBlog)
	e.GET("/reviews", h.ListReviews)
	e.GET("/settings", h.PublicSettings)

	auth := e.Group("", mw.JWTAuth(testSecret))
	auth.POST("/reviews", h.CreateReview)
	auth.POST("/admin/blogs", h.CreateBlog)
	auth.PUT("/admin/settings/:key", h.PutSetting)
	return f, e
}

func TestCreateBlog(t *testing.T) {
	f, e := newContent()
	admin := bearerFor(t, 1, model.RoleAdmin)

	body := `{"slug":"Umrah-Guide-2026","is_published":true,"translations":{"EN":{"title":"Umrah guide","body":"..."},"ar":{"title":"دليل العمرة","body":"..."}}}`
	wantStatus(t, do(e, http.MethodPost, "/admin/blogs", body, admin), http.StatusCreated)
	if len(f.blogs) != 1 || f.blogs[0].Slug != "umrah-guide-2026" || f.blogs[0].AuthorID != 1 || len(f.blogs[0].Translations) != 2 {
		t.Fatalf("blogs = %+v", f.blogs)
	}
	wantStatus(t, do(e, http.MethodPost, "/admin/blogs", body, admin), http.StatusConflict)

	for _, bad := range []string{
		`{"slug":"has spaces","translations":{"en":{"title":"t","body":"b"}}}`,
		`{"slug":"ok","translations":{"de":{"title":"t","body":"b"}}}`,
		`{"slug":"ok","translations":{}}`,
	} {
		if rec := do(e, http.MethodPost, "/admin/blogs", bad, admin); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status %d", bad, rec.Code)
		}
	}

	rec := do(e, http.MethodGet, "/blogs/umrah-guide-2026", "", "", "Accept-Language", "ar-SA,ar;q=0.9")
	wantStatus(t, rec, http.StatusOK)
	var got dataResp[blogView]
	decode(t, rec, &got)
	if got.Dir != "rtl" || got.Data.Title != "دليل العمرة" {
		t.Fatalf("blog = %+v", got)
	}
}

func TestCreateReviewNeedsCompletedBooking(t *testing.T) {
	f, e := newContent()
	body := `{"service_type":"HOTEL","service_id":4,"rating":5,"comment":"  great stay "}`

	wantStatus(t, do(e, http.MethodPost, "/reviews", body, bearerFor(t, 8, model.RoleCustomer)), http.StatusForbidden)

	rec := do(e, http.MethodPost, "/reviews", body, bearerFor(t, 7, model.RoleCustomer))
	wantStatus(t, rec, http.StatusCreated)
	if rv := f.reviews[0]; rv.IsApproved || rv.Comment != "great stay" || rv.UserID != 7 {
		t.Fatalf("review = %+v", rv)
	}

	wantStatus(t, do(e, http.MethodPost, "/reviews", `{"service_type":"HOTEL","service_id":4,"rating":6}`,
		bearerFor(t, 7, model.RoleCustomer)), http.StatusBadRequest)
}

func TestListReviews(t *testing.T) {
	f, e := newContent()
	f.reviews = []model.Review{
		{ID: 1, ServiceType: model.ServiceCar, ServiceID: 2, Rating: 4, IsApproved: true},
		{ID: 2, ServiceType: model.ServiceCar, ServiceID: 2, Rating: 1},
	}

	wantStatus(t, do(e, http.MethodGet, "/reviews", "", ""), http.StatusBadRequest)
	wantStatus(t, do(e, http.MethodGet, "/reviews?service_type=car", "", ""), http.StatusBadRequest)

	rec := do(e, http.MethodGet, "/reviews?service_type=car&service_id=2", "", "")
	wantStatus(t, rec, http.StatusOK)
	var got struct {
		Items  []model.Review           `json:"items"`
		Rating repository.RatingSummary `json:"rating"`
	}
	decode(t, rec, &got)
	if len(got.Items) != 1 || got.Items[0].ID != 1 || got.Rating.Average != 4 {
		t.Fatalf("reviews = %+v", got)
	}
	if !f.filter.ApprovedOnly {
		t.Fatal("public listing must only show approved reviews")
	}
}

func TestSettings(t *testing.T) {
	f, e := newContent()
	admin := bearerFor(t, 1, model.RoleAdmin)

	wantStatus(t, do(e, http.MethodPut, "/admin/settings/Bad%20Key", `{"value":1}`, admin), http.StatusBadRequest)
	wantStatus(t, do(e, http.MethodPut, "/admin/settings/site.name", `{}`, admin), http.StatusBadRequest)

	wantStatus(t, do(e, http.MethodPut, "/admin/settings/site.name", `{"value":{"en":"Rihla"},"is_public":true}`, admin), http.StatusOK)
	wantStatus(t, do(e, http.MethodPut, "/admin/settings/smtp.host", `{"value":"mail.internal"}`, admin), http.StatusOK)
	if len(f.settings) != 2 {
		t.Fatalf("settings = %+v", f.settings)
	}

	rec := do(e, http.MethodGet, "/settings", "", "")
	wantStatus(t, rec, http.StatusOK)
	var got map[string]map[string]string
	decode(t, rec, &got)
	if len(got) != 1 || got["site.name"]["en"] != "Rihla" {
		t.Fatalf("public settings = %+v", got)
	}
}
