package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/datatypes"

	mw "github.com/iliyamo/travel-booking/internal/middleware"
	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/repository"
)

type contentStore interface {
	ListBlogs(ctx context.Context, publishedOnly bool, page repository.Page) ([]model.Blog, int64, error)
	GetBlogBySlug(ctx context.Context, slug string, publishedOnly bool) (model.Blog, error)
	CreateBlog(ctx context.Context, b *model.Blog) error
	UpdateBlog(ctx context.Context, b *model.Blog) error
	DeleteBlog(ctx context.Context, id uint64) error
	CreateReview(ctx context.Context, rv *model.Review) error
	ListReviews(ctx context.Context, f repository.ReviewFilter) ([]model.Review, int64, error)
	Rating(ctx context.Context, st model.ServiceType, serviceID uint64) (repository.RatingSummary, error)
	SetReviewApproved(ctx context.Context, id uint64, approved bool) error
	DeleteReview(ctx context.Context, id uint64) error
	ListSettings(ctx context.Context, publicOnly bool) ([]model.Setting, error)
	UpsertSetting(ctx context.Context, key string, value datatypes.JSON, public bool) (model.Setting, error)
	DeleteSetting(ctx context.Context, key string) error
}

type completionChecker interface {
	HasCompleted(ctx context.Context, userID uint64, st model.ServiceType, serviceID uint64) (bool, error)
}

// ContentHandler serves blogs, reviews and site settings.
type ContentHandler struct {
	Content  contentStore
	Bookings completionChecker
}

func NewContentHandler(c *repository.ContentRepo, b *repository.BookingRepo) *ContentHandler {
	return &ContentHandler{Content: c, Bookings: b}
}

// ----- blogs -----

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

type blogTrReq struct {
	Title string `json:"title" validate:"required,max=191"`
	Body  string `json:"body" validate:"required"`
}

type blogReq struct {
	Slug         string               `json:"slug" validate:"required,max=191"`
	CoverURL     string               `json:"cover_url" validate:"omitempty,url,max=512"`
	IsPublished  bool                 `json:"is_published"`
	Translations map[string]blogTrReq `json:"translations" validate:"dive,keys,lang,endkeys"`
}

func (r blogReq) blog() (model.Blog, error) {
	slug := strings.ToLower(strings.TrimSpace(r.Slug))
	if !slugPattern.MatchString(slug) {
		return model.Blog{}, invalid("slug must be lowercase words separated by dashes")
	}
	b := model.Blog{Slug: slug, CoverURL: r.CoverURL, IsPublished: r.IsPublished}
	for lang, t := range normalizeLangs(r.Translations) {
		b.Translations = append(b.Translations, model.BlogTranslation{Language: lang, Title: t.Title, Body: t.Body})
	}
	return b, nil
}

// ListBlogs lists published posts with the title in the request language.
func (h *ContentHandler) ListBlogs(c echo.Context) error {
	page := pageFrom(c)
	ctx, cancel := withTimeout(c)
	defer cancel()
	blogs, total, err := h.Content.ListBlogs(ctx, true, page)
	if err != nil {
		return fail(c, err)
	}
	lang := mw.Lang(c)
	return paged(c, mapSlice(blogs, func(b model.Blog) blogView { return blogOf(b, lang, false) }), page, int(total))
}

func (h *ContentHandler) GetBlog(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()
	b, err := h.Content.GetBlogBySlug(ctx, c.Param("slug"), true)
	if err != nil {
		return fail(c, err)
	}
	return localized(c, blogOf(b, mw.Lang(c), true))
}

// AdminListBlogs includes drafts and every translation.
func (h *ContentHandler) AdminListBlogs(c echo.Context) error {
	page := pageFrom(c)
	ctx, cancel := withTimeout(c)
	defer cancel()
	blogs, total, err := h.Content.ListBlogs(ctx, false, page)
	if err != nil {
		return fail(c, err)
	}
	return paged(c, blogs, page, int(total))
}

func (h *ContentHandler) CreateBlog(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	var req blogReq
	if err := bindValid(c, &req); err != nil {
		return fail(c, err)
	}
	b, err := req.blog()
	if err != nil {
		return fail(c, err)
	}
	if err := requireTranslations(len(b.Translations)); err != nil {
		return fail(c, err)
	}
	b.AuthorID = actor.UserID
	ctx, cancel := withTimeout(c)
	defer cancel()
	if err := h.Content.CreateBlog(ctx, &b); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *ContentHandler) UpdateBlog(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req blogReq
	if err := bindValid(c, &req); err != nil {
		return fail(c, err)
	}
	b, err := req.blog()
	if err != nil {
		return fail(c, err)
	}
	b.ID = id
	ctx, cancel := withTimeout(c)
	defer cancel()
	if err := h.Content.UpdateBlog(ctx, &b); err != nil {
		return fail(c, err)
	}
	updated, err := h.Content.GetBlogBySlug(ctx, b.Slug, false)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *ContentHandler) DeleteBlog(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	if err := h.Content.DeleteBlog(ctx, id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ----- reviews -----

type reviewReq struct {
	ServiceType string `json:"service_type" validate:"required,service_type"`
	ServiceID   uint64 `json:"service_id" validate:"required"`
	Rating      uint8  `json:"rating" validate:"required,min=1,max=5"`
	Comment     string `json:"comment" validate:"max=2000"`
}

// reviewTarget reads ?service_type and ?service_id; both or neither.
func reviewTarget(c echo.Context) (model.ServiceType, uint64, error) {
	rawType, rawID := c.QueryParam("service_type"), c.QueryParam("service_id")
	if rawType == "" && rawID == "" {
		return "", 0, nil
	}
	st, ok := model.ParseServiceType(rawType)
	if !ok {
		return "", 0, invalid("invalid service_type")
	}
	id, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil || id == 0 {
		return "", 0, invalid("invalid service_id")
	}
	return st, id, nil
}

// ListReviews returns approved reviews of a service with the rating
// summary.
func (h *ContentHandler) ListReviews(c echo.Context) error {
	st, id, err := reviewTarget(c)
	if err != nil {
		return fail(c, err)
	}
	if st == "" {
		return badRequest(c, "service_type and service_id required")
	}
	f := repository.ReviewFilter{ServiceType: st, ServiceID: id, ApprovedOnly: true, Page: pageFrom(c)}
	ctx, cancel := withTimeout(c)
	defer cancel()
	reviews, total, err := h.Content.ListReviews(ctx, f)
	if err != nil {
		return fail(c, err)
	}
	rating, err := h.Content.Rating(ctx, st, id)
	if err != nil {
		return fail(c, err)
	}
	if reviews == nil {
		reviews = []model.Review{}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items": reviews, "page": f.Page.Page, "page_size": f.Page.PageSize,
		"total": total, "rating": rating,
	})
}

// CreateReview accepts a review only from a customer with a COMPLETED
// booking of the service. Reviews wait for moderation.
func (h *ContentHandler) CreateReview(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	var req reviewReq
	if err := bindValid(c, &req); err != nil {
		return fail(c, err)
	}
	st, _ := model.ParseServiceType(req.ServiceType)
	ctx, cancel := withTimeout(c)
	defer cancel()
	done, err := h.Bookings.HasCompleted(ctx, actor.UserID, st, req.ServiceID)
	if err != nil {
		return fail(c, err)
	}
	if !done {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only customers with a completed booking can review"})
	}
	rv := model.Review{
		UserID: actor.UserID, ServiceType: st, ServiceID: req.ServiceID,
		Rating: req.Rating, Comment: strings.TrimSpace(req.Comment),
	}
	if err := h.Content.CreateReview(ctx, &rv); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, rv)
}

// AdminListReviews supports ?approved=true|false and the service filter.
func (h *ContentHandler) AdminListReviews(c echo.Context) error {
	st, id, err := reviewTarget(c)
	if err != nil {
		return fail(c, err)
	}
	f := repository.ReviewFilter{ServiceType: st, ServiceID: id, Page: pageFrom(c)}
	f.ApprovedOnly = c.QueryParam("approved") == "true"
	ctx, cancel := withTimeout(c)
	defer cancel()
	reviews, total, err := h.Content.ListReviews(ctx, f)
	if err != nil {
		return fail(c, err)
	}
	return paged(c, reviews, f.Page, int(total))
}

type moderateReq struct {
	IsApproved *bool `json:"is_approved" validate:"required"`
}

func (h *ContentHandler) ModerateReview(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req moderateReq
	if err := bindValid(c, &req); err != nil {
		return fail(c, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	if err := h.Content.SetReviewApproved(ctx, id, *req.IsApproved); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "is_approved": *req.IsApproved})
}

func (h *ContentHandler) DeleteReview(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	if err := h.Content.DeleteReview(ctx, id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ----- settings -----

var settingKey = regexp.MustCompile(`^[a-z0-9_.-]{1,128}$`)

type settingReq struct {
	Value    json.RawMessage `json:"value" validate:"required"`
	IsPublic bool            `json:"is_public"`
}

// PublicSettings returns public settings as a key → value object.
func (h *ContentHandler) PublicSettings(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()
	settings, err := h.Content.ListSettings(ctx, true)
	if err != nil {
		return fail(c, err)
	}
	out := make(map[string]datatypes.JSON, len(settings))
	for _, s := range settings {
		out[s.Key] = s.Value
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ContentHandler) AdminSettings(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()
	settings, err := h.Content.ListSettings(ctx, false)
	if err != nil {
		return fail(c, err)
	}
	if settings == nil {
		settings = []model.Setting{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": settings})
}

// PutSetting creates or replaces :key. The value must be valid JSON.
func (h *ContentHandler) PutSetting(c echo.Context) error {
	key := c.Param("key")
	if !settingKey.MatchString(key) {
		return badRequest(c, "invalid key")
	}
	var req settingReq
	if err := bindValid(c, &req); err != nil {
		return fail(c, err)
	}
	if !json.Valid(req.Value) {
		return badRequest(c, "value must be JSON")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	s, err := h.Content.UpsertSetting(ctx, key, datatypes.JSON(req.Value), req.IsPublic)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *ContentHandler) DeleteSetting(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()
	if err := h.Content.DeleteSetting(ctx, c.Param("key")); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
