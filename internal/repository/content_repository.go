package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/iliyamo/travel-booking/internal/model"
)

// ContentRepo backs the control panel content (blogs, reviews, settings)
// with GORM.
type ContentRepo struct{ DB *gorm.DB }

func NewContentRepo(db *gorm.DB) *ContentRepo { return &ContentRepo{DB: db} }

func gormErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConflict
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrConflict
	}
	return err
}

// ListBlogs returns one page of blogs, newest first, with translations.
func (r *ContentRepo) ListBlogs(ctx context.Context, publishedOnly bool, page Page) ([]model.Blog, int64, error) {
	q := r.DB.WithContext(ctx).Model(&model.Blog{})
	if publishedOnly {
		q = q.Where("is_published = ?", true)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	p := page.Normalize()
	var blogs []model.Blog
	err := q.Preload("Translations").
		Order("COALESCE(published_at, created_at) DESC").Order("id DESC").
		Limit(p.PageSize).Offset(p.Offset()).
		Find(&blogs).Error
	return blogs, total, err
}

// GetBlogBySlug loads a blog. Unpublished blogs are hidden when
// publishedOnly is set.
func (r *ContentRepo) GetBlogBySlug(ctx context.Context, slug string, publishedOnly bool) (model.Blog, error) {
	q := r.DB.WithContext(ctx).Preload("Translations").Where("slug = ?", slug)
	if publishedOnly {
		q = q.Where("is_published = ?", true)
	}
	var b model.Blog
	err := q.First(&b).Error
	return b, gormErr(err)
}

// CreateBlog inserts a blog with its translations. A taken slug yields
// ErrConflict.
func (r *ContentRepo) CreateBlog(ctx context.Context, b *model.Blog) error {
	if b.IsPublished && b.PublishedAt == nil {
		now := time.Now().UTC()
		b.PublishedAt = &now
	}
	return gormErr(r.DB.WithContext(ctx).Create(b).Error)
}

// UpdateBlog saves the base columns and upserts the given translations.
func (r *ContentRepo) UpdateBlog(ctx context.Context, b *model.Blog) error {
	return gormErr(r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current model.Blog
		if err := tx.First(&current, b.ID).Error; err != nil {
			return err
		}
		if b.IsPublished && current.PublishedAt == nil {
			now := time.Now().UTC()
			b.PublishedAt = &now
		} else if b.IsPublished {
			b.PublishedAt = current.PublishedAt
		}
		if err := tx.Model(&current).Select("slug", "cover_url", "is_published", "published_at").
			Updates(map[string]any{
				"slug":         b.Slug,
				"cover_url":    b.CoverURL,
				"is_published": b.IsPublished,
				"published_at": b.PublishedAt,
			}).Error; err != nil {
			return err
		}
		for i := range b.Translations {
			b.Translations[i].BlogID = b.ID
		}
		if len(b.Translations) > 0 {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "blog_id"}, {Name: "language"}},
				DoUpdates: clause.AssignmentColumns([]string{"title", "body"}),
			}).Create(&b.Translations).Error; err != nil {
				return err
			}
		}
		return nil
	}))
}

// DeleteBlog removes a blog; translations cascade.
func (r *ContentRepo) DeleteBlog(ctx context.Context, id uint64) error {
	res := r.DB.WithContext(ctx).Delete(&model.Blog{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ReviewFilter narrows review listings.
type ReviewFilter struct {
	ServiceType  model.ServiceType
	ServiceID    uint64
	ApprovedOnly bool
	Page         Page
}

// CreateReview inserts a review. A second review of the same service by the
// same user yields ErrConflict.
func (r *ContentRepo) CreateReview(ctx context.Context, rv *model.Review) error {
	return gormErr(r.DB.WithContext(ctx).Create(rv).Error)
}

// ListReviews returns one page of reviews and the total count.
func (r *ContentRepo) ListReviews(ctx context.Context, f ReviewFilter) ([]model.Review, int64, error) {
	q := r.DB.WithContext(ctx).Model(&model.Review{})
	if f.ServiceType != "" {
		q = q.Where("service_type = ?", f.ServiceType)
	}
	if f.ServiceID != 0 {
		q = q.Where("service_id = ?", f.ServiceID)
	}
	if f.ApprovedOnly {
		q = q.Where("is_approved = ?", true)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	p := f.Page.Normalize()
	var out []model.Review
	err := q.Order("created_at DESC").Order("id DESC").Limit(p.PageSize).Offset(p.Offset()).Find(&out).Error
	return out, total, err
}

// RatingSummary is the approved-review aggregate of one service.
type RatingSummary struct {
	Count   int64   `json:"count"`
	Average float64 `json:"average"`
}

// Rating aggregates approved reviews of a service.
func (r *ContentRepo) Rating(ctx context.Context, st model.ServiceType, serviceID uint64) (RatingSummary, error) {
	var s RatingSummary
	err := r.DB.WithContext(ctx).Model(&model.Review{}).
		Select("COUNT(*) AS count, COALESCE(AVG(rating), 0) AS average").
		Where("service_type = ? AND service_id = ? AND is_approved = ?", st, serviceID, true).
		Scan(&s).Error
	return s, err
}

// SetReviewApproved moderates a review.
func (r *ContentRepo) SetReviewApproved(ctx context.Context, id uint64, approved bool) error {
	res := r.DB.WithContext(ctx).Model(&model.Review{}).Where("id = ?", id).Update("is_approved", approved)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := r.DB.WithContext(ctx).Model(&model.Review{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
	}
	return nil
}

// DeleteReview removes a review.
func (r *ContentRepo) DeleteReview(ctx context.Context, id uint64) error {
	res := r.DB.WithContext(ctx).Delete(&model.Review{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListSettings returns every setting, or only the public ones.
func (r *ContentRepo) ListSettings(ctx context.Context, publicOnly bool) ([]model.Setting, error) {
	q := r.DB.WithContext(ctx).Order("`key`")
	if publicOnly {
		q = q.Where("is_public = ?", true)
	}
	var out []model.Setting
	err := q.Find(&out).Error
	return out, err
}

// UpsertSetting creates or replaces the value of key.
func (r *ContentRepo) UpsertSetting(ctx context.Context, key string, value datatypes.JSON, public bool) (model.Setting, error) {
	s := model.Setting{Key: key, Value: value, IsPublic: public}
	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "is_public", "updated_at"}),
	}).Create(&s).Error
	if err != nil {
		return s, err
	}
	err = r.DB.WithContext(ctx).Where("`key` = ?", key).First(&s).Error
	return s, gormErr(err)
}

// DeleteSetting removes a setting by key.
func (r *ContentRepo) DeleteSetting(ctx context.Context, key string) error {
	res := r.DB.WithContext(ctx).Where("`key` = ?", key).Delete(&model.Setting{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
