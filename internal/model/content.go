package model

import (
	"time"

	"gorm.io/datatypes"
)

// Blog is a GORM model for the blogs table. Localized title and body live
// in BlogTranslation rows.
type Blog struct {
	ID           uint64            `gorm:"primaryKey" json:"id"`
	Slug         string            `gorm:"size:191;uniqueIndex" json:"slug"`
	AuthorID     uint64            `json:"author_id"`
	CoverURL     string            `gorm:"column:cover_url" json:"cover_url"`
	IsPublished  bool              `json:"is_published"`
	PublishedAt  *time.Time        `json:"published_at,omitempty"`
	Translations []BlogTranslation `gorm:"foreignKey:BlogID" json:"translations,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// BlogTranslation is one row of blog_translations.
type BlogTranslation struct {
	BlogID   uint64 `gorm:"primaryKey" json:"-"`
	Language string `gorm:"primaryKey;size:2" json:"language"`
	Title    string `json:"title"`
	Body     string `json:"body"`
}

// Review is a customer's rating of a service they completed a booking for.
type Review struct {
	ID          uint64      `gorm:"primaryKey" json:"id"`
	UserID      uint64      `json:"user_id"`
	ServiceType ServiceType `gorm:"size:16" json:"service_type"`
	ServiceID   uint64      `json:"service_id"`
	Rating      uint8       `json:"rating"`
	Comment     string      `json:"comment"`
	IsApproved  bool        `json:"is_approved"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Setting is a key/JSON value pair edited from the control panel. Public
// settings are exposed to the unauthenticated front end.
type Setting struct {
	ID        uint64         `gorm:"primaryKey" json:"-"`
	Key       string         `gorm:"column:key;size:128;uniqueIndex" json:"key"`
	Value     datatypes.JSON `json:"value"`
	IsPublic  bool           `json:"is_public"`
	CreatedAt time.Time      `json:"-"`
	UpdatedAt time.Time      `json:"updated_at"`
}
