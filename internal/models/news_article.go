package models

import "time"

// NewsArticle is a dated editorial entry owned by a tenant.
type NewsArticle struct {
	BaseModel

	TenantID string `gorm:"type:uuid;not null;uniqueIndex:idx_news_tenant_slug,priority:1;index" json:"tenant_id"`

	Slug    string `gorm:"not null;uniqueIndex:idx_news_tenant_slug,priority:2" json:"slug"`
	Title   string `gorm:"not null" json:"title"`
	Summary string `json:"summary"`
	Body    string `json:"body"`

	AuthorID    *string    `gorm:"type:uuid" json:"author_id"`
	PublishedAt *time.Time `gorm:"index" json:"published_at"`

	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}
