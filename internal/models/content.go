package models

import (
	"time"

	"gorm.io/datatypes"
)

// ContentStatus enumerates the publication lifecycle of a content page.
type ContentStatus string

const (
	ContentStatusDraft     ContentStatus = "draft"
	ContentStatusPublished ContentStatus = "published"
	ContentStatusArchived  ContentStatus = "archived"
)

// Content is a generic structured page owned by a tenant.
type Content struct {
	BaseModel

	TenantID string `gorm:"type:uuid;not null;uniqueIndex:idx_contents_tenant_slug,priority:1;index" json:"tenant_id"`

	Slug   string         `gorm:"not null;uniqueIndex:idx_contents_tenant_slug,priority:2" json:"slug"`
	Title  string         `gorm:"not null" json:"title"`
	Body   datatypes.JSON `json:"body"`
	Status ContentStatus  `gorm:"not null;default:draft;index" json:"status"`

	AuthorID    *string    `gorm:"type:uuid" json:"author_id"`
	Author      *User      `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	PublishedAt *time.Time `json:"published_at"`

	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}
