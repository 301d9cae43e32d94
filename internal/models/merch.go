package models

import (
	"time"

	"gorm.io/datatypes"
)

// MerchCategory groups products in the merchandise catalog.
type MerchCategory struct {
	BaseModel

	TenantID string `gorm:"type:uuid;not null;uniqueIndex:idx_merch_categories_tenant_slug,priority:1;index" json:"tenant_id"`

	Slug string `gorm:"not null;uniqueIndex:idx_merch_categories_tenant_slug,priority:2" json:"slug"`
	Name string `gorm:"not null" json:"name"`

	ParentID *string        `gorm:"type:uuid" json:"parent_id"`
	Parent   *MerchCategory `gorm:"foreignKey:ParentID" json:"parent,omitempty"`

	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}

// MerchProduct is a sellable catalog item with one or more variants.
type MerchProduct struct {
	BaseModel

	TenantID string `gorm:"type:uuid;not null;uniqueIndex:idx_merch_products_tenant_slug,priority:1;index" json:"tenant_id"`

	Slug        string `gorm:"not null;uniqueIndex:idx_merch_products_tenant_slug,priority:2" json:"slug"`
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`

	CategoryID *string        `gorm:"type:uuid;index" json:"category_id"`
	Category   *MerchCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`

	PriceCents int64  `gorm:"not null" json:"price_cents"`
	Currency   string `gorm:"not null;default:USD" json:"currency"`

	Variants []MerchVariant `gorm:"foreignKey:ProductID" json:"variants,omitempty"`

	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}

// MerchVariant is a purchasable variation of a product (size, colour, ...).
type MerchVariant struct {
	BaseModel

	TenantID  string `gorm:"type:uuid;not null;index" json:"tenant_id"`
	ProductID string `gorm:"type:uuid;not null;index" json:"product_id"`

	SKU     string         `gorm:"not null;uniqueIndex" json:"sku"`
	Options datatypes.JSON `json:"options"`

	PriceCents int64 `json:"price_cents"`
	Stock      int   `gorm:"default:0" json:"stock"`

	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}
