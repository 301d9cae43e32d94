package models

import (
	"time"

	"gorm.io/datatypes"
)

// TenantStatus enumerates tenant lifecycle states.
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "ACTIVE"
	TenantStatusSuspended TenantStatus = "SUSPENDED"
	TenantStatusPending   TenantStatus = "PENDING"
	TenantStatusArchived  TenantStatus = "ARCHIVED"
)

// TenantPlan enumerates subscription plans.
type TenantPlan string

const (
	TenantPlanFree       TenantPlan = "FREE"
	TenantPlanBasic      TenantPlan = "BASIC"
	TenantPlanPro        TenantPlan = "PRO"
	TenantPlanEnterprise TenantPlan = "ENTERPRISE"
)

// Tenant is the root of the multi-tenant hierarchy. Every content entity
// belongs to exactly one tenant. Deleting a tenant is a soft marker and is
// only permitted once it owns no active users, content, products, or articles.
type Tenant struct {
	BaseModel

	Slug   string       `gorm:"uniqueIndex;not null" json:"slug"`
	Name   string       `gorm:"not null" json:"name"`
	Status TenantStatus `gorm:"not null;default:PENDING;index" json:"status"`
	Plan   TenantPlan   `gorm:"not null;default:FREE" json:"plan"`

	Settings datatypes.JSON `json:"settings"`

	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`

	Users    []User         `gorm:"foreignKey:TenantID" json:"users,omitempty"`
	Contents []Content      `gorm:"foreignKey:TenantID" json:"contents,omitempty"`
	Articles []NewsArticle  `gorm:"foreignKey:TenantID" json:"articles,omitempty"`
	Products []MerchProduct `gorm:"foreignKey:TenantID" json:"products,omitempty"`
}
