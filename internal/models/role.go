package models

import "time"

// Role groups permissions within a tenant.
type Role struct {
	BaseModel

	TenantID string `gorm:"type:uuid;not null;index" json:"tenant_id"`

	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	IsSystem    bool   `gorm:"default:false" json:"is_system"`

	Permissions []Permission `gorm:"many2many:role_permissions;" json:"permissions,omitempty"`

	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}
