package models

import "time"

// Permission is a named capability assignable to roles.
type Permission struct {
	BaseModel

	TenantID string `gorm:"type:uuid;not null;index" json:"tenant_id"`

	Name        string `gorm:"not null" json:"name"`
	Resource    string `gorm:"not null;index" json:"resource"`
	Action      string `gorm:"not null" json:"action"`
	Description string `json:"description"`

	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}
