package models

import "time"

// User describes a tenant member with role-based access.
type User struct {
	BaseModel

	TenantID string  `gorm:"type:uuid;not null;uniqueIndex:idx_users_tenant_email,priority:1;index" json:"tenant_id"`
	Tenant   *Tenant `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`

	Email    string `gorm:"not null;uniqueIndex:idx_users_tenant_email,priority:2" json:"email"`
	Username string `gorm:"not null" json:"username"`
	Password string `gorm:"not null" json:"-"`

	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Avatar    string `json:"avatar"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	Roles []Role `gorm:"many2many:user_roles;" json:"roles,omitempty"`

	LastLoginAt *time.Time `json:"last_login_at"`

	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}
