package models

import "time"

// MediaAsset records an uploaded file. The binary itself lives in object
// storage; only the descriptor is persisted here.
type MediaAsset struct {
	BaseModel

	TenantID string `gorm:"type:uuid;not null;index" json:"tenant_id"`

	FileName    string `gorm:"not null" json:"file_name"`
	ContentType string `gorm:"not null" json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
	StorageKey  string `gorm:"not null;uniqueIndex" json:"storage_key"`

	UploadedByID *string `gorm:"type:uuid" json:"uploaded_by_id"`

	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}
