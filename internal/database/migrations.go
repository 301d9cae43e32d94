package database

import (
	"gorm.io/gorm"

	"github.com/pressfold/pressfold/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Tenant{},
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.Content{},
		&models.MediaAsset{},
		&models.NewsArticle{},
		&models.MerchCategory{},
		&models.MerchProduct{},
		&models.MerchVariant{},
		&models.AuditLog{},
	)
}

// SeedData provisions a default tenant with baseline roles on first boot.
// Subsequent runs are no-ops.
func SeedData(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Tenant{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	tenant := models.Tenant{
		Slug:   "default",
		Name:   "Default Tenant",
		Status: models.TenantStatusActive,
		Plan:   models.TenantPlanFree,
	}
	if err := db.Create(&tenant).Error; err != nil {
		return err
	}

	roles := []models.Role{
		{
			TenantID:    tenant.ID,
			Name:        "Administrator",
			Description: "Full tenant access",
			IsSystem:    true,
		},
		{
			TenantID:    tenant.ID,
			Name:        "Editor",
			Description: "Manage content, news, and catalog entries",
			IsSystem:    true,
		},
		{
			TenantID:    tenant.ID,
			Name:        "Viewer",
			Description: "Read-only access",
			IsSystem:    true,
		},
	}

	for _, role := range roles {
		if err := db.Where(models.Role{TenantID: tenant.ID, Name: role.Name}).Attrs(role).FirstOrCreate(&models.Role{}).Error; err != nil {
			return err
		}
	}

	return nil
}
