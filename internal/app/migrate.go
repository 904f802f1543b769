package app

import (
	"context"
	"fmt"

	"smartkheti_backend/internal/category"
	"smartkheti_backend/internal/config"
	"smartkheti_backend/internal/detection"
	"smartkheti_backend/internal/marketplace"
	"smartkheti_backend/internal/user"
	"smartkheti_backend/internal/weather"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Models lists every persisted type in dependency order.
func Models() []interface{} {
	return []interface{}{
		&user.User{},
		&user.OTPRequest{},
		&category.Category{},
		&marketplace.CropListing{},
		&marketplace.CropImage{},
		&detection.DiseaseInfo{},
		&detection.Product{},
		&detection.DetectionRecord{},
		&weather.SavedLocation{},
	}
}

// Migrate runs AutoMigrate and loads the disease catalog file, if any.
func Migrate(ctx context.Context, db *gorm.DB, cfg *config.Config, logger *zap.Logger) error {
	if err := db.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migrating schema: %w", err)
	}
	logger.Info("Database schema migrated")

	if _, err := detection.SeedCatalog(ctx, detection.NewGORMRepository(db), cfg.DiseaseCatalogPath, logger); err != nil {
		return fmt.Errorf("seeding disease catalog: %w", err)
	}
	return nil
}
