package weather

import (
	"context"
	"errors"

	"smartkheti_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines saved location persistence.
type Repository interface {
	Create(ctx context.Context, location *SavedLocation) error
	FindByUser(ctx context.Context, userID uuid.UUID) ([]SavedLocation, error)
	// FindForUser returns the location only when it belongs to userID.
	FindForUser(ctx context.Context, id, userID uuid.UUID) (*SavedLocation, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

type gormRepository struct {
	db *gorm.DB
}

func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, location *SavedLocation) error {
	if err := r.db.WithContext(ctx).Omit("User").Create(location).Error; err != nil {
		if common.IsUniqueViolation(err) {
			return common.ErrConflict.WithDetails("You already have a saved location with this name.")
		}
		return err
	}
	return nil
}

func (r *gormRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]SavedLocation, error) {
	var locations []SavedLocation
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&locations).Error
	if err != nil {
		return nil, err
	}
	return locations, nil
}

func (r *gormRepository) FindForUser(ctx context.Context, id, userID uuid.UUID) (*SavedLocation, error) {
	var location SavedLocation
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&location).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Saved location not found.")
		}
		return nil, err
	}
	return &location, nil
}

func (r *gormRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&SavedLocation{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Saved location not found.")
	}
	return nil
}
