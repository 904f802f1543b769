package detection

import (
	"context"
	"errors"
	"strings"
	"time"

	"smartkheti_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines disease catalog and detection history persistence.
type Repository interface {
	FindDisease(ctx context.Context, crop, name string) (*DiseaseInfo, error)
	UpsertDisease(ctx context.Context, info *DiseaseInfo) error
	CreateRecord(ctx context.Context, record *DetectionRecord) error
	FindRecordsByUser(ctx context.Context, userID uuid.UUID) ([]DetectionRecord, error)
	FindAllRecords(ctx context.Context, page, pageSize int) ([]DetectionRecord, int64, error)
	// FindRecordsBetween returns records in [start, end] newest first with the user
	// preloaded. A zero bound leaves that side open.
	FindRecordsBetween(ctx context.Context, start, end time.Time) ([]DetectionRecord, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM detection repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// FindDisease matches crop and name case-insensitively.
func (r *gormRepository) FindDisease(ctx context.Context, crop, name string) (*DiseaseInfo, error) {
	var info DiseaseInfo
	err := r.db.WithContext(ctx).
		Preload("Products").
		Where("LOWER(crop) = ? AND LOWER(name) = ?", strings.ToLower(crop), strings.ToLower(name)).
		First(&info).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Disease not found in catalog.")
		}
		return nil, err
	}
	return &info, nil
}

// UpsertDisease inserts or updates the entry matching crop and name and replaces its products.
func (r *gormRepository) UpsertDisease(ctx context.Context, info *DiseaseInfo) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing DiseaseInfo
		err := tx.Where("LOWER(crop) = ? AND LOWER(name) = ?", strings.ToLower(info.Crop), strings.ToLower(info.Name)).
			First(&existing).Error
		products := info.Products
		info.Products = nil
		switch {
		case err == nil:
			info.ID = existing.ID
			info.CreatedAt = existing.CreatedAt
			if err := tx.Save(info).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(info).Error; err != nil {
				return err
			}
		default:
			return err
		}
		if err := tx.Where("disease_id = ?", info.ID).Delete(&Product{}).Error; err != nil {
			return err
		}
		for i := range products {
			products[i].ID = uuid.New()
			products[i].DiseaseID = info.ID
		}
		if len(products) > 0 {
			if err := tx.Create(&products).Error; err != nil {
				return err
			}
		}
		info.Products = products
		return nil
	})
}

func (r *gormRepository) CreateRecord(ctx context.Context, record *DetectionRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Omit("User").Create(record).Error
}

func (r *gormRepository) FindRecordsByUser(ctx context.Context, userID uuid.UUID) ([]DetectionRecord, error) {
	var records []DetectionRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("detected_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *gormRepository) FindAllRecords(ctx context.Context, page, pageSize int) ([]DetectionRecord, int64, error) {
	var records []DetectionRecord
	var total int64
	if err := r.db.WithContext(ctx).Model(&DetectionRecord{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.WithContext(ctx).
		Order("detected_at DESC").
		Offset(common.Offset(page, pageSize)).
		Limit(pageSize).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *gormRepository) FindRecordsBetween(ctx context.Context, start, end time.Time) ([]DetectionRecord, error) {
	var records []DetectionRecord
	query := r.db.WithContext(ctx).Preload("User")
	if !start.IsZero() {
		query = query.Where("detected_at >= ?", start.UTC())
	}
	if !end.IsZero() {
		query = query.Where("detected_at <= ?", end.UTC())
	}
	err := query.Order("detected_at DESC").Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
