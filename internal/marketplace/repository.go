package marketplace

import (
	"context"
	"errors"
	"strings"

	"smartkheti_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines crop listing persistence.
type Repository interface {
	Create(ctx context.Context, listing *CropListing) error
	FindByID(ctx context.Context, id uuid.UUID) (*CropListing, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]CropListing, error)
	FindAll(ctx context.Context, search string) ([]CropListing, error)
	FindByFarmer(ctx context.Context, farmerID uuid.UUID) ([]CropListing, error)
	// Update saves listing fields. When images is non-nil the existing images are replaced
	// and their paths returned so the caller can remove the files.
	Update(ctx context.Context, listing *CropListing, images []CropImage) ([]string, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindAllForSync(ctx context.Context, offset, limit int) ([]CropListing, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM listing repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) withAssociations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Farmer").
		Preload("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") })
}

func (r *gormRepository) Create(ctx context.Context, listing *CropListing) error {
	for i := range listing.Images {
		if listing.Images[i].ID == uuid.Nil {
			listing.Images[i].ID = uuid.New()
		}
	}
	if err := r.db.WithContext(ctx).Omit("Farmer", "Category").Create(listing).Error; err != nil {
		return translateWriteError(err)
	}
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*CropListing, error) {
	var listing CropListing
	err := r.withAssociations(ctx).First(&listing, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Listing not found.")
		}
		return nil, err
	}
	return &listing, nil
}

// FindByIDs returns listings in the order of ids, skipping ids that no longer exist.
func (r *gormRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]CropListing, error) {
	if len(ids) == 0 {
		return []CropListing{}, nil
	}
	var found []CropListing
	if err := r.withAssociations(ctx).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]CropListing, len(found))
	for _, l := range found {
		byID[l.ID] = l
	}
	ordered := make([]CropListing, 0, len(found))
	for _, id := range ids {
		if l, ok := byID[id]; ok {
			ordered = append(ordered, l)
		}
	}
	return ordered, nil
}

// FindAll returns listings newest first, optionally filtered by a case-insensitive
// substring of crop name, location or description.
func (r *gormRepository) FindAll(ctx context.Context, search string) ([]CropListing, error) {
	query := r.withAssociations(ctx).Order("date_posted DESC")
	if term := strings.TrimSpace(search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		query = query.Where(
			"LOWER(crop_name) LIKE ? OR LOWER(location) LIKE ? OR LOWER(description) LIKE ?",
			like, like, like,
		)
	}
	var listings []CropListing
	if err := query.Find(&listings).Error; err != nil {
		return nil, err
	}
	return listings, nil
}

func (r *gormRepository) FindByFarmer(ctx context.Context, farmerID uuid.UUID) ([]CropListing, error) {
	var listings []CropListing
	err := r.withAssociations(ctx).
		Where("farmer_id = ?", farmerID).
		Order("date_posted DESC").
		Find(&listings).Error
	if err != nil {
		return nil, err
	}
	return listings, nil
}

func (r *gormRepository) Update(ctx context.Context, listing *CropListing, images []CropImage) ([]string, error) {
	var removed []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Farmer", "Category", "Images").Save(listing).Error; err != nil {
			return translateWriteError(err)
		}
		if images == nil {
			return nil
		}

		var old []CropImage
		if err := tx.Where("listing_id = ?", listing.ID).Find(&old).Error; err != nil {
			return err
		}
		if err := tx.Where("listing_id = ?", listing.ID).Delete(&CropImage{}).Error; err != nil {
			return err
		}
		for i := range images {
			images[i].ListingID = listing.ID
			if images[i].ID == uuid.Nil {
				images[i].ID = uuid.New()
			}
		}
		if len(images) > 0 {
			if err := tx.Create(&images).Error; err != nil {
				return err
			}
		}
		for _, img := range old {
			removed = append(removed, img.ImagePath)
		}
		listing.Images = images
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

func (r *gormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("listing_id = ?", id).Delete(&CropImage{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&CropListing{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return common.ErrNotFound.WithDetails("Listing not found.")
		}
		return nil
	})
}

// FindAllForSync pages through every listing for search reindexing.
func (r *gormRepository) FindAllForSync(ctx context.Context, offset, limit int) ([]CropListing, error) {
	var listings []CropListing
	err := r.withAssociations(ctx).
		Order("date_posted ASC").
		Offset(offset).
		Limit(limit).
		Find(&listings).Error
	if err != nil {
		return nil, err
	}
	return listings, nil
}

func translateWriteError(err error) error {
	if common.IsUniqueViolation(err) {
		return common.ErrConflict.WithDetails("A listing with this optional contact number already exists.")
	}
	return err
}
