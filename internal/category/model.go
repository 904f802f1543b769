package category

import (
	"time"

	"smartkheti_backend/internal/common"

	"github.com/google/uuid"
)

// Category groups crop listings, e.g. "Vegetables" or "Grains".
type Category struct {
	common.BaseModel
	Name string `gorm:"type:varchar(50);not null;uniqueIndex:idx_categories_name"`
	Slug string `gorm:"type:varchar(60);not null;uniqueIndex:idx_categories_slug"`
}

func (Category) TableName() string {
	return "categories"
}

type CategoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

func ToCategoryResponse(category *Category) CategoryResponse {
	return CategoryResponse{
		ID:        category.ID,
		Name:      category.Name,
		Slug:      category.Slug,
		CreatedAt: category.CreatedAt,
	}
}

// CreateCategoryRequest is used by staff to add a category. The slug is derived from the name when omitted.
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,max=50"`
	Slug string `json:"slug" binding:"omitempty,max=60"`
}
