package marketplace

import (
	"fmt"
	"math"
	"mime/multipart"
	"time"

	"smartkheti_backend/internal/category"
	"smartkheti_backend/internal/common"
	"smartkheti_backend/internal/user"

	"github.com/google/uuid"
)

// CropListing is a farmer's offer to sell a crop.
type CropListing struct {
	common.BaseModel
	FarmerID        uuid.UUID          `gorm:"type:uuid;not null;index"`
	Farmer          *user.User         `gorm:"foreignKey:FarmerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CropName        string             `gorm:"type:varchar(100);not null"`
	CategoryID      *uuid.UUID         `gorm:"type:uuid"`
	Category        *category.Category `gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	Quantity        string             `gorm:"type:varchar(50);not null"`
	Rate            float64            `gorm:"type:decimal(10,2);not null"`
	Location        string             `gorm:"type:varchar(100);not null"`
	ContactNumber   string             `gorm:"type:varchar(20);not null"`
	OptionalContact *string            `gorm:"type:varchar(20);uniqueIndex"`
	Description     string             `gorm:"type:text"`
	VideoPath       *string            `gorm:"type:text"`
	DatePosted      time.Time          `gorm:"not null;index"`
	Images          []CropImage        `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE;"`
}

func (CropListing) TableName() string {
	return "crop_listings"
}

// CropImage is one photo attached to a listing.
type CropImage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ListingID uuid.UUID `gorm:"type:uuid;not null;index"`
	ImagePath string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (CropImage) TableName() string {
	return "crop_images"
}

// FarmerName is "First Last" of the owning farmer, or "" when not loaded.
func (l *CropListing) FarmerName() string {
	if l.Farmer == nil {
		return ""
	}
	return l.Farmer.FullName()
}

// CategoryName returns the category name, or "" for uncategorised listings.
func (l *CropListing) CategoryName() string {
	if l.Category == nil {
		return ""
	}
	return l.Category.Name
}

// RoundRate rounds to the two decimal places stored by the database.
func RoundRate(rate float64) float64 {
	return math.Round(rate*100) / 100
}

// CreateListingRequest is bound from a multipart form.
type CreateListingRequest struct {
	CropName        string                  `form:"crop_name" binding:"required,max=100"`
	Category        string                  `form:"category" binding:"required,max=50"`
	Quantity        string                  `form:"quantity" binding:"required,max=50"`
	Rate            float64                 `form:"rate" binding:"required,gt=0,lt=100000000"`
	Location        string                  `form:"location" binding:"required,max=100"`
	ContactNumber   string                  `form:"contact_number" binding:"required"`
	OptionalContact string                  `form:"optional_contact"`
	Description     string                  `form:"description"`
	Images          []*multipart.FileHeader `form:"images" binding:"required,min=1"`
	Video           *multipart.FileHeader   `form:"video"`
}

// UpdateListingRequest is a partial update. New images replace all existing ones.
type UpdateListingRequest struct {
	CropName        *string                 `json:"crop_name" form:"crop_name" binding:"omitempty,max=100"`
	Category        *string                 `json:"category" form:"category" binding:"omitempty,max=50"`
	Quantity        *string                 `json:"quantity" form:"quantity" binding:"omitempty,max=50"`
	Rate            *float64                `json:"rate" form:"rate" binding:"omitempty,gt=0,lt=100000000"`
	Location        *string                 `json:"location" form:"location" binding:"omitempty,max=100"`
	ContactNumber   *string                 `json:"contact_number" form:"contact_number"`
	OptionalContact *string                 `json:"optional_contact" form:"optional_contact"`
	Description     *string                 `json:"description" form:"description"`
	Images          []*multipart.FileHeader `json:"-" form:"images"`
	Video           *multipart.FileHeader   `json:"-" form:"video"`
}

type ImageResponse struct {
	Image string `json:"image"`
}

// ListingResponse is the read shape consumed by the web and mobile clients.
type ListingResponse struct {
	ID              uuid.UUID       `json:"id"`
	Farmer          string          `json:"farmer"`
	CropName        string          `json:"crop_name"`
	Category        *string         `json:"category"`
	Quantity        string          `json:"quantity"`
	Rate            string          `json:"rate"`
	Location        string          `json:"location"`
	ContactNumber   string          `json:"contact_number"`
	OptionalContact *string         `json:"optional_contact"`
	Description     string          `json:"description"`
	Video           *string         `json:"video"`
	DatePosted      time.Time       `json:"date_posted"`
	Images          []ImageResponse `json:"images"`
}

// ToListingResponse converts a listing, resolving stored media paths through urlFor.
func ToListingResponse(l *CropListing, urlFor func(string) string) ListingResponse {
	resp := ListingResponse{
		ID:              l.ID,
		Farmer:          l.FarmerName(),
		CropName:        l.CropName,
		Quantity:        l.Quantity,
		Rate:            fmt.Sprintf("%.2f", l.Rate),
		Location:        l.Location,
		ContactNumber:   l.ContactNumber,
		OptionalContact: l.OptionalContact,
		Description:     l.Description,
		DatePosted:      l.DatePosted,
		Images:          make([]ImageResponse, 0, len(l.Images)),
	}
	if name := l.CategoryName(); name != "" {
		resp.Category = &name
	}
	if l.VideoPath != nil && *l.VideoPath != "" {
		video := urlFor(*l.VideoPath)
		resp.Video = &video
	}
	for _, img := range l.Images {
		resp.Images = append(resp.Images, ImageResponse{Image: urlFor(img.ImagePath)})
	}
	return resp
}
