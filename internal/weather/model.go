package weather

import (
	"smartkheti_backend/internal/common"
	"smartkheti_backend/internal/user"

	"github.com/google/uuid"
)

// SavedLocation is a user-named point used to fetch forecasts without re-entering coordinates.
type SavedLocation struct {
	common.BaseModel
	UserID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_saved_location_user_name"`
	User         *user.User `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Name         string     `gorm:"type:varchar(100);not null;uniqueIndex:idx_saved_location_user_name"`
	Province     string     `gorm:"type:varchar(50)"`
	District     string     `gorm:"type:varchar(50)"`
	Municipality string     `gorm:"type:varchar(100)"`
	WardNumber   int
	Latitude     float64 `gorm:"not null"`
	Longitude    float64 `gorm:"not null"`
}

func (SavedLocation) TableName() string {
	return "saved_locations"
}

type ForecastRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" binding:"required,gte=-180,lte=180"`
}

type CreateSavedLocationRequest struct {
	Name         string   `json:"name" binding:"required,max=100"`
	Province     string   `json:"province" binding:"omitempty,max=50"`
	District     string   `json:"district" binding:"omitempty,max=50"`
	Municipality string   `json:"municipality" binding:"omitempty,max=100"`
	WardNumber   int      `json:"ward_number" binding:"omitempty,gte=1"`
	Latitude     *float64 `json:"latitude" binding:"required,gte=-90,lte=90"`
	Longitude    *float64 `json:"longitude" binding:"required,gte=-180,lte=180"`
}

type SavedLocationResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Province     string    `json:"province"`
	District     string    `json:"district"`
	Municipality string    `json:"municipality"`
	WardNumber   int       `json:"ward_number"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	CreatedAt    string    `json:"created_at"`
}

func ToSavedLocationResponse(l *SavedLocation) SavedLocationResponse {
	return SavedLocationResponse{
		ID:           l.ID,
		Name:         l.Name,
		Province:     l.Province,
		District:     l.District,
		Municipality: l.Municipality,
		WardNumber:   l.WardNumber,
		Latitude:     l.Latitude,
		Longitude:    l.Longitude,
		CreatedAt:    l.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// ProfileLocation echoes the administrative location stored on a user's profile.
type ProfileLocation struct {
	Phone        string  `json:"phone"`
	Province     *string `json:"province"`
	District     *string `json:"district"`
	Municipality *string `json:"municipality"`
	WardNumber   *int    `json:"ward_number"`
}
