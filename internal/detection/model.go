package detection

import (
	"time"

	"smartkheti_backend/internal/common"
	"smartkheti_backend/internal/user"

	"github.com/google/uuid"
)

// DiseaseInfo is the catalog entry for one crop condition, including the healthy state.
type DiseaseInfo struct {
	common.BaseModel
	Name          string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_disease_crop_name"`
	Crop          string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_disease_crop_name"`
	ShortRemedy   string    `gorm:"type:text"`
	Treatment     string    `gorm:"type:text"`
	RecheckAdvice string    `gorm:"type:text"`
	IsHealthy     bool      `gorm:"not null;default:false"`
	Products      []Product `gorm:"foreignKey:DiseaseID;constraint:OnDelete:CASCADE;"`
}

func (DiseaseInfo) TableName() string {
	return "disease_infos"
}

// Product is a remedy product recommended for a disease.
type Product struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	DiseaseID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"type:varchar(100);not null"`
	ImagePath string    `gorm:"type:text"`
}

func (Product) TableName() string {
	return "disease_products"
}

// DetectionRecord stores one classification run by a user.
type DetectionRecord struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID          uuid.UUID  `gorm:"type:uuid;not null;index"`
	User            *user.User `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	ImagePath       string     `gorm:"type:text;not null"`
	DetectedDisease string     `gorm:"type:varchar(100);not null"`
	DetectedAt      time.Time  `gorm:"not null;index"`
}

func (DetectionRecord) TableName() string {
	return "detection_records"
}

const (
	healthyMessage = "Your crop looks healthy! Keep monitoring regularly."
	unknownMessage = "No detailed info found for this disease."
)

type ProductResponse struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

// DetectionResult is one of three shapes: healthy, known disease, or unknown label.
type DetectionResult struct {
	DetectedDisease string            `json:"detected_disease"`
	Crop            string            `json:"crop"`
	Message         string            `json:"message,omitempty"`
	ShortRemedy     string            `json:"short_remedy,omitempty"`
	Treatment       string            `json:"treatment,omitempty"`
	RecheckAdvice   string            `json:"recheck_advice,omitempty"`
	Products        []ProductResponse `json:"products,omitempty"`
	Confidence      float32           `json:"confidence"`
}

type RecordResponse struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	DetectedDisease string    `json:"detected_disease"`
	DetectedAt      time.Time `json:"detected_at"`
	Image           string    `json:"image"`
}

func ToRecordResponse(r *DetectionRecord, urlFor func(string) string) RecordResponse {
	return RecordResponse{
		ID:              r.ID,
		UserID:          r.UserID,
		DetectedDisease: r.DetectedDisease,
		DetectedAt:      r.DetectedAt,
		Image:           urlFor(r.ImagePath),
	}
}
