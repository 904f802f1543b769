package user

import (
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"smartkheti_backend/internal/common"

	"github.com/google/uuid"
)

const (
	LanguageEnglish = "en"
	LanguageNepali  = "np"
)

// User is a farmer account identified by phone number.
type User struct {
	common.BaseModel
	Phone             string  `gorm:"type:varchar(20);uniqueIndex;not null"`
	PasswordHash      string  `gorm:"type:varchar(255);not null"`
	FirstName         string  `gorm:"type:varchar(100);not null"`
	LastName          string  `gorm:"type:varchar(100);not null"`
	CitizenshipNumber *string `gorm:"type:varchar(20);uniqueIndex"`
	Province          *string `gorm:"type:varchar(50)"`
	District          *string `gorm:"type:varchar(50)"`
	Municipality      *string `gorm:"type:varchar(100)"`
	WardNumber        *int
	ProfilePhoto      *string `gorm:"type:text"`
	PreferredLanguage string  `gorm:"type:varchar(10);not null;default:'np'"`
	IsStaff           bool    `gorm:"not null;default:false"`
	IsActive          bool    `gorm:"not null;default:true"`
	LastLoginAt       *time.Time
}

func (User) TableName() string {
	return "users"
}

func (u *User) GetID() uuid.UUID {
	return u.ID
}

func (u *User) GetIsStaff() bool {
	return u.IsStaff
}

// FullName is the display name used on listings.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) String() string {
	return fmt.Sprintf("%s %s (%s)", u.FirstName, u.LastName, u.Phone)
}

// OTPRequest is a one-time password issued for a password reset.
type OTPRequest struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Phone          string    `gorm:"type:varchar(20);index;not null"`
	Code           string    `gorm:"type:varchar(6);not null"`
	FailedAttempts int       `gorm:"not null;default:0"`
	CreatedAt      time.Time `gorm:"index;not null"`
}

func (OTPRequest) TableName() string {
	return "otp_requests"
}

// IsValid reports whether the code is still inside its expiry window at now.
func (o *OTPRequest) IsValid(now time.Time, expiry time.Duration) bool {
	return now.Before(o.CreatedAt.Add(expiry))
}

// RegisterRequest is bound from JSON or multipart form data.
type RegisterRequest struct {
	Phone             string                `json:"phone" form:"phone" binding:"required"`
	Password          string                `json:"password" form:"password" binding:"required,min=6,max=72"`
	FirstName         string                `json:"first_name" form:"first_name" binding:"required,max=100"`
	LastName          string                `json:"last_name" form:"last_name" binding:"required,max=100"`
	CitizenshipNumber string                `json:"citizenship_number" form:"citizenship_number" binding:"omitempty,max=20"`
	Province          string                `json:"province" form:"province" binding:"omitempty,max=50"`
	District          string                `json:"district" form:"district" binding:"omitempty,max=50"`
	Municipality      string                `json:"municipality" form:"municipality" binding:"omitempty,max=100"`
	WardNumber        *int                  `json:"ward_number" form:"ward_number" binding:"omitempty,gte=1"`
	PreferredLanguage string                `json:"preferred_language" form:"preferred_language" binding:"omitempty,oneof=en np"`
	ProfilePhoto      *multipart.FileHeader `json:"-" form:"profile_photo"`
}

// UpdateProfileRequest is a partial update; nil fields are left unchanged.
type UpdateProfileRequest struct {
	Password          *string               `json:"password" form:"password" binding:"omitempty,min=6,max=72"`
	FirstName         *string               `json:"first_name" form:"first_name" binding:"omitempty,max=100"`
	LastName          *string               `json:"last_name" form:"last_name" binding:"omitempty,max=100"`
	CitizenshipNumber *string               `json:"citizenship_number" form:"citizenship_number" binding:"omitempty,max=20"`
	Province          *string               `json:"province" form:"province" binding:"omitempty,max=50"`
	District          *string               `json:"district" form:"district" binding:"omitempty,max=50"`
	Municipality      *string               `json:"municipality" form:"municipality" binding:"omitempty,max=100"`
	WardNumber        *int                  `json:"ward_number" form:"ward_number" binding:"omitempty,gte=1"`
	PreferredLanguage *string               `json:"preferred_language" form:"preferred_language" binding:"omitempty,oneof=en np"`
	ProfilePhoto      *multipart.FileHeader `json:"-" form:"profile_photo"`
}

type LoginRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RequestOTPRequest struct {
	Phone string `json:"phone" binding:"required"`
}

type VerifyOTPRequest struct {
	Phone       string `json:"phone" binding:"required"`
	OTP         string `json:"otp" binding:"required,len=6,numeric"`
	NewPassword string `json:"new_password" binding:"required,min=6,max=72"`
}

// UserResponse is the public profile shape.
type UserResponse struct {
	ID                uuid.UUID `json:"id"`
	Phone             string    `json:"phone"`
	FirstName         string    `json:"first_name"`
	LastName          string    `json:"last_name"`
	CitizenshipNumber *string   `json:"citizenship_number"`
	Province          *string   `json:"province"`
	District          *string   `json:"district"`
	Municipality      *string   `json:"municipality"`
	WardNumber        *int      `json:"ward_number"`
	ProfilePhoto      *string   `json:"profile_photo"`
	PreferredLanguage string    `json:"preferred_language"`
}

// ToUserResponse converts a User, resolving the photo path through urlFor.
func ToUserResponse(u *User, urlFor func(string) string) UserResponse {
	resp := UserResponse{
		ID:                u.ID,
		Phone:             u.Phone,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		CitizenshipNumber: u.CitizenshipNumber,
		Province:          u.Province,
		District:          u.District,
		Municipality:      u.Municipality,
		WardNumber:        u.WardNumber,
		PreferredLanguage: u.PreferredLanguage,
	}
	if u.ProfilePhoto != nil && *u.ProfilePhoto != "" {
		photo := urlFor(*u.ProfilePhoto)
		resp.ProfilePhoto = &photo
	}
	return resp
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
