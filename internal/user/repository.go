package user

import (
	"context"
	"errors"
	"time"

	"smartkheti_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for user and OTP persistence.
type Repository interface {
	Create(ctx context.Context, user *User) error
	FindByPhone(ctx context.Context, phone string) (*User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	Update(ctx context.Context, user *User) error
	CreateOTP(ctx context.Context, otp *OTPRequest) error
	LatestOTP(ctx context.Context, phone string) (*OTPRequest, error)
	IncrementOTPAttempts(ctx context.Context, id uuid.UUID) error
	DeleteOTPs(ctx context.Context, phone string) error
	PurgeOTPsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM user repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, user *User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return uniqueConflict(err)
	}
	return nil
}

func (r *gormRepository) FindByPhone(ctx context.Context, phone string) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("User not found with this phone number.")
		}
		return nil, err
	}
	return &u, nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("User not found.")
		}
		return nil, err
	}
	return &u, nil
}

func (r *gormRepository) Update(ctx context.Context, user *User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return uniqueConflict(err)
	}
	return nil
}

func (r *gormRepository) CreateOTP(ctx context.Context, otp *OTPRequest) error {
	if otp.ID == uuid.Nil {
		otp.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(otp).Error
}

// LatestOTP returns the most recently issued code for phone.
func (r *gormRepository) LatestOTP(ctx context.Context, phone string) (*OTPRequest, error) {
	var otp OTPRequest
	err := r.db.WithContext(ctx).Where("phone = ?", phone).Order("created_at DESC").First(&otp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("No OTP requested for this phone number.")
		}
		return nil, err
	}
	return &otp, nil
}

func (r *gormRepository) IncrementOTPAttempts(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&OTPRequest{}).Where("id = ?", id).
		UpdateColumn("failed_attempts", gorm.Expr("failed_attempts + ?", 1)).Error
}

func (r *gormRepository) DeleteOTPs(ctx context.Context, phone string) error {
	return r.db.WithContext(ctx).Where("phone = ?", phone).Delete(&OTPRequest{}).Error
}

// PurgeOTPsBefore deletes codes created before cutoff and returns how many were removed.
func (r *gormRepository) PurgeOTPsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&OTPRequest{})
	return result.RowsAffected, result.Error
}

func uniqueConflict(err error) error {
	if !common.IsUniqueViolation(err) {
		return err
	}
	return common.ErrConflict.WithDetails("User with this phone or citizenship number already exists.")
}
