package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"smartkheti_backend/internal/common"
	"smartkheti_backend/internal/config"
	"smartkheti_backend/internal/filestorage"
	"smartkheti_backend/internal/platform/crypto"
	"smartkheti_backend/internal/shared"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	otpDigits        = 6
	maxOTPAttempts   = 5
	profilePhotosDir = "profile_photos"
)

// Service defines farmer account operations.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*User, error)
	Login(ctx context.Context, phone, password string) (*shared.TokenPair, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*User, error)
	RequestOTP(ctx context.Context, phone string) error
	VerifyOTP(ctx context.Context, req VerifyOTPRequest) error
	PurgeExpiredOTPs(ctx context.Context) (int64, error)
	PhotoURL(relativePath string) string
}

// ServiceImplementation implements Service and shared.UserProvider.
type ServiceImplementation struct {
	repo         Repository
	tokenService shared.TokenService
	storage      filestorage.Storage
	otpSender    OTPSender
	cfg          *config.Config
	logger       *zap.Logger
	now          func() time.Time
}

var _ Service = (*ServiceImplementation)(nil)
var _ shared.UserProvider = (*ServiceImplementation)(nil)

func NewService(
	repo Repository,
	tokenService shared.TokenService,
	storage filestorage.Storage,
	otpSender OTPSender,
	cfg *config.Config,
	logger *zap.Logger,
) *ServiceImplementation {
	return &ServiceImplementation{
		repo:         repo,
		tokenService: tokenService,
		storage:      storage,
		otpSender:    otpSender,
		cfg:          cfg,
		logger:       logger.Named("UserService"),
		now:          time.Now,
	}
}

// Register creates a farmer account, storing the optional profile photo.
func (s *ServiceImplementation) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	phone, err := NormalizePhone(req.Phone, s.cfg.DefaultPhoneRegion)
	if err != nil {
		return nil, err
	}

	_, err = s.repo.FindByPhone(ctx, phone)
	if err == nil {
		return nil, common.ErrConflict.WithDetails("User with this phone number already exists.")
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing user by phone: %w", err)
	}

	hashedPassword, err := common.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	language := req.PreferredLanguage
	if language == "" {
		language = LanguageNepali
	}

	u := &User{
		Phone:             phone,
		PasswordHash:      hashedPassword,
		FirstName:         strings.TrimSpace(req.FirstName),
		LastName:          strings.TrimSpace(req.LastName),
		CitizenshipNumber: optional(req.CitizenshipNumber),
		Province:          optional(req.Province),
		District:          optional(req.District),
		Municipality:      optional(req.Municipality),
		WardNumber:        req.WardNumber,
		PreferredLanguage: language,
		IsActive:          true,
	}

	if req.ProfilePhoto != nil {
		path, err := s.storage.SaveUploadedFile(req.ProfilePhoto, profilePhotosDir, filestorage.KindImage)
		if err != nil {
			return nil, common.NewValidationAPIError(map[string]string{"profile_photo": err.Error()})
		}
		u.ProfilePhoto = &path
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if u.ProfilePhoto != nil {
			_ = s.storage.DeleteFile(*u.ProfilePhoto)
		}
		s.logger.Warn("Failed to create user", zap.Error(err), zap.String("phone", phone))
		return nil, err
	}

	s.logger.Info("User registered", zap.String("userID", u.ID.String()))
	return u, nil
}

// Login checks credentials and issues an access/refresh pair.
func (s *ServiceImplementation) Login(ctx context.Context, phone, password string) (*shared.TokenPair, error) {
	invalid := common.ErrUnauthorized.WithDetails("No active account found with the given credentials.")

	normalized, err := NormalizePhone(phone, s.cfg.DefaultPhoneRegion)
	if err != nil {
		return nil, invalid
	}
	u, err := s.repo.FindByPhone(ctx, normalized)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, invalid
		}
		return nil, fmt.Errorf("failed to find user for login: %w", err)
	}
	if !u.IsActive || !common.CheckPasswordHash(password, u.PasswordHash) {
		return nil, invalid
	}

	pair, err := s.tokenService.GenerateTokenPair(u)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	now := s.now().UTC()
	u.LastLoginAt = &now
	if err := s.repo.Update(ctx, u); err != nil {
		s.logger.Warn("Failed to record last login", zap.Error(err), zap.String("userID", u.ID.String()))
	}
	return pair, nil
}

func (s *ServiceImplementation) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateProfile applies a partial update. A new photo replaces the stored one.
func (s *ServiceImplementation) UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Password != nil && *req.Password != "" {
		hashed, err := common.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hashed
	}
	if req.FirstName != nil {
		u.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		u.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.CitizenshipNumber != nil {
		u.CitizenshipNumber = optional(*req.CitizenshipNumber)
	}
	if req.Province != nil {
		u.Province = optional(*req.Province)
	}
	if req.District != nil {
		u.District = optional(*req.District)
	}
	if req.Municipality != nil {
		u.Municipality = optional(*req.Municipality)
	}
	if req.WardNumber != nil {
		u.WardNumber = req.WardNumber
	}
	if req.PreferredLanguage != nil {
		u.PreferredLanguage = *req.PreferredLanguage
	}

	var oldPhoto string
	if req.ProfilePhoto != nil {
		path, err := s.storage.SaveUploadedFile(req.ProfilePhoto, profilePhotosDir, filestorage.KindImage)
		if err != nil {
			return nil, common.NewValidationAPIError(map[string]string{"profile_photo": err.Error()})
		}
		if u.ProfilePhoto != nil {
			oldPhoto = *u.ProfilePhoto
		}
		u.ProfilePhoto = &path
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	if oldPhoto != "" {
		if err := s.storage.DeleteFile(oldPhoto); err != nil {
			s.logger.Warn("Failed to delete replaced profile photo", zap.Error(err), zap.String("path", oldPhoto))
		}
	}
	return u, nil
}

// RequestOTP issues a code for phone. Unknown numbers are accepted silently so
// the endpoint does not reveal which phones are registered.
func (s *ServiceImplementation) RequestOTP(ctx context.Context, phone string) error {
	normalized, err := NormalizePhone(phone, s.cfg.DefaultPhoneRegion)
	if err != nil {
		return err
	}
	if _, err := s.repo.FindByPhone(ctx, normalized); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.logger.Info("OTP requested for unknown phone", zap.String("phone", normalized))
			return nil
		}
		return err
	}

	code, err := crypto.GenerateNumericCode(otpDigits)
	if err != nil {
		return fmt.Errorf("failed to generate otp: %w", err)
	}
	otp := &OTPRequest{Phone: normalized, Code: code, CreatedAt: s.now().UTC()}
	if err := s.repo.CreateOTP(ctx, otp); err != nil {
		return fmt.Errorf("failed to store otp: %w", err)
	}
	if err := s.otpSender.SendOTP(ctx, normalized, code); err != nil {
		return fmt.Errorf("failed to send otp: %w", err)
	}
	return nil
}

// VerifyOTP checks the latest code for the phone and sets the new password.
func (s *ServiceImplementation) VerifyOTP(ctx context.Context, req VerifyOTPRequest) error {
	phone, err := NormalizePhone(req.Phone, s.cfg.DefaultPhoneRegion)
	if err != nil {
		return err
	}

	otp, err := s.repo.LatestOTP(ctx, phone)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrBadRequest.WithDetails("Invalid OTP.")
		}
		return err
	}
	if otp.FailedAttempts >= maxOTPAttempts {
		return common.ErrBadRequest.WithDetails("Too many invalid attempts. Please request a new OTP.")
	}
	if otp.Code != req.OTP {
		if err := s.repo.IncrementOTPAttempts(ctx, otp.ID); err != nil {
			return fmt.Errorf("failed to record otp attempt: %w", err)
		}
		return common.ErrBadRequest.WithDetails("Invalid OTP.")
	}
	if !otp.IsValid(s.now().UTC(), s.cfg.OTPExpiry) {
		return common.ErrBadRequest.WithDetails("OTP has expired.")
	}

	u, err := s.repo.FindByPhone(ctx, phone)
	if err != nil {
		return err
	}
	hashed, err := common.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	u.PasswordHash = hashed
	if err := s.repo.Update(ctx, u); err != nil {
		return err
	}
	if err := s.repo.DeleteOTPs(ctx, phone); err != nil {
		s.logger.Warn("Failed to delete consumed OTPs", zap.Error(err), zap.String("phone", phone))
	}
	s.logger.Info("Password reset via OTP", zap.String("userID", u.ID.String()))
	return nil
}

// PurgeExpiredOTPs removes codes past their expiry window.
func (s *ServiceImplementation) PurgeExpiredOTPs(ctx context.Context) (int64, error) {
	return s.repo.PurgeOTPsBefore(ctx, s.now().UTC().Add(-s.cfg.OTPExpiry))
}

// GetTokenSubject implements shared.UserProvider.
func (s *ServiceImplementation) GetTokenSubject(ctx context.Context, id uuid.UUID) (shared.TokenSubject, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, common.ErrUnauthorized.WithDetails("User account is disabled.")
	}
	return u, nil
}

func (s *ServiceImplementation) PhotoURL(relativePath string) string {
	return s.storage.URL(relativePath)
}
