package auth

import (
	"errors"
	"fmt"
	"time"

	"smartkheti_backend/internal/config"
	"smartkheti_backend/internal/shared"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const issuer = "smartkheti_backend"

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrWrongTokenType = errors.New("wrong token type")
)

// JWTService issues and validates HS256 access and refresh tokens.
type JWTService struct {
	secret        []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	logger        *zap.Logger
	now           func() time.Time
}

// NewJWTService creates a new JWT service.
func NewJWTService(cfg *config.Config, logger *zap.Logger) *JWTService {
	return &JWTService{
		secret:        []byte(cfg.JWTSecretKey),
		accessExpiry:  cfg.JWTAccessTokenExpiry,
		refreshExpiry: cfg.JWTRefreshTokenExpiry,
		logger:        logger.Named("JWTService"),
		now:           time.Now,
	}
}

var _ shared.TokenService = (*JWTService)(nil)

func (s *JWTService) sign(subject shared.TokenSubject, tokenType string, ttl time.Duration) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(ttl)
	claims := &shared.Claims{
		UserID:    subject.GetID(),
		IsStaff:   subject.GetIsStaff(),
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   subject.GetID().String(),
			ID:        uuid.NewString(),
		},
	}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		s.logger.Error("Failed to sign token", zap.String("token_type", tokenType), zap.Error(err))
		return "", time.Time{}, fmt.Errorf("could not sign %s token: %w", tokenType, err)
	}
	return tokenString, expiresAt, nil
}

func (s *JWTService) GenerateAccessToken(subject shared.TokenSubject) (string, time.Time, error) {
	return s.sign(subject, shared.TokenTypeAccess, s.accessExpiry)
}

func (s *JWTService) GenerateRefreshToken(subject shared.TokenSubject) (string, time.Time, error) {
	return s.sign(subject, shared.TokenTypeRefresh, s.refreshExpiry)
}

func (s *JWTService) GenerateTokenPair(subject shared.TokenSubject) (*shared.TokenPair, error) {
	access, accessExp, err := s.GenerateAccessToken(subject)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := s.GenerateRefreshToken(subject)
	if err != nil {
		return nil, err
	}
	return &shared.TokenPair{
		Access:           access,
		Refresh:          refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (s *JWTService) parse(tokenString, wantType string) (*shared.Claims, error) {
	claims := &shared.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		s.logger.Debug("Token rejected", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != wantType {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

// ValidateToken validates an access token and returns its claims.
func (s *JWTService) ValidateToken(tokenString string) (*shared.Claims, error) {
	return s.parse(tokenString, shared.TokenTypeAccess)
}

// ParseRefreshToken validates a refresh token and returns its claims.
func (s *JWTService) ParseRefreshToken(tokenString string) (*shared.Claims, error) {
	return s.parse(tokenString, shared.TokenTypeRefresh)
}
