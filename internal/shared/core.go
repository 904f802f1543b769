package shared

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims is the JWT payload for both access and refresh tokens.
type Claims struct {
	UserID    uuid.UUID `json:"user_id"`
	IsStaff   bool      `json:"is_staff"`
	TokenType string    `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenPair is returned by login. Field names follow the mobile/web clients.
type TokenPair struct {
	Access           string    `json:"access"`
	Refresh          string    `json:"refresh"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// TokenService defines the JWT operations used by handlers and middleware.
type TokenService interface {
	GenerateAccessToken(subject TokenSubject) (string, time.Time, error)
	GenerateRefreshToken(subject TokenSubject) (string, time.Time, error)
	GenerateTokenPair(subject TokenSubject) (*TokenPair, error)
	// ValidateToken validates an access token.
	ValidateToken(tokenString string) (*Claims, error)
	// ParseRefreshToken validates a refresh token.
	ParseRefreshToken(tokenString string) (*Claims, error)
}
