package auth

import (
	"context"
	"time"

	"smartkheti_backend/internal/config"

	"github.com/patrickmn/go-cache"
)

// TokenBlocklistService records revoked refresh tokens by JTI.
type TokenBlocklistService interface {
	AddToBlocklist(ctx context.Context, jti string, expiresAt time.Time) error
	IsBlocklisted(ctx context.Context, jti string) (bool, error)
}

// InMemoryBlocklistService keeps revoked JTIs in a go-cache until the token would have expired.
type InMemoryBlocklistService struct {
	cache *cache.Cache
}

// NewInMemoryBlocklistService creates the blocklist. Entries never outlive the refresh token lifetime.
func NewInMemoryBlocklistService(cfg *config.Config) *InMemoryBlocklistService {
	cleanup := cfg.BlocklistCleanupInterval
	if cleanup <= 0 {
		cleanup = 30 * time.Minute
	}
	return &InMemoryBlocklistService{
		cache: cache.New(cfg.JWTRefreshTokenExpiry, cleanup),
	}
}

var _ TokenBlocklistService = (*InMemoryBlocklistService)(nil)

func (s *InMemoryBlocklistService) AddToBlocklist(_ context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	s.cache.Set(jti, struct{}{}, ttl)
	return nil
}

func (s *InMemoryBlocklistService) IsBlocklisted(_ context.Context, jti string) (bool, error) {
	_, found := s.cache.Get(jti)
	return found, nil
}
