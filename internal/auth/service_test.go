package auth

import (
	"context"
	"testing"
	"time"

	"smartkheti_backend/internal/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testSubject struct {
	id    uuid.UUID
	staff bool
}

func (s testSubject) GetID() uuid.UUID { return s.id }
func (s testSubject) GetIsStaff() bool { return s.staff }

func newTestJWTService() *JWTService {
	return NewJWTService(&config.Config{
		JWTSecretKey:          "test-secret",
		JWTAccessTokenExpiry:  20 * time.Minute,
		JWTRefreshTokenExpiry: 24 * time.Hour,
	}, zap.NewNop())
}

func TestJWTService_AccessTokenRoundTrip(t *testing.T) {
	svc := newTestJWTService()
	subject := testSubject{id: uuid.New(), staff: true}

	token, expiresAt, err := svc.GenerateAccessToken(subject)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(20*time.Minute), expiresAt, 5*time.Second)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, subject.id, claims.UserID)
	assert.True(t, claims.IsStaff)
	assert.NotEmpty(t, claims.ID)
}

func TestJWTService_TokenTypesAreNotInterchangeable(t *testing.T) {
	svc := newTestJWTService()
	pair, err := svc.GenerateTokenPair(testSubject{id: uuid.New()})
	require.NoError(t, err)

	_, err = svc.ValidateToken(pair.Refresh)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	_, err = svc.ParseRefreshToken(pair.Access)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	claims, err := svc.ParseRefreshToken(pair.Refresh)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestJWTService_RejectsExpiredAndForeignTokens(t *testing.T) {
	svc := newTestJWTService()
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, _, err := svc.GenerateAccessToken(testSubject{id: uuid.New()})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewJWTService(&config.Config{JWTSecretKey: "other", JWTAccessTokenExpiry: time.Minute}, zap.NewNop())
	foreign, _, err := other.GenerateAccessToken(testSubject{id: uuid.New()})
	require.NoError(t, err)
	_, err = svc.ValidateToken(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestInMemoryBlocklistService(t *testing.T) {
	ctx := context.Background()
	bl := NewInMemoryBlocklistService(&config.Config{JWTRefreshTokenExpiry: time.Hour})

	require.NoError(t, bl.AddToBlocklist(ctx, "live", time.Now().Add(time.Minute)))
	require.NoError(t, bl.AddToBlocklist(ctx, "already-expired", time.Now().Add(-time.Minute)))

	revoked, err := bl.IsBlocklisted(ctx, "live")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = bl.IsBlocklisted(ctx, "already-expired")
	require.NoError(t, err)
	assert.False(t, revoked)
}
