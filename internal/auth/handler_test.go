package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"smartkheti_backend/internal/common"
	"smartkheti_backend/internal/config"
	"smartkheti_backend/internal/shared"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockUserProvider struct {
	mock.Mock
}

func (m *MockUserProvider) GetTokenSubject(ctx context.Context, id uuid.UUID) (shared.TokenSubject, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(shared.TokenSubject), args.Error(1)
}

func setupAuthRouter(t *testing.T) (*gin.Engine, *JWTService, *MockUserProvider) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := newTestJWTService()
	users := new(MockUserProvider)
	h := NewHandler(users, svc, NewInMemoryBlocklistService(&config.Config{JWTRefreshTokenExpiry: time.Hour}), zap.NewNop())
	r := gin.New()
	h.RegisterRoutes(r.Group("/api/users"))
	return r, svc, users
}

func postJSON(r http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRefresh_IssuesNewAccessToken(t *testing.T) {
	r, svc, users := setupAuthRouter(t)
	subject := testSubject{id: uuid.New()}
	users.On("GetTokenSubject", mock.Anything, subject.id).Return(subject, nil)

	pair, err := svc.GenerateTokenPair(subject)
	require.NoError(t, err)

	w := postJSON(r, "/api/users/token/refresh/", RefreshTokenRequest{Refresh: pair.Refresh})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data AccessTokenResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	claims, err := svc.ValidateToken(resp.Data.Access)
	require.NoError(t, err)
	assert.Equal(t, subject.id, claims.UserID)
	users.AssertExpectations(t)
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	r, svc, _ := setupAuthRouter(t)
	access, _, err := svc.GenerateAccessToken(testSubject{id: uuid.New()})
	require.NoError(t, err)

	w := postJSON(r, "/api/users/token/refresh/", RefreshTokenRequest{Refresh: access})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefresh_MissingBody(t *testing.T) {
	r, _, _ := setupAuthRouter(t)
	w := postJSON(r, "/api/users/token/refresh/", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogout_RevokesRefreshToken(t *testing.T) {
	r, svc, users := setupAuthRouter(t)
	subject := testSubject{id: uuid.New()}
	users.On("GetTokenSubject", mock.Anything, subject.id).Return(subject, nil).Maybe()

	pair, err := svc.GenerateTokenPair(subject)
	require.NoError(t, err)

	w := postJSON(r, "/api/users/logout/", RefreshTokenRequest{Refresh: pair.Refresh})
	require.Equal(t, http.StatusNoContent, w.Code)

	w = postJSON(r, "/api/users/token/refresh/", RefreshTokenRequest{Refresh: pair.Refresh})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var apiErr common.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	assert.Equal(t, "Refresh token has been revoked.", apiErr.Details)
}

func TestRefresh_UnknownUser(t *testing.T) {
	r, svc, users := setupAuthRouter(t)
	subject := testSubject{id: uuid.New()}
	users.On("GetTokenSubject", mock.Anything, subject.id).Return(nil, common.ErrNotFound)

	pair, err := svc.GenerateTokenPair(subject)
	require.NoError(t, err)

	w := postJSON(r, "/api/users/token/refresh/", RefreshTokenRequest{Refresh: pair.Refresh})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
