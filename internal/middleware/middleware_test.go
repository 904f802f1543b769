package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"smartkheti_backend/internal/common"
	"smartkheti_backend/internal/shared"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) GenerateAccessToken(s shared.TokenSubject) (string, time.Time, error) {
	args := m.Called(s)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockTokenService) GenerateRefreshToken(s shared.TokenSubject) (string, time.Time, error) {
	args := m.Called(s)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockTokenService) GenerateTokenPair(s shared.TokenSubject) (*shared.TokenPair, error) {
	args := m.Called(s)
	return args.Get(0).(*shared.TokenPair), args.Error(1)
}

func (m *MockTokenService) ValidateToken(token string) (*shared.Claims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Claims), args.Error(1)
}

func (m *MockTokenService) ParseRefreshToken(token string) (*shared.Claims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Claims), args.Error(1)
}

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	tokens := new(MockTokenService)
	userID := uuid.New()
	tokens.On("ValidateToken", "good").Return(&shared.Claims{UserID: userID, IsStaff: false}, nil)
	tokens.On("ValidateToken", "bad").Return(nil, errors.New("expired"))

	r := gin.New()
	r.GET("/me", AuthMiddleware(tokens, zap.NewNop()), func(c *gin.Context) {
		c.String(http.StatusOK, common.GetUserIDFromContext(c).String())
	})
	r.GET("/admin", AuthMiddleware(tokens, zap.NewNop()), StaffOnly(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := serve(r, http.MethodGet, "/me", "good")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID.String(), w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/me", "bad").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/me", "").Code)
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/admin", "good").Code)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Token good")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalAuth(t *testing.T) {
	tokens := new(MockTokenService)
	userID := uuid.New()
	tokens.On("ValidateToken", "good").Return(&shared.Claims{UserID: userID}, nil)
	tokens.On("ValidateToken", "bad").Return(nil, errors.New("expired"))

	r := gin.New()
	r.GET("/feed", OptionalAuth(tokens), func(c *gin.Context) {
		c.String(http.StatusOK, common.GetUserIDFromContext(c).String())
	})

	assert.Equal(t, userID.String(), serve(r, http.MethodGet, "/feed", "good").Body.String())
	assert.Equal(t, uuid.Nil.String(), serve(r, http.MethodGet, "/feed", "bad").Body.String())
	assert.Equal(t, uuid.Nil.String(), serve(r, http.MethodGet, "/feed", "").Body.String())
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler(zap.NewNop()))
	r.GET("/api-error", func(c *gin.Context) { _ = c.Error(common.ErrConflict) })
	r.GET("/plain-error", func(c *gin.Context) { _ = c.Error(errors.New("boom")) })

	assert.Equal(t, http.StatusConflict, serve(r, http.MethodGet, "/api-error", "").Code)
	assert.Equal(t, http.StatusInternalServerError, serve(r, http.MethodGet, "/plain-error", "").Code)

	w := serve(r, http.MethodGet, "/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestZapLogger_PropagatesRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(ZapLogger(zap.New(core)))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
	entries := logs.FilterMessage("Request handled").All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "req-123", entries[0].ContextMap()["request_id"])
	}
}
