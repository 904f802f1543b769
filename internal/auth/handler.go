package auth

import (
	"time"

	"smartkheti_backend/internal/common"
	"smartkheti_backend/internal/shared"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler serves token refresh and logout. Login lives with the user handler.
type Handler struct {
	users        shared.UserProvider
	tokenService shared.TokenService
	blocklist    TokenBlocklistService
	logger       *zap.Logger
}

func NewHandler(
	users shared.UserProvider,
	tokenService shared.TokenService,
	blocklist TokenBlocklistService,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		users:        users,
		tokenService: tokenService,
		blocklist:    blocklist,
		logger:       logger.Named("AuthHandler"),
	}
}

// RegisterRoutes mounts /token/refresh/ and /logout/ on the users group.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/token/refresh/", h.refreshToken)
	router.POST("/logout/", h.logout)
}

func (h *Handler) refreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}

	claims, err := h.validRefreshClaims(c, req.Refresh)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	subject, err := h.users.GetTokenSubject(c.Request.Context(), claims.UserID)
	if err != nil {
		h.logger.Warn("Refresh token subject not found", zap.String("userID", claims.UserID.String()), zap.Error(err))
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("User associated with refresh token not found."))
		return
	}

	access, expiresAt, err := h.tokenService.GenerateAccessToken(subject)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Token refreshed successfully.", AccessTokenResponse{
		Access:    access,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
	})
}

func (h *Handler) logout(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}

	claims, err := h.validRefreshClaims(c, req.Refresh)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	if err := h.blocklist.AddToBlocklist(c.Request.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
		common.RespondWithError(c, err)
		return
	}
	h.logger.Info("Refresh token revoked", zap.String("userID", claims.UserID.String()))
	common.RespondNoContent(c)
}

func (h *Handler) validRefreshClaims(c *gin.Context, token string) (*shared.Claims, error) {
	claims, err := h.tokenService.ParseRefreshToken(token)
	if err != nil {
		return nil, common.ErrUnauthorized.WithDetails("Invalid or expired refresh token.")
	}
	revoked, err := h.blocklist.IsBlocklisted(c.Request.Context(), claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, common.ErrUnauthorized.WithDetails("Refresh token has been revoked.")
	}
	return claims, nil
}
