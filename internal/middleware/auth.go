package middleware

import (
	"smartkheti_backend/internal/common"
	"smartkheti_backend/internal/shared"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthMiddleware requires a valid Bearer access token.
func AuthMiddleware(tokenService shared.TokenService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(common.AuthorizationHeader) == "" {
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Authentication credentials were not provided."))
			return
		}
		tokenString := common.GetTokenFromContext(c)
		if tokenString == "" {
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Authorization header format must be 'Bearer <token>'."))
			return
		}

		claims, err := tokenService.ValidateToken(tokenString)
		if err != nil {
			logger.Debug("Token validation failed", zap.Error(err))
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Given token not valid for any token type."))
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth attaches the user when a valid token is present and never rejects.
func OptionalAuth(tokenService shared.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString := common.GetTokenFromContext(c); tokenString != "" {
			if claims, err := tokenService.ValidateToken(tokenString); err == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

// StaffOnly rejects authenticated users without the staff flag. Must run after AuthMiddleware.
func StaffOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !common.IsStaffFromContext(c) {
			common.RespondWithError(c, common.ErrForbidden.WithDetails("You do not have permission to perform this action."))
			return
		}
		c.Next()
	}
}

// GetUserClaimsFromContext returns the claims stored by AuthMiddleware, or nil.
func GetUserClaimsFromContext(c *gin.Context) *shared.Claims {
	val, exists := c.Get(common.UserClaimsKey)
	if !exists {
		return nil
	}
	claims, _ := val.(*shared.Claims)
	return claims
}

func setClaims(c *gin.Context, claims *shared.Claims) {
	c.Set(common.UserIDKey, claims.UserID)
	c.Set(common.UserIsStaffKey, claims.IsStaff)
	c.Set(common.UserClaimsKey, claims)
}
