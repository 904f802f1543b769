package common

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetTokenFromContext returns the bearer token from the Authorization header, or "".
func GetTokenFromContext(c *gin.Context) string {
	parts := strings.Fields(c.GetHeader(AuthorizationHeader))
	if len(parts) != 2 || !strings.EqualFold(parts[0], AuthorizationTypeBearer) {
		return ""
	}
	return parts[1]
}

// GetUserIDFromContext returns the authenticated user ID or uuid.Nil.
func GetUserIDFromContext(c *gin.Context) uuid.UUID {
	val, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil
	}
	userID, ok := val.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return userID
}

// IsStaffFromContext reports whether the authenticated user is staff.
func IsStaffFromContext(c *gin.Context) bool {
	return c.GetBool(UserIsStaffKey)
}

// RequireUserID returns the authenticated user ID, responding 401 when absent.
func RequireUserID(c *gin.Context) (uuid.UUID, bool) {
	id := GetUserIDFromContext(c)
	if id == uuid.Nil {
		RespondWithError(c, ErrUnauthorized.WithDetails("Authentication credentials were not provided."))
		return uuid.Nil, false
	}
	return id, true
}
