package common

const (
	AuthorizationHeader     = "Authorization"
	AuthorizationTypeBearer = "Bearer"
	// UserIDKey holds the authenticated user's uuid.UUID.
	UserIDKey = "userID"
	// UserIsStaffKey holds the authenticated user's staff flag.
	UserIsStaffKey = "userIsStaff"
	// UserClaimsKey holds the full *shared.Claims.
	UserClaimsKey = "userClaims"
)
