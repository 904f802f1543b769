package auth

// RefreshTokenRequest carries a refresh token for refresh and logout.
type RefreshTokenRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// AccessTokenResponse is returned by the refresh endpoint.
type AccessTokenResponse struct {
	Access    string `json:"access"`
	ExpiresAt string `json:"expires_at"`
}
