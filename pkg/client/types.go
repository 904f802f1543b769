package client

import (
	"smartkheti_backend/internal/analytics"
	"smartkheti_backend/internal/category"
	"smartkheti_backend/internal/common"
	"smartkheti_backend/internal/detection"
	"smartkheti_backend/internal/marketplace"
	"smartkheti_backend/internal/news"
	"smartkheti_backend/internal/reports"
	"smartkheti_backend/internal/shared"
	"smartkheti_backend/internal/user"
	"smartkheti_backend/internal/weather"
)

// Response and request shapes exchanged with the API. They alias the server's
// own types so callers outside this module can name them.
type (
	TokenPair          = shared.TokenPair
	User               = user.UserResponse
	Pagination         = common.Pagination
	Category           = category.CategoryResponse
	Listing            = marketplace.ListingResponse
	DetectionResult    = detection.DetectionResult
	DetectionRecord    = detection.RecordResponse
	HealthSummary      = analytics.Summary
	Forecast           = weather.Forecast
	SavedForecast      = weather.SavedForecast
	SavedLocation      = weather.SavedLocationResponse
	NewSavedLocation   = weather.CreateSavedLocationRequest
	ProfileLocation    = weather.ProfileLocation
	DiseaseTrendReport = reports.DiseaseTrend
	NewsFeed           = news.Feed
)
