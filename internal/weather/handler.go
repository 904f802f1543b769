package weather

import (
	"strconv"

	"smartkheti_backend/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.Named("WeatherHandler"),
	}
}

// RegisterRoutes mounts the weather routes; every route requires authentication.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	router.Use(authMW)
	router.POST("/forecast/", h.forecastFromBody)
	router.GET("/forecast/", h.forecastFromQuery)
	router.GET("/saved-locations/", h.listSavedLocations)
	router.POST("/saved-locations/", h.createSavedLocation)
	router.DELETE("/saved-locations/:id/", h.deleteSavedLocation)
	router.GET("/weather/saved/", h.forecastForSaved)
	router.GET("/test-location/", h.testLocation)
}

func (h *Handler) forecastFromBody(c *gin.Context) {
	var req ForecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	h.respondForecast(c, *req.Latitude, *req.Longitude)
}

func (h *Handler) forecastFromQuery(c *gin.Context) {
	details := map[string]string{}
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil || !validCoordinate(lat, 90) {
		details["lat"] = "A valid latitude between -90 and 90 is required."
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil || !validCoordinate(lon, 180) {
		details["lon"] = "A valid longitude between -180 and 180 is required."
	}
	if len(details) > 0 {
		common.RespondWithError(c, common.NewValidationAPIError(details))
		return
	}
	h.respondForecast(c, lat, lon)
}

// validCoordinate rejects NaN along with values outside [-limit, limit].
func validCoordinate(v, limit float64) bool {
	return v >= -limit && v <= limit
}

func (h *Handler) respondForecast(c *gin.Context, lat, lon float64) {
	forecast, err := h.service.Forecast(c.Request.Context(), lat, lon)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Forecast retrieved successfully.", forecast)
}

func (h *Handler) listSavedLocations(c *gin.Context) {
	userID, ok := common.RequireUserID(c)
	if !ok {
		return
	}
	locations, err := h.service.ListSavedLocations(c.Request.Context(), userID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	out := make([]SavedLocationResponse, len(locations))
	for i := range locations {
		out[i] = ToSavedLocationResponse(&locations[i])
	}
	common.RespondOK(c, "Saved locations retrieved successfully.", out)
}

func (h *Handler) createSavedLocation(c *gin.Context) {
	userID, ok := common.RequireUserID(c)
	if !ok {
		return
	}
	var req CreateSavedLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	location, err := h.service.CreateSavedLocation(c.Request.Context(), userID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Saved location created successfully.", ToSavedLocationResponse(location))
}

func (h *Handler) deleteSavedLocation(c *gin.Context) {
	userID, ok := common.RequireUserID(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid location ID format."))
		return
	}
	if err := h.service.DeleteSavedLocation(c.Request.Context(), userID, id); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondNoContent(c)
}

func (h *Handler) forecastForSaved(c *gin.Context) {
	userID, ok := common.RequireUserID(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Query("location_id"))
	if err != nil {
		common.RespondWithError(c, common.NewValidationAPIError(map[string]string{
			"location_id": "A valid location_id is required.",
		}))
		return
	}
	result, err := h.service.ForecastForSaved(c.Request.Context(), userID, id)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Forecast retrieved successfully.", result)
}

func (h *Handler) testLocation(c *gin.Context) {
	userID, ok := common.RequireUserID(c)
	if !ok {
		return
	}
	location, err := h.service.ProfileLocation(c.Request.Context(), userID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Profile location retrieved successfully.", location)
}
