package marketplace

import (
	"net/http"

	"smartkheti_backend/internal/common"
	"smartkheti_backend/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler serves the /api/marketplace listing endpoints.
type Handler struct {
	service        Service
	maxUploadBytes int64
	logger         *zap.Logger
}

func NewHandler(service Service, cfg *config.Config, logger *zap.Logger) *Handler {
	return &Handler{
		service:        service,
		maxUploadBytes: cfg.MaxUploadBytes(),
		logger:         logger.Named("MarketplaceHandler"),
	}
}

// RegisterRoutes mounts listing routes on the marketplace group.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	router.GET("/list/", h.listListings)
	router.POST("/list/", authMW, h.createListing)

	router.GET("/listings/my/", authMW, h.myListings)
	router.GET("/listings/:id/", h.getListing)
	router.PUT("/listings/:id/", authMW, h.updateListing)
	router.DELETE("/listings/:id/", authMW, h.deleteListing)
}

func (h *Handler) toResponses(listings []CropListing) []ListingResponse {
	out := make([]ListingResponse, len(listings))
	for i := range listings {
		out[i] = ToListingResponse(&listings[i], h.service.MediaURL)
	}
	return out
}

func (h *Handler) listListings(c *gin.Context) {
	listings, err := h.service.ListListings(c.Request.Context(), c.Query("searchquery"))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Listings retrieved successfully.", h.toResponses(listings))
}

func (h *Handler) myListings(c *gin.Context) {
	farmerID, ok := common.RequireUserID(c)
	if !ok {
		return
	}
	listings, err := h.service.MyListings(c.Request.Context(), farmerID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Listings retrieved successfully.", h.toResponses(listings))
}

func (h *Handler) getListing(c *gin.Context) {
	id, ok := parseListingID(c)
	if !ok {
		return
	}
	listing, err := h.service.GetListing(c.Request.Context(), id)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Listing retrieved successfully.", ToListingResponse(listing, h.service.MediaURL))
}

func (h *Handler) createListing(c *gin.Context) {
	farmerID, ok := common.RequireUserID(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	var req CreateListingRequest
	if err := c.ShouldBindWith(&req, binding.FormMultipart); err != nil {
		h.logger.Debug("Invalid create listing request", zap.Error(err))
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	listing, err := h.service.CreateListing(c.Request.Context(), farmerID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Listing created successfully.", ToListingResponse(listing, h.service.MediaURL))
}

func (h *Handler) updateListing(c *gin.Context) {
	farmerID, ok := common.RequireUserID(c)
	if !ok {
		return
	}
	id, ok := parseListingID(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	var req UpdateListingRequest
	if err := c.ShouldBind(&req); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	listing, err := h.service.UpdateListing(c.Request.Context(), id, farmerID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Listing updated successfully.", ToListingResponse(listing, h.service.MediaURL))
}

func (h *Handler) deleteListing(c *gin.Context) {
	farmerID, ok := common.RequireUserID(c)
	if !ok {
		return
	}
	id, ok := parseListingID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteListing(c.Request.Context(), id, farmerID); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondNoContent(c)
}

func parseListingID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid listing ID format."))
		return uuid.Nil, false
	}
	return id, true
}
