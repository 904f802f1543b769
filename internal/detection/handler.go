package detection

import (
	"mime/multipart"
	"net/http"

	"smartkheti_backend/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type detectRequest struct {
	Image *multipart.FileHeader `form:"image" binding:"required"`
}

// Handler serves the /api/disease_detection endpoints.
type Handler struct {
	service        Service
	maxUploadBytes int64
	logger         *zap.Logger
}

func NewHandler(service Service, maxUploadBytes int64, logger *zap.Logger) *Handler {
	return &Handler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.Named("DetectionHandler"),
	}
}

// RegisterRoutes mounts detection routes. All of them require authentication.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW, staffMW gin.HandlerFunc) {
	router.Use(authMW)
	router.POST("/detect/", h.detect)
	router.GET("/detection-history/", h.history)
	router.GET("/admin/detections/", staffMW, h.adminList)
}

func (h *Handler) detect(c *gin.Context) {
	userID, ok := common.RequireUserID(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	var req detectRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Debug("Invalid detect request", zap.Error(err))
		common.RespondWithError(c, common.NewValidationAPIError(map[string]string{"image": "No file was submitted."}))
		return
	}
	result, err := h.service.Detect(c.Request.Context(), userID, req.Image)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Detection completed.", result)
}

func (h *Handler) history(c *gin.Context) {
	userID, ok := common.RequireUserID(c)
	if !ok {
		return
	}
	records, err := h.service.History(c.Request.Context(), userID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Detection history retrieved successfully.", h.toResponses(records))
}

func (h *Handler) adminList(c *gin.Context) {
	page, pageSize := common.GetPaginationParams(c)
	records, total, err := h.service.AdminAll(c.Request.Context(), page, pageSize)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Detections retrieved successfully.", h.toResponses(records), common.NewPagination(total, page, pageSize))
}

func (h *Handler) toResponses(records []DetectionRecord) []RecordResponse {
	out := make([]RecordResponse, len(records))
	for i := range records {
		out[i] = ToRecordResponse(&records[i], h.service.MediaURL)
	}
	return out
}
