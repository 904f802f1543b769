package reports

import (
	"smartkheti_backend/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger.Named("ReportHandler")}
}

// RegisterRoutes mounts the public report routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/disease-trend/", h.diseaseTrend)
}

func (h *Handler) diseaseTrend(c *gin.Context) {
	report, err := h.service.DiseaseTrend(c.Request.Context(), c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Disease trend report generated successfully.", report)
}
