package news

import (
	"errors"
	"net/http"

	"smartkheti_backend/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger.Named("NewsHandler")}
}

func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/nepal/", h.nepal)
}

// nepal responds with the feed itself; its status field reports empty results.
func (h *Handler) nepal(c *gin.Context) {
	feed, err := h.service.Latest(c.Request.Context())
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			common.RespondWithError(c, common.ErrServiceUnavailable.WithDetails("News is not configured on this server."))
			return
		}
		common.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, feed)
}
