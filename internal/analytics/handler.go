package analytics

import (
	"context"
	"time"

	"smartkheti_backend/internal/common"
	"smartkheti_backend/internal/detection"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HistoryProvider returns a user's detection records, newest first.
type HistoryProvider interface {
	History(ctx context.Context, userID uuid.UUID) ([]detection.DetectionRecord, error)
}

// FromDetections converts stored records into aggregator input, oldest first so the
// trend window covers the latest detections.
func FromDetections(records []detection.DetectionRecord) []Record {
	out := make([]Record, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		out = append(out, Record{
			ID:              r.ID.String(),
			DetectedDisease: r.DetectedDisease,
			DetectedAt:      FormatTimestamp(r.DetectedAt),
		})
	}
	return out
}

type Handler struct {
	history HistoryProvider
	logger  *zap.Logger
	now     func() time.Time
}

func NewHandler(history HistoryProvider, logger *zap.Logger) *Handler {
	return &Handler{
		history: history,
		logger:  logger.Named("AnalyticsHandler"),
		now:     time.Now,
	}
}

func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	router.GET("/detections/", authMW, h.detectionSummary)
}

func (h *Handler) detectionSummary(c *gin.Context) {
	userID, ok := common.RequireUserID(c)
	if !ok {
		return
	}
	records, err := h.history.History(c.Request.Context(), userID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	summary := Summarize(FromDetections(records), h.now(), h.logger)
	common.RespondOK(c, "Detection analytics computed successfully.", summary)
}
