package client

import (
	"context"
	"net/http"
	"time"

	"smartkheti_backend/internal/analytics"

	"go.uber.org/zap"
)

// Analyze summarises detection history locally. history is newest first, as
// returned by DetectionAPI.History.
func Analyze(history []DetectionRecord, now time.Time, logger *zap.Logger) HealthSummary {
	records := make([]analytics.Record, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		r := history[i]
		records = append(records, analytics.Record{
			ID:              r.ID.String(),
			DetectedDisease: r.DetectedDisease,
			DetectedAt:      analytics.FormatTimestamp(r.DetectedAt),
		})
	}
	return analytics.Summarize(records, now, logger)
}

// AnalyticsSummary fetches the summary computed by the server.
func (c *Client) AnalyticsSummary(ctx context.Context) (*HealthSummary, error) {
	var out HealthSummary
	if err := c.Do(ctx, http.MethodGet, "/analytics/detections/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
