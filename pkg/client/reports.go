package client

import (
	"context"
	"net/http"
	"net/url"
)

// DiseaseTrend fetches the disease-trend report, retrying transient failures.
// Dates are YYYY-MM-DD; pass both or neither.
func (c *Client) DiseaseTrend(ctx context.Context, startDate, endDate string) (*DiseaseTrendReport, error) {
	path := "/reports/disease-trend/"
	if startDate != "" || endDate != "" {
		path += "?" + url.Values{"start_date": {startDate}, "end_date": {endDate}}.Encode()
	}
	var out DiseaseTrendReport
	err := c.retry.Do(ctx, func(ctx context.Context) error {
		out = DiseaseTrendReport{}
		return c.Do(ctx, http.MethodGet, path, nil, &out)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// News returns the aggregated Nepal agriculture feed.
func (c *Client) News(ctx context.Context) (*NewsFeed, error) {
	var out NewsFeed
	if err := c.doRaw(ctx, http.MethodGet, "/news/nepal/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
