package jobs

import (
	"context"
	"errors"

	"smartkheti_backend/internal/config"
	"smartkheti_backend/internal/news"

	"go.uber.org/zap"
)

// NewsRefresher rebuilds the cached news feed.
type NewsRefresher interface {
	Refresh(ctx context.Context) (*news.Feed, error)
}

// NewsRefreshJob keeps the news cache warm so requests rarely hit NewsAPI.
type NewsRefreshJob struct {
	news   NewsRefresher
	spec   string
	logger *zap.Logger
}

// NewNewsRefreshJob disables itself when no NewsAPI key is configured.
func NewNewsRefreshJob(n NewsRefresher, cfg *config.Config, logger *zap.Logger) *NewsRefreshJob {
	spec := cfg.NewsRefreshJobSchedule
	if cfg.NewsAPIKey == "" {
		spec = ""
	}
	return &NewsRefreshJob{news: n, spec: spec, logger: logger.Named("NewsRefreshJob")}
}

func (j *NewsRefreshJob) Name() string { return "news-refresh" }
func (j *NewsRefreshJob) Spec() string { return j.spec }

func (j *NewsRefreshJob) Run(ctx context.Context) error {
	feed, err := j.news.Refresh(ctx)
	if err != nil {
		return err
	}
	if feed.Status != news.StatusOK {
		return errors.New(feed.Message)
	}
	j.logger.Info("News feed refreshed", zap.Int("articles", feed.Total))
	return nil
}
