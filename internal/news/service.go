package news

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"smartkheti_backend/internal/config"
	"smartkheti_backend/internal/platform/cache"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	feedCacheKey       = "news:nepal"
	headlineCountry    = "np"
	headlinePageSize   = 20
	queryPageSize      = 10
	queryLookback      = 7 * 24 * time.Hour
	maxArticles        = 25
	maxConcurrentCalls = 4
)

// SearchQueries are the Nepal queries run alongside the country headlines.
var SearchQueries = []string{
	"Nepal",
	"Nepal agriculture",
	"Nepal farmers",
	"Nepal farming",
	"Kathmandu",
}

// Keywords marks an article as relevant when any appears in its title, description or content.
var Keywords = []string{
	"nepal", "nepali", "nepalese", "kathmandu", "pokhara", "lalitpur", "bhaktapur",
	"himalaya", "everest", "sagarmatha", "koshi", "gandaki", "lumbini",
	"नेपाल", "नेपाली", "काठमाडौं", "पोखरा", "ललितपुर", "भक्तपुर",
	"हिमालय", "सगरमाथा", "कोशी", "गण्डकी", "लुम्बिनी",
	"कृषि", "खेती", "किसान", "धान", "गहुँ", "मकै", "तरकारी", "फल",
	"agriculture", "farming", "farmer", "rice", "wheat", "maize", "vegetable", "fruit",
	"rupee", "economy", "development", "infrastructure", "trade", "export", "import",
	"remittance", "tourism", "hydropower", "electricity",
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Feed is the aggregated news response.
type Feed struct {
	Status    string    `json:"status"`
	Articles  []Article `json:"articles"`
	Total     int       `json:"total"`
	Message   string    `json:"message,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
}

type Service interface {
	// Latest serves the cached feed, refreshing it on a miss.
	Latest(ctx context.Context) (*Feed, error)
	// Refresh fetches from upstream and replaces the cached feed.
	Refresh(ctx context.Context) (*Feed, error)
}

type service struct {
	fetcher Fetcher
	cache   cache.Cache
	ttl     time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

func NewService(fetcher Fetcher, c cache.Cache, cfg *config.Config, logger *zap.Logger) Service {
	return &service{
		fetcher: fetcher,
		cache:   c,
		ttl:     cfg.NewsCacheTTL,
		logger:  logger.Named("NewsService"),
		now:     time.Now,
	}
}

func (s *service) Latest(ctx context.Context) (*Feed, error) {
	var cached Feed
	found, err := s.cache.GetJSON(ctx, feedCacheKey, &cached)
	if err != nil {
		s.logger.Warn("News cache read failed", zap.Error(err))
	}
	if found {
		return &cached, nil
	}
	return s.Refresh(ctx)
}

func (s *service) Refresh(ctx context.Context) (*Feed, error) {
	now := s.now()
	batches, err := s.fetchAll(ctx, now)
	if err != nil {
		return nil, err
	}

	var all []Article
	for _, b := range batches {
		all = append(all, b...)
	}
	articles := Filter(all)

	feed := &Feed{Status: StatusOK, Articles: articles, Total: len(articles), FetchedAt: now.UTC()}
	if len(articles) == 0 {
		feed.Status = StatusError
		feed.Message = "No Nepal news found. Please try again later."
		return feed, nil
	}
	if s.ttl > 0 {
		if err := s.cache.SetJSON(ctx, feedCacheKey, feed, s.ttl); err != nil {
			s.logger.Warn("News cache write failed", zap.Error(err))
		}
	}
	s.logger.Info("News feed refreshed", zap.Int("fetched", len(all)), zap.Int("kept", len(articles)))
	return feed, nil
}

// fetchAll runs the headline call and every query concurrently. Failed calls are
// logged and leave an empty batch; results keep call order.
func (s *service) fetchAll(ctx context.Context, now time.Time) ([][]Article, error) {
	batches := make([][]Article, len(SearchQueries)+1)
	from := now.Add(-queryLookback)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentCalls)

	g.Go(func() error {
		articles, err := s.fetcher.TopHeadlines(gctx, headlineCountry, headlinePageSize)
		if errors.Is(err, ErrNotConfigured) {
			return err
		}
		if err != nil {
			s.logger.Warn("Failed to fetch Nepal headlines", zap.Error(err))
			return nil
		}
		batches[0] = articles
		return nil
	})
	for i, query := range SearchQueries {
		i, query := i, query
		g.Go(func() error {
			articles, err := s.fetcher.Everything(gctx, query, from, queryPageSize)
			if errors.Is(err, ErrNotConfigured) {
				return err
			}
			if err != nil {
				s.logger.Warn("News query failed", zap.String("query", query), zap.Error(err))
				return nil
			}
			batches[i+1] = articles
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return batches, nil
}

// Filter deduplicates by title, drops incomplete or removed articles, keeps relevant
// ones, sorts newest first and caps the result.
func Filter(all []Article) []Article {
	seen := make(map[string]bool, len(all))
	out := make([]Article, 0, len(all))
	for _, a := range all {
		if seen[a.Title] {
			continue
		}
		seen[a.Title] = true

		if a.Title == "" || a.Description == "" {
			continue
		}
		title := strings.ToLower(a.Title)
		description := strings.ToLower(a.Description)
		if strings.Contains(title, "[removed]") || strings.Contains(description, "[removed]") {
			continue
		}
		if !relevant(title, description, strings.ToLower(a.Content)) {
			continue
		}
		out = append(out, a)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return publishedAt(out[i]).After(publishedAt(out[j]))
	})
	if len(out) > maxArticles {
		out = out[:maxArticles]
	}
	return out
}

func relevant(fields ...string) bool {
	for _, k := range Keywords {
		for _, f := range fields {
			if strings.Contains(f, k) {
				return true
			}
		}
	}
	return false
}

// publishedAt returns the zero time for missing or malformed dates so they sort last.
func publishedAt(a Article) time.Time {
	t, err := time.Parse(time.RFC3339, a.PublishedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}
