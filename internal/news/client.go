package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"smartkheti_backend/internal/config"

	"go.uber.org/zap"
)

// ErrNotConfigured is returned when no NewsAPI key is set.
var ErrNotConfigured = errors.New("news API key is not configured")

type Source struct {
	ID   *string `json:"id"`
	Name string  `json:"name"`
}

// Article is a NewsAPI article.
type Article struct {
	Source      Source `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content"`
}

type apiResponse struct {
	Status       string    `json:"status"`
	TotalResults int       `json:"totalResults"`
	Articles     []Article `json:"articles"`
	Code         string    `json:"code"`
	Message      string    `json:"message"`
}

// Fetcher queries a news provider.
type Fetcher interface {
	TopHeadlines(ctx context.Context, country string, pageSize int) ([]Article, error)
	Everything(ctx context.Context, query string, from time.Time, pageSize int) ([]Article, error)
}

// NewsAPIClient is a minimal newsapi.org v2 client.
type NewsAPIClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewNewsAPIClient(baseURL, apiKey string, httpClient *http.Client, logger *zap.Logger) *NewsAPIClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &NewsAPIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
		logger:     logger.Named("NewsAPI"),
	}
}

func NewNewsAPIClientFromConfig(cfg *config.Config, logger *zap.Logger) *NewsAPIClient {
	return NewNewsAPIClient(cfg.NewsAPIBaseURL, cfg.NewsAPIKey, nil, logger)
}

func (c *NewsAPIClient) TopHeadlines(ctx context.Context, country string, pageSize int) ([]Article, error) {
	q := url.Values{}
	q.Set("country", country)
	q.Set("pageSize", strconv.Itoa(pageSize))
	return c.get(ctx, "/top-headlines", q)
}

func (c *NewsAPIClient) Everything(ctx context.Context, query string, from time.Time, pageSize int) ([]Article, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("sortBy", "publishedAt")
	q.Set("pageSize", strconv.Itoa(pageSize))
	q.Set("from", from.UTC().Format(time.RFC3339))
	return c.get(ctx, "/everything", q)
}

func (c *NewsAPIClient) get(ctx context.Context, path string, q url.Values) ([]Article, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("news request %s: %w", path, err)
	}
	defer res.Body.Close()

	var body apiResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding news response (status %d): %w", res.StatusCode, err)
	}
	if body.Status != "ok" {
		return nil, fmt.Errorf("news API %s: %s (%s)", path, body.Message, body.Code)
	}
	return body.Articles, nil
}
