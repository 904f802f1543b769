// Package client is a Go client for the SmartKheti REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const DefaultBaseURL = "http://localhost:8000/api"

// Client calls the API with the stored bearer token.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenStore
	logger     *zap.Logger
	retry      Retry
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithTokenStore(store TokenStore) Option {
	return func(c *Client) { c.tokens = store }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithRetryPolicy overrides the policy used by report fetches.
func WithRetryPolicy(r Retry) Option {
	return func(c *Client) { c.retry = r }
}

func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
		tokens:     NewMemoryTokenStore(),
		logger:     zap.NewNop(),
		retry:      DefaultRetry,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tokens returns the store backing this client.
func (c *Client) Tokens() TokenStore {
	return c.tokens
}

// File is one part of a multipart upload.
type File struct {
	Field    string
	Filename string
	Content  io.Reader
}

// Body encodes a request body.
type Body interface {
	encode() (io.Reader, string, error)
}

type jsonBody struct{ v interface{} }

// JSON encodes v as the request body.
func JSON(v interface{}) Body { return jsonBody{v} }

func (b jsonBody) encode() (io.Reader, string, error) {
	data, err := json.Marshal(b.v)
	if err != nil {
		return nil, "", err
	}
	return bytes.NewReader(data), "application/json", nil
}

type multipartBody struct {
	fields url.Values
	files  []File
}

// Multipart builds a multipart/form-data body. Empty field values are skipped.
func Multipart(fields url.Values, files ...File) Body {
	return multipartBody{fields: fields, files: files}
}

func (b multipartBody) encode() (io.Reader, string, error) {
	buf := new(bytes.Buffer)
	w := multipart.NewWriter(buf)
	for key, values := range b.fields {
		for _, v := range values {
			if v == "" {
				continue
			}
			if err := w.WriteField(key, v); err != nil {
				return nil, "", err
			}
		}
	}
	for _, f := range b.files {
		part, err := w.CreateFormFile(f.Field, f.Filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, "", fmt.Errorf("copying %s: %w", f.Filename, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

// Do sends a request to path (relative to the base URL) and decodes the response
// into out. Enveloped responses are unwrapped to their data field.
func (c *Client) Do(ctx context.Context, method, path string, body Body, out interface{}) error {
	raw, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Status == "success" && len(env.Data) > 0 {
		raw = env.Data
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding %s %s: %w", method, path, err)
	}
	return nil
}

// doRaw decodes the whole response body without unwrapping.
func (c *Client) doRaw(ctx context.Context, method, path string, body Body, out interface{}) error {
	raw, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, body Body) ([]byte, error) {
	var (
		reader      io.Reader
		contentType string
	)
	if body != nil {
		var err error
		reader, contentType, err = body.encode()
		if err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if needsAuth(path) {
		if tokens, err := c.tokens.Load(); err == nil && tokens.Access != "" {
			req.Header.Set("Authorization", "Bearer "+tokens.Access)
		}
	}

	start := time.Now()
	res, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("Request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	c.logger.Debug("API call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status_code", res.StatusCode),
		zap.Duration("took", time.Since(start)),
	)
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, parseAPIError(res.StatusCode, raw)
	}
	return raw, nil
}

func needsAuth(path string) bool {
	return !strings.Contains(path, "login") && !strings.Contains(path, "register")
}
