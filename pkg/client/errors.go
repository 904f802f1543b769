package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// User-facing messages for the classified status codes.
const (
	MsgAuthentication = "Authentication error - please log in again"
	MsgPermission     = "Permission denied - you don't have access to this data"
	MsgNotFound       = "API endpoint not found - check if the detection history endpoint exists"
	MsgServer         = "Server error - please try again later"
)

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

// parseAPIError extracts a message from detail, error, details or message, falling
// back to the raw body text.
func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Message: strings.TrimSpace(string(body))}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(status)
		}
		return apiErr
	}
	if raw, ok := fields["code"]; ok {
		_ = json.Unmarshal(raw, &apiErr.Code)
	}
	for _, key := range []string{"detail", "error", "details", "message"} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			apiErr.Message = s
			return apiErr
		}
		if key == "details" {
			apiErr.Message = string(raw)
			return apiErr
		}
	}
	return apiErr
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// Classify maps err to the message shown to a user.
func Classify(err error) string {
	if err == nil {
		return ""
	}
	switch StatusCode(err) {
	case http.StatusUnauthorized:
		return MsgAuthentication
	case http.StatusForbidden:
		return MsgPermission
	case http.StatusNotFound:
		return MsgNotFound
	case http.StatusInternalServerError:
		return MsgServer
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

// HandleError classifies err and logs the user out on an authentication failure.
func (c *Client) HandleError(err error) string {
	if StatusCode(err) == http.StatusUnauthorized {
		if clearErr := c.tokens.Clear(); clearErr != nil {
			c.logger.Warn("Failed to clear token store", zap.Error(clearErr))
		}
	}
	return Classify(err)
}
