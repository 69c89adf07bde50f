// Package api provides a client for the Xe-Bot animation service API.
// This package centralizes all service interactions for the application.
package api

import (
	"fmt"
	"net/http"

	"github.com/ternarybob/arbor"
)

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.rateLimit = requestsPerSecond
	}
}

// APIError represents an error response from the Xe-Bot API.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("xebot API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// GenerateRequest is the job submission payload. Validated before sending;
// an invalid request never reaches the wire.
type GenerateRequest struct {
	ArxivID    string `json:"arxiv_id" validate:"required"`
	Quality    string `json:"quality" validate:"omitempty,oneof=low medium high"`
	Render     bool   `json:"render"`
	WebhookURL string `json:"webhook_url,omitempty" validate:"omitempty,url"`
}

// CodeRequest is the payload for code-only generation (no rendering).
type CodeRequest struct {
	Topic       string   `json:"topic" validate:"required"`
	KeyConcepts []string `json:"key_concepts"`
	Style       string   `json:"style" validate:"omitempty,oneof=explanatory dramatic minimal"`
}
