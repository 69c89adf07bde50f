package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ummeaymen499/xebot/internal/models"
)

const (
	// DefaultBaseURL is the base URL for the Xe-Bot API.
	DefaultBaseURL = "http://localhost:8000"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 5
)

// Client is a Xe-Bot API client. The API key is sent as a Bearer credential
// on every request; a client constructed with an empty key can still issue
// keys and hit unauthenticated endpoints.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
	rateLimit  int
	validate   *validator.Validate
}

// NewClient creates a new Xe-Bot API client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		rateLimit: DefaultRateLimit,
		validate:  validator.New(),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.limiter = rate.NewLimiter(rate.Limit(c.rateLimit), c.rateLimit)

	return c
}

// CreateAPIKey issues a new API key from the service (free tier). The key is
// returned once and not retrievable afterwards.
func (c *Client) CreateAPIKey(ctx context.Context, name, email string) (*APIKeyGrant, error) {
	payload := map[string]string{"name": name}
	if email != "" {
		payload["email"] = email
	}

	var grant APIKeyGrant
	if err := c.post(ctx, "/api/keys/create", payload, &grant); err != nil {
		return nil, err
	}
	if grant.APIKey == "" {
		return nil, fmt.Errorf("key issuance returned an empty key")
	}
	return &grant, nil
}

// IssueKey issues a new key and returns just the credential string.
// Satisfies the credential store's issuer interface.
func (c *Client) IssueKey(ctx context.Context, name, email string) (string, error) {
	grant, err := c.CreateAPIKey(ctx, name, email)
	if err != nil {
		return "", err
	}
	return grant.APIKey, nil
}

// SearchPapers searches arXiv for papers matching the query.
func (c *Client) SearchPapers(ctx context.Context, query string, maxResults int) ([]models.Paper, error) {
	params := url.Values{}
	params.Set("query", query)
	if maxResults > 0 {
		params.Set("max_results", strconv.Itoa(maxResults))
	}

	var result searchResponse
	if err := c.get(ctx, "/api/search", params, &result); err != nil {
		return nil, err
	}
	return result.Papers, nil
}

// SubmitJob submits an animation generation job and returns its acknowledgement
// with the job ID. This is a single request with no retry policy of its own;
// submission failure is fatal to starting a monitoring session.
func (c *Client) SubmitJob(ctx context.Context, req *GenerateRequest) (*SubmitResponse, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid generate request: %w", err)
	}
	if req.Quality == "" {
		req.Quality = "low"
	}

	var resp SubmitResponse
	if err := c.post(ctx, "/api/generate", req, &resp); err != nil {
		return nil, err
	}
	if resp.JobID == "" {
		return nil, fmt.Errorf("job submission returned no job ID")
	}
	return &resp, nil
}

// JobStatus fetches the current status snapshot for a job. Implements
// monitor.StatusFetcher.
func (c *Client) JobStatus(ctx context.Context, jobID string) (*models.StatusSnapshot, error) {
	var result jobStatusResponse
	if err := c.get(ctx, "/api/jobs/"+jobID, nil, &result); err != nil {
		return nil, err
	}
	return result.toSnapshot(jobID), nil
}

// GenerateCode generates animation code without rendering.
func (c *Client) GenerateCode(ctx context.Context, req *CodeRequest) (string, error) {
	if err := c.validate.Struct(req); err != nil {
		return "", fmt.Errorf("invalid code request: %w", err)
	}

	var resp codeResponse
	if err := c.post(ctx, "/api/generate-code", req, &resp); err != nil {
		return "", err
	}
	return resp.ManimCode, nil
}

// ListVideos lists all rendered videos available on the service.
func (c *Client) ListVideos(ctx context.Context) ([]models.Video, error) {
	var result videosResponse
	if err := c.get(ctx, "/api/videos", nil, &result); err != nil {
		return nil, err
	}
	return result.Videos, nil
}

// DownloadVideo streams a rendered video to a local file.
func (c *Client) DownloadVideo(ctx context.Context, videoURL, savePath string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, videoURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Message: string(body), Endpoint: videoURL}
	}

	out, err := os.Create(savePath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("failed to write video file: %w", err)
	}
	return nil
}

// get performs a GET request to the API.
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	return c.do(req, path, result)
}

// post performs a POST request with a JSON body.
func (c *Client) post(ctx context.Context, path string, payload, result interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, path, result)
}

func (c *Client) do(req *http.Request, path string, result interface{}) error {
	// Wait for rate limiter
	if err := c.limiter.Wait(req.Context()); err != nil {
		return err
	}

	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	if c.logger != nil {
		c.logger.Debug().
			Str("method", req.Method).
			Str("url", c.baseURL+path).
			Msg("Xe-Bot API request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
