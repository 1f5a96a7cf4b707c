// Package probe checks a deployed VPS test application over HTTP.
package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"vpstest/pkg/log"
	"vpstest/pkg/models"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	DefaultRetryMax     = 3
	DefaultRetryWaitMin = 500 * time.Millisecond
	DefaultRetryWaitMax = 5 * time.Second
	DefaultTimeout      = 10 * time.Second

	maxErrorBody = 512
)

// Options configures a Client.
type Options struct {
	BaseURL      string
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	Timeout      time.Duration
}

// Client talks to one deployment. Only connection errors are retried; any
// HTTP response is returned to the caller as is.
type Client struct {
	baseURL string
	http    *retryablehttp.Client
}

// NewClient creates a Client, filling unset options with defaults.
func NewClient(opts Options) *Client {
	if opts.RetryMax < 0 {
		opts.RetryMax = 0
	}
	if opts.RetryWaitMin <= 0 {
		opts.RetryWaitMin = DefaultRetryWaitMin
	}
	if opts.RetryWaitMax <= 0 {
		opts.RetryWaitMax = DefaultRetryWaitMax
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	client := retryablehttp.NewClient()
	client.RetryMax = opts.RetryMax
	client.RetryWaitMin = opts.RetryWaitMin
	client.RetryWaitMax = opts.RetryWaitMax
	client.HTTPClient.Timeout = opts.Timeout
	client.Logger = nil
	client.CheckRetry = retryOnConnectionError
	client.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		if attempt > 0 {
			log.Warn().Str("url", req.URL.String()).Int("attempt", attempt).Msg("Retrying request")
		}
	}

	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    client,
	}
}

// BaseURL is the deployment root the client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func retryOnConnectionError(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if resp != nil {
		return false, nil
	}
	return err != nil, nil
}

// Root fetches GET /.
func (c *Client) Root(ctx context.Context) (*models.RootResponse, error) {
	var out models.RootResponse
	if err := c.do(ctx, http.MethodGet, "/", nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health fetches GET /health.
func (c *Client) Health(ctx context.Context) (*models.HealthStatus, error) {
	var out models.HealthStatus
	if err := c.do(ctx, http.MethodGet, "/health", nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DistroInfo fetches GET /distro-info. The Distro field holds a
// models.DistroInfo or the server's sentinel string.
func (c *Client) DistroInfo(ctx context.Context) (*models.DistroResponse, error) {
	var raw struct {
		Distro   json.RawMessage `json:"distro"`
		Kernel   string          `json:"kernel"`
		Hostname string          `json:"hostname"`
	}
	if err := c.do(ctx, http.MethodGet, "/distro-info", nil, http.StatusOK, &raw); err != nil {
		return nil, err
	}

	out := &models.DistroResponse{Kernel: raw.Kernel, Hostname: raw.Hostname}

	var sentinel string
	if err := json.Unmarshal(raw.Distro, &sentinel); err == nil {
		out.Distro = sentinel
		return out, nil
	}

	var info models.DistroInfo
	if err := json.Unmarshal(raw.Distro, &info); err != nil {
		return nil, fmt.Errorf("decode distro: %w", err)
	}
	out.Distro = info
	return out, nil
}

// TestDatabase fetches GET /test-database.
func (c *Client) TestDatabase(ctx context.Context) (*models.DatabaseTestResponse, error) {
	var out models.DatabaseTestResponse
	if err := c.do(ctx, http.MethodGet, "/test-database", nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeployTest posts req to /deploy-test. Empty fields are sent as absent.
func (c *Client) DeployTest(ctx context.Context, req models.DeployTestRequest) (*models.DeployTestResult, error) {
	payload := map[string]string{}
	if req.Service != "" {
		payload["service"] = req.Service
	}
	if req.Version != "" {
		payload["version"] = req.Version
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	var out models.DeployTestResult
	if err := c.do(ctx, http.MethodPost, "/deploy-test", body, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// NotFound requests a path that should not exist and returns the 404 body.
func (c *Client) NotFound(ctx context.Context, path string) (*models.ErrorResponse, error) {
	var out models.ErrorResponse
	if err := c.do(ctx, http.MethodGet, path, nil, http.StatusNotFound, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, wantStatus int, dst any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Str("path", path).Msg("Failed to close response body")
		}
	}()

	if resp.StatusCode != wantStatus {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Method: method,
			Path:   path,
			Want:   wantStatus,
			Got:    resp.StatusCode,
			Body:   strings.TrimSpace(string(snippet)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}
