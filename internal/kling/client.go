package kling

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Static errors for Kling client operations.
var (
	// ErrAccessKeyRequired is returned when the access key is not provided.
	ErrAccessKeyRequired = errors.New("kling: access key is required")
	// ErrSecretKeyRequired is returned when the secret key is not provided.
	ErrSecretKeyRequired = errors.New("kling: secret key is required")
	// ErrTaskIDRequired is returned when the task ID is not provided.
	ErrTaskIDRequired = errors.New("kling: task ID is required")
	// ErrNoTaskIDReturned is returned when the submit response contains no task ID.
	ErrNoTaskIDReturned = errors.New("kling: submit failed: no task ID returned")
	// ErrSubmitRejected is returned when the provider rejects a submission.
	ErrSubmitRejected = errors.New("kling: submit rejected")
	// ErrStatusCheckFailed is returned when a status request fails; the
	// caller treats it as transient and may retry.
	ErrStatusCheckFailed = errors.New("kling: status check failed")
	// ErrDownloadFailed is returned when a result asset cannot be fetched.
	ErrDownloadFailed = errors.New("kling: download failed")
)

const (
	defaultModelName = "kling-v1-6"
	defaultMode      = "pro"

	// Token lifetime mandated by the provider: valid from 5 seconds in the
	// past, expires after 30 minutes. A fresh token is signed per request,
	// never cached.
	tokenTTL  = 30 * time.Minute
	tokenSkew = 5 * time.Second
)

// Client defines the interface for interacting with the Kling API.
type Client interface {
	// Submit sends an image-to-video task and returns the task ID.
	Submit(ctx context.Context, opts SubmitOptions) (taskID string, err error)

	// Status checks a task and returns its decoded state.
	Status(ctx context.Context, taskID string) (TaskResult, error)

	// Download fetches a result asset into destPath.
	Download(ctx context.Context, assetURL, destPath string) error
}

// HTTPClient is the HTTP implementation of the Kling Client interface.
type HTTPClient struct {
	accessKey  string
	secretKey  string
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

// ClientOption is a function that configures an HTTPClient.
type ClientOption func(*HTTPClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(hc *HTTPClient) {
		hc.httpClient = c
	}
}

// WithBaseURL sets a custom base URL for the Kling API.
func WithBaseURL(url string) ClientOption {
	return func(hc *HTTPClient) {
		hc.baseURL = url
	}
}

// NewClient creates a new Kling HTTP client. Both the access key and the
// secret key must be provided; the secret key signs a short-lived JWT for
// every request.
func NewClient(accessKey, secretKey string, opts ...ClientOption) (*HTTPClient, error) {
	if accessKey == "" {
		return nil, ErrAccessKeyRequired
	}
	if secretKey == "" {
		return nil, ErrSecretKeyRequired
	}

	c := &HTTPClient{
		accessKey:  accessKey,
		secretKey:  secretKey,
		baseURL:    "https://api.klingai.com",
		httpClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// authToken signs a fresh HS256 JWT for one request. The token is
// deliberately not cached: its validity window is short and regeneration
// is cheap.
func (c *HTTPClient) authToken() (string, error) {
	now := c.now()
	claims := jwt.MapClaims{
		"iss": c.accessKey,
		"exp": now.Add(tokenTTL).Unix(),
		"nbf": now.Add(-tokenSkew).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(c.secretKey))
	if err != nil {
		return "", fmt.Errorf("kling: sign token: %w", err)
	}
	return signed, nil
}

// Submit sends an image-to-video task and returns the provider task ID.
// A non-2xx response or a non-zero provider code is a terminal submission
// failure.
func (c *HTTPClient) Submit(ctx context.Context, opts SubmitOptions) (string, error) {
	reqBody := submitRequest{
		ModelName:   defaultModelName,
		Image:       opts.Image,
		Prompt:      opts.Prompt,
		Mode:        defaultMode,
		Duration:    strconv.Itoa(opts.DurationSec),
		AspectRatio: opts.AspectRatio,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("kling: marshal request: %w", err)
	}

	url := c.baseURL + "/v1/videos/image2video"

	var resp apiResponse
	if err := c.doRequest(ctx, http.MethodPost, url, bodyBytes, &resp); err != nil {
		return "", fmt.Errorf("%w: %w", ErrSubmitRejected, err)
	}

	if resp.Code != 0 {
		return "", fmt.Errorf("%w: code %d: %s", ErrSubmitRejected, resp.Code, resp.Message)
	}
	if resp.Data.TaskID == "" {
		return "", ErrNoTaskIDReturned
	}

	return resp.Data.TaskID, nil
}

// Status checks a task and decodes the provider status into a TaskResult.
// Any transport failure or provider-level error code wraps
// ErrStatusCheckFailed; the poller treats those as transient.
func (c *HTTPClient) Status(ctx context.Context, taskID string) (TaskResult, error) {
	if taskID == "" {
		return TaskResult{}, ErrTaskIDRequired
	}

	url := fmt.Sprintf("%s/v1/videos/image2video/%s", c.baseURL, taskID)

	var resp apiResponse
	if err := c.doRequest(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return TaskResult{}, fmt.Errorf("%w: %w", ErrStatusCheckFailed, err)
	}

	if resp.Code != 0 {
		return TaskResult{}, fmt.Errorf("%w: code %d: %s", ErrStatusCheckFailed, resp.Code, resp.Message)
	}

	var status TaskStatus
	switch resp.Data.TaskStatus {
	case "submitted":
		status = StatusSubmitted
	case "processing":
		status = StatusProcessing
	case "succeed":
		status = StatusSucceed
	case "failed":
		status = StatusFailed
	default:
		status = TaskStatus(resp.Data.TaskStatus)
	}

	result := TaskResult{Status: status}

	switch status {
	case StatusSucceed:
		if resp.Data.TaskResult != nil && len(resp.Data.TaskResult.Videos) > 0 {
			result.VideoURL = resp.Data.TaskResult.Videos[0].URL
		}
	case StatusFailed:
		result.Message = resp.Data.TaskStatusMsg
	}

	return result, nil
}

// Download fetches a result asset into destPath. The asset URL is already
// signed by the provider, so no Authorization header is sent.
func (c *HTTPClient) Download(ctx context.Context, assetURL, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, assetURL, nil)
	if err != nil {
		return fmt.Errorf("kling: create download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", ErrDownloadFailed, resp.StatusCode)
	}

	f, err := os.Create(destPath) // #nosec G304 - destPath is constructed internally
	if err != nil {
		return fmt.Errorf("kling: create output file: %w", err)
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(destPath)
		return fmt.Errorf("%w: write asset: %w", ErrDownloadFailed, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(destPath)
		return fmt.Errorf("kling: close output file: %w", err)
	}
	return nil
}

// doRequest performs a single authenticated HTTP request and decodes the
// provider envelope.
func (c *HTTPClient) doRequest(ctx context.Context, method, url string, body []byte, result *apiResponse) error {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	token, err := c.authToken()
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	return nil
}
