// Package gatewayhttp holds the HTTP plumbing shared by the built-in payment
// gateway modules: a JSON/form REST client and webhook signature checks.
package gatewayhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	apperrors "github.com/fundhive/fundhive/internal/shared/errors"
)

// Maximum response body size read from a processor (1MB)
const maxResponseSize = 1 << 20

// APIError is a non-2xx answer from the processor.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("processor returned status %d: %s", e.StatusCode, e.Body)
}

// Client calls one processor's REST API. Network failures, timeouts and 5xx
// answers surface as gateway_transport errors and are never retried here.
type Client struct {
	gateway    string
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(gateway, baseURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		gateway:    gateway,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// PostForm sends form-encoded values and decodes the JSON answer into out.
func (c *Client) PostForm(ctx context.Context, path string, form url.Values, headers http.Header, out any) error {
	return c.do(ctx, http.MethodPost, path, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", headers, out)
}

// PostJSON sends in as JSON and decodes the JSON answer into out.
func (c *Client) PostJSON(ctx context.Context, path string, in any, headers http.Header, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(body), "application/json", headers, out)
}

// Get fetches path and decodes the JSON answer into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, "", nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, headers http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.NewGatewayTransportError(c.gateway, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return apperrors.NewGatewayTransportError(c.gateway, err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return apperrors.NewGatewayTransportError(c.gateway, &APIError{StatusCode: resp.StatusCode, Body: truncate(data)})
	}
	if resp.StatusCode == http.StatusNotFound {
		return apperrors.NewNotFoundError("transaction not found at payment gateway", c.gateway).
			WithCause(&APIError{StatusCode: resp.StatusCode, Body: truncate(data)})
	}
	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: truncate(data)}
		return apperrors.NewBadRequestError("payment gateway rejected the request", fmt.Sprintf("%s: %s", c.gateway, apiErr.Body)).
			WithCause(apiErr)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", c.gateway, err)
	}
	return nil
}

func truncate(data []byte) string {
	const limit = 512
	if len(data) > limit {
		return string(data[:limit]) + "..."
	}
	return string(data)
}
