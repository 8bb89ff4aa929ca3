// Package restclient is an HTTP/JSON client for a remote allocator service.
// Grounded on dittofs's pkg/apiclient request/response/error idiom
// (net/http + encoding/json, bearer token, typed APIError) — that package's
// login/session machinery is out of scope here (spec.md §1 excludes session
// management), so only the plain request/response core is carried over.
package restclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/curvefs/curvefs-client/pkg/volume/extentcache"
)

// Client is an HTTP client for a remote allocator service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// New creates a new allocator REST client.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// WithToken returns a copy of the client using the given bearer token.
func (c *Client) WithToken(token string) *Client {
	return &Client{baseURL: c.baseURL, httpClient: c.httpClient, token: token}
}

type allocateRequest struct {
	LogicalOffset uint64 `json:"logical_offset"`
	Length        uint64 `json:"length"`
}

type allocateResponse struct {
	LogicalOffset  uint64 `json:"logical_offset"`
	Length         uint64 `json:"length"`
	PhysicalOffset uint64 `json:"physical_offset"`
	Unwritten      bool   `json:"unwritten"`
}

// Allocate requests a new physical extent from the remote allocator.
func (c *Client) Allocate(ctx context.Context, req extentcache.AllocInfo) (extentcache.PExtent, error) {
	var resp allocateResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/allocate", allocateRequest{
		LogicalOffset: req.LogicalOffset,
		Length:        req.Length,
	}, &resp)
	if err != nil {
		return extentcache.PExtent{}, err
	}
	return extentcache.PExtent{
		LogicalOffset:  resp.LogicalOffset,
		Length:         resp.Length,
		PhysicalOffset: resp.PhysicalOffset,
		Unwritten:      resp.Unwritten,
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr APIError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Message != "" {
			apiErr.StatusCode = resp.StatusCode
			return &apiErr
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
