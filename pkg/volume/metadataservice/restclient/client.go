// Package restclient is an HTTP/JSON client for a remote metadata service.
// Same apiclient-derived idiom as pkg/volume/allocator/restclient.
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
	"github.com/curvefs/curvefs-client/pkg/volume/metadataservice"
)

// Client is an HTTP client for a remote metadata service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// New creates a new metadata service REST client.
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

// LoadInode implements metadataservice.Client.
func (c *Client) LoadInode(ctx context.Context, inodeID uint64) (extentcache.InodeExtents, error) {
	var resp extentcache.InodeExtents
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/inodes/%d/extents", inodeID), nil, &resp)
	if err != nil {
		var apiErr *APIError
		if errAs(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, metadataservice.ErrNotFound
		}
		return nil, err
	}
	return resp, nil
}

// SaveInode implements metadataservice.Client.
func (c *Client) SaveInode(ctx context.Context, inodeID uint64, extents extentcache.InodeExtents) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/v1/inodes/%d/extents", inodeID), extents, nil)
}

func errAs(err error, target **APIError) bool {
	apiErr, ok := err.(*APIError)
	if !ok {
		return false
	}
	*target = apiErr
	return true
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
