// Package fetch retrieves external raw artifacts over HTTP. It is the
// default implementation of the storage engine's Fetcher boundary.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"quantmind/internal/logging"
)

// maxArtifactSize caps a single download; papers run tens of megabytes,
// anything past this is not a paper.
const maxArtifactSize = 256 << 20

// Client fetches artifacts with a bounded HTTP client.
type Client struct {
	httpClient *http.Client
}

// New creates a client whose requests time out after the given duration.
// Per-call contexts may shorten, never extend, that bound.
func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Fetch downloads url and returns the body bytes. Non-2xx responses are
// errors.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	timer := logging.StartTimer(logging.CategoryFetch, "Fetch")
	defer timer.StopWithThreshold(10 * time.Second)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", url, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxArtifactSize+1))
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", url, err)
	}
	if len(body) > maxArtifactSize {
		return nil, fmt.Errorf("fetch %s: artifact exceeds %d bytes", url, maxArtifactSize)
	}

	logging.Get(logging.CategoryFetch).Debug("fetched %s (%d bytes)", url, len(body))
	return body, nil
}
