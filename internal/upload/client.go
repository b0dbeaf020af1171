// Package upload sends Alpha Progression exports from a directory to a
// remote LiftLog server, remembering which files were already sent.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/ingest"
)

const attempts = 3

// Client sends data to the LiftLog server over HTTP.
type Client struct {
	serverURL  string
	apiKey     string
	httpClient *http.Client
	backoff    time.Duration
}

// NewClient creates a new HTTP client for the LiftLog server.
func NewClient(serverURL, apiKey string) *Client {
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		backoff: time.Second,
	}
}

// SendCSV POSTs an export to the server's Alpha import endpoint.
// Retries up to 3 times with exponential backoff on transport errors and 5xx
// responses; a 4xx is returned at once.
func (c *Client) SendCSV(ctx context.Context, data []byte) (*ingest.Result, error) {
	var lastErr error
	for attempt := range attempts {
		if attempt > 0 {
			wait := c.backoff << uint(attempt-1)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		result, retry, err := c.send(ctx, data)
		if err == nil {
			return result, nil
		}
		if !retry {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}

func (c *Client) send(ctx context.Context, data []byte) (*ingest.Result, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL+"/api/v1/import/alpha", bytes.NewReader(data))
	if err != nil {
		return nil, false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "text/csv")
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode >= 500, fmt.Errorf("import failed (status %d): %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var result ingest.Result
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, false, fmt.Errorf("decoding import result: %w", err)
	}
	return &result, false, nil
}
