package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/analytics"
	"github.com/claude/liftlog/internal/models"
)

// errNotFound marks a 404 from the API.
var errNotFound = errors.New("not found")

// HTTPClient implements DataSource by calling the LiftLog REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// getJSON fetches path and decodes the body into v.
func (c *HTTPClient) getJSON(ctx context.Context, path string, params url.Values, v any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("httpclient: %s: %w", path, errNotFound)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func (c *HTTPClient) Records(ctx context.Context, exerciseID string) ([]analytics.PersonalRecord, error) {
	params := url.Values{}
	if exerciseID != "" {
		params.Set("exercise", exerciseID)
	}
	var records []analytics.PersonalRecord
	if err := c.getJSON(ctx, "/api/v1/records", params, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *HTTPClient) Stats(ctx context.Context) (analytics.ProgressStats, error) {
	var stats analytics.ProgressStats
	err := c.getJSON(ctx, "/api/v1/stats", nil, &stats)
	return stats, err
}

func (c *HTTPClient) Suggestion(ctx context.Context, exerciseID string) (*analytics.ProgressionSuggestion, error) {
	var sg analytics.ProgressionSuggestion
	err := c.getJSON(ctx, "/api/v1/suggestions/"+url.PathEscape(exerciseID), nil, &sg)
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sg, nil
}

func (c *HTTPClient) Suggestions(ctx context.Context) ([]analytics.ProgressionSuggestion, error) {
	var out []analytics.ProgressionSuggestion
	if err := c.getJSON(ctx, "/api/v1/suggestions", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) PendingRecords(ctx context.Context) ([]analytics.PersonalRecord, error) {
	var out []analytics.PersonalRecord
	if err := c.getJSON(ctx, "/api/v1/records/pending", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) Workouts(ctx context.Context, start, end time.Time, limit int) ([]models.Workout, error) {
	params := url.Values{}
	params.Set("start", start.Format(time.RFC3339))
	params.Set("end", end.Format(time.RFC3339))
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var out []models.Workout
	if err := c.getJSON(ctx, "/api/v1/workouts", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}
