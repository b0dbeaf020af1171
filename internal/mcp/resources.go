package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) progressSummary(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	stats, err := h.ds.Stats(ctx)
	if err != nil {
		return nil, err
	}

	suggestions, err := h.ds.Suggestions(ctx)
	if err != nil {
		h.log.Warn("progress_summary: suggestions failed", "error", err)
	}

	pending, err := h.ds.PendingRecords(ctx)
	if err != nil {
		h.log.Warn("progress_summary: pending records failed", "error", err)
	}

	return jsonContents(req.Params.URI, map[string]any{
		"stats":           stats,
		"suggestions":     suggestions,
		"pending_records": pending,
	})
}

func (h *handlers) recentWorkouts(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -14)

	workouts, err := h.ds.Workouts(ctx, start, end, 0)
	if err != nil {
		return nil, err
	}
	return jsonContents(req.Params.URI, workouts)
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
