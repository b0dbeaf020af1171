package mcp

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

const defaultWorkoutLimit = 20

// defaultTimeRange returns start/end defaulting to the last days days. A
// date-only end covers that whole day.
func defaultTimeRange(startStr, endStr string, days int) (time.Time, time.Time, error) {
	var start, end time.Time

	if endStr != "" {
		t, dateOnly, err := parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end = t
		if dateOnly {
			end = end.AddDate(0, 0, 1)
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		t, _, err := parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = t
	} else {
		start = end.AddDate(0, 0, -days)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, bool, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, false, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, true, nil
	}
	return time.Time{}, false, err
}

// --- Tool definitions ---

var toolGetPersonalRecords = mcp.NewTool("get_personal_records",
	mcp.WithDescription("Current personal records: heaviest weight, best estimated one-rep max (Epley), best single-session volume and most bodyweight reps, each with the workout and set that achieved it."),
	mcp.WithString("exercise", mcp.Description("Exercise ID (e.g. 'bench-press-barbell'). Omit for every exercise.")),
)

var toolGetProgressStats = mcp.NewTool("get_progress_stats",
	mcp.WithDescription("Workout counts, total volume of the recent window against the window before it, relative volume change and average workout duration."),
)

var toolSuggestProgression = mcp.NewTool("suggest_progression",
	mcp.WithDescription("Next-session weight and reps for an exercise, with the rationale (increase, hold or deload) derived from recent sessions."),
	mcp.WithString("exercise", mcp.Description("Exercise ID. Omit to list suggestions for every recently trained exercise.")),
)

var toolGetPendingRecords = mcp.NewTool("get_pending_records",
	mcp.WithDescription("Personal records set by recently finished workouts that have not been acknowledged yet."),
)

var toolGetWorkouts = mcp.NewTool("get_workouts",
	mcp.WithDescription("Logged workouts with exercises and sets, newest first."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 30 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
	mcp.WithNumber("limit", mcp.Description("Maximum number of workouts. Defaults to 20.")),
)

// --- Tool handlers ---

func (h *handlers) getPersonalRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	records, err := h.ds.Records(ctx, req.GetString("exercise", ""))
	if err != nil {
		h.log.Error("mcp get_personal_records", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(records)
}

func (h *handlers) getProgressStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := h.ds.Stats(ctx)
	if err != nil {
		h.log.Error("mcp get_progress_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(stats)
}

func (h *handlers) suggestProgression(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise := req.GetString("exercise", "")
	if exercise == "" {
		all, err := h.ds.Suggestions(ctx)
		if err != nil {
			h.log.Error("mcp suggest_progression", "error", err)
			return mcp.NewToolResultError("query failed: " + err.Error()), nil
		}
		return jsonResult(all)
	}

	sg, err := h.ds.Suggestion(ctx, exercise)
	if err != nil {
		h.log.Error("mcp suggest_progression", "exercise", exercise, "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if sg == nil {
		return mcp.NewToolResultError("no suggestion for exercise " + exercise + ": it has no recent working sets"), nil
	}
	return jsonResult(sg)
}

func (h *handlers) getPendingRecords(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pending, err := h.ds.PendingRecords(ctx)
	if err != nil {
		h.log.Error("mcp get_pending_records", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(pending)
}

func (h *handlers) getWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""), 30)
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}
	limit := req.GetInt("limit", defaultWorkoutLimit)
	if limit <= 0 {
		return mcp.NewToolResultError("limit must be positive"), nil
	}

	workouts, err := h.ds.Workouts(ctx, start, end, limit)
	if err != nil {
		h.log.Error("mcp get_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(workouts)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
