package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/analytics"
	"github.com/claude/liftlog/internal/ingest/alpha"
	"github.com/claude/liftlog/internal/metrics"
	"github.com/claude/liftlog/internal/models"
	apiserver "github.com/claude/liftlog/internal/server"
	"github.com/claude/liftlog/internal/storage/local"
	"github.com/claude/liftlog/internal/tracker"
	"github.com/mark3labs/mcp-go/mcp"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// newTracker returns a tracker holding one finished bench workout from an
// hour ago, with its records still pending.
func newTracker(t *testing.T) *tracker.Tracker {
	t.Helper()
	store, err := local.Open(filepath.Join(t.TempDir(), "liftlog.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	tr := tracker.New(store, analytics.DefaultOptions(), metrics.NewTestManager(), discard)
	start := time.Now().Add(-2 * time.Hour).UTC()
	finish := start.Add(time.Hour)
	_, _, err = tr.FinishWorkout(context.Background(), models.Workout{
		Name:       "Push",
		StartedAt:  start,
		FinishedAt: &finish,
		Completed:  true,
		Exercises: []models.WorkoutExercise{{
			Exercise: models.Exercise{ID: "bench", Name: "Bench Press"},
			Sets: []models.Set{
				{Weight: models.Float(100), Reps: models.Int(5), Completed: true},
				{Weight: models.Float(100), Reps: models.Int(5), Completed: true},
			},
		}},
	})
	if err != nil {
		t.Fatalf("finish workout: %v", err)
	}
	return tr
}

func callTool(t *testing.T, fn func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	res, err := fn(context.Background(), req)
	if err != nil {
		t.Fatalf("tool returned error: %v", err)
	}
	return res
}

func decodeResult(t *testing.T, res *mcp.CallToolResult, v any) {
	t.Helper()
	if res.IsError {
		t.Fatalf("tool result is an error: %+v", res.Content)
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content = %T, want TextContent", res.Content[0])
	}
	if err := json.Unmarshal([]byte(text.Text), v); err != nil {
		t.Fatalf("decode %q: %v", text.Text, err)
	}
}

// TestTools verifies every tool against an in-process tracker.
func TestTools(t *testing.T) {
	h := &handlers{ds: NewTrackerSource(newTracker(t)), log: discard}

	var records []analytics.PersonalRecord
	decodeResult(t, callTool(t, h.getPersonalRecords, map[string]any{"exercise": "bench"}), &records)
	if len(records) != 3 {
		t.Errorf("records = %d, want 3", len(records))
	}

	var stats analytics.ProgressStats
	decodeResult(t, callTool(t, h.getProgressStats, nil), &stats)
	if stats.TotalWorkouts != 1 || stats.RecentWorkouts != 1 {
		t.Errorf("stats = %+v", stats)
	}

	var sg analytics.ProgressionSuggestion
	decodeResult(t, callTool(t, h.suggestProgression, map[string]any{"exercise": "bench"}), &sg)
	if sg.Rationale != analytics.RationaleIncrease || sg.Weight != 102.5 {
		t.Errorf("suggestion = %+v", sg)
	}
	if res := callTool(t, h.suggestProgression, map[string]any{"exercise": "squat"}); !res.IsError {
		t.Error("unknown exercise should be a tool error")
	}

	var all []analytics.ProgressionSuggestion
	decodeResult(t, callTool(t, h.suggestProgression, nil), &all)
	if len(all) != 1 {
		t.Errorf("suggestions = %d, want 1", len(all))
	}

	var pending []analytics.PersonalRecord
	decodeResult(t, callTool(t, h.getPendingRecords, nil), &pending)
	if len(pending) != 3 {
		t.Errorf("pending = %d, want 3", len(pending))
	}

	var workouts []models.Workout
	decodeResult(t, callTool(t, h.getWorkouts, nil), &workouts)
	if len(workouts) != 1 {
		t.Errorf("workouts = %d, want 1", len(workouts))
	}
	if res := callTool(t, h.getWorkouts, map[string]any{"start": "last week"}); !res.IsError {
		t.Error("bad start should be a tool error")
	}
	if res := callTool(t, h.getWorkouts, map[string]any{"limit": float64(-1)}); !res.IsError {
		t.Error("negative limit should be a tool error")
	}
}

// TestResources verifies the JSON resources.
func TestResources(t *testing.T) {
	h := &handlers{ds: NewTrackerSource(newTracker(t)), log: discard}

	req := mcp.ReadResourceRequest{}
	req.Params.URI = resProgressSummary.URI
	contents, err := h.progressSummary(context.Background(), req)
	if err != nil {
		t.Fatalf("progress summary: %v", err)
	}
	text := contents[0].(mcp.TextResourceContents)
	var summary map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text.Text), &summary); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"stats", "suggestions", "pending_records"} {
		if _, ok := summary[key]; !ok {
			t.Errorf("summary missing %q", key)
		}
	}
	if text.URI != "liftlog://progress_summary" {
		t.Errorf("uri = %q", text.URI)
	}

	req.Params.URI = resRecentWorkouts.URI
	contents, err = h.recentWorkouts(context.Background(), req)
	if err != nil {
		t.Fatalf("recent workouts: %v", err)
	}
	var workouts []models.Workout
	if err := json.Unmarshal([]byte(contents[0].(mcp.TextResourceContents).Text), &workouts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(workouts) != 1 {
		t.Errorf("recent workouts = %d, want 1", len(workouts))
	}
}

// TestHTTPClient verifies the remote data source against the real API
// handler.
func TestHTTPClient(t *testing.T) {
	tr := newTracker(t)
	api := apiserver.New(tr, alpha.NewProvider(tr, nil, discard), nil, metrics.NewTestManager(), "key", discard)
	ts := httptest.NewServer(api)
	defer ts.Close()

	client := NewHTTPClient(ts.URL + "/")
	ctx := context.Background()

	records, err := client.Records(ctx, "bench")
	if err != nil || len(records) != 3 {
		t.Errorf("records = %d, %v; want 3", len(records), err)
	}
	stats, err := client.Stats(ctx)
	if err != nil || stats.TotalWorkouts != 1 {
		t.Errorf("stats = %+v, %v", stats, err)
	}
	sg, err := client.Suggestion(ctx, "bench")
	if err != nil || sg == nil || sg.ExerciseID != "bench" {
		t.Errorf("suggestion = %+v, %v", sg, err)
	}
	sg, err = client.Suggestion(ctx, "squat")
	if err != nil || sg != nil {
		t.Errorf("missing suggestion = %+v, %v; want nil, nil", sg, err)
	}
	all, err := client.Suggestions(ctx)
	if err != nil || len(all) != 1 {
		t.Errorf("suggestions = %d, %v", len(all), err)
	}
	pending, err := client.PendingRecords(ctx)
	if err != nil || len(pending) != 3 {
		t.Errorf("pending = %d, %v", len(pending), err)
	}
	end := time.Now().Add(time.Minute)
	workouts, err := client.Workouts(ctx, end.AddDate(0, 0, -1), end, 5)
	if err != nil || len(workouts) != 1 || len(workouts[0].Exercises) != 1 {
		t.Errorf("workouts = %+v, %v", workouts, err)
	}
}

// TestHTTPClientServerDown verifies that transport failures surface as
// errors.
func TestHTTPClientServerDown(t *testing.T) {
	ts := httptest.NewServer(nil)
	url := ts.URL
	ts.Close()

	if _, err := NewHTTPClient(url).Stats(context.Background()); err == nil {
		t.Error("expected error from a closed server")
	}
}

// TestDefaultTimeRange verifies time range defaults and parsing.
func TestDefaultTimeRange(t *testing.T) {
	start, end, err := defaultTimeRange("", "", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := end.Sub(start); diff.Hours() < 167 || diff.Hours() > 169 {
		t.Errorf("default range = %.0f hours, want ~168", diff.Hours())
	}

	start, end, err = defaultTimeRange("2024-01-01", "2024-01-31", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !start.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v, want 2024-01-01", start)
	}
	if !end.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("end = %v, want the end of 2024-01-31", end)
	}

	start, _, err = defaultTimeRange("2024-06-15T10:30:00Z", "", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Hour() != 10 || start.Minute() != 30 {
		t.Errorf("start = %v, want 10:30", start)
	}

	if _, _, err = defaultTimeRange("not-a-date", "", 7); err == nil {
		t.Error("expected error for invalid date")
	}
}
