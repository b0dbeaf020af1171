package analytics

import (
	"time"

	"github.com/claude/liftlog/internal/models"
)

// ProgressStats summarises training over a trailing window. VolumeChange is
// recent/prior - 1, so 0.25 means 25% more volume than the window before; it
// is 0 when the prior window has no volume.
type ProgressStats struct {
	RecentWorkouts int     `json:"recent_workouts"`
	TotalWorkouts  int     `json:"total_workouts"`
	VolumeChange   float64 `json:"volume_change"`
	RecentVolume   float64 `json:"recent_volume"`
	PriorVolume    float64 `json:"prior_volume"`
	AvgDurationSec float64 `json:"avg_duration_sec"`
	WindowDays     int     `json:"window_days"`
}

// Summarize computes ProgressStats for the window (now-RecentDays, now] and
// the equally long window before it. Only counted workouts contribute.
func Summarize(workouts []models.Workout, now time.Time, opts Options) ProgressStats {
	opts = opts.withDefaults()
	window := time.Duration(opts.RecentDays) * 24 * time.Hour
	recentStart := now.Add(-window)
	priorStart := recentStart.Add(-window)

	stats := ProgressStats{WindowDays: opts.RecentDays}
	var totalDuration time.Duration
	var durations int

	for _, w := range workouts {
		if !w.Counted() {
			continue
		}
		stats.TotalWorkouts++

		switch {
		case w.StartedAt.After(recentStart) && !w.StartedAt.After(now):
			stats.RecentWorkouts++
			stats.RecentVolume += SessionVolume(w)
			if d, ok := w.Duration(); ok {
				totalDuration += d
				durations++
			}
		case w.StartedAt.After(priorStart) && !w.StartedAt.After(recentStart):
			stats.PriorVolume += SessionVolume(w)
		}
	}

	if stats.PriorVolume > 0 {
		stats.VolumeChange = stats.RecentVolume/stats.PriorVolume - 1
	}
	if durations > 0 {
		stats.AvgDurationSec = totalDuration.Seconds() / float64(durations)
	}
	return stats
}
