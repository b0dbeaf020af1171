package storage

import (
	"context"
	"fmt"
	"time"
)

// DataStats holds aggregate statistics about all stored data.
type DataStats struct {
	TotalWorkouts    int64             `json:"total_workouts"`
	FinishedWorkouts int64             `json:"finished_workouts"`
	TotalExercises   int64             `json:"total_exercises"`
	TotalSets        int64             `json:"total_sets"`
	EarliestWorkout  *time.Time        `json:"earliest_workout"`
	LatestWorkout    *time.Time        `json:"latest_workout"`
	ExercisesBySets  []ExerciseSetStat `json:"exercises_by_sets"`
}

// ExerciseSetStat holds summary stats for a single exercise.
type ExerciseSetStat struct {
	ExerciseID string  `json:"exercise_id"`
	Name       string  `json:"name"`
	Sessions   int64   `json:"sessions"`
	Sets       int64   `json:"sets"`
	TonnageKg  float64 `json:"tonnage_kg"`
}

// GetDataStats returns aggregate statistics for the stored history.
func (db *DB) GetDataStats(ctx context.Context) (*DataStats, error) {
	stats := &DataStats{}

	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE completed AND finished_at IS NOT NULL),
		        MIN(started_at), MAX(started_at)
		 FROM workouts`,
	).Scan(&stats.TotalWorkouts, &stats.FinishedWorkouts, &stats.EarliestWorkout, &stats.LatestWorkout)
	if err != nil {
		return nil, fmt.Errorf("counting workouts: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(DISTINCT exercise_id) FROM workout_exercises`,
	).Scan(&stats.TotalExercises)
	if err != nil {
		return nil, fmt.Errorf("counting exercises: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM workout_sets`,
	).Scan(&stats.TotalSets)
	if err != nil {
		return nil, fmt.Errorf("counting sets: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT e.exercise_id, MIN(e.name),
		        COUNT(DISTINCT e.workout_id),
		        COUNT(s.set_number) FILTER (WHERE s.completed AND NOT s.is_warmup),
		        COALESCE(SUM(s.weight_kg * s.reps) FILTER (WHERE s.completed AND NOT s.is_warmup), 0)
		 FROM workout_exercises e
		 LEFT JOIN workout_sets s
		   ON s.workout_id = e.workout_id AND s.exercise_position = e.position
		 GROUP BY e.exercise_id
		 ORDER BY 4 DESC, e.exercise_id`)
	if err != nil {
		return nil, fmt.Errorf("querying exercises by sets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s ExerciseSetStat
		if err := rows.Scan(&s.ExerciseID, &s.Name, &s.Sessions, &s.Sets, &s.TonnageKg); err != nil {
			return nil, fmt.Errorf("scanning exercise stat: %w", err)
		}
		stats.ExercisesBySets = append(stats.ExercisesBySets, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
