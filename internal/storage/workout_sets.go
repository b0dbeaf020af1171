package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/jackc/pgx/v5"
)

const setColumns = 11

// insertWorkoutSets batch-inserts set rows.
func insertWorkoutSets(ctx context.Context, tx pgx.Tx, rows []models.WorkoutSetRow) error {
	if len(rows) == 0 {
		return nil
	}

	query := `INSERT INTO workout_sets (workout_id, exercise_position, set_number,
		weight_kg, reps, completed, duration_sec, distance_km, rest_sec, is_warmup, rir) VALUES ` +
		valuesClause(len(rows), setColumns)
	args := make([]any, 0, len(rows)*setColumns)
	for _, r := range rows {
		args = append(args, r.WorkoutID, r.ExercisePosition, r.SetNumber,
			r.Weight, r.Reps, r.Completed, r.DurationSeconds, r.DistanceKm, r.RestSeconds,
			r.IsWarmup, r.RIR)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting workout sets: %w", err)
	}
	return nil
}

func (db *DB) queryWorkoutSets(ctx context.Context, lo, hi *time.Time) ([]models.WorkoutSetRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT s.workout_id, s.exercise_position, s.set_number,
		 s.weight_kg, s.reps, s.completed, s.duration_sec, s.distance_km, s.rest_sec,
		 s.is_warmup, s.rir
		 FROM workout_sets s
		 JOIN workouts w ON w.id = s.workout_id
		 WHERE ($1::timestamptz IS NULL OR w.started_at >= $1)
		   AND ($2::timestamptz IS NULL OR w.started_at < $2)
		 ORDER BY s.workout_id, s.exercise_position, s.set_number`,
		lo, hi)
	if err != nil {
		return nil, fmt.Errorf("querying workout sets: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutSetRow
	for rows.Next() {
		var r models.WorkoutSetRow
		if err := rows.Scan(&r.WorkoutID, &r.ExercisePosition, &r.SetNumber,
			&r.Weight, &r.Reps, &r.Completed, &r.DurationSeconds, &r.DistanceKm, &r.RestSeconds,
			&r.IsWarmup, &r.RIR); err != nil {
			return nil, fmt.Errorf("scanning workout set: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// valuesClause returns "($1,$2),($3,$4)" style placeholders for a multi-row
// insert.
func valuesClause(rows, cols int) string {
	groups := make([]string, 0, rows)
	for i := 0; i < rows; i++ {
		ph := make([]string, cols)
		for j := 0; j < cols; j++ {
			ph[j] = fmt.Sprintf("$%d", i*cols+j+1)
		}
		groups = append(groups, "("+strings.Join(ph, ",")+")")
	}
	return strings.Join(groups, ",")
}
