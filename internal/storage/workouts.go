package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/jackc/pgx/v5"
)

// LoadWorkoutHistory returns every stored workout with its exercises and
// sets, oldest first.
func (db *DB) LoadWorkoutHistory(ctx context.Context) ([]models.Workout, error) {
	return db.queryWorkouts(ctx, time.Time{}, time.Time{})
}

// queryWorkouts loads a range; a zero bound is unbounded.
func (db *DB) queryWorkouts(ctx context.Context, start, end time.Time) ([]models.Workout, error) {
	var lo, hi *time.Time
	if !start.IsZero() {
		lo = &start
	}
	if !end.IsZero() {
		hi = &end
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT id, name, started_at, finished_at, completed
		 FROM workouts
		 WHERE ($1::timestamptz IS NULL OR started_at >= $1)
		   AND ($2::timestamptz IS NULL OR started_at < $2)
		 ORDER BY started_at ASC, id ASC`,
		lo, hi)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var workoutRows []models.WorkoutRow
	for rows.Next() {
		var w models.WorkoutRow
		if err := rows.Scan(&w.ID, &w.Name, &w.StartedAt, &w.FinishedAt, &w.Completed); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		workoutRows = append(workoutRows, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(workoutRows) == 0 {
		return nil, nil
	}

	exercises, err := db.queryWorkoutExercises(ctx, lo, hi)
	if err != nil {
		return nil, err
	}
	sets, err := db.queryWorkoutSets(ctx, lo, hi)
	if err != nil {
		return nil, err
	}
	return models.AssembleWorkouts(workoutRows, exercises, sets), nil
}

func (db *DB) queryWorkoutExercises(ctx context.Context, lo, hi *time.Time) ([]models.WorkoutExerciseRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT e.workout_id, e.position, e.exercise_id, e.name, e.equipment, e.target_reps
		 FROM workout_exercises e
		 JOIN workouts w ON w.id = e.workout_id
		 WHERE ($1::timestamptz IS NULL OR w.started_at >= $1)
		   AND ($2::timestamptz IS NULL OR w.started_at < $2)
		 ORDER BY e.workout_id, e.position`,
		lo, hi)
	if err != nil {
		return nil, fmt.Errorf("querying workout exercises: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutExerciseRow
	for rows.Next() {
		var r models.WorkoutExerciseRow
		if err := rows.Scan(&r.WorkoutID, &r.Position, &r.ExerciseID, &r.Name, &r.Equipment, &r.TargetReps); err != nil {
			return nil, fmt.Errorf("scanning workout exercise: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// SaveWorkout upserts a workout and replaces its exercises and sets in one
// transaction.
func (db *DB) SaveWorkout(ctx context.Context, w models.Workout) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := saveWorkoutTx(ctx, tx, w); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing workout %s: %w", w.ID, err)
	}
	return nil
}

// SaveWorkouts saves a batch of workouts in one transaction.
func (db *DB) SaveWorkouts(ctx context.Context, workouts []models.Workout) error {
	if len(workouts) == 0 {
		return nil
	}
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, w := range workouts {
		if err := saveWorkoutTx(ctx, tx, w); err != nil {
			return err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing %d workouts: %w", len(workouts), err)
	}
	return nil
}

func saveWorkoutTx(ctx context.Context, tx pgx.Tx, w models.Workout) error {
	wr, exercises, sets := w.Rows()

	_, err := tx.Exec(ctx,
		`INSERT INTO workouts (id, name, started_at, finished_at, completed)
		 VALUES ($1,$2,$3,$4,$5)
		 ON CONFLICT (id) DO UPDATE SET
		   name = EXCLUDED.name, started_at = EXCLUDED.started_at,
		   finished_at = EXCLUDED.finished_at, completed = EXCLUDED.completed,
		   updated_at = NOW()`,
		wr.ID, wr.Name, wr.StartedAt, wr.FinishedAt, wr.Completed)
	if err != nil {
		return fmt.Errorf("upserting workout %s: %w", w.ID, err)
	}

	// Sets cascade from their exercise rows.
	if _, err := tx.Exec(ctx, `DELETE FROM workout_exercises WHERE workout_id = $1`, w.ID); err != nil {
		return fmt.Errorf("clearing exercises of workout %s: %w", w.ID, err)
	}
	if err := insertWorkoutExercises(ctx, tx, exercises); err != nil {
		return err
	}
	return insertWorkoutSets(ctx, tx, sets)
}

func insertWorkoutExercises(ctx context.Context, tx pgx.Tx, rows []models.WorkoutExerciseRow) error {
	if len(rows) == 0 {
		return nil
	}
	args := make([]any, 0, len(rows)*6)
	for _, r := range rows {
		args = append(args, r.WorkoutID, r.Position, r.ExerciseID, r.Name, r.Equipment, r.TargetReps)
	}
	query := `INSERT INTO workout_exercises (workout_id, position, exercise_id, name, equipment, target_reps) VALUES ` +
		valuesClause(len(rows), 6)

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting workout exercises: %w", err)
	}
	return nil
}
