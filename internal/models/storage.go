package models

import (
	"time"

	"github.com/google/uuid"
)

// WorkoutRow is a row of the workouts table.
type WorkoutRow struct {
	ID         uuid.UUID
	Name       string
	StartedAt  time.Time
	FinishedAt *time.Time
	Completed  bool
}

// WorkoutExerciseRow is a row of the workout_exercises table. Position keeps
// the order of exercises within the workout.
type WorkoutExerciseRow struct {
	WorkoutID  uuid.UUID
	Position   int
	ExerciseID string
	Name       string
	Equipment  string
	TargetReps *int
}

// WorkoutSetRow is a row of the workout_sets table.
type WorkoutSetRow struct {
	WorkoutID        uuid.UUID
	ExercisePosition int
	SetNumber        int
	Weight           *float64
	Reps             *int
	Completed        bool
	DurationSeconds  *int
	DistanceKm       *float64
	RestSeconds      *int
	IsWarmup         bool
	RIR              *float64
}

// Rows flattens a workout into table rows.
func (w Workout) Rows() (WorkoutRow, []WorkoutExerciseRow, []WorkoutSetRow) {
	wr := WorkoutRow{
		ID:         w.ID,
		Name:       w.Name,
		StartedAt:  w.StartedAt,
		FinishedAt: w.FinishedAt,
		Completed:  w.Completed,
	}
	var exRows []WorkoutExerciseRow
	var setRows []WorkoutSetRow
	for i, ex := range w.Exercises {
		exRows = append(exRows, WorkoutExerciseRow{
			WorkoutID:  w.ID,
			Position:   i,
			ExerciseID: ex.Exercise.ID,
			Name:       ex.Exercise.Name,
			Equipment:  ex.Exercise.Equipment,
			TargetReps: ex.Exercise.TargetReps,
		})
		for j, s := range ex.Sets {
			setRows = append(setRows, WorkoutSetRow{
				WorkoutID:        w.ID,
				ExercisePosition: i,
				SetNumber:        j,
				Weight:           s.Weight,
				Reps:             s.Reps,
				Completed:        s.Completed,
				DurationSeconds:  s.DurationSeconds,
				DistanceKm:       s.DistanceKm,
				RestSeconds:      s.RestSeconds,
				IsWarmup:         s.IsWarmup,
				RIR:              s.RIR,
			})
		}
	}
	return wr, exRows, setRows
}

// AssembleWorkouts rebuilds workouts from table rows. Workouts keep the order
// of the workout rows; exercise and set rows may arrive in any order.
func AssembleWorkouts(workouts []WorkoutRow, exercises []WorkoutExerciseRow, sets []WorkoutSetRow) []Workout {
	type key struct {
		id  uuid.UUID
		pos int
	}
	byID := make(map[uuid.UUID]int, len(workouts))
	result := make([]Workout, len(workouts))
	for i, r := range workouts {
		byID[r.ID] = i
		result[i] = Workout{
			ID:         r.ID,
			Name:       r.Name,
			StartedAt:  r.StartedAt,
			FinishedAt: r.FinishedAt,
			Completed:  r.Completed,
		}
	}

	exIndex := make(map[key]int)
	maxPos := make(map[uuid.UUID]int)
	for _, e := range exercises {
		if _, ok := byID[e.WorkoutID]; !ok || e.Position < 0 {
			continue
		}
		if e.Position+1 > maxPos[e.WorkoutID] {
			maxPos[e.WorkoutID] = e.Position + 1
		}
	}
	for id, n := range maxPos {
		result[byID[id]].Exercises = make([]WorkoutExercise, n)
	}
	for _, e := range exercises {
		wi, ok := byID[e.WorkoutID]
		if !ok || e.Position < 0 {
			continue
		}
		result[wi].Exercises[e.Position].Exercise = Exercise{
			ID:         e.ExerciseID,
			Name:       e.Name,
			Equipment:  e.Equipment,
			TargetReps: e.TargetReps,
		}
		exIndex[key{e.WorkoutID, e.Position}] = wi
	}

	setCount := make(map[key]int)
	for _, s := range sets {
		k := key{s.WorkoutID, s.ExercisePosition}
		if _, ok := exIndex[k]; !ok || s.SetNumber < 0 {
			continue
		}
		if s.SetNumber+1 > setCount[k] {
			setCount[k] = s.SetNumber + 1
		}
	}
	for k, n := range setCount {
		result[exIndex[k]].Exercises[k.pos].Sets = make([]Set, n)
	}
	for _, s := range sets {
		k := key{s.WorkoutID, s.ExercisePosition}
		wi, ok := exIndex[k]
		if !ok || s.SetNumber < 0 {
			continue
		}
		result[wi].Exercises[k.pos].Sets[s.SetNumber] = Set{
			Weight:          s.Weight,
			Reps:            s.Reps,
			Completed:       s.Completed,
			DurationSeconds: s.DurationSeconds,
			DistanceKm:      s.DistanceKm,
			RestSeconds:     s.RestSeconds,
			IsWarmup:        s.IsWarmup,
			RIR:             s.RIR,
		}
	}
	return result
}
