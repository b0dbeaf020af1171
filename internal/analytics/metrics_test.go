package analytics

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

var day0 = time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)

func lifted(weight float64, reps int) models.Set {
	return models.Set{Weight: models.Float(weight), Reps: models.Int(reps), Completed: true}
}

func missed(weight float64, reps int) models.Set {
	s := lifted(weight, reps)
	s.Completed = false
	return s
}

func bodyweight(reps int) models.Set {
	return models.Set{Reps: models.Int(reps), Completed: true}
}

func entry(id string, sets ...models.Set) models.WorkoutExercise {
	return models.WorkoutExercise{Exercise: models.Exercise{ID: id, Name: id}, Sets: sets}
}

func planned(id string, target int, sets ...models.Set) models.WorkoutExercise {
	ex := entry(id, sets...)
	ex.Exercise.TargetReps = models.Int(target)
	return ex
}

// session builds a finished one-hour workout starting day days after day0.
func session(day int, exercises ...models.WorkoutExercise) models.Workout {
	start := day0.AddDate(0, 0, day)
	finish := start.Add(time.Hour)
	return models.Workout{
		ID:         uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("workout-%d", day))),
		Name:       fmt.Sprintf("Day %d", day),
		StartedAt:  start,
		FinishedAt: &finish,
		Completed:  true,
		Exercises:  exercises,
	}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// TestEstimatedOneRepMax verifies the Epley estimate and its input guards.
func TestEstimatedOneRepMax(t *testing.T) {
	tests := []struct {
		name   string
		weight float64
		reps   int
		want   float64
		wantOK bool
	}{
		{"single rep", 100, 1, 100, true},
		{"ten reps", 100, 10, 100 * (1 + 10.0/30), true},
		{"five reps", 80, 5, 80 * (1 + 5.0/30), true},
		{"zero weight", 0, 5, 0, false},
		{"negative weight", -20, 5, 0, false},
		{"zero reps", 100, 0, 0, false},
		{"NaN weight", math.NaN(), 5, 0, false},
		{"infinite weight", math.Inf(1), 5, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := EstimatedOneRepMax(tt.weight, tt.reps)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !approx(got, tt.want) {
				t.Errorf("EstimatedOneRepMax(%v, %d) = %v, want %v", tt.weight, tt.reps, got, tt.want)
			}
		})
	}

	if got, _ := EstimatedOneRepMax(100, 10); math.Abs(got-133.33) > 0.01 {
		t.Errorf("100x10 = %.4f, want ~133.33", got)
	}
}

// TestSetEstimatedOneRepMaxMissingFields verifies that sets without weight or
// reps produce no estimate.
func TestSetEstimatedOneRepMaxMissingFields(t *testing.T) {
	if _, ok := SetEstimatedOneRepMax(bodyweight(10)); ok {
		t.Error("bodyweight set should have no estimate")
	}
	if _, ok := SetEstimatedOneRepMax(models.Set{Weight: models.Float(100), Completed: true}); ok {
		t.Error("set without reps should have no estimate")
	}
	got, ok := SetEstimatedOneRepMax(lifted(100, 1))
	if !ok || got != 100 {
		t.Errorf("100x1 = %v, %v; want 100, true", got, ok)
	}
}

// TestSessionVolume verifies that only completed sets with weight and reps
// contribute to volume.
func TestSessionVolume(t *testing.T) {
	w := session(0, entry("squat", lifted(100, 5), lifted(100, 5)))
	if got := SessionVolume(w); got != 1000 {
		t.Errorf("two 100x5 sets = %v, want 1000", got)
	}

	w = session(0,
		entry("squat", lifted(100, 5), missed(100, 5)),
		entry("pull-up", bodyweight(12)),
		entry("bench", models.Set{Reps: models.Int(5), Weight: models.Float(math.NaN()), Completed: true}),
	)
	if got := SessionVolume(w); got != 500 {
		t.Errorf("mixed sets = %v, want 500", got)
	}

	if got := SessionVolume(models.Workout{}); got != 0 {
		t.Errorf("empty workout = %v, want 0", got)
	}
}

// TestExerciseVolumeSumsRepeatedEntries verifies that an exercise logged twice
// in one workout has its volume summed.
func TestExerciseVolumeSumsRepeatedEntries(t *testing.T) {
	w := session(0,
		entry("squat", lifted(100, 5)),
		entry("bench", lifted(60, 10)),
		entry("squat", lifted(80, 8)),
	)
	if got := ExerciseVolume(w, "squat"); got != 1140 {
		t.Errorf("squat volume = %v, want 1140", got)
	}
	if got := ExerciseVolume(w, "deadlift"); got != 0 {
		t.Errorf("deadlift volume = %v, want 0", got)
	}
}
