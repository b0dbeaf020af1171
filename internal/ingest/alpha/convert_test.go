package alpha

import (
	"strings"
	"testing"
	"time"
)

// TestParseWorkouts verifies the conversion of sessions into finished
// workouts.
func TestParseWorkouts(t *testing.T) {
	workouts, err := ParseWorkouts(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(workouts) != 2 {
		t.Fatalf("workouts = %d, want 2", len(workouts))
	}

	legs := workouts[0]
	if !legs.Counted() {
		t.Fatal("imported workout should be counted")
	}
	if d, _ := legs.Duration(); d != 62*time.Minute {
		t.Errorf("duration = %v, want 62m", d)
	}

	wantIDs := []string{
		"hack-squats-machine",
		"sumo-squats-smith-machine",
		"hyperextensions-on-roman-chair",
		"reverse-lunges-dumbbells",
		"standing-calf-raises-machine",
		"hanging-leg-raises",
	}
	if len(legs.Exercises) != len(wantIDs) {
		t.Fatalf("exercises = %d, want %d", len(legs.Exercises), len(wantIDs))
	}
	for i, id := range wantIDs {
		if got := legs.Exercises[i].Exercise.ID; got != id {
			t.Errorf("exercise %d id = %q, want %q", i, got, id)
		}
	}

	hack := legs.Exercises[0]
	if hack.Exercise.TargetReps == nil || *hack.Exercise.TargetReps != 8 {
		t.Errorf("target reps = %v, want 8", hack.Exercise.TargetReps)
	}
	if !hack.Sets[0].IsWarmup || !hack.Sets[1].IsWarmup || hack.Sets[2].IsWarmup {
		t.Error("warmups should come first")
	}
	for _, s := range hack.Sets {
		if !s.Completed {
			t.Errorf("set %+v should be completed", s)
		}
	}
	if *hack.Sets[2].Weight != 115 || *hack.Sets[2].Reps != 8 || *hack.Sets[2].RIR != 1 {
		t.Errorf("first working set = %+v", hack.Sets[2])
	}
	if hack.Sets[0].RIR != nil {
		t.Error("warmups have no RIR")
	}

	weighted := legs.Exercises[2].Sets[1]
	if !weighted.IsStrength() || *weighted.Weight != 35 {
		t.Errorf("bodyweight-plus set = %+v, want 35 kg strength set", weighted)
	}
	if raise := legs.Exercises[5].Sets[0]; !raise.IsBodyweight() {
		t.Errorf("leg raise set = %+v, want bodyweight", raise)
	}

	bench := workouts[1].Exercises[0].Sets[3]
	if *bench.Weight != 102.5 {
		t.Errorf("bench weight = %v, want 102.5", *bench.Weight)
	}
}

// TestWorkoutIDStable verifies that re-parsing an export yields the same IDs
// and that different sessions get different ones.
func TestWorkoutIDStable(t *testing.T) {
	a, err := ParseWorkouts(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatal(err)
	}
	b, err := ParseWorkouts(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatal(err)
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			t.Errorf("workout %d id changed: %s vs %s", i, a[i].ID, b[i].ID)
		}
	}
	if a[0].ID == a[1].ID {
		t.Error("distinct sessions share an id")
	}
}

// TestWorkoutUnknownDuration verifies that an unreadable duration finishes the
// workout at its start.
func TestWorkoutUnknownDuration(t *testing.T) {
	s := Session{Name: "Legs", Date: time.Date(2026, 2, 19, 4, 54, 0, 0, time.UTC), Duration: "?"}
	w := s.Workout()
	if w.FinishedAt == nil || !w.FinishedAt.Equal(s.Date) {
		t.Errorf("FinishedAt = %v, want %v", w.FinishedAt, s.Date)
	}
}
