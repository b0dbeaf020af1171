// Package analytics turns a workout history into personal records,
// progression suggestions and aggregate training statistics.
//
// Everything here is synchronous arithmetic over a caller-supplied snapshot.
// Missing or malformed set data excludes that set from the affected metric;
// it never aborts a pass.
package analytics

import (
	"math"

	"github.com/claude/liftlog/internal/models"
)

// EstimatedOneRepMax applies the Epley formula weight*(1+reps/30). A single
// rep returns the weight unchanged. Non-positive or non-finite input yields
// false.
func EstimatedOneRepMax(weight float64, reps int) (float64, bool) {
	if math.IsNaN(weight) || math.IsInf(weight, 0) || weight <= 0 || reps <= 0 {
		return 0, false
	}
	if reps == 1 {
		return weight, true
	}
	return weight * (1 + float64(reps)/30), true
}

// SetEstimatedOneRepMax is EstimatedOneRepMax over a recorded set.
func SetEstimatedOneRepMax(s models.Set) (float64, bool) {
	w, okW := s.WeightValue()
	r, okR := s.RepsValue()
	if !okW || !okR {
		return 0, false
	}
	return EstimatedOneRepMax(w, r)
}

// SetVolume returns weight*reps, or 0 when either is missing.
func SetVolume(s models.Set) float64 {
	w, okW := s.WeightValue()
	r, okR := s.RepsValue()
	if !okW || !okR {
		return 0
	}
	return w * float64(r)
}

// SessionVolume sums SetVolume over every completed set of the workout.
func SessionVolume(w models.Workout) float64 {
	var total float64
	for _, ex := range w.Exercises {
		total += exerciseEntryVolume(ex)
	}
	return total
}

// ExerciseVolume is SessionVolume restricted to one exercise. Repeated entries
// of the same exercise within the workout are summed.
func ExerciseVolume(w models.Workout, exerciseID string) float64 {
	var total float64
	for _, ex := range w.Exercises {
		if ex.Exercise.ID == exerciseID {
			total += exerciseEntryVolume(ex)
		}
	}
	return total
}

func exerciseEntryVolume(ex models.WorkoutExercise) float64 {
	var total float64
	for _, s := range ex.Sets {
		if s.Completed {
			total += SetVolume(s)
		}
	}
	return total
}
