package models

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Set is one recorded effort. Every measurement is optional: a strength set
// carries weight and reps, a cardio set duration and distance.
type Set struct {
	Weight          *float64 `json:"weight,omitempty"`
	Reps            *int     `json:"reps,omitempty"`
	Completed       bool     `json:"completed"`
	DurationSeconds *int     `json:"duration_seconds,omitempty"`
	DistanceKm      *float64 `json:"distance_km,omitempty"`
	RestSeconds     *int     `json:"rest_seconds,omitempty"`
	IsWarmup        bool     `json:"is_warmup,omitempty"`
	RIR             *float64 `json:"rir,omitempty"`
}

// WeightValue returns the set weight, or false when it is missing or not a
// finite non-negative number.
func (s Set) WeightValue() (float64, bool) {
	if s.Weight == nil {
		return 0, false
	}
	w := *s.Weight
	if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
		return 0, false
	}
	return w, true
}

// RepsValue returns the rep count, or false when it is missing or negative.
func (s Set) RepsValue() (int, bool) {
	if s.Reps == nil || *s.Reps < 0 {
		return 0, false
	}
	return *s.Reps, true
}

// IsStrength reports whether the set has both weight and reps above zero.
// Only such sets feed weight-based metrics.
func (s Set) IsStrength() bool {
	w, okW := s.WeightValue()
	r, okR := s.RepsValue()
	return okW && okR && w > 0 && r > 0
}

// IsBodyweight reports whether the set has reps but no added weight.
func (s Set) IsBodyweight() bool {
	r, ok := s.RepsValue()
	if !ok || r == 0 {
		return false
	}
	w, okW := s.WeightValue()
	return !okW || w == 0
}

// Clone returns a deep copy so the result shares no memory with s.
func (s Set) Clone() Set {
	c := s
	c.Weight = clonePtr(s.Weight)
	c.Reps = clonePtr(s.Reps)
	c.DurationSeconds = clonePtr(s.DurationSeconds)
	c.DistanceKm = clonePtr(s.DistanceKm)
	c.RestSeconds = clonePtr(s.RestSeconds)
	c.RIR = clonePtr(s.RIR)
	return c
}

// Exercise identifies a movement. TargetReps is the planned rep count from
// the workout template; nil means no plan was recorded.
type Exercise struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Equipment  string `json:"equipment,omitempty"`
	TargetReps *int   `json:"target_reps,omitempty"`
}

// WorkoutExercise is one exercise instance within a workout. Sets are in
// performance order.
type WorkoutExercise struct {
	Exercise Exercise `json:"exercise"`
	Sets     []Set    `json:"sets"`
}

// Workout is a training session.
type Workout struct {
	ID         uuid.UUID         `json:"id"`
	Name       string            `json:"name"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt *time.Time        `json:"finished_at,omitempty"`
	Completed  bool              `json:"completed"`
	Exercises  []WorkoutExercise `json:"exercises"`
}

// Counted reports whether the workout is eligible for analytics: it must be
// completed and have a finish time.
func (w Workout) Counted() bool {
	return w.Completed && w.FinishedAt != nil
}

// Duration returns FinishedAt - StartedAt, or false when the workout is not
// finished or the timestamps are inverted.
func (w Workout) Duration() (time.Duration, bool) {
	if w.FinishedAt == nil {
		return 0, false
	}
	d := w.FinishedAt.Sub(w.StartedAt)
	if d < 0 {
		return 0, false
	}
	return d, true
}

// HasExercise reports whether any entry of the workout is the given exercise.
func (w Workout) HasExercise(exerciseID string) bool {
	for _, ex := range w.Exercises {
		if ex.Exercise.ID == exerciseID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the workout.
func (w Workout) Clone() Workout {
	c := w
	if w.FinishedAt != nil {
		t := *w.FinishedAt
		c.FinishedAt = &t
	}
	c.Exercises = make([]WorkoutExercise, len(w.Exercises))
	for i, ex := range w.Exercises {
		ce := WorkoutExercise{Exercise: ex.Exercise, Sets: make([]Set, len(ex.Sets))}
		ce.Exercise.TargetReps = clonePtr(ex.Exercise.TargetReps)
		for j, s := range ex.Sets {
			ce.Sets[j] = s.Clone()
		}
		c.Exercises[i] = ce
	}
	return c
}

var nonSlugRe = regexp.MustCompile(`[^a-z0-9]+`)

// ExerciseID derives a stable identifier from a display name:
// "Bench Press (Barbell)" -> "bench-press-barbell".
func ExerciseID(name string) string {
	s := nonSlugRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	return strings.Trim(s, "-")
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
