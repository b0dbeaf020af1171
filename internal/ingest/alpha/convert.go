package alpha

import (
	"io"
	"strings"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// namespace seeds deterministic workout IDs, so re-importing an export
// replaces the workouts it created before.
var namespace = uuid.MustParse("5b0f7a8e-2c4d-4f61-9a3e-8d7c6b5a4f30")

// ParseWorkouts parses an export straight into workouts.
func ParseWorkouts(r io.Reader) ([]models.Workout, error) {
	sessions, err := Parse(r)
	if err != nil {
		return nil, err
	}
	workouts := make([]models.Workout, 0, len(sessions))
	for _, s := range sessions {
		workouts = append(workouts, s.Workout())
	}
	return workouts, nil
}

// WorkoutID returns the ID a session imports under.
func (s Session) WorkoutID() uuid.UUID {
	key := s.Date.UTC().Format("2006-01-02T15:04") + "|" + s.Name
	return uuid.NewSHA1(namespace, []byte(key))
}

// Workout converts the session into a finished workout. Exports only list
// performed sets, so every set is completed. A session whose duration cannot
// be read finishes at its start time.
func (s Session) Workout() models.Workout {
	finish := s.Date
	if d, ok := parseSessionDuration(s.Duration); ok {
		finish = s.Date.Add(d)
	}
	w := models.Workout{
		ID:         s.WorkoutID(),
		Name:       s.Name,
		StartedAt:  s.Date,
		FinishedAt: &finish,
		Completed:  true,
		Exercises:  make([]models.WorkoutExercise, 0, len(s.Exercises)),
	}
	for _, ex := range s.Exercises {
		w.Exercises = append(w.Exercises, ex.workoutExercise())
	}
	return w
}

func (ex Exercise) exerciseID() string {
	if ex.Equipment == "" || strings.EqualFold(ex.Equipment, "bodyweight") {
		return models.ExerciseID(ex.Name)
	}
	return models.ExerciseID(ex.Name + " " + ex.Equipment)
}

func (ex Exercise) workoutExercise() models.WorkoutExercise {
	out := models.WorkoutExercise{
		Exercise: models.Exercise{
			ID:        ex.exerciseID(),
			Name:      ex.Name,
			Equipment: ex.Equipment,
		},
		Sets: make([]models.Set, 0, len(ex.Sets)),
	}
	if ex.TargetReps > 0 {
		out.Exercise.TargetReps = models.Int(ex.TargetReps)
	}
	for _, s := range ex.Sets {
		set := models.Set{
			Weight:    models.Float(s.WeightKg),
			Reps:      models.Int(s.Reps),
			Completed: true,
			IsWarmup:  s.IsWarmup,
		}
		if s.RIR != nil {
			set.RIR = models.Float(*s.RIR)
		}
		out.Sets = append(out.Sets, set)
	}
	return out
}
