package analytics

import (
	"bytes"
	"math"
	"sort"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// Rationale explains a progression suggestion.
type Rationale string

const (
	RationaleIncrease Rationale = "increase"
	RationaleHold     Rationale = "hold"
	RationaleDeload   Rationale = "deload"
)

// ProgressionSuggestion is the recommended target for the next session of an
// exercise. Weight is 0 for bodyweight exercises. Sessions is how many
// sessions it was derived from and BasedOn the workout the last numbers came
// from.
type ProgressionSuggestion struct {
	ExerciseID string    `json:"exercise_id"`
	Weight     float64   `json:"weight"`
	Reps       int       `json:"reps"`
	Rationale  Rationale `json:"rationale"`
	LastWeight float64   `json:"last_weight"`
	LastReps   int       `json:"last_reps"`
	Sessions   int       `json:"sessions"`
	BasedOn    uuid.UUID `json:"based_on"`
}

type lift struct {
	weight float64
	reps   int
}

// exerciseSession is one workout reduced to a single exercise.
type exerciseSession struct {
	workoutID  uuid.UUID
	target     int
	working    int // non-warmup sets, completed or not
	completed  int // completed non-warmup sets
	weighted   []lift
	bodyweight []lift
}

func newExerciseSession(w models.Workout, exerciseID string) exerciseSession {
	es := exerciseSession{workoutID: w.ID}
	for _, ex := range w.Exercises {
		if ex.Exercise.ID != exerciseID {
			continue
		}
		if t := ex.Exercise.TargetReps; t != nil && *t > 0 && es.target == 0 {
			es.target = *t
		}
		for _, s := range ex.Sets {
			if s.IsWarmup {
				continue
			}
			es.working++
			if !s.Completed {
				continue
			}
			es.completed++
			reps, _ := s.RepsValue()
			switch {
			case s.IsStrength():
				weight, _ := s.WeightValue()
				es.weighted = append(es.weighted, lift{weight: weight, reps: reps})
			case s.IsBodyweight():
				es.bodyweight = append(es.bodyweight, lift{reps: reps})
			}
		}
	}
	return es
}

func (es exerciseSession) lifts(weighted bool) []lift {
	if weighted {
		return es.weighted
	}
	return es.bodyweight
}

// top returns the working weight (heaviest lift) and the fewest reps done at
// that weight.
func top(lifts []lift) (float64, int) {
	var weight float64
	reps := -1
	for _, l := range lifts {
		switch {
		case reps < 0 || l.weight > weight:
			weight, reps = l.weight, l.reps
		case l.weight == weight && l.reps < reps:
			reps = l.reps
		}
	}
	if reps < 0 {
		return 0, 0
	}
	return weight, reps
}

func repsAt(lifts []lift, weight float64) int {
	var total int
	for _, l := range lifts {
		if l.weight == weight {
			total += l.reps
		}
	}
	return total
}

// metPrescription: every working set was completed with usable numbers and,
// when a plan exists, reached the planned reps.
func (es exerciseSession) metPrescription(weighted bool) bool {
	lifts := es.lifts(weighted)
	if es.working == 0 || len(lifts) != es.working {
		return false
	}
	if es.target > 0 {
		for _, l := range lifts {
			if l.reps < es.target {
				return false
			}
		}
	}
	return true
}

// progressed: latest met its prescription and matched or beat prev set for set.
func progressed(latest, prev exerciseSession, weighted bool) bool {
	if !latest.metPrescription(weighted) {
		return false
	}
	cur, old := latest.lifts(weighted), prev.lifts(weighted)
	if len(cur) < len(old) {
		return false
	}
	for i := range old {
		c, p := cur[i], old[i]
		if c.weight > p.weight {
			continue
		}
		if c.weight >= p.weight && c.reps >= p.reps {
			continue
		}
		return false
	}
	return true
}

// regressed: fewer completed sets, or fewer reps at an unchanged working weight.
func regressed(latest, prev exerciseSession, weighted bool) bool {
	if latest.completed < prev.completed {
		return true
	}
	cur, old := latest.lifts(weighted), prev.lifts(weighted)
	if len(cur) == 0 || len(old) == 0 {
		return false
	}
	cw, _ := top(cur)
	pw, _ := top(old)
	return cw == pw && repsAt(cur, cw) < repsAt(old, pw)
}

// exerciseHistory returns the counted workouts containing the exercise,
// oldest first.
func exerciseHistory(workouts []models.Workout, exerciseID string) []models.Workout {
	var out []models.Workout
	for _, w := range workouts {
		if w.Counted() && w.HasExercise(exerciseID) {
			out = append(out, w)
		}
	}
	sortChronological(out)
	return out
}

func sortChronological(ws []models.Workout) {
	sort.SliceStable(ws, func(i, j int) bool {
		if !ws[i].StartedAt.Equal(ws[j].StartedAt) {
			return ws[i].StartedAt.Before(ws[j].StartedAt)
		}
		return bytes.Compare(ws[i].ID[:], ws[j].ID[:]) < 0
	})
}

// Suggest proposes the next target for an exercise from its most recent
// sessions. It returns nil when the history has no usable session.
//
// The latest session is compared with the one before it: if every set was
// completed as planned and matched or beat the previous session, the weight
// goes up; two consecutive regressions trigger a deload; anything else holds.
func Suggest(workouts []models.Workout, exerciseID string, opts Options) *ProgressionSuggestion {
	opts = opts.withDefaults()
	if exerciseID == "" {
		return nil
	}
	history := exerciseHistory(workouts, exerciseID)
	if len(history) == 0 {
		return nil
	}
	if len(history) > opts.SessionWindow {
		history = history[len(history)-opts.SessionWindow:]
	}
	sessions := make([]exerciseSession, len(history))
	for i, w := range history {
		sessions[i] = newExerciseSession(w, exerciseID)
	}

	// The reference is the most recent session with usable sets; it anchors
	// the suggested numbers even when the latest session was a wash.
	ref := -1
	for i := len(sessions) - 1; i >= 0; i-- {
		if len(sessions[i].weighted) > 0 || len(sessions[i].bodyweight) > 0 {
			ref = i
			break
		}
	}
	if ref < 0 {
		return nil
	}
	weighted := len(sessions[ref].weighted) > 0
	workWeight, workReps := top(sessions[ref].lifts(weighted))

	n := len(sessions)
	latest := sessions[n-1]
	var rationale Rationale
	switch {
	case n == 1 && latest.metPrescription(weighted),
		n > 1 && progressed(latest, sessions[n-2], weighted):
		rationale = RationaleIncrease
	case n > 2 && regressed(latest, sessions[n-2], weighted) && regressed(sessions[n-2], sessions[n-3], weighted):
		rationale = RationaleDeload
	default:
		rationale = RationaleHold
	}

	reps := workReps
	if latest.target > 0 {
		reps = latest.target
	}
	weight := workWeight

	if weighted {
		switch rationale {
		case RationaleIncrease:
			weight = roundToStep(workWeight*(1+opts.IncreasePct/100), opts.WeightStep)
			if weight <= workWeight {
				weight = workWeight + math.Max(opts.WeightStep, workWeight*opts.IncreasePct/100)
			}
		case RationaleDeload:
			weight = roundToStep(workWeight*(1-opts.DeloadPct/100), opts.WeightStep)
			if weight >= workWeight {
				weight = math.Max(workWeight-opts.WeightStep, 0)
			}
		}
	} else {
		switch rationale {
		case RationaleIncrease:
			reps = workReps + 1
			if latest.target > workReps+1 {
				reps = latest.target
			}
		case RationaleDeload:
			reps = max(1, int(math.Round(float64(workReps)*(1-opts.DeloadPct/100))))
		}
	}

	return &ProgressionSuggestion{
		ExerciseID: exerciseID,
		Weight:     weight,
		Reps:       reps,
		Rationale:  rationale,
		LastWeight: workWeight,
		LastReps:   workReps,
		Sessions:   n,
		BasedOn:    sessions[ref].workoutID,
	}
}

// roundToStep rounds v to the nearest multiple of step. A zero step rounds to
// two decimals.
func roundToStep(v, step float64) float64 {
	if step <= 0 {
		return math.Round(v*100) / 100
	}
	return math.Round(v/step) * step
}
