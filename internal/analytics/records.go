package analytics

import (
	"bytes"
	"sort"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// RecordKind names a tracked personal-record metric.
type RecordKind string

const (
	KindMaxWeight         RecordKind = "max_weight"
	KindEstimatedOneRM    RecordKind = "estimated_1rm"
	KindMaxSessionVolume  RecordKind = "max_session_volume"
	KindMaxBodyweightReps RecordKind = "max_bodyweight_reps"
)

// RecordKinds lists every kind in the order records are reported.
var RecordKinds = []RecordKind{KindMaxWeight, KindEstimatedOneRM, KindMaxSessionVolume, KindMaxBodyweightReps}

func kindOrder(k RecordKind) int {
	for i, rk := range RecordKinds {
		if rk == k {
			return i
		}
	}
	return len(RecordKinds)
}

// PersonalRecord is the best value of one metric for one exercise. SetIndex
// is the position of the set among the exercise's sets in the workout,
// counting across repeated entries, or -1 for session volume (Set is nil).
type PersonalRecord struct {
	ExerciseID string      `json:"exercise_id"`
	Kind       RecordKind  `json:"kind"`
	Value      float64     `json:"value"`
	WorkoutID  uuid.UUID   `json:"workout_id"`
	SetIndex   int         `json:"set_index"`
	Set        *models.Set `json:"set,omitempty"`
	AchievedAt time.Time   `json:"achieved_at"`
	IsNew      bool        `json:"is_new,omitempty"`
}

// RecordIndex maps exercise ID to its records, ordered by RecordKinds.
// Exercises without a qualifying observation have no entry.
type RecordIndex map[string][]PersonalRecord

// Best returns the record of the given kind for an exercise.
func (idx RecordIndex) Best(exerciseID string, kind RecordKind) (PersonalRecord, bool) {
	for _, r := range idx[exerciseID] {
		if r.Kind == kind {
			return r, true
		}
	}
	return PersonalRecord{}, false
}

// Records returns a copy of the records of one exercise.
func (idx RecordIndex) Records(exerciseID string) []PersonalRecord {
	return cloneRecords(idx[exerciseID])
}

// Exercises returns the indexed exercise IDs in sorted order.
func (idx RecordIndex) Exercises() []string {
	ids := make([]string, 0, len(idx))
	for id := range idx {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// All returns every record sorted by exercise ID, then kind.
func (idx RecordIndex) All() []PersonalRecord {
	var out []PersonalRecord
	for _, id := range idx.Exercises() {
		out = append(out, cloneRecords(idx[id])...)
	}
	return out
}

func (idx RecordIndex) clone() RecordIndex {
	out := make(RecordIndex, len(idx))
	for id, recs := range idx {
		out[id] = cloneRecords(recs)
	}
	return out
}

// observation is a candidate record value with the position it was seen at.
type observation struct {
	value     float64
	startedAt time.Time
	workoutID uuid.UUID
	setIndex  int
	set       *models.Set
}

// before orders observations by when they happened; the earlier one keeps a
// tied record.
func (o observation) before(other observation) bool {
	if !o.startedAt.Equal(other.startedAt) {
		return o.startedAt.Before(other.startedAt)
	}
	if c := bytes.Compare(o.workoutID[:], other.workoutID[:]); c != 0 {
		return c < 0
	}
	return o.setIndex < other.setIndex
}

// beats reports whether o should replace the current best.
func (o observation) beats(best observation) bool {
	if o.value != best.value {
		return o.value > best.value
	}
	return o.before(best)
}

type bestKey struct {
	exerciseID string
	kind       RecordKind
}

type recordBuilder struct {
	best map[bestKey]observation
}

func newRecordBuilder() *recordBuilder {
	return &recordBuilder{best: make(map[bestKey]observation)}
}

func (b *recordBuilder) offer(exerciseID string, kind RecordKind, o observation) {
	k := bestKey{exerciseID, kind}
	cur, ok := b.best[k]
	if !ok || o.beats(cur) {
		b.best[k] = o
	}
}

// add feeds every qualifying observation of a counted workout.
func (b *recordBuilder) add(w models.Workout) {
	if !w.Counted() {
		return
	}
	setIndex := make(map[string]int)
	volume := make(map[string]float64)
	var order []string

	for _, ex := range w.Exercises {
		id := ex.Exercise.ID
		if id == "" {
			continue
		}
		if _, seen := volume[id]; !seen {
			volume[id] = 0
			order = append(order, id)
		}
		for _, s := range ex.Sets {
			idx := setIndex[id]
			setIndex[id]++
			if !s.Completed {
				continue
			}
			volume[id] += SetVolume(s)

			base := observation{startedAt: w.StartedAt, workoutID: w.ID, setIndex: idx}
			if s.IsStrength() {
				weight, _ := s.WeightValue()
				o := base
				o.value = weight
				o.set = cloneSet(s)
				b.offer(id, KindMaxWeight, o)

				if e1rm, ok := SetEstimatedOneRepMax(s); ok {
					o := base
					o.value = e1rm
					o.set = cloneSet(s)
					b.offer(id, KindEstimatedOneRM, o)
				}
			} else if s.IsBodyweight() {
				reps, _ := s.RepsValue()
				o := base
				o.value = float64(reps)
				o.set = cloneSet(s)
				b.offer(id, KindMaxBodyweightReps, o)
			}
		}
	}

	for _, id := range order {
		if v := volume[id]; v > 0 {
			b.offer(id, KindMaxSessionVolume, observation{
				value:     v,
				startedAt: w.StartedAt,
				workoutID: w.ID,
				setIndex:  -1,
			})
		}
	}
}

func (b *recordBuilder) index() RecordIndex {
	idx := make(RecordIndex)
	for k, o := range b.best {
		idx[k.exerciseID] = append(idx[k.exerciseID], PersonalRecord{
			ExerciseID: k.exerciseID,
			Kind:       k.kind,
			Value:      o.value,
			WorkoutID:  o.workoutID,
			SetIndex:   o.setIndex,
			Set:        o.set,
			AchievedAt: o.startedAt,
		})
	}
	for id := range idx {
		recs := idx[id]
		sort.Slice(recs, func(i, j int) bool { return kindOrder(recs[i].Kind) < kindOrder(recs[j].Kind) })
	}
	return idx
}

// BuildRecordIndex computes the best-ever value of each record kind per
// exercise over the counted workouts of the history. Input order does not
// affect the result.
func BuildRecordIndex(workouts []models.Workout) RecordIndex {
	b := newRecordBuilder()
	for _, w := range workouts {
		b.add(w)
	}
	return b.index()
}

// DetectNewRecords compares a just-finished workout against the records of
// the history that preceded it. Only strict improvements count, so repeating
// a best performance does not produce a new record. Any entry of previous
// that shares the completed workout's ID is ignored.
func DetectNewRecords(completed models.Workout, previous []models.Workout) []PersonalRecord {
	b := newRecordBuilder()
	for _, w := range previous {
		if w.ID == completed.ID {
			continue
		}
		b.add(w)
	}
	baseline := b.index()
	current := BuildRecordIndex([]models.Workout{completed})

	var found []PersonalRecord
	for _, id := range current.Exercises() {
		for _, rec := range current[id] {
			prior, ok := baseline.Best(id, rec.Kind)
			if ok && rec.Value <= prior.Value {
				continue
			}
			rec.IsNew = true
			found = append(found, rec)
		}
	}
	return found
}

func (r PersonalRecord) clone() PersonalRecord {
	if r.Set != nil {
		r.Set = cloneSet(*r.Set)
	}
	return r
}

func cloneRecords(recs []PersonalRecord) []PersonalRecord {
	if len(recs) == 0 {
		return nil
	}
	out := make([]PersonalRecord, len(recs))
	for i, r := range recs {
		out[i] = r.clone()
	}
	return out
}

func cloneSet(s models.Set) *models.Set {
	c := s.Clone()
	return &c
}
