package analytics

import "github.com/claude/liftlog/internal/models"

// Session holds the derived state of one workout history: the record index,
// the latest stats, a suggestion per recently trained exercise and the
// personal records still awaiting acknowledgement.
//
// A Session is not safe for concurrent use. Callers must serialise every
// method call, typically by owning the Session from a single goroutine or
// behind a mutex.
type Session struct {
	opts        Options
	records     RecordIndex
	stats       ProgressStats
	suggestions map[string]ProgressionSuggestion
	pending     []PersonalRecord
}

// NewSession returns an empty Session. Zero-valued options take the package
// defaults.
func NewSession(opts Options) *Session {
	return &Session{
		opts:        opts.withDefaults(),
		records:     RecordIndex{},
		suggestions: map[string]ProgressionSuggestion{},
	}
}

// Update rebuilds the session from a full snapshot of the history. The
// caller's slice is read but never retained.
func (s *Session) Update(workouts []models.Workout) {
	s.records = BuildRecordIndex(workouts)
	s.stats = Summarize(workouts, s.opts.Now(), s.opts)

	suggestions := make(map[string]ProgressionSuggestion)
	for _, id := range recentExercises(workouts, s.opts.SuggestionSessions) {
		if sg := Suggest(workouts, id, s.opts); sg != nil {
			suggestions[id] = *sg
		}
	}
	s.suggestions = suggestions
}

// recentExercises returns the exercise IDs trained in the last n counted
// workouts, in first-seen order walking back from the newest.
func recentExercises(workouts []models.Workout, n int) []string {
	var counted []models.Workout
	for _, w := range workouts {
		if w.Counted() {
			counted = append(counted, w)
		}
	}
	sortChronological(counted)
	if len(counted) > n {
		counted = counted[len(counted)-n:]
	}

	seen := make(map[string]bool)
	var ids []string
	for i := len(counted) - 1; i >= 0; i-- {
		for _, ex := range counted[i].Exercises {
			id := ex.Exercise.ID
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

// SuggestionFor returns the cached suggestion for an exercise. A miss does
// not trigger a recomputation; the cache is only refreshed by Update.
func (s *Session) SuggestionFor(exerciseID string) (ProgressionSuggestion, bool) {
	sg, ok := s.suggestions[exerciseID]
	return sg, ok
}

// RecordCompletion detects the personal records set by a finished workout,
// queues them as pending and returns them.
func (s *Session) RecordCompletion(completed models.Workout, previous []models.Workout) []PersonalRecord {
	found := DetectNewRecords(completed, previous)
	s.pending = append(s.pending, cloneRecords(found)...)
	return found
}

// AcknowledgePRs clears the pending records.
func (s *Session) AcknowledgePRs() {
	s.pending = nil
}

// RecordIndex returns a copy of the current record index.
func (s *Session) RecordIndex() RecordIndex {
	return s.records.clone()
}

// Records returns every current record, sorted by exercise then kind.
func (s *Session) Records() []PersonalRecord {
	return s.records.All()
}

// Stats returns the stats computed by the last Update.
func (s *Session) Stats() ProgressStats {
	return s.stats
}

// PendingPRs returns a copy of the records awaiting acknowledgement, oldest
// first.
func (s *Session) PendingPRs() []PersonalRecord {
	return cloneRecords(s.pending)
}

// Suggestions returns a copy of the suggestion cache.
func (s *Session) Suggestions() map[string]ProgressionSuggestion {
	out := make(map[string]ProgressionSuggestion, len(s.suggestions))
	for id, sg := range s.suggestions {
		out[id] = sg
	}
	return out
}
