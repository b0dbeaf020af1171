package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/claude/liftlog/internal/analytics"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/tracker"
	"github.com/go-chi/chi/v5"
)

// maxImportBytes bounds CSV uploads.
const maxImportBytes = 32 << 20

// FinishResponse is the body returned for a finished workout.
type FinishResponse struct {
	Workout    models.Workout             `json:"workout"`
	NewRecords []analytics.PersonalRecord `json:"new_records"`
}

func (s *Server) handleFinishWorkout(w http.ResponseWriter, r *http.Request) {
	var workout models.Workout
	if err := json.NewDecoder(r.Body).Decode(&workout); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	saved, found, err := s.tracker.FinishWorkout(r.Context(), workout)
	if errors.Is(err, tracker.ErrWorkoutNotFinished) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.log.Error("finish workout error", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if found == nil {
		found = []analytics.PersonalRecord{}
	}
	writeJSON(w, http.StatusCreated, FinishResponse{Workout: saved, NewRecords: found})
}

func (s *Server) handleAlphaImport(w http.ResponseWriter, r *http.Request) {
	result, err := s.alpha.Ingest(r.Context(), http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		s.log.Error("alpha import error", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.Reload(r.Context()); err != nil {
		s.log.Error("reload error", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"workouts": len(s.tracker.History(0))})
}

func (s *Server) handleQueryWorkouts(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	start, end, ranged, err := parseTimeRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !ranged {
		writeJSON(w, http.StatusOK, s.tracker.History(limit))
		return
	}
	writeJSON(w, http.StatusOK, s.tracker.HistoryBetween(start, end, limit))
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	records := s.tracker.Records(r.URL.Query().Get("exercise"))
	if records == nil {
		records = []analytics.PersonalRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handlePendingRecords(w http.ResponseWriter, r *http.Request) {
	pending := s.tracker.PendingRecords()
	if pending == nil {
		pending = []analytics.PersonalRecord{}
	}
	writeJSON(w, http.StatusOK, pending)
}

func (s *Server) handleAcknowledgeRecords(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{"acknowledged": s.tracker.AcknowledgeRecords()})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Stats())
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Suggestions())
}

func (s *Server) handleSuggestion(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "exerciseID")
	sg, ok := s.tracker.Suggestion(id)
	if !ok {
		writeError(w, http.StatusNotFound, "no suggestion for exercise "+id)
		return
	}
	writeJSON(w, http.StatusOK, sg)
}

func (s *Server) handleStorageStats(w http.ResponseWriter, r *http.Request) {
	if !s.requireReports(w) {
		return
	}
	stats, err := s.reports.GetDataStats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleTrainingSummary(w http.ResponseWriter, r *http.Request) {
	if !s.requireReports(w) {
		return
	}
	start, end, ranged, err := parseTimeRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !ranged {
		end = time.Now()
		start = end.AddDate(0, -3, 0)
	}
	periods, err := s.reports.GetTrainingSummary(r.Context(), start, end, r.URL.Query().Get("bucket"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, periods)
}

func (s *Server) handleImportLogs(w http.ResponseWriter, r *http.Request) {
	if !s.requireReports(w) {
		return
	}
	limit, err := parseLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	logs, err := s.reports.QueryImportLogs(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) requireReports(w http.ResponseWriter) bool {
	if s.reports == nil {
		writeError(w, http.StatusNotImplemented, "storage reports need the postgres driver")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseLimit(r *http.Request) (int, error) {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.New("limit must be a non-negative integer")
	}
	return n, nil
}

// parseTimeRange reads start and end as RFC 3339 or YYYY-MM-DD. A date-only
// end covers the whole day. ranged is false when start is absent.
func parseTimeRange(r *http.Request) (start, end time.Time, ranged bool, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")
	if startStr == "" {
		return time.Time{}, time.Time{}, false, nil
	}

	start, _, err = parseTime(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	if endStr == "" {
		return start, time.Now(), true, nil
	}
	end, dateOnly, err := parseTime(endStr)
	if err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	if dateOnly {
		end = end.Add(24 * time.Hour)
	}
	return start, end, true, nil
}

func parseTime(s string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, false, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false, errors.New("invalid time " + strconv.Quote(s) + ": want RFC 3339 or YYYY-MM-DD")
	}
	return t, true, nil
}
