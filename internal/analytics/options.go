package analytics

import "time"

// Defaults for Options. The progression thresholds are heuristics, not
// derived from any training model.
const (
	DefaultSessionWindow      = 3
	DefaultIncreasePct        = 2.5
	DefaultDeloadPct          = 10.0
	DefaultWeightStep         = 0.5
	DefaultRecentDays         = 7
	DefaultSuggestionSessions = 5
)

// Options holds the tunable constants of the engine.
type Options struct {
	// SessionWindow is how many of the most recent sessions of an exercise
	// the progression advisor looks at.
	SessionWindow int
	// IncreasePct is the weight step, in percent, for an "increase" suggestion.
	IncreasePct float64
	// DeloadPct is the weight reduction, in percent, for a "deload" suggestion.
	DeloadPct float64
	// WeightStep is the rounding granularity for suggested weights, in kg.
	// Zero disables rounding.
	WeightStep float64
	// RecentDays is the length of the trailing window used by Summarize.
	RecentDays int
	// SuggestionSessions bounds which exercises get a cached suggestion on
	// Update: only those trained in this many most recent sessions.
	SuggestionSessions int
	// Now is the clock used for the trailing stats window.
	Now func() time.Time
}

// DefaultOptions returns Options populated with the package defaults.
func DefaultOptions() Options {
	return Options{
		SessionWindow:      DefaultSessionWindow,
		IncreasePct:        DefaultIncreasePct,
		DeloadPct:          DefaultDeloadPct,
		WeightStep:         DefaultWeightStep,
		RecentDays:         DefaultRecentDays,
		SuggestionSessions: DefaultSuggestionSessions,
		Now:                time.Now,
	}
}

// withDefaults fills zero-valued fields.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.SessionWindow <= 0 {
		o.SessionWindow = d.SessionWindow
	}
	if o.IncreasePct <= 0 {
		o.IncreasePct = d.IncreasePct
	}
	if o.DeloadPct <= 0 || o.DeloadPct >= 100 {
		o.DeloadPct = d.DeloadPct
	}
	if o.WeightStep < 0 {
		o.WeightStep = 0
	}
	if o.RecentDays <= 0 {
		o.RecentDays = d.RecentDays
	}
	if o.SuggestionSessions <= 0 {
		o.SuggestionSessions = d.SuggestionSessions
	}
	if o.Now == nil {
		o.Now = d.Now
	}
	return o
}
