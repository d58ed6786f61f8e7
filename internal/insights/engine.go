// Package insights turns a list of check-ins into time-of-day insights:
// the best hour windows, a chronotype label and a written recommendation,
// plus the weekly heatmap and per-day series used by the CLI.
//
// Every operation is a pure function of its input. Missing or malformed
// time fields fall back to the defaults documented on
// models.CheckInEntry.ResolveStart, and empty input yields empty results.
package insights

import (
	"time"

	"github.com/julianstephens/peakstate/internal/models"
)

// Engine derives insights in a fixed time zone.
type Engine struct {
	loc       *time.Location
	templates Templates
}

// Option configures an Engine.
type Option func(*Engine)

// WithLocation sets the zone used to read start hours from instants.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// WithTemplates overrides recommendation templates. Empty fields keep the default.
func WithTemplates(t Templates) Option {
	return func(e *Engine) {
		e.templates = e.templates.merge(t)
	}
}

// NewEngine creates an Engine using time.Local and the default templates.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		loc:       time.Local,
		templates: DefaultTemplates(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Location returns the engine's time zone.
func (e *Engine) Location() *time.Location {
	return e.loc
}

// Report bundles the three headline insights.
type Report struct {
	Windows        []Window      `json:"windows" yaml:"windows"`
	Chronotype     Chronotype    `json:"chronotype" yaml:"chronotype"`
	Segments       []SegmentStat `json:"segments" yaml:"segments"`
	Recommendation string        `json:"recommendation" yaml:"recommendation"`
}

// Analyze computes windows, chronotype and recommendation in one pass over entries.
func (e *Engine) Analyze(entries []models.CheckInEntry) Report {
	windows := e.FindBestWindows(entries)
	segments := e.SegmentAverages(entries)
	chronotype := chronotypeFrom(segments)
	return Report{
		Windows:        windows,
		Chronotype:     chronotype,
		Segments:       segments,
		Recommendation: e.Recommend(windows, chronotype),
	}
}

// FindBestWindows ranks hour windows using time.Local.
func FindBestWindows(entries []models.CheckInEntry) []Window {
	return NewEngine().FindBestWindows(entries)
}

// DetermineChronotype classifies entries using time.Local.
func DetermineChronotype(entries []models.CheckInEntry) Chronotype {
	return NewEngine().DetermineChronotype(entries)
}

// Recommend writes the recommendation with the default templates.
func Recommend(windows []Window, chronotype Chronotype) string {
	return NewEngine().Recommend(windows, chronotype)
}
