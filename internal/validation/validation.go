package validation

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/peakstate/internal/constants"
	"github.com/julianstephens/peakstate/internal/models"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictRatingOutOfRange  ConflictType = "rating_out_of_range"
	ConflictDuplicateID       ConflictType = "duplicate_id"
	ConflictMissingID         ConflictType = "missing_id"
	ConflictMissingTimestamp  ConflictType = "missing_timestamp"
	ConflictPartialSession    ConflictType = "partial_session"
	ConflictSessionOrder      ConflictType = "session_end_before_start"
	ConflictDurationMismatch  ConflictType = "duration_mismatch"
	ConflictInvalidClock      ConflictType = "invalid_clock"
	ConflictSessionStartDrift ConflictType = "session_start_mismatch"
)

// Conflict represents one problem found in the stored entry list
type Conflict struct {
	Type        ConflictType
	Description string
	EntryIDs    []int64
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// FixAction represents an action taken during auto-fix
type FixAction struct {
	Action         string
	SourceConflict Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// Count returns how many conflicts of type t were found.
func (vr *ValidationResult) Count(t ConflictType) int {
	n := 0
	for _, c := range vr.Conflicts {
		if c.Type == t {
			n++
		}
	}
	return n
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, conflict := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", conflict.Description)
	}
	return b.String()
}

// Validator checks check-in entries against the data model invariants
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// ValidateEntries checks every entry and the list as a whole.
func (v *Validator) ValidateEntries(entries []models.CheckInEntry) ValidationResult {
	var result ValidationResult

	seen := make(map[int64]int, len(entries))
	for _, e := range entries {
		if e.ID == 0 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictMissingID,
				Description: fmt.Sprintf("Entry dated %q has no id", e.Date),
			})
		} else {
			seen[e.ID]++
		}
		result.Conflicts = append(result.Conflicts, v.ValidateEntry(e)...)
	}

	ids := make([]int64, 0, len(seen))
	for id, n := range seen {
		if n > 1 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictDuplicateID,
			Description: fmt.Sprintf("Id %d is used by %d entries", id, seen[id]),
			EntryIDs:    []int64{id},
		})
	}

	return result
}

// ValidateEntry checks a single entry.
func (v *Validator) ValidateEntry(e models.CheckInEntry) []Conflict {
	var conflicts []Conflict
	add := func(t ConflictType, format string, args ...any) {
		conflicts = append(conflicts, Conflict{
			Type:        t,
			Description: fmt.Sprintf("Entry %d: ", e.ID) + fmt.Sprintf(format, args...),
			EntryIDs:    []int64{e.ID},
		})
	}

	ratings := []struct {
		name  string
		value *float64
	}{
		{"energy", &e.Energy},
		{"focus", &e.Focus},
		{"mood", &e.Mood},
		{"stress", e.StressLevel},
		{"result", e.Result},
	}
	for _, r := range ratings {
		if r.value == nil {
			continue
		}
		if err := CheckRating(r.name, *r.value); err != nil {
			add(ConflictRatingOutOfRange, "%v", err)
		}
	}

	if e.Timestamp.IsZero() {
		add(ConflictMissingTimestamp, "timestamp is missing or unreadable")
	}

	if e.Hour != nil && (*e.Hour < 0 || *e.Hour > 23) {
		add(ConflictInvalidClock, "hour %d is outside 0-23", *e.Hour)
	}
	if e.Minute != nil && (*e.Minute < 0 || *e.Minute > 59) {
		add(ConflictInvalidClock, "minute %d is outside 0-59", *e.Minute)
	}

	switch {
	case e.IsLegacy():
	case e.SessionStart == nil || e.SessionEnd == nil:
		add(ConflictPartialSession, "only one session bound is set")
	default:
		if e.SessionEnd.Before(*e.SessionStart) {
			add(ConflictSessionOrder, "session ends before it starts")
		}
		if !e.Timestamp.IsZero() && !e.Timestamp.Equal(*e.SessionStart) {
			add(ConflictSessionStartDrift, "timestamp differs from session start")
		}
		want := models.SessionMinutes(*e.SessionStart, *e.SessionEnd)
		if e.SessionDurationMinutes == nil || *e.SessionDurationMinutes != want {
			add(ConflictDurationMismatch, "stored duration does not match session bounds (%d min)", want)
		}
	}

	return conflicts
}

// CheckRating reports whether value is a valid rating: within
// [RatingMin, RatingMax] and on a RatingStep boundary.
func CheckRating(name string, value float64) error {
	if math.IsNaN(value) || value < constants.RatingMin || value > constants.RatingMax {
		return fmt.Errorf("%s rating %g must be between %g and %g", name, value, constants.RatingMin, constants.RatingMax)
	}
	steps := value / constants.RatingStep
	if math.Abs(steps-math.Round(steps)) > constants.RatingEpsilon {
		return fmt.Errorf("%s rating %g must be a multiple of %g", name, value, constants.RatingStep)
	}
	return nil
}

// CheckSessionMinutes validates a session length requested by the user.
func CheckSessionMinutes(minutes int) error {
	if minutes < constants.MinSessionMin || minutes > constants.MaxSessionMin {
		return fmt.Errorf("session length %d must be between %d and %d minutes", minutes, constants.MinSessionMin, constants.MaxSessionMin)
	}
	return nil
}

// AutoFixSessionFields rewrites the derived time fields of session entries
// flagged with a duration or start mismatch. It returns the fixed list and
// the actions taken; entries are never dropped. Dates are derived in loc.
func AutoFixSessionFields(conflicts []Conflict, entries []models.CheckInEntry, loc *time.Location) ([]models.CheckInEntry, []FixAction) {
	targets := make(map[int64]Conflict)
	for _, c := range conflicts {
		if c.Type != ConflictDurationMismatch && c.Type != ConflictSessionStartDrift {
			continue
		}
		for _, id := range c.EntryIDs {
			if _, ok := targets[id]; !ok {
				targets[id] = c
			}
		}
	}

	fixed := models.CloneEntries(entries)
	var actions []FixAction
	for i := range fixed {
		c, ok := targets[fixed[i].ID]
		if !ok || fixed[i].SessionStart == nil || fixed[i].SessionEnd == nil {
			continue
		}
		if fixed[i].SessionEnd.Before(*fixed[i].SessionStart) {
			continue
		}
		fixed[i].SetSession(fixed[i].SessionStart.In(loc), fixed[i].SessionEnd.In(loc))
		actions = append(actions, FixAction{
			Action:         fmt.Sprintf("Recomputed time fields of entry %d from its session bounds", fixed[i].ID),
			SourceConflict: c,
		})
		delete(targets, fixed[i].ID)
	}
	return fixed, actions
}
