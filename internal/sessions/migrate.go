// Package sessions consolidates legacy check-ins into session entries.
//
// Older versions of the tracker wrote a new point-in-time entry roughly every
// 15 minutes while a session ran, each carrying the same ratings. Migrate folds
// such runs back into one entry spanning the whole session.
package sessions

import (
	"math"
	"sort"
	"time"

	"github.com/julianstephens/peakstate/internal/constants"
	"github.com/julianstephens/peakstate/internal/models"
)

// Group describes one run of legacy entries folded into a session.
type Group struct {
	ID      int64
	Start   time.Time
	End     time.Time
	Members int
}

// Result is the output of Migrate.
type Result struct {
	Entries []models.CheckInEntry
	Changed bool
	Merged  []Group
}

// Option configures Migrate.
type Option func(*options)

type options struct {
	loc    *time.Location
	minGap time.Duration
	maxGap time.Duration
}

// WithLocation sets the zone used to derive date, hour and minute of merged entries.
// Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.loc = loc
		}
	}
}

func defaultOptions() options {
	return options{
		loc:    time.Local,
		minGap: time.Duration(constants.LegacyMergeMinGapMin * float64(time.Minute)),
		maxGap: time.Duration(constants.LegacyMergeMaxGapMin * float64(time.Minute)),
	}
}

// Migrate returns entries with every run of consolidatable legacy entries
// replaced by one session entry. The input slice is not modified.
//
// A run starts at any legacy entry and extends while the next entry (in
// timestamp order) is legacy, has the same ratings as the run's first entry and
// follows the previous member by 10 to 20 minutes. The merged entry keeps the
// first entry's id and ratings. Session entries pass through untouched.
//
// Migrate is idempotent: migrating its own output reports Changed == false.
func Migrate(entries []models.CheckInEntry, opts ...Option) Result {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if len(entries) < 2 {
		return Result{Entries: models.CloneEntries(entries)}
	}

	sorted := models.CloneEntries(entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	var res Result
	res.Entries = make([]models.CheckInEntry, 0, len(sorted))

	for i := 0; i < len(sorted); {
		first := sorted[i]
		if !first.IsLegacy() || first.Timestamp.IsZero() {
			res.Entries = append(res.Entries, first)
			i++
			continue
		}

		last := first
		j := i + 1
		for ; j < len(sorted); j++ {
			next := sorted[j]
			if !next.IsLegacy() || !sameRatings(first, next) {
				break
			}
			gap := next.Timestamp.Sub(last.Timestamp)
			if gap < o.minGap || gap > o.maxGap {
				break
			}
			last = next
		}

		if members := j - i; members >= 2 {
			merged := consolidate(first, last, o.loc)
			res.Entries = append(res.Entries, merged)
			res.Merged = append(res.Merged, Group{
				ID:      merged.ID,
				Start:   first.Timestamp,
				End:     last.Timestamp,
				Members: members,
			})
			res.Changed = true
		} else {
			res.Entries = append(res.Entries, first)
		}
		i = j
	}

	return res
}

// consolidate builds the session entry covering first..last.
func consolidate(first, last models.CheckInEntry, loc *time.Location) models.CheckInEntry {
	merged := first.Clone()
	merged.SetSession(first.Timestamp.In(loc), last.Timestamp.In(loc))
	return merged
}

func sameRatings(a, b models.CheckInEntry) bool {
	return nearlyEqual(a.Energy, b.Energy) &&
		nearlyEqual(a.Focus, b.Focus) &&
		nearlyEqual(a.Mood, b.Mood) &&
		optionalEqual(a.StressLevel, b.StressLevel) &&
		optionalEqual(a.Result, b.Result)
}

// optionalEqual treats two absent values as equal and absent vs present as different.
func optionalEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return nearlyEqual(*a, *b)
}

func nearlyEqual(a, b float64) bool {
	return math.Abs(a-b) <= constants.RatingEpsilon
}
