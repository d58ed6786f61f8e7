package insights

import (
	"math"
	"sort"
	"time"

	"github.com/julianstephens/peakstate/internal/efficiency"
	"github.com/julianstephens/peakstate/internal/models"
	"github.com/julianstephens/peakstate/internal/utils"
)

// The day axis runs from 04:00 to 04:00 the next morning, so late-night
// sessions stay on the day they belong to.
const (
	dayAxisStart   = 4
	dayAxisEnd     = 28
	dayFocusSpan   = 8
	dayMinPadding  = 2
	dayPaddingRate = 0.3
)

// PointKind tells which end of an entry a point marks.
type PointKind string

const (
	PointStart  PointKind = "start"
	PointEnd    PointKind = "end"
	PointSingle PointKind = "single"
)

// Point is one plotted check-in time.
type Point struct {
	EntryID    int64     `json:"entryId" yaml:"entryId"`
	Kind       PointKind `json:"kind" yaml:"kind"`
	Hour       int       `json:"hour" yaml:"hour"`
	Minute     int       `json:"minute" yaml:"minute"`
	Position   float64   `json:"position" yaml:"position"`
	Efficiency float64   `json:"efficiency" yaml:"efficiency"`
}

// Label renders the point as HH:MM.
func (p Point) Label() string {
	return utils.FormatClockPadded(p.Hour, p.Minute)
}

// DaySeries is the efficiency timeline of a single day.
type DaySeries struct {
	Day    time.Time `json:"day" yaml:"day"`
	Points []Point   `json:"points" yaml:"points"`
	MinPos int       `json:"minPos" yaml:"minPos"`
	MaxPos int       `json:"maxPos" yaml:"maxPos"`
}

// DaySeries collects the entries whose timestamp falls on day.
// Session entries contribute a start and an end point, legacy entries one point.
func (e *Engine) DaySeries(entries []models.CheckInEntry, day time.Time) DaySeries {
	s := DaySeries{Day: utils.StartOfDay(day, e.loc), Points: []Point{}}

	for i := range entries {
		entry := entries[i]
		if entry.Timestamp.IsZero() || !utils.SameDay(entry.Timestamp, day, e.loc) {
			continue
		}
		eff := efficiency.Round1(efficiency.Score(&entry))

		if entry.SessionStart != nil && entry.SessionEnd != nil {
			s.Points = append(s.Points,
				e.point(entry.ID, PointStart, *entry.SessionStart, eff),
				e.point(entry.ID, PointEnd, *entry.SessionEnd, eff),
			)
			continue
		}

		hour, minute := entry.ResolveStart(e.loc)
		s.Points = append(s.Points, Point{
			EntryID:    entry.ID,
			Kind:       PointSingle,
			Hour:       hour,
			Minute:     minute,
			Position:   axisPosition(hour, minute),
			Efficiency: eff,
		})
	}

	// Hours before 04:00 sit at the end of the axis
	sort.SliceStable(s.Points, func(i, j int) bool {
		return s.Points[i].Position < s.Points[j].Position
	})

	s.MinPos, s.MaxPos = DataRange(s.Points)
	return s
}

func (e *Engine) point(id int64, kind PointKind, t time.Time, eff float64) Point {
	t = t.In(e.loc)
	return Point{
		EntryID:    id,
		Kind:       kind,
		Hour:       t.Hour(),
		Minute:     t.Minute(),
		Position:   axisPosition(t.Hour(), t.Minute()),
		Efficiency: eff,
	}
}

func axisPosition(hour, minute int) float64 {
	pos := float64(hour) + float64(minute)/60
	if hour < dayAxisStart {
		pos += 24
	}
	return pos
}

// DataRange returns the visible axis range for points. The full 04..28
// range is used unless the points span less than eight hours, in which case
// the range narrows around them with at least two hours of padding.
func DataRange(points []Point) (int, int) {
	if len(points) == 0 {
		return dayAxisStart, dayAxisEnd
	}

	lo, hi := points[0].Position, points[0].Position
	for _, p := range points[1:] {
		lo = math.Min(lo, p.Position)
		hi = math.Max(hi, p.Position)
	}
	span := hi - lo
	if span >= dayFocusSpan {
		return dayAxisStart, dayAxisEnd
	}

	pad := math.Max(dayMinPadding, span*dayPaddingRate)
	minPos := int(math.Max(dayAxisStart, math.Floor(lo-pad)))
	maxPos := int(math.Min(dayAxisEnd, math.Ceil(hi+pad)))
	return minPos, maxPos
}
