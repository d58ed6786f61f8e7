package insights

import (
	"time"

	"github.com/julianstephens/peakstate/internal/efficiency"
	"github.com/julianstephens/peakstate/internal/models"
)

// Weekdays lists heatmap rows, Monday first.
var Weekdays = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Heatmap holds mean efficiency per weekday (Monday = 0) and start hour.
// A nil cell has no entries.
type Heatmap struct {
	Cells  [7][24]*float64
	Counts [7][24]int
}

// Heatmap aggregates entries by the weekday and hour they started.
// Entries without any usable instant are skipped.
func (e *Engine) Heatmap(entries []models.CheckInEntry) Heatmap {
	var (
		h    Heatmap
		sums [7][24]float64
	)
	for i := range entries {
		start, ok := startInstant(entries[i])
		if !ok {
			continue
		}
		day := mondayIndex(start.In(e.loc).Weekday())
		hour, _ := entries[i].ResolveStart(e.loc)
		h.Counts[day][hour]++
		sums[day][hour] += efficiency.Score(&entries[i])
	}
	for d := range h.Cells {
		for hr := range h.Cells[d] {
			if n := h.Counts[d][hr]; n > 0 {
				avg := sums[d][hr] / float64(n)
				h.Cells[d][hr] = &avg
			}
		}
	}
	return h
}

// Level returns the colour band of a cell: 0 empty, then 1..5 for
// <3, <5, <7, <8.5 and the rest.
func (h Heatmap) Level(day, hour int) int {
	if day < 0 || day > 6 || hour < 0 || hour > 23 {
		return 0
	}
	return LevelOf(h.Cells[day][hour])
}

// LevelOf maps a mean efficiency to its band.
func LevelOf(eff *float64) int {
	switch {
	case eff == nil:
		return 0
	case *eff < 3:
		return 1
	case *eff < 5:
		return 2
	case *eff < 7:
		return 3
	case *eff < 8.5:
		return 4
	default:
		return 5
	}
}

func mondayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

func startInstant(e models.CheckInEntry) (time.Time, bool) {
	if e.SessionStart != nil {
		return *e.SessionStart, true
	}
	if !e.Timestamp.IsZero() {
		return e.Timestamp, true
	}
	return time.Time{}, false
}
