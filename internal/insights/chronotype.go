package insights

import (
	"github.com/julianstephens/peakstate/internal/efficiency"
	"github.com/julianstephens/peakstate/internal/models"
)

// ChronotypeType labels the time of day a person performs best in.
type ChronotypeType string

const (
	Lion    ChronotypeType = "Lion"
	Bear    ChronotypeType = "Bear"
	Wolf    ChronotypeType = "Wolf"
	Dolphin ChronotypeType = "Dolphin"
)

// Chronotype is a label plus its one-line description.
type Chronotype struct {
	Type ChronotypeType `json:"type" yaml:"type"`
	Desc string         `json:"desc" yaml:"desc"`
}

// Segment is a coarse part of the day.
type Segment int

const (
	Morning Segment = iota
	Afternoon
	Evening
	Night
)

var segmentNames = [...]string{"morning", "afternoon", "evening", "night"}

func (s Segment) String() string {
	if s < Morning || s > Night {
		return "unknown"
	}
	return segmentNames[s]
}

// MarshalText encodes the segment by name.
func (s Segment) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

var chronotypes = [...]Chronotype{
	Morning:   {Type: Lion, Desc: "You work best in the morning"},
	Afternoon: {Type: Bear, Desc: "You work best during the day"},
	Evening:   {Type: Wolf, Desc: "You work best in the evening"},
	Night:     {Type: Dolphin, Desc: "You work best at night"},
}

// ChronotypeFor returns the chronotype whose natural segment is s.
func ChronotypeFor(s Segment) Chronotype {
	if s < Morning || s > Night {
		return chronotypes[Afternoon]
	}
	return chronotypes[s]
}

// SegmentOf buckets an hour for chronotype inference: morning [6,12),
// afternoon [12,18), evening [18,24), night [0,6).
func SegmentOf(hour int) Segment {
	switch {
	case hour >= 6 && hour < 12:
		return Morning
	case hour >= 12 && hour < 18:
		return Afternoon
	case hour >= 18 && hour < 24:
		return Evening
	default:
		return Night
	}
}

// categoryOf buckets an hour for recommendation wording. Evening ends at 22
// here; later hours read as night.
func categoryOf(hour int) Segment {
	switch {
	case hour >= 6 && hour < 12:
		return Morning
	case hour >= 12 && hour < 18:
		return Afternoon
	case hour >= 18 && hour < 22:
		return Evening
	default:
		return Night
	}
}

// SegmentStat is the mean efficiency of one part of the day.
type SegmentStat struct {
	Segment Segment `json:"segment" yaml:"segment"`
	Mean    float64 `json:"mean" yaml:"mean"`
	Count   int     `json:"count" yaml:"count"`
}

// SegmentAverages returns per-segment means in Morning..Night order.
// Empty segments have mean 0.
func (e *Engine) SegmentAverages(entries []models.CheckInEntry) []SegmentStat {
	stats := make([]SegmentStat, Night+1)
	sums := make([]float64, Night+1)
	for i := range stats {
		stats[i].Segment = Segment(i)
	}
	for i := range entries {
		hour, _ := entries[i].ResolveStart(e.loc)
		s := SegmentOf(hour)
		stats[s].Count++
		sums[s] += efficiency.Score(&entries[i])
	}
	for i := range stats {
		if stats[i].Count > 0 {
			stats[i].Mean = sums[i] / float64(stats[i].Count)
		}
	}
	return stats
}

// DetermineChronotype picks the segment with the highest positive mean
// efficiency. Ties go to the earlier segment (morning first); no positive
// mean at all yields Bear.
func (e *Engine) DetermineChronotype(entries []models.CheckInEntry) Chronotype {
	return chronotypeFrom(e.SegmentAverages(entries))
}

func chronotypeFrom(stats []SegmentStat) Chronotype {
	best := -1
	bestMean := 0.0
	for i, s := range stats {
		if s.Mean > bestMean {
			best, bestMean = i, s.Mean
		}
	}
	if best < 0 {
		return chronotypes[Afternoon]
	}
	return ChronotypeFor(stats[best].Segment)
}
