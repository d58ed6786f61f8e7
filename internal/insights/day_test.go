package insights

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/peakstate/internal/models"
)

func TestDaySeries(t *testing.T) {
	lateStart := monday.Add(22 * time.Hour)
	late := models.NewSessionEntry(1, lateStart, lateStart.Add(210*time.Minute), models.Ratings{Energy: 6, Focus: 6, Mood: 6, StressLevel: models.FloatPtr(1), Result: models.FloatPtr(6)})

	legacyAt := monday.Add(9*time.Hour + 15*time.Minute)
	legacy := models.CheckInEntry{
		ID:        2,
		Timestamp: legacyAt,
		Hour:      models.IntPtr(9),
		Minute:    models.IntPtr(15),
		Energy:    7, Focus: 7, Mood: 7,
		StressLevel: models.FloatPtr(4),
	}

	otherDay := rated(3, 10, 0, 9)
	otherDay.Timestamp = otherDay.Timestamp.AddDate(0, 0, 1)

	s := utcEngine().DaySeries([]models.CheckInEntry{late, otherDay, legacy}, monday.Add(15*time.Hour))

	assert.True(t, s.Day.Equal(monday))
	require.Len(t, s.Points, 3)

	assert.Equal(t, PointSingle, s.Points[0].Kind)
	assert.Equal(t, int64(2), s.Points[0].EntryID)
	assert.InDelta(t, 9.25, s.Points[0].Position, 1e-9)
	assert.Equal(t, "09:15", s.Points[0].Label())

	assert.Equal(t, PointStart, s.Points[1].Kind)
	assert.InDelta(t, 22.0, s.Points[1].Position, 1e-9)
	assert.Equal(t, 6.0, s.Points[1].Efficiency)

	assert.Equal(t, PointEnd, s.Points[2].Kind)
	assert.Equal(t, 1, s.Points[2].Hour)
	assert.InDelta(t, 25.5, s.Points[2].Position, 1e-9)
	assert.Equal(t, "01:30", s.Points[2].Label())

	assert.Equal(t, 4, s.MinPos)
	assert.Equal(t, 28, s.MaxPos)
}

func TestDaySeriesRoundsEfficiency(t *testing.T) {
	e := rated(1, 10, 0, 7)
	e.StressLevel = models.FloatPtr(4)

	s := utcEngine().DaySeries([]models.CheckInEntry{e}, monday)

	require.Len(t, s.Points, 2)
	// 7 * (1 - 0.35/3) = 6.183..
	assert.Equal(t, 6.2, s.Points[0].Efficiency)
}

func TestDaySeriesEmpty(t *testing.T) {
	s := utcEngine().DaySeries(nil, monday)
	assert.Empty(t, s.Points)
	assert.Equal(t, 4, s.MinPos)
	assert.Equal(t, 28, s.MaxPos)
}

func TestDataRange(t *testing.T) {
	pts := func(positions ...float64) []Point {
		out := make([]Point, len(positions))
		for i, p := range positions {
			out[i] = Point{Position: p}
		}
		return out
	}

	tests := []struct {
		name    string
		points  []Point
		wantMin int
		wantMax int
	}{
		{"empty", nil, 4, 28},
		{"two hour span gets minimum padding", pts(9, 11), 7, 13},
		{"clamped at axis start", pts(5), 4, 7},
		{"clamped at axis end", pts(20, 27), 17, 28},
		{"wide span uses full axis", pts(8, 16), 4, 28},
		{"padding grows with span", pts(10, 17), 7, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi := DataRange(tt.points)
			assert.Equal(t, tt.wantMin, lo)
			assert.Equal(t, tt.wantMax, hi)
		})
	}
}
