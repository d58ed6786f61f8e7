package insights

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/peakstate/internal/models"
)

var monday = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

// rated builds a session entry starting at hour:minute on monday whose
// efficiency score is 10*v/10 (all ratings v, stress 1).
func rated(id int64, hour, minute int, v float64) models.CheckInEntry {
	start := monday.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
	return models.NewSessionEntry(id, start, start.Add(45*time.Minute), models.Ratings{
		Energy:      v,
		Focus:       v,
		Mood:        v,
		StressLevel: models.FloatPtr(1),
		Result:      models.FloatPtr(v),
	})
}

func utcEngine() *Engine {
	return NewEngine(WithLocation(time.UTC))
}

func TestFindBestWindowsRanksByEfficiencyNotReliability(t *testing.T) {
	entries := []models.CheckInEntry{
		rated(1, 9, 0, 8),
		rated(2, 9, 15, 8),
		rated(3, 9, 30, 8),
		rated(4, 9, 45, 8),
		rated(5, 9, 0, 8),
		rated(6, 14, 10, 9),
	}

	windows := utcEngine().FindBestWindows(entries)

	require.Len(t, windows, 2)

	assert.Equal(t, 1, windows[0].Rank)
	assert.Equal(t, 14, windows[0].Hour)
	assert.Equal(t, 30, windows[0].Minute)
	assert.InDelta(t, 9.0, windows[0].Efficiency, 1e-9)
	assert.Equal(t, 1, windows[0].SessionCount)
	assert.Equal(t, 0.5, windows[0].Reliability)

	assert.Equal(t, 2, windows[1].Rank)
	assert.Equal(t, 9, windows[1].Hour)
	assert.Equal(t, 30, windows[1].Minute)
	assert.InDelta(t, 8.0, windows[1].Efficiency, 1e-9)
	assert.Equal(t, 5, windows[1].SessionCount)
	assert.Equal(t, 1.0, windows[1].Reliability)
}

func TestFindBestWindowsEmpty(t *testing.T) {
	windows := utcEngine().FindBestWindows(nil)
	require.NotNil(t, windows)
	assert.Empty(t, windows)
}

func TestFindBestWindowsKeepsTopThree(t *testing.T) {
	entries := []models.CheckInEntry{
		rated(1, 6, 0, 3),
		rated(2, 8, 0, 9),
		rated(3, 10, 0, 5),
		rated(4, 13, 0, 7),
		rated(5, 20, 0, 4),
	}

	windows := utcEngine().FindBestWindows(entries)

	require.Len(t, windows, 3)
	assert.Equal(t, []int{8, 13, 10}, []int{windows[0].Hour, windows[1].Hour, windows[2].Hour})
	assert.Equal(t, []int{1, 2, 3}, []int{windows[0].Rank, windows[1].Rank, windows[2].Rank})
}

func TestFindBestWindowsTiesKeepHourOrder(t *testing.T) {
	entries := []models.CheckInEntry{
		rated(1, 16, 0, 6),
		rated(2, 7, 0, 6),
		rated(3, 11, 0, 6),
	}

	windows := utcEngine().FindBestWindows(entries)

	require.Len(t, windows, 3)
	assert.Equal(t, []int{7, 11, 16}, []int{windows[0].Hour, windows[1].Hour, windows[2].Hour})
}

func TestFindBestWindowsHalfHourRounding(t *testing.T) {
	tests := []struct {
		name       string
		entries    []models.CheckInEntry
		wantHour   int
		wantMinute int
	}{
		{
			name:       "early minutes sit at half past",
			entries:    []models.CheckInEntry{rated(1, 9, 10, 7)},
			wantHour:   9,
			wantMinute: 30,
		},
		{
			name:       "late minutes round to next hour",
			entries:    []models.CheckInEntry{rated(1, 9, 40, 7)},
			wantHour:   10,
			wantMinute: 0,
		},
		{
			name:       "half-minute mean rounds up",
			entries:    []models.CheckInEntry{rated(1, 9, 29, 7), rated(2, 9, 30, 7)},
			wantHour:   10,
			wantMinute: 0,
		},
		{
			name:       "wraps past midnight",
			entries:    []models.CheckInEntry{rated(1, 23, 45, 7)},
			wantHour:   0,
			wantMinute: 0,
		},
		{
			name:       "entry without time fields lands at noon",
			entries:    []models.CheckInEntry{{ID: 1, Energy: 5, Focus: 5, Mood: 5}},
			wantHour:   12,
			wantMinute: 30,
		},
		{
			name:       "legacy hour and minute",
			entries:    []models.CheckInEntry{{ID: 1, Hour: models.IntPtr(17), Minute: models.IntPtr(50), Energy: 5}},
			wantHour:   18,
			wantMinute: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			windows := utcEngine().FindBestWindows(tt.entries)
			require.Len(t, windows, 1)
			assert.Equal(t, tt.wantHour, windows[0].Hour)
			assert.Equal(t, tt.wantMinute, windows[0].Minute)
		})
	}
}

func TestFindBestWindowsUsesLocation(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	windows := NewEngine(WithLocation(tokyo)).FindBestWindows([]models.CheckInEntry{rated(1, 0, 10, 7)})

	require.Len(t, windows, 1)
	assert.Equal(t, 9, windows[0].Hour)
	assert.Equal(t, 30, windows[0].Minute)
}

func TestReliability(t *testing.T) {
	tests := []struct {
		sessions int
		want     float64
	}{
		{0, 0},
		{1, 0.5},
		{2, 0.6},
		{3, 0.7},
		{4, 0.8},
		{5, 1.0},
		{12, 1.0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Reliability(tt.sessions), "sessions=%d", tt.sessions)
	}
}

func TestDetermineChronotype(t *testing.T) {
	tests := []struct {
		name    string
		entries []models.CheckInEntry
		want    ChronotypeType
	}{
		{
			name:    "no entries",
			entries: nil,
			want:    Bear,
		},
		{
			name:    "morning best",
			entries: []models.CheckInEntry{rated(1, 7, 0, 9), rated(2, 11, 59, 8), rated(3, 14, 0, 6), rated(4, 21, 0, 5)},
			want:    Lion,
		},
		{
			name:    "afternoon best",
			entries: []models.CheckInEntry{rated(1, 7, 0, 4), rated(2, 15, 0, 8)},
			want:    Bear,
		},
		{
			name:    "late evening still evening",
			entries: []models.CheckInEntry{rated(1, 23, 0, 9), rated(2, 10, 0, 5)},
			want:    Wolf,
		},
		{
			name:    "night best",
			entries: []models.CheckInEntry{rated(1, 2, 0, 9), rated(2, 10, 0, 5)},
			want:    Dolphin,
		},
		{
			name:    "tie prefers morning",
			entries: []models.CheckInEntry{rated(1, 8, 0, 7), rated(2, 13, 0, 7)},
			want:    Lion,
		},
		{
			name:    "tie between evening and night prefers evening",
			entries: []models.CheckInEntry{rated(1, 3, 0, 7), rated(2, 19, 0, 7)},
			want:    Wolf,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := utcEngine().DetermineChronotype(tt.entries)
			assert.Equal(t, tt.want, got.Type)
			assert.NotEmpty(t, got.Desc)
		})
	}
}

func TestChronotypeDescriptions(t *testing.T) {
	assert.Equal(t, Chronotype{Type: Lion, Desc: "You work best in the morning"}, ChronotypeFor(Morning))
	assert.Equal(t, Chronotype{Type: Bear, Desc: "You work best during the day"}, ChronotypeFor(Afternoon))
	assert.Equal(t, Chronotype{Type: Wolf, Desc: "You work best in the evening"}, ChronotypeFor(Evening))
	assert.Equal(t, Chronotype{Type: Dolphin, Desc: "You work best at night"}, ChronotypeFor(Night))
	assert.Equal(t, Bear, ChronotypeFor(Segment(42)).Type)
}

func TestSegmentOf(t *testing.T) {
	want := map[int]Segment{
		0: Night, 5: Night, 6: Morning, 11: Morning, 12: Afternoon,
		17: Afternoon, 18: Evening, 21: Evening, 22: Evening, 23: Evening,
	}
	for hour, seg := range want {
		assert.Equal(t, seg, SegmentOf(hour), "hour %d", hour)
	}
	assert.Equal(t, Night, categoryOf(22))
	assert.Equal(t, Evening, categoryOf(21))
}

func TestAnalyze(t *testing.T) {
	entries := []models.CheckInEntry{
		rated(1, 9, 0, 8),
		rated(2, 14, 10, 9),
	}

	report := utcEngine().Analyze(entries)

	require.Len(t, report.Windows, 2)
	assert.Equal(t, Bear, report.Chronotype.Type)
	require.Len(t, report.Segments, 4)
	assert.Equal(t, 1, report.Segments[Morning].Count)
	assert.Equal(t, 0, report.Segments[Night].Count)
	assert.Contains(t, report.Recommendation, "14:30")
	assert.Contains(t, report.Recommendation, "secondary window around 9:30")
}

func TestPackageLevelHelpersHandleEmptyInput(t *testing.T) {
	assert.Empty(t, FindBestWindows(nil))
	assert.Equal(t, Bear, DetermineChronotype(nil).Type)
	assert.Equal(t, "Add more check-ins to get personalized recommendations.", Recommend(nil, DetermineChronotype(nil)))
}
