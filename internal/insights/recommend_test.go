package insights

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommendGolden(t *testing.T) {
	lion := ChronotypeFor(Morning)
	bear := ChronotypeFor(Afternoon)
	dolphin := ChronotypeFor(Night)

	tests := []struct {
		name       string
		windows    []Window
		chronotype Chronotype
	}{
		{
			name:       "no_data",
			windows:    nil,
			chronotype: bear,
		},
		{
			name: "peak_with_secondary",
			windows: []Window{
				{Rank: 1, Hour: 14, Minute: 30, Efficiency: 9, SessionCount: 1, Reliability: 0.5},
				{Rank: 2, Hour: 9, Minute: 30, Efficiency: 8, SessionCount: 5, Reliability: 1},
			},
			chronotype: bear,
		},
		{
			name:       "strong_lion_afternoon",
			windows:    []Window{{Rank: 1, Hour: 15, Minute: 0, Efficiency: 7}},
			chronotype: lion,
		},
		{
			name:       "baseline_dolphin_evening",
			windows:    []Window{{Rank: 1, Hour: 20, Minute: 0, Efficiency: 5}},
			chronotype: dolphin,
		},
		{
			name: "peak_dolphin_late_close_second",
			windows: []Window{
				{Rank: 1, Hour: 22, Minute: 30, Efficiency: 8.5},
				{Rank: 2, Hour: 23, Minute: 0, Efficiency: 8},
			},
			chronotype: dolphin,
		},
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
	)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := utcEngine().Recommend(tt.windows, tt.chronotype)
			g.Assert(t, tt.name, []byte(got))
		})
	}
}

func TestRecommendThresholds(t *testing.T) {
	bear := ChronotypeFor(Afternoon)

	tests := []struct {
		efficiency float64
		prefix     string
	}{
		{10, "Schedule your most demanding deep work"},
		{8, "Schedule your most demanding deep work"},
		{7.99, "Plan focused work sessions"},
		{6.5, "Plan focused work sessions"},
		{6.49, "Your best working time starts"},
		{0, "Your best working time starts"},
	}

	for _, tt := range tests {
		got := utcEngine().Recommend([]Window{{Rank: 1, Hour: 13, Minute: 30, Efficiency: tt.efficiency}}, bear)
		assert.Contains(t, got, tt.prefix, "efficiency %.2f", tt.efficiency)
	}
}

func TestRecommendSecondaryGap(t *testing.T) {
	bear := ChronotypeFor(Afternoon)
	top := Window{Rank: 1, Hour: 13, Minute: 0, Efficiency: 7}

	exactlyTwoHours := utcEngine().Recommend([]Window{top, {Rank: 2, Hour: 11, Minute: 0, Efficiency: 6}}, bear)
	assert.NotContains(t, exactlyTwoHours, "secondary window")

	overTwoHours := utcEngine().Recommend([]Window{top, {Rank: 2, Hour: 10, Minute: 30, Efficiency: 6}}, bear)
	assert.Contains(t, overTwoHours, "secondary window around 10:30")
}

func TestRecommendCustomTemplates(t *testing.T) {
	e := NewEngine(WithTemplates(Templates{
		Strong: "Guard {{time}} ({{efficiency}}/10, {{chronotype}}).",
	}))

	got := e.Recommend([]Window{{Rank: 1, Hour: 9, Minute: 30, Efficiency: 7.25}}, ChronotypeFor(Morning))
	assert.Equal(t, "Guard 9:30 (7.2/10, Lion).", got)

	// Unset templates keep the defaults
	assert.Equal(t, DefaultTemplates().NoData, e.Recommend(nil, ChronotypeFor(Morning)))
}

func TestRecommendBrokenTemplateFallsBack(t *testing.T) {
	e := NewEngine(WithTemplates(Templates{Peak: "Broken {{#time}"}))

	got := e.Recommend([]Window{{Rank: 1, Hour: 9, Minute: 30, Efficiency: 9}}, ChronotypeFor(Morning))
	assert.Contains(t, got, "Schedule your most demanding deep work during 9:30.")
}

func TestTemplatesValidate(t *testing.T) {
	require.NoError(t, DefaultTemplates().Validate())
	require.NoError(t, Templates{}.Validate())

	err := Templates{Secondary: "{{#open}} never closed"}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "secondary")
}
