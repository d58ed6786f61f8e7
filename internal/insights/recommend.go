package insights

import (
	"fmt"

	"github.com/cbroglie/mustache"

	"github.com/julianstephens/peakstate/internal/constants"
	"github.com/julianstephens/peakstate/internal/logger"
)

// Templates are the mustache templates the recommendation is assembled from.
//
// Available variables: time and efficiency (top window), second_time
// (second window), chronotype and chronotype_desc.
type Templates struct {
	NoData          string `toml:"no_data"`
	Peak            string `toml:"peak"`
	Strong          string `toml:"strong"`
	Baseline        string `toml:"baseline"`
	MorningMismatch string `toml:"morning_mismatch"`
	NightMismatch   string `toml:"night_mismatch"`
	Secondary       string `toml:"secondary"`
}

// DefaultTemplates returns the built-in recommendation wording.
func DefaultTemplates() Templates {
	return Templates{
		NoData:          "Add more check-ins to get personalized recommendations.",
		Peak:            "Schedule your most demanding deep work during {{time}}. This is your peak performance window - perfect for complex tasks, creative work, and important decisions.",
		Strong:          "Plan focused work sessions around {{time}}. This window shows strong performance - ideal for important tasks and learning.",
		Baseline:        "Your best working time starts around {{time}}. Consider lighter tasks or breaks during other hours to maximize productivity.",
		MorningMismatch: " As a morning person, try shifting important work earlier if possible.",
		NightMismatch:   " Your chronotype suggests you may perform even better during late hours.",
		Secondary:       " You also have a strong secondary window around {{second_time}} - consider splitting your day between these two peaks.",
	}
}

// Validate reports the first template that fails to parse.
func (t Templates) Validate() error {
	for _, f := range t.fields() {
		if f.tmpl == "" {
			continue
		}
		if _, err := mustache.ParseString(f.tmpl); err != nil {
			return fmt.Errorf("invalid %s template: %w", f.name, err)
		}
	}
	return nil
}

type templateField struct {
	name string
	tmpl string
}

func (t Templates) fields() []templateField {
	return []templateField{
		{"no_data", t.NoData},
		{"peak", t.Peak},
		{"strong", t.Strong},
		{"baseline", t.Baseline},
		{"morning_mismatch", t.MorningMismatch},
		{"night_mismatch", t.NightMismatch},
		{"secondary", t.Secondary},
	}
}

func (t Templates) merge(o Templates) Templates {
	pick := func(base, override string) string {
		if override != "" {
			return override
		}
		return base
	}
	return Templates{
		NoData:          pick(t.NoData, o.NoData),
		Peak:            pick(t.Peak, o.Peak),
		Strong:          pick(t.Strong, o.Strong),
		Baseline:        pick(t.Baseline, o.Baseline),
		MorningMismatch: pick(t.MorningMismatch, o.MorningMismatch),
		NightMismatch:   pick(t.NightMismatch, o.NightMismatch),
		Secondary:       pick(t.Secondary, o.Secondary),
	}
}

// Recommend writes a recommendation for the top window.
//
// The opening sentence depends on the top window's efficiency (>= 8 peak,
// >= 6.5 strong, otherwise baseline). A Lion whose top window is outside the
// morning, or a Dolphin whose top window is outside the night, gets a
// chronotype hint. A second window more than two hours from the first is
// suggested as a split-day option.
func (e *Engine) Recommend(windows []Window, chronotype Chronotype) string {
	defaults := DefaultTemplates()
	if len(windows) == 0 {
		return render("no_data", e.templates.NoData, defaults.NoData, nil)
	}

	top := windows[0]
	data := map[string]interface{}{
		"time":            top.Clock(),
		"efficiency":      fmt.Sprintf("%.1f", top.Efficiency),
		"chronotype":      string(chronotype.Type),
		"chronotype_desc": chronotype.Desc,
	}
	if len(windows) >= 2 {
		data["second_time"] = windows[1].Clock()
	}

	var text string
	switch {
	case top.Efficiency >= constants.PeakEfficiency:
		text = render("peak", e.templates.Peak, defaults.Peak, data)
	case top.Efficiency >= constants.StrongEfficiency:
		text = render("strong", e.templates.Strong, defaults.Strong, data)
	default:
		text = render("baseline", e.templates.Baseline, defaults.Baseline, data)
	}

	category := categoryOf(top.Hour)
	switch {
	case chronotype.Type == Lion && category != Morning:
		text += render("morning_mismatch", e.templates.MorningMismatch, defaults.MorningMismatch, data)
	case chronotype.Type == Dolphin && category != Night:
		text += render("night_mismatch", e.templates.NightMismatch, defaults.NightMismatch, data)
	}

	if len(windows) >= 2 {
		gap := top.MinuteOfDay() - windows[1].MinuteOfDay()
		if gap < 0 {
			gap = -gap
		}
		if gap > constants.SecondaryWindowMinGap {
			text += render("secondary", e.templates.Secondary, defaults.Secondary, data)
		}
	}

	return text
}

// render executes tmpl, falling back to the built-in template when a
// user-supplied one fails.
func render(name, tmpl, fallback string, data map[string]interface{}) string {
	out, err := mustache.Render(tmpl, data)
	if err == nil {
		return out
	}
	logger.Warn("Recommendation template failed, using default", "template", name, "error", err)
	out, err = mustache.Render(fallback, data)
	if err != nil {
		return fallback
	}
	return out
}
