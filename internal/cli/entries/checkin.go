package entries

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/peakstate/internal/cli"
	"github.com/julianstephens/peakstate/internal/constants"
	"github.com/julianstephens/peakstate/internal/efficiency"
	"github.com/julianstephens/peakstate/internal/models"
	"github.com/julianstephens/peakstate/internal/utils"
	"github.com/julianstephens/peakstate/internal/validation"
)

type CheckinCmd struct {
	Energy  float64 `help:"Energy rating (1-10 in 0.5 steps)."`
	Focus   float64 `help:"Focus rating (1-10 in 0.5 steps)."`
	Mood    float64 `help:"Mood rating (1-10 in 0.5 steps)."`
	Stress  float64 `help:"Stress level (1-10 in 0.5 steps, default 5)."`
	Result  float64 `help:"Outcome rating; can also be set later with 'result'."`
	Start   string  `help:"Session start as HH:MM today."`
	End     string  `help:"Session end as HH:MM today (default now)."`
	Minutes int     `help:"Session length ending now, in minutes (15-180)."`
}

func (c *CheckinCmd) Run(ctx *cli.Context) error {
	now := ctx.Clock()

	start, end, err := c.sessionBounds(ctx, now)
	if err != nil {
		return err
	}

	if (c.Energy == 0 || c.Focus == 0 || c.Mood == 0) && ctx.Interactive {
		if err := c.prompt(); err != nil {
			return err
		}
	}

	ratings, err := c.ratings()
	if err != nil {
		return err
	}

	var entry models.CheckInEntry
	err = ctx.WithWriteLock(func() error {
		var addErr error
		entry, addErr = ctx.Entries().Add(ratings, start, end)
		return addErr
	})
	if err != nil {
		return err
	}

	ctx.Printf("✓ Checked in %s-%s (%d min), efficiency %s\n",
		utils.FormatClockPadded(start.Hour(), start.Minute()),
		utils.FormatClockPadded(end.Hour(), end.Minute()),
		*entry.SessionDurationMinutes,
		cli.FormatEfficiency(efficiency.Score(&entry)))
	ctx.Printf("  id %d\n", entry.ID)
	return nil
}

func (c *CheckinCmd) sessionBounds(ctx *cli.Context, now time.Time) (time.Time, time.Time, error) {
	if c.Start != "" {
		start, err := clockToday(c.Start, now)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --start: %w", err)
		}
		end := now
		if c.End != "" {
			if end, err = clockToday(c.End, now); err != nil {
				return time.Time{}, time.Time{}, fmt.Errorf("invalid --end: %w", err)
			}
		}
		if !end.After(start) {
			return time.Time{}, time.Time{}, fmt.Errorf("session end %s must be after start %s", end.Format(constants.TimeFormat), start.Format(constants.TimeFormat))
		}
		return start, end, nil
	}
	if c.End != "" {
		return time.Time{}, time.Time{}, fmt.Errorf("--end requires --start")
	}

	minutes := c.Minutes
	if minutes == 0 {
		minutes = ctx.Settings.DefaultSessionMin
	}
	if minutes == 0 {
		minutes = constants.DefaultSessionMin
	}
	if err := validation.CheckSessionMinutes(minutes); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return now.Add(-time.Duration(minutes) * time.Minute), now, nil
}

// clockToday parses HH:MM as a time on now's day.
func clockToday(s string, now time.Time) (time.Time, error) {
	t, err := time.Parse(constants.TimeFormat, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is not HH:MM", s)
	}
	return time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location()), nil
}

func (c *CheckinCmd) ratings() (models.Ratings, error) {
	pick := func(v float64) float64 {
		if v == 0 {
			return constants.DefaultRating
		}
		return v
	}

	r := models.Ratings{
		Energy:      pick(c.Energy),
		Focus:       pick(c.Focus),
		Mood:        pick(c.Mood),
		StressLevel: models.FloatPtr(pick(c.Stress)),
	}
	if c.Result != 0 {
		r.Result = models.FloatPtr(c.Result)
	}

	checks := []struct {
		name  string
		value *float64
	}{
		{"energy", &r.Energy},
		{"focus", &r.Focus},
		{"mood", &r.Mood},
		{"stress", r.StressLevel},
		{"result", r.Result},
	}
	for _, chk := range checks {
		if chk.value == nil {
			continue
		}
		if err := validation.CheckRating(chk.name, *chk.value); err != nil {
			return models.Ratings{}, err
		}
	}
	return r, nil
}

// prompt fills unset ratings from an interactive form.
func (c *CheckinCmd) prompt() error {
	fields := []struct {
		name  string
		title string
		dest  *float64
		value string
	}{
		{"energy", "Energy", &c.Energy, ""},
		{"focus", "Focus", &c.Focus, ""},
		{"mood", "Mood", &c.Mood, ""},
		{"stress", "Stress", &c.Stress, ""},
		{"result", "Result (blank to set later)", &c.Result, ""},
	}

	inputs := make([]huh.Field, 0, len(fields))
	for i := range fields {
		f := &fields[i]
		switch {
		case *f.dest != 0:
			f.value = strconv.FormatFloat(*f.dest, 'f', -1, 64)
		case f.dest != &c.Result:
			f.value = strconv.FormatFloat(constants.DefaultRating, 'f', -1, 64)
		}
		optional := f.dest == &c.Result
		inputs = append(inputs, huh.NewInput().
			Title(f.title).
			Value(&f.value).
			Validate(func(s string) error {
				s = strings.TrimSpace(s)
				if s == "" && optional {
					return nil
				}
				v, err := strconv.ParseFloat(s, 64)
				if err != nil {
					return fmt.Errorf("enter a number between 1 and 10")
				}
				return validation.CheckRating(f.name, v)
			}))
	}

	if err := huh.NewForm(huh.NewGroup(inputs...)).WithTheme(huh.ThemeDracula()).Run(); err != nil {
		return fmt.Errorf("check-in cancelled: %w", err)
	}

	for _, f := range fields {
		s := strings.TrimSpace(f.value)
		if s == "" {
			*f.dest = 0
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*f.dest = v
	}
	return nil
}
