package entries

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/julianstephens/peakstate/internal/cli"
	"github.com/julianstephens/peakstate/internal/efficiency"
	"github.com/julianstephens/peakstate/internal/models"
	"github.com/julianstephens/peakstate/internal/utils"
)

type ListCmd struct {
	Since  string `help:"Only entries on or after this day (YYYY-MM-DD or e.g. 'last monday')."`
	Limit  int    `help:"Show at most this many entries (0 for all)." default:"20"`
	Format string `help:"Output format." enum:"table,json" default:"table"`
}

type listRow struct {
	ID         int64    `json:"id"`
	Start      string   `json:"start"`
	End        string   `json:"end,omitempty"`
	Minutes    int      `json:"minutes,omitempty"`
	Energy     float64  `json:"energy"`
	Focus      float64  `json:"focus"`
	Mood       float64  `json:"mood"`
	Stress     *float64 `json:"stress,omitempty"`
	Result     *float64 `json:"result,omitempty"`
	Efficiency float64  `json:"efficiency"`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	all, err := ctx.Entries().Entries()
	if err != nil {
		return err
	}

	now := ctx.Clock()
	var since time.Time
	if c.Since != "" {
		if since, err = utils.ParseDay(c.Since, now, ctx.Loc()); err != nil {
			return err
		}
	}

	selected := make([]models.CheckInEntry, 0, len(all))
	for _, e := range all {
		if !since.IsZero() && (e.Timestamp.IsZero() || e.Timestamp.Before(since)) {
			continue
		}
		selected = append(selected, e)
	}
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Timestamp.After(selected[j].Timestamp)
	})
	total := len(selected)
	if c.Limit > 0 && len(selected) > c.Limit {
		selected = selected[:c.Limit]
	}

	if c.Format == "json" {
		rows := make([]listRow, 0, len(selected))
		for i := range selected {
			rows = append(rows, toRow(&selected[i], ctx.Loc()))
		}
		enc := json.NewEncoder(ctx.Writer())
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	if total == 0 {
		ctx.Println("No check-ins yet. Record one with 'peakstate checkin'.")
		return nil
	}

	header, err := ctx.Entries().Header()
	if err != nil {
		return err
	}
	ctx.Println(cli.TitleStyle.Render(header.Title))
	if header.Subtitle != "" {
		ctx.Println(cli.SubtitleStyle.Render(header.Subtitle))
	}
	ctx.Println()

	ctx.Println(cli.LabelStyle.Render(fmt.Sprintf("%-14s  %-10s  %-11s  %-8s  %-20s  %-4s  %s", "ID", "DATE", "TIME", "LENGTH", "E/F/M/S/R", "EFF", "AGE")))
	for i := range selected {
		e := &selected[i]
		ctx.Printf("%-14d  %-10s  %-11s  %-8s  %-20s  %s  %s\n",
			e.ID,
			dateOf(e, ctx.Loc()),
			timeRange(e, ctx.Loc()),
			length(e),
			ratingSummary(e),
			cli.FormatEfficiency(efficiency.Score(e)),
			age(e, now))
	}
	if total > len(selected) {
		ctx.Printf("\n%d of %s entries shown\n", len(selected), humanize.Comma(int64(total)))
	}
	return nil
}

func toRow(e *models.CheckInEntry, loc *time.Location) listRow {
	row := listRow{
		ID:         e.ID,
		Energy:     e.Energy,
		Focus:      e.Focus,
		Mood:       e.Mood,
		Stress:     e.StressLevel,
		Result:     e.Result,
		Efficiency: efficiency.Round1(efficiency.Score(e)),
	}
	if !e.Timestamp.IsZero() {
		row.Start = e.Timestamp.In(loc).Format(time.RFC3339)
	}
	if e.SessionEnd != nil {
		row.End = e.SessionEnd.In(loc).Format(time.RFC3339)
	}
	if e.SessionDurationMinutes != nil {
		row.Minutes = *e.SessionDurationMinutes
	}
	return row
}

func dateOf(e *models.CheckInEntry, loc *time.Location) string {
	if e.Timestamp.IsZero() {
		if e.Date != "" {
			return e.Date
		}
		return "?"
	}
	return e.Timestamp.In(loc).Format("2006-01-02")
}

func timeRange(e *models.CheckInEntry, loc *time.Location) string {
	h, m := e.ResolveStart(loc)
	start := utils.FormatClockPadded(h, m)
	if e.SessionEnd == nil {
		return start
	}
	end := e.SessionEnd.In(loc)
	return start + "-" + utils.FormatClockPadded(end.Hour(), end.Minute())
}

func length(e *models.CheckInEntry) string {
	if e.SessionDurationMinutes == nil {
		return "-"
	}
	d := time.Duration(*e.SessionDurationMinutes) * time.Minute
	if d < time.Hour {
		return fmt.Sprintf("%dm", *e.SessionDurationMinutes)
	}
	return strings.TrimSuffix(d.String(), "0s")
}

func ratingSummary(e *models.CheckInEntry) string {
	opt := func(v *float64) string {
		if v == nil {
			return "-"
		}
		return humanize.Ftoa(*v)
	}
	return strings.Join([]string{humanize.Ftoa(e.Energy), humanize.Ftoa(e.Focus), humanize.Ftoa(e.Mood), opt(e.StressLevel), opt(e.Result)}, "/")
}

func age(e *models.CheckInEntry, now time.Time) string {
	if e.Timestamp.IsZero() {
		return ""
	}
	return humanize.RelTime(e.Timestamp, now, "ago", "from now")
}
