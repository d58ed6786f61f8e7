package analytics

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/julianstephens/peakstate/internal/cli"
	"github.com/julianstephens/peakstate/internal/insights"
	"github.com/julianstephens/peakstate/internal/utils"
)

type DayCmd struct {
	Date   string `arg:"" optional:"" help:"Day to show (YYYY-MM-DD, 'today', 'yesterday', ...)." default:"today"`
	Format string `help:"Output format." enum:"text,json" default:"text"`
}

// chartRows is the vertical resolution of the efficiency chart (0..10).
const chartRows = 10

func (c *DayCmd) Run(ctx *cli.Context) error {
	day, err := utils.ParseDay(c.Date, ctx.Clock(), ctx.Loc())
	if err != nil {
		return err
	}

	entries, err := ctx.Entries().Entries()
	if err != nil {
		return err
	}
	series := ctx.Engine().DaySeries(entries, day)

	if c.Format == "json" {
		enc := json.NewEncoder(ctx.Writer())
		enc.SetIndent("", "  ")
		return enc.Encode(series)
	}

	ctx.Println(cli.TitleStyle.Render(day.Format("Monday, 2 January 2006")))
	if len(series.Points) == 0 {
		ctx.Println(cli.LabelStyle.Render("No check-ins on this day."))
		return nil
	}

	ctx.Println(renderChart(series))
	ctx.Println()
	for _, p := range series.Points {
		ctx.Printf("  %s  %-6s %s\n", p.Label(), p.Kind, cli.FormatEfficiency(p.Efficiency))
	}
	return nil
}

// renderChart draws points on a text grid, one column per quarter hour
// between the series' axis bounds.
func renderChart(s insights.DaySeries) string {
	cols := (s.MaxPos - s.MinPos) * 4
	if cols <= 0 {
		cols = 1
	}
	grid := make([][]rune, chartRows+1)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", cols+1))
	}
	for _, p := range s.Points {
		col := int(math.Round((p.Position - float64(s.MinPos)) * 4))
		row := chartRows - int(math.Round(p.Efficiency))
		if col < 0 || col > cols || row < 0 || row > chartRows {
			continue
		}
		grid[row][col] = '●'
	}

	var b strings.Builder
	for i, line := range grid {
		label := "   "
		if level := chartRows - i; level%5 == 0 {
			label = fmt.Sprintf("%2d ", level)
		}
		b.WriteString(cli.LabelStyle.Render(label))
		b.WriteString("│")
		b.WriteString(string(line))
		b.WriteString("\n")
	}
	b.WriteString("   └" + strings.Repeat("─", cols+1) + "\n    ")

	for pos := s.MinPos; pos <= s.MaxPos; pos += 2 {
		tick := fmt.Sprintf("%02d", pos%24)
		b.WriteString(tick)
		if pos+2 <= s.MaxPos {
			b.WriteString(strings.Repeat(" ", 8-len(tick)))
		}
	}
	return b.String()
}
