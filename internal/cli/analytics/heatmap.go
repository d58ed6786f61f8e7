package analytics

import (
	"fmt"
	"strings"

	"github.com/julianstephens/peakstate/internal/cli"
	"github.com/julianstephens/peakstate/internal/insights"
)

type HeatmapCmd struct {
	From int  `help:"First hour shown." default:"0"`
	To   int  `help:"Last hour shown." default:"23"`
	Raw  bool `help:"Print mean efficiency values instead of coloured cells."`
}

func (c *HeatmapCmd) Run(ctx *cli.Context) error {
	if c.From < 0 || c.To > 23 || c.From > c.To {
		return fmt.Errorf("hour range %d-%d must be within 0-23", c.From, c.To)
	}

	entries, err := ctx.Entries().Entries()
	if err != nil {
		return err
	}
	h := ctx.Engine().Heatmap(entries)

	var b strings.Builder
	b.WriteString("     ")
	for hour := c.From; hour <= c.To; hour++ {
		fmt.Fprintf(&b, "%-4d", hour)
	}
	ctx.Println(cli.LabelStyle.Render(b.String()))

	for day, name := range insights.Weekdays {
		b.Reset()
		fmt.Fprintf(&b, "%-5s", name)
		for hour := c.From; hour <= c.To; hour++ {
			cell := h.Cells[day][hour]
			text := " .  "
			if cell != nil {
				text = fmt.Sprintf("%-4.1f", *cell)
			}
			if c.Raw {
				b.WriteString(text)
				continue
			}
			b.WriteString(cli.LevelStyle(h.Level(day, hour)).Render(text))
		}
		ctx.Println(b.String())
	}

	if !c.Raw {
		ctx.Println()
		legend := []string{"<3", "<5", "<7", "<8.5", "8.5+"}
		b.Reset()
		for i, l := range legend {
			b.WriteString(cli.LevelStyle(i + 1).Render(" " + l + " "))
			b.WriteString(" ")
		}
		ctx.Println(b.String())
	}
	return nil
}
