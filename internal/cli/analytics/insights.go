package analytics

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize/english"
	"gopkg.in/yaml.v3"

	"github.com/julianstephens/peakstate/internal/cli"
)

const recommendationWidth = 64

type InsightsCmd struct {
	Format string `help:"Output format." enum:"text,json,yaml" default:"text"`
}

func (c *InsightsCmd) Run(ctx *cli.Context) error {
	entries, err := ctx.Entries().Entries()
	if err != nil {
		return err
	}
	report := ctx.Engine().Analyze(entries)

	switch c.Format {
	case "json":
		enc := json.NewEncoder(ctx.Writer())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "yaml":
		enc := yaml.NewEncoder(ctx.Writer())
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	}

	ctx.Println(cli.TitleStyle.Render("Peak windows"))
	if len(report.Windows) == 0 {
		ctx.Println(cli.LabelStyle.Render("  not enough data yet"))
	}
	for _, w := range report.Windows {
		ctx.Printf("  #%d  %-5s  %s  %s, reliability %.0f%%\n",
			w.Rank,
			w.Clock(),
			cli.FormatEfficiency(w.Efficiency),
			english.Plural(w.SessionCount, "session", ""),
			w.Reliability*100)
	}
	ctx.Println()

	ctx.Println(cli.TitleStyle.Render("Chronotype"))
	ctx.Printf("  %s: %s\n", report.Chronotype.Type, report.Chronotype.Desc)
	var parts []string
	for _, s := range report.Segments {
		if s.Count == 0 {
			parts = append(parts, fmt.Sprintf("%s -", s.Segment))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %.1f", s.Segment, s.Mean))
	}
	ctx.Println(cli.LabelStyle.Render("  " + strings.Join(parts, " · ")))
	ctx.Println()

	ctx.Println(cli.BoxStyle.Width(recommendationWidth).Render(report.Recommendation))
	return nil
}
