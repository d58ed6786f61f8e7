package system

import (
	"github.com/dustin/go-humanize/english"

	"github.com/julianstephens/peakstate/internal/cli"
	"github.com/julianstephens/peakstate/internal/constants"
	"github.com/julianstephens/peakstate/internal/sessions"
)

// ConsolidateCmd folds runs of legacy point-in-time check-ins into sessions.
type ConsolidateCmd struct {
	DryRun bool `help:"Report what would be merged without writing."`
}

func (c *ConsolidateCmd) Run(ctx *cli.Context) error {
	var res sessions.Result
	err := ctx.WithWriteLock(func() error {
		var err error
		res, err = ctx.Entries().Consolidate(c.DryRun)
		return err
	})
	if err != nil {
		return err
	}

	if len(res.Merged) == 0 {
		ctx.Println("Nothing to consolidate.")
		return nil
	}

	for _, g := range res.Merged {
		ctx.Printf("  %s  %s-%s  %s\n",
			g.Start.In(ctx.Loc()).Format(constants.DateFormat),
			g.Start.In(ctx.Loc()).Format(constants.TimeFormat),
			g.End.In(ctx.Loc()).Format(constants.TimeFormat),
			english.Plural(g.Members, "entry", "entries"))
	}
	ctx.Println()

	verb := "Merged"
	if c.DryRun {
		verb = "Would merge"
	}
	ctx.Printf("%s %s into sessions; %s remain.\n",
		verb,
		english.Plural(len(res.Merged), "run", ""),
		english.Plural(len(res.Entries), "entry", "entries"))
	return nil
}
