package entries

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize/english"

	"github.com/julianstephens/peakstate/internal/checkins"
	"github.com/julianstephens/peakstate/internal/cli"
	"github.com/julianstephens/peakstate/internal/efficiency"
	"github.com/julianstephens/peakstate/internal/models"
	"github.com/julianstephens/peakstate/internal/validation"
)

type ResultCmd struct {
	ID    string  `arg:"" help:"Entry id."`
	Value float64 `arg:"" help:"Outcome rating (1-10 in 0.5 steps)."`
}

func (c *ResultCmd) Run(ctx *cli.Context) error {
	id, err := models.ParseID(c.ID)
	if err != nil {
		return fmt.Errorf("invalid id %q", c.ID)
	}
	if err := validation.CheckRating("result", c.Value); err != nil {
		return err
	}

	var entry models.CheckInEntry
	err = ctx.WithWriteLock(func() error {
		var setErr error
		entry, setErr = ctx.Entries().SetResult(id, c.Value)
		return setErr
	})
	if errors.Is(err, checkins.ErrNotFound) {
		return fmt.Errorf("no entry with id %d", id)
	}
	if err != nil {
		return err
	}

	ctx.Printf("✓ Result of entry %d set to %g (efficiency now %s)\n", id, c.Value, cli.FormatEfficiency(efficiency.Score(&entry)))
	return nil
}

type DeleteCmd struct {
	IDs []string `arg:"" name:"id" help:"Ids of the entries to delete."`
	Yes bool     `short:"y" help:"Do not ask for confirmation."`
}

func (c *DeleteCmd) Run(ctx *cli.Context) error {
	ids := make([]int64, 0, len(c.IDs))
	for _, s := range c.IDs {
		id, err := models.ParseID(s)
		if err != nil {
			return fmt.Errorf("invalid id %q", s)
		}
		ids = append(ids, id)
	}

	ok, err := ctx.Confirm(fmt.Sprintf("Delete %s?", english.Plural(len(ids), "entry", "entries")), "This cannot be undone.", c.Yes)
	if err != nil {
		return err
	}
	if !ok {
		ctx.Println("Delete cancelled.")
		return nil
	}

	var deleted bool
	err = ctx.WithWriteLock(func() error {
		var delErr error
		deleted, delErr = ctx.Entries().Delete(ids...)
		return delErr
	})
	if err != nil {
		return err
	}

	if !deleted {
		ctx.Println("No matching entries.")
		return nil
	}
	ctx.Println("✓ Deleted.")
	return nil
}

type ClearCmd struct {
	Yes bool `short:"y" help:"Do not ask for confirmation."`
}

func (c *ClearCmd) Run(ctx *cli.Context) error {
	ok, err := ctx.Confirm("Delete all check-ins?", "A backup is taken first when the store is a local file.", c.Yes)
	if err != nil {
		return err
	}
	if !ok {
		ctx.Println("Clear cancelled.")
		return nil
	}

	err = ctx.WithWriteLock(func() error {
		ctx.PerformAutomaticBackup()
		return ctx.Entries().Clear()
	})
	if err != nil {
		return err
	}
	ctx.Println("✓ All check-ins deleted.")
	return nil
}

type HeaderShowCmd struct{}

func (c *HeaderShowCmd) Run(ctx *cli.Context) error {
	h, err := ctx.Entries().Header()
	if err != nil {
		return err
	}
	ctx.Println(cli.TitleStyle.Render(h.Title))
	if h.Subtitle != "" {
		ctx.Println(cli.SubtitleStyle.Render(h.Subtitle))
	}
	return nil
}

type HeaderSetCmd struct {
	Title    string `arg:"" help:"Header title."`
	Subtitle string `help:"Header subtitle."`
}

func (c *HeaderSetCmd) Run(ctx *cli.Context) error {
	var saved models.Header
	err := ctx.WithWriteLock(func() error {
		var saveErr error
		saved, saveErr = ctx.Entries().SaveHeader(models.Header{Title: c.Title, Subtitle: c.Subtitle})
		return saveErr
	})
	if err != nil {
		return err
	}
	ctx.Printf("✓ Header set to %q\n", saved.Title)
	return nil
}
