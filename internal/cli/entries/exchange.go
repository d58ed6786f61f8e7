package entries

import (
	"fmt"
	"os"

	"github.com/julianstephens/peakstate/internal/cli"
	"github.com/julianstephens/peakstate/internal/exchange"
	"github.com/julianstephens/peakstate/internal/logger"
)

type ExportCmd struct {
	Format string `help:"Export format." enum:"json,yaml" default:"json"`
	Output string `short:"o" help:"Write to this file instead of stdout." type:"path"`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	format, err := exchange.ParseFormat(c.Format)
	if err != nil {
		return err
	}

	svc := ctx.Entries()
	list, err := svc.Entries()
	if err != nil {
		return err
	}
	header, err := svc.Header()
	if err != nil {
		return err
	}

	if c.Output == "" {
		return exchange.Export(ctx.Writer(), format, header, list, ctx.Clock())
	}

	f, err := os.OpenFile(c.Output, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", c.Output, err)
	}
	if err := exchange.Export(f, format, header, list, ctx.Clock()); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", c.Output, err)
	}

	ctx.Printf("✓ Exported %d entries to %s\n", len(list), c.Output)
	return nil
}

type ImportCmd struct {
	File    string `arg:"" help:"File to import (JSON or YAML)." type:"existingfile"`
	Format  string `help:"Input format (json or yaml); detected from the extension when omitted."`
	Replace bool   `help:"Replace all stored entries instead of appending."`
	Header  bool   `help:"Also import the header when the file has one."`
	Yes     bool   `short:"y" help:"Do not ask for confirmation when replacing."`
}

func (c *ImportCmd) Run(ctx *cli.Context) error {
	format := exchange.FormatFromPath(c.File)
	if c.Format != "" {
		var err error
		if format, err = exchange.ParseFormat(c.Format); err != nil {
			return err
		}
	}

	f, err := os.Open(c.File)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", c.File, err)
	}
	defer f.Close()

	imported, err := exchange.Import(f, format)
	if err != nil {
		return err
	}

	if c.Replace {
		ok, err := ctx.Confirm(fmt.Sprintf("Replace all entries with %d imported entries?", len(imported.Entries)), "A backup is taken first when the store is a local file.", c.Yes)
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Import cancelled.")
			return nil
		}
	}

	svc := ctx.Entries()
	added := 0
	err = ctx.WithWriteLock(func() error {
		if c.Replace {
			ctx.PerformAutomaticBackup()
			n, err := svc.Replace(imported.Entries)
			if err != nil {
				return err
			}
			added = n
		} else {
			n, err := svc.Append(imported.Entries)
			if err != nil {
				return err
			}
			added = n
		}
		if c.Header && imported.Header != nil {
			if _, err := svc.SaveHeader(*imported.Header); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("Imported entries", "file", c.File, "added", added, "replace", c.Replace)
	skipped := len(imported.Entries) - added
	if skipped > 0 {
		ctx.Printf("✓ Imported %d entries (%d skipped as duplicates)\n", added, skipped)
	} else {
		ctx.Printf("✓ Imported %d entries\n", added)
	}
	return nil
}
