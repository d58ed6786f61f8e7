package system

import (
	"encoding/json"
	"fmt"

	"github.com/julianstephens/peakstate/internal/cli"
	"github.com/julianstephens/peakstate/internal/constants"
	"github.com/julianstephens/peakstate/internal/keyring"
	"github.com/julianstephens/peakstate/internal/lock"
	"github.com/julianstephens/peakstate/internal/logger"
	"github.com/julianstephens/peakstate/internal/models"
	"github.com/julianstephens/peakstate/internal/storage"
)

type DebugCmd struct {
	Paths        DebugPathsCmd        `cmd:"" help:"Show store, settings, lock and log paths."`
	DumpEntry    DebugDumpEntryCmd    `cmd:"" help:"Dump one entry as stored."`
	DumpRaw      DebugDumpRawCmd      `cmd:"" help:"Dump a raw store document."`
	DumpSettings DebugDumpSettingsCmd `cmd:"" help:"Dump effective settings as JSON."`
}

func printJSON(ctx *cli.Context, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	ctx.Println(string(b))
	return nil
}

type DebugPathsCmd struct{}

func (cmd *DebugPathsCmd) Run(ctx *cli.Context) error {
	location := ctx.Store.GetConfigPath()
	if storage.IsPostgres(location) {
		location = keyring.Redact(location)
	}
	return printJSON(ctx, map[string]string{
		"store":    location,
		"kind":     ctx.Store.Kind(),
		"settings": ctx.SettingsPath,
		"lock":     lock.Path(ctx.LockDir()),
		"log":      logger.LogPath(ctx.LockDir()),
	})
}

type DebugDumpEntryCmd struct {
	ID string `arg:"" help:"ID of the entry to dump."`
}

func (cmd *DebugDumpEntryCmd) Run(ctx *cli.Context) error {
	id, err := models.ParseID(cmd.ID)
	if err != nil {
		return err
	}
	entry, err := ctx.Entries().Get(id)
	if err != nil {
		return err
	}
	return printJSON(ctx, entry)
}

type DebugDumpRawCmd struct {
	Key string `arg:"" optional:"" enum:"entries,header" default:"entries" help:"Document to dump (entries or header)."`
}

func (cmd *DebugDumpRawCmd) Run(ctx *cli.Context) error {
	key := constants.EntriesKey
	if cmd.Key == "header" {
		key = constants.HeaderKey
	}
	value, ok, err := ctx.Store.Get(key)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no %s document stored", cmd.Key)
	}
	ctx.Println(value)
	return nil
}

type DebugDumpSettingsCmd struct{}

func (cmd *DebugDumpSettingsCmd) Run(ctx *cli.Context) error {
	return printJSON(ctx, ctx.Settings)
}
