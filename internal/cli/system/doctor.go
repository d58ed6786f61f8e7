package system

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/julianstephens/peakstate/internal/backup"
	"github.com/julianstephens/peakstate/internal/cli"
	"github.com/julianstephens/peakstate/internal/constants"
	"github.com/julianstephens/peakstate/internal/keyring"
	"github.com/julianstephens/peakstate/internal/lock"
	"github.com/julianstephens/peakstate/internal/migration"
	"github.com/julianstephens/peakstate/internal/validation"
)

type DoctorCmd struct{}

// schemaReporter is implemented by the SQL-backed stores.
type schemaReporter interface {
	SchemaStatus() (migration.Status, error)
}

type check struct {
	name     string
	run      func(*cli.Context) error
	needsDB  bool
	optional bool
	// gate marks the check whose failure skips every needsDB check after it
	gate bool
}

var checks = []check{
	{name: "Store reachable", run: checkStoreReachable, gate: true},
	{name: "Schema version", run: checkSchemaVersion, needsDB: true},
	{name: "Data validation", run: checkValidation, needsDB: true},
	{name: "Write lock", run: checkLock},
	{name: "Backups present", run: checkBackupsPresent, optional: true},
	{name: "OS keyring", run: checkKeyring, optional: true},
	{name: "Clock/timezone", run: checkClockTimezone},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	dbReachable := true

	for _, c := range checks {
		if c.needsDB && !dbReachable {
			ctx.Printf("⊘ %s: SKIPPED (store not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.Println(cli.Check(true, c.name+": OK"))
		case c.optional:
			ctx.Println(cli.WarnStyle.Render("⚠") + " " + c.name + ": WARNING")
			ctx.Printf("   %v\n", err)
		default:
			ctx.Println(cli.Check(false, c.name+": FAIL"))
			ctx.Printf("   Error: %v\n", err)
			hasError = true
			if c.gate {
				dbReachable = false
			}
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

func checkStoreReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load store: %w", err)
	}
	if _, _, err := ctx.Store.Get(constants.HeaderKey); err != nil {
		return fmt.Errorf("failed to query store: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	r, ok := ctx.Store.(schemaReporter)
	if !ok {
		// JSON store has no schema
		return nil
	}
	status, err := r.SchemaStatus()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if status.Current > status.Latest {
		return fmt.Errorf("schema version (%d) is newer than supported version (%d)", status.Current, status.Latest)
	}
	if status.Pending() {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", status.Current, status.Latest)
	}
	return nil
}

func checkValidation(ctx *cli.Context) error {
	entries, err := ctx.Entries().Entries()
	if err != nil {
		return fmt.Errorf("failed to read entries: %w", err)
	}
	result := validation.New().ValidateEntries(entries)
	if result.HasConflicts() {
		return fmt.Errorf("%d problem(s) found, run 'peakstate validate' for details", len(result.Conflicts))
	}
	return nil
}

func checkLock(ctx *cli.Context) error {
	holder, held, err := lock.Inspect(ctx.LockDir())
	if err != nil {
		return fmt.Errorf("failed to read lockfile: %w", err)
	}
	if !held {
		return nil
	}
	switch {
	case holder.Malformed:
		return fmt.Errorf("lockfile %s is malformed and will be replaced on the next write", lock.Path(ctx.LockDir()))
	case holder.Alive:
		return fmt.Errorf("held by pid %d since %s", holder.PID, humanize.Time(holder.Since))
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	mgr, err := ctx.BackupManager()
	if err != nil {
		if errors.Is(err, backup.ErrUnsupported) {
			return nil
		}
		return err
	}
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found, consider creating one with 'peakstate backup create'")
	}
	return nil
}

func checkKeyring(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		return keyring.ErrKeyringUnavailable
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	now := ctx.Clock()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	if ctx.Settings.Timezone != "" && ctx.Loc().String() != ctx.Settings.Timezone && ctx.Settings.Timezone != "Local" {
		return fmt.Errorf("configured timezone %q resolved to %s", ctx.Settings.Timezone, ctx.Loc())
	}
	return nil
}
