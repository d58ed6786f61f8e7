package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/peakstate/internal/cli"
	"github.com/julianstephens/peakstate/internal/cli/analytics"
	"github.com/julianstephens/peakstate/internal/cli/backups"
	"github.com/julianstephens/peakstate/internal/cli/entries"
	"github.com/julianstephens/peakstate/internal/cli/system"
	"github.com/julianstephens/peakstate/internal/config"
	"github.com/julianstephens/peakstate/internal/constants"
	"github.com/julianstephens/peakstate/internal/errors"
	"github.com/julianstephens/peakstate/internal/keyring"
	"github.com/julianstephens/peakstate/internal/logger"
	"github.com/julianstephens/peakstate/internal/storage"
)

var CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"Store path (*.db for SQLite, *.json for a JSON file), a PostgreSQL connection string without password, or 'keyring'." type:"string" default:"${default_config}"`
	Settings string `help:"Settings file path." type:"path" default:"${default_settings}"`
	Verbose  bool   `short:"v" help:"Log debug output to stderr."`

	Checkin entries.CheckinCmd `cmd:"" help:"Record a check-in." default:"1"`
	List    entries.ListCmd    `cmd:"" help:"List check-ins, newest first."`
	Result  entries.ResultCmd  `cmd:"" help:"Set the result rating of a check-in."`
	Delete  entries.DeleteCmd  `cmd:"" help:"Delete check-ins."`
	Clear   entries.ClearCmd   `cmd:"" help:"Delete all check-ins."`
	Export  entries.ExportCmd  `cmd:"" help:"Export check-ins as JSON or YAML."`
	Import  entries.ImportCmd  `cmd:"" help:"Import check-ins from JSON or YAML."`
	Header  struct {
		Show entries.HeaderShowCmd `cmd:"" help:"Show the tracker title." default:"1"`
		Set  entries.HeaderSetCmd  `cmd:"" help:"Change the tracker title."`
	} `cmd:"" help:"Show or change the tracker header."`

	Insights analytics.InsightsCmd `cmd:"" help:"Show peak windows, chronotype and a recommendation."`
	Heatmap  analytics.HeatmapCmd  `cmd:"" help:"Show mean efficiency by weekday and hour."`
	Day      analytics.DayCmd      `cmd:"" help:"Chart the efficiency of one day."`

	Init        system.InitCmd        `cmd:"" help:"Initialize peakstate storage."`
	Doctor      system.DoctorCmd      `cmd:"" help:"Run health checks and diagnostics."`
	Validate    system.ValidateCmd    `cmd:"" help:"Check stored entries for inconsistencies."`
	Consolidate system.ConsolidateCmd `cmd:"" help:"Merge legacy point-in-time check-ins into sessions."`
	Debug       system.DebugCmd       `cmd:"" help:"Debug commands for troubleshooting."`
	Backup      struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage store backups."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string with credentials hidden."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check OS keyring availability."`
	} `cmd:"" help:"Manage the connection string kept in the OS keyring."`
}

// Commands that run without a store, or that open it themselves.
var (
	noStoreCommands = []string{"keyring"}
	noLoadCommands  = []string{"init", "doctor", "debug paths", "debug dump-settings"}
)

func main() {
	settingsPath, err := config.DefaultPath()
	if err != nil {
		settingsPath = filepath.Join(".", constants.DefaultSettingsFile)
	}

	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Productivity self-tracking: check-ins, peak windows and chronotype"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":          constants.Version,
			"default_config":   constants.DefaultConfigPath,
			"default_settings": settingsPath,
		},
	)

	settings, err := config.Load(CLI.Settings)
	if err != nil {
		errors.Fatal(errors.WithHint(err, "fix or remove the settings file"))
	}

	configDir := filepath.Dir(CLI.Settings)
	if err := logger.Init(logger.Config{Debug: CLI.Verbose || settings.Debug, ConfigDir: configDir}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}

	loc, err := settings.Location()
	if err != nil {
		errors.Fatal(err)
	}

	appCtx := &cli.Context{
		Settings:     settings,
		Location:     loc,
		ConfigDir:    configDir,
		SettingsPath: CLI.Settings,
		Interactive:  isTerminal(os.Stdin),
	}

	command := ctx.Command()
	if !matches(command, noStoreCommands) {
		store, err := openStore(CLI.Config)
		if err != nil {
			errors.Fatal(err)
		}
		appCtx.Store = store

		if !matches(command, noLoadCommands) {
			if err := store.Load(); err != nil {
				if storage.IsNotInitialized(err) {
					err = errors.WithHint(err, "run 'peakstate init' to create the store")
				}
				errors.Fatal(err)
			}
		}
	}

	logger.Debug("Running command", "command", command)
	err = ctx.Run(appCtx)
	if appCtx.Store != nil {
		if cerr := appCtx.Store.Close(); cerr != nil {
			logger.Warn("Failed to close store", "error", cerr)
		}
	}
	errors.Fatal(err)
}

// openStore resolves where the data lives. The environment variable wins
// over --config; secrets from either the environment or the keyring may
// carry a password.
func openStore(location string) (storage.Provider, error) {
	if connStr := strings.TrimSpace(os.Getenv(constants.EnvDBConnection)); connStr != "" {
		logger.Debug("Using connection string from environment", "var", constants.EnvDBConnection)
		return storage.OpenSecret(connStr)
	}

	if location == keyring.Location {
		connStr, err := keyring.Resolve(location)
		if err != nil {
			return nil, errors.WithHint(err, "store one with 'peakstate keyring set'")
		}
		return storage.OpenSecret(connStr)
	}

	if storage.IsPostgres(location) {
		store, err := storage.Open(location)
		if err != nil {
			return nil, errors.WithHint(err,
				"keep the password out of --config: use 'peakstate keyring set', "+constants.EnvDBConnection+" or .pgpass")
		}
		return store, nil
	}

	return storage.Open(expandHome(location))
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func matches(command string, prefixes []string) bool {
	for _, p := range prefixes {
		if command == p || strings.HasPrefix(command, p+" ") {
			return true
		}
	}
	return false
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
