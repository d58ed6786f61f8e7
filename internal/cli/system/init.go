package system

import (
	"fmt"
	"os"

	"github.com/julianstephens/peakstate/internal/cli"
	"github.com/julianstephens/peakstate/internal/config"
	"github.com/julianstephens/peakstate/internal/logger"
)

type InitCmd struct {
	Force    bool `help:"Delete an existing store file before initialization."`
	Settings bool `help:"Also write a settings file with the defaults if none exists."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if !ctx.SupportsBackups() {
			return fmt.Errorf("--force is only supported for file-backed stores")
		}
		path := ctx.Store.GetConfigPath()
		if _, err := os.Stat(path); err == nil {
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing store: %w", err)
			}
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("failed to delete existing store: %w", err)
			}
			ctx.Printf("Deleted existing store at: %s\n", path)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing store: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.Printf("Initialized %s storage at: %s\n", ctx.Store.Kind(), ctx.Store.GetConfigPath())

	if c.Settings && ctx.SettingsPath != "" {
		if _, err := os.Stat(ctx.SettingsPath); err == nil {
			ctx.Printf("Settings file already exists: %s\n", ctx.SettingsPath)
			return nil
		}
		if err := config.Save(ctx.SettingsPath, config.Default()); err != nil {
			return err
		}
		logger.Info("Wrote default settings", "path", ctx.SettingsPath)
		ctx.Printf("Wrote default settings to: %s\n", ctx.SettingsPath)
	}
	return nil
}
