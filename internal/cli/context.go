package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/julianstephens/peakstate/internal/backup"
	"github.com/julianstephens/peakstate/internal/checkins"
	"github.com/julianstephens/peakstate/internal/config"
	"github.com/julianstephens/peakstate/internal/constants"
	"github.com/julianstephens/peakstate/internal/insights"
	"github.com/julianstephens/peakstate/internal/lock"
	"github.com/julianstephens/peakstate/internal/logger"
	"github.com/julianstephens/peakstate/internal/storage"
)

// Context is handed to every command's Run method.
type Context struct {
	Store     storage.Provider
	Settings  config.Settings
	Location  *time.Location
	ConfigDir string
	// SettingsPath is the TOML settings file the settings were loaded from.
	SettingsPath string
	Out          io.Writer
	Now          func() time.Time
	// Interactive is true when stdin is a terminal; prompts are only shown then.
	Interactive bool

	held *lock.Lock
}

// Writer returns the command output stream.
func (c *Context) Writer() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// Printf writes formatted output to the command output stream.
func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Writer(), format, args...)
}

// Print writes to the command output stream.
func (c *Context) Print(args ...any) {
	fmt.Fprint(c.Writer(), args...)
}

// Println writes a line to the command output stream.
func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.Writer(), args...)
}

// Clock returns the current time in the configured location.
func (c *Context) Clock() time.Time {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return now().In(c.Loc())
}

// Loc returns the configured location, time.Local when unset.
func (c *Context) Loc() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

// Entries returns a check-in service over the store. Consolidation rewrites
// done while reading take the write lock. When automatic backups are enabled
// a backup is taken before the migrator rewrites stored data.
func (c *Context) Entries() *checkins.Service {
	opts := []checkins.Option{
		checkins.WithLocation(c.Loc()),
		checkins.WithRewriteGuard(c.WithWriteLock),
	}
	if c.Now != nil {
		opts = append(opts, checkins.WithClock(c.Now))
	}
	if c.Settings.AutoBackup {
		opts = append(opts, checkins.WithBeforeRewrite(func() error {
			c.PerformAutomaticBackup()
			return nil
		}))
	}
	return checkins.New(c.Store, opts...)
}

// Engine returns an insight engine using the configured location and
// recommendation templates.
func (c *Context) Engine() *insights.Engine {
	return insights.NewEngine(
		insights.WithLocation(c.Loc()),
		insights.WithTemplates(c.Settings.Recommendation),
	)
}

// SupportsBackups reports whether the store is a local file.
func (c *Context) SupportsBackups() bool {
	return c.Store != nil && c.Store.Kind() != "postgres"
}

// BackupManager returns a backup manager for a file-backed store.
func (c *Context) BackupManager() (*backup.Manager, error) {
	if !c.SupportsBackups() {
		return nil, backup.ErrUnsupported
	}
	return backup.NewManager(c.Store.GetConfigPath()), nil
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	if !c.Settings.AutoBackup || !c.SupportsBackups() {
		return
	}
	if _, err := os.Stat(c.Store.GetConfigPath()); err != nil {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.CreateBackup(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// LockDir is where the single-writer lockfile lives.
func (c *Context) LockDir() string {
	if c.ConfigDir != "" {
		return c.ConfigDir
	}
	if c.SupportsBackups() {
		return filepath.Dir(c.Store.GetConfigPath())
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return os.TempDir()
	}
	return filepath.Join(dir, constants.AppName)
}

// WithWriteLock runs fn while holding the store lock. Nested calls reuse
// the lock already held by c.
func (c *Context) WithWriteLock(fn func() error) error {
	if c.held != nil {
		return fn()
	}
	l, err := lock.Acquire(c.LockDir())
	if err != nil {
		return err
	}
	c.held = l
	defer func() {
		c.held = nil
		if err := l.Release(); err != nil {
			logger.Warn("Failed to release lock", "error", err)
		}
	}()
	return fn()
}
