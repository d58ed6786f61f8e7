// Package config loads the TOML settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/julianstephens/peakstate/internal/constants"
	"github.com/julianstephens/peakstate/internal/insights"
	"github.com/julianstephens/peakstate/internal/logger"
	"github.com/julianstephens/peakstate/internal/utils"
	"github.com/julianstephens/peakstate/internal/validation"
)

type Settings struct {
	Timezone          string             `toml:"timezone"`
	Debug             bool               `toml:"debug"`
	DefaultSessionMin int                `toml:"default_session_min"`
	AutoBackup        bool               `toml:"auto_backup"`
	Recommendation    insights.Templates `toml:"recommendation"`
}

// Default returns the settings used when no file exists.
func Default() Settings {
	return Settings{
		Timezone:          "Local",
		DefaultSessionMin: constants.DefaultSessionMin,
		AutoBackup:        true,
	}
}

// DefaultPath returns ~/.config/peakstate/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", constants.AppName, constants.DefaultSettingsFile), nil
}

// Load reads settings from path. A missing file yields Default(); a file
// that does not parse or holds invalid values is an error. Keys the file
// sets override the defaults, keys it omits keep them.
func Load(path string) (Settings, error) {
	cfg := Default()

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Settings{}, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		logger.Warn("Ignoring unknown settings", "path", path, "keys", strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return Settings{}, fmt.Errorf("invalid settings %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every field.
func (s Settings) Validate() error {
	if !utils.ValidateTimezone(s.Timezone) {
		return fmt.Errorf("unknown timezone %q", s.Timezone)
	}
	if err := validation.CheckSessionMinutes(s.DefaultSessionMin); err != nil {
		return fmt.Errorf("default_session_min: %w", err)
	}
	if err := s.Recommendation.Validate(); err != nil {
		return fmt.Errorf("recommendation: %w", err)
	}
	return nil
}

// Location resolves Timezone.
func (s Settings) Location() (*time.Location, error) {
	loc, err := utils.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", s.Timezone, err)
	}
	return loc, nil
}

// Save writes s to path, creating the directory.
func Save(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to create settings file: %w", err)
	}
	if err := toml.NewEncoder(f).Encode(s); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
