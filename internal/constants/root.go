package constants

const (
	AppName             = "peakstate"
	DefaultKeyringUser  = "database-connection"
	DefaultConfigPath   = "~/.config/peakstate/peakstate.db"
	DefaultSettingsFile = "config.toml"
	Version             = "v0.3.0"

	// EnvDBConnection overrides the store location when set
	EnvDBConnection = "PEAKSTATE_DB_CONNECTION"

	// Store keys. Both hold JSON documents.
	EntriesKey = "peakstate_data"
	HeaderKey  = "peakstate_header"

	// Header defaults
	DefaultHeaderTitle    = "Productivity Tracker"
	DefaultHeaderSubtitle = ""

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "peakstate-"

	// Lock constants
	LockfileName = "peakstate.lock"
)
