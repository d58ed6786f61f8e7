package storage

import (
	"errors"
	"strings"

	"github.com/julianstephens/peakstate/internal/storage/postgres"
	"github.com/julianstephens/peakstate/internal/storage/sqlite"
)

// IsPostgres reports whether location is a PostgreSQL connection URL.
func IsPostgres(location string) bool {
	return strings.HasPrefix(location, "postgres://") || strings.HasPrefix(location, "postgresql://")
}

// Open selects a provider for location without touching it:
// PostgreSQL URLs use postgres, *.json paths use JSONStore, everything else
// is a SQLite database file. Connection strings carrying a password are rejected.
func Open(location string) (Provider, error) {
	switch {
	case IsPostgres(location):
		if _, err := postgres.ValidateConnString(location); err != nil {
			return nil, err
		}
		return postgres.New(location), nil
	case strings.HasSuffix(strings.ToLower(location), ".json"):
		return NewJSONStore(location), nil
	default:
		return sqlite.NewStore(location), nil
	}
}

// OpenSecret opens a PostgreSQL store from a connection string that came from
// a secret source (keyring or environment). Embedded passwords are allowed.
func OpenSecret(connStr string) (Provider, error) {
	if _, err := postgres.ValidateConnString(connStr); err != nil && !errors.Is(err, postgres.ErrEmbeddedCredentials) {
		return nil, err
	}
	return postgres.New(connStr), nil
}

// IsNotInitialized reports whether err means the store was never created.
func IsNotInitialized(err error) bool {
	return errors.Is(err, ErrNotInitialized) || errors.Is(err, sqlite.ErrNotInitialized)
}
