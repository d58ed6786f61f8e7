package storage

import "errors"

var (
	// ErrNotInitialized is returned by Load when the store has never been created.
	ErrNotInitialized = errors.New("storage not initialized, run 'peakstate init' first")
	// ErrNotLoaded is returned by accessors called before Init or Load.
	ErrNotLoaded = errors.New("storage not loaded")
)

// Provider is an opaque key-value store of JSON documents.
//
// Values are whole documents (the entry list, the header); a Set replaces
// the previous value. Providers are not safe for concurrent writers across
// processes, callers serialise writes with the lock package.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Documents
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Delete(key string) error

	// Utils
	Kind() string
	GetConfigPath() string
}
