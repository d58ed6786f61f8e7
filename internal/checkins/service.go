// Package checkins reads and writes the persisted check-in list.
//
// The list is stored as one JSON array under constants.EntriesKey. Every read
// runs the session migrator and writes the consolidated list back when it
// changed, so callers always see session-form data.
package checkins

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/julianstephens/peakstate/internal/constants"
	"github.com/julianstephens/peakstate/internal/lock"
	"github.com/julianstephens/peakstate/internal/logger"
	"github.com/julianstephens/peakstate/internal/models"
	"github.com/julianstephens/peakstate/internal/sessions"
	"github.com/julianstephens/peakstate/internal/storage"
)

var ErrNotFound = errors.New("entry not found")

// Store is the subset of storage.Provider the service needs.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

var _ Store = (storage.Provider)(nil)

// Service wraps a key-value store with check-in semantics.
type Service struct {
	store         Store
	loc           *time.Location
	now           func() time.Time
	beforeRewrite func() error
	rewriteGuard  func(fn func() error) error
}

// Option configures a Service.
type Option func(*Service)

// WithLocation sets the zone used for derived dates and hours.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock overrides time.Now, used for new entry ids.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithBeforeRewrite registers a hook run before the migrator rewrites stored
// data. A hook error aborts the rewrite but not the read.
func WithBeforeRewrite(fn func() error) Option {
	return func(s *Service) {
		s.beforeRewrite = fn
	}
}

// WithRewriteGuard wraps the automatic rewrite done by Entries, typically in
// the store write lock. Inside the guard the list is re-read and re-migrated
// before saving. A guard error skips the write and Entries returns the
// migrated view of what it read.
func WithRewriteGuard(guard func(fn func() error) error) Option {
	return func(s *Service) {
		s.rewriteGuard = guard
	}
}

// New creates a Service over store.
func New(store Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		loc:   time.Local,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Location returns the zone the service derives dates in.
func (s *Service) Location() *time.Location {
	return s.loc
}

// load decodes the stored list without migrating it. Missing or corrupt
// data yields an empty list.
func (s *Service) load() ([]models.CheckInEntry, error) {
	raw, ok, err := s.store.Get(constants.EntriesKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read entries: %w", err)
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return []models.CheckInEntry{}, nil
	}

	var entries []models.CheckInEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		logger.Warn("Stored entries are corrupt, treating as empty", "error", err)
		return []models.CheckInEntry{}, nil
	}
	if entries == nil {
		entries = []models.CheckInEntry{}
	}
	return entries, nil
}

func (s *Service) save(entries []models.CheckInEntry) error {
	if entries == nil {
		entries = []models.CheckInEntry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode entries: %w", err)
	}
	if err := s.store.Set(constants.EntriesKey, string(data)); err != nil {
		return fmt.Errorf("failed to save entries: %w", err)
	}
	return nil
}

// Entries returns the stored list after session consolidation. When the
// migrator changed anything the consolidated list is persisted.
func (s *Service) Entries() ([]models.CheckInEntry, error) {
	entries, err := s.load()
	if err != nil {
		return nil, err
	}

	res := sessions.Migrate(entries, sessions.WithLocation(s.loc))
	if !res.Changed {
		return res.Entries, nil
	}
	if s.rewriteGuard == nil {
		if err := s.rewrite(res); err != nil {
			logger.Warn("Failed to persist consolidated entries", "error", err)
		}
		return res.Entries, nil
	}

	fresh := res
	err = s.rewriteGuard(func() error {
		current, err := s.load()
		if err != nil {
			return err
		}
		fresh = sessions.Migrate(current, sessions.WithLocation(s.loc))
		if !fresh.Changed {
			return nil
		}
		return s.rewrite(fresh)
	})
	switch {
	case errors.Is(err, lock.ErrHeld):
		logger.Debug("Store is locked, consolidated entries not persisted")
		return res.Entries, nil
	case err != nil:
		logger.Warn("Failed to persist consolidated entries", "error", err)
		return res.Entries, nil
	}
	return fresh.Entries, nil
}

// Consolidate runs the migrator explicitly. With dryRun the stored list is
// left untouched.
func (s *Service) Consolidate(dryRun bool) (sessions.Result, error) {
	entries, err := s.load()
	if err != nil {
		return sessions.Result{}, err
	}

	res := sessions.Migrate(entries, sessions.WithLocation(s.loc))
	if dryRun || !res.Changed {
		return res, nil
	}
	if err := s.rewrite(res); err != nil {
		return res, err
	}
	return res, nil
}

func (s *Service) rewrite(res sessions.Result) error {
	if s.beforeRewrite != nil {
		if err := s.beforeRewrite(); err != nil {
			return fmt.Errorf("pre-rewrite hook failed: %w", err)
		}
	}
	if err := s.save(res.Entries); err != nil {
		return err
	}
	logger.Info("Consolidated legacy entries", "groups", len(res.Merged), "entries", len(res.Entries))
	return nil
}

// Add stores a session entry for [start, end] with the given ratings and
// returns it. The id is the current epoch millisecond, bumped until unique.
func (s *Service) Add(r models.Ratings, start, end time.Time) (models.CheckInEntry, error) {
	entries, err := s.Entries()
	if err != nil {
		return models.CheckInEntry{}, err
	}

	id := nextID(entries, s.now().UnixMilli())
	entry := models.NewSessionEntry(id, start.In(s.loc), end.In(s.loc), r)
	entries = append(entries, entry)

	if err := s.save(entries); err != nil {
		return models.CheckInEntry{}, err
	}
	logger.Debug("Added entry", "id", id)
	return entry, nil
}

func nextID(entries []models.CheckInEntry, candidate int64) int64 {
	used := make(map[int64]struct{}, len(entries))
	for _, e := range entries {
		used[e.ID] = struct{}{}
	}
	for {
		if _, ok := used[candidate]; !ok {
			return candidate
		}
		candidate++
	}
}

// Get returns the entry with the given id.
func (s *Service) Get(id int64) (models.CheckInEntry, error) {
	entries, err := s.Entries()
	if err != nil {
		return models.CheckInEntry{}, err
	}
	for _, e := range entries {
		if e.ID == id {
			return e, nil
		}
	}
	return models.CheckInEntry{}, fmt.Errorf("%w: %d", ErrNotFound, id)
}

// Update applies fn to the entry with the given id and persists the result.
func (s *Service) Update(id int64, fn func(*models.CheckInEntry)) (models.CheckInEntry, error) {
	entries, err := s.Entries()
	if err != nil {
		return models.CheckInEntry{}, err
	}
	for i := range entries {
		if entries[i].ID != id {
			continue
		}
		fn(&entries[i])
		entries[i].ID = id
		if err := s.save(entries); err != nil {
			return models.CheckInEntry{}, err
		}
		return entries[i], nil
	}
	return models.CheckInEntry{}, fmt.Errorf("%w: %d", ErrNotFound, id)
}

// SetResult sets or overwrites the outcome rating of an entry.
func (s *Service) SetResult(id int64, result float64) (models.CheckInEntry, error) {
	return s.Update(id, func(e *models.CheckInEntry) {
		e.Result = models.FloatPtr(result)
	})
}

// Delete removes the entries with the given ids. It reports whether any
// entry was removed; the store is only written when something changed.
func (s *Service) Delete(ids ...int64) (bool, error) {
	entries, err := s.Entries()
	if err != nil {
		return false, err
	}

	drop := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	kept := entries[:0:0]
	for _, e := range entries {
		if _, ok := drop[e.ID]; !ok {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entries) {
		return false, nil
	}
	if err := s.save(kept); err != nil {
		return false, err
	}
	return true, nil
}

// Clear removes every stored entry. The header is kept.
func (s *Service) Clear() error {
	if err := s.store.Delete(constants.EntriesKey); err != nil {
		return fmt.Errorf("failed to clear entries: %w", err)
	}
	return nil
}

// Replace stores entries as the whole list, unmigrated, and returns how many
// were stored. Later entries reusing an id are dropped. The next read
// consolidates the list.
func (s *Service) Replace(entries []models.CheckInEntry) (int, error) {
	used := make(map[int64]struct{}, len(entries))
	kept := make([]models.CheckInEntry, 0, len(entries))
	for _, e := range entries {
		if _, dup := used[e.ID]; dup {
			continue
		}
		used[e.ID] = struct{}{}
		kept = append(kept, e.Clone())
	}
	if dropped := len(entries) - len(kept); dropped > 0 {
		logger.Warn("Dropped entries with duplicate ids", "count", dropped)
	}
	if err := s.save(kept); err != nil {
		return 0, err
	}
	return len(kept), nil
}

// Append adds entries whose ids are not already stored and returns how many
// were added.
func (s *Service) Append(entries []models.CheckInEntry) (int, error) {
	current, err := s.load()
	if err != nil {
		return 0, err
	}

	used := make(map[int64]struct{}, len(current))
	for _, e := range current {
		used[e.ID] = struct{}{}
	}

	added := 0
	for _, e := range entries {
		if _, dup := used[e.ID]; dup {
			continue
		}
		used[e.ID] = struct{}{}
		current = append(current, e.Clone())
		added++
	}
	if added == 0 {
		return 0, nil
	}
	if err := s.save(current); err != nil {
		return 0, err
	}
	return added, nil
}

// Header returns the saved header, or the default when none is stored or
// the stored one is unreadable.
func (s *Service) Header() (models.Header, error) {
	raw, ok, err := s.store.Get(constants.HeaderKey)
	if err != nil {
		return models.Header{}, fmt.Errorf("failed to read header: %w", err)
	}
	if !ok {
		return models.DefaultHeader(), nil
	}

	var h models.Header
	if err := json.Unmarshal([]byte(raw), &h); err != nil {
		logger.Warn("Stored header is corrupt, using default", "error", err)
		return models.DefaultHeader(), nil
	}
	return h, nil
}

// SaveHeader persists h. Title and subtitle are trimmed and NFC-normalised;
// an empty title falls back to the default.
func (s *Service) SaveHeader(h models.Header) (models.Header, error) {
	h.Title = norm.NFC.String(strings.TrimSpace(h.Title))
	h.Subtitle = norm.NFC.String(strings.TrimSpace(h.Subtitle))
	if h.Title == "" {
		h.Title = constants.DefaultHeaderTitle
	}

	data, err := json.Marshal(h)
	if err != nil {
		return models.Header{}, fmt.Errorf("failed to encode header: %w", err)
	}
	if err := s.store.Set(constants.HeaderKey, string(data)); err != nil {
		return models.Header{}, fmt.Errorf("failed to save header: %w", err)
	}
	return h, nil
}
