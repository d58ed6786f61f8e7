// Package lock guards the store against concurrent writers with a pid lockfile.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/peakstate/internal/constants"
	"github.com/julianstephens/peakstate/internal/logger"
)

var (
	// ErrHeld is returned when another live peakstate process holds the lock
	ErrHeld = errors.New("another peakstate process is writing to the store")

	findProcessFunc = ps.FindProcess
	getpidFunc      = os.Getpid
)

// Holder describes the process recorded in a lockfile.
type Holder struct {
	PID       int
	Since     time.Time
	Alive     bool
	Malformed bool
}

// Lock is an acquired lockfile. Release it when the write is done.
type Lock struct {
	path string
	pid  int
}

// Path returns the lockfile location inside configDir.
func Path(configDir string) string {
	return filepath.Join(configDir, constants.LockfileName)
}

// Acquire takes the lock in configDir. A lockfile left by a dead process,
// or by a process that is not peakstate, is replaced.
func Acquire(configDir string) (*Lock, error) {
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	path := Path(configDir)
	pid := getpidFunc()

	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
		if err == nil {
			_, werr := fmt.Fprintf(f, "%d|%d", pid, time.Now().Unix())
			cerr := f.Close()
			if werr != nil || cerr != nil {
				_ = os.Remove(path)
				return nil, fmt.Errorf("failed to write lockfile: %w", errors.Join(werr, cerr))
			}
			logger.Debug("Acquired lock", "path", path, "pid", pid)
			return &Lock{path: path, pid: pid}, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to create lockfile: %w", err)
		}

		holder, err := readHolder(path)
		if err != nil {
			return nil, err
		}
		if holder.Alive && holder.PID != pid {
			logger.Warn("Store lock is held", "pid", holder.PID, "since", holder.Since)
			return nil, fmt.Errorf("%w (pid %d)", ErrHeld, holder.PID)
		}

		logger.Debug("Replacing stale lockfile", "path", path, "pid", holder.PID)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to remove stale lockfile: %w", err)
		}
	}

	return nil, fmt.Errorf("%w: lockfile keeps reappearing", ErrHeld)
}

// Release removes the lockfile if it still belongs to this lock.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	content, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read lockfile: %w", err)
	}
	pid, _, ok := parse(string(content))
	if !ok || pid != l.pid {
		return nil
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lockfile: %w", err)
	}
	return nil
}

// Inspect reports the current holder of the lock in configDir, if any.
func Inspect(configDir string) (Holder, bool, error) {
	path := Path(configDir)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Holder{}, false, nil
	}
	h, err := readHolder(path)
	if err != nil {
		return Holder{}, false, err
	}
	return h, true, nil
}

func readHolder(path string) (Holder, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Holder{}, nil
		}
		return Holder{}, fmt.Errorf("failed to read lockfile: %w", err)
	}

	pid, since, ok := parse(string(content))
	if !ok {
		return Holder{Malformed: true}, nil
	}
	return Holder{PID: pid, Since: since, Alive: isPeakstate(pid)}, nil
}

func parse(content string) (int, time.Time, bool) {
	parts := strings.Split(strings.TrimSpace(content), "|")
	if len(parts) != 2 {
		return 0, time.Time{}, false
	}
	pid, err := strconv.Atoi(parts[0])
	if err != nil || pid <= 0 {
		return 0, time.Time{}, false
	}
	ts, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, time.Time{}, false
	}
	return pid, time.Unix(ts, 0), true
}

// isPeakstate reports whether pid is a running peakstate process.
func isPeakstate(pid int) bool {
	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return false
	}
	return strings.HasPrefix(process.Executable(), constants.AppName)
}
