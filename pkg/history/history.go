// Package history persists the set of already-processed directories so
// interrupted scans can be resumed without revisiting finished work.
package history

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/mverbeek/peoplescan/internal/platform"
	"github.com/mverbeek/peoplescan/pkg/logging"
)

// FileName is the history file kept inside the archive directory
const FileName = "processed_history.json"

// Key derives the history key for a directory.
// With a root set and the directory strictly under it, the key is the
// directory's path relative to root; otherwise it falls back to the base
// name. Keys are human-meaningful and scoped per archive directory, so
// collisions across differently-rooted scans are accepted.
func Key(dir, root string) string {
	if rel, ok := platform.RelWithin(root, dir); ok {
		return rel
	}
	return filepath.Base(dir)
}

// Set is an in-memory view of the processed-directory set
type Set map[string]struct{}

// Contains reports whether key is in the set
func (s Set) Contains(key string) bool {
	_, ok := s[key]
	return ok
}

// Keys returns the sorted keys, mainly for logging and tests
func (s Set) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Store reads and writes the history file of one archive directory.
// It is used only by the controlling goroutine; saves re-read the file
// before writing so repeated saves within one run always accumulate.
type Store struct {
	archiveDir string
	logger     logging.Logger
}

// NewStore creates a history store rooted at archiveDir
func NewStore(archiveDir string, logger logging.Logger) *Store {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Store{archiveDir: archiveDir, logger: logger}
}

// Path returns the history file path
func (s *Store) Path() string {
	return filepath.Join(s.archiveDir, FileName)
}

// Load reads the processed-directory set. A missing or corrupt history
// file yields the empty set; the scan proceeds from a clean slate
// rather than aborting.
func (s *Store) Load() Set {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn(context.Background(), "History file unreadable, starting fresh", logging.Fields{
				"path":  s.Path(),
				"error": err.Error(),
			})
		}
		return Set{}
	}

	var keys []string
	if err := json.Unmarshal(data, &keys); err != nil {
		s.logger.Warn(context.Background(), "History file corrupt, starting fresh", logging.Fields{
			"path":  s.Path(),
			"error": err.Error(),
		})
		return Set{}
	}

	set := make(Set, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}

// Save adds key to the persisted set. Idempotent: adding a key twice
// leaves the set unchanged. Write failures are logged and swallowed so
// history stays best-effort and never blocks the scan.
func (s *Store) Save(key string) {
	set := s.Load()
	set[key] = struct{}{}

	data, err := json.MarshalIndent(set.Keys(), "", "  ")
	if err != nil {
		s.warnSaveFailed(key, err)
		return
	}

	if err := os.MkdirAll(s.archiveDir, 0755); err != nil {
		s.warnSaveFailed(key, err)
		return
	}

	// Write via temp file + rename so a concurrent Load never sees a
	// partially written array.
	tmp := s.Path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		s.warnSaveFailed(key, err)
		return
	}
	if err := os.Rename(tmp, s.Path()); err != nil {
		os.Remove(tmp)
		s.warnSaveFailed(key, err)
	}
}

func (s *Store) warnSaveFailed(key string, err error) {
	s.logger.Warn(context.Background(), "Failed to save history", logging.Fields{
		"path":  s.Path(),
		"key":   key,
		"error": err.Error(),
	})
}
