package models

import (
	"errors"
	"time"
)

// ErrQuit signals an explicit, orderly user quit.
var ErrQuit = errors.New("scan stopped by user")

// ErrInterrupted signals an external interrupt during a blocking wait.
var ErrInterrupted = errors.New("scan interrupted")

// ScanStats holds counters for a scan run.
// Mutated only by the controlling goroutine, so plain ints are enough.
type ScanStats struct {
	DirsVisited     int `json:"dirs_visited"`
	DirsSkipped     int `json:"dirs_skipped"`
	DirsArchived    int `json:"dirs_archived"` // sidecar-backup folders moved wholesale
	FilesClassified int `json:"files_classified"`
	Matches         int `json:"matches"`
	FilesArchived   int `json:"files_archived"`
	FilesKept       int `json:"files_kept"`
	Errors          int `json:"errors"`
}

// ScanError records a non-fatal error encountered during a scan
type ScanError struct {
	Path      string    `json:"path"`
	Stage     string    `json:"stage"` // "list", "classify", "move", "history"
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// ScanReport summarizes a completed (or aborted) scan run
type ScanReport struct {
	OperationID string        `json:"operation_id"`
	Folder      string        `json:"folder"`
	ArchiveDir  string        `json:"archive_dir"`
	Root        string        `json:"root,omitempty"`
	Recursive   bool          `json:"recursive"`
	StartTime   time.Time     `json:"start_time"`
	Duration    time.Duration `json:"duration"`
	Stats       ScanStats     `json:"stats"`
	Quit        bool          `json:"quit"`        // user chose to quit
	Interrupted bool          `json:"interrupted"` // external interrupt
	Errors      []ScanError   `json:"errors,omitempty"`
}

// AddError appends a non-fatal error to the report and bumps the counter
func (r *ScanReport) AddError(path, stage string, err error) {
	r.Stats.Errors++
	r.Errors = append(r.Errors, ScanError{
		Path:      path,
		Stage:     stage,
		Error:     err.Error(),
		Timestamp: time.Now(),
	})
}
