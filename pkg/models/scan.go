package models

import (
	"time"
)

// Decision is the user's choice for a matched image
type Decision string

const (
	// DecisionKeep leaves the file in place
	DecisionKeep Decision = "keep"
	// DecisionArchive moves the file into the archive tree
	DecisionArchive Decision = "archive"
	// DecisionQuit stops the entire scan
	DecisionQuit Decision = "quit"
)

// RescanPolicy defines what happens when the user declines to re-scan
// an already-processed target folder
type RescanPolicy string

const (
	// RescanAbort stops the whole run, subfolders included
	RescanAbort RescanPolicy = "abort"
	// RescanSkip skips only the target folder's own files and keeps
	// visiting subfolders not yet in history
	RescanSkip RescanPolicy = "skip"
)

// ScanRequest represents a scan operation configuration.
// It is built once per invocation and immutable afterwards.
type ScanRequest struct {
	ID           string
	Folder       string // absolute path of the folder to scan
	ArchiveDir   string // absolute path of the archive tree
	Root         string // optional root for structure preservation; empty = none
	Recursive    bool
	MaxWorkers   int
	RescanPolicy RescanPolicy
	CreatedAt    time.Time
}

// Validate checks if the request configuration is valid
func (r *ScanRequest) Validate() error {
	if r.Folder == "" {
		return &ValidationError{Field: "Folder", Message: "scan folder is required"}
	}
	if r.ArchiveDir == "" {
		return &ValidationError{Field: "ArchiveDir", Message: "archive directory is required"}
	}
	if r.MaxWorkers < 1 {
		return &ValidationError{Field: "MaxWorkers", Message: "max workers must be at least 1"}
	}
	if r.RescanPolicy != RescanAbort && r.RescanPolicy != RescanSkip {
		return &ValidationError{Field: "RescanPolicy", Message: "must be 'abort' or 'skip'"}
	}
	return nil
}

// ClassificationResult is the outcome of classifying a single file.
// Results are delivered in the exact order their files were submitted.
type ClassificationResult struct {
	Path      string
	HasPeople bool
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
