// Package scan drives the interactive person-detection scan: traversal
// planning, parallel classification, decision handling, and history.
package scan

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mverbeek/peoplescan/pkg/archive"
	"github.com/mverbeek/peoplescan/pkg/history"
	"github.com/mverbeek/peoplescan/pkg/logging"
	"github.com/mverbeek/peoplescan/pkg/models"
	"github.com/mverbeek/peoplescan/pkg/output"
)

// specialFolders are sidecar-backup directories archived wholesale
// instead of being scanned file by file
var specialFolders = map[string]bool{
	".picasaoriginals": true,
	".original":        true,
}

// IsSpecialFolder reports whether dir is a sidecar-backup folder
func IsSpecialFolder(dir string) bool {
	return specialFolders[filepath.Base(dir)]
}

// Orchestrator composes the planner, history store, dispatcher,
// decision controller and mover into the per-directory scan protocol.
type Orchestrator struct {
	req        *models.ScanRequest
	store      *history.Store
	dispatcher *Dispatcher
	controller *DecisionController
	mover      *archive.Mover
	console    *output.Console
	progress   *output.ClassifyProgress
	logger     logging.Logger

	// confirmRescan asks whether an already-processed target folder
	// should be scanned again. Injectable for tests.
	confirmRescan func(ctx context.Context, dir string) (bool, error)
}

// NewOrchestrator creates the top-level scan driver
func NewOrchestrator(
	req *models.ScanRequest,
	store *history.Store,
	dispatcher *Dispatcher,
	controller *DecisionController,
	mover *archive.Mover,
	console *output.Console,
	progress *output.ClassifyProgress,
	logger logging.Logger,
) *Orchestrator {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	o := &Orchestrator{
		req:        req,
		store:      store,
		dispatcher: dispatcher,
		controller: controller,
		mover:      mover,
		console:    console,
		progress:   progress,
		logger:     logger,
	}
	o.confirmRescan = o.promptRescan
	return o
}

// SetRescanConfirm overrides the re-scan confirmation prompt
func (o *Orchestrator) SetRescanConfirm(fn func(ctx context.Context, dir string) (bool, error)) {
	o.confirmRescan = fn
}

// Run executes the scan. The returned report is always non-nil. The
// error is non-nil only for aborting conditions: an unreadable target,
// an invalid request, or a declined re-scan under the abort policy. An
// explicit quit and an interrupt both return a nil error with the
// corresponding report flag set.
func (o *Orchestrator) Run(ctx context.Context) (*models.ScanReport, error) {
	start := time.Now()
	report := &models.ScanReport{
		OperationID: o.req.ID,
		Folder:      o.req.Folder,
		ArchiveDir:  o.req.ArchiveDir,
		Root:        o.req.Root,
		Recursive:   o.req.Recursive,
		StartTime:   start,
	}
	defer func() { report.Duration = time.Since(start) }()

	if err := o.req.Validate(); err != nil {
		return report, err
	}

	o.logger.Info(ctx, "Starting scan", logging.Fields{
		"operation_id": o.req.ID,
		"folder":       o.req.Folder,
		"archive_dir":  o.req.ArchiveDir,
		"root":         o.req.Root,
		"recursive":    o.req.Recursive,
		"max_workers":  o.req.MaxWorkers,
	})

	dirs, err := Plan(o.req.Folder, o.req.Recursive)
	if err != nil {
		return report, err
	}

	// Quit and interrupt both cancel this context, which tears down any
	// in-flight and queued classification work immediately.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	processed := o.store.Load()

	for _, dir := range dirs {
		select {
		case <-ctx.Done():
			report.Interrupted = true
			return report, nil
		default:
		}

		if err := o.scanDirectory(ctx, dir, processed, report); err != nil {
			if errors.Is(err, models.ErrQuit) {
				cancel()
				report.Quit = true
				return report, nil
			}
			if errors.Is(err, models.ErrInterrupted) {
				cancel()
				report.Interrupted = true
				return report, nil
			}
			return report, err
		}
	}

	o.logger.Info(ctx, "Scan complete", logging.Fields{
		"dirs_visited":   report.Stats.DirsVisited,
		"files_scanned":  report.Stats.FilesClassified,
		"matches":        report.Stats.Matches,
		"files_archived": report.Stats.FilesArchived,
	})
	return report, nil
}

// scanDirectory applies the per-directory protocol
func (o *Orchestrator) scanDirectory(ctx context.Context, dir string, processed history.Set, report *models.ScanReport) error {
	key := history.Key(dir, o.req.Root)

	// Sidecar-backup folders are archived as a unit, before any history
	// check or file listing.
	if IsSpecialFolder(dir) {
		o.archiveSpecialFolder(ctx, dir, key, processed, report)
		return nil
	}

	if processed.Contains(key) {
		if dir != o.req.Folder {
			o.logger.Debug(ctx, "Skipping processed directory", logging.Fields{"dir": dir, "key": key})
			report.Stats.DirsSkipped++
			return nil
		}

		again, err := o.confirmRescan(ctx, dir)
		if err != nil {
			return err
		}
		if !again {
			if o.req.RescanPolicy == models.RescanSkip {
				report.Stats.DirsSkipped++
				return nil
			}
			return fmt.Errorf("target folder %s already processed, re-scan declined", dir)
		}
	}

	files, err := ListImages(dir)
	if err != nil {
		// An unreadable target folder aborts the scan. Directories that
		// vanished since planning (e.g. inside an archived backup
		// folder) are skipped silently; anything else is reported.
		if dir == o.req.Folder {
			return err
		}
		if errors.Is(err, os.ErrNotExist) {
			report.Stats.DirsSkipped++
			return nil
		}
		o.console.Error("Error reading directory: %v", err)
		report.AddError(dir, "list", err)
		return nil
	}

	report.Stats.DirsVisited++

	if len(files) == 0 {
		// An empty, checked directory counts as fully processed.
		o.commit(ctx, key, processed)
		if dir == o.req.Folder && !o.req.Recursive {
			o.console.Warn("No images found in the specified folder.")
		}
		return nil
	}

	o.console.Status("Found %d images in %s. Starting scan...", len(files), dir)
	o.progress.Start(filepath.Base(dir), len(files))
	defer o.progress.Finish()

	for result := range o.dispatcher.Classify(ctx, files) {
		report.Stats.FilesClassified++
		o.progress.Increment()

		if !result.HasPeople {
			continue
		}
		report.Stats.Matches++

		o.progress.Pause()
		decision, err := o.controller.Review(ctx, result.Path, report)
		if err != nil {
			return err
		}
		if decision == models.DecisionQuit {
			return models.ErrQuit
		}
		o.progress.Resume()
	}

	// The results channel closes early when the context is cancelled;
	// in that case the directory is not committed.
	if ctx.Err() != nil {
		return models.ErrInterrupted
	}

	o.commit(ctx, key, processed)
	return nil
}

// archiveSpecialFolder moves a sidecar-backup folder wholesale and
// commits it to history so repeat scans skip it
func (o *Orchestrator) archiveSpecialFolder(ctx context.Context, dir, key string, processed history.Set, report *models.ScanReport) {
	if processed.Contains(key) {
		report.Stats.DirsSkipped++
		return
	}

	dest, err := o.mover.MoveDir(ctx, dir)
	if err != nil {
		o.console.Error("Failed to archive %s: %v", dir, err)
		report.AddError(dir, "move", err)
		return
	}

	o.console.Info("Archived backup folder %s to %s", dir, dest)
	report.Stats.DirsArchived++
	o.commit(ctx, key, processed)
}

// commit persists key to history and mirrors it in the in-memory set
func (o *Orchestrator) commit(ctx context.Context, key string, processed history.Set) {
	o.store.Save(key)
	processed[key] = struct{}{}
	o.logger.Debug(ctx, "Committed directory to history", logging.Fields{"key": key})
}

// promptRescan is the default re-scan confirmation
func (o *Orchestrator) promptRescan(ctx context.Context, dir string) (bool, error) {
	o.console.Warn("Folder %s was already processed.", dir)
	o.console.Ask("Scan it again? [y/N]: ")

	key, err := o.controller.keys.ReadKey(ctx)
	if err != nil {
		return false, err
	}
	o.console.Info("")
	return key == 'y' || key == 'Y', nil
}
