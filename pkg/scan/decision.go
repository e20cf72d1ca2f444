package scan

import (
	"context"

	"github.com/mverbeek/peoplescan/pkg/archive"
	"github.com/mverbeek/peoplescan/pkg/logging"
	"github.com/mverbeek/peoplescan/pkg/models"
	"github.com/mverbeek/peoplescan/pkg/output"
	"github.com/mverbeek/peoplescan/pkg/render"
)

// controller states for one matched file
type decisionState int

const (
	statePresenting decisionState = iota
	stateAwaiting
	stateKeeping
	stateArchiving
	stateQuitting
)

// DecisionController runs the interactive loop for one matched file at
// a time: render the image, collect a keep/archive/quit key, and invoke
// the mover on archive. It runs on the controlling goroutine only;
// classification of later files continues in the background meanwhile.
type DecisionController struct {
	viewer  render.Renderer
	console *output.Console
	keys    *output.KeyReader
	mover   *archive.Mover
	logger  logging.Logger
}

// NewDecisionController wires the interactive decision loop
func NewDecisionController(
	viewer render.Renderer,
	console *output.Console,
	keys *output.KeyReader,
	mover *archive.Mover,
	logger logging.Logger,
) *DecisionController {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &DecisionController{
		viewer:  viewer,
		console: console,
		keys:    keys,
		mover:   mover,
		logger:  logger,
	}
}

// Review presents one matched file, returns the user's decision, and
// updates the report's decision counters. A failed archive move is
// reported and counted as an error but never stops the scan. The error
// return is non-nil only for interrupts.
func (c *DecisionController) Review(ctx context.Context, path string, report *models.ScanReport) (models.Decision, error) {
	state := statePresenting
	for {
		switch state {
		case statePresenting:
			c.console.Match(path)
			c.viewer.Display(path)
			state = stateAwaiting

		case stateAwaiting:
			c.console.Prompt()
			key, err := c.keys.ReadKey(ctx)
			if err != nil {
				return "", err
			}
			switch key {
			case 'k', 'K':
				state = stateKeeping
			case 'a', 'A':
				state = stateArchiving
			case 'q', 'Q':
				state = stateQuitting
			default:
				// Any other key re-prompts without a state change.
			}

		case stateKeeping:
			c.console.Kept()
			report.Stats.FilesKept++
			return models.DecisionKeep, nil

		case stateArchiving:
			dest, err := c.mover.MoveFile(ctx, path)
			if err != nil {
				c.console.Error("Failed to archive: %v", err)
				c.logger.Error(ctx, "Archive move failed", err, logging.Fields{"file": path})
				report.AddError(path, "move", err)
			} else {
				c.console.Archived(dest)
				report.Stats.FilesArchived++
			}
			return models.DecisionArchive, nil

		case stateQuitting:
			c.console.Quit()
			return models.DecisionQuit, nil
		}
	}
}
