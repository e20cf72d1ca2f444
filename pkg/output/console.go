package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/mverbeek/peoplescan/pkg/models"
)

var (
	statusColor  = color.New(color.FgGreen, color.Bold)
	matchColor   = color.New(color.FgCyan, color.Bold)
	promptColor  = color.New(color.FgYellow, color.Bold)
	archiveColor = color.New(color.FgRed)
	keepColor    = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
)

// Console writes user-facing scan output.
// It is driven only by the controlling goroutine.
type Console struct {
	out   io.Writer
	quiet bool
}

// NewConsole creates a console writing to out. When colorEnabled is
// false, or out is not a terminal, ANSI colors are disabled globally.
func NewConsole(out io.Writer, quiet, colorEnabled bool) *Console {
	if out == nil {
		out = os.Stdout
	}
	if !colorEnabled {
		color.NoColor = true
	} else if f, ok := out.(*os.File); ok && !isatty.IsTerminal(f.Fd()) {
		color.NoColor = true
	}
	return &Console{out: out, quiet: quiet}
}

// Status prints a progress status line
func (c *Console) Status(format string, args ...interface{}) {
	if c.quiet {
		return
	}
	statusColor.Fprintf(c.out, format+"\n", args...)
}

// Info prints an uncolored informational line
func (c *Console) Info(format string, args ...interface{}) {
	if c.quiet {
		return
	}
	fmt.Fprintf(c.out, format+"\n", args...)
}

// Match announces a detected person
func (c *Console) Match(path string) {
	fmt.Fprintln(c.out)
	matchColor.Fprintf(c.out, "Found person in: %s\n", path)
}

// Ask prints a confirmation question without a trailing newline
func (c *Console) Ask(format string, args ...interface{}) {
	promptColor.Fprintf(c.out, format, args...)
}

// Prompt prints the decision prompt without a trailing newline
func (c *Console) Prompt() {
	fmt.Fprint(c.out, "\n\n")
	promptColor.Fprint(c.out, "Action ([k]eep, [a]rchive, [q]uit): ")
}

// Kept confirms a keep decision
func (c *Console) Kept() {
	fmt.Fprintln(c.out, "Keep")
	keepColor.Fprintln(c.out, "Kept.")
}

// Archived confirms a successful archive move
func (c *Console) Archived(dest string) {
	fmt.Fprintln(c.out, "Archive")
	archiveColor.Fprintf(c.out, "Archived to %s\n", dest)
}

// Quit confirms a quit decision
func (c *Console) Quit() {
	fmt.Fprintln(c.out, "Quit")
	errorColor.Fprintln(c.out, "Exiting...")
}

// Warn prints a warning line; never suppressed
func (c *Console) Warn(format string, args ...interface{}) {
	warnColor.Fprintf(c.out, format+"\n", args...)
}

// Error prints an error line; never suppressed
func (c *Console) Error(format string, args ...interface{}) {
	errorColor.Fprintf(c.out, format+"\n", args...)
}

// Summary prints the end-of-run report
func (c *Console) Summary(report *models.ScanReport) {
	if c.quiet {
		return
	}

	fmt.Fprintln(c.out)
	switch {
	case report.Interrupted:
		warnColor.Fprintf(c.out, "Scan interrupted after %s\n", report.Duration.Round(time.Millisecond))
	case report.Quit:
		fmt.Fprintf(c.out, "Scan stopped after %s\n", report.Duration.Round(time.Millisecond))
	default:
		statusColor.Fprintf(c.out, "Scan completed in %s\n", report.Duration.Round(time.Millisecond))
	}

	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "Summary:")
	fmt.Fprintf(c.out, "  Directories:      %d visited, %d skipped, %d archived\n",
		report.Stats.DirsVisited, report.Stats.DirsSkipped, report.Stats.DirsArchived)
	fmt.Fprintf(c.out, "  Images:           %d classified, %d with people\n",
		report.Stats.FilesClassified, report.Stats.Matches)
	fmt.Fprintf(c.out, "  Decisions:        %d archived, %d kept\n",
		report.Stats.FilesArchived, report.Stats.FilesKept)
	if report.Stats.Errors > 0 {
		errorColor.Fprintf(c.out, "  Errors:           %d\n", report.Stats.Errors)
	}
}
