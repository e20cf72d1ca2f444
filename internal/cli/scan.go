package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mverbeek/peoplescan/internal/platform"
	"github.com/mverbeek/peoplescan/pkg/archive"
	"github.com/mverbeek/peoplescan/pkg/config"
	"github.com/mverbeek/peoplescan/pkg/detect"
	"github.com/mverbeek/peoplescan/pkg/history"
	"github.com/mverbeek/peoplescan/pkg/logging"
	"github.com/mverbeek/peoplescan/pkg/models"
	"github.com/mverbeek/peoplescan/pkg/output"
	"github.com/mverbeek/peoplescan/pkg/render"
	"github.com/mverbeek/peoplescan/pkg/scan"
)

// ScanFlags holds scan command flags
type ScanFlags struct {
	ArchiveDir      string
	Root            string
	Recursive       bool
	Parallel        int
	NoProgress      bool
	OnRescanDecline string
	// Logging flags
	LogFile   string
	LogFormat string
	LogLevel  string
}

var scanFlags ScanFlags

// NewScanCommand creates the scan command
func NewScanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan FOLDER",
		Short: "Scan a folder for images containing people",
		Long: `Scan a folder for images containing people and interactively decide,
per match, whether to keep the file or move it into the archive tree.
Directories that were fully processed in earlier runs are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: runScan,
	}

	cmd.Flags().StringVarP(&scanFlags.ArchiveDir, "archive-dir", "a", "", "directory to move archived images to (default \"./archive\")")
	cmd.Flags().StringVar(&scanFlags.Root, "root", "", "root directory for preserving folder structure in archive")
	cmd.Flags().BoolVarP(&scanFlags.Recursive, "recursive", "R", false, "recursively scan subdirectories")
	cmd.Flags().IntVarP(&scanFlags.Parallel, "parallel", "p", 0, "number of classification workers (default: CPUs-1)")
	cmd.Flags().BoolVar(&scanFlags.NoProgress, "no-progress", false, "disable the classification progress bar")
	cmd.Flags().StringVar(&scanFlags.OnRescanDecline, "on-rescan-decline", "", "behavior when a re-scan is declined: abort, skip")

	// Logging flags
	cmd.Flags().StringVar(&scanFlags.LogFile, "log-file", "", "write logs to file (enables logging)")
	cmd.Flags().StringVar(&scanFlags.LogFormat, "log-format", "text", "log format: text, json")
	cmd.Flags().StringVar(&scanFlags.LogLevel, "log-level", "info", "log level: debug, info, warn, error")

	return cmd
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	req, err := buildRequest(args[0], cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(req.ArchiveDir, 0755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}

	logger, err := createLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()
	logger = logger.WithFields(logging.Fields{"operation_id": req.ID})

	// Probe the detector once up front; a pool that cannot start at all
	// aborts the run instead of silently classifying everything false.
	factory := detect.CommandFactory(cfg.Detector.Command, cfg.Detector.Args...)
	if _, err := factory(); err != nil {
		return err
	}

	quiet := GetGlobalFlags().Quiet || cfg.Output.Quiet
	console := output.NewConsole(os.Stdout, quiet, cfg.Output.Color)
	progress := output.NewClassifyProgress(cfg.Output.Progress && !scanFlags.NoProgress && !quiet)
	keys := output.NewKeyReader(os.Stdin)
	viewer := render.NewViewer(cfg.Viewer.Command)
	mover := archive.NewMover(req.ArchiveDir, req.Root, logger)
	store := history.NewStore(req.ArchiveDir, logger)
	dispatcher := scan.NewDispatcher(req.MaxWorkers, factory, logger)
	controller := scan.NewDecisionController(viewer, console, keys, mover, logger)

	orchestrator := scan.NewOrchestrator(req, store, dispatcher, controller, mover, console, progress, logger)

	report, err := orchestrator.Run(ctx)
	console.Summary(report)
	if err != nil {
		return err
	}
	if report.Interrupted {
		console.Error("Interrupted.")
	}
	return nil
}

// buildRequest resolves paths and assembles the immutable scan request
func buildRequest(folder string, cfg *config.Config) (*models.ScanRequest, error) {
	folder, err := platform.Resolve(folder)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve folder: %w", err)
	}
	if info, err := os.Stat(folder); err != nil {
		return nil, fmt.Errorf("cannot access folder: %w", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", folder)
	}

	archiveDir := scanFlags.ArchiveDir
	if archiveDir == "" {
		archiveDir = cfg.Scan.ArchiveDir
	}
	archiveDir, err = platform.Resolve(archiveDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve archive dir: %w", err)
	}

	recursive := scanFlags.Recursive || cfg.Scan.Recursive

	root := scanFlags.Root
	if root != "" {
		root, err = platform.Resolve(root)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve root: %w", err)
		}
		if !platform.Within(root, folder) {
			return nil, fmt.Errorf("scanned folder %s is not under root %s", folder, root)
		}
	} else if recursive {
		// Preserve structure relative to the start folder.
		root = folder
	}

	workers := scanFlags.Parallel
	if workers == 0 {
		workers = cfg.Performance.MaxWorkers
	}
	if workers == 0 {
		workers = scan.DefaultWorkers()
	}

	policy := cfg.Scan.OnRescanDecline
	if scanFlags.OnRescanDecline != "" {
		policy = models.RescanPolicy(scanFlags.OnRescanDecline)
	}

	return &models.ScanRequest{
		ID:           uuid.New().String(),
		Folder:       folder,
		ArchiveDir:   archiveDir,
		Root:         root,
		Recursive:    recursive,
		MaxWorkers:   workers,
		RescanPolicy: policy,
		CreatedAt:    time.Now(),
	}, nil
}

// createLogger creates a logger from flags and configuration.
// Flags win over the config file; no log file means no logging.
func createLogger(cfg *config.Config) (logging.Logger, error) {
	logFile := scanFlags.LogFile
	logFormat := scanFlags.LogFormat
	logLevel := scanFlags.LogLevel
	if logFile == "" && cfg.Logging.Enabled {
		logFile = cfg.Logging.File
		logFormat = cfg.Logging.Format
		logLevel = cfg.Logging.Level
	}
	if logFile == "" {
		return logging.NewNullLogger(), nil
	}

	var format logging.Format
	switch logFormat {
	case "json":
		format = logging.FormatJSON
	default:
		format = logging.FormatText
	}

	if GetGlobalFlags().Verbose {
		logLevel = "debug"
	}

	return logging.NewFileLogger(logging.FileLoggerConfig{
		Path:       logFile,
		Format:     format,
		Level:      logging.ParseLevel(logLevel),
		MaxSize:    10 * 1024 * 1024, // 10 MB
		MaxBackups: 5,
	})
}
