package config

import (
	"github.com/mverbeek/peoplescan/pkg/models"
)

// Config represents the application configuration
type Config struct {
	Scan        ScanConfig        `yaml:"scan"`
	Performance PerformanceConfig `yaml:"performance"`
	Detector    DetectorConfig    `yaml:"detector"`
	Viewer      ViewerConfig      `yaml:"viewer"`
	Output      OutputConfig      `yaml:"output"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// ScanConfig holds scan-related settings
type ScanConfig struct {
	ArchiveDir      string              `yaml:"archive_dir"`       // default archive directory
	Recursive       bool                `yaml:"recursive"`         // recurse into subdirectories by default
	OnRescanDecline models.RescanPolicy `yaml:"on_rescan_decline"` // "abort" or "skip"
}

// PerformanceConfig holds performance-related settings
type PerformanceConfig struct {
	MaxWorkers int `yaml:"max_workers"` // 0 = NumCPU-1, minimum 1
}

// DetectorConfig holds settings for the external person detector
type DetectorConfig struct {
	Command string   `yaml:"command"` // executable invoked per image
	Args    []string `yaml:"args"`    // extra arguments before the image path
}

// ViewerConfig holds settings for terminal image rendering
type ViewerConfig struct {
	Command string `yaml:"command"` // sixel encoder, empty = "img2sixel"
}

// OutputConfig holds output-related settings
type OutputConfig struct {
	Progress bool `yaml:"progress"` // show classification progress bars
	Color    bool `yaml:"color"`    // colored console output
	Quiet    bool `yaml:"quiet"`    // suppress non-error output
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Format  string `yaml:"format"` // "json" or "text"
	Level   string `yaml:"level"`  // "debug", "info", "warn", "error"
	File    string `yaml:"file"`   // log file path (empty = logging disabled)
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Scan: ScanConfig{
			ArchiveDir:      "./archive",
			Recursive:       false,
			OnRescanDecline: models.RescanAbort,
		},
		Performance: PerformanceConfig{
			MaxWorkers: 0,
		},
		Detector: DetectorConfig{
			Command: "detect-people",
		},
		Viewer: ViewerConfig{
			Command: "img2sixel",
		},
		Output: OutputConfig{
			Progress: true,
			Color:    true,
			Quiet:    false,
		},
		Logging: LoggingConfig{
			Enabled: false,
			Format:  "text",
			Level:   "info",
			File:    "",
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Scan.ArchiveDir == "" {
		return &models.ValidationError{
			Field:   "scan.archive_dir",
			Message: "must not be empty",
		}
	}

	if c.Scan.OnRescanDecline != models.RescanAbort && c.Scan.OnRescanDecline != models.RescanSkip {
		return &models.ValidationError{
			Field:   "scan.on_rescan_decline",
			Message: "must be 'abort' or 'skip'",
		}
	}

	if c.Performance.MaxWorkers < 0 {
		return &models.ValidationError{
			Field:   "performance.max_workers",
			Message: "must not be negative",
		}
	}

	if c.Detector.Command == "" {
		return &models.ValidationError{
			Field:   "detector.command",
			Message: "must not be empty",
		}
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Logging.Format] {
		return &models.ValidationError{
			Field:   "logging.format",
			Message: "must be 'text' or 'json'",
		}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return &models.ValidationError{
			Field:   "logging.level",
			Message: "must be one of: debug, info, warn, error",
		}
	}

	return nil
}
