package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mverbeek/peoplescan/pkg/config"
)

// NewConfigCommand creates the config command
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  `View or modify peoplescan configuration.`,
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigInitCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			fmt.Printf("Archive Dir: %s\n", cfg.Scan.ArchiveDir)
			fmt.Printf("Recursive: %t\n", cfg.Scan.Recursive)
			fmt.Printf("On Rescan Decline: %s\n", cfg.Scan.OnRescanDecline)
			fmt.Printf("Max Workers: %d (0 = auto)\n", cfg.Performance.MaxWorkers)
			fmt.Printf("Detector Command: %s\n", cfg.Detector.Command)
			fmt.Printf("Viewer Command: %s\n", cfg.Viewer.Command)
			fmt.Printf("Log Format: %s\n", cfg.Logging.Format)
			fmt.Printf("Log Level: %s\n", cfg.Logging.Level)

			return nil
		},
	}
}

func newConfigInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.DefaultConfigPath()
			if err != nil {
				return err
			}

			cfg := config.Default()
			if err := config.SaveToFile(cfg, path); err != nil {
				return err
			}

			fmt.Printf("Configuration file created at: %s\n", path)
			return nil
		},
	}
}

// loadConfig loads configuration from the --config flag or the default
// location
func loadConfig() (*config.Config, error) {
	if globalFlags.ConfigFile != "" {
		return config.LoadFromFile(globalFlags.ConfigFile)
	}
	return config.LoadDefault()
}
