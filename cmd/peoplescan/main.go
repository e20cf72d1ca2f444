package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mverbeek/peoplescan/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	rootCmd := &cobra.Command{
		Use:   "peoplescan",
		Short: "Interactive people-in-photos archiver",
		Long: `peoplescan walks a folder of images, detects which ones contain people,
and asks per match whether to keep the file or move it into an archive
tree mirroring the source structure. Fully processed directories are
remembered, so interrupted scans resume where they left off.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add global flags
	cli.AddGlobalFlags(rootCmd)

	// Add commands
	rootCmd.AddCommand(cli.NewScanCommand())
	rootCmd.AddCommand(cli.NewConfigCommand())
	rootCmd.AddCommand(cli.NewVersionCommand())

	return rootCmd.Execute()
}
