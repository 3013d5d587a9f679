package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	verbose    bool
	jsonOutput bool
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "forge",
		Short: "ForgeCAD - Parametric CAD Build Pipeline",
		Long: `ForgeCAD turns JSON design documents into solid models and
exports them as STEP, STL, and OBJ files.

Features:
  - Declarative design documents with typed validation
  - Operation pipelines over interchangeable geometry engines
  - Automatic engine selection with capability fallback
  - Product templates and a keyword rule engine
  - Parametric bicycle frame generator
  - SQLite build history`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	}

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	// Add subcommands
	rootCmd.AddCommand(newBuildCommand(version))
	rootCmd.AddCommand(newValidateCommand(version))
	rootCmd.AddCommand(newEnginesCommand(version))
	rootCmd.AddCommand(newTemplatesCommand(version))
	rootCmd.AddCommand(newFrameCommand(version))
	rootCmd.AddCommand(newHistoryCommand(version))
	rootCmd.AddCommand(newDevCommand(version))
	rootCmd.AddCommand(newServeCommand(version))

	return rootCmd
}
