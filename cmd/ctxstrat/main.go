// ctxstrat analyzes Brewva orchestrator event logs to judge how the
// current context-injection strategy performs per (model, task class)
// bucket, and proposes time-limited strategy overrides.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose   bool
	workspace string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ctxstrat",
	Short: "Context strategy observer and tuner for Brewva event logs",
	Long: `ctxstrat is a batch analyzer for Brewva orchestrator event logs.

It runs in two stages:
  1. observe: reduce raw session logs into per-(model, task class)
     context strategy metrics and write a report.
  2. tune: read that report and propose (or apply) time-limited
     strategy overrides using a fixed decision rule.

Both stages are single-pass batch jobs; re-run them periodically.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: current)")

	rootCmd.AddCommand(observeCmd)
	rootCmd.AddCommand(tuneCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// resolveWorkspace returns the absolute workspace root, defaulting to the
// current directory.
func resolveWorkspace() (string, error) {
	ws := workspace
	if ws == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve working directory: %w", err)
		}
		ws = cwd
	}
	abs, err := filepath.Abs(ws)
	if err != nil {
		return "", fmt.Errorf("resolve workspace path: %w", err)
	}
	return abs, nil
}

// resolveOutput makes a user-supplied output path absolute relative to
// the workspace.
func resolveOutput(ws, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(ws, path)
}
