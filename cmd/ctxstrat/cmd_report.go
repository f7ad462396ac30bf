package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"ctxstrat/internal/config"
)

// reportCmd renders the latest strategy report in the terminal
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render the latest context strategy report in the terminal",
	RunE:  runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
	ws, err := resolveWorkspace()
	if err != nil {
		return err
	}
	cfg, err := config.Load(ws)
	if err != nil {
		return err
	}

	reportsDir := cfg.ReportsDir(ws)
	path, ok := findLatestReport(reportsDir)
	if !ok {
		return fmt.Errorf("no reports found in %s; run 'ctxstrat observe' first", reportsDir)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read report: %w", err)
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		// Plain markdown beats no output.
		fmt.Print(string(raw))
		return nil
	}
	rendered, err := renderer.Render(string(raw))
	if err != nil {
		fmt.Print(string(raw))
		return nil
	}
	fmt.Print(rendered)
	return nil
}

// findLatestReport returns the newest markdown report in dir. Filenames
// are date-stamped, so lexical order is chronological.
func findLatestReport(dir string) (string, bool) {
	files, err := filepath.Glob(filepath.Join(dir, "context-strategy-*.md"))
	if err != nil || len(files) == 0 {
		return "", false
	}
	sort.Strings(files)
	return files[len(files)-1], true
}
