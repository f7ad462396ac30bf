package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"ctxstrat/internal/config"
	"ctxstrat/internal/events"
	"ctxstrat/internal/strategy"
	"ctxstrat/internal/tuner"
)

// statusCmd shows the workspace strategy state
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show event logs, latest report, and current overrides at a glance",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	ws, err := resolveWorkspace()
	if err != nil {
		return err
	}
	cfg, err := config.Load(ws)
	if err != nil {
		return err
	}

	fmt.Println(headingStyle.Render("ctxstrat status"))
	fmt.Printf("  %s %s\n", labelStyle.Render("workspace:"), ws)

	files, err := events.ListSessionFiles(cfg.EventsPath(ws))
	if err != nil {
		return fmt.Errorf("list session files: %w", err)
	}
	fmt.Printf("  %s %d file(s) in %s\n", labelStyle.Render("event logs:"), len(files), cfg.EventsPath(ws))

	if path, ok := tuner.FindLatestSummary(cfg.ReportsDir(ws)); ok {
		fmt.Printf("  %s %s\n", labelStyle.Render("latest summary:"), filepath.Base(path))
	} else {
		fmt.Printf("  %s none (run 'ctxstrat observe')\n", labelStyle.Render("latest summary:"))
	}

	printOverridesStatus(cfg.OverridesPath(ws))
	return nil
}

// printOverridesStatus reports the applied overrides file, flagging
// entries the orchestrator will already be ignoring as expired. This is
// display only; expiry enforcement stays with the orchestrator.
func printOverridesStatus(path string) {
	raw, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("  %s none applied\n", labelStyle.Render("overrides:"))
		return
	}

	var doc strategy.OverridesDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		fmt.Printf("  %s %s (unreadable)\n", labelStyle.Render("overrides:"), path)
		return
	}

	nowMS := time.Now().UTC().UnixMilli()
	expired := 0
	for _, entry := range doc.Entries {
		if entry.ExpiresAt <= nowMS {
			expired++
		}
	}

	fmt.Printf("  %s %d entr(ies) in %s\n", labelStyle.Render("overrides:"), len(doc.Entries), path)
	for _, entry := range doc.Entries {
		state := renderArm(entry.Arm)
		if entry.ExpiresAt <= nowMS {
			state = labelStyle.Render(string(entry.Arm) + " (expired)")
		}
		fmt.Printf("    %s  %s | %s -> %s\n", labelStyle.Render(entry.ID), entry.Model, entry.TaskClass, state)
	}
	if expired > 0 {
		fmt.Printf("  %s %d entr(ies) past expiry; re-run 'ctxstrat tune --apply' to refresh\n",
			labelStyle.Render("note:"), expired)
	}
}
