package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ctxstrat/internal/config"
	"ctxstrat/internal/observer"
)

var (
	observeDays   int
	observeOutput string
)

// observeCmd builds the context strategy report
var observeCmd = &cobra.Command{
	Use:   "observe",
	Short: "Build the context strategy report from orchestrator event logs",
	Long: `Scans the workspace's orchestrator event logs, aggregates context
strategy metrics per (model, task class) bucket over the lookback
window, and writes a markdown report plus a JSON summary.

The summary is the input for 'ctxstrat tune'.`,
	RunE: runObserve,
}

func init() {
	observeCmd.Flags().IntVar(&observeDays, "days", config.DefaultLookbackDays, "Lookback window in days")
	observeCmd.Flags().StringVar(&observeOutput, "output", "", "Report output path (default: <strategy-dir>/reports/context-strategy-YYYYMMDD.md)")
}

func runObserve(cmd *cobra.Command, args []string) error {
	ws, err := resolveWorkspace()
	if err != nil {
		return err
	}
	cfg, err := config.Load(ws)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("days") {
		cfg.LookbackDays = max(1, observeDays)
	}

	log := logger.With(zap.String("run_id", uuid.NewString()))
	log.Info("observer run starting",
		zap.String("workspace", ws),
		zap.Int("lookback_days", cfg.LookbackDays))

	obs := observer.New(cfg.EventsPath(ws), cfg.LookbackDays, log)
	result, err := obs.BuildReport()
	if err != nil {
		return err
	}

	outPath := observeOutput
	if outPath == "" {
		name := fmt.Sprintf("context-strategy-%s.md", time.Now().UTC().Format("20060102"))
		outPath = filepath.Join(cfg.ReportsDir(ws), name)
	} else {
		outPath = resolveOutput(ws, outPath)
	}

	if err := observer.Write(result, outPath); err != nil {
		return err
	}

	fmt.Printf("Observer report: %s\n", outPath)
	fmt.Printf("Observer summary: %s\n", observer.SummaryPath(outPath))
	return nil
}
