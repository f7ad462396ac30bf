package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ctxstrat/internal/config"
	"ctxstrat/internal/tuner"
)

var (
	tuneInput    string
	tuneOutput   string
	tuneTTLHours int
	tuneApply    bool
)

// tuneCmd proposes or applies strategy overrides
var tuneCmd = &cobra.Command{
	Use:   "tune",
	Short: "Propose or apply context strategy overrides from the observer summary",
	Long: `Reads the latest observer summary (or --input), applies the arm
decision rule to every bucket with enough plan samples, and assembles
the complete override set for this run.

Without --apply the proposal is printed; with --apply the overrides
file is replaced atomically. Expiry of applied overrides is enforced by
the orchestrator, not by this tool.`,
	RunE: runTune,
}

func init() {
	tuneCmd.Flags().StringVar(&tuneInput, "input", "", "Observer summary path (default: latest in <strategy-dir>/reports)")
	tuneCmd.Flags().StringVar(&tuneOutput, "output", "", "Overrides file path (default: <strategy-dir>/context-strategy.json)")
	tuneCmd.Flags().IntVar(&tuneTTLHours, "ttl-hours", config.DefaultTTLHours, "Override TTL in hours")
	tuneCmd.Flags().BoolVar(&tuneApply, "apply", false, "Write the overrides file in place instead of previewing")
}

func runTune(cmd *cobra.Command, args []string) error {
	ws, err := resolveWorkspace()
	if err != nil {
		return err
	}
	cfg, err := config.Load(ws)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("ttl-hours") {
		cfg.TTLHours = max(1, tuneTTLHours)
	}

	log := logger.With(zap.String("run_id", uuid.NewString()))

	inputPath := tuneInput
	if inputPath == "" {
		latest, ok := tuner.FindLatestSummary(cfg.ReportsDir(ws))
		if !ok {
			return fmt.Errorf("no observer summary found in %s; run 'ctxstrat observe' first", cfg.ReportsDir(ws))
		}
		inputPath = latest
	} else {
		inputPath = resolveOutput(ws, inputPath)
	}

	summary, err := tuner.LoadSummary(inputPath, log)
	if err != nil {
		return fmt.Errorf("%w; run 'ctxstrat observe' first", err)
	}

	log.Info("tuner run starting",
		zap.String("input", inputPath),
		zap.Int("buckets", len(summary.Buckets)),
		zap.Int("ttl_hours", cfg.TTLHours))

	doc := tuner.BuildOverrides(summary, cfg.TTLHours, time.Now())

	if tuneApply {
		outPath := tuneOutput
		if outPath == "" {
			outPath = cfg.OverridesPath(ws)
		} else {
			outPath = resolveOutput(ws, outPath)
		}
		if err := tuner.Apply(doc, outPath); err != nil {
			return err
		}
		log.Info("overrides applied",
			zap.String("path", outPath),
			zap.Int("entries", len(doc.Entries)))
		fmt.Printf("Applied strategy overrides: %s\n", outPath)
		return nil
	}

	fmt.Println(renderOverridePreview(doc))
	data, err := tuner.Encode(doc)
	if err != nil {
		return err
	}
	os.Stdout.Write(data)
	return nil
}
