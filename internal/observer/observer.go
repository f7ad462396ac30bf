// Package observer reduces orchestrator event logs into per-bucket
// context strategy metrics and renders the report documents.
//
// The pipeline is single-threaded and single-pass: each session file is
// read, attributed to a bucket, and folded into the accumulator before
// the next file is touched. Nothing is written until every file has been
// processed.
package observer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"ctxstrat/internal/events"
	"ctxstrat/internal/fsx"
	"ctxstrat/internal/strategy"
)

const msPerDay = 24 * 60 * 60 * 1000

// Observer owns one report-building run.
type Observer struct {
	// EventsDir is the directory of per-session .jsonl log files.
	EventsDir string
	// LookbackDays is the trailing window for counting; floored at 1.
	LookbackDays int
	// Now is the clock, injectable for tests. Defaults to time.Now.
	Now func() time.Time

	logger *zap.Logger
}

// New returns an Observer over eventsDir with the given lookback window.
func New(eventsDir string, lookbackDays int, logger *zap.Logger) *Observer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Observer{
		EventsDir:    eventsDir,
		LookbackDays: lookbackDays,
		Now:          time.Now,
		logger:       logger,
	}
}

// Result bundles the two observer outputs plus run statistics.
type Result struct {
	Markdown string
	Summary  strategy.SummaryDocument

	// FilesScanned counts session files read, including empty ones.
	FilesScanned int
	// SessionsCounted counts session files that contained any events.
	SessionsCounted int
}

// BuildReport runs the full aggregation pipeline and returns the rendered
// report and summary document. A missing events directory is not an
// error: it yields the "no event files" report and an empty summary.
func (o *Observer) BuildReport() (Result, error) {
	now := o.Now().UTC()
	lookback := max(1, o.LookbackDays)
	cutoffMS := now.UnixMilli() - int64(lookback)*msPerDay

	summary := strategy.SummaryDocument{
		GeneratedAt:  now.Format("2006-01-02"),
		LookbackDays: lookback,
		Buckets:      []strategy.BucketSummary{},
	}

	if _, err := os.Stat(o.EventsDir); os.IsNotExist(err) {
		o.logger.Warn("events directory missing", zap.String("dir", o.EventsDir))
		return Result{Markdown: renderMissingDir(), Summary: summary}, nil
	}

	files, err := events.ListSessionFiles(o.EventsDir)
	if err != nil {
		return Result{}, fmt.Errorf("list session files: %w", err)
	}

	acc := newAccumulator()
	result := Result{}
	for _, path := range files {
		evts, err := events.ReadFile(path)
		if err != nil {
			return Result{}, fmt.Errorf("read session file %s: %w", path, err)
		}
		result.FilesScanned++
		if len(evts) == 0 {
			continue
		}
		result.SessionsCounted++

		// Attribution sees the whole session; only counting is
		// window-filtered.
		model, taskClass := SessionLabels(evts)
		key := bucketKey{Model: model, TaskClass: taskClass}
		for _, ev := range evts {
			acc.observe(key, ev, cutoffMS)
		}
	}

	for _, key := range acc.sortedKeys() {
		summary.Buckets = append(summary.Buckets, summarize(key, acc.buckets[key]))
	}

	o.logger.Info("observer pipeline complete",
		zap.Int("files", result.FilesScanned),
		zap.Int("sessions", result.SessionsCounted),
		zap.Int("buckets", len(summary.Buckets)),
		zap.Int64("cutoff_ms", cutoffMS))

	result.Markdown = renderMarkdown(summary)
	result.Summary = summary
	return result, nil
}

// SummaryPath maps a markdown report path to its sibling summary path.
func SummaryPath(reportPath string) string {
	return strings.TrimSuffix(reportPath, filepath.Ext(reportPath)) + ".json"
}

// Write emits both report documents atomically. Each file appears fully
// written or not at all; a crash mid-run leaves prior reports untouched.
func Write(result Result, reportPath string) error {
	data, err := json.MarshalIndent(result.Summary, "", "  ")
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	if err := fsx.WriteFileAtomic(reportPath, []byte(result.Markdown), 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if err := fsx.WriteFileAtomic(SummaryPath(reportPath), append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}
