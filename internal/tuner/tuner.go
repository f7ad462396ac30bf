// Package tuner turns an observer summary into a time-bounded set of
// context strategy overrides.
package tuner

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"ctxstrat/internal/fsx"
	"ctxstrat/internal/strategy"
)

// MinPlansSample is the sample-size floor: buckets with fewer plan events
// are statistically unreliable and produce no override, leaving any prior
// override or the system default in force.
const MinPlansSample = 20

const msPerHour = 60 * 60 * 1000

// summaryGlob matches observer summary documents in a reports directory.
const summaryGlob = "context-strategy-*.json"

// FindLatestSummary returns the newest observer summary under reportsDir.
// The date-stamped filenames sort lexically, so the last match wins. The
// second return is false when no summary exists.
func FindLatestSummary(reportsDir string) (string, bool) {
	files, err := filepath.Glob(filepath.Join(reportsDir, summaryGlob))
	if err != nil || len(files) == 0 {
		return "", false
	}
	sort.Strings(files)
	return files[len(files)-1], true
}

// LoadSummary reads an observer summary document. A missing file is an
// error (the observer must run first); malformed content is recovered as
// an empty document so a half-written or drifted summary degrades to
// "zero buckets" instead of failing the tuning run.
func LoadSummary(path string, logger *zap.Logger) (strategy.SummaryDocument, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return strategy.SummaryDocument{}, fmt.Errorf("read observer summary: %w", err)
	}

	var doc strategy.SummaryDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		logger.Warn("observer summary malformed, treating as empty",
			zap.String("path", path), zap.Error(err))
		return strategy.SummaryDocument{}, nil
	}
	return doc, nil
}

// BuildOverrides assembles the complete override set for this run. Only
// buckets meeting the sample-size floor contribute an entry; entry ids
// follow the bucket's position in the summary. The result replaces, not
// merges with, any previously applied overrides.
func BuildOverrides(doc strategy.SummaryDocument, ttlHours int, now time.Time) strategy.OverridesDocument {
	nowMS := now.UTC().UnixMilli()
	expiresAt := nowMS + int64(max(1, ttlHours))*msPerHour

	entries := make([]strategy.OverrideEntry, 0, len(doc.Buckets))
	for i, bucket := range doc.Buckets {
		if bucket.Samples.Plans < MinPlansSample {
			continue
		}
		entries = append(entries, strategy.OverrideEntry{
			ID:        fmt.Sprintf("auto-%d", i+1),
			Model:     wildcardWhenBlank(bucket.Model),
			TaskClass: wildcardWhenBlank(bucket.TaskClass),
			Arm:       strategy.ChooseArm(bucket),
			ExpiresAt: expiresAt,
			UpdatedAt: nowMS,
			Source:    strategy.OverrideSource,
		})
	}

	return strategy.OverridesDocument{
		Version:     strategy.OverridesVersion,
		GeneratedAt: nowMS,
		Entries:     entries,
	}
}

func wildcardWhenBlank(label string) string {
	if trimmed := strings.TrimSpace(label); trimmed != "" {
		return trimmed
	}
	return "*"
}

// Encode renders an overrides document in its on-disk form.
func Encode(doc strategy.OverridesDocument) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode overrides: %w", err)
	}
	return append(data, '\n'), nil
}

// Apply writes the overrides document to path, wholly replacing any prior
// file in a single atomic step.
func Apply(doc strategy.OverridesDocument, path string) error {
	data, err := Encode(doc)
	if err != nil {
		return err
	}
	if err := fsx.WriteFileAtomic(path, data, 0644); err != nil {
		return fmt.Errorf("write overrides: %w", err)
	}
	return nil
}
