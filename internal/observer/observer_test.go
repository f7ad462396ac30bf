package observer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ctxstrat/internal/strategy"
)

// fixedNow keeps report timestamps and window math deterministic.
var fixedNow = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

func newTestObserver(eventsDir string, days int) *Observer {
	o := New(eventsDir, days, nil)
	o.Now = func() time.Time { return fixedNow }
	return o
}

func writeSession(t *testing.T, dir, name string, lines []string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	content := strings.Join(lines, "\n") + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func eventLine(ts int64, typ string, payload string) string {
	if payload == "" {
		return fmt.Sprintf(`{"timestamp": %d, "type": %q}`, ts, typ)
	}
	return fmt.Sprintf(`{"timestamp": %d, "type": %q, "payload": %s}`, ts, typ, payload)
}

// The end-to-end scenario: 25 injections at 100 tokens, 2 real drops,
// 20 passing verifications. Expected plans=27, droppedRate~=0.074,
// qualityProxy~=0.926, which clears every passthrough threshold.
func TestBuildReport_EndToEnd(t *testing.T) {
	eventsDir := filepath.Join(t.TempDir(), "events")
	ts := fixedNow.UnixMilli() - 1000

	lines := []string{
		eventLine(ts, "cost_update", `{"model": "claude-sonnet"}`),
		eventLine(ts, "skill_activated", `{"skillName": "implement"}`),
	}
	for i := 0; i < 25; i++ {
		lines = append(lines, eventLine(ts, "context_injected", `{"sourceTokens": 100}`))
	}
	for i := 0; i < 2; i++ {
		lines = append(lines, eventLine(ts, "context_injection_dropped", `{"reason": "other"}`))
	}
	for i := 0; i < 20; i++ {
		lines = append(lines, eventLine(ts, "verification_outcome_recorded", `{"outcome": "pass"}`))
	}
	writeSession(t, eventsDir, "session-1.jsonl", lines)

	result, err := newTestObserver(eventsDir, 7).BuildReport()
	require.NoError(t, err)
	require.Len(t, result.Summary.Buckets, 1)

	b := result.Summary.Buckets[0]
	assert.Equal(t, "claude-sonnet", b.Model)
	assert.Equal(t, "implement", b.TaskClass)
	assert.Equal(t, 27, b.Samples.Plans)
	assert.Equal(t, 20, b.Samples.Verification)
	assert.Equal(t, 0.0, b.FloorUnmetRate)
	assert.InDelta(t, 0.074, b.InjectionDroppedRate, 0.001)
	assert.Equal(t, 100.0, b.AvgInjectionTokens)
	assert.Equal(t, 1.0, b.VerificationPassRate)
	assert.InDelta(t, 0.926, b.QualityProxy, 0.001)

	assert.Equal(t, strategy.ArmPassthrough, strategy.ChooseArm(b))

	assert.Contains(t, result.Markdown, "# Context Strategy Report (2026-08-30)")
	assert.Contains(t, result.Markdown, "## Model: claude-sonnet | Task: implement")
	assert.Contains(t, result.Markdown, "| injection_dropped_rate | 0.0741 |")
	assert.Contains(t, result.Markdown, "| avg_injection_tokens | 100.0 |")
	assert.Contains(t, result.Markdown, "| quality_proxy | 0.9259 |")
}

func TestBuildReport_MissingEventsDir(t *testing.T) {
	o := newTestObserver(filepath.Join(t.TempDir(), "absent"), 7)
	result, err := o.BuildReport()
	require.NoError(t, err)
	assert.Equal(t, "# Context Strategy Report\n\nNo event files found.\n", result.Markdown)
	assert.Empty(t, result.Summary.Buckets)
	assert.Equal(t, 0, result.FilesScanned)
}

func TestBuildReport_NoSignals(t *testing.T) {
	eventsDir := filepath.Join(t.TempDir(), "events")
	// Only a duplicate-content drop: no bucket may be created at all.
	writeSession(t, eventsDir, "s.jsonl", []string{
		eventLine(fixedNow.UnixMilli(), "context_injection_dropped", `{"reason": "duplicate_content"}`),
	})

	result, err := newTestObserver(eventsDir, 7).BuildReport()
	require.NoError(t, err)
	assert.Empty(t, result.Summary.Buckets)
	assert.Contains(t, result.Markdown, "No context strategy signals in the lookback window.")
	assert.Equal(t, 1, result.SessionsCounted)
}

func TestBuildReport_WindowFilterSparesAttribution(t *testing.T) {
	eventsDir := filepath.Join(t.TempDir(), "events")
	inWindow := fixedNow.UnixMilli() - 1000
	ancient := fixedNow.UnixMilli() - 365*msPerDay

	// The cost_update is far outside the window but must still label the
	// session; the injection outside the window must not count.
	writeSession(t, eventsDir, "s.jsonl", []string{
		eventLine(ancient, "cost_update", `{"model": "old-but-true"}`),
		eventLine(ancient, "context_injected", `{"sourceTokens": 9999}`),
		eventLine(inWindow, "context_injected", `{"sourceTokens": 10}`),
	})

	result, err := newTestObserver(eventsDir, 7).BuildReport()
	require.NoError(t, err)
	require.Len(t, result.Summary.Buckets, 1)

	b := result.Summary.Buckets[0]
	assert.Equal(t, "old-but-true", b.Model)
	assert.Equal(t, strategy.NoneTaskClass, b.TaskClass)
	assert.Equal(t, 1, b.Samples.Plans)
	assert.Equal(t, 10.0, b.AvgInjectionTokens)
}

func TestBuildReport_BucketsSortedByKey(t *testing.T) {
	eventsDir := filepath.Join(t.TempDir(), "events")
	ts := fixedNow.UnixMilli()

	writeSession(t, eventsDir, "b.jsonl", []string{
		eventLine(ts, "cost_update", `{"model": "zeta"}`),
		eventLine(ts, "context_injected", `{}`),
	})
	writeSession(t, eventsDir, "a.jsonl", []string{
		eventLine(ts, "cost_update", `{"model": "alpha"}`),
		eventLine(ts, "context_injected", `{}`),
	})

	result, err := newTestObserver(eventsDir, 7).BuildReport()
	require.NoError(t, err)
	require.Len(t, result.Summary.Buckets, 2)
	assert.Equal(t, "alpha", result.Summary.Buckets[0].Model)
	assert.Equal(t, "zeta", result.Summary.Buckets[1].Model)
}

// Two runs over unchanged input within the same window produce identical
// documents.
func TestBuildReport_Idempotent(t *testing.T) {
	eventsDir := filepath.Join(t.TempDir(), "events")
	ts := fixedNow.UnixMilli() - 5000
	writeSession(t, eventsDir, "s.jsonl", []string{
		eventLine(ts, "cost_update", `{"model": "m"}`),
		eventLine(ts, "context_injected", `{"sourceTokens": 100}`),
		eventLine(ts, "verification_outcome_recorded", `{"outcome": "pass"}`),
	})

	first, err := newTestObserver(eventsDir, 7).BuildReport()
	require.NoError(t, err)
	second, err := newTestObserver(eventsDir, 7).BuildReport()
	require.NoError(t, err)

	if diff := cmp.Diff(first.Summary, second.Summary); diff != "" {
		t.Fatalf("summaries differ between runs (-first +second):\n%s", diff)
	}
	assert.Equal(t, first.Markdown, second.Markdown)
}

func TestWrite_EmitsBothDocuments(t *testing.T) {
	eventsDir := filepath.Join(t.TempDir(), "events")
	ts := fixedNow.UnixMilli()
	writeSession(t, eventsDir, "s.jsonl", []string{
		eventLine(ts, "cost_update", `{"model": "m"}`),
		eventLine(ts, "context_injected", `{"sourceTokens": 50}`),
	})

	result, err := newTestObserver(eventsDir, 7).BuildReport()
	require.NoError(t, err)

	reportPath := filepath.Join(t.TempDir(), "reports", "context-strategy-20260830.md")
	require.NoError(t, Write(result, reportPath))

	md, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Equal(t, result.Markdown, string(md))

	raw, err := os.ReadFile(SummaryPath(reportPath))
	require.NoError(t, err)
	var doc strategy.SummaryDocument
	require.NoError(t, json.Unmarshal(raw, &doc))
	if diff := cmp.Diff(result.Summary, doc); diff != "" {
		t.Fatalf("summary round-trip mismatch (-built +read):\n%s", diff)
	}
}

func TestSummaryPath(t *testing.T) {
	assert.Equal(t, "/x/report.json", SummaryPath("/x/report.md"))
	assert.Equal(t, "/x/report.json", SummaryPath("/x/report"))
}
