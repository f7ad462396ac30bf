package observer

import (
	"fmt"
	"strings"

	"ctxstrat/internal/strategy"
)

// Markdown fragments shared with the tests.
const (
	reportTitle      = "# Context Strategy Report"
	noEventFilesLine = "No event files found."
	noSignalsLine    = "No context strategy signals in the lookback window."
)

// renderMissingDir is the report body when the events directory does not
// exist at all.
func renderMissingDir() string {
	return reportTitle + "\n\n" + noEventFilesLine + "\n"
}

// renderMarkdown renders the human-readable report: one metric table per
// bucket, buckets in key order, rates to four decimal places and the
// token average to one.
func renderMarkdown(doc strategy.SummaryDocument) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\n\n", reportTitle, doc.GeneratedAt)

	if len(doc.Buckets) == 0 {
		b.WriteString(noSignalsLine + "\n")
		return b.String()
	}

	for _, bucket := range doc.Buckets {
		fmt.Fprintf(&b, "## Model: %s | Task: %s\n\n", bucket.Model, bucket.TaskClass)
		b.WriteString("| Metric | Value |\n")
		b.WriteString("|---|---:|\n")
		fmt.Fprintf(&b, "| floor_unmet_rate | %.4f |\n", bucket.FloorUnmetRate)
		fmt.Fprintf(&b, "| injection_dropped_rate | %.4f |\n", bucket.InjectionDroppedRate)
		fmt.Fprintf(&b, "| avg_injection_tokens | %.1f |\n", bucket.AvgInjectionTokens)
		fmt.Fprintf(&b, "| zone_adaptation_move_ratio | %.4f |\n", bucket.ZoneAdaptationMoveRatio)
		fmt.Fprintf(&b, "| verification_pass_rate | %.4f |\n", bucket.VerificationPassRate)
		fmt.Fprintf(&b, "| quality_proxy | %.4f |\n", bucket.QualityProxy)
		b.WriteString("\n")
	}
	return b.String()
}
