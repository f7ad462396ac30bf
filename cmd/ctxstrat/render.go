package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"ctxstrat/internal/strategy"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	labelStyle   = lipgloss.NewStyle().Faint(true)

	armStyles = map[strategy.Arm]lipgloss.Style{
		strategy.ArmPassthrough: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		strategy.ArmHybrid:      lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		strategy.ArmManaged:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}
)

func renderArm(arm strategy.Arm) string {
	if style, ok := armStyles[arm]; ok {
		return style.Render(string(arm))
	}
	return string(arm)
}

// renderOverridePreview builds the human half of the tune preview; the
// raw JSON document follows it on stdout.
func renderOverridePreview(doc strategy.OverridesDocument) string {
	var b strings.Builder
	b.WriteString(headingStyle.Render(fmt.Sprintf("Proposed overrides (%d entries, preview only)", len(doc.Entries))))
	b.WriteString("\n")
	if len(doc.Entries) == 0 {
		b.WriteString(labelStyle.Render("No bucket met the sample-size floor; nothing to override."))
		b.WriteString("\n")
		return b.String()
	}
	for _, entry := range doc.Entries {
		fmt.Fprintf(&b, "  %s  %s | %s -> %s\n",
			labelStyle.Render(entry.ID), entry.Model, entry.TaskClass, renderArm(entry.Arm))
	}
	return b.String()
}
