package tui

import (
	"fmt"
	"strings"
)

// SummaryLine is one failed item of a bulk run.
type SummaryLine struct {
	Item   string
	Reason string
}

// RenderSummary formats the end-of-run report of a bulk operation.
func RenderSummary(title string, succeeded int, failures []SummaryLine) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(SuccessStyle.Render(fmt.Sprintf("%s %d succeeded", SymbolCheck, succeeded)))
	b.WriteString("\n")
	if len(failures) == 0 {
		return BoxStyle.Render(b.String())
	}
	b.WriteString(ErrorStyle.Render(fmt.Sprintf("%s %d failed", SymbolCross, len(failures))))
	for _, f := range failures {
		b.WriteString("\n  ")
		b.WriteString(fmt.Sprintf("%s %s: %s", SymbolBullet, f.Item, MutedStyle.Render(f.Reason)))
	}
	return BoxStyle.Render(b.String())
}
