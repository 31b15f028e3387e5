// Package tui holds terminal detection and the lipgloss styles used for
// progress and summaries.
package tui

import (
	"os"

	"golang.org/x/term"
)

// Mode represents the interaction mode for emisctl.
type Mode int

const (
	// ModeNonInteractive is used for CI pipelines, scripts and piped input.
	ModeNonInteractive Mode = iota
	// ModeInteractive is used when a human is at the terminal.
	ModeInteractive
)

// DetectMode determines whether emisctl should prompt and draw progress bars.
//
// Returns ModeNonInteractive if:
//   - EMIS_NON_INTERACTIVE=1 is set
//   - CI is set
//   - NO_COLOR is set
//   - stdin or stderr is not a terminal
func DetectMode() Mode {
	if os.Getenv("EMIS_NON_INTERACTIVE") == "1" {
		return ModeNonInteractive
	}
	if os.Getenv("CI") != "" {
		return ModeNonInteractive
	}
	if os.Getenv("NO_COLOR") != "" {
		return ModeNonInteractive
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return ModeNonInteractive
	}
	// Progress and prompts are drawn on stderr.
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return ModeNonInteractive
	}
	return ModeInteractive
}

// IsInteractive reports whether DetectMode returns ModeInteractive.
func IsInteractive() bool {
	return DetectMode() == ModeInteractive
}
