package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/progress"
)

// Progress draws a single-line progress bar for sequential bulk work.
// When not interactive it prints one plain line per step instead.
type Progress struct {
	out         io.Writer
	bar         progress.Model
	label       string
	interactive bool
}

// NewProgress returns a Progress writing to out.
func NewProgress(out io.Writer, label string, interactive bool) *Progress {
	return &Progress{
		out:         out,
		bar:         progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		label:       label,
		interactive: interactive,
	}
}

// Step reports done of total items, item being the last one finished.
func (p *Progress) Step(done, total int, item string) {
	if total <= 0 {
		return
	}
	if !p.interactive {
		fmt.Fprintf(p.out, "%s %d/%d %s\n", p.label, done, total, item)
		return
	}
	fmt.Fprintf(p.out, "\r%s %s %s",
		LabelStyle.Render(p.label), p.bar.ViewAs(float64(done)/float64(total)), MutedStyle.Render(fmt.Sprintf("%d/%d", done, total)))
	if done >= total {
		fmt.Fprintln(p.out)
	}
}
