// Package display renders MTU discovery progress and results.
package display

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/hervehildenbrand/mtuprobe/internal/mtu"
)

// Label widths keep the summary values aligned under the progress value.
const (
	progressLabel = "Testing packet size:"
	maxSizeLabel  = "Max packet size:"
	mtuLabel      = "Expected ethernet MTU:"
	labelWidth    = len(mtuLabel)
)

var (
	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("240"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	standardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82")).
			Bold(true)

	reducedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208")).
			Bold(true)
)

// SimpleRenderer writes the one-line progress indicator and the final
// summary in the classic terminal layout.
type SimpleRenderer struct {
	w      io.Writer
	Styled bool
}

// NewSimpleRenderer creates a renderer writing to w. Styling is enabled only
// when w is a terminal and noColor is false.
func NewSimpleRenderer(w io.Writer, noColor bool) *SimpleRenderer {
	return &SimpleRenderer{
		w:      w,
		Styled: !noColor && IsTerminal(w),
	}
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Progress rewrites the progress line with the size under test.
func (r *SimpleRenderer) Progress(size int) {
	fmt.Fprintf(r.w, "\r%s %6d", progressLabel, size)
}

// RenderResult writes the largest payload and the link MTU, overwriting the
// progress line.
func (r *SimpleRenderer) RenderResult(res *mtu.Result) {
	if !r.Styled {
		fmt.Fprintf(r.w, "\r%-*s %6d\n", labelWidth, maxSizeLabel, res.PayloadSize)
		fmt.Fprintf(r.w, "%-*s %6d\n", labelWidth, mtuLabel, res.MTU)
		return
	}

	mtuStyle := standardStyle
	if res.IsReduced() {
		mtuStyle = reducedStyle
	}
	fmt.Fprintf(r.w, "\r%s %s\n",
		labelStyle.Render(fmt.Sprintf("%-*s", labelWidth, maxSizeLabel)),
		valueStyle.Render(fmt.Sprintf("%6d", res.PayloadSize)))
	fmt.Fprintf(r.w, "%s %s\n",
		labelStyle.Render(fmt.Sprintf("%-*s", labelWidth, mtuLabel)),
		mtuStyle.Render(fmt.Sprintf("%6d", res.MTU)))
}

// RenderQuiet writes the bare payload size on a single line.
func RenderQuiet(w io.Writer, res *mtu.Result) {
	fmt.Fprintf(w, "%d\n", res.PayloadSize)
}
