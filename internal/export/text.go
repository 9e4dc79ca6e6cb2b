package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hervehildenbrand/mtuprobe/internal/mtu"
)

// TextExporter exports discovery reports to human-readable text format.
type TextExporter struct{}

// NewTextExporter creates a new text exporter.
func NewTextExporter() *TextExporter {
	return &TextExporter{}
}

// Export writes the report as text to the writer.
func (e *TextExporter) Export(w io.Writer, res *mtu.Result) error {
	fmt.Fprintf(w, "MTU discovery to %s\n", res.Target)
	if res.Mode != "" {
		fmt.Fprintf(w, "Mode: %s\n", res.Mode)
	}
	fmt.Fprintf(w, "Count: %d, max size: %d\n", res.Count, res.MaxSize)
	fmt.Fprintln(w, strings.Repeat("=", 40))
	fmt.Fprintln(w)

	for i, p := range res.Probes {
		e.writeProbe(w, i+1, p)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 40))
	fmt.Fprintf(w, "Max packet size:       %6d\n", res.PayloadSize)
	fmt.Fprintf(w, "Expected ethernet MTU: %6d\n", res.MTU)
	switch {
	case res.IsReduced():
		fmt.Fprintf(w, "Path MTU is below the standard %d bytes\n", mtu.StandardMTU)
	case res.IsJumbo():
		fmt.Fprintln(w, "Path carries jumbo frames")
	}
	if !res.StartTime.IsZero() && !res.EndTime.IsZero() {
		fmt.Fprintf(w, "Duration: %v\n", res.Duration().Round(time.Millisecond))
	}

	return nil
}

func (e *TextExporter) writeProbe(w io.Writer, step int, p mtu.ProbeRecord) {
	verdict := "ok"
	if !p.Accepted {
		verdict = "too big"
		if p.ExitCode != 0 {
			verdict = fmt.Sprintf("too big (exit %d)", p.ExitCode)
		}
	}
	fmt.Fprintf(w, "%2d  %6d  %-18s %.2fms\n", step, p.Size, verdict, durationMillis(p.Duration))
}
