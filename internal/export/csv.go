package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/hervehildenbrand/mtuprobe/internal/mtu"
)

// CSVExporter exports the probe log of a report to CSV format, one row per
// tested size.
type CSVExporter struct{}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Export writes the report as CSV to the writer.
func (e *CSVExporter) Export(w io.Writer, res *mtu.Result) error {
	writer := csv.NewWriter(w)

	header := []string{
		"step", "target", "size", "accepted", "exit_code", "duration_ms",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, p := range res.Probes {
		if err := writer.Write(e.probeToRow(i+1, res.Target, p)); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// probeToRow converts a probe record to a CSV row.
func (e *CSVExporter) probeToRow(step int, target string, p mtu.ProbeRecord) []string {
	return []string{
		strconv.Itoa(step),
		target,
		strconv.Itoa(p.Size),
		strconv.FormatBool(p.Accepted),
		strconv.Itoa(p.ExitCode),
		fmt.Sprintf("%.2f", durationMillis(p.Duration)),
	}
}
