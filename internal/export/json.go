package export

import (
	"encoding/json"
	"io"
	"time"

	"github.com/hervehildenbrand/mtuprobe/internal/mtu"
)

// ExportedResult is the JSON representation of a discovery report.
type ExportedResult struct {
	Target      string          `json:"target"`
	Mode        string          `json:"mode,omitempty"`
	Count       int             `json:"count"`
	MaxSize     int             `json:"maxSize"`
	PayloadSize int             `json:"payloadSize"`
	MTU         int             `json:"mtu"`
	StartTime   time.Time       `json:"startTime,omitempty"`
	EndTime     time.Time       `json:"endTime,omitempty"`
	Probes      []ExportedProbe `json:"probes"`
}

// ExportedProbe is the JSON representation of a single probe.
type ExportedProbe struct {
	Size     int     `json:"size"`
	Accepted bool    `json:"accepted"`
	ExitCode int     `json:"exitCode,omitempty"`
	Duration float64 `json:"duration"` // in ms
}

// JSONExporter exports discovery reports to JSON format.
type JSONExporter struct {
	Pretty bool // Whether to pretty-print the JSON
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{
		Pretty: false,
	}
}

// Export writes the report as JSON to the writer.
func (e *JSONExporter) Export(w io.Writer, res *mtu.Result) error {
	encoder := json.NewEncoder(w)
	if e.Pretty {
		encoder.SetIndent("", "  ")
	}

	return encoder.Encode(e.convert(res))
}

// convert transforms a Result to an ExportedResult.
func (e *JSONExporter) convert(res *mtu.Result) *ExportedResult {
	exported := &ExportedResult{
		Target:      res.Target,
		Mode:        res.Mode,
		Count:       res.Count,
		MaxSize:     res.MaxSize,
		PayloadSize: res.PayloadSize,
		MTU:         res.MTU,
		StartTime:   res.StartTime,
		EndTime:     res.EndTime,
		Probes:      make([]ExportedProbe, 0, len(res.Probes)),
	}

	for _, p := range res.Probes {
		exported.Probes = append(exported.Probes, ExportedProbe{
			Size:     p.Size,
			Accepted: p.Accepted,
			ExitCode: p.ExitCode,
			Duration: durationMillis(p.Duration),
		})
	}

	return exported
}

func durationMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
