// Package export writes MTU discovery reports to files.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hervehildenbrand/mtuprobe/internal/mtu"
)

// Exporter writes one discovery report.
type Exporter interface {
	Export(w io.Writer, res *mtu.Result) error
}

// Format names a report encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatText Format = "text"
)

// DefaultFormat is used when neither --format nor the file extension
// selects one.
const DefaultFormat = FormatJSON

type formatSpec struct {
	format     Format
	extensions []string // first entry is used for generated names
	aliases    []string
	newFunc    func() Exporter
}

var formats = []formatSpec{
	{FormatJSON, []string{".json"}, nil, func() Exporter { return NewJSONExporter() }},
	{FormatCSV, []string{".csv"}, nil, func() Exporter { return NewCSVExporter() }},
	{FormatText, []string{".txt", ".text"}, []string{"txt"}, func() Exporter { return NewTextExporter() }},
}

func lookup(format Format) (formatSpec, bool) {
	name := strings.ToLower(string(format))
	for _, spec := range formats {
		if name == string(spec.format) {
			return spec, true
		}
		for _, alias := range spec.aliases {
			if name == alias {
				return spec, true
			}
		}
	}
	return formatSpec{}, false
}

// DetectFormat picks the format matching filename's extension, or
// DefaultFormat.
func DetectFormat(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, spec := range formats {
		for _, e := range spec.extensions {
			if ext == e {
				return spec.format
			}
		}
	}
	return DefaultFormat
}

// NewExporter returns the exporter for format, matched case-insensitively.
func NewExporter(format Format) (Exporter, error) {
	spec, ok := lookup(format)
	if !ok {
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
	return spec.newFunc(), nil
}

// ReportFilename names a report for res, e.g.
// mtu-192.0.2.1-20240102-030405.json. Characters unsafe in file names are
// replaced in the target.
func ReportFilename(res *mtu.Result, format Format) string {
	spec, ok := lookup(format)
	if !ok {
		spec, _ = lookup(DefaultFormat)
	}
	target := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			return r
		}
		return '_'
	}, res.Target)
	return fmt.Sprintf("mtu-%s-%s%s", target, res.StartTime.Format("20060102-150405"), spec.extensions[0])
}

// ExportToFile writes res to path and returns the file written. An empty
// format is detected from the extension. When path is a directory the
// report is written inside it under ReportFilename.
func ExportToFile(path string, format Format, res *mtu.Result) (string, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		if format == "" {
			format = DefaultFormat
		}
		path = filepath.Join(path, ReportFilename(res, format))
	}
	if format == "" {
		format = DetectFormat(path)
	}

	exporter, err := NewExporter(format)
	if err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if err := exporter.Export(f, res); err != nil {
		return "", fmt.Errorf("failed to export: %w", err)
	}
	return path, f.Close()
}
