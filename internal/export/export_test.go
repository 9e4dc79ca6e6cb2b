package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hervehildenbrand/mtuprobe/internal/mtu"
)

func TestNewExporter_TxtAlias(t *testing.T) {
	exp, err := NewExporter("txt")
	if err != nil {
		t.Fatalf("NewExporter(\"txt\") returned error: %v", err)
	}
	if exp == nil {
		t.Error("expected non-nil exporter for 'txt' format")
	}
}

func TestNewExporter_TextFormat(t *testing.T) {
	exp, err := NewExporter(FormatText)
	if err != nil {
		t.Fatalf("NewExporter(FormatText) returned error: %v", err)
	}
	if exp == nil {
		t.Error("expected non-nil exporter for 'text' format")
	}
}

func TestNewExporter_CaseInsensitive(t *testing.T) {
	if _, err := NewExporter("JSON"); err != nil {
		t.Errorf("NewExporter(\"JSON\") returned error: %v", err)
	}
}

func TestNewExporter_UnsupportedFormat(t *testing.T) {
	_, err := NewExporter("invalid")
	if err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		filename string
		want     Format
	}{
		{"report.json", FormatJSON},
		{"report.CSV", FormatCSV},
		{"output.txt", FormatText},
		{"output.text", FormatText},
		{"report", FormatJSON},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := DetectFormat(tt.filename); got != tt.want {
				t.Errorf("DetectFormat(%q) = %q, want %q", tt.filename, got, tt.want)
			}
		})
	}
}

func TestExportToFile_DetectsFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")

	got, err := ExportToFile(path, "", createTestResult())
	if err != nil {
		t.Fatalf("ExportToFile() error = %v", err)
	}
	if got != path {
		t.Errorf("ExportToFile() path = %q, want %q", got, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.HasPrefix(string(data), "step,target,size") {
		t.Errorf("expected CSV header, got %q", string(data))
	}
}

func TestExportToFile_UnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.out")

	if _, err := ExportToFile(path, "xml", createTestResult()); err == nil {
		t.Error("expected error for unsupported format")
	}
	if _, err := os.Stat(path); err == nil {
		t.Error("no file should be created for an unsupported format")
	}
}

func TestExportToFile_BadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "report.json")

	if _, err := ExportToFile(path, FormatJSON, createTestResult()); err == nil {
		t.Error("expected error for unwritable path")
	}
}

func TestReportFilename(t *testing.T) {
	tests := []struct {
		name   string
		target string
		format Format
		want   string
	}{
		{"json", "192.0.2.1", FormatJSON, "mtu-192.0.2.1-20240102-030405.json"},
		{"text uses txt", "192.0.2.1", FormatText, "mtu-192.0.2.1-20240102-030405.txt"},
		{"alias", "example.com", "TXT", "mtu-example.com-20240102-030405.txt"},
		{"unknown falls back", "192.0.2.1", "xml", "mtu-192.0.2.1-20240102-030405.json"},
		{"unsafe target", "host/with:colon", FormatCSV, "mtu-host_with_colon-20240102-030405.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := createTestResult()
			res.Target = tt.target
			if got := ReportFilename(res, tt.format); got != tt.want {
				t.Errorf("ReportFilename() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExportToFile_Directory(t *testing.T) {
	dir := t.TempDir()

	got, err := ExportToFile(dir, FormatCSV, createTestResult())
	if err != nil {
		t.Fatalf("ExportToFile() error = %v", err)
	}

	want := filepath.Join(dir, "mtu-192.0.2.1-20240102-030405.csv")
	if got != want {
		t.Errorf("ExportToFile() path = %q, want %q", got, want)
	}
	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.HasPrefix(string(data), "step,target,size") {
		t.Errorf("expected CSV header, got %q", string(data))
	}
}

func createTestResult() *mtu.Result {
	start := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return &mtu.Result{
		Target:      "192.0.2.1",
		Mode:        "gnu",
		Count:       4,
		MaxSize:     3000,
		PayloadSize: 1400,
		MTU:         1428,
		Probes: []mtu.ProbeRecord{
			{Size: 1500, Accepted: false, ExitCode: 1, Duration: 800 * time.Millisecond},
			{Size: 750, Accepted: true, Duration: 600 * time.Millisecond},
			{Size: 1125, Accepted: true, Duration: 610 * time.Millisecond},
		},
		StartTime: start,
		EndTime:   start.Add(2 * time.Second),
	}
}
