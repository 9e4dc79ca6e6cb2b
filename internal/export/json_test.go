package export

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestJSONExporter_Export_ProducesValidJSON(t *testing.T) {
	exporter := NewJSONExporter()

	var buf bytes.Buffer
	if err := exporter.Export(&buf, createTestResult()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
}

func TestJSONExporter_Export_IncludesSummary(t *testing.T) {
	exporter := NewJSONExporter()

	var buf bytes.Buffer
	_ = exporter.Export(&buf, createTestResult())

	var result ExportedResult
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if result.Target != "192.0.2.1" {
		t.Errorf("expected target '192.0.2.1', got %q", result.Target)
	}
	if result.PayloadSize != 1400 {
		t.Errorf("expected payload 1400, got %d", result.PayloadSize)
	}
	if result.MTU != 1428 {
		t.Errorf("expected MTU 1428, got %d", result.MTU)
	}
}

func TestJSONExporter_Export_IncludesProbes(t *testing.T) {
	exporter := NewJSONExporter()

	var buf bytes.Buffer
	_ = exporter.Export(&buf, createTestResult())

	var result ExportedResult
	json.Unmarshal(buf.Bytes(), &result)

	if len(result.Probes) != 3 {
		t.Fatalf("expected 3 probes, got %d", len(result.Probes))
	}
	if result.Probes[0].Size != 1500 || result.Probes[0].Accepted {
		t.Errorf("unexpected first probe %+v", result.Probes[0])
	}
	if result.Probes[0].ExitCode != 1 {
		t.Errorf("expected exit code 1, got %d", result.Probes[0].ExitCode)
	}
	if result.Probes[0].Duration != 800.0 {
		t.Errorf("expected duration 800.0, got %v", result.Probes[0].Duration)
	}
}

func TestJSONExporter_Export_EmptyProbesIsArray(t *testing.T) {
	res := createTestResult()
	res.Probes = nil

	var buf bytes.Buffer
	_ = NewJSONExporter().Export(&buf, res)

	if !bytes.Contains(buf.Bytes(), []byte(`"probes":[]`)) {
		t.Errorf("expected empty probes array, got %s", buf.String())
	}
}

func TestJSONExporter_Export_PrettyPrints(t *testing.T) {
	exporter := NewJSONExporter()
	exporter.Pretty = true

	var buf bytes.Buffer
	_ = exporter.Export(&buf, createTestResult())

	if !bytes.Contains(buf.Bytes(), []byte("\n  ")) {
		t.Error("expected pretty-printed JSON to be indented")
	}
}
