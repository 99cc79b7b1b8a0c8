package telemetry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gocarina/gocsv"
)

type yamlStub struct{ body string }

func (y yamlStub) WriteYAML(path string) error {
	return os.WriteFile(path, []byte(y.body), 0644)
}

func TestOutputManager_Disabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("NewOutputManager(\"\") = %v, %v", om, err)
	}
	// nil manager is a no-op
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Error(err)
	}
	if err := om.WriteIncident(Incident{}); err != nil {
		t.Error(err)
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
}

func TestOutputManager_WritesCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	for i := 1; i <= 3; i++ {
		if err := om.WriteTelemetry(WindowStats{WindowEndFrame: int64(i * 60), Spawned: i}); err != nil {
			t.Fatal(err)
		}
	}
	if err := om.WritePerf(PerfStats{FPS: 60}, 60); err != nil {
		t.Fatal(err)
	}
	if err := om.WriteIncident(Incident{Type: IncidentDrain, Frame: 180, Description: "fell, sharply"}); err != nil {
		t.Fatal(err)
	}
	if err := om.WriteConfig(yamlStub{body: "screen: {}\n"}); err != nil {
		t.Fatal(err)
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	var rows []WindowStats
	if err := readCSV(filepath.Join(dir, "telemetry.csv"), &rows); err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("telemetry rows = %d, want 3 (header written once)", len(rows))
	}
	if rows[2].WindowEndFrame != 180 || rows[2].Spawned != 3 {
		t.Errorf("last row = %+v", rows[2])
	}

	var incidents []Incident
	if err := readCSV(filepath.Join(dir, "incidents.csv"), &incidents); err != nil {
		t.Fatal(err)
	}
	if len(incidents) != 1 || incidents[0].Type != IncidentDrain || incidents[0].Description != "fell, sharply" {
		t.Errorf("incidents = %+v", incidents)
	}

	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config.yaml: %v", err)
	}
	if om.Path("x.spkl") != filepath.Join(dir, "x.spkl") {
		t.Errorf("Path = %q", om.Path("x.spkl"))
	}
}

func readCSV(path string, out any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gocsv.UnmarshalFile(f, out)
}
