package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/sparkles/config"
	"github.com/pthm-cable/sparkles/statefile"
)

func TestPresetBuildDump(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "firework.yaml")
	spklPath := filepath.Join(dir, "firework.spkl")
	var out bytes.Buffer

	if err := run([]string{"preset", "-out", yamlPath, "firework"}, &out); err != nil {
		t.Fatalf("preset: %v", err)
	}
	if err := run([]string{"build", "-out", spklPath, yamlPath}, &out); err != nil {
		t.Fatalf("build: %v", err)
	}
	if !strings.Contains(out.String(), "wrote "+spklPath) {
		t.Errorf("build output = %q", out.String())
	}

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	st, err := statefile.Load(spklPath, cfg.Derived.Limits)
	if err != nil {
		t.Fatalf("statefile.Load: %v", err)
	}
	if st.SpaceWidth != 1.6 {
		t.Errorf("SpaceWidth = %v, want 1.6", st.SpaceWidth)
	}

	out.Reset()
	if err := run([]string{"dump", spklPath}, &out); err != nil {
		t.Fatalf("dump: %v", err)
	}
	want, err := os.ReadFile(yamlPath)
	if err != nil {
		t.Fatal(err)
	}
	if out.String() != string(want) {
		t.Errorf("dump differs from preset yaml:\n%s\nwant:\n%s", out.String(), want)
	}
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("emitters: [\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		args      []string
		wantUsage bool
	}{
		{"no command", nil, true},
		{"unknown command", []string{"frobnicate", "x"}, true},
		{"missing argument", []string{"dump"}, true},
		{"build without out", []string{"build", bad}, true},
		{"bad yaml", []string{"build", "-out", filepath.Join(dir, "x.spkl"), bad}, false},
		{"missing file", []string{"dump", filepath.Join(dir, "none.spkl")}, false},
		{"unknown preset", []string{"preset", "nope"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(tt.args, &bytes.Buffer{})
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.Is(err, errUsage); got != tt.wantUsage {
				t.Errorf("usage error = %v, want %v (%v)", got, tt.wantUsage, err)
			}
		})
	}
}
