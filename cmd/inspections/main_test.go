package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/food-inspections/internal/core/domain"
)

const dump = "Permit # Establishment Name Address Inspection Date Inspection Type Food or Retail Score Violations\n" +
	"67372 #1 CHINA BUFFET 125 E. REYNOLDS ROAD, STE. 120 21-Feb-2025 REGULAR FOOD 93 15 39 41 48 56\n" +
	"12345 33 STAVES 10-Jan-2025 REGULAR RETAIL 100\n" +
	"\f" +
	"12345 33 STAVES 31-Feb-2025 FOLLOW-UP RETAIL 100\n"

func runCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeDump(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dump.txt")
	if err := os.WriteFile(path, []byte(dump), 0o644); err != nil {
		t.Fatalf("write dump: %v", err)
	}
	return path
}

func TestParsePrintsEstablishmentsAsJSON(t *testing.T) {
	stdout, stderr, err := runCommand(t, "parse", writeDump(t))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	var establishments []domain.Establishment
	if err := json.Unmarshal([]byte(stdout), &establishments); err != nil {
		t.Fatalf("stdout is not json: %v\n%s", err, stdout)
	}
	if len(establishments) != 2 {
		t.Fatalf("expected 2 establishments, got %d", len(establishments))
	}
	china := establishments[0]
	if china.Permit != "67372" || china.Name != "#1 CHINA BUFFET" || china.Address != "125 E. REYNOLDS ROAD, STE. 120" {
		t.Fatalf("unexpected establishment %+v", china)
	}
	if !strings.Contains(stdout, `"violations": [`) || !strings.Contains(stdout, `"date": "2025-02-21"`) {
		t.Fatalf("unexpected json layout:\n%s", stdout)
	}
	if !strings.Contains(stderr, "row_format_error") {
		t.Fatalf("expected format error warning on stderr, got %q", stderr)
	}
}

func TestParseYAMLWithDiagnostics(t *testing.T) {
	stdout, _, err := runCommand(t, "parse", "--diagnostics", "-o", "yaml", "--log-level", "error", writeDump(t))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	var result struct {
		Establishments []map[string]any `yaml:"establishments"`
		Diagnostics    []map[string]any `yaml:"diagnostics"`
		Stats          map[string]int   `yaml:"stats"`
	}
	if err := yaml.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("stdout is not yaml: %v\n%s", err, stdout)
	}
	if len(result.Diagnostics) != 1 || result.Diagnostics[0]["page"] != 2 {
		t.Fatalf("unexpected diagnostics %+v", result.Diagnostics)
	}
	if result.Stats["matched_rows"] != 3 || result.Stats["format_errors"] != 1 {
		t.Fatalf("unexpected stats %+v", result.Stats)
	}
	if len(result.Establishments) != 2 || result.Establishments[0]["permit"] != "67372" {
		t.Fatalf("unexpected establishments %+v", result.Establishments)
	}
}

func TestParseRejectsUnknownOutput(t *testing.T) {
	if _, _, err := runCommand(t, "parse", "-o", "xml", writeDump(t)); err == nil {
		t.Fatalf("expected unsupported output error")
	}
}

func TestManifestListsArtifactsNewestFirst(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	for i, name := range []string{"inspection_data-1-20-2025.json", "inspection_data-2-20-2025.json", "notes.txt"} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		mtime := base.Add(time.Duration(i) * time.Hour)
		if err := os.Chtimes(path, mtime, mtime); err != nil {
			t.Fatalf("chtimes %s: %v", name, err)
		}
	}

	stdout, _, err := runCommand(t, "manifest", "--artifact-dir", dir, "--write")
	if err != nil {
		t.Fatalf("manifest error: %v", err)
	}
	var entries []domain.ManifestEntry
	if err := json.Unmarshal([]byte(stdout), &entries); err != nil {
		t.Fatalf("stdout is not json: %v", err)
	}
	if len(entries) != 2 || entries[0].File != "inspection_data-2-20-2025.json" {
		t.Fatalf("unexpected manifest %+v", entries)
	}
	if entries[0].Modified != "2025-03-01T13:00:00Z" {
		t.Fatalf("unexpected modified stamp %q", entries[0].Modified)
	}
	if _, err := os.Stat(filepath.Join(dir, "manifest.json")); err != nil {
		t.Fatalf("manifest.json not written: %v", err)
	}
}
