package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestGenerate_NameFormat(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)

	p, err := Generate(GenerateOptions{Label: "Add Index", Dir: dir, Now: now})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if filepath.Base(p) != "20230601T1200_add_index.sql" {
		t.Errorf("generated file = %s, want 20230601T1200_add_index.sql", filepath.Base(p))
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read generated file: %v", err)
	}
	if !strings.Contains(string(b), "add_index") {
		t.Errorf("generated content missing label: %q", string(b))
	}
}

func TestGenerate_MatchesDiscovery(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	if _, err := Generate(GenerateOptions{Label: "add index", Dir: dir, Now: now}); err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	units, err := Discover(dir, nil)
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}
	if len(units) != 1 {
		t.Fatalf("generated file was not discovered: %+v", units)
	}
	if units[0].OrderKey != "20230601T1200" {
		t.Errorf("OrderKey = %s, want 20230601T1200", units[0].OrderKey)
	}
}

func TestGenerate_RefusesExistingFile(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	if _, err := Generate(GenerateOptions{Label: "add index", Dir: dir, Now: now}); err != nil {
		t.Fatalf("first Generate() error: %v", err)
	}
	if _, err := Generate(GenerateOptions{Label: "add index", Dir: dir, Now: now}); err == nil {
		t.Error("second Generate() with same name succeeded, want error")
	}
}

func TestGenerate_RequiresLabel(t *testing.T) {
	if _, err := Generate(GenerateOptions{Label: "!!!", Dir: t.TempDir()}); err == nil {
		t.Error("Generate() with unusable label succeeded, want error")
	}
}

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Add Index", "add_index"},
		{"  drop--old  column ", "drop_old_column"},
		{"seed_data", "seed_data"},
		{"___", ""},
	}
	for _, tt := range tests {
		if got := sanitizeLabel(tt.in); got != tt.want {
			t.Errorf("sanitizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
