package dbtool

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/loykin/dbmigrate/internal/env"
)

func TestFor_DispatchesOnDriver(t *testing.T) {
	if _, err := For(env.Environment{Driver: "postgresql"}); err != nil {
		t.Errorf("For(postgresql) error: %v", err)
	}
	if _, err := For(env.Environment{Driver: "sqlite"}); err != nil {
		t.Errorf("For(sqlite) error: %v", err)
	}
	if _, err := For(env.Environment{Driver: "oracle"}); err == nil {
		t.Error("For(oracle) succeeded, want error")
	}
}

func TestSqliteTool_DumpRestoreRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "myapp.sqlite")
	if err := os.WriteFile(dbPath, []byte("dataset D"), 0o600); err != nil {
		t.Fatal(err)
	}
	tool, err := For(env.Environment{Driver: "sqlite", Path: dbPath})
	if err != nil {
		t.Fatalf("For() error: %v", err)
	}
	ctx := context.Background()

	dumpDir := t.TempDir()
	if err := tool.Dump(ctx, dumpDir); err != nil {
		t.Fatalf("Dump() error: %v", err)
	}
	payload := filepath.Join(dumpDir, SqliteDumpFile)
	if b, err := os.ReadFile(payload); err != nil || string(b) != "dataset D" {
		t.Fatalf("dump payload = %q, %v", string(b), err)
	}

	// Mutate the environment, then restore the dump over it.
	if err := os.WriteFile(dbPath, []byte("dataset D0"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := tool.Restore(ctx, dumpDir); err != nil {
		t.Fatalf("Restore() error: %v", err)
	}
	if b, _ := os.ReadFile(dbPath); string(b) != "dataset D" {
		t.Errorf("restored content = %q, want original dataset", string(b))
	}
}

func TestSqliteTool_RestoreRequiresPayload(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "myapp.sqlite")
	if err := os.WriteFile(dbPath, []byte("dataset D0"), 0o600); err != nil {
		t.Fatal(err)
	}
	tool, err := For(env.Environment{Driver: "sqlite", Path: dbPath})
	if err != nil {
		t.Fatalf("For() error: %v", err)
	}

	if err := tool.Restore(context.Background(), t.TempDir()); err == nil {
		t.Fatal("Restore() without payload succeeded, want error")
	}
	// Target untouched when the payload is missing.
	if b, _ := os.ReadFile(dbPath); string(b) != "dataset D0" {
		t.Errorf("failed restore modified the target: %q", string(b))
	}
}

func TestSqliteTool_Drop(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "myapp.sqlite")
	if err := os.WriteFile(dbPath, []byte("dataset D"), 0o600); err != nil {
		t.Fatal(err)
	}
	tool, err := For(env.Environment{Driver: "sqlite", Path: dbPath})
	if err != nil {
		t.Fatalf("For() error: %v", err)
	}

	if err := tool.Drop(context.Background()); err != nil {
		t.Fatalf("Drop() error: %v", err)
	}
	if _, err := os.Stat(dbPath); !os.IsNotExist(err) {
		t.Error("Drop() left the database file behind")
	}
	// Dropping an already-empty environment is not an error.
	if err := tool.Drop(context.Background()); err != nil {
		t.Errorf("second Drop() error: %v", err)
	}
}
