package backup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/loykin/dbmigrate/internal/common"
	"github.com/loykin/dbmigrate/internal/env"
)

func sqliteEnv(t *testing.T, name, content string) env.Environment {
	t.Helper()
	path := filepath.Join(t.TempDir(), name+".sqlite")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return env.Environment{Driver: "sqlite", Path: path}
}

func testPipeline(t *testing.T) (*Pipeline, *LocalStore) {
	t.Helper()
	st, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore() error: %v", err)
	}
	now := func() time.Time { return time.Date(2023, 6, 1, 10, 0, 0, 0, time.UTC) }
	return &Pipeline{Store: st, Now: now}, st
}

func approve() Confirmer {
	return ConfirmerFunc(func(string) (bool, error) { return true, nil })
}

func decline() Confirmer {
	return ConfirmerFunc(func(string) (bool, error) { return false, nil })
}

func TestPipeline_BackupNamesNeverCollide(t *testing.T) {
	p, st := testPipeline(t)
	e := sqliteEnv(t, "myapp", "dataset D")
	ctx := context.Background()

	first, err := p.Backup(ctx, e)
	if err != nil {
		t.Fatalf("first Backup() error: %v", err)
	}
	if first != "myapp__2023_06_01.zip" {
		t.Errorf("first archive = %q", first)
	}

	second, err := p.Backup(ctx, e)
	if err != nil {
		t.Fatalf("second Backup() error: %v", err)
	}
	if second != "myapp__2023_06_01_2.zip" {
		t.Errorf("second archive = %q, want counter suffix", second)
	}

	archives, err := st.List(ctx)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(archives) != 2 {
		t.Errorf("store holds %d archives, want 2", len(archives))
	}
}

func TestPipeline_RestoreRoundTrip(t *testing.T) {
	p, _ := testPipeline(t)
	src := sqliteEnv(t, "myapp", "dataset D")
	target := sqliteEnv(t, "staging", "dataset D0")
	ctx := context.Background()

	name, err := p.Backup(ctx, src)
	if err != nil {
		t.Fatalf("Backup() error: %v", err)
	}

	if err := p.Restore(ctx, name, target, approve()); err != nil {
		t.Fatalf("Restore() error: %v", err)
	}
	b, err := os.ReadFile(target.Path)
	if err != nil {
		t.Fatalf("read restored target: %v", err)
	}
	if string(b) != "dataset D" {
		t.Errorf("target content = %q, want source dataset", string(b))
	}
}

func TestPipeline_RestoreDeclinedLeavesTargetUntouched(t *testing.T) {
	p, _ := testPipeline(t)
	src := sqliteEnv(t, "myapp", "dataset D")
	target := sqliteEnv(t, "staging", "dataset D0")
	ctx := context.Background()

	name, err := p.Backup(ctx, src)
	if err != nil {
		t.Fatalf("Backup() error: %v", err)
	}

	err = p.Restore(ctx, name, target, decline())
	if !errors.Is(err, common.ErrConfirmationDeclined) {
		t.Fatalf("Restore() error = %v, want ErrConfirmationDeclined", err)
	}
	b, _ := os.ReadFile(target.Path)
	if string(b) != "dataset D0" {
		t.Errorf("declined restore modified the target: %q", string(b))
	}
}

func TestPipeline_RestoreMissingArchive(t *testing.T) {
	p, _ := testPipeline(t)
	target := sqliteEnv(t, "staging", "dataset D0")

	prompted := false
	confirm := ConfirmerFunc(func(string) (bool, error) {
		prompted = true
		return true, nil
	})
	err := p.Restore(context.Background(), "myapp__1999_01_01.zip", target, confirm)
	if !errors.Is(err, common.ErrValidation) {
		t.Fatalf("Restore() error = %v, want ErrValidation", err)
	}
	if prompted {
		t.Error("operator was prompted for an archive that does not exist")
	}
	b, _ := os.ReadFile(target.Path)
	if string(b) != "dataset D0" {
		t.Errorf("failed restore modified the target: %q", string(b))
	}
}

func TestCopy_ReplacesDestinationDataset(t *testing.T) {
	src := sqliteEnv(t, "myapp", "dataset D")
	dst := sqliteEnv(t, "staging", "dataset D0")

	if err := Copy(context.Background(), src, dst, approve(), nil); err != nil {
		t.Fatalf("Copy() error: %v", err)
	}
	b, err := os.ReadFile(dst.Path)
	if err != nil {
		t.Fatalf("read destination: %v", err)
	}
	if string(b) != "dataset D" {
		t.Errorf("destination content = %q, want source dataset", string(b))
	}
	// Source is untouched.
	b, _ = os.ReadFile(src.Path)
	if string(b) != "dataset D" {
		t.Errorf("source content changed: %q", string(b))
	}
}

func TestCopy_Declined(t *testing.T) {
	src := sqliteEnv(t, "myapp", "dataset D")
	dst := sqliteEnv(t, "staging", "dataset D0")

	err := Copy(context.Background(), src, dst, decline(), nil)
	if !errors.Is(err, common.ErrConfirmationDeclined) {
		t.Fatalf("Copy() error = %v, want ErrConfirmationDeclined", err)
	}
	b, _ := os.ReadFile(dst.Path)
	if string(b) != "dataset D0" {
		t.Errorf("declined copy modified the destination: %q", string(b))
	}
}
