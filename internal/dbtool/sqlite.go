package dbtool

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/loykin/dbmigrate/internal/env"
)

// sqliteTool treats the database file itself as the dump payload. It exists
// so local and test environments get the same pipeline semantics without the
// PostgreSQL client binaries.
type sqliteTool struct {
	env env.Environment
}

func (t *sqliteTool) Dump(_ context.Context, dir string) error {
	return copyFile(t.env.Path, filepath.Join(dir, SqliteDumpFile))
}

func (t *sqliteTool) Restore(ctx context.Context, dir string) error {
	src := filepath.Join(dir, SqliteDumpFile)
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("dump payload missing at %s: %w", src, err)
	}
	if err := t.Drop(ctx); err != nil {
		return err
	}
	return copyFile(src, t.env.Path)
}

func (t *sqliteTool) Drop(_ context.Context) error {
	if err := os.Remove(t.env.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to drop %s: %w", t.env.Path, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(filepath.Clean(src))
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(dst), err)
	}
	out, err := os.Create(filepath.Clean(dst))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Close()
}
