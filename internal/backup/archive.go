package backup

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Pack zips the contents of srcDir into zipPath. Entries are stored under
// their paths relative to srcDir so archives stay portable and restorable on
// any host.
func Pack(srcDir, zipPath string) error {
	out, err := os.Create(filepath.Clean(zipPath))
	if err != nil {
		return fmt.Errorf("failed to create archive %s: %w", zipPath, err)
	}
	zw := zip.NewWriter(out)

	walkErr := filepath.Walk(srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		w, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return fmt.Errorf("failed to add %s to archive: %w", rel, err)
		}
		f, err := os.Open(filepath.Clean(path))
		if err != nil {
			return err
		}
		_, copyErr := io.Copy(w, f)
		_ = f.Close()
		if copyErr != nil {
			return fmt.Errorf("failed to write %s into archive: %w", rel, copyErr)
		}
		return nil
	})
	if walkErr != nil {
		_ = zw.Close()
		_ = out.Close()
		return walkErr
	}
	if err := zw.Close(); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	return out.Close()
}

// Unpack extracts zipPath into destDir, reproducing the archived relative
// paths. Entries that would escape destDir are rejected.
func Unpack(zipPath, destDir string) error {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("failed to open archive %s: %w", zipPath, err)
	}
	defer func() { _ = zr.Close() }()

	for _, f := range zr.File {
		// Path traversal protection
		clean := filepath.Clean(filepath.FromSlash(f.Name))
		if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
			return fmt.Errorf("invalid path in archive: %s", f.Name)
		}
		destPath := filepath.Join(destDir, clean)

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(destPath, 0o750); err != nil {
				return fmt.Errorf("failed to create dir %s: %w", clean, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(destPath), 0o750); err != nil {
			return fmt.Errorf("failed to create parent dir for %s: %w", clean, err)
		}
		if err := extractFile(f, destPath); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, destPath string) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to open archive entry %s: %w", f.Name, err)
	}
	defer func() { _ = rc.Close() }()

	out, err := os.Create(filepath.Clean(destPath))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", destPath, err)
	}
	if _, err := io.Copy(out, rc); err != nil { // #nosec G110 -- archives come from this system's own backups
		_ = out.Close()
		return fmt.Errorf("failed to extract %s: %w", f.Name, err)
	}
	return out.Close()
}
