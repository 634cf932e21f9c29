package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/loykin/dbmigrate/internal/common"
)

// LocalStore keeps archives as plain files in one directory.
type LocalStore struct {
	dir string
}

// NewLocalStore validates that dir exists and returns a store rooted there.
// A missing directory is a configuration error, reported before any dump is
// attempted.
func NewLocalStore(dir string) (*LocalStore, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: backup directory %s does not exist", common.ErrConfig, dir)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: backup path %s is not a directory", common.ErrConfig, dir)
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) archivePath(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *LocalStore) Exists(_ context.Context, name string) (bool, error) {
	_, err := os.Stat(s.archivePath(name))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Put moves the archive into the store. Rename is attempted first; a copy
// fallback covers stores on a different filesystem than the temp directory.
func (s *LocalStore) Put(_ context.Context, name, path string) error {
	dest := s.archivePath(name)
	if err := os.Rename(path, dest); err == nil {
		return nil
	}
	in, err := os.Open(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to open archive %s: %w", path, err)
	}
	defer func() { _ = in.Close() }()
	out, err := os.Create(filepath.Clean(dest))
	if err != nil {
		return fmt.Errorf("failed to create archive %s: %w", dest, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to store archive %s: %w", name, err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(path)
}

func (s *LocalStore) Fetch(_ context.Context, name, destPath string) error {
	in, err := os.Open(s.archivePath(name))
	if err != nil {
		return fmt.Errorf("failed to open archive %s: %w", name, err)
	}
	defer func() { _ = in.Close() }()
	out, err := os.Create(filepath.Clean(destPath))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", destPath, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to fetch archive %s: %w", name, err)
	}
	return out.Close()
}

func (s *LocalStore) List(_ context.Context) ([]Archive, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list backup directory: %w", err)
	}
	var archives []Archive
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ArchiveExt) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, err
		}
		archives = append(archives, Archive{
			Name:      e.Name(),
			Size:      info.Size(),
			CreatedAt: info.ModTime(),
		})
	}
	sort.Slice(archives, func(i, j int) bool { return archives[i].Name < archives[j].Name })
	return archives, nil
}
