package backup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/loykin/dbmigrate/internal/common"
)

func TestNewLocalStore_MissingDirectory(t *testing.T) {
	_, err := NewLocalStore(filepath.Join(t.TempDir(), "nope"))
	if err == nil {
		t.Fatal("NewLocalStore() on missing directory succeeded, want error")
	}
	if !errors.Is(err, common.ErrConfig) {
		t.Errorf("NewLocalStore() error = %v, want ErrConfig", err)
	}
}

func TestLocalStore_PutExistsFetch(t *testing.T) {
	dir := t.TempDir()
	st, err := NewLocalStore(dir)
	if err != nil {
		t.Fatalf("NewLocalStore() error: %v", err)
	}
	ctx := context.Background()

	exists, err := st.Exists(ctx, "myapp__2023_06_01.zip")
	if err != nil || exists {
		t.Fatalf("Exists() before Put = %v, %v", exists, err)
	}

	srcPath := filepath.Join(t.TempDir(), "staged.zip")
	if err := os.WriteFile(srcPath, []byte("archive bytes"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := st.Put(ctx, "myapp__2023_06_01.zip", srcPath); err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	if _, err := os.Stat(srcPath); !os.IsNotExist(err) {
		t.Error("Put() left the staged file behind")
	}

	exists, err = st.Exists(ctx, "myapp__2023_06_01.zip")
	if err != nil || !exists {
		t.Fatalf("Exists() after Put = %v, %v", exists, err)
	}

	destPath := filepath.Join(t.TempDir(), "fetched.zip")
	if err := st.Fetch(ctx, "myapp__2023_06_01.zip", destPath); err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	b, err := os.ReadFile(destPath)
	if err != nil || string(b) != "archive bytes" {
		t.Errorf("fetched content = %q, %v", string(b), err)
	}
}

func TestLocalStore_ListSortedArchivesOnly(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b__2023_06_02.zip", "a__2023_06_01.zip", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	st, err := NewLocalStore(dir)
	if err != nil {
		t.Fatalf("NewLocalStore() error: %v", err)
	}

	archives, err := st.List(context.Background())
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(archives) != 2 {
		t.Fatalf("List() returned %d archives, want 2", len(archives))
	}
	if archives[0].Name != "a__2023_06_01.zip" || archives[1].Name != "b__2023_06_02.zip" {
		t.Errorf("List() order = [%s, %s]", archives[0].Name, archives[1].Name)
	}
	if archives[0].Size != 1 {
		t.Errorf("archive size = %d, want 1", archives[0].Size)
	}
}
