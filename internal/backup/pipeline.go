package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/loykin/dbmigrate/internal/common"
	"github.com/loykin/dbmigrate/internal/dbtool"
	"github.com/loykin/dbmigrate/internal/env"
)

// Confirmer gates irrevocable actions. The CLI prompts on stdin; tests
// inject a fake. Pipelines never touch a target destructively without an
// affirmative answer.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// ConfirmerFunc adapts a function to the Confirmer interface.
type ConfirmerFunc func(prompt string) (bool, error)

func (f ConfirmerFunc) Confirm(prompt string) (bool, error) { return f(prompt) }

// Pipeline runs backup, restore and copy flows for one configured store.
type Pipeline struct {
	Store  Store
	Logger *common.Logger
	// Now overrides the archive-name date (tests); nil means time.Now.
	Now func() time.Time
}

func (p *Pipeline) logger() *common.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return common.GetLogger().WithComponent("backup")
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now().UTC()
}

// Backup dumps the environment into a scoped temp directory, packages it into
// a uniquely named archive, and places it in the store. The temp directory is
// removed on every exit path. Returns the stored archive name.
func (p *Pipeline) Backup(ctx context.Context, e env.Environment) (string, error) {
	tool, err := dbtool.For(e)
	if err != nil {
		return "", err
	}

	workDir, err := os.MkdirTemp("", "dbmigrate-backup-")
	if err != nil {
		return "", fmt.Errorf("failed to create working directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(workDir) }()

	dumpDir := filepath.Join(workDir, "dump")
	if err := os.MkdirAll(dumpDir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create dump directory: %w", err)
	}
	p.logger().WithEnv(e.Name()).Info("dumping environment")
	if err := tool.Dump(ctx, dumpDir); err != nil {
		return "", fmt.Errorf("dump failed: %w", err)
	}

	name, err := NextArchiveName(ctx, p.Store, e.Name(), p.now())
	if err != nil {
		return "", err
	}

	zipPath := filepath.Join(workDir, name)
	if err := Pack(dumpDir, zipPath); err != nil {
		return "", fmt.Errorf("failed to package dump: %w", err)
	}

	if err := p.Store.Put(ctx, name, zipPath); err != nil {
		return "", fmt.Errorf("failed to store archive %s: %w", name, err)
	}
	p.logger().Info("backup stored", "archive", name)
	return name, nil
}

// Restore locates the named archive, unpacks it into a scoped temp directory
// and destructively replaces the target environment's data set with it. The
// archive must exist before anything is touched, and the operator must
// confirm: restore drops the target's existing data first.
func (p *Pipeline) Restore(ctx context.Context, archiveName string, target env.Environment, confirm Confirmer) error {
	exists, err := p.Store.Exists(ctx, archiveName)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: archive %q not found in backup store", common.ErrValidation, archiveName)
	}

	tool, err := dbtool.For(target)
	if err != nil {
		return err
	}

	ok, err := confirm.Confirm(fmt.Sprintf(
		"Restoring %s will DROP all data in %q and replace it. Continue?", archiveName, target.Name()))
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrConfirmationDeclined
	}

	workDir, err := os.MkdirTemp("", "dbmigrate-restore-")
	if err != nil {
		return fmt.Errorf("failed to create working directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(workDir) }()

	zipPath := filepath.Join(workDir, archiveName)
	if err := p.Store.Fetch(ctx, archiveName, zipPath); err != nil {
		return err
	}

	dumpDir := filepath.Join(workDir, "dump")
	if err := os.MkdirAll(dumpDir, 0o750); err != nil {
		return fmt.Errorf("failed to create unpack directory: %w", err)
	}
	if err := Unpack(zipPath, dumpDir); err != nil {
		return fmt.Errorf("failed to unpack archive %s: %w", archiveName, err)
	}

	p.logger().WithEnv(target.Name()).Info("restoring environment", "archive", archiveName)
	if err := tool.Restore(ctx, dumpDir); err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}
	return nil
}

// Copy pipes a dump of src directly into dst, skipping archival. Same
// destructive-target and scoped-cleanup semantics as Restore.
func Copy(ctx context.Context, src, dst env.Environment, confirm Confirmer, logger *common.Logger) error {
	if logger == nil {
		logger = common.GetLogger().WithComponent("backup")
	}
	srcTool, err := dbtool.For(src)
	if err != nil {
		return err
	}
	dstTool, err := dbtool.For(dst)
	if err != nil {
		return err
	}

	ok, err := confirm.Confirm(fmt.Sprintf(
		"Copying %q will DROP all data in %q and replace it. Continue?", src.Name(), dst.Name()))
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrConfirmationDeclined
	}

	workDir, err := os.MkdirTemp("", "dbmigrate-copy-")
	if err != nil {
		return fmt.Errorf("failed to create working directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(workDir) }()

	logger.WithEnv(src.Name()).Info("dumping source environment")
	if err := srcTool.Dump(ctx, workDir); err != nil {
		return fmt.Errorf("dump failed: %w", err)
	}

	logger.WithEnv(dst.Name()).Info("restoring into destination environment")
	if err := dstTool.Restore(ctx, workDir); err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}
	return nil
}
