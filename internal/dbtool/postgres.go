package dbtool

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/loykin/dbmigrate/internal/common"
	"github.com/loykin/dbmigrate/internal/env"
)

// terminateConnectionsSQL kicks other sessions off the database so drop can
// proceed. The runner's own connection is excluded by pg_backend_pid().
const terminateConnectionsSQL = `SELECT pg_terminate_backend(pid) FROM pg_stat_activity WHERE datname = current_database() AND pid <> pg_backend_pid();`

// pgTool shells out to the standard PostgreSQL client binaries: pg_dump in
// directory format for dumps, pg_restore for loads, dropdb/createdb for the
// destructive replace.
type pgTool struct {
	env env.Environment
}

func (t *pgTool) connArgs() []string {
	args := []string{"-h", t.env.Host, "-p", strconv.Itoa(t.env.PortOrDefault())}
	if t.env.User != "" {
		args = append(args, "-U", t.env.User)
	}
	return args
}

func (t *pgTool) run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = os.Environ()
	if t.env.Password != "" {
		cmd.Env = append(cmd.Env, "PGPASSWORD="+t.env.Password)
	}
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	common.GetLogger().WithComponent("dbtool").Debug("executing", "cmd", name, "args", args)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %w: %s", name, err, out.String())
	}
	return nil
}

func (t *pgTool) Dump(ctx context.Context, dir string) error {
	dest := filepath.Join(dir, PostgresDumpDir)
	args := append(t.connArgs(),
		"--format", "directory",
		"--file", dest,
		t.env.DBName,
	)
	return t.run(ctx, "pg_dump", args...)
}

func (t *pgTool) Restore(ctx context.Context, dir string) error {
	src := filepath.Join(dir, PostgresDumpDir)
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("dump payload missing at %s: %w", src, err)
	}
	if err := t.Drop(ctx); err != nil {
		return err
	}
	if err := t.run(ctx, "createdb", append(t.connArgs(), t.env.DBName)...); err != nil {
		return err
	}
	args := append(t.connArgs(),
		"--dbname", t.env.DBName,
		"--no-owner",
		src,
	)
	return t.run(ctx, "pg_restore", args...)
}

func (t *pgTool) Drop(ctx context.Context) error {
	// Live sessions block dropdb; terminate them first. Failure here is
	// tolerated: the database may not exist yet.
	psqlArgs := append(t.connArgs(), "-d", t.env.DBName, "-c", terminateConnectionsSQL)
	if err := t.run(ctx, "psql", psqlArgs...); err != nil {
		common.GetLogger().WithComponent("dbtool").Debug("terminate connections skipped", "error", err)
	}
	return t.run(ctx, "dropdb", append(t.connArgs(), "--if-exists", t.env.DBName)...)
}
