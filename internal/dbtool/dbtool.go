// Package dbtool wraps the external dump/restore capability of a target
// environment. The migration runner and the backup pipelines treat it as a
// collaborator: it produces a directory of files representing the full data
// set, and can destructively load such a directory back.
package dbtool

import (
	"context"
	"fmt"

	"github.com/loykin/dbmigrate/internal/env"
)

// Names of the dump payload inside a working directory. They are fixed so an
// archive can be restored into an environment with a different database name.
const (
	PostgresDumpDir = "pgdata"
	SqliteDumpFile  = "data.sqlite"
)

// Tool dumps, restores and drops one environment's data set.
type Tool interface {
	// Dump writes the environment's full data set under dir.
	Dump(ctx context.Context, dir string) error
	// Restore destructively replaces the environment's data set with the
	// dump found under dir. The previous contents are dropped first.
	Restore(ctx context.Context, dir string) error
	// Drop destructively empties the environment.
	Drop(ctx context.Context) error
}

// For returns the tool matching the environment's driver.
func For(e env.Environment) (Tool, error) {
	switch e.DriverName() {
	case env.DriverPostgresql:
		return &pgTool{env: e}, nil
	case env.DriverSqlite:
		return &sqliteTool{env: e}, nil
	default:
		return nil, fmt.Errorf("no dump tool for driver %q", e.Driver)
	}
}
