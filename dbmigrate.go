package dbmigrate

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/loykin/dbmigrate/internal/backup"
	"github.com/loykin/dbmigrate/internal/common"
	"github.com/loykin/dbmigrate/internal/dbtool"
	"github.com/loykin/dbmigrate/internal/env"
	"github.com/loykin/dbmigrate/internal/ledger"
	"github.com/loykin/dbmigrate/internal/migration"
)

// Re-export commonly used types for the public API

// Environment is a named target database connection descriptor.
type Environment = env.Environment

// Environments maps environment names to their descriptors.
type Environments = env.Registry

// Ledger is the durable migration history for one environment.
type Ledger = ledger.Ledger

// LedgerConfig selects and configures a ledger driver.
type LedgerConfig = ledger.Config

// Record is one migration history entry.
type Record = ledger.Record

const (
	StateRunning  = ledger.StateRunning
	StateComplete = ledger.StateComplete
	StateFailed   = ledger.StateFailed
)

// Handler is the executable body of one migration unit.
type Handler = migration.Handler

// HandlerFunc adapts a function to Handler.
type HandlerFunc = migration.HandlerFunc

// Registry binds migration identifiers to Go handlers.
type Registry = migration.Registry

// Unit is one discovered migration.
type Unit = migration.Unit

// Runner applies discovered units in order.
type Runner = migration.Runner

// RunError is the typed failure of one migration body.
type RunError = migration.RunError

// Result pairs a unit with its outcome in one runner invocation.
type Result = migration.Result

// RunStatus is the outcome of one unit within a runner invocation.
type RunStatus = migration.Status

const (
	StatusApplied   = migration.StatusApplied
	StatusSkipped   = migration.StatusSkipped
	StatusAttention = migration.StatusAttention
	StatusFailed    = migration.StatusFailed
)

// BackupStore is where archives live.
type BackupStore = backup.Store

// BackupPipeline runs backup and restore flows against a store.
type BackupPipeline = backup.Pipeline

// Confirmer gates irrevocable actions.
type Confirmer = backup.Confirmer

// ConfirmerFunc adapts a function to Confirmer.
type ConfirmerFunc = backup.ConfirmerFunc

// Logger is the structured logger used across the module.
type Logger = common.Logger

// LogLevel selects logging verbosity.
type LogLevel = common.LogLevel

const (
	LogLevelError = common.LogLevelError
	LogLevelWarn  = common.LogLevelWarn
	LogLevelInfo  = common.LogLevelInfo
	LogLevelDebug = common.LogLevelDebug
)

// NewLogger creates a text logger. NewJSONLogger creates a JSON logger.
func NewLogger(level LogLevel) *Logger     { return common.NewLogger(level) }
func NewJSONLogger(level LogLevel) *Logger { return common.NewJSONLogger(level) }

// SetDefaultLogger replaces the process default logger.
func SetDefaultLogger(l *Logger) { common.SetDefaultLogger(l) }

// NewRegistry creates an empty migration registry for embedding programs.
func NewRegistry() *Registry { return migration.NewRegistry() }

// Discover scans dir for migration units, binding registry handlers where
// present.
func Discover(dir string, reg *Registry) ([]Unit, error) {
	return migration.Discover(dir, reg)
}

// ConnectLedger opens (and initializes) the history ledger for cfg.
func ConnectLedger(cfg LedgerConfig) (*Ledger, error) { return ledger.Connect(cfg) }

// LedgerForEnvironment builds the ledger configuration stored inside the
// target environment's own database.
func LedgerForEnvironment(e Environment) LedgerConfig { return ledger.FromEnvironment(e) }

// Migrate discovers units in dir and applies the pending ones to the target
// environment, recording history in the environment's ledger.
func Migrate(ctx context.Context, dir string, e Environment, reg *Registry) ([]Result, error) {
	units, err := migration.Discover(dir, reg)
	if err != nil {
		return nil, err
	}
	l, err := ledger.Connect(ledger.FromEnvironment(e))
	if err != nil {
		return nil, err
	}
	defer func() { _ = l.Close() }()

	var db *sql.DB
	db, err = e.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	r := &migration.Runner{DB: db, Ledger: l}
	return r.Run(ctx, units)
}

// GenerateMigration writes a timestamped migration unit template and returns
// its path.
func GenerateMigration(label, dir string) (string, error) {
	return migration.Generate(migration.GenerateOptions{Label: label, Dir: dir})
}

// CopyEnvironment pipes a dump of src directly into dst, replacing dst's data
// set. The confirmer must approve before dst is touched.
func CopyEnvironment(ctx context.Context, src, dst Environment, confirm Confirmer) error {
	return backup.Copy(ctx, src, dst, confirm, nil)
}

// DropEnvironment destructively empties the environment. The confirmer must
// approve before any data is touched.
func DropEnvironment(ctx context.Context, e Environment, confirm Confirmer) error {
	tool, err := dbtool.For(e)
	if err != nil {
		return err
	}
	ok, err := confirm.Confirm(fmt.Sprintf("This will DROP all data in %q. Continue?", e.Name()))
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrConfirmationDeclined
	}
	return tool.Drop(ctx)
}
