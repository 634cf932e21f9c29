package ledger

import (
	"fmt"
	"time"

	"github.com/loykin/dbmigrate/internal/ledger/connector"
	"github.com/loykin/dbmigrate/internal/ledger/postgresql"
	"github.com/loykin/dbmigrate/internal/ledger/sqlite"
)

// Record and State are re-exported from the connector layer.
type Record = connector.Record
type State = connector.State

const (
	StateRunning  = connector.StateRunning
	StateComplete = connector.StateComplete
	StateFailed   = connector.StateFailed
)

// Ledger is the durable history of migration executions: one record per
// migration name, written before and after every execution attempt. Records
// are never deleted; they are the audit trail operators inspect when a run
// is left in running or failed state.
//
// The ledger assumes a single runner process at a time. Two concurrent
// runners against the same environment can race on the same record; no
// distributed lock is held.
type Ledger struct {
	conn  connector.Connector
	th    connector.TableNames
	clock func() time.Time
}

// Connect opens the ledger selected by cfg and ensures its schema.
func Connect(cfg Config) (*Ledger, error) {
	var conn connector.Connector
	switch cfg.Driver {
	case DriverPostgresql:
		conn = postgresql.NewStore()
	case DriverSqlite, "":
		conn = sqlite.NewStore()
	default:
		return nil, fmt.Errorf("unsupported ledger driver %q", cfg.Driver)
	}

	var driverCfg map[string]interface{}
	if cfg.DriverConfig != nil {
		driverCfg = cfg.DriverConfig.ToMap()
	}
	if err := conn.Load(driverCfg); err != nil {
		return nil, err
	}
	if err := conn.Validate(); err != nil {
		return nil, err
	}
	if _, err := conn.Connect(); err != nil {
		return nil, err
	}

	l := &Ledger{conn: conn, th: cfg.tableNames(), clock: time.Now}
	if err := conn.Ensure(l.th); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return l, nil
}

// Close releases the underlying connection.
func (l *Ledger) Close() error {
	if l == nil || l.conn == nil {
		return nil
	}
	return l.conn.Close()
}

// Lookup returns the record for name, or nil when the migration has never run.
func (l *Ledger) Lookup(name string) (*Record, error) {
	return l.conn.Lookup(l.th, name)
}

// Begin inserts (or overwrites) the record for name in state running with a
// start timestamp. The write is visible immediately; it is the guard that
// keeps a crashed run from being silently retried.
func (l *Ledger) Begin(name string) error {
	return l.conn.Begin(l.th, name, l.clock())
}

// Complete transitions the record for name from running to complete.
func (l *Ledger) Complete(name string) error {
	return l.transition(name, StateComplete, nil)
}

// Fail transitions the record for name from running to failed, recording the
// failure cause.
func (l *Ledger) Fail(name string, cause error) error {
	var detail *string
	if cause != nil {
		d := cause.Error()
		detail = &d
	}
	return l.transition(name, StateFailed, detail)
}

func (l *Ledger) transition(name string, to State, detail *string) error {
	rec, err := l.conn.Lookup(l.th, name)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("cannot mark %q %s: no history record", name, to)
	}
	if rec.State != StateRunning {
		return fmt.Errorf("cannot mark %q %s: record is %s, not %s", name, to, rec.State, StateRunning)
	}
	return l.conn.Transition(l.th, name, to, l.clock(), detail)
}

// List returns every history record ordered by migration name.
func (l *Ledger) List() ([]Record, error) {
	return l.conn.List(l.th)
}
