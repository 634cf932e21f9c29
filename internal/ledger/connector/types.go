package connector

import (
	"database/sql"
	"time"
)

// State is the lifecycle state of a history record. Absence of a record means
// the migration has never run.
type State string

const (
	StateRunning  State = "running"
	StateComplete State = "complete"
	StateFailed   State = "failed"
)

// Record is one row of the migration history table, keyed by migration name.
// Detail is nil unless the migration failed. Timestamps are RFC3339Nano UTC
// for sqlite; Postgres values are converted on read.
type Record struct {
	Name      string
	State     State
	StartedAt string
	EndedAt   string
	Detail    *string
}

// TableNames represents database table names
type TableNames struct {
	MigrationHistory string
}

type Connector interface {
	Connect() (*sql.DB, error)
	Validate() error
	Load(config map[string]interface{}) error
	Ensure(th TableNames) error
	// Lookup returns nil when no record exists for name.
	Lookup(th TableNames, name string) (*Record, error)
	// Begin upserts the record into state running with a start timestamp.
	// The write is committed immediately; it is the idempotency guard.
	Begin(th TableNames, name string, at time.Time) error
	// Transition moves the record for name to the given terminal state.
	Transition(th TableNames, name string, to State, at time.Time, detail *string) error
	// List returns all records ordered by name ascending.
	List(th TableNames) ([]Record, error)
	Close() error
}
