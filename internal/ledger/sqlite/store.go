package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/loykin/dbmigrate/internal/common"
	"github.com/loykin/dbmigrate/internal/ledger/connector"
)

type Store struct {
	db      *sql.DB
	dialect *Dialect
	DSN     string
}

// NewStore creates a new SQLite store
func NewStore() *Store {
	return &Store{
		dialect: NewDialect(),
	}
}

// Load loads configuration into the SQLite store
func (s *Store) Load(config map[string]interface{}) error {
	var cfg Config
	if err := mapstructure.Decode(config, &cfg); err != nil {
		return fmt.Errorf("failed to decode sqlite ledger config: %w", err)
	}
	s.DSN = cfg.BuildDSN()
	return nil
}

// Connect establishes a connection to SQLite using the dialect
func (s *Store) Connect() (*sql.DB, error) {
	if s.DSN == "" {
		// Default to in-memory database for testing
		s.DSN = ":memory:"
	}

	db, err := s.dialect.Connect(s.DSN)
	if err != nil {
		return nil, err
	}
	s.db = db

	logger := common.GetLogger().WithDriver("sqlite")
	logger.Debug("SQLite ledger connection established")
	return db, nil
}

// Validate performs basic validation (default implementation)
func (s *Store) Validate() error {
	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ensure creates the history table using SQLite-specific schema
func (s *Store) Ensure(th connector.TableNames) error {
	for _, q := range s.dialect.GetEnsureStatements(th.MigrationHistory) {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("failed to ensure ledger schema: %w", err)
		}
	}
	return nil
}

// Lookup returns the record for name, or nil when absent.
func (s *Store) Lookup(th connector.TableNames, name string) (*connector.Record, error) {
	q := fmt.Sprintf("SELECT name, state, started_at, ended_at, detail FROM %s WHERE name = ?", th.MigrationHistory)

	var rec connector.Record
	var state string
	var endedAt sql.NullString
	var detail sql.NullString
	err := s.db.QueryRow(q, name).Scan(&rec.Name, &state, &rec.StartedAt, &endedAt, &detail)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up migration %q: %w", name, err)
	}
	rec.State = connector.State(state)
	if endedAt.Valid {
		rec.EndedAt = endedAt.String
	}
	if detail.Valid {
		rec.Detail = &detail.String
	}
	return &rec, nil
}

// Begin upserts the record into state running with a start timestamp.
func (s *Store) Begin(th connector.TableNames, name string, at time.Time) error {
	logger := common.GetLogger().WithDriver("sqlite").WithMigration(name)
	logger.Debug("marking migration running")

	q := fmt.Sprintf(
		"INSERT INTO %s(name, state, started_at, ended_at, detail) VALUES(?,?,?,NULL,NULL) "+
			"ON CONFLICT(name) DO UPDATE SET state=excluded.state, started_at=excluded.started_at, ended_at=NULL, detail=NULL",
		th.MigrationHistory)

	_, err := s.db.Exec(q, name, string(connector.StateRunning), s.dialect.ConvertTimeToStorage(at))
	if err != nil {
		return fmt.Errorf("failed to begin migration %q: %w", name, err)
	}
	return nil
}

// Transition moves the record for name into a terminal state.
func (s *Store) Transition(th connector.TableNames, name string, to connector.State, at time.Time, detail *string) error {
	logger := common.GetLogger().WithDriver("sqlite").WithMigration(name)
	logger.Debug("transitioning migration record", "to", string(to))

	q := fmt.Sprintf("UPDATE %s SET state = ?, ended_at = ?, detail = ? WHERE name = ?", th.MigrationHistory)

	res, err := s.db.Exec(q, string(to), s.dialect.ConvertTimeToStorage(at), detail, name)
	if err != nil {
		return fmt.Errorf("failed to transition migration %q to %s: %w", name, to, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("no history record for migration %q", name)
	}
	return nil
}

// List returns all records ordered by name ascending.
func (s *Store) List(th connector.TableNames) ([]connector.Record, error) {
	q := fmt.Sprintf("SELECT name, state, started_at, ended_at, detail FROM %s ORDER BY name ASC", th.MigrationHistory)

	rows, err := s.db.Query(q)
	if err != nil {
		return nil, fmt.Errorf("failed to list migration history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []connector.Record
	for rows.Next() {
		var rec connector.Record
		var state string
		var endedAt sql.NullString
		var detail sql.NullString
		if err := rows.Scan(&rec.Name, &state, &rec.StartedAt, &endedAt, &detail); err != nil {
			return nil, fmt.Errorf("failed to scan history record: %w", err)
		}
		rec.State = connector.State(state)
		if endedAt.Valid {
			rec.EndedAt = endedAt.String
		}
		if detail.Valid {
			rec.Detail = &detail.String
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history records: %w", err)
	}
	return records, nil
}
