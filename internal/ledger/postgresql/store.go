package postgresql

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

// NewStore creates a new PostgreSQL store
func NewStore() *Store {
	return &Store{
		dialect: NewDialect(),
	}
}

// Load loads configuration into the PostgreSQL store
func (s *Store) Load(config map[string]interface{}) error {
	var cfg struct {
		DSN string `mapstructure:"dsn"`
	}
	if err := mapstructure.Decode(config, &cfg); err != nil {
		return fmt.Errorf("failed to decode postgresql ledger config: %w", err)
	}
	s.DSN = cfg.DSN
	return nil
}

// Validate checks that a DSN has been configured
func (s *Store) Validate() error {
	if s.DSN == "" {
		return errors.New("postgresql ledger requires a dsn")
	}
	return nil
}

// Connect establishes a connection to PostgreSQL using the dialect
func (s *Store) Connect() (*sql.DB, error) {
	db, err := s.dialect.Connect(s.DSN)
	if err != nil {
		return nil, err
	}
	s.db = db

	logger := common.GetLogger().WithDriver("postgresql")
	logger.Debug("PostgreSQL ledger connection established")
	return db, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ensure creates the history table using PostgreSQL-specific schema
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
	q := fmt.Sprintf("SELECT name, state, started_at, ended_at, detail FROM %s WHERE name = $1", th.MigrationHistory)

	var rec connector.Record
	var state string
	var startedAt time.Time
	var endedAt sql.NullTime
	var detail sql.NullString
	err := s.db.QueryRow(q, name).Scan(&rec.Name, &state, &startedAt, &endedAt, &detail)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up migration %q: %w", name, err)
	}
	rec.State = connector.State(state)
	rec.StartedAt = s.dialect.ConvertTimeFromStorage(startedAt)
	if endedAt.Valid {
		rec.EndedAt = s.dialect.ConvertTimeFromStorage(endedAt.Time)
	}
	if detail.Valid {
		rec.Detail = &detail.String
	}
	return &rec, nil
}

// Begin upserts the record into state running with a start timestamp.
func (s *Store) Begin(th connector.TableNames, name string, at time.Time) error {
	logger := common.GetLogger().WithDriver("postgresql").WithMigration(name)
	logger.Debug("marking migration running")

	q := fmt.Sprintf(
		"INSERT INTO %s(name, state, started_at, ended_at, detail) VALUES($1,$2,$3,NULL,NULL) "+
			"ON CONFLICT(name) DO UPDATE SET state=EXCLUDED.state, started_at=EXCLUDED.started_at, ended_at=NULL, detail=NULL",
		th.MigrationHistory)

	_, err := s.db.Exec(q, name, string(connector.StateRunning), s.dialect.ConvertTimeToStorage(at))
	if err != nil {
		return fmt.Errorf("failed to begin migration %q: %w", name, err)
	}
	return nil
}

// Transition moves the record for name into a terminal state.
func (s *Store) Transition(th connector.TableNames, name string, to connector.State, at time.Time, detail *string) error {
	logger := common.GetLogger().WithDriver("postgresql").WithMigration(name)
	logger.Debug("transitioning migration record", "to", string(to))

	q := fmt.Sprintf("UPDATE %s SET state = $1, ended_at = $2, detail = $3 WHERE name = $4", th.MigrationHistory)

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
		var startedAt time.Time
		var endedAt sql.NullTime
		var detail sql.NullString
		if err := rows.Scan(&rec.Name, &state, &startedAt, &endedAt, &detail); err != nil {
			return nil, fmt.Errorf("failed to scan history record: %w", err)
		}
		rec.State = connector.State(state)
		rec.StartedAt = s.dialect.ConvertTimeFromStorage(startedAt)
		if endedAt.Valid {
			rec.EndedAt = s.dialect.ConvertTimeFromStorage(endedAt.Time)
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
