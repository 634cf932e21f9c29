package env

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/loykin/dbmigrate/internal/common"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgresql = "postgresql"
	DriverSqlite     = "sqlite"

	defaultPostgresPort = 5432
	defaultSSLMode      = "disable"
)

// Environment is a named connection descriptor for one target database.
// It is immutable once loaded from configuration; every component consumes
// it read-only.
type Environment struct {
	Driver   string `mapstructure:"driver" yaml:"driver"`
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	DBName   string `mapstructure:"db_name" yaml:"db_name"`
	User     string `mapstructure:"user" yaml:"user"`
	Password string `mapstructure:"password" yaml:"password"`
	SSLMode  string `mapstructure:"sslmode" yaml:"sslmode"`
	// Path is the database file for sqlite environments.
	Path string `mapstructure:"path" yaml:"path"`
}

// Validate checks that the descriptor is complete for its driver.
func (e Environment) Validate() error {
	switch e.DriverName() {
	case DriverSqlite:
		if strings.TrimSpace(e.Path) == "" {
			return fmt.Errorf("%w: sqlite environment requires path", common.ErrConfig)
		}
	case DriverPostgresql:
		if strings.TrimSpace(e.Host) == "" {
			return fmt.Errorf("%w: postgresql environment requires host", common.ErrConfig)
		}
		if strings.TrimSpace(e.DBName) == "" {
			return fmt.Errorf("%w: postgresql environment requires db_name", common.ErrConfig)
		}
	default:
		return fmt.Errorf("%w: unknown driver %q (valid: postgresql, sqlite)", common.ErrConfig, e.Driver)
	}
	return nil
}

// DriverName returns the normalized driver, defaulting to postgresql.
func (e Environment) DriverName() string {
	d := strings.TrimSpace(strings.ToLower(e.Driver))
	switch d {
	case "", "postgres", DriverPostgresql:
		return DriverPostgresql
	case DriverSqlite, "sqlite3":
		return DriverSqlite
	default:
		return d
	}
}

// Name returns the logical database name; sqlite environments derive it from
// the file path when db_name is not set.
func (e Environment) Name() string {
	if n := strings.TrimSpace(e.DBName); n != "" {
		return n
	}
	if e.DriverName() == DriverSqlite && e.Path != "" {
		base := e.Path
		if i := strings.LastIndexByte(base, '/'); i >= 0 {
			base = base[i+1:]
		}
		if i := strings.LastIndexByte(base, '.'); i > 0 {
			base = base[:i]
		}
		return base
	}
	return ""
}

// PortOrDefault returns the configured port or the postgres default.
func (e Environment) PortOrDefault() int {
	if e.Port != 0 {
		return e.Port
	}
	return defaultPostgresPort
}

// DSN builds the connection string accepted by the environment's driver.
func (e Environment) DSN() string {
	switch e.DriverName() {
	case DriverSqlite:
		return fmt.Sprintf("file:%s?_busy_timeout=5000&_fk=1", e.Path)
	default:
		ssl := strings.TrimSpace(e.SSLMode)
		if ssl == "" {
			ssl = defaultSSLMode
		}
		return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
			e.User, e.Password, e.Host, e.PortOrDefault(), e.DBName, ssl)
	}
}

// Open connects to the environment's database.
func (e Environment) Open() (*sql.DB, error) {
	driver := "pgx"
	if e.DriverName() == DriverSqlite {
		driver = "sqlite"
	}
	db, err := sql.Open(driver, e.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", e.DriverName(), err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", e.DriverName(), err)
	}
	if e.DriverName() == DriverSqlite {
		// SQLite allows only one writer
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// Registry maps environment names to their connection descriptors. It is
// supplied by external configuration and never mutated after load.
type Registry map[string]Environment

// Resolve returns the environment for name, or a validation error naming the
// known environments when it is absent.
func (r Registry) Resolve(name string) (Environment, error) {
	e, ok := r[name]
	if !ok {
		return Environment{}, fmt.Errorf("%w: unknown environment %q (known: %s)",
			common.ErrValidation, name, strings.Join(r.Names(), ", "))
	}
	if err := e.Validate(); err != nil {
		return Environment{}, err
	}
	return e, nil
}

// Names returns the registered environment names sorted ascending.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for n := range r {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
