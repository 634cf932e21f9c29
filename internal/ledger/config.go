package ledger

import (
	"github.com/loykin/dbmigrate/internal/env"
	"github.com/loykin/dbmigrate/internal/ledger/connector"
	"github.com/loykin/dbmigrate/internal/ledger/postgresql"
	"github.com/loykin/dbmigrate/internal/ledger/sqlite"
)

const (
	DriverSqlite     = "sqlite"
	DriverPostgresql = "postgresql"
)

// DefaultTableName is the history table created inside the target database.
const DefaultTableName = "migration_history"

// SqliteConfig is re-exported for callers configuring a sqlite ledger.
type SqliteConfig = sqlite.Config

// PostgresConfig is re-exported for callers configuring a postgres ledger.
type PostgresConfig = postgresql.Config

// DriverConfig yields the map passed to the driver connector's Load.
type DriverConfig interface {
	ToMap() map[string]interface{}
}

// Config selects a ledger driver and its settings.
type Config struct {
	Driver       string `mapstructure:"driver"`
	TableName    string
	DriverConfig DriverConfig
}

func (c *Config) tableNames() connector.TableNames {
	t := c.TableName
	if t == "" {
		t = DefaultTableName
	}
	return connector.TableNames{MigrationHistory: t}
}

// FromEnvironment builds the ledger configuration for a target environment.
// The ledger lives inside the environment's own database so history shares
// the durability and backup semantics of the data it describes.
func FromEnvironment(e env.Environment) Config {
	if e.DriverName() == env.DriverSqlite {
		return Config{
			Driver:       DriverSqlite,
			DriverConfig: &sqlite.Config{Path: e.Path},
		}
	}
	return Config{
		Driver: DriverPostgresql,
		DriverConfig: &postgresql.Config{
			Host:     e.Host,
			Port:     e.PortOrDefault(),
			User:     e.User,
			Password: e.Password,
			DBName:   e.DBName,
			SSLMode:  e.SSLMode,
		},
	}
}
