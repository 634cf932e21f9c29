package postgresql

import (
	"fmt"
	"strings"
)

const (
	defaultPort    = 5432
	defaultSSLMode = "disable"
)

// Config carries postgres driver settings for the history ledger.
type Config struct {
	DSN      string `mapstructure:"dsn"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (p *Config) ToMap() map[string]interface{} {
	// Prefer explicit DSN; otherwise, build from components when host is provided.
	dsn := strings.TrimSpace(p.DSN)
	host := strings.TrimSpace(p.Host)
	if dsn == "" && host != "" {
		port := p.Port
		if port == 0 {
			port = defaultPort
		}
		ssl := strings.TrimSpace(p.SSLMode)
		if ssl == "" {
			ssl = defaultSSLMode
		}
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
			strings.TrimSpace(p.User), strings.TrimSpace(p.Password), host, port, strings.TrimSpace(p.DBName), ssl,
		)
	}
	return map[string]interface{}{
		"dsn": dsn,
	}
}
