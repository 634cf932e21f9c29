package sqlite

import "fmt"

const (
	busyTimeoutMS    = 5000
	foreignKeysParam = "_fk=1"
)

// Config carries sqlite driver settings for the history ledger.
type Config struct {
	DSN  string `mapstructure:"dsn"`
	Path string `mapstructure:"path"`
}

func (c *Config) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"dsn":  c.DSN,
		"path": c.Path,
	}
}

// BuildDSN resolves the effective DSN: an explicit DSN wins, otherwise one is
// built from the file path.
func (c *Config) BuildDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	if c.Path != "" {
		return fmt.Sprintf("file:%s?_busy_timeout=%d&%s", c.Path, busyTimeoutMS, foreignKeysParam)
	}
	return ""
}
