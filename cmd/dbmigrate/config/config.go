package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/loykin/dbmigrate"
	"github.com/loykin/dbmigrate/internal/backup"
	"github.com/loykin/dbmigrate/internal/common"
	"gopkg.in/yaml.v3"
)

type LocalStoreConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

type S3StoreConfig struct {
	Bucket string `mapstructure:"bucket" yaml:"bucket"`
	Prefix string `mapstructure:"prefix" yaml:"prefix"`
	Region string `mapstructure:"region" yaml:"region"`
}

type StoreConfig struct {
	Type  string           `mapstructure:"type" yaml:"type"` // local, s3
	Local LocalStoreConfig `mapstructure:"local" yaml:"local"`
	S3    S3StoreConfig    `mapstructure:"s3" yaml:"s3"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`   // error, warn, info, debug
	Format string `mapstructure:"format" yaml:"format"` // text, json
}

type ConfigDoc struct {
	Environments dbmigrate.Environments `mapstructure:"environments" yaml:"environments"`
	MigrateDir   string                 `mapstructure:"migrate_dir" yaml:"migrate_dir"`
	Store        StoreConfig            `mapstructure:"store" yaml:"store"`
	Logging      LoggingConfig          `mapstructure:"logging" yaml:"logging"`
}

func (c *ConfigDoc) Load(path string) error {
	clean := filepath.Clean(path)
	// Ensure path points to a regular file to avoid opening directories/special files
	if info, statErr := os.Stat(clean); statErr != nil || !info.Mode().IsRegular() {
		if statErr != nil {
			return statErr
		}
		return fmt.Errorf("not a regular file: %s", clean)
	}
	// #nosec G304 -- config path is provided intentionally by the user/CI; cleaned and validated above
	f, err := os.Open(clean)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("%w: %s: %v", common.ErrConfig, clean, err)
	}
	return nil
}

// Environment resolves the named environment from the document.
func (c *ConfigDoc) Environment(name string) (dbmigrate.Environment, error) {
	return c.Environments.Resolve(name)
}

// MigrationDir returns the configured migration directory, falling back to
// the directory next to the config file.
func (c *ConfigDoc) MigrationDir(configPath string) string {
	if d := strings.TrimSpace(c.MigrateDir); d != "" {
		return d
	}
	return filepath.Join(filepath.Dir(configPath), "migrations")
}

func (c *ConfigDoc) parseLogLevel() (dbmigrate.LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(c.Logging.Level)) {
	case "error":
		return dbmigrate.LogLevelError, nil
	case "warn", "warning":
		return dbmigrate.LogLevelWarn, nil
	case "info", "":
		return dbmigrate.LogLevelInfo, nil
	case "debug":
		return dbmigrate.LogLevelDebug, nil
	default:
		return dbmigrate.LogLevelInfo, fmt.Errorf("invalid logging level: %s (valid: error, warn, info, debug)", c.Logging.Level)
	}
}

// SetupLogging configures the global logger based on config settings.
func (c *ConfigDoc) SetupLogging() error {
	level, err := c.parseLogLevel()
	if err != nil {
		return err
	}

	var logger *dbmigrate.Logger
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "json":
		logger = dbmigrate.NewJSONLogger(level)
	case "text", "":
		logger = dbmigrate.NewLogger(level)
	default:
		return fmt.Errorf("invalid logging format: %s (valid: text, json)", c.Logging.Format)
	}

	dbmigrate.SetDefaultLogger(logger)
	return nil
}

// OpenBackupStore builds the backup store the document describes.
func (c *ConfigDoc) OpenBackupStore(ctx context.Context) (dbmigrate.BackupStore, error) {
	switch strings.ToLower(strings.TrimSpace(c.Store.Type)) {
	case "local", "":
		dir := strings.TrimSpace(c.Store.Local.Dir)
		if dir == "" {
			return nil, fmt.Errorf("%w: store.local.dir is required for the local store", common.ErrConfig)
		}
		return backup.NewLocalStore(dir)
	case "s3":
		bucket := strings.TrimSpace(c.Store.S3.Bucket)
		if bucket == "" {
			return nil, fmt.Errorf("%w: store.s3.bucket is required for the s3 store", common.ErrConfig)
		}
		var opts []func(*awsconfig.LoadOptions) error
		if region := strings.TrimSpace(c.Store.S3.Region); region != "" {
			opts = append(opts, awsconfig.WithRegion(region))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
		}
		return backup.NewS3Store(s3.NewFromConfig(awsCfg), bucket, c.Store.S3.Prefix), nil
	default:
		return nil, fmt.Errorf("%w: unsupported store type: %s (valid: local, s3)", common.ErrConfig, c.Store.Type)
	}
}
