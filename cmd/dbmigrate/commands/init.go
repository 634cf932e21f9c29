package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const starterSettings = `# dbmigrate settings
environments:
  dev:
    driver: postgresql
    host: localhost
    port: 5432
    db_name: myapp_dev
    user: myapp
    password: secret
  local:
    driver: sqlite
    path: ./local.sqlite

migrate_dir: ./migrations

store:
  type: local
  local:
    dir: %s
  # type: s3
  # s3:
  #   bucket: my-backups
  #   prefix: myapp
  #   region: us-east-1

logging:
  level: info
  format: text
`

var InitCmd = &cobra.Command{
	Use:   "init [backup-directory]",
	Short: "Write a starter settings file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backupDir := "./backups"
		if len(args) > 0 {
			backupDir = args[0]
		}

		configPath := filepath.Clean(viper.GetViper().GetString("config"))
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("refusing to overwrite existing %s", configPath)
		}
		if dir := filepath.Dir(configPath); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return err
			}
		}
		content := fmt.Sprintf(starterSettings, backupDir)
		if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
			return err
		}
		fmt.Println(configPath)
		return nil
	},
}
