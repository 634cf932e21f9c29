package commands

import (
	"fmt"

	"github.com/loykin/dbmigrate"
	"github.com/spf13/cobra"
)

var GenerateCmd = &cobra.Command{
	Use:   "generate [label]",
	Short: "Create a new migration file with a timestamp-ordered identifier",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, configPath, err := loadConfig()
		if err != nil {
			return err
		}
		p, err := dbmigrate.GenerateMigration(args[0], doc.MigrationDir(configPath))
		if err != nil {
			return err
		}
		fmt.Println(p)
		return nil
	},
}
