package commands

import (
	"fmt"

	"github.com/loykin/dbmigrate"
	"github.com/spf13/cobra"
)

var BackupCmd = &cobra.Command{
	Use:   "backup [environment]",
	Short: "Dump an environment and archive it in the configured backup store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, _, err := loadConfig()
		if err != nil {
			return err
		}
		e, err := doc.Environment(args[0])
		if err != nil {
			return err
		}
		store, err := doc.OpenBackupStore(cmd.Context())
		if err != nil {
			return err
		}

		p := &dbmigrate.BackupPipeline{Store: store}
		name, err := p.Backup(cmd.Context(), e)
		if err != nil {
			return err
		}
		fmt.Println(name)
		return nil
	},
}
