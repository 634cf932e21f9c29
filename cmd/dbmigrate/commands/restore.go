package commands

import (
	"fmt"

	"github.com/loykin/dbmigrate"
	"github.com/spf13/cobra"
)

var RestoreCmd = &cobra.Command{
	Use:   "restore [archive:environment]",
	Short: "Replace an environment's data with an archive from the backup store",
	Long: "Restore drops all existing data in the destination environment before " +
		"loading the archive. The operation must be confirmed interactively.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		archive, dest, err := splitPair(args[0], "archive:environment")
		if err != nil {
			return err
		}
		doc, _, err := loadConfig()
		if err != nil {
			return err
		}
		e, err := doc.Environment(dest)
		if err != nil {
			return err
		}
		store, err := doc.OpenBackupStore(cmd.Context())
		if err != nil {
			return err
		}

		p := &dbmigrate.BackupPipeline{Store: store}
		if err := p.Restore(cmd.Context(), archive, e, stdinConfirmer()); err != nil {
			return err
		}
		fmt.Printf("restored %s into %s\n", archive, dest)
		return nil
	},
}
