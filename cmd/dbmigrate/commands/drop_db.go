package commands

import (
	"fmt"

	"github.com/loykin/dbmigrate"
	"github.com/spf13/cobra"
)

var DropDbCmd = &cobra.Command{
	Use:   "drop_db [environment]",
	Short: "Destructively empty an environment",
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

		if err := dbmigrate.DropEnvironment(cmd.Context(), e, stdinConfirmer()); err != nil {
			return err
		}
		fmt.Printf("dropped %s\n", args[0])
		return nil
	},
}
