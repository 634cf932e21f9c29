package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/loykin/dbmigrate"
	"github.com/loykin/dbmigrate/internal/migration"
	"github.com/spf13/cobra"
)

var ListMigrationsCmd = &cobra.Command{
	Use:   "list_migrations [environment]",
	Short: "List discovered migrations and their history state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, configPath, err := loadConfig()
		if err != nil {
			return err
		}
		e, err := doc.Environment(args[0])
		if err != nil {
			return err
		}

		units, err := dbmigrate.Discover(doc.MigrationDir(configPath), nil)
		if err != nil {
			return err
		}

		l, err := dbmigrate.ConnectLedger(dbmigrate.LedgerForEnvironment(e))
		if err != nil {
			return err
		}
		defer func() { _ = l.Close() }()

		entries, err := migration.StatusOf(units, l)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "MIGRATION\tSTATE\tRAN AT\tDETAIL")
		for _, entry := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", entry.Name, entry.State, entry.RanAt, entry.Detail)
		}
		return w.Flush()
	},
}
