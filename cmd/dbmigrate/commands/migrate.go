package commands

import (
	"errors"
	"fmt"

	"github.com/loykin/dbmigrate"
	"github.com/loykin/dbmigrate/internal/migration"
	"github.com/spf13/cobra"
)

var MigrateCmd = &cobra.Command{
	Use:   "migrate [environment]",
	Short: "Apply pending migrations to an environment, in order, stopping at the first failure",
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

		results, runErr := dbmigrate.Migrate(cmd.Context(), doc.MigrationDir(configPath), e, nil)
		for _, r := range results {
			switch r.Status {
			case migration.StatusApplied:
				fmt.Printf("applied   %s\n", r.Name)
			case migration.StatusSkipped:
				fmt.Printf("skipped   %s (already complete)\n", r.Name)
			case migration.StatusAttention:
				fmt.Printf("attention %s (previous run did not complete; resolve manually)\n", r.Name)
			case migration.StatusFailed:
				fmt.Printf("failed    %s: %v\n", r.Name, r.Err)
			}
		}

		var re *dbmigrate.RunError
		if errors.As(runErr, &re) {
			return fmt.Errorf("migration %s failed, run halted: %w", re.Name, re.Cause)
		}
		return runErr
	},
}
