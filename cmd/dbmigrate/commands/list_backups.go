package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var ListBackupsCmd = &cobra.Command{
	Use:   "list_backups",
	Short: "List archives in the configured backup store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, _, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := doc.OpenBackupStore(cmd.Context())
		if err != nil {
			return err
		}
		archives, err := store.List(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ARCHIVE\tSIZE\tCREATED")
		for _, a := range archives {
			created := ""
			if !a.CreatedAt.IsZero() {
				created = a.CreatedAt.UTC().Format("2006-01-02 15:04:05")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", a.Name, humanize.Bytes(uint64(a.Size)), created) // #nosec G115 -- sizes are non-negative
		}
		return w.Flush()
	},
}
