package commands

import (
	"fmt"

	"github.com/loykin/dbmigrate"
	"github.com/spf13/cobra"
)

var CopyDbCmd = &cobra.Command{
	Use:   "copy_db [source:dest]",
	Short: "Copy one environment's data set into another",
	Long: "Copy dumps the source environment and restores the dump into the " +
		"destination, dropping the destination's existing data first. The " +
		"operation must be confirmed interactively.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		srcName, dstName, err := splitPair(args[0], "source:dest")
		if err != nil {
			return err
		}
		doc, _, err := loadConfig()
		if err != nil {
			return err
		}
		src, err := doc.Environment(srcName)
		if err != nil {
			return err
		}
		dst, err := doc.Environment(dstName)
		if err != nil {
			return err
		}

		if err := dbmigrate.CopyEnvironment(cmd.Context(), src, dst, stdinConfirmer()); err != nil {
			return err
		}
		fmt.Printf("copied %s into %s\n", srcName, dstName)
		return nil
	},
}
