package main

import (
	"github.com/loykin/dbmigrate/cmd/dbmigrate/commands"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "dbmigrate",
	Short: "Manage database migrations and backups across environments",
}

func init() {
	// Defaults
	v := viper.GetViper()
	v.SetDefault("config", "./settings.yaml")

	// Environment variables support: DBMIGRATE_CONFIG, ...
	v.SetEnvPrefix("DBMIGRATE")
	v.AutomaticEnv()
	rootCmd.PersistentFlags().String("config", v.GetString("config"), "path to the settings yaml")
	_ = v.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))

	rootCmd.AddCommand(commands.GenerateCmd)
	rootCmd.AddCommand(commands.ListMigrationsCmd)
	rootCmd.AddCommand(commands.MigrateCmd)
	rootCmd.AddCommand(commands.InitCmd)
	rootCmd.AddCommand(commands.CopyDbCmd)
	rootCmd.AddCommand(commands.DropDbCmd)
	rootCmd.AddCommand(commands.BackupCmd)
	rootCmd.AddCommand(commands.ListBackupsCmd)
	rootCmd.AddCommand(commands.RestoreCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		exitHandler.LogFatalError(err, "command execution failed")
	}
}
