package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/loykin/dbmigrate"
	"github.com/loykin/dbmigrate/cmd/dbmigrate/config"
	"github.com/spf13/viper"
)

// loadConfig reads the configured settings document and applies its logging
// section. Returns the document and the path it was loaded from.
func loadConfig() (*config.ConfigDoc, string, error) {
	configPath := viper.GetViper().GetString("config")
	var doc config.ConfigDoc
	if err := doc.Load(configPath); err != nil {
		return nil, configPath, err
	}
	if err := doc.SetupLogging(); err != nil {
		return nil, configPath, err
	}
	return &doc, configPath, nil
}

// stdinConfirmer prompts on stdout and reads a y/N answer from stdin. Only
// an explicit "y" or "yes" counts as approval.
func stdinConfirmer() dbmigrate.Confirmer {
	return dbmigrate.ConfirmerFunc(func(prompt string) (bool, error) {
		fmt.Printf("%s [y/N]: ", prompt)
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return false, fmt.Errorf("failed to read confirmation: %w", err)
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes", nil
	})
}

// splitPair parses "a:b" arguments such as archive:environment.
func splitPair(arg, what string) (string, string, error) {
	parts := strings.SplitN(arg, ":", 2)
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
		return "", "", fmt.Errorf("expected %s, got %q", what, arg)
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}
