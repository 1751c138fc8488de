package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"points/internal/config"
	"points/internal/messages"
)

func initCmd() *cobra.Command {
	var dsn string
	var actor string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold points.yaml and languages.yaml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(dsn, actor)
		},
	}
	cmd.Flags().StringVar(&dsn, "dsn", config.DefaultDSN, "Database DSN")
	cmd.Flags().StringVar(&actor, "actor", "", "Default participant name for commands")
	return cmd
}

func runInit(dsn, actor string) error {
	cfg := config.Default()
	cfg.Database.DSN = dsn
	cfg.Actor = actor

	languagesPath := filepath.Join(filepath.Dir(configPath), cfg.Messages)
	for _, path := range []string{configPath, languagesPath} {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
	}

	contents, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", configPath, err)
	}
	if err := os.WriteFile(configPath, contents, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", configPath, err)
	}
	if err := os.WriteFile(languagesPath, messages.DefaultYAML(), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", languagesPath, err)
	}

	return nil
}
