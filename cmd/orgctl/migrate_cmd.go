package main

import (
	"errors"

	"github.com/org-hierarchy-api/internal/storage"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}
	cmd.AddCommand(newGooseCmd("up", "Apply all pending migrations"))
	cmd.AddCommand(newGooseCmd("down", "Roll back the latest migration"))
	cmd.AddCommand(newGooseCmd("status", "Print migration status"))
	cmd.AddCommand(newGooseCmd("version", "Print current schema version"))
	return cmd
}

func newGooseCmd(command, short string) *cobra.Command {
	return &cobra.Command{
		Use:   command,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, db, _, err := connect()
			if err != nil {
				return err
			}
			defer storage.NewGateway(db, "").Close()

			if cfg.Database.Driver == "sqlite" {
				if command != "up" {
					return errors.New("sqlite schema is managed by auto-migration, only 'migrate up' is supported")
				}
				return storage.AutoMigrate(db)
			}
			return storage.RunMigrations(cmd.Context(), db, command)
		},
	}
}
