package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/org-hierarchy-api/internal/config"
	"github.com/org-hierarchy-api/internal/storage"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "orgctl",
		Short:         "Maintenance tool for the org structure database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newSeedCmd())
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

// connect загружает конфигурацию и открывает БД так же, как это делает API
func connect() (*config.Config, *gorm.DB, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Log.Level}))

	db, err := storage.Open(cfg.Database, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, db, logger, nil
}
