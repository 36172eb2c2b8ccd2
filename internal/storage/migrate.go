package storage

import (
	"context"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Migrate приводит схему к актуальному состоянию: goose-миграции для PostgreSQL, AutoMigrate для SQLite
func Migrate(ctx context.Context, db *gorm.DB, driver string) error {
	if driver == "sqlite" {
		return AutoMigrate(db)
	}
	return RunMigrations(ctx, db, "up")
}

// RunMigrations выполняет команду goose (up, down, status, version, ...) над встроенными миграциями
func RunMigrations(ctx context.Context, db *gorm.DB, command string, args ...string) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	if err := goose.RunContext(ctx, command, sqlDB, "migrations", args...); err != nil {
		return fmt.Errorf("failed to run migrations (%s): %w", command, err)
	}
	return nil
}
