package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/org-hierarchy-api/internal/config"
	"github.com/org-hierarchy-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupGateway(t *testing.T) (*Gateway, *gorm.DB) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	gw := NewGateway(db, "")
	t.Cleanup(func() { _ = gw.Close() })
	return gw, db
}

func countDepartments(t *testing.T, db *gorm.DB) int64 {
	var count int64
	require.NoError(t, db.Model(&domain.Department{}).Count(&count).Error)
	return count
}

func TestTransact_CommitsOnSuccess(t *testing.T) {
	gw, db := setupGateway(t)

	err := gw.Transact(context.Background(), func(tx *gorm.DB) error {
		return tx.Create(&domain.Department{Name: "Company"}).Error
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), countDepartments(t, db))
}

func TestTransact_RollsBackOnError(t *testing.T) {
	gw, db := setupGateway(t)

	err := gw.Transact(context.Background(), func(tx *gorm.DB) error {
		if err := tx.Create(&domain.Department{Name: "Company"}).Error; err != nil {
			return err
		}
		return domain.ErrDuplicateDepartmentName
	})

	assert.ErrorIs(t, err, domain.ErrDuplicateDepartmentName)
	assert.Equal(t, int64(0), countDepartments(t, db))
}

func TestForeignKeysAreEnforced(t *testing.T) {
	gw, _ := setupGateway(t)

	err := gw.Transact(context.Background(), func(tx *gorm.DB) error {
		return tx.Create(&domain.Employee{DepartmentID: 42, FullName: "A", Position: "B"}).Error
	})

	assert.Error(t, err)
}

func TestPing(t *testing.T) {
	gw, _ := setupGateway(t)

	assert.NoError(t, gw.Ping(context.Background()))
}

func TestNewGateway_Isolation(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)

	assert.Nil(t, NewGateway(db, "").txOptions)
	assert.Equal(t, sql.LevelRepeatableRead, NewGateway(db, "repeatable_read").txOptions.Isolation)
	assert.Equal(t, sql.LevelSerializable, NewGateway(db, "serializable").txOptions.Isolation)
	assert.Equal(t, sql.LevelReadCommitted, NewGateway(db, "read_committed").txOptions.Isolation)

	assert.Nil(t, NewGatewayForConfig(db, config.DatabaseConfig{Driver: "sqlite", TxIsolation: "serializable"}).txOptions)
	assert.Equal(t, sql.LevelSerializable,
		NewGatewayForConfig(db, config.DatabaseConfig{Driver: "postgres", TxIsolation: "serializable"}).txOptions.Isolation)
}

func TestTranslateError(t *testing.T) {
	plain := errors.New("connection reset")

	tests := []struct {
		name     string
		err      error
		wantKind domain.Kind
		wantIs   error
	}{
		{"nil", nil, "", nil},
		{"plain", plain, domain.KindInternal, plain},
		{"unique", &pgconn.PgError{Code: "23505"}, domain.KindConflict, domain.ErrDuplicateDepartmentName},
		{"wrapped unique", fmt.Errorf("commit: %w", &pgconn.PgError{Code: "23505"}), domain.KindConflict, domain.ErrDuplicateDepartmentName},
		{"foreign key", &pgconn.PgError{Code: "23503"}, domain.KindValidation, nil},
		{"check", &pgconn.PgError{Code: "23514", ConstraintName: "chk_departments_name_not_blank"}, domain.KindValidation, nil},
		{"other pg", &pgconn.PgError{Code: "40001"}, domain.KindInternal, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TranslateError(tt.err)
			assert.Equal(t, tt.wantKind, domain.KindOf(got))
			if tt.wantIs != nil {
				assert.ErrorIs(t, got, tt.wantIs)
			}
		})
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := fs.ReadDir(embedMigrations, "migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	content, err := fs.ReadFile(embedMigrations, "migrations/"+entries[0].Name())
	require.NoError(t, err)
	assert.Contains(t, string(content), "-- +goose Up")
	assert.Contains(t, string(content), "ux_departments_parent_name")
}
