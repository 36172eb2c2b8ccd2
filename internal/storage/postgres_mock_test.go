package storage

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/org-hierarchy-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockPostgres(t *testing.T) (*Gateway, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	db, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	return NewGateway(db, ""), mock
}

func TestTransact_TranslatesUniqueViolation(t *testing.T) {
	gw, mock := newMockPostgres(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "departments"`)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "ux_departments_parent_name"})
	mock.ExpectRollback()

	err := gw.Transact(context.Background(), func(tx *gorm.DB) error {
		return tx.Create(&domain.Department{Name: "IT"}).Error
	})

	assert.ErrorIs(t, err, domain.ErrDuplicateDepartmentName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransact_TranslatesForeignKeyViolation(t *testing.T) {
	gw, mock := newMockPostgres(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "employees"`)).
		WillReturnError(&pgconn.PgError{Code: "23503"})
	mock.ExpectRollback()

	err := gw.Transact(context.Background(), func(tx *gorm.DB) error {
		return tx.Create(&domain.Employee{DepartmentID: 42, FullName: "A", Position: "B"}).Error
	})

	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransact_CommitsOnPostgres(t *testing.T) {
	gw, mock := newMockPostgres(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "departments"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectCommit()

	var count int64
	err := gw.Transact(context.Background(), func(tx *gorm.DB) error {
		return tx.Model(&domain.Department{}).Count(&count).Error
	})

	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
