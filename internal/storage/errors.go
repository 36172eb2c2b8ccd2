package storage

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/org-hierarchy-api/internal/domain"
)

// Коды ошибок PostgreSQL, которые имеют бизнес-смысл
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// TranslateError переводит нарушения ограничений БД в бизнес-ошибки.
// Остальные ошибки возвращаются без изменений.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgUniqueViolation:
		return domain.ErrDuplicateDepartmentName
	case pgForeignKeyViolation:
		return domain.NewValidationError("referenced department does not exist")
	case pgCheckViolation:
		return domain.NewValidationError("value violates constraint " + pgErr.ConstraintName)
	default:
		return err
	}
}
