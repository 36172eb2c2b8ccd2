package domain

import "errors"

// Kind - категория бизнес-ошибки, по ней транспортный слой выбирает статус ответа
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindCycle      Kind = "cycle"
	KindInternal   Kind = "internal"
)

// Error - бизнес-ошибка с категорией
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// NewValidationError создаёт ошибку валидации с произвольным текстом
func NewValidationError(message string) error {
	return newError(KindValidation, message)
}

// KindOf возвращает категорию ошибки; всё, что не является *Error, считается внутренней ошибкой
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}
	return KindInternal
}

// Определение бизнес-ошибок
var (
	ErrDepartmentNotFound      = newError(KindNotFound, "department not found")
	ErrEmptyDepartmentName     = newError(KindValidation, "department name cannot be empty")
	ErrDuplicateDepartmentName = newError(KindConflict, "department with this name already exists under the same parent")
	ErrSelfReference           = newError(KindValidation, "department cannot be its own parent")
	ErrParentNotFound          = newError(KindValidation, "parent department not found")
	ErrCyclicReference         = newError(KindCycle, "cannot move department inside its own subtree")
	ErrInvalidDeleteMode       = newError(KindValidation, "invalid delete mode, use 'cascade' or 'reassign'")
	ErrReassignTargetRequired  = newError(KindValidation, "reassign_to_department_id is required when mode is reassign")
	ErrReassignTargetNotFound  = newError(KindValidation, "target department for reassignment not found")
	ErrCannotReassignToSelf    = newError(KindValidation, "cannot reassign employees to the same department being deleted")
	ErrHierarchyCorrupted      = newError(KindInternal, "department hierarchy contains a cycle")
)
