package dto

import (
	"bytes"
	"encoding/json"
	"time"
)

// CreateDepartmentRequest - запрос на создание подразделения.
// Пустое имя проверяется после обрезки пробелов в репозитории, поэтому тега required здесь нет.
type CreateDepartmentRequest struct {
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id" validate:"omitempty,min=0"`
}

// UpdateDepartmentRequest - запрос на обновление подразделения
type UpdateDepartmentRequest struct {
	Name     *string       `json:"name"`
	ParentID OptionalInt64 `json:"parent_id"`
}

// OptionalInt64 отличает отсутствующее поле от явного null
type OptionalInt64 struct {
	Set   bool
	Value *int64
}

func (o *OptionalInt64) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(data, []byte("null")) {
		o.Value = nil
		return nil
	}

	var value int64
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	o.Value = &value
	return nil
}

// CreateEmployeeRequest - запрос на создание сотрудника
type CreateEmployeeRequest struct {
	FullName string  `json:"full_name" validate:"required"`
	Position string  `json:"position" validate:"required"`
	HiredAt  *string `json:"hired_at" validate:"omitempty,datetime=2006-01-02"`
}

// DepartmentResponse - ответ с данными подразделения
type DepartmentResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	ParentID  *int64    `json:"parent_id"`
	CreatedAt time.Time `json:"created_at"`
}

// DepartmentTreeResponse - узел поддерева. Дочерние узлы имеют ту же форму.
// employees отсутствует в ответе, если include_employees=false.
type DepartmentTreeResponse struct {
	Department DepartmentResponse       `json:"department"`
	Employees  []EmployeeResponse       `json:"employees,omitzero"`
	Children   []DepartmentTreeResponse `json:"children"`
}

// EmployeeResponse - ответ с данными сотрудника
type EmployeeResponse struct {
	ID           int64     `json:"id"`
	DepartmentID int64     `json:"department_id"`
	FullName     string    `json:"full_name"`
	Position     string    `json:"position"`
	HiredAt      *string   `json:"hired_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// DeleteResponse - подтверждение удаления
type DeleteResponse struct {
	Status string `json:"status"`
}

// ErrorResponse - стандартный ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// DeleteDepartmentQuery - параметры запроса удаления.
// Допустимость режима проверяет сервис: пустой режим означает cascade.
type DeleteDepartmentQuery struct {
	Mode                   string
	ReassignToDepartmentID *int64 `validate:"omitempty,min=1"`
}

// GetDepartmentQuery - параметры запроса получения подразделения
type GetDepartmentQuery struct {
	Depth            int `validate:"min=1,max=5"`
	IncludeEmployees bool
}
