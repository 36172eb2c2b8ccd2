package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/org-hierarchy-api/internal/domain"
	"gorm.io/gorm"
)

// EmployeeRepository определяет интерфейс для работы с сотрудниками
type EmployeeRepository interface {
	Create(ctx context.Context, departmentID int64, fullName, position string, hiredAt *time.Time) (*domain.Employee, error)
	GetByDepartmentID(ctx context.Context, departmentID int64) ([]domain.Employee, error)
	ListByDepartments(ctx context.Context, departmentIDs []int64) ([]domain.Employee, error)
	ReassignToDepartment(ctx context.Context, fromDeptID, toDeptID int64) (int64, error)
}

type employeeRepository struct {
	db *gorm.DB
}

// NewEmployeeRepository создаёт репозиторий поверх переданного соединения или транзакции
func NewEmployeeRepository(db *gorm.DB) EmployeeRepository {
	return &employeeRepository{db: db}
}

// Create не проверяет существование подразделения, это делает вызывающая сторона
func (r *employeeRepository) Create(ctx context.Context, departmentID int64, fullName, position string, hiredAt *time.Time) (*domain.Employee, error) {
	fullName, err := normalizeText(fullName, "full_name")
	if err != nil {
		return nil, err
	}
	position, err = normalizeText(position, "position")
	if err != nil {
		return nil, err
	}

	emp := &domain.Employee{
		DepartmentID: departmentID,
		FullName:     fullName,
		Position:     position,
		HiredAt:      hiredAt,
	}
	if err := r.db.WithContext(ctx).Create(emp).Error; err != nil {
		return nil, fmt.Errorf("insert employee: %w", err)
	}
	return emp, nil
}

func (r *employeeRepository) GetByDepartmentID(ctx context.Context, departmentID int64) ([]domain.Employee, error) {
	return r.ListByDepartments(ctx, []int64{departmentID})
}

// ListByDepartments возвращает сотрудников нескольких подразделений одним запросом
func (r *employeeRepository) ListByDepartments(ctx context.Context, departmentIDs []int64) ([]domain.Employee, error) {
	if len(departmentIDs) == 0 {
		return nil, nil
	}

	var employees []domain.Employee
	err := r.db.WithContext(ctx).
		Where("department_id IN ?", departmentIDs).
		Order("created_at ASC").
		Order("id ASC").
		Find(&employees).Error
	if err != nil {
		return nil, fmt.Errorf("load employees: %w", err)
	}
	return employees, nil
}

func (r *employeeRepository) ReassignToDepartment(ctx context.Context, fromDeptID, toDeptID int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Employee{}).
		Where("department_id = ?", fromDeptID).
		Update("department_id", toDeptID)
	if res.Error != nil {
		return 0, fmt.Errorf("reassign employees %d -> %d: %w", fromDeptID, toDeptID, res.Error)
	}
	return res.RowsAffected, nil
}
