package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/org-hierarchy-api/internal/domain"
	"gorm.io/gorm"
)

// DepartmentPatch - частичное обновление подразделения.
// ParentIDSet отличает "parent_id не передан" от "parent_id: null" (перенос в корень).
type DepartmentPatch struct {
	Name        *string
	ParentIDSet bool
	ParentID    *int64
}

// IsEmpty сообщает, что патч ничего не меняет
func (p DepartmentPatch) IsEmpty() bool {
	return p.Name == nil && !p.ParentIDSet
}

// DeleteResult - сколько строк затронуло удаление
type DeleteResult struct {
	DepartmentsDeleted int64
	EmployeesDeleted   int64
	EmployeesMoved     int64
	ChildrenPromoted   int64
}

// DepartmentRepository определяет интерфейс для работы с подразделениями
type DepartmentRepository interface {
	Fetch(ctx context.Context, id int64) (*domain.Department, error)
	FetchChildren(ctx context.Context, id int64) ([]domain.Department, error)
	FetchChildrenOf(ctx context.Context, ids []int64) ([]domain.Department, error)
	Count(ctx context.Context) (int64, error)
	ExistsByNameAndParent(ctx context.Context, name string, parentID *int64, excludeID *int64) (bool, error)
	Create(ctx context.Context, name string, parentID *int64) (*domain.Department, error)
	Update(ctx context.Context, id int64, patch DepartmentPatch) (*domain.Department, error)
	DeleteCascade(ctx context.Context, dept *domain.Department) (DeleteResult, error)
	DeleteReassign(ctx context.Context, dept *domain.Department, targetID int64) (DeleteResult, error)
}

type departmentRepository struct {
	db *gorm.DB
}

// NewDepartmentRepository создаёт репозиторий поверх переданного соединения или транзакции
func NewDepartmentRepository(db *gorm.DB) DepartmentRepository {
	return &departmentRepository{db: db}
}

func (r *departmentRepository) Fetch(ctx context.Context, id int64) (*domain.Department, error) {
	var dept domain.Department
	err := r.db.WithContext(ctx).First(&dept, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDepartmentNotFound
		}
		return nil, fmt.Errorf("load department %d: %w", id, err)
	}
	return &dept, nil
}

func (r *departmentRepository) FetchChildren(ctx context.Context, id int64) ([]domain.Department, error) {
	return r.FetchChildrenOf(ctx, []int64{id})
}

func (r *departmentRepository) FetchChildrenOf(ctx context.Context, ids []int64) ([]domain.Department, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var children []domain.Department
	err := r.db.WithContext(ctx).
		Where("parent_id IN ?", ids).
		Order("id ASC").
		Find(&children).Error
	if err != nil {
		return nil, fmt.Errorf("load child departments: %w", err)
	}
	return children, nil
}

func (r *departmentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Department{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count departments: %w", err)
	}
	return count, nil
}

func (r *departmentRepository) ExistsByNameAndParent(ctx context.Context, name string, parentID *int64, excludeID *int64) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&domain.Department{}).Where("name = ?", name)

	if parentID != nil {
		query = query.Where("parent_id = ?", *parentID)
	} else {
		query = query.Where("parent_id IS NULL")
	}

	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("check sibling uniqueness: %w", err)
	}
	return count > 0, nil
}

func (r *departmentRepository) Create(ctx context.Context, name string, parentID *int64) (*domain.Department, error) {
	name, err := normalizeDepartmentName(name)
	if err != nil {
		return nil, err
	}

	exists, err := r.ExistsByNameAndParent(ctx, name, parentID, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateDepartmentName
	}

	dept := &domain.Department{
		Name:     name,
		ParentID: parentID,
	}
	if err := r.db.WithContext(ctx).Create(dept).Error; err != nil {
		return nil, fmt.Errorf("insert department: %w", err)
	}
	return dept, nil
}

func (r *departmentRepository) Update(ctx context.Context, id int64, patch DepartmentPatch) (*domain.Department, error) {
	dept, err := r.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return dept, nil
	}

	newName := dept.Name
	if patch.Name != nil {
		newName, err = normalizeDepartmentName(*patch.Name)
		if err != nil {
			return nil, err
		}
	}

	newParentID := dept.ParentID
	if patch.ParentIDSet {
		newParentID = patch.ParentID
	}

	nameChanged := newName != dept.Name
	parentChanged := !sameParent(dept.ParentID, newParentID)
	if !nameChanged && !parentChanged {
		return dept, nil
	}

	exists, err := r.ExistsByNameAndParent(ctx, newName, newParentID, &id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateDepartmentName
	}

	updates := map[string]any{}
	if nameChanged {
		updates["name"] = newName
	}
	if parentChanged {
		if newParentID == nil {
			updates["parent_id"] = gorm.Expr("NULL")
		} else {
			updates["parent_id"] = *newParentID
		}
	}

	if err := r.db.WithContext(ctx).Model(&domain.Department{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update department %d: %w", id, err)
	}

	return r.Fetch(ctx, id)
}

// DeleteCascade удаляет подразделение вместе со всеми потомками и их сотрудниками.
// Потомки собираются явным стеком (родитель раньше детей), поэтому глубина дерева не ограничена стеком вызовов
// и результат не зависит от наличия ON DELETE CASCADE в схеме.
func (r *departmentRepository) DeleteCascade(ctx context.Context, dept *domain.Department) (DeleteResult, error) {
	subtree, err := r.collectSubtree(ctx, dept.ID)
	if err != nil {
		return DeleteResult{}, err
	}

	db := r.db.WithContext(ctx)

	employees := db.Where("department_id IN ?", subtree).Delete(&domain.Employee{})
	if employees.Error != nil {
		return DeleteResult{}, fmt.Errorf("delete employees of subtree %d: %w", dept.ID, employees.Error)
	}

	// дети удаляются раньше родителей, чтобы не нарушать внешний ключ parent_id
	leafFirst := make([]int64, len(subtree))
	for i, id := range subtree {
		leafFirst[len(subtree)-1-i] = id
	}

	var deleted int64
	for _, id := range leafFirst {
		res := db.Delete(&domain.Department{}, id)
		if res.Error != nil {
			return DeleteResult{}, fmt.Errorf("delete department %d: %w", id, res.Error)
		}
		deleted += res.RowsAffected
	}

	return DeleteResult{
		DepartmentsDeleted: deleted,
		EmployeesDeleted:   employees.RowsAffected,
	}, nil
}

// collectSubtree возвращает id корня и всех его потомков в порядке обхода в глубину
func (r *departmentRepository) collectSubtree(ctx context.Context, rootID int64) ([]int64, error) {
	var order []int64
	visited := map[int64]bool{}
	stack := []int64{rootID}

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if visited[id] {
			return nil, domain.ErrHierarchyCorrupted
		}
		visited[id] = true
		order = append(order, id)

		children, err := r.FetchChildren(ctx, id)
		if err != nil {
			return nil, err
		}
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i].ID)
		}
	}

	return order, nil
}

// DeleteReassign переводит сотрудников подразделения в targetID, делает прямых детей корневыми и удаляет подразделение.
// Существование targetID проверяет вызывающая сторона.
func (r *departmentRepository) DeleteReassign(ctx context.Context, dept *domain.Department, targetID int64) (DeleteResult, error) {
	moved, err := NewEmployeeRepository(r.db).ReassignToDepartment(ctx, dept.ID, targetID)
	if err != nil {
		return DeleteResult{}, err
	}

	db := r.db.WithContext(ctx)

	promoted := db.Model(&domain.Department{}).
		Where("parent_id = ?", dept.ID).
		Update("parent_id", gorm.Expr("NULL"))
	if promoted.Error != nil {
		return DeleteResult{}, fmt.Errorf("detach children of department %d: %w", dept.ID, promoted.Error)
	}

	res := db.Delete(&domain.Department{}, dept.ID)
	if res.Error != nil {
		return DeleteResult{}, fmt.Errorf("delete department %d: %w", dept.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return DeleteResult{}, domain.ErrDepartmentNotFound
	}

	return DeleteResult{
		DepartmentsDeleted: res.RowsAffected,
		EmployeesMoved:     moved,
		ChildrenPromoted:   promoted.RowsAffected,
	}, nil
}

func sameParent(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
