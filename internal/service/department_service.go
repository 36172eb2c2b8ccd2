package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/org-hierarchy-api/internal/domain"
	"github.com/org-hierarchy-api/internal/dto"
	"github.com/org-hierarchy-api/internal/metrics"
	"github.com/org-hierarchy-api/internal/repository"
	"github.com/org-hierarchy-api/internal/storage"
	"gorm.io/gorm"
)

// Режимы удаления подразделения
const (
	DeleteModeCascade  = "cascade"
	DeleteModeReassign = "reassign"
)

// DepartmentService определяет интерфейс бизнес-логики для подразделений
type DepartmentService interface {
	Create(ctx context.Context, req *dto.CreateDepartmentRequest) (*domain.Department, error)
	GetTree(ctx context.Context, id int64, query *dto.GetDepartmentQuery) (*domain.DepartmentNode, error)
	Update(ctx context.Context, id int64, req *dto.UpdateDepartmentRequest) (*domain.Department, error)
	Delete(ctx context.Context, id int64, query *dto.DeleteDepartmentQuery) (repository.DeleteResult, error)
}

type departmentService struct {
	gw     *storage.Gateway
	logger *slog.Logger
}

// NewDepartmentService создаёт новый экземпляр сервиса.
// Каждая операция выполняется в собственной транзакции шлюза.
func NewDepartmentService(gw *storage.Gateway, logger *slog.Logger) DepartmentService {
	return &departmentService{
		gw:     gw,
		logger: logger,
	}
}

func (s *departmentService) Create(ctx context.Context, req *dto.CreateDepartmentRequest) (*domain.Department, error) {
	parentID := normalizeParentID(req.ParentID)

	var created *domain.Department
	err := s.gw.Transact(ctx, func(tx *gorm.DB) error {
		depts := repository.NewDepartmentRepository(tx)

		// Проверяем существование родительского подразделения
		if parentID != nil {
			if _, err := depts.Fetch(ctx, *parentID); err != nil {
				return parentLookupError(err)
			}
		}

		var err error
		created, err = depts.Create(ctx, req.Name, parentID)
		return err
	})
	if err != nil {
		s.reject("create_department", err, slog.Any("parent_id", parentID))
		return nil, err
	}

	metrics.ObserveMutation("create_department", "ok")
	s.logger.Info("department created",
		slog.Int64("id", created.ID),
		slog.String("name", created.Name),
		slog.Any("parent_id", created.ParentID),
	)
	return created, nil
}

func (s *departmentService) GetTree(ctx context.Context, id int64, query *dto.GetDepartmentQuery) (*domain.DepartmentNode, error) {
	return s.BuildTree(ctx, id, query.Depth)
}

// BuildTree собирает поддерево глубиной maxDepth уровней, корень считается первым уровнем.
// Дерево читается по уровням: на каждый уровень один запрос детей и один запрос сотрудников.
// Дети последнего уровня не запрашиваются вовсе.
func (s *departmentService) BuildTree(ctx context.Context, rootID int64, maxDepth int) (*domain.DepartmentNode, error) {
	if maxDepth < 1 {
		return nil, domain.NewValidationError("depth must be at least 1")
	}

	var root *domain.DepartmentNode
	err := s.gw.Transact(ctx, func(tx *gorm.DB) error {
		depts := repository.NewDepartmentRepository(tx)
		emps := repository.NewEmployeeRepository(tx)

		dept, err := depts.Fetch(ctx, rootID)
		if err != nil {
			return err
		}

		root = newNode(*dept)
		nodes := map[int64]*domain.DepartmentNode{rootID: root}
		level := []*domain.DepartmentNode{root}

		for remaining := maxDepth; len(level) > 0; remaining-- {
			ids := make([]int64, len(level))
			for i, node := range level {
				ids[i] = node.Department.ID
			}

			employees, err := emps.ListByDepartments(ctx, ids)
			if err != nil {
				return err
			}
			for _, emp := range employees {
				owner := nodes[emp.DepartmentID]
				owner.Employees = append(owner.Employees, emp)
			}

			if remaining == 1 {
				break
			}

			children, err := depts.FetchChildrenOf(ctx, ids)
			if err != nil {
				return err
			}

			next := make([]*domain.DepartmentNode, 0, len(children))
			for _, child := range children {
				if _, seen := nodes[child.ID]; seen {
					return domain.ErrHierarchyCorrupted
				}
				node := newNode(child)
				parent := nodes[*child.ParentID]
				parent.Children = append(parent.Children, node)
				nodes[child.ID] = node
				next = append(next, node)
			}
			level = next
		}

		metrics.ObserveTreeSize(len(nodes))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return root, nil
}

func newNode(dept domain.Department) *domain.DepartmentNode {
	return &domain.DepartmentNode{
		Department: dept,
		Employees:  []domain.Employee{},
		Children:   []*domain.DepartmentNode{},
	}
}

func (s *departmentService) Update(ctx context.Context, id int64, req *dto.UpdateDepartmentRequest) (*domain.Department, error) {
	patch := repository.DepartmentPatch{Name: req.Name}
	if req.ParentID.Set {
		patch.ParentIDSet = true
		patch.ParentID = normalizeParentID(req.ParentID.Value)
	}

	// Проверка: нельзя сделать подразделение родителем самого себя
	if patch.ParentID != nil && *patch.ParentID == id {
		s.reject("update_department", domain.ErrSelfReference, slog.Int64("id", id))
		return nil, domain.ErrSelfReference
	}

	var updated *domain.Department
	err := s.gw.Transact(ctx, func(tx *gorm.DB) error {
		depts := repository.NewDepartmentRepository(tx)

		dept, err := depts.Fetch(ctx, id)
		if err != nil {
			return err
		}

		if patch.ParentID != nil && !sameParentID(dept.ParentID, patch.ParentID) {
			if err := s.checkMove(ctx, depts, id, *patch.ParentID); err != nil {
				return err
			}
		}

		// Уникальность имени под новым родителем проверяет репозиторий
		updated, err = depts.Update(ctx, id, patch)
		return err
	})
	if err != nil {
		s.reject("update_department", err, slog.Int64("id", id))
		return nil, err
	}

	metrics.ObserveMutation("update_department", "ok")
	s.logger.Info("department updated",
		slog.Int64("id", updated.ID),
		slog.String("name", updated.Name),
		slog.Any("parent_id", updated.ParentID),
	)
	return updated, nil
}

// checkMove проверяет, что newParentID существует и не лежит в поддереве перемещаемого подразделения.
// Обход предков ограничен числом подразделений, чтобы уже испорченные данные не зациклили запрос.
func (s *departmentService) checkMove(ctx context.Context, depts repository.DepartmentRepository, id, newParentID int64) error {
	parent, err := depts.Fetch(ctx, newParentID)
	if err != nil {
		return parentLookupError(err)
	}

	limit, err := depts.Count(ctx)
	if err != nil {
		return err
	}

	current := parent
	for steps := int64(0); ; steps++ {
		if current.ID == id {
			return domain.ErrCyclicReference
		}
		if current.ParentID == nil {
			return nil
		}
		if steps >= limit {
			return domain.ErrHierarchyCorrupted
		}

		current, err = depts.Fetch(ctx, *current.ParentID)
		if err != nil {
			return fmt.Errorf("walk ancestors of department %d: %w", newParentID, err)
		}
	}
}

func (s *departmentService) Delete(ctx context.Context, id int64, query *dto.DeleteDepartmentQuery) (repository.DeleteResult, error) {
	mode := query.Mode
	if mode == "" {
		mode = DeleteModeCascade
	}

	if err := validateDeleteRequest(id, mode, query.ReassignToDepartmentID); err != nil {
		s.reject("delete_department", err, slog.Int64("id", id), slog.String("mode", mode))
		return repository.DeleteResult{}, err
	}

	var result repository.DeleteResult
	err := s.gw.Transact(ctx, func(tx *gorm.DB) error {
		depts := repository.NewDepartmentRepository(tx)

		dept, err := depts.Fetch(ctx, id)
		if err != nil {
			return err
		}

		if mode == DeleteModeCascade {
			result, err = depts.DeleteCascade(ctx, dept)
			return err
		}

		targetID := *query.ReassignToDepartmentID
		if _, err := depts.Fetch(ctx, targetID); err != nil {
			if errors.Is(err, domain.ErrDepartmentNotFound) {
				return domain.ErrReassignTargetNotFound
			}
			return err
		}

		if err := ensureChildrenCanBecomeRoots(ctx, depts, dept.ID); err != nil {
			return err
		}

		result, err = depts.DeleteReassign(ctx, dept, targetID)
		return err
	})
	if err != nil {
		s.reject("delete_department", err, slog.Int64("id", id), slog.String("mode", mode))
		return repository.DeleteResult{}, err
	}

	metrics.ObserveMutation("delete_department", "ok")
	metrics.ObserveDeletion(mode, result.DepartmentsDeleted, result.EmployeesDeleted, result.EmployeesMoved)
	s.logger.Info("department deleted",
		slog.Int64("id", id),
		slog.String("mode", mode),
		slog.Int64("departments_deleted", result.DepartmentsDeleted),
		slog.Int64("employees_deleted", result.EmployeesDeleted),
		slog.Int64("employees_moved", result.EmployeesMoved),
		slog.Int64("children_promoted", result.ChildrenPromoted),
	)
	return result, nil
}

func validateDeleteRequest(id int64, mode string, targetID *int64) error {
	switch mode {
	case DeleteModeCascade:
		return nil
	case DeleteModeReassign:
		if targetID == nil {
			return domain.ErrReassignTargetRequired
		}
		// Нельзя переназначить в то же подразделение
		if *targetID == id {
			return domain.ErrCannotReassignToSelf
		}
		return nil
	default:
		return domain.ErrInvalidDeleteMode
	}
}

// ensureChildrenCanBecomeRoots не даёт повысить ребёнка до корня, если среди корней уже есть подразделение с таким именем
func ensureChildrenCanBecomeRoots(ctx context.Context, depts repository.DepartmentRepository, id int64) error {
	children, err := depts.FetchChildren(ctx, id)
	if err != nil {
		return err
	}

	for _, child := range children {
		exists, err := depts.ExistsByNameAndParent(ctx, child.Name, nil, &child.ID)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("promote %q to root: %w", child.Name, domain.ErrDuplicateDepartmentName)
		}
	}
	return nil
}

// reject учитывает отклонённую операцию. Внутренние ошибки логирует транспортный слой.
func (s *departmentService) reject(operation string, err error, attrs ...any) {
	kind := domain.KindOf(err)
	metrics.ObserveMutation(operation, string(kind))
	if kind == domain.KindInternal {
		return
	}

	attrs = append(attrs, slog.String("reason", err.Error()))
	s.logger.Warn(operation+" rejected", attrs...)
}

// normalizeParentID трактует parent_id = 0 как отсутствие родителя
func normalizeParentID(parentID *int64) *int64 {
	if parentID == nil || *parentID == 0 {
		return nil
	}
	return parentID
}

func parentLookupError(err error) error {
	if errors.Is(err, domain.ErrDepartmentNotFound) {
		return domain.ErrParentNotFound
	}
	return err
}

func sameParentID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
