package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/org-hierarchy-api/internal/domain"
	"github.com/org-hierarchy-api/internal/dto"
	"github.com/org-hierarchy-api/internal/metrics"
	"github.com/org-hierarchy-api/internal/repository"
	"github.com/org-hierarchy-api/internal/storage"
	"gorm.io/gorm"
)

// EmployeeService определяет интерфейс бизнес-логики для сотрудников
type EmployeeService interface {
	Create(ctx context.Context, departmentID int64, req *dto.CreateEmployeeRequest) (*domain.Employee, error)
}

type employeeService struct {
	gw     *storage.Gateway
	logger *slog.Logger
}

// NewEmployeeService создаёт новый экземпляр сервиса
func NewEmployeeService(gw *storage.Gateway, logger *slog.Logger) EmployeeService {
	return &employeeService{
		gw:     gw,
		logger: logger,
	}
}

func (s *employeeService) Create(ctx context.Context, departmentID int64, req *dto.CreateEmployeeRequest) (*domain.Employee, error) {
	var hiredAt *time.Time
	if req.HiredAt != nil {
		parsed, err := time.Parse(time.DateOnly, *req.HiredAt)
		if err != nil {
			return nil, domain.NewValidationError("hired_at must be in YYYY-MM-DD format")
		}
		hiredAt = &parsed
	}

	var created *domain.Employee
	err := s.gw.Transact(ctx, func(tx *gorm.DB) error {
		// Проверяем существование подразделения
		if _, err := repository.NewDepartmentRepository(tx).Fetch(ctx, departmentID); err != nil {
			return err
		}

		var err error
		created, err = repository.NewEmployeeRepository(tx).Create(ctx, departmentID, req.FullName, req.Position, hiredAt)
		return err
	})
	if err != nil {
		kind := domain.KindOf(err)
		metrics.ObserveMutation("create_employee", string(kind))
		if kind != domain.KindInternal {
			s.logger.Warn("create_employee rejected",
				slog.Int64("department_id", departmentID),
				slog.String("reason", err.Error()),
			)
		}
		return nil, err
	}

	metrics.ObserveMutation("create_employee", "ok")
	s.logger.Info("employee created",
		slog.Int64("id", created.ID),
		slog.Int64("department_id", departmentID),
	)
	return created, nil
}
