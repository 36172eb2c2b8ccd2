package seed

import (
	"context"
	"fmt"

	"github.com/org-hierarchy-api/internal/domain"
	"github.com/org-hierarchy-api/internal/dto"
	"github.com/org-hierarchy-api/internal/service"
	"github.com/org-hierarchy-api/internal/storage"
	"gorm.io/gorm"
)

type employee struct {
	FullName string
	Position string
	HiredAt  string
}

type department struct {
	Name      string
	Employees []employee
	Children  []department
}

// sample - демонстрационная структура компании
var sample = department{
	Name: "Компания",
	Children: []department{
		{
			Name: "IT",
			Employees: []employee{
				{"Иван Иванов", "Программист", "2023-01-10"},
				{"Петр Петров", "Тестировщик", "2023-02-15"},
			},
			Children: []department{
				{
					Name: "Backend",
					Employees: []employee{
						{"Сергей Смирнов", "Backend-разработчик", "2023-03-01"},
						{"Дмитрий Козлов", "DevOps", "2023-04-12"},
					},
				},
				{
					Name: "Frontend",
					Employees: []employee{
						{"Елена Новикова", "Frontend-разработчик", "2023-05-20"},
					},
				},
			},
		},
		{
			Name: "HR",
			Employees: []employee{
				{"Анна Сергеева", "HR-менеджер", "2022-11-20"},
			},
		},
		{Name: "Бухгалтерия"},
	},
}

// Stats - сколько записей создал сид
type Stats struct {
	Departments int
	Employees   int
}

// Run создаёт демонстрационную структуру через сервисы, поэтому на данные распространяются все проверки API
func Run(ctx context.Context, depts service.DepartmentService, emps service.EmployeeService) (Stats, error) {
	var stats Stats
	if err := create(ctx, depts, emps, sample, nil, &stats); err != nil {
		return stats, err
	}
	return stats, nil
}

func create(ctx context.Context, depts service.DepartmentService, emps service.EmployeeService, node department, parentID *int64, stats *Stats) error {
	dept, err := depts.Create(ctx, &dto.CreateDepartmentRequest{Name: node.Name, ParentID: parentID})
	if err != nil {
		return fmt.Errorf("seed department %q: %w", node.Name, err)
	}
	stats.Departments++

	for _, e := range node.Employees {
		hiredAt := e.HiredAt
		_, err := emps.Create(ctx, dept.ID, &dto.CreateEmployeeRequest{
			FullName: e.FullName,
			Position: e.Position,
			HiredAt:  &hiredAt,
		})
		if err != nil {
			return fmt.Errorf("seed employee %q: %w", e.FullName, err)
		}
		stats.Employees++
	}

	for _, child := range node.Children {
		if err := create(ctx, depts, emps, child, &dept.ID, stats); err != nil {
			return err
		}
	}
	return nil
}

// Clear удаляет всех сотрудников и все подразделения одной транзакцией
func Clear(ctx context.Context, gw *storage.Gateway) error {
	return gw.Transact(ctx, func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&domain.Employee{}).Error; err != nil {
			return fmt.Errorf("clear employees: %w", err)
		}
		// parent_id обнуляется заранее, чтобы порядок удаления строк не нарушал внешний ключ
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Model(&domain.Department{}).Update("parent_id", gorm.Expr("NULL")).Error; err != nil {
			return fmt.Errorf("detach departments: %w", err)
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&domain.Department{}).Error; err != nil {
			return fmt.Errorf("clear departments: %w", err)
		}
		return nil
	})
}
