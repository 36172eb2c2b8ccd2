package domain

import (
	"time"
)

// MaxTextLength - максимальная длина названий и строковых полей сотрудника (в символах)
const MaxTextLength = 200

// Department представляет подразделение организации
type Department struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"type:varchar(200);not null"`
	ParentID  *int64    `json:"parent_id" gorm:"index"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	Children  []Department `json:"-" gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE"`
	Employees []Employee   `json:"-" gorm:"foreignKey:DepartmentID;constraint:OnDelete:CASCADE"`
}

// TableName задаёт имя таблицы для GORM
func (Department) TableName() string {
	return "departments"
}

// IsRoot сообщает, что у подразделения нет родителя
func (d *Department) IsRoot() bool {
	return d.ParentID == nil
}

// Employee представляет сотрудника
type Employee struct {
	ID           int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	DepartmentID int64      `json:"department_id" gorm:"not null;index"`
	FullName     string     `json:"full_name" gorm:"type:varchar(200);not null"`
	Position     string     `json:"position" gorm:"type:varchar(200);not null"`
	HiredAt      *time.Time `json:"hired_at" gorm:"type:date"`
	CreatedAt    time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

// TableName задаёт имя таблицы для GORM
func (Employee) TableName() string {
	return "employees"
}

// DepartmentNode - узел поддерева: подразделение, его сотрудники и раскрытые дочерние узлы
type DepartmentNode struct {
	Department Department
	Employees  []Employee
	Children   []*DepartmentNode
}
