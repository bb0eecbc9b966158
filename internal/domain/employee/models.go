package employee

import (
	"strings"
	"time"
)

type Employee struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Department string    `json:"department"`
	Role       string    `json:"role"`
	Salary     float64   `json:"salary"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Input is the payload for creating an employee.
type Input struct {
	Name       string   `json:"name" validate:"notblank"`
	Department string   `json:"department" validate:"notblank"`
	Role       string   `json:"role" validate:"notblank"`
	Salary     *float64 `json:"salary" validate:"required,gte=0"`
}

// Patch carries a partial update; nil fields are left untouched.
type Patch struct {
	Name       *string  `json:"name" validate:"omitnil,notblank"`
	Department *string  `json:"department" validate:"omitnil,notblank"`
	Role       *string  `json:"role" validate:"omitnil,notblank"`
	Salary     *float64 `json:"salary" validate:"omitnil,gte=0"`
}

func (p Patch) Empty() bool {
	return p.Name == nil && p.Department == nil && p.Role == nil && p.Salary == nil
}

// Apply copies the present fields of p onto emp.
func (p Patch) Apply(emp *Employee) {
	if p.Name != nil {
		emp.Name = *p.Name
	}
	if p.Department != nil {
		emp.Department = *p.Department
	}
	if p.Role != nil {
		emp.Role = *p.Role
	}
	if p.Salary != nil {
		emp.Salary = *p.Salary
	}
}

func (p Patch) trimmed() Patch {
	return Patch{
		Name:       trimPtr(p.Name),
		Department: trimPtr(p.Department),
		Role:       trimPtr(p.Role),
		Salary:     p.Salary,
	}
}

func trimPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	return &trimmed
}
