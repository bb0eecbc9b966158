package employee

import "context"

type StoreAPI interface {
	CreateEmployee(ctx context.Context, emp Employee) error
	GetEmployee(ctx context.Context, employeeID string) (Employee, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
	UpdateEmployee(ctx context.Context, emp Employee) error
	DeleteEmployee(ctx context.Context, employeeID string) error
	FindEmployeeByName(ctx context.Context, name string) (Employee, bool, error)
}
