package employee

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"smartraise/internal/platform/db"
)

type Store struct {
	DB db.Querier
}

func NewStore(q db.Querier) *Store {
	return &Store{DB: q}
}

const employeeColumns = `id::text, name, department, role, salary, created_at, updated_at`

func (s *Store) CreateEmployee(ctx context.Context, emp Employee) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO employees (id, name, department, role, salary, created_at, updated_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
  `, emp.ID, emp.Name, emp.Department, emp.Role, emp.Salary, emp.CreatedAt, emp.UpdatedAt)
	return err
}

func (s *Store) GetEmployee(ctx context.Context, employeeID string) (Employee, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+employeeColumns+`
    FROM employees
    WHERE id = $1
  `, employeeID)
	emp, err := scanEmployee(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	return emp, err
}

func (s *Store) ListEmployees(ctx context.Context) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+employeeColumns+`
    FROM employees
    ORDER BY name, created_at
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Employee, 0)
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, emp)
	}
	return out, rows.Err()
}

func (s *Store) UpdateEmployee(ctx context.Context, emp Employee) error {
	cmd, err := s.DB.Exec(ctx, `
    UPDATE employees
    SET name = $1,
        department = $2,
        role = $3,
        salary = $4,
        updated_at = $5
    WHERE id = $6
  `, emp.Name, emp.Department, emp.Role, emp.Salary, emp.UpdatedAt, emp.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteEmployee(ctx context.Context, employeeID string) error {
	cmd, err := s.DB.Exec(ctx, `DELETE FROM employees WHERE id = $1`, employeeID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// FindEmployeeByName returns the oldest employee carrying name.
func (s *Store) FindEmployeeByName(ctx context.Context, name string) (Employee, bool, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+employeeColumns+`
    FROM employees
    WHERE name = $1
    ORDER BY created_at
    LIMIT 1
  `, name)
	emp, err := scanEmployee(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, false, nil
	}
	if err != nil {
		return Employee{}, false, err
	}
	return emp, true, nil
}

func scanEmployee(row pgx.Row) (Employee, error) {
	var emp Employee
	err := row.Scan(&emp.ID, &emp.Name, &emp.Department, &emp.Role, &emp.Salary, &emp.CreatedAt, &emp.UpdatedAt)
	return emp, err
}
