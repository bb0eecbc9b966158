package employee

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"smartraise/internal/platform/apperr"
	"smartraise/internal/platform/validate"
)

// SummaryInvalidator drops cached department aggregates after writes that
// can move a record between departments.
type SummaryInvalidator interface {
	InvalidateSummaries(ctx context.Context) error
}

type Service struct {
	store       StoreAPI
	invalidator SummaryInvalidator
	now         func() time.Time
}

func NewService(store StoreAPI, invalidator SummaryInvalidator) *Service {
	return &Service{store: store, invalidator: invalidator, now: time.Now}
}

func (s *Service) Create(ctx context.Context, in Input) (Employee, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Department = strings.TrimSpace(in.Department)
	in.Role = strings.TrimSpace(in.Role)
	if err := validate.Struct(in, "invalid employee"); err != nil {
		return Employee{}, err
	}

	now := s.now().UTC()
	emp := Employee{
		ID:         uuid.NewString(),
		Name:       in.Name,
		Department: in.Department,
		Role:       in.Role,
		Salary:     *in.Salary,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.CreateEmployee(ctx, emp); err != nil {
		return Employee{}, apperr.Upstream(err, "failed to create employee")
	}
	return emp, nil
}

func (s *Service) Get(ctx context.Context, employeeID string) (Employee, error) {
	if !validID(employeeID) {
		return Employee{}, apperr.NotFound("employee not found")
	}
	emp, err := s.store.GetEmployee(ctx, employeeID)
	if errors.Is(err, ErrNotFound) {
		return Employee{}, apperr.NotFound("employee not found")
	}
	if err != nil {
		return Employee{}, apperr.Upstream(err, "failed to fetch employee")
	}
	return emp, nil
}

func (s *Service) List(ctx context.Context) ([]Employee, error) {
	employees, err := s.store.ListEmployees(ctx)
	if err != nil {
		return nil, apperr.Upstream(err, "failed to list employees")
	}
	return employees, nil
}

func (s *Service) Update(ctx context.Context, employeeID string, patch Patch) (Employee, error) {
	patch = patch.trimmed()
	if err := validate.Struct(patch, "invalid employee"); err != nil {
		return Employee{}, err
	}

	emp, err := s.Get(ctx, employeeID)
	if err != nil {
		return Employee{}, err
	}
	if patch.Empty() {
		return emp, nil
	}

	patch.Apply(&emp)
	emp.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateEmployee(ctx, emp); err != nil {
		if errors.Is(err, ErrNotFound) {
			return Employee{}, apperr.NotFound("employee not found")
		}
		return Employee{}, apperr.Upstream(err, "failed to update employee")
	}
	s.invalidate(ctx)
	return emp, nil
}

// Delete removes the employee only. Performance history is kept and shows up
// as orphaned records.
func (s *Service) Delete(ctx context.Context, employeeID string) error {
	if !validID(employeeID) {
		return apperr.NotFound("employee not found")
	}
	err := s.store.DeleteEmployee(ctx, employeeID)
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("employee not found")
	}
	if err != nil {
		return apperr.Upstream(err, "failed to delete employee")
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) FindByName(ctx context.Context, name string) (Employee, bool, error) {
	emp, found, err := s.store.FindEmployeeByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return Employee{}, false, apperr.Upstream(err, "failed to look up employee")
	}
	return emp, found, nil
}

// Upsert describes an import row's employee fields. Name is the match key;
// nil fields keep their stored value on update.
type Upsert struct {
	Name       string
	Department *string
	Role       *string
	Salary     *float64
}

// UpsertByName updates the employee named u.Name in place or inserts a new one.
// It does not invalidate cached summaries; bulk callers do that once when done.
func (s *Service) UpsertByName(ctx context.Context, u Upsert) (Employee, bool, error) {
	name := strings.TrimSpace(u.Name)
	if name == "" {
		return Employee{}, false, apperr.Validation("invalid employee", apperr.Issue{Field: "name", Reason: "is required"})
	}

	existing, found, err := s.FindByName(ctx, name)
	if err != nil {
		return Employee{}, false, err
	}

	if !found {
		salary := 0.0
		if u.Salary != nil {
			salary = *u.Salary
		}
		created, err := s.Create(ctx, Input{
			Name:       name,
			Department: deref(u.Department),
			Role:       deref(u.Role),
			Salary:     &salary,
		})
		if err != nil {
			return Employee{}, false, err
		}
		return created, true, nil
	}

	patch := Patch{Department: u.Department, Role: u.Role, Salary: u.Salary}.trimmed()
	if err := validate.Struct(patch, "invalid employee"); err != nil {
		return Employee{}, false, err
	}
	if patch.Empty() {
		return existing, false, nil
	}
	patch.Apply(&existing)
	existing.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateEmployee(ctx, existing); err != nil {
		return Employee{}, false, apperr.Upstream(err, "failed to update employee")
	}
	return existing, false, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.InvalidateSummaries(ctx); err != nil {
		slog.Warn("department summary invalidation failed", "err", err)
	}
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
