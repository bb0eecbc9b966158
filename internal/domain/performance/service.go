package performance

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"smartraise/internal/domain/employee"
	"smartraise/internal/platform/apperr"
	"smartraise/internal/platform/validate"
)

// EmployeeDirectory resolves record owners.
type EmployeeDirectory interface {
	Get(ctx context.Context, employeeID string) (employee.Employee, error)
}

// SummaryCache holds department aggregates between writes.
type SummaryCache interface {
	GetSummary(ctx context.Context, department string, dst any) (generation string, hit bool, err error)
	SetSummary(ctx context.Context, generation, department string, value any) error
	InvalidateSummaries(ctx context.Context) error
}

type Service struct {
	store     StoreAPI
	employees EmployeeDirectory
	cache     SummaryCache
	group     singleflight.Group
	now       func() time.Time
}

// NewService wires the record store. cache may be nil.
func NewService(store StoreAPI, employees EmployeeDirectory, cache SummaryCache) *Service {
	return &Service{store: store, employees: employees, cache: cache, now: time.Now}
}

func (s *Service) Create(ctx context.Context, in Input) (Record, error) {
	in.EmployeeID = strings.TrimSpace(in.EmployeeID)
	if err := validate.Struct(in, "invalid performance record"); err != nil {
		return Record{}, err
	}

	emp, err := s.employees.Get(ctx, in.EmployeeID)
	if err != nil {
		return Record{}, err
	}

	date := s.now().UTC()
	if in.Date != nil && !in.Date.IsZero() {
		date = in.Date.UTC()
	}
	rec := Record{
		ID:         uuid.NewString(),
		EmployeeID: emp.ID,
		KPIScore:   *in.KPIScore,
		Attendance: *in.Attendance,
		PeerReview: *in.PeerReview,
		Date:       date,
		Notes:      strings.TrimSpace(in.Notes),
	}
	if err := s.store.CreateRecord(ctx, rec); err != nil {
		return Record{}, apperr.Upstream(err, "failed to create performance record")
	}
	rec.Employee = refOf(emp)
	s.InvalidateSummaries(ctx)
	return rec, nil
}

// Append stores an imported observation dated now. The caller guarantees
// employeeID exists; cached summaries are left for the caller to invalidate.
func (s *Service) Append(ctx context.Context, employeeID string, m Metrics, notes string) (Record, error) {
	if err := validate.Struct(m, "invalid performance record"); err != nil {
		return Record{}, err
	}
	rec := Record{
		ID:         uuid.NewString(),
		EmployeeID: employeeID,
		KPIScore:   m.KPIScore,
		Attendance: m.Attendance,
		PeerReview: m.PeerReview,
		Date:       s.now().UTC(),
		Notes:      strings.TrimSpace(notes),
	}
	if err := s.store.CreateRecord(ctx, rec); err != nil {
		return Record{}, apperr.Upstream(err, "failed to create performance record")
	}
	return rec, nil
}

func (s *Service) Get(ctx context.Context, recordID string) (Record, error) {
	if !validID(recordID) {
		return Record{}, apperr.NotFound("performance record not found")
	}
	rec, err := s.store.GetRecord(ctx, recordID)
	if errors.Is(err, ErrNotFound) {
		return Record{}, apperr.NotFound("performance record not found")
	}
	if err != nil {
		return Record{}, apperr.Upstream(err, "failed to fetch performance record")
	}
	return rec, nil
}

func (s *Service) List(ctx context.Context) ([]Record, error) {
	records, err := s.store.ListRecords(ctx)
	if err != nil {
		return nil, apperr.Upstream(err, "failed to list performance records")
	}
	return records, nil
}

// ListByEmployee returns the employee's records, newest first. Unknown or
// malformed ids yield an empty list.
func (s *Service) ListByEmployee(ctx context.Context, employeeID string) ([]Record, error) {
	if !validID(employeeID) {
		return []Record{}, nil
	}
	records, err := s.store.ListRecordsByEmployee(ctx, employeeID)
	if err != nil {
		return nil, apperr.Upstream(err, "failed to list performance records")
	}
	return records, nil
}

func (s *Service) Update(ctx context.Context, recordID string, patch Patch) (Record, error) {
	if err := validate.Struct(patch, "invalid performance record"); err != nil {
		return Record{}, err
	}
	rec, err := s.Get(ctx, recordID)
	if err != nil {
		return Record{}, err
	}

	patch.Apply(&rec)
	if patch.Notes != nil {
		rec.Notes = strings.TrimSpace(rec.Notes)
	}
	if err := s.store.UpdateRecord(ctx, rec); err != nil {
		if errors.Is(err, ErrNotFound) {
			return Record{}, apperr.NotFound("performance record not found")
		}
		return Record{}, apperr.Upstream(err, "failed to update performance record")
	}
	s.InvalidateSummaries(ctx)
	return rec, nil
}

func (s *Service) Delete(ctx context.Context, recordID string) error {
	if !validID(recordID) {
		return apperr.NotFound("performance record not found")
	}
	err := s.store.DeleteRecord(ctx, recordID)
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("performance record not found")
	}
	if err != nil {
		return apperr.Upstream(err, "failed to delete performance record")
	}
	s.InvalidateSummaries(ctx)
	return nil
}

// DepartmentSummary averages every record whose owning employee currently
// belongs to department.
func (s *Service) DepartmentSummary(ctx context.Context, department string) (DepartmentSummary, error) {
	department = strings.TrimSpace(department)
	if department == "" {
		return DepartmentSummary{}, apperr.Validation("invalid department", apperr.Issue{Field: "department", Reason: "is required"})
	}

	// gen stays empty when the cache is absent or unreadable; nothing is
	// written back then.
	var gen string
	if s.cache != nil {
		var cached DepartmentSummary
		g, hit, err := s.cache.GetSummary(ctx, department, &cached)
		if err != nil {
			slog.Warn("department summary cache read failed", "department", department, "err", err)
		}
		if hit {
			return cached, nil
		}
		if err == nil {
			gen = g
		}
	}

	v, err, _ := s.group.Do(gen+":"+department, func() (any, error) {
		fillCtx := context.WithoutCancel(ctx)
		summary, err := s.store.DepartmentAggregate(fillCtx, department)
		if err != nil {
			return DepartmentSummary{}, apperr.Upstream(err, "failed to aggregate department performance")
		}
		summary.Department = department
		if summary.Count == 0 || gen == "" {
			return summary, nil
		}
		if err := s.cache.SetSummary(fillCtx, gen, department, summary); err != nil {
			slog.Warn("department summary cache write failed", "department", department, "err", err)
		}
		return summary, nil
	})
	if err != nil {
		return DepartmentSummary{}, err
	}
	summary := v.(DepartmentSummary)
	if summary.Count == 0 {
		return DepartmentSummary{}, apperr.NotFound("no performance data found for this department")
	}
	return summary, nil
}

// InvalidateSummaries drops cached department aggregates. Failures are logged.
func (s *Service) InvalidateSummaries(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateSummaries(ctx); err != nil {
		slog.Warn("department summary invalidation failed", "err", err)
	}
}

func refOf(emp employee.Employee) *EmployeeRef {
	return &EmployeeRef{ID: emp.ID, Name: emp.Name, Department: emp.Department, Role: emp.Role}
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
