// Package memstore keeps employees, performance records and users in process
// memory. It backs STORAGE_DRIVER=memory and the service tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"

	"smartraise/internal/domain/auth"
	"smartraise/internal/domain/employee"
	"smartraise/internal/domain/performance"
	"smartraise/internal/domain/reports"
)

type Store struct {
	mu        sync.RWMutex
	employees map[string]employee.Employee
	records   map[string]performance.Record
	users     map[string]auth.User
}

func New() *Store {
	return &Store{
		employees: make(map[string]employee.Employee),
		records:   make(map[string]performance.Record),
		users:     make(map[string]auth.User),
	}
}

func (s *Store) CreateEmployee(_ context.Context, emp employee.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[emp.ID] = emp
	return nil
}

func (s *Store) GetEmployee(_ context.Context, employeeID string) (employee.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	emp, ok := s.employees[employeeID]
	if !ok {
		return employee.Employee{}, employee.ErrNotFound
	}
	return emp, nil
}

func (s *Store) ListEmployees(_ context.Context) ([]employee.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]employee.Employee, 0, len(s.employees))
	for _, emp := range s.employees {
		out = append(out, emp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *Store) UpdateEmployee(_ context.Context, emp employee.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.employees[emp.ID]; !ok {
		return employee.ErrNotFound
	}
	s.employees[emp.ID] = emp
	return nil
}

func (s *Store) DeleteEmployee(_ context.Context, employeeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.employees[employeeID]; !ok {
		return employee.ErrNotFound
	}
	delete(s.employees, employeeID)
	return nil
}

func (s *Store) FindEmployeeByName(_ context.Context, name string) (employee.Employee, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var match employee.Employee
	found := false
	for _, emp := range s.employees {
		if emp.Name != name {
			continue
		}
		if !found || emp.CreatedAt.Before(match.CreatedAt) {
			match = emp
			found = true
		}
	}
	return match, found, nil
}

func (s *Store) CreateRecord(_ context.Context, rec performance.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.Employee = nil
	s.records[rec.ID] = rec
	return nil
}

func (s *Store) GetRecord(_ context.Context, recordID string) (performance.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[recordID]
	if !ok {
		return performance.Record{}, performance.ErrNotFound
	}
	return s.withEmployee(rec), nil
}

func (s *Store) ListRecords(_ context.Context) ([]performance.Record, error) {
	return s.filterRecords(func(performance.Record) bool { return true }), nil
}

func (s *Store) ListRecordsByEmployee(_ context.Context, employeeID string) ([]performance.Record, error) {
	return s.filterRecords(func(rec performance.Record) bool { return rec.EmployeeID == employeeID }), nil
}

func (s *Store) UpdateRecord(_ context.Context, rec performance.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[rec.ID]; !ok {
		return performance.ErrNotFound
	}
	rec.Employee = nil
	s.records[rec.ID] = rec
	return nil
}

func (s *Store) DeleteRecord(_ context.Context, recordID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[recordID]; !ok {
		return performance.ErrNotFound
	}
	delete(s.records, recordID)
	return nil
}

func (s *Store) DepartmentAggregate(_ context.Context, department string) (performance.DepartmentSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	summary := performance.DepartmentSummary{Department: department}
	var kpi, attendance, peer float64
	for _, rec := range s.records {
		emp, ok := s.employees[rec.EmployeeID]
		if !ok || emp.Department != department {
			continue
		}
		kpi += rec.KPIScore
		attendance += rec.Attendance
		peer += rec.PeerReview
		summary.Count++
	}
	if summary.Count > 0 {
		n := float64(summary.Count)
		summary.AvgKPIScore = kpi / n
		summary.AvgAttendance = attendance / n
		summary.AvgPeerReview = peer / n
	}
	return summary, nil
}

func (s *Store) DepartmentSnapshots(_ context.Context, department string) ([]reports.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	latest := make(map[string]performance.Record)
	for _, rec := range s.records {
		emp, ok := s.employees[rec.EmployeeID]
		if !ok || emp.Department != department {
			continue
		}
		if current, seen := latest[emp.ID]; !seen || rec.Date.After(current.Date) {
			latest[emp.ID] = rec
		}
	}
	out := make([]reports.Snapshot, 0, len(latest))
	for employeeID, rec := range latest {
		emp := s.employees[employeeID]
		out = append(out, reports.Snapshot{
			EmployeeID: emp.ID,
			Name:       emp.Name,
			Role:       emp.Role,
			Salary:     emp.Salary,
			KPIScore:   rec.KPIScore,
			Attendance: rec.Attendance,
			PeerReview: rec.PeerReview,
			Date:       rec.Date,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out, nil
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return auth.User{}, auth.ErrUserNotFound
}

func (s *Store) GetUser(_ context.Context, userID string) (auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[userID]
	if !ok {
		return auth.User{}, auth.ErrUserNotFound
	}
	return user, nil
}

func (s *Store) CreateUser(_ context.Context, user auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
	return nil
}

// Ping satisfies the readiness probe.
func (s *Store) Ping(context.Context) error {
	return nil
}

func (s *Store) filterRecords(keep func(performance.Record) bool) []performance.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]performance.Record, 0)
	for _, rec := range s.records {
		if keep(rec) {
			out = append(out, s.withEmployee(rec))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID < out[j].ID
		}
		return out[i].Date.After(out[j].Date)
	})
	return out
}

func (s *Store) withEmployee(rec performance.Record) performance.Record {
	if emp, ok := s.employees[rec.EmployeeID]; ok {
		rec.Employee = &performance.EmployeeRef{ID: emp.ID, Name: emp.Name, Department: emp.Department, Role: emp.Role}
	}
	return rec
}

var (
	_ employee.StoreAPI    = (*Store)(nil)
	_ performance.StoreAPI = (*Store)(nil)
	_ reports.StoreAPI     = (*Store)(nil)
	_ auth.StoreAPI        = (*Store)(nil)
)
