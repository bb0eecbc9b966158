package performance

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

// Records are joined to employees with a LEFT JOIN so orphaned history still
// lists, just without an embedded employee.
const recordSelect = `
    SELECT p.id::text, p.employee_id::text, p.kpi_score, p.attendance, p.peer_review, p.date, COALESCE(p.notes, ''),
           e.id::text, e.name, e.department, e.role
    FROM performance_records p
    LEFT JOIN employees e ON e.id = p.employee_id
`

func (s *Store) CreateRecord(ctx context.Context, rec Record) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO performance_records (id, employee_id, kpi_score, attendance, peer_review, date, notes)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
  `, rec.ID, rec.EmployeeID, rec.KPIScore, rec.Attendance, rec.PeerReview, rec.Date, nullIfEmpty(rec.Notes))
	return err
}

func (s *Store) GetRecord(ctx context.Context, recordID string) (Record, error) {
	row := s.DB.QueryRow(ctx, recordSelect+` WHERE p.id = $1`, recordID)
	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return rec, err
}

func (s *Store) ListRecords(ctx context.Context) ([]Record, error) {
	return s.queryRecords(ctx, recordSelect+` ORDER BY p.date DESC`)
}

func (s *Store) ListRecordsByEmployee(ctx context.Context, employeeID string) ([]Record, error) {
	return s.queryRecords(ctx, recordSelect+` WHERE p.employee_id = $1 ORDER BY p.date DESC`, employeeID)
}

func (s *Store) UpdateRecord(ctx context.Context, rec Record) error {
	cmd, err := s.DB.Exec(ctx, `
    UPDATE performance_records
    SET kpi_score = $1,
        attendance = $2,
        peer_review = $3,
        date = $4,
        notes = $5
    WHERE id = $6
  `, rec.KPIScore, rec.Attendance, rec.PeerReview, rec.Date, nullIfEmpty(rec.Notes), rec.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteRecord(ctx context.Context, recordID string) error {
	cmd, err := s.DB.Exec(ctx, `DELETE FROM performance_records WHERE id = $1`, recordID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DepartmentAggregate(ctx context.Context, department string) (DepartmentSummary, error) {
	var summary DepartmentSummary
	err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(AVG(p.kpi_score), 0),
           COALESCE(AVG(p.attendance), 0),
           COALESCE(AVG(p.peer_review), 0),
           COUNT(p.id)
    FROM performance_records p
    JOIN employees e ON e.id = p.employee_id
    WHERE e.department = $1
  `, department).Scan(&summary.AvgKPIScore, &summary.AvgAttendance, &summary.AvgPeerReview, &summary.Count)
	if err != nil {
		return DepartmentSummary{}, err
	}
	summary.Department = department
	return summary, nil
}

func (s *Store) queryRecords(ctx context.Context, sql string, args ...any) ([]Record, error) {
	rows, err := s.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	var empID, empName, empDepartment, empRole *string
	err := row.Scan(
		&rec.ID, &rec.EmployeeID, &rec.KPIScore, &rec.Attendance, &rec.PeerReview, &rec.Date, &rec.Notes,
		&empID, &empName, &empDepartment, &empRole,
	)
	if err != nil {
		return Record{}, err
	}
	if empID != nil {
		rec.Employee = &EmployeeRef{ID: *empID, Name: deref(empName), Department: deref(empDepartment), Role: deref(empRole)}
	}
	return rec, nil
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
