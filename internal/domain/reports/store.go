package reports

import (
	"context"

	"smartraise/internal/platform/db"
)

type StoreAPI interface {
	DepartmentSnapshots(ctx context.Context, department string) ([]Snapshot, error)
}

type Store struct {
	DB db.Querier
}

func NewStore(q db.Querier) *Store {
	return &Store{DB: q}
}

func (s *Store) DepartmentSnapshots(ctx context.Context, department string) ([]Snapshot, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT DISTINCT ON (e.id)
           e.id::text, e.name, e.role, e.salary,
           p.kpi_score, p.attendance, p.peer_review, p.date
    FROM employees e
    JOIN performance_records p ON p.employee_id = e.id
    WHERE e.department = $1
    ORDER BY e.id, p.date DESC
  `, department)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Snapshot, 0)
	for rows.Next() {
		var snap Snapshot
		if err := rows.Scan(&snap.EmployeeID, &snap.Name, &snap.Role, &snap.Salary,
			&snap.KPIScore, &snap.Attendance, &snap.PeerReview, &snap.Date); err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}
