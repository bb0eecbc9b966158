package importer

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"smartraise/internal/domain/employee"
	"smartraise/internal/domain/performance"
	"smartraise/internal/platform/apperr"
)

const (
	colName       = "name"
	colDepartment = "department"
	colRole       = "role"
	colSalary     = "salary"
	colKPIScore   = "kpiscore"
	colAttendance = "attendance"
	colPeerReview = "peerreview"
	colNotes      = "notes"
)

// Row is one decoded data row. Nil fields were absent or blank in the file.
type Row struct {
	Line       int
	Name       string
	Department *string
	Role       *string
	Salary     *float64
	KPIScore   *float64
	Attendance *float64
	PeerReview *float64
	Notes      string
}

// HasMetrics reports whether the row carries a non-zero score.
func (r Row) HasMetrics() bool {
	return nonZero(r.KPIScore) || nonZero(r.Attendance) || nonZero(r.PeerReview)
}

// Metrics fills missing scores with 0.
func (r Row) Metrics() performance.Metrics {
	return performance.Metrics{
		KPIScore:   valueOr(r.KPIScore),
		Attendance: valueOr(r.Attendance),
		PeerReview: valueOr(r.PeerReview),
	}
}

func (r Row) upsert() employee.Upsert {
	return employee.Upsert{Name: r.Name, Department: r.Department, Role: r.Role, Salary: r.Salary}
}

// header maps normalised column names to their cell index.
type header map[string]int

func newHeader(cells []string) header {
	h := make(header, len(cells))
	for i, cell := range cells {
		key := normalizeHeader(cell)
		if key == "" {
			continue
		}
		if _, dup := h[key]; !dup {
			h[key] = i
		}
	}
	return h
}

// normalizeHeader folds "KPI Score", "kpi_score" and "kpiScore" to the same key.
func normalizeHeader(value string) string {
	value = strings.TrimPrefix(value, "\ufeff")
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(value)) {
		switch r {
		case ' ', '_', '-', '\t':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (h header) cell(cells []string, column string) string {
	idx, ok := h[column]
	if !ok || idx >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[idx])
}

func (h header) text(cells []string, column string) *string {
	value := h.cell(cells, column)
	if value == "" {
		return nil
	}
	return &value
}

func (h header) number(cells []string, line int, column string) (*float64, error) {
	raw := h.cell(cells, column)
	if raw == "" {
		return nil, nil
	}
	cleaned := strings.NewReplacer(",", "", " ", "").Replace(raw)
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsInf(value, 0) || math.IsNaN(value) {
		return nil, apperr.Validation("invalid import file", apperr.Issue{
			Field:  fmt.Sprintf("row %d: %s", line, column),
			Reason: fmt.Sprintf("%q is not a number", raw),
		})
	}
	return &value, nil
}

// decode turns raw cells into a Row. line is the 1-based line in the source
// file, header included.
func (h header) decode(cells []string, line int) (Row, error) {
	row := Row{
		Line:       line,
		Name:       h.cell(cells, colName),
		Department: h.text(cells, colDepartment),
		Role:       h.text(cells, colRole),
		Notes:      h.cell(cells, colNotes),
	}
	var err error
	if row.Salary, err = h.number(cells, line, colSalary); err != nil {
		return Row{}, err
	}
	if row.KPIScore, err = h.number(cells, line, colKPIScore); err != nil {
		return Row{}, err
	}
	if row.Attendance, err = h.number(cells, line, colAttendance); err != nil {
		return Row{}, err
	}
	if row.PeerReview, err = h.number(cells, line, colPeerReview); err != nil {
		return Row{}, err
	}
	return row, nil
}

func blank(cells []string) bool {
	for _, cell := range cells {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func nonZero(value *float64) bool {
	return value != nil && *value != 0
}

func valueOr(value *float64) float64 {
	if value == nil {
		return 0
	}
	return *value
}
