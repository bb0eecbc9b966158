package reports

import "time"

// Snapshot is an employee's most recent observation within a department.
type Snapshot struct {
	EmployeeID string    `json:"employeeId"`
	Name       string    `json:"name"`
	Role       string    `json:"role"`
	Salary     float64   `json:"salary"`
	KPIScore   float64   `json:"kpiScore"`
	Attendance float64   `json:"attendance"`
	PeerReview float64   `json:"peerReview"`
	Date       time.Time `json:"date"`
}
