package performance

import "time"

// EmployeeRef is the owning employee embedded in record read models. It is
// nil when the employee has since been deleted.
type EmployeeRef struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Role       string `json:"role"`
}

type Record struct {
	ID         string       `json:"id"`
	EmployeeID string       `json:"employeeId"`
	KPIScore   float64      `json:"kpiScore"`
	Attendance float64      `json:"attendance"`
	PeerReview float64      `json:"peerReview"`
	Date       time.Time    `json:"date"`
	Notes      string       `json:"notes,omitempty"`
	Employee   *EmployeeRef `json:"employee,omitempty"`
}

// Input is the payload for recording a new observation.
type Input struct {
	EmployeeID string     `json:"employeeId" validate:"notblank"`
	KPIScore   *float64   `json:"kpiScore" validate:"required,score"`
	Attendance *float64   `json:"attendance" validate:"required,score"`
	PeerReview *float64   `json:"peerReview" validate:"required,score"`
	Date       *time.Time `json:"date"`
	Notes      string     `json:"notes"`
}

// Patch is a partial update. A non-nil field is applied even when it holds
// the zero value.
type Patch struct {
	KPIScore   *float64   `json:"kpiScore" validate:"omitnil,score"`
	Attendance *float64   `json:"attendance" validate:"omitnil,score"`
	PeerReview *float64   `json:"peerReview" validate:"omitnil,score"`
	Date       *time.Time `json:"date"`
	Notes      *string    `json:"notes"`
}

func (p Patch) Apply(rec *Record) {
	if p.KPIScore != nil {
		rec.KPIScore = *p.KPIScore
	}
	if p.Attendance != nil {
		rec.Attendance = *p.Attendance
	}
	if p.PeerReview != nil {
		rec.PeerReview = *p.PeerReview
	}
	if p.Date != nil {
		rec.Date = p.Date.UTC()
	}
	if p.Notes != nil {
		rec.Notes = *p.Notes
	}
}

// Metrics are the three scores of an observation, used by the import path.
type Metrics struct {
	KPIScore   float64 `json:"kpiScore" validate:"score"`
	Attendance float64 `json:"attendance" validate:"score"`
	PeerReview float64 `json:"peerReview" validate:"score"`
}

type DepartmentSummary struct {
	Department    string  `json:"department"`
	AvgKPIScore   float64 `json:"avgKpiScore"`
	AvgAttendance float64 `json:"avgAttendance"`
	AvgPeerReview float64 `json:"avgPeerReview"`
	Count         int     `json:"count"`
}

type PredictionInput struct {
	KPIScore      *float64 `json:"kpiScore" validate:"required,score"`
	Attendance    *float64 `json:"attendance" validate:"required,score"`
	PeerReview    *float64 `json:"peerReview" validate:"required,score"`
	CurrentSalary *float64 `json:"currentSalary" validate:"required,gte=0"`
}

type Prediction struct {
	PerformanceScore float64 `json:"performanceScore"`
	SuggestedRaise   float64 `json:"suggestedRaise"`
}
