package reports

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/jung-kurt/gofpdf"

	"smartraise/internal/domain/performance"
	"smartraise/internal/platform/apperr"
)

type SummaryProvider interface {
	DepartmentSummary(ctx context.Context, department string) (performance.DepartmentSummary, error)
}

type Service struct {
	store     StoreAPI
	summaries SummaryProvider
	now       func() time.Time
}

func NewService(store StoreAPI, summaries SummaryProvider) *Service {
	return &Service{store: store, summaries: summaries, now: time.Now}
}

// WriteDepartmentReport renders the department summary and each employee's
// latest metrics as a PDF.
func (s *Service) WriteDepartmentReport(ctx context.Context, department string, w io.Writer) error {
	summary, err := s.summaries.DepartmentSummary(ctx, department)
	if err != nil {
		return err
	}
	snapshots, err := s.store.DepartmentSnapshots(ctx, summary.Department)
	if err != nil {
		return apperr.Upstream(err, "failed to load department snapshots")
	}
	sort.SliceStable(snapshots, func(i, j int) bool {
		return snapshots[i].Name < snapshots[j].Name
	})

	pdf := buildDepartmentPDF(summary, snapshots, s.now().UTC())
	if err := pdf.Output(w); err != nil {
		return apperr.Upstream(err, "failed to render department report")
	}
	return nil
}

var tableColumns = []struct {
	title string
	width float64
}{
	{"Employee", 48},
	{"Role", 38},
	{"KPI", 18},
	{"Attendance", 24},
	{"Peer", 18},
	{"Raise", 24},
}

func buildDepartmentPDF(summary performance.DepartmentSummary, snapshots []Snapshot, generated time.Time) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Department performance: "+summary.Department, true)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Department performance: "+summary.Department)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, "Generated: "+generated.Format("2006-01-02 15:04 MST"))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Records: %d", summary.Count))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Average KPI: %.1f   Attendance: %.1f   Peer review: %.1f",
		summary.AvgKPIScore, summary.AvgAttendance, summary.AvgPeerReview))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 10)
	for _, col := range tableColumns {
		pdf.CellFormat(col.width, 8, col.title, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, snap := range snapshots {
		raise := performance.PredictRaise(snap.KPIScore, snap.Attendance, snap.PeerReview, snap.Salary)
		cells := []string{
			snap.Name,
			snap.Role,
			fmt.Sprintf("%.0f", snap.KPIScore),
			fmt.Sprintf("%.0f", snap.Attendance),
			fmt.Sprintf("%.0f", snap.PeerReview),
			fmt.Sprintf("%.0f", raise),
		}
		for i, col := range tableColumns {
			align := "R"
			if i < 2 {
				align = "L"
			}
			pdf.CellFormat(col.width, 7, cells[i], "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	return pdf
}
