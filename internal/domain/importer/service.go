// Package importer reconciles spreadsheet and CSV uploads into employees and
// performance records.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"smartraise/internal/domain/employee"
	"smartraise/internal/domain/performance"
	"smartraise/internal/platform/apperr"
)

type EmployeeUpserter interface {
	UpsertByName(ctx context.Context, u employee.Upsert) (employee.Employee, bool, error)
}

type RecordAppender interface {
	Append(ctx context.Context, employeeID string, m performance.Metrics, notes string) (performance.Record, error)
	InvalidateSummaries(ctx context.Context)
}

// Recorder observes finished imports. Implemented by the metrics collector.
type Recorder interface {
	ObserveImport(format string, rows int, duration time.Duration, err error)
}

type Result struct {
	RowsImported     int `json:"rowsImported"`
	EmployeesCreated int `json:"employeesCreated"`
	RecordsCreated   int `json:"recordsCreated"`
}

type Reconciler struct {
	employees EmployeeUpserter
	records   RecordAppender
	recorder  Recorder
}

func NewReconciler(employees EmployeeUpserter, records RecordAppender) *Reconciler {
	return &Reconciler{employees: employees, records: records}
}

// WithRecorder attaches an import observer.
func (r *Reconciler) WithRecorder(recorder Recorder) *Reconciler {
	r.recorder = recorder
	return r
}

// Import applies every data row of the file at path, in order. originalName
// decides the format. The file is removed when Import returns. Rows applied
// before a failure stay applied.
func (r *Reconciler) Import(ctx context.Context, path, originalName string) (result Result, err error) {
	start := time.Now()
	defer removeUpload(path)

	format, ok := FormatOf(originalName)
	if !ok {
		return Result{}, apperr.Validation("only Excel and CSV files are allowed",
			apperr.Issue{Field: "file", Reason: "must be .xlsx, .xls or .csv"})
	}

	defer func() {
		r.records.InvalidateSummaries(context.WithoutCancel(ctx))
		if r.recorder != nil {
			r.recorder.ObserveImport(format, result.RowsImported, time.Since(start), err)
		}
		if err != nil {
			slog.Warn("import aborted", "file", originalName, "rows", result.RowsImported, "err", err)
			return
		}
		slog.Info("import finished", "file", originalName, "rows", result.RowsImported,
			"employees_created", result.EmployeesCreated, "records_created", result.RecordsCreated)
	}()

	src, err := openSource(path, format)
	if err != nil {
		return Result{}, apperr.Upstream(err, "error processing file")
	}
	defer func() { _ = src.Close() }()

	return r.apply(ctx, src)
}

func (r *Reconciler) apply(ctx context.Context, src source) (Result, error) {
	var result Result

	first, _, err := src.Next()
	if errors.Is(err, io.EOF) {
		return result, nil
	}
	if err != nil {
		return result, apperr.Upstream(err, "error processing file")
	}
	head := newHeader(first)

	for {
		cells, line, err := src.Next()
		if errors.Is(err, io.EOF) {
			return result, nil
		}
		if err != nil {
			return result, apperr.Upstream(err, "error processing file")
		}
		if blank(cells) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, apperr.Upstream(err, "import cancelled")
		}

		row, err := head.decode(cells, line)
		if err != nil {
			return result, err
		}
		if err := r.applyRow(ctx, row, &result); err != nil {
			return result, err
		}
		result.RowsImported++
	}
}

func (r *Reconciler) applyRow(ctx context.Context, row Row, result *Result) error {
	emp, created, err := r.employees.UpsertByName(ctx, row.upsert())
	if err != nil {
		return rowError(err, row.Line)
	}
	if created {
		result.EmployeesCreated++
	}
	if !row.HasMetrics() {
		return nil
	}
	if _, err := r.records.Append(ctx, emp.ID, row.Metrics(), row.Notes); err != nil {
		return rowError(err, row.Line)
	}
	result.RecordsCreated++
	return nil
}

// rowError prefixes validation issues with the offending line.
func rowError(err error, line int) error {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindValidation {
		return err
	}
	issues := make([]apperr.Issue, 0, len(appErr.Issues))
	for _, issue := range appErr.Issues {
		issue.Field = rowField(line, issue.Field)
		issues = append(issues, issue)
	}
	return apperr.Validation("invalid import file", issues...)
}

func rowField(line int, field string) string {
	return fmt.Sprintf("row %d: %s", line, field)
}

func removeUpload(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to remove uploaded file", "path", path, "err", err)
	}
}
