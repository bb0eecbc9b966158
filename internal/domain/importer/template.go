package importer

import (
	"bytes"
	"encoding/csv"

	"github.com/xuri/excelize/v2"

	"smartraise/internal/platform/apperr"
)

const (
	TemplateCSV   = "csv"
	TemplateExcel = "excel"
)

var (
	templateHeader  = []string{"name", "department", "role", "salary", "kpiScore", "attendance", "peerReview", "notes"}
	templateExample = []string{"Jane Doe", "Engineering", "Software Engineer", "85000", "88", "95", "90", "Q1 review"}
)

type Template struct {
	Filename    string
	ContentType string
	Body        []byte
}

// RenderTemplate builds the downloadable sample for kind ("csv" or "excel").
func RenderTemplate(kind string) (Template, error) {
	switch kind {
	case TemplateCSV:
		body, err := csvTemplate()
		if err != nil {
			return Template{}, apperr.Upstream(err, "failed to render template")
		}
		return Template{Filename: "employee_template.csv", ContentType: "text/csv", Body: body}, nil
	case TemplateExcel:
		body, err := xlsxTemplate()
		if err != nil {
			return Template{}, apperr.Upstream(err, "failed to render template")
		}
		return Template{
			Filename:    "employee_template.xlsx",
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Body:        body,
		}, nil
	}
	return Template{}, apperr.Validation("invalid template type",
		apperr.Issue{Field: "type", Reason: "must be csv or excel"})
}

func csvTemplate() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll([][]string{templateHeader, templateExample}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func xlsxTemplate() ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &templateHeader); err != nil {
		return nil, err
	}
	example := make([]any, len(templateExample))
	for i, v := range templateExample {
		example[i] = v
	}
	if err := f.SetSheetRow(sheet, "A2", &example); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
