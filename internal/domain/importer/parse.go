package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatXLS  = "xls"
)

// maxXLSRows bounds legacy workbook reads.
const maxXLSRows = 100000

// minXLSCols is scanned on every legacy row: cells written without a row
// record report no column span.
const minXLSCols = 32

// FormatOf maps a file name to an import format. ok is false for anything
// that is not a spreadsheet or CSV.
func FormatOf(filename string) (string, bool) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FormatCSV, true
	case ".xlsx":
		return FormatXLSX, true
	case ".xls":
		return FormatXLS, true
	}
	return "", false
}

// source yields raw rows in file order with their 1-based line number, and
// io.EOF once exhausted.
type source interface {
	Next() ([]string, int, error)
	Close() error
}

func openSource(path, format string) (source, error) {
	switch format {
	case FormatCSV:
		return openCSV(path)
	case FormatXLSX:
		return openXLSX(path)
	case FormatXLS:
		return openXLS(path)
	}
	return nil, fmt.Errorf("unsupported import format %q", format)
}

type csvSource struct {
	file   *os.File
	reader *csv.Reader
}

func openCSV(path string) (*csvSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return &csvSource{file: f, reader: reader}, nil
}

func (s *csvSource) Next() ([]string, int, error) {
	cells, err := s.reader.Read()
	if err != nil {
		return nil, 0, err
	}
	line, _ := s.reader.FieldPos(0)
	return cells, line, nil
}

func (s *csvSource) Close() error {
	return s.file.Close()
}

// sheetSource replays rows already read from a workbook's first sheet.
type sheetSource struct {
	rows [][]string
	pos  int
}

func (s *sheetSource) Next() ([]string, int, error) {
	if s.pos >= len(s.rows) {
		return nil, 0, io.EOF
	}
	row := s.rows[s.pos]
	s.pos++
	return row, s.pos, nil
}

func (s *sheetSource) Close() error {
	return nil
}

func openXLSX(path string) (*sheetSource, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	sheetName := file.GetSheetName(0)
	if sheetName == "" {
		return nil, errors.New("no worksheet found")
	}
	rows, err := file.GetRows(sheetName)
	if err != nil {
		return nil, err
	}
	return &sheetSource{rows: rows}, nil
}

func openXLS(path string) (*sheetSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	workbook, err := xls.OpenReader(f, "utf-8")
	if err != nil {
		return nil, err
	}
	if workbook == nil || workbook.NumSheets() == 0 {
		return nil, errors.New("no worksheet found")
	}
	sheet := workbook.GetSheet(0)
	if sheet == nil {
		return nil, errors.New("no worksheet found")
	}

	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow) && i < maxXLSRows; i++ {
		row := xlsRow(sheet, i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		last := max(row.LastCol(), minXLSCols)
		cells := make([]string, 0, last)
		for col := 0; col < last; col++ {
			cells = append(cells, row.Col(col))
		}
		rows = append(rows, trimTrailingBlank(cells))
	}
	return &sheetSource{rows: rows}, nil
}

// xlsRow returns nil for indices without a row record. The library
// dereferences the missing row itself, so the panic is contained here.
func xlsRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}

func trimTrailingBlank(cells []string) []string {
	for len(cells) > 0 && strings.TrimSpace(cells[len(cells)-1]) == "" {
		cells = cells[:len(cells)-1]
	}
	return cells
}
