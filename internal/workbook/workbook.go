// Package workbook reads tabular rows out of Excel workbooks.
package workbook

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Row is one data row of a sheet. Position is the 1-based position among the
// sheet's data rows (the header row is not counted) and stays stable as long
// as rows are only appended. Cells maps trimmed, lowercased header names to
// raw cell strings; missing trailing cells read as "".
type Row struct {
	Position int
	Cells    map[string]string
}

// Reader yields the data rows of one named sheet.
type Reader interface {
	Rows(sheetName string) ([]Row, error)
}

// XLSXReader reads sheets from an .xlsx workbook on disk. The file is opened
// per call, so a workbook replaced between imports is picked up.
type XLSXReader struct {
	path string
}

// NewXLSXReader creates a reader for the workbook at path.
func NewXLSXReader(path string) *XLSXReader {
	return &XLSXReader{path: path}
}

// Rows reads all data rows of the named sheet, using the first row as the
// header. A workbook that cannot be opened or a sheet that does not exist is
// an error; cell-level problems are left to the normalizer.
func (r *XLSXReader) Rows(sheetName string) ([]Row, error) {
	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", r.path, err)
	}
	defer f.Close()

	raw, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheetName, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("sheet %q has no header row", sheetName)
	}

	header := make([]string, len(raw[0]))
	for i, cell := range raw[0] {
		header[i] = strings.ToLower(strings.TrimSpace(cell))
	}

	rows := make([]Row, 0, len(raw)-1)
	for i, cells := range raw[1:] {
		row := Row{Position: i + 1, Cells: make(map[string]string, len(header))}
		for j, name := range header {
			if name == "" {
				continue
			}
			if j < len(cells) {
				row.Cells[name] = cells[j]
			} else {
				row.Cells[name] = ""
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}
