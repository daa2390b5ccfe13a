package internal

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sheet is the location of the link column inside a spreadsheet file
type Sheet struct {
	Path   string
	Column string
	// Name selects the worksheet; empty means the first one
	Name string
}

// ReadRows returns every data row of the link column, in sheet order.
// The header row is not included. A missing file or column is ErrInvalidInput.
func ReadRows(sheet Sheet) ([]Row, error) {
	if !FileExists(sheet.Path) {
		return nil, invalidInputf("spreadsheet not found: %s", sheet.Path)
	}

	if strings.EqualFold(filepath.Ext(sheet.Path), ".csv") {
		return readCSVRows(sheet)
	}
	return readWorkbookRows(sheet)
}

// readWorkbookRows reads an xlsx workbook with excelize
func readWorkbookRows(sheet Sheet) ([]Row, error) {
	f, err := excelize.OpenFile(sheet.Path)
	if err != nil {
		return nil, invalidInputf("opening spreadsheet %s: %w", sheet.Path, err)
	}
	defer f.Close()

	name := sheet.Name
	if name == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, invalidInputf("spreadsheet %s has no worksheets", sheet.Path)
		}
		name = sheets[0]
	}

	rows, err := f.GetRows(name)
	if err != nil {
		return nil, invalidInputf("reading worksheet %q: %w", name, err)
	}
	if len(rows) == 0 {
		return nil, missingColumnError(sheet.Column)
	}

	col := columnIndex(rows[0], sheet.Column)
	if col < 0 {
		return nil, missingColumnError(sheet.Column)
	}

	result := make([]Row, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		rowNum := i + 1 // 1-based worksheet row
		row := Row{Number: rowNum}
		if col < len(rows[i]) && rows[i][col] != "" {
			row.Value = rows[i][col]
			row.Present = true
			row.Text = isTextCell(f, name, col, rowNum)
		}
		result = append(result, row)
	}

	return result, nil
}

// isTextCell reports whether the cell was stored as a string
func isTextCell(f *excelize.File, sheetName string, col, rowNum int) bool {
	cellName, err := excelize.CoordinatesToCellName(col+1, rowNum)
	if err != nil {
		return false
	}
	cellType, err := f.GetCellType(sheetName, cellName)
	if err != nil {
		return false
	}
	switch cellType {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString:
		return true
	case excelize.CellTypeFormula:
		// formula cells with a cached string result
		return true
	default:
		return false
	}
}

// readCSVRows reads a comma separated file; every non-empty cell is text
func readCSVRows(sheet Sheet) ([]Row, error) {
	file, err := os.Open(sheet.Path)
	if err != nil {
		return nil, invalidInputf("opening spreadsheet %s: %w", sheet.Path, err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, missingColumnError(sheet.Column)
	}
	if err != nil {
		return nil, invalidInputf("reading spreadsheet header: %w", err)
	}

	col := columnIndex(header, sheet.Column)
	if col < 0 {
		return nil, missingColumnError(sheet.Column)
	}

	var result []Row
	for rowNum := 2; ; rowNum++ {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, invalidInputf("reading spreadsheet row %d: %w", rowNum, err)
		}
		row := Row{Number: rowNum}
		if col < len(record) && record[col] != "" {
			row.Value = record[col]
			row.Present = true
			row.Text = true
		}
		result = append(result, row)
	}

	return result, nil
}

// columnIndex finds the header cell matching name exactly, ignoring surrounding whitespace
func columnIndex(header []string, name string) int {
	for i, cell := range header {
		if strings.TrimSpace(cell) == name {
			return i
		}
	}
	return -1
}

func missingColumnError(column string) error {
	return invalidInputf("spreadsheet must contain a '%s' column", column)
}

// ValidateLink checks that a row carries a usable http(s) URL
func ValidateLink(row Row) (string, error) {
	switch {
	case !row.Present:
		return "", invalidInputf("row %d: missing URL", row.Number)
	case !row.Text:
		return "", invalidInputf("row %d: URL is not a string: %s", row.Number, row.Value)
	case !strings.HasPrefix(row.Value, "http://") && !strings.HasPrefix(row.Value, "https://"):
		return "", invalidInputf("row %d: URL must start with http:// or https://: %s", row.Number, row.Value)
	}
	return row.Value, nil
}

// describeRow is used by the list command and MCP tool
func describeRow(row Row) string {
	if _, err := ValidateLink(row); err != nil {
		return fmt.Sprintf("skip (%v)", err)
	}
	return "ok"
}
