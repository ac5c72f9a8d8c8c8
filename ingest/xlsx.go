package ingest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// readSpreadsheet reads the first sheet of a workbook into a grid of strings.
// Leading empty rows are skipped, the first remaining row is the header and
// shorter rows are padded to the header width.
func readSpreadsheet(data []byte, fileName string) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &Error{File: fileName, Op: "read xlsx", Err: fmt.Errorf("%w: %v", ErrCorrupt, err)}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fail(fileName, "read xlsx", ErrEmpty, "workbook has no sheets")
	}

	rows, err := readCells(f, sheets[0])
	if err != nil {
		return nil, &Error{File: fileName, Op: "read xlsx", Err: fmt.Errorf("%w: sheet %s: %v", ErrCorrupt, sheets[0], err)}
	}

	for len(rows) > 0 && isBlankRow(rows[0]) {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return nil, fail(fileName, "read xlsx", ErrEmpty, "sheet %s is empty", sheets[0])
	}

	width := len(rows[0])
	grid := make([][]string, len(rows))
	for i, row := range rows {
		if len(row) > width {
			extra := row[width:]
			if !isBlankRow(extra) {
				return nil, fail(fileName, "read xlsx", ErrCorrupt,
					"row %d has %d cells but the header has %d", i+1, len(row), width)
			}
			row = row[:width]
		}
		padded := make([]string, width)
		copy(padded, row)
		grid[i] = padded
	}
	return grid, nil
}

// readCells returns the stored value of plain number cells, so they keep full
// precision, and the displayed text of every other cell (dates, booleans,
// strings).
func readCells(f *excelize.File, sheet string) ([][]string, error) {
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	shown, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}

	for r, row := range rows {
		for c, raw := range row {
			if r >= len(shown) || c >= len(shown[r]) || shown[r][c] == raw {
				continue
			}
			useRaw, err := isPlainNumber(f, sheet, c+1, r+1)
			if err != nil {
				return nil, err
			}
			if !useRaw {
				row[c] = shown[r][c]
			}
		}
	}
	return rows, nil
}

func isPlainNumber(f *excelize.File, sheet string, col, row int) (bool, error) {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return false, err
	}
	cellType, err := f.GetCellType(sheet, cell)
	if err != nil {
		return false, err
	}
	if cellType != excelize.CellTypeUnset && cellType != excelize.CellTypeNumber {
		return false, nil
	}

	styleID, err := f.GetCellStyle(sheet, cell)
	if err != nil {
		return false, err
	}
	style, err := f.GetStyle(styleID)
	if err != nil {
		return false, err
	}
	if style.CustomNumFmt != nil {
		return !isDateFormat(*style.CustomNumFmt), nil
	}
	return !dateNumFmts[style.NumFmt], nil
}

// built-in number formats that render a serial number as a date or time
var dateNumFmts = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true, 20: true, 21: true, 22: true,
	27: true, 28: true, 29: true, 30: true, 31: true, 32: true, 33: true, 34: true, 35: true, 36: true,
	45: true, 46: true, 47: true,
	50: true, 51: true, 52: true, 53: true, 54: true, 55: true, 56: true, 57: true, 58: true,
}

// isDateFormat reports whether a custom format code has date or time tokens
// outside of quoted literals and bracketed sections.
func isDateFormat(code string) bool {
	var b strings.Builder
	inQuote, inBracket := false, false
	for i := 0; i < len(code); i++ {
		ch := code[i]
		switch {
		case ch == '"':
			inQuote = !inQuote
		case inQuote:
		case ch == '[':
			inBracket = true
		case ch == ']':
			inBracket = false
		case inBracket:
		case ch == '\\' || ch == '_' || ch == '*':
			i++
		default:
			b.WriteByte(ch)
		}
	}
	return strings.ContainsAny(strings.ToLower(b.String()), "dyhs")
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}
