package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// Grid bounds. Cells beyond them are silently left out so render time and
// memory stay predictable for arbitrarily large sheets.
const (
	MaxRows      = 100
	MaxCols      = 20
	MaxCellRunes = 100
)

// ellipsis marks truncated text cells.
const ellipsis = "..."

// Sheet is the bounded value grid of one worksheet. Rows holds only rows
// with at least one non-blank cell.
type Sheet struct {
	Name string
	Rows [][]string
}

// ReadSheets extracts the value grid of every sheet of the workbook at path,
// in workbook order. Cells are read as displayed: cached formula results with
// their number format applied, so dates and booleans print as text rather
// than serial numbers.
func ReadSheets(ctx context.Context, path string) ([]Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	names := f.GetSheetList()
	sheets := make([]Sheet, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := readGrid(f, name)
		if err != nil {
			return nil, fmt.Errorf("reading sheet %q: %w", name, err)
		}
		sheets = append(sheets, Sheet{Name: name, Rows: rows})
	}
	return sheets, nil
}

func readGrid(f *excelize.File, sheet string) ([][]string, error) {
	it, err := f.Rows(sheet)
	if err != nil {
		return nil, err
	}
	defer func() { _ = it.Close() }()

	var grid [][]string
	for n := 0; n < MaxRows && it.Next(); n++ {
		cols, err := it.Columns()
		if err != nil {
			return nil, err
		}
		if len(cols) > MaxCols {
			cols = cols[:MaxCols]
		}
		row := make([]string, len(cols))
		for i, v := range cols {
			row[i] = cellText(v)
		}
		if !blankRow(row) {
			grid = append(grid, row)
		}
	}
	return grid, it.Error()
}

// cellText keeps numbers in their natural form and truncates long text.
func cellText(v string) string {
	if _, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
		return v
	}
	if utf8.RuneCountInString(v) <= MaxCellRunes {
		return v
	}
	runes := []rune(v)
	return string(runes[:MaxCellRunes]) + ellipsis
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// HasData reports whether any sheet has at least one row.
func HasData(sheets []Sheet) bool {
	for _, s := range sheets {
		if len(s.Rows) > 0 {
			return true
		}
	}
	return false
}
