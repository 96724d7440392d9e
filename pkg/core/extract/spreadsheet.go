package extract

import (
	"bytes"
	"context"
	"strings"

	"github.com/xuri/excelize/v2"
)

// SpreadsheetExtractor reads every sheet of an xlsx workbook.
//
// Merged ranges replicate the anchor value across the whole range so a
// label merged over two rows labels both. Formula cells contribute their
// cached computed value; the formula text is never read.
type SpreadsheetExtractor struct{}

func (e *SpreadsheetExtractor) Extract(ctx context.Context, data []byte) (*RawTable, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &ExtractionError{Format: FormatSpreadsheet, Reason: "cannot open workbook", Err: err}
	}
	defer f.Close()

	table := &RawTable{Format: FormatSpreadsheet}
	for _, sheet := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		grid, err := readSheet(f, sheet)
		if err != nil {
			return nil, &ExtractionError{Format: FormatSpreadsheet, Reason: "cannot read sheet " + sheet, Err: err}
		}
		for _, values := range grid {
			row := Row{Index: len(table.Rows), Sheet: sheet}
			for col, v := range values {
				row.Cells = append(row.Cells, Cell{Text: strings.TrimSpace(v), Column: col})
			}
			if len(row.Texts()) == 0 {
				continue
			}
			table.Rows = append(table.Rows, row)
		}
	}

	if len(table.Rows) == 0 {
		return nil, &ExtractionError{Format: FormatSpreadsheet, Reason: "workbook has no non-empty cells"}
	}
	return table, nil
}

// readSheet returns the cell grid of one sheet with merged ranges filled in.
// GetRows yields each cell's cached value, which for formula cells is the
// last computed result.
func readSheet(f *excelize.File, sheet string) ([][]string, error) {
	grid, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}

	merges, err := f.GetMergeCells(sheet)
	if err != nil {
		return nil, err
	}
	for _, mc := range merges {
		startCol, startRow, err := excelize.CellNameToCoordinates(mc.GetStartAxis())
		if err != nil {
			return nil, err
		}
		endCol, endRow, err := excelize.CellNameToCoordinates(mc.GetEndAxis())
		if err != nil {
			return nil, err
		}
		value := mc.GetCellValue()
		for r := startRow; r <= endRow; r++ {
			for c := startCol; c <= endCol; c++ {
				grid = setCell(grid, r-1, c-1, value)
			}
		}
	}
	return grid, nil
}

func setCell(grid [][]string, row, col int, value string) [][]string {
	for len(grid) <= row {
		grid = append(grid, nil)
	}
	for len(grid[row]) <= col {
		grid[row] = append(grid[row], "")
	}
	grid[row][col] = value
	return grid
}
