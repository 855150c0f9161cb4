package model

import (
	"fmt"
	"strings"
)

// DefaultWorkbook is the reserved workbook name meaning "any workbook".
const DefaultWorkbook = "sa"

// TableInfo is an immutable snapshot of one sheet, loaded for a single statement.
type TableInfo struct {
	workbook string
	sheet    string
	alias    string
	columns  []string
	types    []ColumnType
	data     [][]Value // column-major
	rowCount int
	index    map[string]int
}

// NewTableInfo builds a snapshot from column-major cells. Each cell is
// classified once, missing cells become Null and columns shorter than the
// row count are padded with empty text.
func NewTableInfo(workbook, sheet, alias string, columns []string, types []ColumnType, cells Cells) (*TableInfo, error) {
	index := make(map[string]int, len(columns))
	for i, name := range columns {
		key := strings.ToLower(name)
		if _, exists := index[key]; exists {
			return nil, fmt.Errorf("%w: %s in %s", ErrDuplicateColumnName, name, sheet)
		}
		index[key] = i
	}

	if len(types) != len(columns) {
		aligned := make([]ColumnType, len(columns))
		for i := range aligned {
			aligned[i] = ColumnTypeText
			if i < len(types) {
				aligned[i] = types[i]
			}
		}
		types = aligned
	}

	rowCount := cells.Rows
	values := make([][]Value, len(columns))
	for c := range columns {
		column := make([]Value, rowCount)
		for r := range rowCount {
			if text, ok := cells.At(c, r); ok {
				column[r] = ParseCell(text)
			} else {
				column[r] = Null()
			}
		}
		values[c] = column
	}

	return &TableInfo{
		workbook: workbook,
		sheet:    sheet,
		alias:    alias,
		columns:  columns,
		types:    types,
		data:     values,
		rowCount: rowCount,
		index:    index,
	}, nil
}

// Workbook returns the workbook id.
func (t *TableInfo) Workbook() string {
	return t.workbook
}

// Sheet returns the sheet id.
func (t *TableInfo) Sheet() string {
	return t.sheet
}

// FullName returns workbook_sheet, or the bare sheet for the default workbook.
func (t *TableInfo) FullName() string {
	if t.workbook == "" || strings.EqualFold(t.workbook, DefaultWorkbook) {
		return t.sheet
	}
	return t.workbook + "_" + t.sheet
}

// Name returns the alias when present, the full name otherwise.
func (t *TableInfo) Name() string {
	if t.alias != "" {
		return t.alias
	}
	return t.FullName()
}

// Matches reports whether qualifier names this table. Aliases shadow the
// table's own names the way SQL scoping does.
func (t *TableInfo) Matches(qualifier string) bool {
	if t.alias != "" {
		return strings.EqualFold(qualifier, t.alias)
	}
	if prefix, rest, ok := strings.Cut(qualifier, "_"); ok && strings.EqualFold(prefix, DefaultWorkbook) {
		qualifier = rest
	}
	return strings.EqualFold(qualifier, t.sheet) ||
		strings.EqualFold(qualifier, t.FullName()) ||
		strings.EqualFold(qualifier, t.workbook+"_"+t.sheet)
}

// Columns returns the ordered column names.
func (t *TableInfo) Columns() []string {
	return t.columns
}

// Types returns the type tags aligned with Columns.
func (t *TableInfo) Types() []ColumnType {
	return t.types
}

// RowCount returns the number of data rows.
func (t *TableInfo) RowCount() int {
	return t.rowCount
}

// ColumnIndex looks a column up case-insensitively.
func (t *TableInfo) ColumnIndex(name string) (int, bool) {
	i, ok := t.index[strings.ToLower(name)]
	return i, ok
}

// Cell returns the value at column col of row. Negative rows are padding and read as missing.
func (t *TableInfo) Cell(col, row int) Value {
	if row < 0 {
		return Null()
	}
	return t.data[col][row]
}
