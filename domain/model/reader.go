package model

// Reader is the read-only catalog the engine loads snapshots from.
type Reader interface {
	// Workbooks lists the workbook names.
	Workbooks() []string
	// Sheets lists the sheets of a workbook.
	Sheets(workbook string) ([]string, error)
	// Columns lists the column names of a sheet.
	Columns(workbook, sheet string) ([]string, error)
	// ColumnTypes lists type tags aligned with Columns.
	ColumnTypes(workbook, sheet string) ([]ColumnType, error)
	// Rows returns the cells of a sheet.
	Rows(workbook, sheet string) (Cells, error)
}

// Cells is the column-major content of one sheet.
type Cells struct {
	// Text holds one slice of cell text per column.
	Text [][]string
	// Missing marks cells without a value, aligned with Text.
	// A nil or short column has no missing cells.
	Missing [][]bool
	// Rows is the number of data rows.
	Rows int
}

// At returns the text at column col of row and whether the cell holds a value.
// Cells past the end of a short column read as empty text.
func (c Cells) At(col, row int) (string, bool) {
	if col < len(c.Missing) && row < len(c.Missing[col]) && c.Missing[col][row] {
		return "", false
	}
	if col < len(c.Text) && row < len(c.Text[col]) {
		return c.Text[col][row], true
	}
	return "", true
}
