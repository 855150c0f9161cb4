package model

// Result is the materialized output of one statement.
type Result struct {
	Columns  []string
	Types    []ColumnType
	Data     [][]Value // column-major
	RowCount int
}

// NewResult allocates a result with the given header and room for rowCount rows.
func NewResult(columns []string, types []ColumnType, rowCount int) *Result {
	data := make([][]Value, len(columns))
	for i := range data {
		data[i] = make([]Value, 0, rowCount)
	}
	return &Result{
		Columns: columns,
		Types:   types,
		Data:    data,
	}
}

// AppendRow adds one row given in column order.
func (r *Result) AppendRow(row []Value) {
	for i := range r.Data {
		r.Data[i] = append(r.Data[i], row[i])
	}
	r.RowCount++
}

// Row returns row i in column order.
func (r *Result) Row(i int) []Value {
	row := make([]Value, len(r.Data))
	for c := range r.Data {
		row[c] = r.Data[c][i]
	}
	return row
}

// Text returns the nullable text at column col of row.
func (r *Result) Text(col, row int) (string, bool) {
	return r.Data[col][row].Nullable()
}
