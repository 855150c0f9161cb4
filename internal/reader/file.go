package reader

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	pqfile "github.com/apache/arrow/go/v18/parquet/file"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
	"github.com/nao1215/sheetsql/domain/model"
	"github.com/xuri/excelize/v2"
)

// FileFormat is the base format of an input file.
type FileFormat int

const (
	// FormatUnsupported is any file the catalog ignores.
	FormatUnsupported FileFormat = iota
	// FormatXLSX is an Excel workbook, one sheet per worksheet.
	FormatXLSX
	// FormatCSV is a comma separated file holding a single sheet.
	FormatCSV
	// FormatTSV is a tab separated file holding a single sheet.
	FormatTSV
	// FormatParquet is a parquet file holding a single sheet.
	FormatParquet
	// FormatLTSV is a labeled tab separated file holding a single sheet.
	FormatLTSV
)

const (
	extXLSX    = ".xlsx"
	extCSV     = ".csv"
	extTSV     = ".tsv"
	extParquet = ".parquet"
	extLTSV    = ".ltsv"
)

// String returns the format name.
func (f FileFormat) String() string {
	switch f {
	case FormatXLSX:
		return "xlsx"
	case FormatCSV:
		return "csv"
	case FormatTSV:
		return "tsv"
	case FormatParquet:
		return "parquet"
	case FormatLTSV:
		return "ltsv"
	default:
		return "unsupported"
	}
}

// DetectFormat returns the base format of path, ignoring compression suffixes.
func DetectFormat(path string) FileFormat {
	switch strings.ToLower(filepath.Ext(trimCompression(path))) {
	case extXLSX:
		return FormatXLSX
	case extCSV:
		return FormatCSV
	case extTSV:
		return FormatTSV
	case extParquet:
		return FormatParquet
	case extLTSV:
		return FormatLTSV
	default:
		return FormatUnsupported
	}
}

// IsSupportedFile reports whether the catalog can load path.
func IsSupportedFile(path string) bool {
	return DetectFormat(path) != FormatUnsupported
}

// WorkbookName derives the workbook name from a file path:
// the base name without compression and format extensions.
func WorkbookName(path string) string {
	base := trimCompression(filepath.Base(path))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// rawSheet is a sheet as read from a file: row-major, header first.
// missing is aligned with rows and is nil for formats without null cells.
type rawSheet struct {
	name    string
	rows    [][]string
	missing [][]bool
}

// parseFile decodes every sheet of one (possibly compressed) file.
func parseFile(ctx context.Context, path string, r io.Reader) ([]rawSheet, error) {
	format := DetectFormat(path)
	if format == FormatUnsupported {
		return nil, fmt.Errorf("%w: %s", model.ErrUnsupportedFormat, path)
	}

	plain, cleanup, err := decompress(detectCompression(path), r)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	name := WorkbookName(path)
	switch format {
	case FormatXLSX:
		return parseXLSX(plain)
	case FormatCSV:
		return parseDelimited(name, plain, ',')
	case FormatTSV:
		return parseDelimited(name, plain, '\t')
	case FormatLTSV:
		return parseLTSV(name, plain)
	default:
		return parseParquet(ctx, name, plain)
	}
}

// parseDelimited reads a CSV or TSV stream as one sheet.
func parseDelimited(name string, r io.Reader, delimiter rune) ([]rawSheet, error) {
	csvReader := csv.NewReader(r)
	csvReader.Comma = delimiter
	csvReader.FieldsPerRecord = -1
	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", model.ErrEmptyData, name)
	}
	return []rawSheet{{name: name, rows: records}}, nil
}

// parseLTSV reads an LTSV stream as one sheet. Columns are the labels in
// order of first appearance; a label absent from a record is a missing cell.
func parseLTSV(name string, r io.Reader) ([]rawSheet, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read LTSV: %w", err)
	}

	var labels []string
	position := make(map[string]int)
	var records []map[string]string

	for line := range strings.SplitSeq(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		record := make(map[string]string)
		for field := range strings.SplitSeq(line, "\t") {
			label, value, ok := strings.Cut(field, ":")
			if !ok {
				continue
			}
			label = strings.TrimSpace(label)
			if _, seen := position[label]; !seen {
				position[label] = len(labels)
				labels = append(labels, label)
			}
			record[label] = strings.TrimSpace(value)
		}
		if len(record) > 0 {
			records = append(records, record)
		}
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", model.ErrEmptyData, name)
	}

	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, labels)
	missing := make([][]bool, 1, len(records)+1)
	for _, record := range records {
		row := make([]string, len(labels))
		nulls := make([]bool, len(labels))
		for i, label := range labels {
			value, ok := record[label]
			row[i] = value
			nulls[i] = !ok
		}
		rows = append(rows, row)
		missing = append(missing, nulls)
	}
	return []rawSheet{{name: name, rows: rows, missing: missing}}, nil
}

// parseXLSX reads every worksheet of a workbook. Empty worksheets are skipped.
func parseXLSX(r io.Reader) ([]rawSheet, error) {
	xlsxFile, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = xlsxFile.Close()
	}()

	sheetNames := xlsxFile.GetSheetList()
	if len(sheetNames) == 0 {
		return nil, errors.New("no sheets found in workbook")
	}

	sheets := make([]rawSheet, 0, len(sheetNames))
	for _, sheetName := range sheetNames {
		rows, err := xlsxFile.GetRows(sheetName)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", sheetName, err)
		}
		if len(rows) == 0 {
			continue
		}
		sheets = append(sheets, rawSheet{name: sheetName, rows: rows})
	}
	return sheets, nil
}

// parseParquet reads a parquet stream as one sheet. Parquet needs random
// access, so the stream is buffered in memory first.
func parseParquet(ctx context.Context, name string, r io.Reader) ([]rawSheet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet data: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", model.ErrEmptyData, name)
	}

	pqReader, err := pqfile.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet reader: %w", err)
	}
	defer func() {
		_ = pqReader.Close()
	}()

	arrowReader, err := pqarrow.NewFileReader(pqReader, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		return nil, fmt.Errorf("failed to create arrow reader: %w", err)
	}

	table, err := arrowReader.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet table: %w", err)
	}
	defer table.Release()

	schema := table.Schema()
	header := make([]string, schema.NumFields())
	for i, field := range schema.Fields() {
		header[i] = field.Name
	}

	rows := make([][]string, 0, table.NumRows()+1)
	rows = append(rows, header)
	missing := make([][]bool, 1, table.NumRows()+1)

	tableReader := array.NewTableReader(table, 0)
	defer tableReader.Release()
	for tableReader.Next() {
		batch := tableReader.Record()
		for i := range int(batch.NumRows()) {
			row := make([]string, batch.NumCols())
			nulls := make([]bool, batch.NumCols())
			for j, col := range batch.Columns() {
				if col.IsNull(i) {
					nulls[j] = true
					continue
				}
				row[j] = col.ValueStr(i)
			}
			rows = append(rows, row)
			missing = append(missing, nulls)
		}
	}
	if err := tableReader.Err(); err != nil {
		return nil, fmt.Errorf("error reading parquet records: %w", err)
	}

	return []rawSheet{{name: name, rows: rows, missing: missing}}, nil
}

// normalize turns row-major rows into header names and column-major cells.
// Blank header cells are named Column<n>; short rows are padded with empty text.
// missing, when set, is aligned with rows and marks null cells.
func normalize(rows [][]string, missing [][]bool) ([]string, model.Cells, error) {
	if len(rows) == 0 {
		return nil, model.Cells{}, model.ErrEmptyData
	}

	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}

	columns := make([]string, width)
	seen := make(map[string]bool, width)
	for i := range columns {
		name := ""
		if i < len(rows[0]) {
			name = strings.TrimSpace(rows[0][i])
		}
		if name == "" {
			name = fmt.Sprintf("Column%d", i+1)
		}
		key := strings.ToLower(name)
		if seen[key] {
			return nil, model.Cells{}, fmt.Errorf("%w: %s", model.ErrDuplicateColumnName, name)
		}
		seen[key] = true
		columns[i] = name
	}

	rowCount := len(rows) - 1
	data := make([][]string, width)
	for c := range data {
		column := make([]string, rowCount)
		for r, row := range rows[1:] {
			if c < len(row) {
				column[r] = row[c]
			}
		}
		data[c] = column
	}
	return columns, model.Cells{Text: data, Missing: transposeMissing(missing, width), Rows: rowCount}, nil
}

// transposeMissing turns a row-major null mask, header row first, into a
// column-major one. It returns nil when no cell is missing.
func transposeMissing(missing [][]bool, width int) [][]bool {
	if len(missing) < 2 {
		return nil
	}
	var out [][]bool
	for r, row := range missing[1:] {
		for c, null := range row {
			if !null || c >= width {
				continue
			}
			if out == nil {
				out = make([][]bool, width)
			}
			if out[c] == nil {
				out[c] = make([]bool, len(missing)-1)
			}
			out[c][r] = true
		}
	}
	return out
}
