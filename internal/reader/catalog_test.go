package reader

import (
	"bytes"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/apache/arrow/go/v18/parquet"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
	"github.com/klauspost/compress/zstd"
	"github.com/nao1215/sheetsql/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
	"github.com/xuri/excelize/v2"
)

const usersCSV = "id,name,score\n1,Alice,9.5\n2,Bob,7\n"

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func zstdBytes(t *testing.T, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func xzBytes(t *testing.T, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// writeWorkbook creates an xlsx file with the given sheets in order.
func writeWorkbook(t *testing.T, path string, sheets map[string][][]any, order []string) {
	t.Helper()

	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()
	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			values := row
			require.NoError(t, f.SetSheetRow(name, cell, &values))
		}
	}
	require.NoError(t, f.SaveAs(path))
}

func writeParquet(t *testing.T, path string) {
	t.Helper()

	schema := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64},
		{Name: "name", Type: arrow.BinaryTypes.String, Nullable: true},
	}, nil)

	b := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer b.Release()
	b.Field(0).(*array.Int64Builder).AppendValues([]int64{1, 2, 3}, nil)
	b.Field(1).(*array.StringBuilder).AppendValues([]string{"Alice", "", ""}, []bool{true, false, true})
	rec := b.NewRecord()
	defer rec.Release()

	tbl := array.NewTableFromRecords(schema, []arrow.Record{rec})
	defer tbl.Release()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() {
		_ = f.Close()
	}()
	require.NoError(t, pqarrow.WriteTable(tbl, f, 1024, parquet.NewWriterProperties(), pqarrow.DefaultWriterProps()))
}

func TestCatalog_LoadPath_Delimited(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		file string
		data func(t *testing.T) []byte
	}{
		{name: "csv", file: "users.csv", data: func(*testing.T) []byte { return []byte(usersCSV) }},
		{
			name: "tsv",
			file: "users.tsv",
			data: func(*testing.T) []byte { return []byte("id\tname\tscore\n1\tAlice\t9.5\n2\tBob\t7\n") },
		},
		{name: "gzip", file: "users.csv.gz", data: func(t *testing.T) []byte { return gzipBytes(t, []byte(usersCSV)) }},
		{name: "zstd", file: "users.csv.zst", data: func(t *testing.T) []byte { return zstdBytes(t, []byte(usersCSV)) }},
		{name: "xz", file: "users.csv.xz", data: func(t *testing.T) []byte { return xzBytes(t, []byte(usersCSV)) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := writeFile(t, t.TempDir(), tt.file, tt.data(t))
			c := NewCatalog()
			require.NoError(t, c.LoadPath(context.Background(), path))

			assert.Equal(t, []string{"users"}, c.Workbooks())
			sheets, err := c.Sheets("users")
			require.NoError(t, err)
			assert.Equal(t, []string{"users"}, sheets)

			columns, err := c.Columns("users", "users")
			require.NoError(t, err)
			assert.Equal(t, []string{"id", "name", "score"}, columns)

			types, err := c.ColumnTypes("users", "users")
			require.NoError(t, err)
			assert.Equal(t, []model.ColumnType{model.ColumnTypeInteger, model.ColumnTypeText, model.ColumnTypeReal}, types)

			cells, err := c.Rows("users", "users")
			require.NoError(t, err)
			assert.Equal(t, 2, cells.Rows)
			assert.Equal(t, [][]string{{"1", "2"}, {"Alice", "Bob"}, {"9.5", "7"}}, cells.Text)
			assert.Nil(t, cells.Missing)
		})
	}
}

func TestCatalog_LoadPath_XLSX(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "shop.xlsx")
	writeWorkbook(t, path, map[string][][]any{
		"users": {
			{"id", "", "city"},
			{1, "Alice", "Tokyo"},
			{2, "Bob"},
		},
		"dupes": {
			{"a", "A"},
			{1, 2},
		},
		"orders": {
			{"order_id", "amount"},
			{10, 100},
		},
	}, []string{"users", "dupes", "orders"})

	c := NewCatalog()
	require.NoError(t, c.LoadPath(context.Background(), path))

	sheets, err := c.Sheets("shop")
	require.NoError(t, err)
	assert.Equal(t, []string{"users", "orders"}, sheets, "sheet with duplicate columns is skipped")

	columns, err := c.Columns("SHOP", "Users")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "Column2", "city"}, columns)

	cells, err := c.Rows("shop", "users")
	require.NoError(t, err)
	assert.Equal(t, 2, cells.Rows)
	assert.Equal(t, []string{"Tokyo", ""}, cells.Text[2])
}

func TestCatalog_LoadPath_Parquet(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "people.parquet")
	writeParquet(t, path)

	c := NewCatalog()
	require.NoError(t, c.LoadPath(context.Background(), path))

	columns, err := c.Columns("people", "people")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, columns)

	cells, err := c.Rows("people", "people")
	require.NoError(t, err)
	assert.Equal(t, 3, cells.Rows)
	assert.Equal(t, [][]string{{"1", "2", "3"}, {"Alice", "", ""}}, cells.Text)
	assert.Equal(t, [][]bool{nil, {false, true, false}}, cells.Missing)

	text, ok := cells.At(1, 1)
	assert.False(t, ok, "parquet null stays missing")
	assert.Empty(t, text)
	text, ok = cells.At(1, 2)
	assert.True(t, ok, "empty string is a value")
	assert.Empty(t, text)
}

func TestCatalog_LoadPath_LTSV(t *testing.T) {
	t.Parallel()

	data := "id:1\tname:Alice\tcity:Tokyo\n" +
		"\n" +
		"id:2\tname:Bob\n" +
		"name:Carol\tid:3\tcity:\tnote:a:b\n"

	tests := []struct {
		name string
		file string
		data []byte
	}{
		{name: "plain", file: "users.ltsv", data: []byte(data)},
		{name: "gzip", file: "users.ltsv.gz", data: gzipBytes(t, []byte(data))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := writeFile(t, t.TempDir(), tt.file, tt.data)
			c := NewCatalog()
			require.NoError(t, c.LoadPath(context.Background(), path))

			sheets, err := c.Sheets("users")
			require.NoError(t, err)
			assert.Equal(t, []string{"users"}, sheets)

			columns, err := c.Columns("users", "users")
			require.NoError(t, err)
			assert.Equal(t, []string{"id", "name", "city", "note"}, columns)

			cells, err := c.Rows("users", "users")
			require.NoError(t, err)
			assert.Equal(t, 3, cells.Rows)
			assert.Equal(t, [][]string{{"1", "2", "3"}, {"Alice", "Bob", "Carol"}, {"Tokyo", "", ""}, {"", "", "a:b"}}, cells.Text)

			_, ok := cells.At(2, 1)
			assert.False(t, ok, "absent label is missing")
			_, ok = cells.At(2, 2)
			assert.True(t, ok, "empty value is present")
			_, ok = cells.At(3, 0)
			assert.False(t, ok)
		})
	}
}

func TestCatalog_LoadPath_Directory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "users.csv", []byte(usersCSV))
	writeFile(t, dir, "notes.txt", []byte("ignored"))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o700))
	writeFile(t, filepath.Join(dir, "nested"), "orders.tsv", []byte("order_id\tamount\n10\t100\n"))

	c := NewCatalog()
	require.NoError(t, c.LoadPath(context.Background(), dir))

	assert.ElementsMatch(t, []string{"users", "orders"}, c.Workbooks())
	assert.Equal(t, "catalog(2 workbooks, 2 sheets)", c.String())
}

func TestCatalog_LoadPath_Errors(t *testing.T) {
	t.Parallel()

	t.Run("missing path", func(t *testing.T) {
		t.Parallel()

		err := NewCatalog().LoadPath(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
		assert.Error(t, err)
	})

	t.Run("directory without supported files", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFile(t, dir, "readme.md", []byte("# nothing"))
		err := NewCatalog().LoadPath(context.Background(), dir)
		assert.ErrorIs(t, err, model.ErrUnsupportedFormat)
	})

	t.Run("unsupported file", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), "data.json", []byte("{}"))
		err := NewCatalog().LoadPath(context.Background(), path)
		assert.ErrorIs(t, err, model.ErrUnsupportedFormat)
	})

	t.Run("duplicate workbook name", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		csvPath := writeFile(t, dir, "users.csv", []byte(usersCSV))
		tsvPath := writeFile(t, dir, "users.tsv", []byte("id\n1\n"))

		c := NewCatalog()
		require.NoError(t, c.LoadPath(context.Background(), csvPath))
		assert.Error(t, c.LoadPath(context.Background(), tsvPath))
	})

	t.Run("ltsv without labels", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), "empty.ltsv", []byte("no labels here\n\n"))
		err := NewCatalog().LoadPath(context.Background(), path)
		assert.ErrorIs(t, err, model.ErrEmptyData)
	})

	t.Run("empty csv", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), "empty.csv", nil)
		err := NewCatalog().LoadPath(context.Background(), path)
		assert.ErrorIs(t, err, model.ErrEmptyData)
	})
}

func TestCatalog_LoadFS(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"data/users.csv":      {Data: []byte(usersCSV)},
		"data/orders.csv.gz":  {Data: gzipBytes(t, []byte("order_id,user_id\n10,1\n"))},
		"data/skip/readme.md": {Data: []byte("skip")},
	}

	c := NewCatalog()
	require.NoError(t, c.LoadFS(context.Background(), fsys, "data"))

	assert.Equal(t, []SheetInfo{
		{Workbook: "orders", Sheet: "orders", Columns: []string{"order_id", "user_id"}, Types: []string{"INTEGER", "INTEGER"}, Rows: 1},
		{Workbook: "users", Sheet: "users", Columns: []string{"id", "name", "score"}, Types: []string{"INTEGER", "TEXT", "REAL"}, Rows: 2},
	}, c.Describe())
}

func TestCatalog_AddSheet(t *testing.T) {
	t.Parallel()

	c := NewCatalog()
	require.NoError(t, c.AddSheet("book", "s1", [][]string{{"a", "b"}, {"1"}, {"2", "x", "extra"}}))

	columns, err := c.Columns("book", "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "Column3"}, columns)

	cells, err := c.Rows("book", "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, cells.Rows)
	assert.Equal(t, [][]string{{"1", "2"}, {"", "x"}, {"", "extra"}}, cells.Text)

	assert.Error(t, c.AddSheet("book", "S1", [][]string{{"a"}}), "sheet names are case-insensitive")
	assert.ErrorIs(t, c.AddSheet("book", "s2", nil), model.ErrEmptyData)
	assert.ErrorIs(t, c.AddSheet("book", "s3", [][]string{{"a", "A"}}), model.ErrDuplicateColumnName)

	_, err = c.Columns("book", "missing")
	assert.ErrorIs(t, err, model.ErrResolution)
	_, err = c.Sheets("missing")
	assert.ErrorIs(t, err, model.ErrResolution)
}

func TestDetectFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path        string
		want        FileFormat
		compression CompressionType
	}{
		{path: "a.xlsx", want: FormatXLSX, compression: CompressionNone},
		{path: "a.CSV", want: FormatCSV, compression: CompressionNone},
		{path: "a.tsv.bz2", want: FormatTSV, compression: CompressionBZ2},
		{path: "a.parquet.zst", want: FormatParquet, compression: CompressionZSTD},
		{path: "a.csv.xz", want: FormatCSV, compression: CompressionXZ},
		{path: "a.csv.gz", want: FormatCSV, compression: CompressionGZ},
		{path: "a.ltsv", want: FormatLTSV, compression: CompressionNone},
		{path: "a.LTSV.zst", want: FormatLTSV, compression: CompressionZSTD},
		{path: "a.txt", want: FormatUnsupported, compression: CompressionNone},
		{path: "a.gz", want: FormatUnsupported, compression: CompressionGZ},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, DetectFormat(tt.path))
			assert.Equal(t, tt.compression, detectCompression(tt.path))
			assert.Equal(t, tt.want != FormatUnsupported, IsSupportedFile(tt.path))
		})
	}
}

func TestWorkbookName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "sales", WorkbookName("/tmp/sales.xlsx"))
	assert.Equal(t, "users", WorkbookName("dir/users.csv.gz"))
	assert.Equal(t, "my.data", WorkbookName("my.data.tsv"))
}
