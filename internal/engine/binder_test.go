package engine

import (
	"testing"

	"github.com/nao1215/sheetsql/domain/model"
	"github.com/nao1215/sheetsql/internal/reader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTableName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		input        string
		wantWorkbook string
		wantSheet    string
	}{
		{name: "workbook and sheet", input: "sales_q1", wantWorkbook: "sales", wantSheet: "q1"},
		{name: "first separator only", input: "sales_q1_east", wantWorkbook: "sales", wantSheet: "q1_east"},
		{name: "default workbook", input: "sa_q1", wantWorkbook: "", wantSheet: "q1"},
		{name: "default workbook any case", input: "SA_q1", wantWorkbook: "", wantSheet: "q1"},
		{name: "bare sheet", input: "q1", wantWorkbook: "", wantSheet: "q1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			wb, sh := SplitTableName(tt.input)
			assert.Equal(t, tt.wantWorkbook, wb)
			assert.Equal(t, tt.wantSheet, sh)
		})
	}
}

func TestBinder_Bind(t *testing.T) {
	t.Parallel()

	c := reader.NewCatalog()
	header := [][]string{{"id"}, {"1"}}
	require.NoError(t, c.AddSheet("sales", "q1", header))
	require.NoError(t, c.AddSheet("sales", "q2", header))
	require.NoError(t, c.AddSheet("budget", "q1", header))
	require.NoError(t, c.AddSheet("my_book", "notes", header))
	require.NoError(t, c.AddSheet("misc", "raw_data", header))

	b := NewBinder(c)

	tests := []struct {
		name         string
		ref          TableRef
		wantWorkbook string
		wantSheet    string
		wantErr      error
	}{
		{name: "combined name", ref: TableRef{Name: "sales_q1"}, wantWorkbook: "sales", wantSheet: "q1"},
		{name: "case insensitive", ref: TableRef{Name: "SALES_Q2"}, wantWorkbook: "sales", wantSheet: "q2"},
		{name: "explicit qualifier", ref: TableRef{Workbook: "budget", Name: "q1"}, wantWorkbook: "budget", wantSheet: "q1"},
		{name: "unique sheet", ref: TableRef{Name: "q2"}, wantWorkbook: "sales", wantSheet: "q2"},
		{name: "default workbook unique sheet", ref: TableRef{Name: "sa_q2"}, wantWorkbook: "sales", wantSheet: "q2"},
		{name: "workbook containing separator", ref: TableRef{Name: "my_book_notes"}, wantWorkbook: "my_book", wantSheet: "notes"},
		{name: "sheet containing separator", ref: TableRef{Name: "raw_data"}, wantWorkbook: "misc", wantSheet: "raw_data"},
		{name: "ambiguous sheet", ref: TableRef{Name: "q1"}, wantErr: model.ErrResolution},
		{name: "ambiguous default workbook", ref: TableRef{Name: "sa_q1"}, wantErr: model.ErrResolution},
		{name: "missing sheet", ref: TableRef{Name: "sales_q9"}, wantErr: model.ErrResolution},
		{name: "missing workbook", ref: TableRef{Workbook: "nope", Name: "q1"}, wantErr: model.ErrResolution},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			table, err := b.Bind(tt.ref)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantWorkbook, table.Workbook())
			assert.Equal(t, tt.wantSheet, table.Sheet())
			assert.Equal(t, 1, table.RowCount())
		})
	}
}

func TestBinder_Alias(t *testing.T) {
	t.Parallel()

	c := reader.NewCatalog()
	require.NoError(t, c.AddSheet("sales", "q1", [][]string{{"id"}, {"1"}}))

	table, err := NewBinder(c).Bind(TableRef{Name: "sales_q1", Alias: "s"})
	require.NoError(t, err)
	assert.Equal(t, "s", table.Name())
	assert.True(t, table.Matches("S"))
	assert.False(t, table.Matches("sales_q1"))
}
