package cli

import (
	"bytes"
	"database/sql"
	"testing"

	"github.com/nao1215/sheetsql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() *Table {
	return &Table{
		Columns: []string{"city", "total"},
		Types:   []string{"TEXT", "REAL"},
		Rows: [][]sql.NullString{
			{{String: "Tokyo", Valid: true}, {String: "225.5", Valid: true}},
			{{String: "Osaka, Kita", Valid: true}, {}},
		},
	}
}

func TestWrite(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		format string
		want   string
	}{
		{
			name:   "table",
			format: "table",
			want: "city         total\n" +
				"----         -----\n" +
				"Tokyo        225.5\n" +
				"Osaka, Kita  NULL\n" +
				"(2 rows)\n",
		},
		{
			name:   "csv",
			format: "CSV",
			want:   "city,total\nTokyo,225.5\n\"Osaka, Kita\",NULL\n",
		},
		{
			name:   "json",
			format: "json",
			want: "[\n" +
				"  {\n    \"city\": \"Tokyo\",\n    \"total\": \"225.5\"\n  },\n" +
				"  {\n    \"city\": \"Osaka, Kita\",\n    \"total\": null\n  }\n" +
				"]\n",
		},
		{
			name:   "yaml",
			format: "yaml",
			want: "- city: Tokyo\n  total: \"225.5\"\n" +
				"- city: Osaka, Kita\n  total: null\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			require.NoError(t, Write(&buf, tt.format, sampleTable()))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	assert.ErrorContains(t, Write(&buf, "xml", sampleTable()), "unknown output format")
}

func TestWrite_SingleRow(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	table := &Table{Columns: []string{"n"}, Rows: [][]sql.NullString{{{String: "1", Valid: true}}}}
	require.NoError(t, Write(&buf, "table", table))
	assert.Equal(t, "n\n---\n1\n(1 row)\n", buf.String())
}

func TestWriteTables(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteTables(&buf, []sheetsql.TableInfo{
		{Workbook: "sales", Sheet: "q1", Columns: []string{"region"}, Types: []string{"TEXT"}, Rows: 3},
	}))
	assert.Equal(t, "- workbook: sales\n"+
		"  sheet: q1\n"+
		"  columns:\n"+
		"    - region\n"+
		"  types:\n"+
		"    - TEXT\n"+
		"  rows: 3\n", buf.String())
}
