package cli

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// nullText is how the table and csv formats print a missing value.
const nullText = "NULL"

// Table is a fully read query result.
type Table struct {
	Columns []string
	Types   []string
	Rows    [][]sql.NullString
}

// Query runs query on db and reads every row.
func Query(ctx context.Context, db *sql.DB, query string, args ...any) (*Table, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	table := &Table{
		Columns: make([]string, len(columnTypes)),
		Types:   make([]string, len(columnTypes)),
	}
	for i, ct := range columnTypes {
		table.Columns[i] = ct.Name()
		table.Types[i] = ct.DatabaseTypeName()
	}

	for rows.Next() {
		cells := make([]sql.NullString, len(columnTypes))
		dest := make([]any, len(cells))
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		table.Rows = append(table.Rows, cells)
	}
	return table, rows.Err()
}

// Write prints table in format: table, csv, json or yaml.
func Write(w io.Writer, format string, table *Table) error {
	switch strings.ToLower(format) {
	case "table", "":
		return writeText(w, table)
	case "csv":
		return writeCSV(w, table)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(table.records())
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(table.records()); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

// records returns one ordered map per row; missing values are nil.
func (t *Table) records() []orderedRecord {
	records := make([]orderedRecord, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := orderedRecord{keys: t.Columns, values: make([]any, len(row))}
		for i, cell := range row {
			if cell.Valid {
				rec.values[i] = cell.String
			}
		}
		records = append(records, rec)
	}
	return records
}

// orderedRecord keeps column order when encoded as a JSON object or YAML mapping.
type orderedRecord struct {
	keys   []string
	values []any
}

// MarshalJSON implements json.Marshaler.
func (r orderedRecord) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, key := range r.keys {
		if i > 0 {
			b.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.values[i])
		if err != nil {
			return nil, err
		}
		b.Write(k)
		b.WriteByte(':')
		b.Write(v)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

// MarshalYAML implements yaml.Marshaler.
func (r orderedRecord) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for i, key := range r.keys {
		value := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
		if s, ok := r.values[i].(string); ok {
			value = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
			value,
		)
	}
	return node, nil
}

func writeText(w io.Writer, table *Table) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(table.Columns, "\t"))

	dashes := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		dashes[i] = strings.Repeat("-", max(len(c), 3))
	}
	fmt.Fprintln(tw, strings.Join(dashes, "\t"))

	for _, row := range table.Rows {
		fmt.Fprintln(tw, strings.Join(cellTexts(row), "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	noun := "rows"
	if len(table.Rows) == 1 {
		noun = "row"
	}
	_, err := fmt.Fprintf(w, "(%d %s)\n", len(table.Rows), noun)
	return err
}

func writeCSV(w io.Writer, table *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(table.Columns); err != nil {
		return err
	}
	for _, row := range table.Rows {
		if err := cw.Write(cellTexts(row)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func cellTexts(row []sql.NullString) []string {
	texts := make([]string, len(row))
	for i, cell := range row {
		if cell.Valid {
			texts[i] = cell.String
		} else {
			texts[i] = nullText
		}
	}
	return texts
}
