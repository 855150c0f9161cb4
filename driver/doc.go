// Package driver provides the sheetsql database/sql driver.
//
// The driver exposes workbooks (xlsx, csv, tsv, ltsv and parquet files, optionally
// compressed) as read-only SQL tables. Each sheet is addressed as
// workbook_sheet, or by its bare name when that name is unique. Statements
// run on the native engine by default; the SQLite engine is available for
// comparison.
//
// Usage:
//
//	import _ "github.com/nao1215/sheetsql" // registers "sheetsql"
//	db, err := sql.Open("sheetsql", "sales.xlsx;users.csv")
//	db, err := sql.Open("sheetsql", "data/?engine=sqlite")
package driver
