// Package sheetsql runs read-only SQL over spreadsheet workbooks.
// Sheets of xlsx, csv, tsv, ltsv and parquet files become tables.
package sheetsql

import (
	"context"
	"database/sql"

	sheetsqldriver "github.com/nao1215/sheetsql/driver"
	"github.com/nao1215/sheetsql/internal/engine"
)

const (
	// DriverName is the name for the sheetsql driver
	DriverName = "sheetsql"

	// EngineNative evaluates statements with the built-in planner and executor
	EngineNative = engine.NativeName

	// EngineSQLite loads the sheets into an in-memory SQLite database
	EngineSQLite = engine.SQLiteName
)

// Register registers the sheetsql driver with database/sql
func Register() {
	sql.Register(DriverName, sheetsqldriver.NewDriver())
}

func init() {
	Register()
}

// Open opens a database over the given files and directories.
//
// Each path may be a workbook (.xlsx), a delimited file (.csv, .tsv), a
// parquet file, any of those compressed with .gz, .bz2, .xz or .zst, or a
// directory searched recursively. Every sheet becomes a table named
// workbook_sheet; the bare sheet name also works while it is unique.
// A csv, tsv or parquet file is a workbook with a single sheet named
// after the file, so users.csv is queried as users or users_users.
//
// Only SELECT statements are accepted. Positional arguments bind to ?
// placeholders.
//
//	db, err := sheetsql.Open("sales.xlsx")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer db.Close()
//
//	rows, err := db.Query(`
//		SELECT region, SUM(amount) AS total
//		FROM sales_q1
//		WHERE amount > ?
//		GROUP BY region
//		ORDER BY total DESC
//		LIMIT 3`, 100)
func Open(paths ...string) (*sql.DB, error) {
	return OpenContext(context.Background(), paths...)
}

// OpenContext is like Open but loads the files with ctx, so a slow load can
// be cancelled.
func OpenContext(ctx context.Context, paths ...string) (*sql.DB, error) {
	validatedBuilder, err := NewBuilder().AddPaths(paths...).Build(ctx)
	if err != nil {
		return nil, err
	}
	return validatedBuilder.Open(ctx)
}
