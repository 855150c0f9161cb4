package engine

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nao1215/sheetsql/domain/model"
	"github.com/nao1215/sheetsql/internal/logger"
	"github.com/shopspring/decimal"
	"modernc.org/sqlite"
)

// errSQLiteUnsupported is returned when the SQLite connection lacks a context-aware interface.
var errSQLiteUnsupported = errors.New("sheetsql: sqlite connection does not support context operations")

// SQLite evaluates statements with an in-memory SQLite database holding a copy
// of every sheet. Each sheet becomes the table workbook_sheet; sheets whose
// name is unique across workbooks are also reachable by name and as sa_sheet.
type SQLite struct {
	mu   sync.Mutex
	conn driver.Conn
	log  *logger.Logger
}

var _ Engine = (*SQLite)(nil)

// NewSQLite copies the sheets of r into a fresh in-memory database.
func NewSQLite(ctx context.Context, r model.Reader, opts ...Option) (*SQLite, error) {
	o := newOptions(opts)

	conn, err := (&sqlite.Driver{}).Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory database: %w", err)
	}
	e := &SQLite{conn: conn, log: o.log.Named("sqlite")}
	if err := e.load(ctx, r); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return e, nil
}

func (e *SQLite) load(ctx context.Context, r model.Reader) error {
	owners := make(map[string][]string)
	for _, wb := range r.Workbooks() {
		sheets, err := r.Sheets(wb)
		if err != nil {
			return err
		}
		for _, sh := range sheets {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := e.loadSheet(ctx, r, wb, sh); err != nil {
				return model.NewErrorContext("sqlite load", "").WithSheet(wb, sh).Error(err)
			}
			key := strings.ToLower(sh)
			owners[key] = append(owners[key], tableName(wb, sh))
		}
	}

	for _, wb := range r.Workbooks() {
		sheets, _ := r.Sheets(wb)
		for _, sh := range sheets {
			if len(owners[strings.ToLower(sh)]) != 1 {
				continue
			}
			target := tableName(wb, sh)
			for _, alias := range []string{sh, model.DefaultWorkbook + "_" + sh} {
				if strings.EqualFold(alias, target) {
					continue
				}
				query := fmt.Sprintf(`CREATE VIEW IF NOT EXISTS %s AS SELECT * FROM %s`, quoteIdent(alias), quoteIdent(target))
				if err := e.exec(ctx, query, nil); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func tableName(workbook, sheet string) string {
	if workbook == "" {
		return sheet
	}
	return workbook + "_" + sheet
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// sqliteType maps a column type tag onto a SQLite column affinity.
func sqliteType(t model.ColumnType) string {
	switch t {
	case model.ColumnTypeInteger:
		return "INTEGER"
	case model.ColumnTypeReal:
		return "REAL"
	default:
		return "TEXT"
	}
}

func (e *SQLite) loadSheet(ctx context.Context, r model.Reader, wb, sh string) error {
	columns, err := r.Columns(wb, sh)
	if err != nil {
		return err
	}
	types, err := r.ColumnTypes(wb, sh)
	if err != nil {
		return err
	}
	cells, err := r.Rows(wb, sh)
	if err != nil {
		return err
	}

	defs := make([]string, len(columns))
	for i, col := range columns {
		typ := model.ColumnTypeText
		if i < len(types) {
			typ = types[i]
		}
		defs[i] = quoteIdent(col) + " " + sqliteType(typ)
	}
	table := quoteIdent(tableName(wb, sh))
	if err := e.exec(ctx, fmt.Sprintf(`CREATE TABLE %s (%s)`, table, strings.Join(defs, ", ")), nil); err != nil {
		return err
	}
	if cells.Rows == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	stmt, err := e.prepare(ctx, fmt.Sprintf(`INSERT INTO %s VALUES (%s)`, table, placeholders))
	if err != nil {
		return err
	}
	defer stmt.Close()

	execer, ok := stmt.(driver.StmtExecContext)
	if !ok {
		return errSQLiteUnsupported
	}
	args := make([]driver.NamedValue, len(columns))
	for row := range cells.Rows {
		for col := range columns {
			var value driver.Value
			if text, ok := cells.At(col, row); ok {
				value = text
			}
			args[col] = driver.NamedValue{Ordinal: col + 1, Value: value}
		}
		if _, err := execer.ExecContext(ctx, args); err != nil {
			return err
		}
	}
	e.log.Debug("sheet copied", "table", tableName(wb, sh), "rows", cells.Rows)
	return nil
}

func (e *SQLite) prepare(ctx context.Context, query string) (driver.Stmt, error) {
	preparer, ok := e.conn.(driver.ConnPrepareContext)
	if !ok {
		return nil, errSQLiteUnsupported
	}
	return preparer.PrepareContext(ctx, query)
}

func (e *SQLite) exec(ctx context.Context, query string, args []driver.NamedValue) error {
	execer, ok := e.conn.(driver.ExecerContext)
	if !ok {
		return errSQLiteUnsupported
	}
	_, err := execer.ExecContext(ctx, query, args)
	return err
}

// Query implements Engine. Only SELECT statements are accepted.
func (e *SQLite) Query(ctx context.Context, query string, args []model.Value) (*model.Result, error) {
	if !strings.HasPrefix(strings.ToUpper(strings.TrimSpace(query)), "SELECT") {
		return nil, fmt.Errorf("%w: %s", model.ErrReadOnly, query)
	}
	id := uuid.NewString()
	log := e.log.With("statement_id", id)
	start := time.Now()
	log.Debug("statement started", "sql", query)

	e.mu.Lock()
	defer e.mu.Unlock()

	queryer, ok := e.conn.(driver.QueryerContext)
	if !ok {
		return nil, errSQLiteUnsupported
	}
	named := make([]driver.NamedValue, len(args))
	for i, arg := range args {
		named[i] = driver.NamedValue{Ordinal: i + 1, Value: toDriverValue(arg)}
	}
	rows, err := queryer.QueryContext(ctx, query, named)
	if err != nil {
		log.Debug("statement failed", "error", err)
		return nil, fmt.Errorf("%w: %v", model.ErrSyntax, err)
	}
	defer rows.Close()

	result, err := collect(rows)
	if err != nil {
		return nil, err
	}
	log.Debug("statement finished", "rows", result.RowCount, "elapsed", time.Since(start))
	return result, nil
}

// Close implements Engine.
func (e *SQLite) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.conn.Close()
}

func collect(rows driver.Rows) (*model.Result, error) {
	columns := rows.Columns()
	types := make([]model.ColumnType, len(columns))
	typed, hasTypes := rows.(driver.RowsColumnTypeDatabaseTypeName)
	for i := range columns {
		types[i] = model.ColumnTypeText
		if !hasTypes {
			continue
		}
		switch strings.ToUpper(typed.ColumnTypeDatabaseTypeName(i)) {
		case "INTEGER":
			types[i] = model.ColumnTypeInteger
		case "REAL":
			types[i] = model.ColumnTypeReal
		}
	}

	result := model.NewResult(columns, types, 0)
	dest := make([]driver.Value, len(columns))
	row := make([]model.Value, len(columns))
	for {
		if err := rows.Next(dest); err != nil {
			if errors.Is(err, io.EOF) {
				return result, nil
			}
			return nil, err
		}
		for i, v := range dest {
			row[i] = fromDriverValue(v)
		}
		result.AppendRow(row)
	}
}

func toDriverValue(v model.Value) driver.Value {
	switch v.Kind() {
	case model.KindNull:
		return nil
	case model.KindNumber:
		d, _ := v.Decimal()
		if d.IsInteger() {
			if !d.BigInt().IsInt64() {
				return v.String()
			}
			return d.IntPart()
		}
		f, _ := d.Float64()
		return f
	case model.KindBool:
		if v.Truthy() {
			return int64(1)
		}
		return int64(0)
	default:
		return v.String()
	}
}

func fromDriverValue(v driver.Value) model.Value {
	switch x := v.(type) {
	case nil:
		return model.Null()
	case int64:
		return model.Int(x)
	case float64:
		return model.Number(decimal.NewFromFloat(x))
	case bool:
		return model.Bool(x)
	case []byte:
		return model.ParseCell(string(x))
	case string:
		return model.ParseCell(x)
	case time.Time:
		return model.Text(x.Format(time.RFC3339))
	default:
		return model.ParseCell(fmt.Sprint(x))
	}
}
