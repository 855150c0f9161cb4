package driver

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/nao1215/sheetsql/domain/model"
	"github.com/nao1215/sheetsql/internal/engine"
	"github.com/nao1215/sheetsql/internal/logger"
	"github.com/nao1215/sheetsql/internal/reader"
	"github.com/shopspring/decimal"
)

// Driver implements database/sql/driver.Driver for spreadsheet files.
type Driver struct{}

// Source is a filesystem loaded together with the DSN paths.
type Source struct {
	FS   fs.FS
	Root string
}

// Config describes what a connector loads and how it executes statements.
type Config struct {
	// Paths are files or directories to load.
	Paths []string
	// Sources are additional filesystems, e.g. embed.FS.
	Sources []Source
	// Engine is engine.NativeName or engine.SQLiteName. Empty selects the native engine.
	Engine string
	Logger *logger.Logger
}

// Connector implements driver.Connector. The catalog is loaded once, on the
// first connection, and shared by every connection of the connector.
type Connector struct {
	driver *Driver
	config Config
	log    *logger.Logger

	once    sync.Once
	catalog *reader.Catalog
	loadErr error
}

// Connection implements driver.Conn over one engine instance.
type Connection struct {
	engine engine.Engine
}

// Stmt implements driver.Stmt. Statements are parsed on execution.
type Stmt struct {
	conn  *Connection
	query string
}

// Rows implements driver.Rows over a materialized result.
type Rows struct {
	result *model.Result
	pos    int
}

var (
	_ driver.DriverContext      = (*Driver)(nil)
	_ driver.Connector          = (*Connector)(nil)
	_ driver.QueryerContext     = (*Connection)(nil)
	_ driver.ExecerContext      = (*Connection)(nil)
	_ driver.ConnPrepareContext = (*Connection)(nil)
	_ driver.ConnBeginTx        = (*Connection)(nil)
	_ driver.Pinger             = (*Connection)(nil)
	_ driver.StmtQueryContext   = (*Stmt)(nil)
	_ driver.StmtExecContext    = (*Stmt)(nil)

	_ driver.RowsColumnTypeDatabaseTypeName = (*Rows)(nil)
	_ driver.RowsColumnTypeNullable         = (*Rows)(nil)
	_ driver.RowsColumnTypeScanType         = (*Rows)(nil)
)

// NewDriver creates a new sheetsql driver.
func NewDriver() *Driver {
	return &Driver{}
}

// Open implements driver.Driver.
func (d *Driver) Open(dsn string) (driver.Conn, error) {
	connector, err := d.OpenConnector(dsn)
	if err != nil {
		return nil, err
	}
	return connector.Connect(context.Background())
}

// OpenConnector implements driver.DriverContext.
func (d *Driver) OpenConnector(dsn string) (driver.Connector, error) {
	config, err := ParseDSN(dsn)
	if err != nil {
		return nil, err
	}
	return NewConnector(config)
}

// ParseDSN splits a data source name into its configuration. The DSN is a
// semicolon separated list of paths, optionally followed by ?engine=name.
func ParseDSN(dsn string) (Config, error) {
	pathPart, query, _ := strings.Cut(dsn, "?")

	var config Config
	for _, path := range strings.Split(pathPart, ";") {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		if err := ValidatePath(path); err != nil {
			return Config{}, fmt.Errorf("%w: %s", err, SanitizeForLog(path))
		}
		config.Paths = append(config.Paths, path)
	}
	if len(config.Paths) == 0 {
		return Config{}, ErrNoPathsProvided
	}

	if query != "" {
		values, err := url.ParseQuery(query)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %v", ErrInvalidDSN, err)
		}
		for key := range values {
			if key != "engine" {
				return Config{}, fmt.Errorf("%w: unknown parameter %q", ErrInvalidDSN, key)
			}
		}
		config.Engine = values.Get("engine")
	}
	return config, nil
}

// NewConnector returns a connector for config without loading anything yet.
func NewConnector(config Config) (*Connector, error) {
	if len(config.Paths) == 0 && len(config.Sources) == 0 {
		return nil, ErrNoPathsProvided
	}
	switch strings.ToLower(config.Engine) {
	case "", engine.NativeName, engine.SQLiteName:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, config.Engine)
	}
	log := config.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return &Connector{driver: NewDriver(), config: config, log: log.Named("driver")}, nil
}

// Connect implements driver.Connector.
func (c *Connector) Connect(ctx context.Context) (driver.Conn, error) {
	catalog, err := c.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	e, err := engine.New(ctx, c.config.Engine, catalog, engine.WithLogger(c.log))
	if err != nil {
		return nil, err
	}
	return &Connection{engine: e}, nil
}

// Driver implements driver.Connector.
func (c *Connector) Driver() driver.Driver {
	return c.driver
}

// Catalog loads the configured paths and sources on first use.
func (c *Connector) Catalog(ctx context.Context) (*reader.Catalog, error) {
	c.once.Do(func() {
		c.catalog, c.loadErr = c.load(ctx)
	})
	return c.catalog, c.loadErr
}

func (c *Connector) load(ctx context.Context) (*reader.Catalog, error) {
	catalog := reader.NewCatalog(reader.WithLogger(c.log))
	for _, path := range c.config.Paths {
		if err := catalog.LoadPath(ctx, path); err != nil {
			return nil, err
		}
	}
	for _, src := range c.config.Sources {
		root := src.Root
		if root == "" {
			root = "."
		}
		if err := catalog.LoadFS(ctx, src.FS, root); err != nil {
			return nil, err
		}
	}
	if err := validateCatalog(catalog); err != nil {
		return nil, err
	}
	c.log.Debug("catalog loaded", "catalog", catalog.String())
	return catalog, nil
}

func validateCatalog(catalog *reader.Catalog) error {
	sheets := catalog.Describe()
	if len(sheets) == 0 {
		return ErrNoFilesLoaded
	}
	if err := ValidateFileCount(len(catalog.Workbooks())); err != nil {
		return err
	}
	for _, s := range sheets {
		if err := ValidateColumnCount(len(s.Columns)); err != nil {
			return fmt.Errorf("%w: %s_%s", err, s.Workbook, s.Sheet)
		}
	}
	return nil
}

// QueryContext implements driver.QueryerContext.
func (conn *Connection) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	values, err := convertArgs(args)
	if err != nil {
		return nil, err
	}
	result, err := conn.engine.Query(ctx, query, values)
	if err != nil {
		return nil, err
	}
	return &Rows{result: result}, nil
}

// ExecContext implements driver.ExecerContext. Every data source is read-only.
func (conn *Connection) ExecContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Result, error) {
	return nil, fmt.Errorf("%w: %s", model.ErrReadOnly, SanitizeForLog(query))
}

// Prepare implements driver.Conn.
func (conn *Connection) Prepare(query string) (driver.Stmt, error) {
	return conn.PrepareContext(context.Background(), query)
}

// PrepareContext implements driver.ConnPrepareContext.
func (conn *Connection) PrepareContext(_ context.Context, query string) (driver.Stmt, error) {
	return &Stmt{conn: conn, query: query}, nil
}

// Begin implements driver.Conn.
func (conn *Connection) Begin() (driver.Tx, error) {
	return conn.BeginTx(context.Background(), driver.TxOptions{})
}

// BeginTx implements driver.ConnBeginTx. Transactions are not supported.
func (conn *Connection) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	return nil, ErrTxNotSupported
}

// Ping implements driver.Pinger.
func (conn *Connection) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close implements driver.Conn.
func (conn *Connection) Close() error {
	if conn.engine != nil {
		return conn.engine.Close()
	}
	return nil
}

// Close implements driver.Stmt.
func (s *Stmt) Close() error {
	return nil
}

// NumInput implements driver.Stmt. The count is checked by the planner instead.
func (s *Stmt) NumInput() int {
	return -1
}

// Exec implements driver.Stmt.
func (s *Stmt) Exec(args []driver.Value) (driver.Result, error) {
	return s.ExecContext(context.Background(), toNamed(args))
}

// ExecContext implements driver.StmtExecContext.
func (s *Stmt) ExecContext(ctx context.Context, args []driver.NamedValue) (driver.Result, error) {
	return s.conn.ExecContext(ctx, s.query, args)
}

// Query implements driver.Stmt.
func (s *Stmt) Query(args []driver.Value) (driver.Rows, error) {
	return s.QueryContext(context.Background(), toNamed(args))
}

// QueryContext implements driver.StmtQueryContext.
func (s *Stmt) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	return s.conn.QueryContext(ctx, s.query, args)
}

// Columns implements driver.Rows.
func (r *Rows) Columns() []string {
	return r.result.Columns
}

// Close implements driver.Rows.
func (r *Rows) Close() error {
	r.pos = r.result.RowCount
	return nil
}

// Next implements driver.Rows. Cells are delivered as text, missing values as nil.
func (r *Rows) Next(dest []driver.Value) error {
	if r.pos >= r.result.RowCount {
		return io.EOF
	}
	for i := range dest {
		if text, ok := r.result.Text(i, r.pos); ok {
			dest[i] = text
		} else {
			dest[i] = nil
		}
	}
	r.pos++
	return nil
}

// ColumnTypeDatabaseTypeName implements driver.RowsColumnTypeDatabaseTypeName.
func (r *Rows) ColumnTypeDatabaseTypeName(index int) string {
	return r.result.Types[index].String()
}

// ColumnTypeNullable implements driver.RowsColumnTypeNullable.
func (r *Rows) ColumnTypeNullable(int) (bool, bool) {
	return true, true
}

// ColumnTypeScanType implements driver.RowsColumnTypeScanType.
func (r *Rows) ColumnTypeScanType(int) reflect.Type {
	return reflect.TypeOf(sql.NullString{})
}

func toNamed(args []driver.Value) []driver.NamedValue {
	named := make([]driver.NamedValue, len(args))
	for i, arg := range args {
		named[i] = driver.NamedValue{Ordinal: i + 1, Value: arg}
	}
	return named
}

// convertArgs maps positional driver values onto engine values.
func convertArgs(args []driver.NamedValue) ([]model.Value, error) {
	values := make([]model.Value, len(args))
	for i, arg := range args {
		if arg.Name != "" {
			return nil, fmt.Errorf("%w: %s", ErrNamedArgsNotSupported, arg.Name)
		}
		switch v := arg.Value.(type) {
		case nil:
			values[i] = model.Null()
		case int64:
			values[i] = model.Int(v)
		case float64:
			values[i] = model.Number(decimal.NewFromFloat(v))
		case bool:
			values[i] = model.Bool(v)
		case string:
			values[i] = model.ParseCell(v)
		case []byte:
			values[i] = model.ParseCell(string(v))
		case time.Time:
			values[i] = model.Text(v.Format(time.RFC3339))
		default:
			return nil, fmt.Errorf("%w: %T", ErrUnsupportedArgument, arg.Value)
		}
	}
	return values, nil
}
