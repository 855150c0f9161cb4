package sheetsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"

	sheetsqldriver "github.com/nao1215/sheetsql/driver"
	"github.com/nao1215/sheetsql/internal/logger"
	"github.com/nao1215/sheetsql/internal/reader"
	"go.uber.org/zap"
)

// TableInfo describes one loaded sheet.
type TableInfo = reader.SheetInfo

// DBBuilder configures the inputs of a database before it is opened.
//
//	builder := sheetsql.NewBuilder().
//		AddPath("sales.xlsx").
//		AddFS(embeddedFS).
//		WithEngine(sheetsql.EngineNative)
//	validatedBuilder, err := builder.Build(ctx)
//	if err != nil {
//		return err
//	}
//	db, err := validatedBuilder.Open(ctx)
//	if err != nil {
//		return err
//	}
//	defer db.Close()
type DBBuilder struct {
	// paths contains regular file and directory paths
	paths []string
	// filesystems contains fs.FS instances searched from their root
	filesystems []fs.FS
	engine      string
	log         *logger.Logger
	// connector is set by a successful Build
	connector *sheetsqldriver.Connector
}

// NewBuilder creates a new database builder for configuring inputs.
func NewBuilder() *DBBuilder {
	return &DBBuilder{
		paths:       make([]string, 0),
		filesystems: make([]fs.FS, 0),
		engine:      EngineNative,
		log:         logger.NewNop(),
	}
}

// AddPath adds a file or directory. Directories are searched recursively
// for supported files.
//
// Returns the builder for method chaining.
func (b *DBBuilder) AddPath(path string) *DBBuilder {
	b.paths = append(b.paths, path)
	return b
}

// AddPaths adds multiple files or directories.
//
// Returns the builder for method chaining.
func (b *DBBuilder) AddPaths(paths ...string) *DBBuilder {
	b.paths = append(b.paths, paths...)
	return b
}

// AddFS adds every supported file of an fs.FS, such as an embed.FS.
// Files are read in place; nothing is copied to disk.
//
//	//go:embed data
//	var dataFS embed.FS
//
//	builder := sheetsql.NewBuilder().AddFS(dataFS)
//
// Returns the builder for method chaining.
func (b *DBBuilder) AddFS(filesystem fs.FS) *DBBuilder {
	b.filesystems = append(b.filesystems, filesystem)
	return b
}

// WithEngine selects EngineNative (the default) or EngineSQLite.
//
// Returns the builder for method chaining.
func (b *DBBuilder) WithEngine(name string) *DBBuilder {
	b.engine = name
	return b
}

// WithLogger makes loading and statement execution log to l.
// Statements are logged at debug level.
//
// Returns the builder for method chaining.
func (b *DBBuilder) WithLogger(l *zap.Logger) *DBBuilder {
	b.log = logger.FromZap(l)
	return b
}

// Build validates the configured inputs and loads every sheet.
// Loading happens once; databases opened from the builder share the loaded sheets.
//
// Returns the same builder instance for method chaining, or an error if validation fails.
func (b *DBBuilder) Build(ctx context.Context) (*DBBuilder, error) {
	if len(b.paths) == 0 && len(b.filesystems) == 0 {
		return nil, ErrNoInputs
	}

	for _, path := range b.paths {
		if err := b.validatePath(path); err != nil {
			return nil, err
		}
	}

	sources := make([]sheetsqldriver.Source, 0, len(b.filesystems))
	for _, filesystem := range b.filesystems {
		if filesystem == nil {
			return nil, ErrNilFilesystem
		}
		sources = append(sources, sheetsqldriver.Source{FS: filesystem})
	}

	connector, err := sheetsqldriver.NewConnector(sheetsqldriver.Config{
		Paths:   b.paths,
		Sources: sources,
		Engine:  b.engine,
		Logger:  b.log,
	})
	if err != nil {
		return nil, err
	}
	if _, err := connector.Catalog(ctx); err != nil {
		return nil, err
	}

	b.connector = connector
	return b, nil
}

func (b *DBBuilder) validatePath(path string) error {
	if err := sheetsqldriver.ValidatePath(path); err != nil {
		return fmt.Errorf("%w: %s", err, sheetsqldriver.SanitizeForLog(path))
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !info.IsDir() && !reader.IsSupportedFile(path) {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	return nil
}

// Open returns a database over the inputs loaded by Build.
// The caller is responsible for closing it.
func (b *DBBuilder) Open(ctx context.Context) (*sql.DB, error) {
	if b.connector == nil {
		return nil, ErrNotBuilt
	}

	db := sql.OpenDB(b.connector)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Tables lists the loaded sheets sorted by workbook and sheet name.
func (b *DBBuilder) Tables(ctx context.Context) ([]TableInfo, error) {
	if b.connector == nil {
		return nil, ErrNotBuilt
	}
	catalog, err := b.connector.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Describe(), nil
}
