// Package reader loads workbooks from xlsx, csv, tsv, ltsv and parquet files
// (optionally gzip, bzip2, xz or zstd compressed) into a read-only catalog.
package reader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/nao1215/sheetsql/domain/model"
	"github.com/nao1215/sheetsql/internal/logger"
)

// sheet holds one loaded sheet in column-major order.
type sheet struct {
	name    string
	columns []string
	types   []model.ColumnType
	cells   model.Cells
}

// workbook is a named group of sheets.
type workbook struct {
	name   string
	source string
	sheets []*sheet
}

func (w *workbook) find(name string) *sheet {
	for _, s := range w.sheets {
		if strings.EqualFold(s.name, name) {
			return s
		}
	}
	return nil
}

// Catalog is an in-memory model.Reader. It is safe for concurrent readers.
type Catalog struct {
	mu        sync.RWMutex
	workbooks []*workbook
	log       *logger.Logger
}

var _ model.Reader = (*Catalog)(nil)

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the logger used to report skipped sheets.
func WithLogger(log *logger.Logger) Option {
	return func(c *Catalog) {
		if log != nil {
			c.log = log
		}
	}
}

// NewCatalog creates an empty catalog.
func NewCatalog(opts ...Option) *Catalog {
	c := &Catalog{log: logger.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AddSheet registers a sheet from row-major rows whose first row is the header.
// Column types are inferred from the data rows.
func (c *Catalog) AddSheet(workbookName, sheetName string, rows [][]string) error {
	return c.addSheet(workbookName, sheetName, rows, nil)
}

func (c *Catalog) addSheet(workbookName, sheetName string, rows [][]string, missing [][]bool) error {
	columns, cells, err := normalize(rows, missing)
	if err != nil {
		return model.NewErrorContext("add sheet", "").WithSheet(workbookName, sheetName).Error(err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	wb := c.lookup(workbookName)
	if wb == nil {
		wb = &workbook{name: workbookName}
		c.workbooks = append(c.workbooks, wb)
	}
	if wb.find(sheetName) != nil {
		return model.NewErrorContext("add sheet", wb.source).
			WithSheet(workbookName, sheetName).
			Error(errors.New("sheet already exists"))
	}
	wb.sheets = append(wb.sheets, &sheet{
		name:    sheetName,
		columns: columns,
		types:   model.InferColumnTypes(cells.Text),
		cells:   cells,
	})
	return nil
}

// LoadPath loads a file, or every supported file below a directory.
func (c *Catalog) LoadPath(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return model.NewErrorContext("load", path).Error(err)
	}
	if info.IsDir() {
		return c.LoadFS(ctx, os.DirFS(path), ".")
	}
	return c.loadFile(ctx, os.DirFS(filepath.Dir(path)), filepath.Base(path), path)
}

// LoadFS loads every supported file below root in fsys.
func (c *Catalog) LoadFS(ctx context.Context, fsys fs.FS, root string) error {
	var files []string
	err := fs.WalkDir(fsys, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && IsSupportedFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return model.NewErrorContext("walk", root).Error(err)
	}
	if len(files) == 0 {
		return model.NewErrorContext("load", root).Error(model.ErrUnsupportedFormat)
	}

	var errs []error
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.loadFile(ctx, fsys, file, file); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// loadFile parses one file and registers its sheets. Sheets that fail
// validation are skipped with a warning; the workbook stays usable.
func (c *Catalog) loadFile(ctx context.Context, fsys fs.FS, name, display string) error {
	f, err := fsys.Open(name)
	if err != nil {
		return model.NewErrorContext("open", display).Error(err)
	}
	defer func() {
		_ = f.Close()
	}()

	sheets, err := parseFile(ctx, name, f)
	if err != nil {
		return model.NewErrorContext("parse", display).Error(err)
	}

	workbookName := WorkbookName(name)
	c.mu.Lock()
	if c.lookup(workbookName) != nil {
		c.mu.Unlock()
		return model.NewErrorContext("load", display).
			WithSheet(workbookName, "").
			Error(errors.New("duplicate workbook name"))
	}
	c.workbooks = append(c.workbooks, &workbook{name: workbookName, source: display})
	c.mu.Unlock()

	for _, raw := range sheets {
		if err := c.addSheet(workbookName, raw.name, raw.rows, raw.missing); err != nil {
			c.log.Warn("skipping sheet", "file", display, "sheet", raw.name, "error", err)
			continue
		}
	}
	c.log.Debug("workbook loaded", "file", display, "workbook", workbookName, "sheets", len(sheets))
	return nil
}

// lookup finds a workbook case-insensitively. Callers hold c.mu.
func (c *Catalog) lookup(name string) *workbook {
	for _, wb := range c.workbooks {
		if strings.EqualFold(wb.name, name) {
			return wb
		}
	}
	return nil
}

func (c *Catalog) sheet(workbookName, sheetName string) (*sheet, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	wb := c.lookup(workbookName)
	if wb == nil {
		return nil, model.ResolutionErrorf("workbook %q not found", workbookName)
	}
	s := wb.find(sheetName)
	if s == nil {
		return nil, model.ResolutionErrorf("sheet %q not found in workbook %q", sheetName, workbookName)
	}
	return s, nil
}

// Workbooks lists workbook names in load order.
func (c *Catalog) Workbooks() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, len(c.workbooks))
	for i, wb := range c.workbooks {
		names[i] = wb.name
	}
	return names
}

// Sheets lists the sheets of a workbook in file order.
func (c *Catalog) Sheets(workbookName string) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	wb := c.lookup(workbookName)
	if wb == nil {
		return nil, model.ResolutionErrorf("workbook %q not found", workbookName)
	}
	names := make([]string, len(wb.sheets))
	for i, s := range wb.sheets {
		names[i] = s.name
	}
	return names, nil
}

// Columns lists the column names of a sheet.
func (c *Catalog) Columns(workbookName, sheetName string) ([]string, error) {
	s, err := c.sheet(workbookName, sheetName)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), s.columns...), nil
}

// ColumnTypes lists the inferred type tags of a sheet.
func (c *Catalog) ColumnTypes(workbookName, sheetName string) ([]model.ColumnType, error) {
	s, err := c.sheet(workbookName, sheetName)
	if err != nil {
		return nil, err
	}
	return append([]model.ColumnType(nil), s.types...), nil
}

// Rows returns the sheet's column-major cells. The slices are shared and must not be modified.
func (c *Catalog) Rows(workbookName, sheetName string) (model.Cells, error) {
	s, err := c.sheet(workbookName, sheetName)
	if err != nil {
		return model.Cells{}, err
	}
	return s.cells, nil
}

// SheetInfo describes one sheet for catalog listings.
type SheetInfo struct {
	Workbook string   `json:"workbook" yaml:"workbook"`
	Sheet    string   `json:"sheet" yaml:"sheet"`
	Columns  []string `json:"columns" yaml:"columns"`
	Types    []string `json:"types" yaml:"types"`
	Rows     int      `json:"rows" yaml:"rows"`
}

// Describe lists every sheet sorted by workbook and sheet name.
func (c *Catalog) Describe() []SheetInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var infos []SheetInfo
	for _, wb := range c.workbooks {
		for _, s := range wb.sheets {
			types := make([]string, len(s.types))
			for i, t := range s.types {
				types[i] = t.String()
			}
			infos = append(infos, SheetInfo{
				Workbook: wb.name,
				Sheet:    s.name,
				Columns:  append([]string(nil), s.columns...),
				Types:    types,
				Rows:     s.cells.Rows,
			})
		}
	}
	sort.SliceStable(infos, func(i, j int) bool {
		if infos[i].Workbook != infos[j].Workbook {
			return infos[i].Workbook < infos[j].Workbook
		}
		return infos[i].Sheet < infos[j].Sheet
	})
	return infos
}

// String summarizes the catalog for logs.
func (c *Catalog) String() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	sheets := 0
	for _, wb := range c.workbooks {
		sheets += len(wb.sheets)
	}
	return fmt.Sprintf("catalog(%d workbooks, %d sheets)", len(c.workbooks), sheets)
}
