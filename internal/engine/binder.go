package engine

import (
	"strings"

	"github.com/nao1215/sheetsql/domain/model"
)

// tableSeparator splits a combined workbook_sheet identifier.
const tableSeparator = "_"

// TableRef is a table reference as written in a statement.
type TableRef struct {
	// Workbook is the explicit qualifier of workbook.sheet, if any.
	Workbook string
	// Name is the table identifier, either a sheet or workbook_sheet.
	Name  string
	Alias string
}

// String returns the reference as written.
func (r TableRef) String() string {
	if r.Workbook == "" {
		return r.Name
	}
	return r.Workbook + "." + r.Name
}

// Binder resolves table references to snapshots through a model.Reader.
type Binder struct {
	reader model.Reader
}

// NewBinder returns a binder reading from r.
func NewBinder(r model.Reader) *Binder {
	return &Binder{reader: r}
}

// SplitTableName splits a combined identifier at its first separator.
// The sentinel workbook "sa" is returned as the empty workbook.
func SplitTableName(name string) (workbook, sheet string) {
	before, after, found := strings.Cut(name, tableSeparator)
	if !found {
		return "", name
	}
	if strings.EqualFold(before, model.DefaultWorkbook) {
		return "", after
	}
	return before, after
}

// Bind loads an immutable snapshot for ref.
func (b *Binder) Bind(ref TableRef) (*model.TableInfo, error) {
	workbook, sheet, err := b.resolve(ref)
	if err != nil {
		return nil, err
	}

	columns, err := b.reader.Columns(workbook, sheet)
	if err != nil {
		return nil, err
	}
	types, err := b.reader.ColumnTypes(workbook, sheet)
	if err != nil {
		return nil, err
	}
	cells, err := b.reader.Rows(workbook, sheet)
	if err != nil {
		return nil, err
	}
	return model.NewTableInfo(workbook, sheet, ref.Alias, columns, types, cells)
}

// resolve maps ref to the catalog's workbook and sheet spelling.
func (b *Binder) resolve(ref TableRef) (string, string, error) {
	if ref.Workbook != "" && !strings.EqualFold(ref.Workbook, model.DefaultWorkbook) {
		if wb, sh, ok := b.find(ref.Workbook, ref.Name); ok {
			return wb, sh, nil
		}
		return "", "", model.ResolutionErrorf("table %s not found", ref)
	}
	if ref.Workbook != "" {
		return b.findDefault(ref.Name)
	}

	workbook, sheet := SplitTableName(ref.Name)
	if workbook == "" {
		return b.findDefault(sheet)
	}
	if wb, sh, ok := b.find(workbook, sheet); ok {
		return wb, sh, nil
	}

	// Workbook names may themselves contain the separator.
	for i := len(workbook) + 1; i < len(ref.Name); i++ {
		if !strings.HasPrefix(ref.Name[i:], tableSeparator) {
			continue
		}
		if wb, sh, ok := b.find(ref.Name[:i], ref.Name[i+len(tableSeparator):]); ok {
			return wb, sh, nil
		}
	}

	// A sheet whose own name contains the separator.
	if wb, sh, err := b.findDefault(ref.Name); err == nil {
		return wb, sh, nil
	}
	return "", "", model.ResolutionErrorf("table %s not found", ref)
}

// find matches a workbook and sheet case-insensitively.
func (b *Binder) find(workbook, sheet string) (string, string, bool) {
	for _, wb := range b.reader.Workbooks() {
		if !strings.EqualFold(wb, workbook) {
			continue
		}
		sheets, err := b.reader.Sheets(wb)
		if err != nil {
			return "", "", false
		}
		for _, sh := range sheets {
			if strings.EqualFold(sh, sheet) {
				return wb, sh, true
			}
		}
	}
	return "", "", false
}

// findDefault searches every workbook for sheet; the match must be unique.
func (b *Binder) findDefault(sheet string) (string, string, error) {
	var matches [][2]string
	for _, wb := range b.reader.Workbooks() {
		sheets, err := b.reader.Sheets(wb)
		if err != nil {
			return "", "", err
		}
		for _, sh := range sheets {
			if strings.EqualFold(sh, sheet) {
				matches = append(matches, [2]string{wb, sh})
			}
		}
	}
	switch len(matches) {
	case 0:
		return "", "", model.ResolutionErrorf("sheet %s not found in any workbook", sheet)
	case 1:
		return matches[0][0], matches[0][1], nil
	default:
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = m[0] + "_" + m[1]
		}
		return "", "", model.ResolutionErrorf("sheet %s is ambiguous: %s", sheet, strings.Join(names, ", "))
	}
}
