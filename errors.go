package sheetsql

import (
	"errors"

	"github.com/nao1215/sheetsql/domain/model"
	sheetsqldriver "github.com/nao1215/sheetsql/driver"
)

var (
	// ErrNoInputs is returned by Build when no path or filesystem was added
	ErrNoInputs = errors.New("sheetsql: no input sources")

	// ErrFileNotFound indicates file not found
	ErrFileNotFound = errors.New("sheetsql: file not found")

	// ErrNotBuilt is returned by Open when Build has not succeeded
	ErrNotBuilt = errors.New("sheetsql: builder has not been built")

	// ErrNilFilesystem is returned by Build when AddFS was given a nil filesystem
	ErrNilFilesystem = errors.New("sheetsql: nil filesystem")
)

// Errors reported by statement execution and loading. Match them with errors.Is.
var (
	// ErrPlan indicates a statement shape the engine does not execute
	ErrPlan = model.ErrPlan
	// ErrResolution indicates an unknown or ambiguous table or column
	ErrResolution = model.ErrResolution
	// ErrEvaluation indicates a failure while evaluating an expression
	ErrEvaluation = model.ErrEvaluation
	// ErrSyntax indicates SQL the parser rejects
	ErrSyntax = model.ErrSyntax
	// ErrReadOnly is returned for statements that would modify data
	ErrReadOnly = model.ErrReadOnly
	// ErrUnsupportedFormat indicates an unsupported file format
	ErrUnsupportedFormat = model.ErrUnsupportedFormat
	// ErrEmptyData indicates that the data source contains no records
	ErrEmptyData = model.ErrEmptyData
	// ErrInvalidPath is returned for empty or dangerous paths
	ErrInvalidPath = sheetsqldriver.ErrInvalidPath
	// ErrUnknownEngine is returned for an engine name other than native or sqlite
	ErrUnknownEngine = sheetsqldriver.ErrUnknownEngine
)
