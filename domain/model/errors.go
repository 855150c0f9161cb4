// Package model provides the domain model shared by the sheetsql engine,
// reader and driver: values, table snapshots, expressions, plans and results.
package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrPlan is returned when a statement has a shape the planner does not support.
	ErrPlan = errors.New("sheetsql: unsupported statement")

	// ErrResolution is returned when a table or column is absent from the catalog.
	ErrResolution = errors.New("sheetsql: unresolved reference")

	// ErrEvaluation is returned when an expression reference cannot be evaluated.
	ErrEvaluation = errors.New("sheetsql: evaluation failed")

	// ErrSyntax is returned when SQL text cannot be parsed.
	ErrSyntax = errors.New("sheetsql: syntax error")

	// ErrReadOnly is returned for statements that would modify data.
	ErrReadOnly = errors.New("sheetsql: data sources are read-only")

	// ErrDuplicateColumnName is returned when a sheet contains duplicate column names.
	ErrDuplicateColumnName = errors.New("sheetsql: duplicate column name")

	// ErrUnsupportedFormat indicates an unsupported file format.
	ErrUnsupportedFormat = errors.New("sheetsql: unsupported file format")

	// ErrEmptyData indicates that a data source contains no header row.
	ErrEmptyData = errors.New("sheetsql: empty data source")
)

// PlanErrorf wraps ErrPlan with a formatted message.
func PlanErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPlan, fmt.Sprintf(format, args...))
}

// ResolutionErrorf wraps ErrResolution with a formatted message.
func ResolutionErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrResolution, fmt.Sprintf(format, args...))
}

// EvaluationErrorf wraps ErrEvaluation with a formatted message.
func EvaluationErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrEvaluation, fmt.Sprintf(format, args...))
}

// ErrorContext provides context for where an error occurred
type ErrorContext struct {
	Operation string
	FilePath  string
	Workbook  string
	Sheet     string
	Details   string
}

// NewErrorContext creates a new error context
func NewErrorContext(operation, filePath string) *ErrorContext {
	return &ErrorContext{
		Operation: operation,
		FilePath:  filePath,
	}
}

// WithSheet adds workbook and sheet context to the error
func (ec *ErrorContext) WithSheet(workbook, sheet string) *ErrorContext {
	ec.Workbook = workbook
	ec.Sheet = sheet
	return ec
}

// WithDetails adds details to the error context
func (ec *ErrorContext) WithDetails(details string) *ErrorContext {
	ec.Details = details
	return ec
}

// Error creates a formatted error with context
func (ec *ErrorContext) Error(baseErr error) error {
	parts := []string{fmt.Sprintf("sheetsql: %s failed", ec.Operation)}
	if ec.FilePath != "" {
		parts = append(parts, "file: "+ec.FilePath)
	}
	if ec.Workbook != "" {
		parts = append(parts, "workbook: "+ec.Workbook)
	}
	if ec.Sheet != "" {
		parts = append(parts, "sheet: "+ec.Sheet)
	}
	if ec.Details != "" {
		parts = append(parts, "details: "+ec.Details)
	}

	msg := strings.Join(parts, ", ")
	if baseErr != nil {
		return fmt.Errorf("%s: %w", msg, baseErr)
	}
	return errors.New(msg)
}
