package model

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ColumnType is the type tag reported for a column.
type ColumnType string

const (
	// ColumnTypeText represents TEXT column type
	ColumnTypeText ColumnType = "TEXT"
	// ColumnTypeInteger represents INTEGER column type
	ColumnTypeInteger ColumnType = "INTEGER"
	// ColumnTypeReal represents REAL column type
	ColumnTypeReal ColumnType = "REAL"
	// ColumnTypeDatetime represents datetime values kept as text
	ColumnTypeDatetime ColumnType = "DATETIME"
	// ColumnTypeBoolean represents TRUE/FALSE cells
	ColumnTypeBoolean ColumnType = "BOOLEAN"
)

// String returns the tag text.
func (ct ColumnType) String() string {
	return string(ct)
}

// Common datetime patterns to detect
var datetimePatterns = []struct {
	pattern *regexp.Regexp
	formats []string
}{
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})$`),
		[]string{time.RFC3339, time.RFC3339Nano},
	},
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}(\.\d+)?$`),
		[]string{"2006-01-02T15:04:05", "2006-01-02T15:04:05.000", "2006-01-02 15:04:05", "2006-01-02 15:04:05.000"},
	},
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),
		[]string{"2006-01-02"},
	},
	{
		regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{2,4}$`),
		[]string{"1/2/2006", "01/02/2006", "1/2/06"},
	},
	{
		regexp.MustCompile(`^\d{1,2}:\d{2}(:\d{2})?$`),
		[]string{"15:04:05", "15:04", "3:04"},
	},
}

// isDatetime checks if a string value represents a datetime
func isDatetime(value string) bool {
	for _, dp := range datetimePatterns {
		if !dp.pattern.MatchString(value) {
			continue
		}
		for _, format := range dp.formats {
			if _, err := time.Parse(format, value); err == nil {
				return true
			}
		}
	}
	return false
}

// isBoolean reports spreadsheet boolean cells.
func isBoolean(value string) bool {
	return strings.EqualFold(value, "true") || strings.EqualFold(value, "false")
}

// InferColumnType infers the type tag from a column's cell texts.
// Empty cells are skipped. Priority: TEXT > DATETIME > BOOLEAN > REAL > INTEGER.
func InferColumnType(values []string) ColumnType {
	var hasDatetime, hasBoolean, hasReal, hasInteger bool

	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if isDatetime(value) {
			hasDatetime = true
			continue
		}
		if isBoolean(value) {
			hasBoolean = true
			continue
		}
		if _, err := strconv.ParseInt(value, 10, 64); err == nil {
			hasInteger = true
			continue
		}
		if _, err := strconv.ParseFloat(value, 64); err == nil {
			hasReal = true
			continue
		}
		return ColumnTypeText
	}

	switch {
	case hasDatetime && !hasBoolean && !hasReal && !hasInteger:
		return ColumnTypeDatetime
	case hasBoolean && !hasDatetime && !hasReal && !hasInteger:
		return ColumnTypeBoolean
	case hasDatetime || hasBoolean:
		return ColumnTypeText
	case hasReal:
		return ColumnTypeReal
	case hasInteger:
		return ColumnTypeInteger
	default:
		return ColumnTypeText
	}
}

// InferColumnTypes infers one type tag per column of a column-major matrix.
func InferColumnTypes(data [][]string) []ColumnType {
	types := make([]ColumnType, len(data))
	for i, column := range data {
		types[i] = InferColumnType(column)
	}
	return types
}
