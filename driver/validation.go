package driver

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/nao1215/sheetsql/internal/reader"
)

// MaxWorkbooks defines the maximum number of workbooks one connector may load
const MaxWorkbooks = 1000

// MaxColumnCount defines the maximum number of columns allowed in a sheet
const MaxColumnCount = 2000

// maxParentLevels is how far a relative path may climb above the working directory
const maxParentLevels = 3

var (
	// ErrTooManyFiles is returned when too many workbooks are loaded
	ErrTooManyFiles = errors.New("sheetsql driver: too many workbooks")

	// ErrTooManyColumns is returned when a sheet has too many columns
	ErrTooManyColumns = errors.New("sheetsql driver: too many columns")

	// ErrInvalidPath is returned when a path is invalid or potentially dangerous
	ErrInvalidPath = errors.New("sheetsql driver: invalid or dangerous path")
)

var (
	systemDirs = []string{"/etc/", "/proc/", "/sys/", "/dev/", "/boot/"}

	windowsDirs = []string{
		"c:\\windows\\", "c:/windows/",
		"c:\\program files", "c:/program files",
		"\\\\?\\", // extended-length paths
		"\\\\",    // network paths
	}

	reservedNames = []string{
		"con", "prn", "aux", "nul",
		"com1", "com2", "com3", "com4", "com5", "com6", "com7", "com8", "com9",
		"lpt1", "lpt2", "lpt3", "lpt4", "lpt5", "lpt6", "lpt7", "lpt8", "lpt9",
	}
)

// ValidatePath rejects empty paths, null bytes, deep parent traversal,
// operating system directories and Windows device names.
func ValidatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return ErrInvalidPath
	}
	if strings.Contains(path, "\x00") {
		return ErrInvalidPath
	}
	if strings.Contains(filepath.Clean(path), "..") && !isLegitimateRelativePath(path) {
		return ErrInvalidPath
	}

	lowerPath := strings.ToLower(path)
	for _, dir := range systemDirs {
		if strings.HasPrefix(lowerPath, dir) {
			return ErrInvalidPath
		}
	}
	for _, dir := range windowsDirs {
		if strings.HasPrefix(lowerPath, dir) {
			return ErrInvalidPath
		}
	}

	base := strings.ToLower(reader.WorkbookName(path))
	for _, reserved := range reservedNames {
		if base == reserved {
			return ErrInvalidPath
		}
	}
	return nil
}

// ValidateColumnCount checks if the number of columns is within acceptable limits
func ValidateColumnCount(columnCount int) error {
	if columnCount > MaxColumnCount {
		return ErrTooManyColumns
	}
	return nil
}

// ValidateFileCount checks if the number of workbooks is within acceptable limits
func ValidateFileCount(fileCount int) error {
	if fileCount > MaxWorkbooks {
		return ErrTooManyFiles
	}
	return nil
}

// SanitizeForLog removes sensitive information from strings before logging
func SanitizeForLog(input string) string {
	sensitive := []string{
		"password", "passwd", "secret", "token",
		"credential", "private", "ssh", "rsa",
	}

	lower := strings.ToLower(input)
	for _, pattern := range sensitive {
		if strings.Contains(lower, pattern) {
			return "[REDACTED]"
		}
	}

	const maxLogLength = 200
	if len(input) > maxLogLength {
		return input[:maxLogLength] + "..."
	}
	return input
}

// isLegitimateRelativePath allows at most maxParentLevels leading ".." elements.
func isLegitimateRelativePath(path string) bool {
	cleanPath := filepath.Clean(path)
	if !strings.HasPrefix(cleanPath, "../") && !strings.HasPrefix(cleanPath, "..\\") && cleanPath != ".." {
		return true
	}

	parts := strings.FieldsFunc(cleanPath, func(c rune) bool {
		return c == '/' || c == '\\'
	})
	upLevels := 0
	for _, part := range parts {
		if part != ".." {
			break
		}
		upLevels++
	}
	return upLevels <= maxParentLevels
}
