package driver

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "relative workbook", path: "testdata/sales.xlsx"},
		{name: "compressed file", path: "data/users.csv.gz"},
		{name: "parent directory", path: "../shared/sales.xlsx"},
		{name: "windows absolute path", path: "C:\\Users\\test\\data.csv"},
		{name: "empty path", path: "", wantErr: true},
		{name: "whitespace only", path: "   ", wantErr: true},
		{name: "null byte", path: "sales\x00.xlsx", wantErr: true},
		{name: "deep traversal", path: "../../../../../../etc/passwd", wantErr: true},
		{name: "unix system directory", path: "/etc/passwd", wantErr: true},
		{name: "windows system directory", path: "C:\\Windows\\System32\\config", wantErr: true},
		{name: "network path", path: "\\\\server\\share\\data.csv", wantErr: true},
		{name: "reserved device name", path: "con.xlsx", wantErr: true},
		{name: "reserved name compressed", path: "NUL.csv.gz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidatePath(tt.path)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPath)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateLimits(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateColumnCount(MaxColumnCount))
	assert.ErrorIs(t, ValidateColumnCount(MaxColumnCount+1), ErrTooManyColumns)
	assert.NoError(t, ValidateFileCount(MaxWorkbooks))
	assert.ErrorIs(t, ValidateFileCount(MaxWorkbooks+1), ErrTooManyFiles)
}

func TestSanitizeForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain path", input: "data/sales.xlsx", want: "data/sales.xlsx"},
		{name: "sensitive word", input: "/home/me/.ssh/id_rsa", want: "[REDACTED]"},
		{name: "case insensitive", input: "PASSWORD.csv", want: "[REDACTED]"},
		{name: "long input", input: strings.Repeat("a", 250), want: strings.Repeat("a", 200) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, SanitizeForLog(tt.input))
		})
	}
}
