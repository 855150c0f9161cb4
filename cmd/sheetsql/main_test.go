package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "users.csv")
	require.NoError(t, os.WriteFile(path, []byte("id,name,age\n1,Alice,30\n2,Bob,25\n3,Carol,35\n"), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCmd_Query(t *testing.T) {
	t.Parallel()

	path := writeCSV(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "csv output",
			args: []string{"-f", "csv", "-q", "SELECT name FROM users WHERE age > 26 ORDER BY age DESC", path},
			want: "name\nCarol\nAlice\n",
		},
		{
			name: "sqlite engine",
			args: []string{"--engine", "sqlite", "--format", "csv", "--query", "SELECT COUNT(*) AS n FROM users_users", path},
			want: "n\n3\n",
		},
		{
			name: "yaml output",
			args: []string{"-f", "yaml", "-q", "SELECT id, name FROM users ORDER BY id LIMIT 1", path},
			want: "- id: \"1\"\n  name: Alice\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := execute(t, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRootCmd_Errors(t *testing.T) {
	t.Parallel()

	path := writeCSV(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "no paths", args: []string{"-q", "SELECT 1"}, want: "no input files"},
		{name: "bad engine", args: []string{"-e", "oracle", "-q", "SELECT 1", path}, want: "invalid engine"},
		{name: "bad format", args: []string{"-f", "xml", "-q", "SELECT 1", path}, want: "invalid output format"},
		{name: "missing config", args: []string{"-c", filepath.Join(t.TempDir(), "none.yaml"), path}, want: "error loading config"},
		{name: "bad query", args: []string{"-q", "SELECT nope FROM users", path}, want: "column nope not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := execute(t, tt.args...)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestTablesCmd(t *testing.T) {
	t.Parallel()

	got, err := execute(t, "tables", writeCSV(t))
	require.NoError(t, err)
	assert.Contains(t, got, "workbook: users")
	assert.Contains(t, got, "rows: 3")
}

func TestConfigFile(t *testing.T) {
	t.Parallel()

	path := writeCSV(t)
	cfgPath := filepath.Join(t.TempDir(), "sheetsql.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("paths:\n  - "+path+"\noutput:\n  format: csv\n"), 0o600))

	got, err := execute(t, "-c", cfgPath, "-q", "SELECT name FROM users WHERE id = 2")
	require.NoError(t, err)
	assert.Equal(t, "name\nBob\n", got)
}

func TestVersionCmd(t *testing.T) {
	t.Parallel()

	got, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "sheetsql dev (built unknown)\n", got)
}
