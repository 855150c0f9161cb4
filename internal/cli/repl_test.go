package cli

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/chzyer/readline"
	"github.com/nao1215/sheetsql"
	"github.com/nao1215/sheetsql/internal/config"
	"github.com/nao1215/sheetsql/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedReader replays lines and then reports io.EOF.
type scriptedReader struct {
	lines   []string
	prompts []string
	closed  bool
}

func (s *scriptedReader) Readline() (string, error) {
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	if line == "^C" {
		return "", readline.ErrInterrupt
	}
	return line, nil
}

func (s *scriptedReader) SetPrompt(prompt string) {
	s.prompts = append(s.prompts, prompt)
}

func (s *scriptedReader) Close() error {
	s.closed = true
	return nil
}

func newTestREPL(t *testing.T) (*REPL, *bytes.Buffer) {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "users.csv"),
		[]byte("id,name,city\n1,Alice,Tokyo\n2,Bob,\n"), 0o600))

	ctx := context.Background()
	b, err := sheetsql.NewBuilder().AddPath(dir).Build(ctx)
	require.NoError(t, err)
	db, err := b.Open(ctx)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, db.Close())
	})

	cfg := &config.Config{
		Engine: "native",
		Log:    config.LogConfig{Level: "info", Format: "console"},
		Output: config.OutputConfig{Format: "csv"},
		REPL:   config.REPLConfig{Prompt: "sheetsql> "},
	}
	var out bytes.Buffer
	r := NewREPL(cfg, logger.NewNop(), db, b.Tables)
	r.out = &out
	return r, &out
}

func TestREPL_Loop(t *testing.T) {
	t.Parallel()

	r, out := newTestREPL(t)
	rl := &scriptedReader{lines: []string{
		"SELECT name",
		"FROM users",
		"WHERE id = 2;",
		"",
		"SELECT id FROM",
		"^C",
		"SELECT COUNT(*) AS n FROM users;",
		".exit",
		"SELECT 'unreachable' FROM users;",
	}}

	require.NoError(t, r.loop(context.Background(), rl))
	assert.True(t, rl.closed)
	assert.Equal(t, "name\nBob\nn\n2\n", out.String())
	assert.Contains(t, rl.prompts, continuationPrompt)
	assert.Equal(t, "sheetsql> ", rl.prompts[0])
}

func TestREPL_Errors(t *testing.T) {
	t.Parallel()

	r, out := newTestREPL(t)
	rl := &scriptedReader{lines: []string{
		"SELECT * FROM missing;",
		".bogus",
		"DELETE FROM users;",
	}}

	require.NoError(t, r.loop(context.Background(), rl))
	assert.Contains(t, out.String(), "Error: sheetsql: unresolved reference")
	assert.Contains(t, out.String(), "Unknown command: .bogus")
	assert.Contains(t, out.String(), "read-only")
}

func TestREPL_DotCommands(t *testing.T) {
	t.Parallel()

	r, out := newTestREPL(t)
	ctx := context.Background()

	assert.Equal(t, commandOK, r.dotCommand(ctx, ".tables"))
	assert.Contains(t, out.String(), "workbook: users")
	assert.Contains(t, out.String(), "- city")

	out.Reset()
	assert.Equal(t, commandOK, r.dotCommand(ctx, ".mode json"))
	assert.Equal(t, "json", r.config.Output.Format)

	assert.Equal(t, commandOK, r.dotCommand(ctx, ".mode xml"))
	assert.Equal(t, "json", r.config.Output.Format)
	assert.Contains(t, out.String(), "invalid output format")

	out.Reset()
	assert.Equal(t, commandOK, r.dotCommand(ctx, ".help"))
	assert.Contains(t, out.String(), ".tables")

	assert.Equal(t, commandExit, r.dotCommand(ctx, ".QUIT"))
}

func TestREPL_ReadError(t *testing.T) {
	t.Parallel()

	r, _ := newTestREPL(t)
	err := r.loop(context.Background(), &failingReader{})
	assert.ErrorContains(t, err, "readline error")
}

type failingReader struct{ scriptedReader }

func (f *failingReader) Readline() (string, error) {
	return "", errors.New("terminal gone")
}

func TestHistoryFile(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/tmp/h", historyFile("/tmp/h"))
	if home, err := os.UserHomeDir(); err == nil {
		assert.Equal(t, filepath.Join(home, ".sheetsql_history"), historyFile(""))
	}
}

func TestQuery(t *testing.T) {
	t.Parallel()

	r, _ := newTestREPL(t)
	table, err := Query(context.Background(), r.db, "SELECT name, city FROM users ORDER BY id")
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "city"}, table.Columns)
	assert.Equal(t, []string{"TEXT", "TEXT"}, table.Types)
	assert.Equal(t, [][]sql.NullString{
		{{String: "Alice", Valid: true}, {String: "Tokyo", Valid: true}},
		{{String: "Bob", Valid: true}, {String: "", Valid: true}},
	}, table.Rows)
}
