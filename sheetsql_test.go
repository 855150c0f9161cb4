package sheetsql

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	users := writeTestFile(t, dir, "users.csv", []byte("id,name,dept\n1,Alice,10\n2,Bob,20\n3,Carol,10\n"))
	depts := writeTestFile(t, dir, "depts.tsv", []byte("id\tname\n10\tSales\n20\tDev\n"))

	db, err := Open(users, depts)
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, [][]string{{"Dev", "1"}, {"Sales", "2"}},
		collect(t, db, `SELECT d.name, COUNT(*) AS n
			FROM users u JOIN depts d ON u.dept = d.id
			GROUP BY d.name ORDER BY d.name`))

	_, err = db.Exec("DROP TABLE users")
	assert.ErrorIs(t, err, ErrReadOnly)
}

func TestOpenContext(t *testing.T) {
	t.Parallel()

	t.Run("canceled context", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeTestFile(t, dir, "users.csv", []byte("id\n1\n"))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := OpenContext(ctx, dir)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("no paths", func(t *testing.T) {
		t.Parallel()

		_, err := OpenContext(context.Background())
		assert.ErrorIs(t, err, ErrNoInputs)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := OpenContext(context.Background(), filepath.Join(t.TempDir(), "none.xlsx"))
		assert.ErrorIs(t, err, ErrFileNotFound)
	})
}

func TestRegisteredDriver(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := writeTestFile(t, dir, "a.csv", []byte("x\n1\n2\n"))
	b := writeTestFile(t, dir, "b.csv", []byte("x\n2\n3\n"))

	db, err := sql.Open(DriverName, a+";"+b+"?engine="+EngineSQLite)
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, [][]string{{"2"}},
		collect(t, db, "SELECT a.x FROM a JOIN b ON a.x = b.x"))
}
