package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestExecutor(t *testing.T, opts Options) *Executor {
	exec, err := NewMemoryExecutor(zaptest.NewLogger(t), opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = exec.Close() })
	require.NoError(t, exec.Bootstrap(context.Background()))
	return exec
}

func TestSelectAllEmployees(t *testing.T) {
	exec := newTestExecutor(t, Options{})

	res, err := exec.Execute(context.Background(), "SELECT * FROM employees")
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "name", "age", "department"}, res.Columns)
	require.Len(t, res.Rows, 3)
	assert.Equal(t, []any{int64(1), "Alice", int64(30), "HR"}, res.Rows[0])
	assert.Equal(t, []any{int64(2), "Bob", int64(25), "Engineering"}, res.Rows[1])
	assert.Equal(t, []any{int64(3), "Charlie", int64(35), "Marketing"}, res.Rows[2])
}

func TestProjectionMatchesStatement(t *testing.T) {
	exec := newTestExecutor(t, Options{})

	res, err := exec.Execute(context.Background(), "SELECT name, age FROM employees WHERE age > 28 ORDER BY age DESC")
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "age"}, res.Columns)
	assert.Equal(t, [][]any{{"Charlie", int64(35)}, {"Alice", int64(30)}}, res.Rows)
}

func TestBootstrapIsIdempotent(t *testing.T) {
	exec := newTestExecutor(t, Options{})
	require.NoError(t, exec.Bootstrap(context.Background()))

	res, err := exec.Execute(context.Background(), "SELECT COUNT(*) AS n FROM employees")
	require.NoError(t, err)
	assert.Equal(t, [][]any{{int64(3)}}, res.Rows)
}

func TestMalformedSQL(t *testing.T) {
	exec := newTestExecutor(t, Options{})

	_, err := exec.Execute(context.Background(), "SELEKT * FROM employees")
	assert.Error(t, err)
}

func TestMissingTable(t *testing.T) {
	exec := newTestExecutor(t, Options{})

	_, err := exec.Execute(context.Background(), "SELECT * FROM staff")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such table")
}

func TestWriteWithoutResultSet(t *testing.T) {
	exec := newTestExecutor(t, Options{})
	ctx := context.Background()

	res, err := exec.Execute(ctx, "INSERT INTO employees (name, age, department) VALUES ('Dana', 41, 'Sales')")
	require.NoError(t, err)
	assert.Empty(t, res.Columns)
	assert.Empty(t, res.Rows)

	res, err = exec.Execute(ctx, "SELECT name FROM employees WHERE department = 'Sales'")
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"Dana"}}, res.Rows)
}

func TestReadOnlyRejectsWrites(t *testing.T) {
	exec := newTestExecutor(t, Options{ReadOnly: true})
	ctx := context.Background()

	_, err := exec.Execute(ctx, "DELETE FROM employees")
	require.Error(t, err)

	res, err := exec.Execute(ctx, "SELECT COUNT(*) FROM employees")
	require.NoError(t, err)
	assert.Equal(t, [][]any{{int64(3)}}, res.Rows)
}

func TestReadOnlyCannotBeSwitchedOff(t *testing.T) {
	ctx := context.Background()
	for name, exec := range map[string]*Executor{
		"memory": newTestExecutor(t, Options{ReadOnly: true}),
		"file":   newFileTestExecutor(t, Options{ReadOnly: true}),
	} {
		t.Run(name, func(t *testing.T) {
			_, _ = exec.Execute(ctx, "PRAGMA query_only = OFF")

			_, err := exec.Execute(ctx, "DELETE FROM employees")
			require.Error(t, err)
			_, err = exec.Execute(ctx, "PRAGMA query_only = OFF; DELETE FROM employees")
			require.Error(t, err)

			res, err := exec.Execute(ctx, "SELECT COUNT(*) FROM employees")
			require.NoError(t, err)
			assert.Equal(t, [][]any{{int64(3)}}, res.Rows)
		})
	}
}

func TestReadOnlyFileSeesBootstrap(t *testing.T) {
	exec := newFileTestExecutor(t, Options{ReadOnly: true})

	res, err := exec.Execute(context.Background(), "SELECT name FROM employees ORDER BY id")
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"Alice"}, {"Bob"}, {"Charlie"}}, res.Rows)
}

func TestFileURI(t *testing.T) {
	assert.Equal(t, "file:/tmp/a%3fb%23c%25d.db", fileURI("/tmp/a?b#c%d.db"))
}

func newFileTestExecutor(t *testing.T, opts Options) *Executor {
	exec, err := NewFileExecutor(filepath.Join(t.TempDir(), "data.db"), zaptest.NewLogger(t), opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = exec.Close() })
	require.NoError(t, exec.Bootstrap(context.Background()))
	return exec
}

func TestNewFileExecutor(t *testing.T) {
	path := t.TempDir() + "/data.db"
	exec, err := NewFileExecutor(path, zaptest.NewLogger(t), Options{})
	require.NoError(t, err)
	defer exec.Close()

	require.NoError(t, exec.Bootstrap(context.Background()))
	res, err := exec.Execute(context.Background(), "SELECT name FROM employees ORDER BY id")
	require.NoError(t, err)
	assert.Len(t, res.Rows, 3)
}
