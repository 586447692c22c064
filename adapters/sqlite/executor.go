// Package sqlite implements repositories.QueryExecutor on a SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ketoprak/askandsign/domain/entities"
	"github.com/ketoprak/askandsign/domain/repositories"

	_ "modernc.org/sqlite"
)

// Executor runs arbitrary SQL against a SQLite database
type Executor struct {
	db       *sql.DB // writable handle, used by Bootstrap
	reader   *sql.DB // handle Execute runs on; db unless read-only
	readOnly bool
	logger   *zap.Logger
}

// Options configures an Executor
type Options struct {
	// ReadOnly runs every statement on a handle opened with mode=ro, so
	// writes fail whatever PRAGMAs the statement sets
	ReadOnly bool
}

// NewMemoryExecutor creates an executor over an in-memory database. A
// read-only executor shares a named memdb database between its writable and
// read-only handles.
func NewMemoryExecutor(logger *zap.Logger, opts Options) (*Executor, error) {
	if !opts.ReadOnly {
		return newExecutor(":memory:", "", logger)
	}
	name := "file:/askandsign-" + uuid.NewString()
	return newExecutor(name+"?vfs=memdb", name+"?vfs=memdb&mode=ro", logger)
}

// NewFileExecutor creates an executor over the database file at path
func NewFileExecutor(path string, logger *zap.Logger, opts Options) (*Executor, error) {
	if !opts.ReadOnly {
		return newExecutor(path, "", logger)
	}
	return newExecutor(path, fileURI(path)+"?mode=ro", logger)
}

// fileURI turns a path into a SQLite URI, escaping the characters that
// would otherwise start the query string or fragment.
func fileURI(path string) string {
	r := strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23")
	return "file:" + r.Replace(filepath.ToSlash(path))
}

func newExecutor(dsn, readerDSN string, logger *zap.Logger) (*Executor, error) {
	db, err := openDB(dsn)
	if err != nil {
		return nil, err
	}
	// the writable connection also keeps in-memory databases alive
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	e := &Executor{db: db, reader: db, logger: logger}
	if readerDSN != "" {
		reader, err := openDB(readerDSN + "&_pragma=busy_timeout(5000)&_pragma=query_only(1)")
		if err != nil {
			db.Close()
			return nil, err
		}
		e.reader = reader
		e.readOnly = true
	}
	return e, nil
}

// openDB opens a single-connection pool. The read-only handle carries its
// PRAGMAs in the DSN so a replaced connection gets them too.
func openDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection: :memory: databases are per-connection, and SQLite only
	// has a single writer anyway.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	return db, nil
}

// Bootstrap creates the employees table and inserts the seed rows when the
// table is empty.
func (e *Executor) Bootstrap(ctx context.Context) error {
	if _, err := e.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	var count int
	if err := e.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM employees").Scan(&count); err != nil {
		return fmt.Errorf("failed to count employees: %w", err)
	}
	if count > 0 {
		e.logger.Info("Employees table already populated", zap.Int("rows", count))
		return nil
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO employees (name, age, department) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, emp := range entities.SeedEmployees {
		if _, err := stmt.ExecContext(ctx, emp.Name, emp.Age, emp.Department); err != nil {
			return fmt.Errorf("failed to seed employee %s: %w", emp.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	e.logger.Info("Seeded employees table", zap.Int("rows", len(entities.SeedEmployees)))
	return nil
}

// Execute runs query and collects every row it produces
func (e *Executor) Execute(ctx context.Context, query string) (*entities.QueryResult, error) {
	start := time.Now()

	rows, err := e.reader.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	res := entities.NewQueryResult()
	res.Columns = append(res.Columns, cols...)

	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range vals {
			vals[i] = normalizeValue(v)
		}
		res.Rows = append(res.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	e.logger.Debug("Query executed",
		zap.Bool("read_only", e.readOnly),
		zap.Int("columns", len(res.Columns)),
		zap.Int("rows", len(res.Rows)),
		zap.Duration("duration", time.Since(start)))

	return res, nil
}

// Close closes the database connection
func (e *Executor) Close() error {
	if e.reader != e.db {
		e.reader.Close()
	}
	return e.db.Close()
}

// normalizeValue converts driver values into JSON-friendly ones.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339Nano)
	default:
		return val
	}
}

// Verify interface compliance
var _ repositories.QueryExecutor = (*Executor)(nil)
