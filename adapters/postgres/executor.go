// Package postgres implements repositories.QueryExecutor over a pgx pool.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/ketoprak/askandsign/domain/entities"
	"github.com/ketoprak/askandsign/domain/repositories"
)

const schema = `
CREATE TABLE IF NOT EXISTS employees (
    id SERIAL PRIMARY KEY,
    name TEXT,
    age INTEGER,
    department TEXT
)`

// Executor executes SQL statements using a connection pool
type Executor struct {
	pool     *pgxpool.Pool
	readOnly bool
	logger   *zap.Logger
}

// New connects to dsn. With readOnly every statement runs in a READ ONLY
// transaction.
func New(ctx context.Context, dsn string, readOnly bool, logger *zap.Logger) (*Executor, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	return &Executor{pool: pool, readOnly: readOnly, logger: logger}, nil
}

// Bootstrap creates the employees table and seeds it when empty
func (e *Executor) Bootstrap(ctx context.Context) error {
	if _, err := e.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	var count int
	if err := e.pool.QueryRow(ctx, "SELECT COUNT(*) FROM employees").Scan(&count); err != nil {
		return fmt.Errorf("failed to count employees: %w", err)
	}
	if count > 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, emp := range entities.SeedEmployees {
		batch.Queue("INSERT INTO employees (name, age, department) VALUES ($1, $2, $3)", emp.Name, emp.Age, emp.Department)
	}
	if err := e.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to seed employees: %w", err)
	}

	e.logger.Info("Seeded employees table", zap.Int("rows", len(entities.SeedEmployees)))
	return nil
}

// Execute runs query inside a transaction and collects its rows
func (e *Executor) Execute(ctx context.Context, query string) (*entities.QueryResult, error) {
	start := time.Now()

	accessMode := pgx.ReadWrite
	if e.readOnly {
		accessMode = pgx.ReadOnly
	}
	tx, err := e.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: accessMode})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) // Rollback if commit doesn't happen

	rows, err := tx.Query(ctx, query)
	if err != nil {
		return nil, err
	}

	res := entities.NewQueryResult()
	for _, fd := range rows.FieldDescriptions() {
		res.Columns = append(res.Columns, fd.Name)
	}

	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			rows.Close()
			return nil, err
		}
		for i, v := range vals {
			vals[i] = normalizeValue(v)
		}
		res.Rows = append(res.Rows, vals)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit failed: %w", err)
	}

	e.logger.Debug("Query executed",
		zap.Int("columns", len(res.Columns)),
		zap.Int("rows", len(res.Rows)),
		zap.Duration("duration", time.Since(start)))

	return res, nil
}

// Close releases the pool
func (e *Executor) Close() error {
	e.pool.Close()
	return nil
}

// normalizeValue converts pgx values to JSON-serializable ones
func normalizeValue(v any) any {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case [16]byte:
		return fmt.Sprintf("%x-%x-%x-%x-%x", val[0:4], val[4:6], val[6:8], val[8:10], val[10:16])
	case time.Time:
		return val.Format(time.RFC3339Nano)
	default:
		return val
	}
}

var _ repositories.QueryExecutor = (*Executor)(nil)
