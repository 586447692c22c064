package repositories

import (
	"context"

	"github.com/ketoprak/askandsign/domain/entities"
)

// QueryExecutor runs a single SQL statement against a backing database
type QueryExecutor interface {
	// Execute runs query and returns its columns and rows. Execution failures
	// are returned as errors; the caller converts them to error payloads.
	Execute(ctx context.Context, query string) (*entities.QueryResult, error)
	// Bootstrap creates the employees table and seeds it when empty
	Bootstrap(ctx context.Context) error
	Close() error
}
