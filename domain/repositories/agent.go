package repositories

import "context"

// SQLAgent answers a natural-language question, deciding on its own which
// SQL statements (if any) to run through its tool.
type SQLAgent interface {
	Run(ctx context.Context, question string) (string, error)
}

// QueryTool is the single tool handed to an agent: it executes SQL on the
// query service and returns a textual observation for the model.
type QueryTool interface {
	ExecuteSQLQuery(ctx context.Context, query string) string
}
