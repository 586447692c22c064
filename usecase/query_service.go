package usecase

import (
	"context"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/ketoprak/askandsign/domain"
	"github.com/ketoprak/askandsign/domain/entities"
	"github.com/ketoprak/askandsign/domain/repositories"
)

// MissingQueryMessage is reported when a request has no query field or an
// empty one. Whitespace-only statements are passed through to the executor.
const MissingQueryMessage = "Missing 'query' field in request body"

// QueryService executes SQL received over HTTP
type QueryService struct {
	executor repositories.QueryExecutor
	logger   *zap.Logger
}

// NewQueryService creates a new query service
func NewQueryService(executor repositories.QueryExecutor, logger *zap.Logger) *QueryService {
	return &QueryService{executor: executor, logger: logger}
}

// Execute validates req and runs its statement. The returned error is only
// non-nil for request validation failures (kind missing_field); execution
// failures are reported inside the result.
func (s *QueryService) Execute(ctx context.Context, req entities.QueryRequest) (*entities.QueryResult, error) {
	if req.Query == nil || *req.Query == "" {
		return entities.ErrorResult(MissingQueryMessage), domain.NewError(domain.KindMissingField, MissingQueryMessage)
	}

	query := *req.Query
	s.logger.Info("Executing query", zap.String("query", preview(query, 200)))

	res, err := s.executor.Execute(ctx, query)
	if err != nil {
		s.logger.Warn("Query failed", zap.String("query", preview(query, 200)), zap.Error(err))
		return entities.ErrorResult(err.Error()), nil
	}

	s.logger.Info("Query succeeded", zap.Int("rows", len(res.Rows)))
	return res, nil
}

// preview keeps at most n runes of s.
func preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos] + "..."
		}
		i++
	}
	return s
}
