package llm

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ketoprak/askandsign/domain/repositories"
)

// MockAgent answers without a model: it runs a fixed listing query through
// the tool and echoes the observation. Used when no API key is configured
// and in tests.
type MockAgent struct {
	tool   repositories.QueryTool
	logger *zap.Logger
}

// NewMockAgent creates a new mock agent
func NewMockAgent(tool repositories.QueryTool, logger *zap.Logger) *MockAgent {
	return &MockAgent{tool: tool, logger: logger}
}

// Run implements repositories.SQLAgent
func (m *MockAgent) Run(ctx context.Context, question string) (string, error) {
	query := "SELECT * FROM employees"
	if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(question)), "SELECT") {
		query = question
	}

	m.logger.Info("Mock agent running query", zap.String("question", question), zap.String("query", query))
	return m.tool.ExecuteSQLQuery(ctx, query), nil
}

var _ repositories.SQLAgent = (*MockAgent)(nil)
