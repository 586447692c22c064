package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/agents"
	"github.com/tmc/langchaingo/chains"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/tools"
	"go.uber.org/zap"

	"github.com/ketoprak/askandsign/domain/repositories"
)

// ReActAgent runs a zero-shot ReAct agent against any OpenAI-compatible
// chat endpoint.
type ReActAgent struct {
	executor    *agents.Executor
	temperature float64
	logger      *zap.Logger
}

// NewReActAgent creates a ReAct agent bound to tool
func NewReActAgent(config AgentConfig, tool repositories.QueryTool, logger *zap.Logger) (*ReActAgent, error) {
	if err := ValidateAgentConfig(config); err != nil {
		return nil, err
	}
	config = config.withDefaults(defaultReActModel)
	if config.BaseURL == "" {
		config.BaseURL = defaultReActBaseURL
	}

	llm, err := openai.New(
		openai.WithToken(config.APIKey),
		openai.WithModel(config.Model),
		openai.WithBaseURL(config.BaseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model client: %w", err)
	}

	agent := agents.NewOneShotAgent(llm, []tools.Tool{&sqlTool{tool: tool, logger: logger}})

	logger.Info("ReAct agent ready",
		zap.String("model", config.Model),
		zap.String("base_url", config.BaseURL))

	return &ReActAgent{
		executor:    agents.NewExecutor(agent, agents.WithMaxIterations(config.MaxIterations)),
		temperature: config.Temperature,
		logger:      logger,
	}, nil
}

// Run implements repositories.SQLAgent
func (a *ReActAgent) Run(ctx context.Context, question string) (string, error) {
	answer, err := chains.Run(ctx, a.executor, question, chains.WithTemperature(a.temperature))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

// sqlTool exposes a QueryTool through langchaingo's tool interface
type sqlTool struct {
	tool   repositories.QueryTool
	logger *zap.Logger
}

func (t *sqlTool) Name() string        { return ToolName }
func (t *sqlTool) Description() string { return ToolDescription + " Input is a single SQL statement." }

// Call never fails; errors are part of the observation
func (t *sqlTool) Call(ctx context.Context, input string) (string, error) {
	query := cleanToolInput(input)
	t.logger.Info("Agent calling SQL tool", zap.String("query", query))
	return t.tool.ExecuteSQLQuery(ctx, query), nil
}

// cleanToolInput strips the quoting and code fences models tend to wrap
// action inputs in.
func cleanToolInput(input string) string {
	s := strings.TrimSpace(input)
	s = strings.TrimPrefix(s, "```sql")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '"' && s[len(s)-1] == '"' || s[0] == '\'' && s[len(s)-1] == '\'') {
		s = s[1 : len(s)-1]
	}
	return strings.TrimSpace(s)
}

var (
	_ repositories.SQLAgent = (*ReActAgent)(nil)
	_ tools.Tool            = (*sqlTool)(nil)
)
