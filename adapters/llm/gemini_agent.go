package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/ketoprak/askandsign/domain/repositories"
)

// chatSession is the part of *genai.Chat the agent loop needs
type chatSession interface {
	SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type chatFactory func(ctx context.Context) (chatSession, error)

// GeminiAgent answers questions with a Gemini chat that may call the SQL
// tool any number of times before producing text.
type GeminiAgent struct {
	newChat       chatFactory
	tool          repositories.QueryTool
	maxIterations int
	logger        *zap.Logger
}

// NewGeminiAgent creates a Gemini-backed agent bound to tool
func NewGeminiAgent(ctx context.Context, config AgentConfig, tool repositories.QueryTool, logger *zap.Logger) (*GeminiAgent, error) {
	if err := ValidateAgentConfig(config); err != nil {
		return nil, err
	}
	config = config.withDefaults(defaultGeminiModel)

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	genConfig := &genai.GenerateContentConfig{
		Tools:             sqlTools(),
		SystemInstruction: genai.NewContentFromText(SystemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr(float32(config.Temperature)),
	}

	logger.Info("Gemini agent ready",
		zap.String("model", config.Model),
		zap.Float64("temperature", config.Temperature),
		zap.Int("max_iterations", config.MaxIterations))

	return newGeminiAgent(func(ctx context.Context) (chatSession, error) {
		return client.Chats.Create(ctx, config.Model, genConfig, nil)
	}, tool, config.MaxIterations, logger), nil
}

func newGeminiAgent(factory chatFactory, tool repositories.QueryTool, maxIterations int, logger *zap.Logger) *GeminiAgent {
	if maxIterations <= 0 {
		maxIterations = defaultMaxIterations
	}
	return &GeminiAgent{
		newChat:       factory,
		tool:          tool,
		maxIterations: maxIterations,
		logger:        logger,
	}
}

// Run starts a fresh chat for question and drives it until the model
// returns text.
func (a *GeminiAgent) Run(ctx context.Context, question string) (string, error) {
	chat, err := a.newChat(ctx)
	if err != nil {
		return "", fmt.Errorf("could not start chat session: %w", err)
	}

	parts := []genai.Part{{Text: question}}
	for i := 0; i < a.maxIterations; i++ {
		resp, err := chat.SendMessage(ctx, parts...)
		if err != nil {
			return "", fmt.Errorf("gemini api call failed: %w", err)
		}

		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
			return "", fmt.Errorf("model returned no content")
		}

		var calls []*genai.FunctionCall
		var text strings.Builder
		for _, p := range resp.Candidates[0].Content.Parts {
			if p.FunctionCall != nil {
				calls = append(calls, p.FunctionCall)
			}
			text.WriteString(p.Text)
		}

		if len(calls) == 0 {
			return strings.TrimSpace(text.String()), nil
		}

		parts = make([]genai.Part, 0, len(calls))
		for _, call := range calls {
			parts = append(parts, genai.Part{FunctionResponse: &genai.FunctionResponse{
				Name:     call.Name,
				Response: map[string]any{"result": a.callTool(ctx, call)},
			}})
		}
	}

	return "", fmt.Errorf("agent stopped after %d iterations without an answer", a.maxIterations)
}

func (a *GeminiAgent) callTool(ctx context.Context, call *genai.FunctionCall) string {
	if call.Name != ToolName {
		return fmt.Sprintf("Error: Unknown function '%s' requested.", call.Name)
	}

	query, ok := call.Args["query"].(string)
	if !ok {
		return "Error: 'query' argument must be a string."
	}

	a.logger.Info("Agent calling SQL tool", zap.String("query", query))
	return a.tool.ExecuteSQLQuery(ctx, query)
}

func sqlTools() []*genai.Tool {
	return []*genai.Tool{
		{
			FunctionDeclarations: []*genai.FunctionDeclaration{
				{
					Name:        ToolName,
					Description: ToolDescription,
					Parameters: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"query": {
								Type:        genai.TypeString,
								Description: "A single SQL statement to run against the employees database.",
							},
						},
						Required: []string{"query"},
					},
				},
			},
		},
	}
}

var _ repositories.SQLAgent = (*GeminiAgent)(nil)
