package usecase

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ketoprak/askandsign/domain/repositories"
)

// EmptyQuestionWarning is shown instead of calling the agent for blank input
const EmptyQuestionWarning = "Please enter a question."

// Answer is what the assistant shows for one question
type Answer struct {
	Text    string
	Warning bool
	Failed  bool
}

// AssistantService turns a natural-language question into an answer via an
// SQL agent.
type AssistantService struct {
	agent  repositories.SQLAgent
	logger *zap.Logger
}

// NewAssistantService creates a new assistant service
func NewAssistantService(agent repositories.SQLAgent, logger *zap.Logger) *AssistantService {
	return &AssistantService{agent: agent, logger: logger}
}

// Ask runs the agent once for question. Failures are returned as answers,
// never as errors.
func (s *AssistantService) Ask(ctx context.Context, question string) Answer {
	question = strings.TrimSpace(question)
	if question == "" {
		return Answer{Text: EmptyQuestionWarning, Warning: true}
	}

	s.logger.Info("Running agent", zap.String("question", preview(question, 200)))
	result, err := s.agent.Run(ctx, question)
	if err != nil {
		s.logger.Error("Agent failed", zap.Error(err))
		return Answer{Text: "Agent error: " + err.Error(), Failed: true}
	}

	return Answer{Text: result}
}
