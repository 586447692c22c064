package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ketoprak/askandsign/adapters/keystore"
	"github.com/ketoprak/askandsign/adapters/llm"
	"github.com/ketoprak/askandsign/adapters/queryclient"
	"github.com/ketoprak/askandsign/domain/repositories"
	"github.com/ketoprak/askandsign/internal/auth"
	"github.com/ketoprak/askandsign/internal/config"
	"github.com/ketoprak/askandsign/usecase"
)

var askBackend string

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the employees database in plain English",
	Long: `ask hands the question to an LLM agent whose only tool posts SQL to the query
service (query.endpoint). Without arguments it starts an interactive session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		if askBackend != "" {
			cfg.Assistant.Backend = askBackend
		}

		agent, err := newAgent(ctx, cfg)
		if err != nil {
			return err
		}
		svc := usecase.NewAssistantService(agent, logger)

		if len(args) > 0 {
			printAnswer(askWithSpinner(ctx, svc, strings.Join(args, " ")))
			return nil
		}
		return askLoop(ctx, svc)
	},
}

func askLoop(ctx context.Context, svc *usecase.AssistantService) error {
	pterm.DefaultHeader.WithFullWidth().Println("SQL Query Assistant")
	pterm.Info.Println("Ask questions about the employees table. Type 'exit' or press Ctrl+C to quit.")

	console := ptermConsole{}
	for ctx.Err() == nil {
		question, err := console.Input("Your question")
		if errors.Is(err, usecase.ErrPromptAborted) {
			return nil
		}
		if err != nil {
			return err
		}
		switch strings.ToLower(strings.TrimSpace(question)) {
		case "exit", "quit":
			return nil
		}
		printAnswer(askWithSpinner(ctx, svc, question))
	}
	return nil
}

func askWithSpinner(ctx context.Context, svc *usecase.AssistantService, question string) usecase.Answer {
	spinner, _ := pterm.DefaultSpinner.WithRemoveWhenDone(true).Start("Thinking...")
	answer := svc.Ask(ctx, question)
	if spinner != nil {
		_ = spinner.Stop()
	}
	return answer
}

func printAnswer(a usecase.Answer) {
	switch {
	case a.Warning:
		pterm.Warning.Println(a.Text)
	case a.Failed:
		pterm.Error.Println(a.Text)
	default:
		pterm.Println(pterm.DefaultBox.WithTitle("Result").WithPadding(1).Sprint(a.Text))
	}
}

// newAgent builds the agent backend selected by c.Assistant.Backend, bound
// to the query service client.
func newAgent(ctx context.Context, c *config.Config) (repositories.SQLAgent, error) {
	var opts []queryclient.Option
	if c.Query.AuthSecret != "" {
		opts = append(opts, queryclient.WithSigner(auth.NewSigner(c.Query.AuthSecret)))
	}
	tool := queryclient.New(c.Query.Endpoint, logger, opts...)

	if c.Assistant.Backend == config.BackendMock {
		return llm.NewMockAgent(tool, logger), nil
	}

	agentCfg := llm.AgentConfig{
		APIKey:        c.Assistant.APIKey,
		Model:         c.Assistant.Model,
		BaseURL:       c.Assistant.BaseURL,
		Temperature:   c.Assistant.Temperature,
		MaxIterations: c.Assistant.MaxIterations,
	}
	if agentCfg.APIKey == "" {
		agentCfg.APIKey = keyFromKeyring(c.Assistant.Backend)
	}
	if agentCfg.APIKey == "" {
		return nil, fmt.Errorf("no API key for the %s backend: set assistant.api_key, %s, or run 'askandsign key set %s'",
			c.Assistant.Backend, config.ProviderKeyEnv(c.Assistant.Backend), c.Assistant.Backend)
	}

	switch c.Assistant.Backend {
	case config.BackendReAct:
		return llm.NewReActAgent(agentCfg, tool, logger)
	default:
		return llm.NewGeminiAgent(ctx, agentCfg, tool, logger)
	}
}

func keyFromKeyring(backend string) string {
	store, err := keystore.Open()
	if err != nil {
		logger.Debug("Keyring unavailable", zap.Error(err))
		return ""
	}
	key, err := store.Get(backend)
	if err != nil {
		if !errors.Is(err, keystore.ErrNotFound) {
			logger.Debug("Keyring lookup failed", zap.String("backend", backend), zap.Error(err))
		}
		return ""
	}
	return key
}

func init() {
	askCmd.Flags().StringVarP(&askBackend, "backend", "b", "", "agent backend: gemini, react or mock (overrides assistant.backend)")
	rootCmd.AddCommand(askCmd)
}
