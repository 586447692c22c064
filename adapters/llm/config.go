package llm

import "fmt"

const (
	defaultGeminiModel   = "gemini-2.0-flash"
	defaultReActModel    = "meta/llama3-70b-instruct"
	defaultReActBaseURL  = "https://integrate.api.nvidia.com/v1"
	defaultTemperature   = 0.3
	defaultMaxIterations = 8
)

// ToolName is the name the model uses to call the SQL tool
const ToolName = "execute_sql_query"

// ToolDescription is shown to the model alongside the tool
const ToolDescription = "Executes a SQL query on a remote query server and returns the results."

// SystemPrompt tells the model what it can query
const SystemPrompt = `You are a helpful SQL assistant for a small company database.
The database has one table:

  employees(id INTEGER PRIMARY KEY, name TEXT, age INTEGER, department TEXT)

Use the execute_sql_query tool to look up anything the user asks about. Write
plain SQLite-compatible SQL. After you get the tool result, answer the user's
question in a short natural-language sentence. If the tool returns an error,
explain it instead of guessing.`

// AgentConfig holds the settings shared by both agent backends
type AgentConfig struct {
	APIKey        string
	Model         string
	BaseURL       string
	Temperature   float64
	MaxIterations int
}

// ValidateAgentConfig validates the AgentConfig
func ValidateAgentConfig(config AgentConfig) error {
	if config.APIKey == "" {
		return fmt.Errorf("API key is required")
	}

	if config.Temperature < 0 || config.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2, got %f", config.Temperature)
	}

	if config.MaxIterations < 0 {
		return fmt.Errorf("max iterations must be positive, got %d", config.MaxIterations)
	}

	return nil
}

func (c AgentConfig) withDefaults(model string) AgentConfig {
	if c.Model == "" {
		c.Model = model
	}
	if c.Temperature == 0 {
		c.Temperature = defaultTemperature
	}
	if c.MaxIterations == 0 {
		c.MaxIterations = defaultMaxIterations
	}
	return c
}
