// Package queryclient implements the execute_sql_query tool on top of the
// query service's HTTP API.
package queryclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ketoprak/askandsign/domain/entities"
	"github.com/ketoprak/askandsign/domain/repositories"
	"github.com/ketoprak/askandsign/internal/auth"
)

// DefaultEndpoint is where the query service listens by default
const DefaultEndpoint = "http://localhost:8000/query"

// NoDataMessage is the observation for a successful query with zero rows
const NoDataMessage = "Query successful, but no data found."

// Client posts SQL to the query service and turns the response into a tool
// observation string.
type Client struct {
	endpoint   string
	httpClient *http.Client
	signer     *auth.Signer
	logger     *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient overrides the HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithSigner makes the client attach a short-lived bearer token
func WithSigner(s *auth.Signer) Option {
	return func(c *Client) { c.signer = s }
}

// New creates a client for endpoint
func New(endpoint string, logger *zap.Logger, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ExecuteSQLQuery runs query against the service. It never returns an error:
// every failure is folded into the observation text the agent sees.
func (c *Client) ExecuteSQLQuery(ctx context.Context, query string) string {
	res, err := c.do(ctx, query)
	if err != nil {
		c.logger.Warn("SQL tool request failed", zap.Error(err))
		return "Client error: " + err.Error()
	}
	return Format(res)
}

func (c *Client) do(ctx context.Context, query string) (*entities.QueryResult, error) {
	body, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	if c.signer != nil {
		token, err := c.signer.GenerateToken("sql-assistant", auth.DefaultTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to sign request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var res entities.QueryResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}

	c.logger.Debug("SQL tool response",
		zap.Int("status", resp.StatusCode),
		zap.Int("rows", len(res.Rows)),
		zap.Bool("failed", res.Failed()))

	return &res, nil
}

// Format renders a query result the way the agent expects to read it
func Format(res *entities.QueryResult) string {
	if res.Failed() {
		return "Error: " + res.Error
	}
	if len(res.Rows) == 0 {
		return NoDataMessage
	}

	cols, err := json.Marshal(nonNil(res.Columns))
	if err != nil {
		return "Client error: " + err.Error()
	}
	rows, err := json.Marshal(res.Rows)
	if err != nil {
		return "Client error: " + err.Error()
	}

	var b strings.Builder
	b.WriteString("Columns: ")
	b.Write(cols)
	b.WriteString("\n\n Rows: ")
	b.Write(rows)
	return b.String()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

var _ repositories.QueryTool = (*Client)(nil)
