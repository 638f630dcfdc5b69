// Package ai wraps the Anthropic API for the incident pipeline: plain text
// completions, schema-constrained structured completions with a free-text
// fallback parse path, and retry handling for transient API failures.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-sonnet-4-5-20250929"

const defaultMaxTokens = 1024

// Role tags a message for the chat API.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single role-tagged entry in a model request.
type Message struct {
	Role    Role
	Content string
}

// ToolRequest describes the schema-constrained output expected from a
// structured completion. Schema holds JSON-schema property definitions in
// the shape the Anthropic tool API accepts.
type ToolRequest struct {
	Name        string
	Description string
	Schema      map[string]interface{}
	Required    []string
	MaxTokens   int
}

// Invoker is the model-call surface the pipeline steps depend on. Steps take
// this interface rather than a concrete client so tests can substitute fakes.
type Invoker interface {
	// Complete performs a plain free-text completion.
	Complete(ctx context.Context, msgs []Message, maxTokens int) (string, error)
	// CompleteStructured performs a tool-constrained completion and returns
	// the raw tool input JSON.
	CompleteStructured(ctx context.Context, req ToolRequest, msgs []Message) (json.RawMessage, error)
}

// Client calls the Anthropic API with retry, concurrency, and rate limits.
type Client struct {
	anthropic *anthropic.Client
	model     string
	retry     RetryConfig
	sem       *semaphore.Weighted
	limiter   *rate.Limiter
}

var _ Invoker = (*Client)(nil)

// Config holds client configuration.
type Config struct {
	APIKey             string      // If empty, read from ANTHROPIC_API_KEY
	Model              string      // Default: DefaultModel
	Retry              RetryConfig // Zero value selects DefaultRetryConfig
	MaxConcurrentCalls int         // 0 = unlimited
	RequestsPerSecond  float64     // 0 = unlimited
}

// NewClient creates an Anthropic-backed client. A missing API key is a
// configuration failure and is reported immediately rather than on first use.
func NewClient(cfg Config) (*Client, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
		}
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	retryCfg := cfg.Retry
	if retryCfg.MaxRetries == 0 {
		retryCfg = DefaultRetryConfig()
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	var sem *semaphore.Weighted
	if cfg.MaxConcurrentCalls > 0 {
		sem = semaphore.NewWeighted(int64(cfg.MaxConcurrentCalls))
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Client{
		anthropic: &client,
		model:     model,
		retry:     retryCfg,
		sem:       sem,
		limiter:   limiter,
	}, nil
}

// Complete performs a free-text completion over the given messages.
func (c *Client) Complete(ctx context.Context, msgs []Message, maxTokens int) (string, error) {
	params, err := c.buildParams(msgs, maxTokens)
	if err != nil {
		return "", err
	}

	var response *anthropic.Message
	err = c.retryWithBackoff(ctx, "completion", func(attemptCtx context.Context) error {
		resp, apiErr := c.anthropic.Messages.New(attemptCtx, params)
		if apiErr != nil {
			return apiErr
		}
		response = resp
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API call failed: %w", err)
	}

	var text strings.Builder
	for _, block := range response.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return text.String(), nil
}

// CompleteStructured performs a completion with a single forced tool so the
// model must emit schema-shaped JSON. Returns the raw tool input for the
// caller to decode and validate.
func (c *Client) CompleteStructured(ctx context.Context, req ToolRequest, msgs []Message) (json.RawMessage, error) {
	params, err := c.buildParams(msgs, req.MaxTokens)
	if err != nil {
		return nil, err
	}

	tool := anthropic.ToolParam{
		Name:        req.Name,
		Description: anthropic.String(req.Description),
		InputSchema: anthropic.ToolInputSchemaParam{
			Properties: req.Schema,
			Required:   req.Required,
		},
	}
	params.Tools = []anthropic.ToolUnionParam{{OfTool: &tool}}
	params.ToolChoice = anthropic.ToolChoiceUnionParam{
		OfTool: &anthropic.ToolChoiceToolParam{Name: req.Name},
	}

	var response *anthropic.Message
	err = c.retryWithBackoff(ctx, req.Name, func(attemptCtx context.Context) error {
		resp, apiErr := c.anthropic.Messages.New(attemptCtx, params)
		if apiErr != nil {
			return apiErr
		}
		response = resp
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic API call failed: %w", err)
	}

	for _, block := range response.Content {
		if toolUse, ok := block.AsAny().(anthropic.ToolUseBlock); ok {
			return rawJSON(toolUse.Input)
		}
	}
	return nil, fmt.Errorf("no tool_use block in %s response", req.Name)
}

// buildParams converts role-tagged messages into Anthropic request params.
// System messages become the system prompt; user and assistant messages keep
// their order.
func (c *Client) buildParams(msgs []Message, maxTokens int) (anthropic.MessageNewParams, error) {
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	var system []anthropic.TextBlockParam
	var chat []anthropic.MessageParam

	for _, m := range msgs {
		switch m.Role {
		case RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: m.Content})
		case RoleUser:
			chat = append(chat, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		case RoleAssistant:
			chat = append(chat, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			return anthropic.MessageNewParams{}, fmt.Errorf("unknown message role: %q", m.Role)
		}
	}
	if len(chat) == 0 {
		return anthropic.MessageNewParams{}, fmt.Errorf("no user or assistant messages in request")
	}

	return anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(maxTokens),
		System:    system,
		Messages:  chat,
	}, nil
}

// rawJSON normalizes a tool input to JSON bytes. The SDK may surface the
// input already decoded or as raw JSON depending on version.
func rawJSON(input interface{}) (json.RawMessage, error) {
	switch v := input.(type) {
	case json.RawMessage:
		return v, nil
	case []byte:
		return json.RawMessage(v), nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to re-encode tool input: %w", err)
		}
		return json.RawMessage(data), nil
	}
}
