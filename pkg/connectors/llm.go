package connectors

import (
	"context"
	"strings"
	"time"

	"github.com/jllopis/topomind/pkg/core"
	"github.com/jllopis/topomind/pkg/errors"
	"github.com/jllopis/topomind/pkg/llm"
)

// LLMConnector backs the reason tool: it sends the question to a language
// model and returns the answer text. Successful answers flow into semantic
// memory encoding downstream.
type LLMConnector struct {
	provider llm.Provider
	model    string
}

// NewLLMConnector creates the connector over a provider.
func NewLLMConnector(provider llm.Provider, model string) *LLMConnector {
	return &LLMConnector{provider: provider, model: model}
}

// Execute asks the model args["question"] and returns {"answer": text}.
func (c *LLMConnector) Execute(ctx context.Context, contract core.Contract, args map[string]any, timeout time.Duration) (any, error) {
	question, _ := args["question"].(string)
	if strings.TrimSpace(question) == "" {
		return nil, errors.Newf(errors.CodeValidation, "question must not be empty")
	}

	resp, err := c.provider.Chat(ctx, llm.ChatRequest{
		Model: c.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: "Answer concisely and factually."},
			{Role: llm.RoleUser, Content: question},
		},
	})
	if err != nil {
		return nil, errors.New(errors.CodeLLMError, "reason backend call failed", err).WithRecoverable(true)
	}

	answer := strings.TrimSpace(resp.Content)
	if answer == "" {
		return nil, errors.Newf(errors.CodeLLMError, "reason backend returned empty answer").WithRecoverable(true)
	}
	return map[string]any{"answer": answer}, nil
}

// Health probes the provider with a minimal request.
func (c *LLMConnector) Health(ctx context.Context) bool {
	_, err := c.provider.Chat(ctx, llm.ChatRequest{
		Model:    c.model,
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "ping"}},
	})
	return err == nil
}

// Shutdown is a no-op; the provider owns its transport.
func (c *LLMConnector) Shutdown(ctx context.Context) error { return nil }
