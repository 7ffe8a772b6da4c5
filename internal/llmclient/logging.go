package llmclient

import (
	"context"
	"encoding/json"
	"log"
)

type ctxKeyAgent struct{}

// WithAgent attaches an agent name to the context for log attribution.
func WithAgent(ctx context.Context, agent string) context.Context {
	return context.WithValue(ctx, ctxKeyAgent{}, agent)
}

// AgentFrom returns the agent name stored in the context.
func AgentFrom(ctx context.Context) string {
	if v := ctx.Value(ctxKeyAgent{}); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return "unknown"
}

// Middleware wraps an LLMClient with additional behavior.
type Middleware func(next LLMClient) LLMClient

// WithLogging logs request size and errors. Provide a custom logger or
// nil to use log.Default().
func WithLogging(logger *log.Logger) Middleware {
	if logger == nil {
		logger = log.Default()
	}
	return func(next LLMClient) LLMClient {
		return &logging{next: next, log: logger}
	}
}

type logging struct {
	next LLMClient
	log  *log.Logger
}

func (l *logging) Name() string                { return l.next.Name() }
func (l *logging) Close() error                { return l.next.Close() }
func (l *logging) CountTokens(text string) int { return l.next.CountTokens(text) }
func (l *logging) TokenCapacity() int          { return l.next.TokenCapacity() }

func (l *logging) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	in, _ := json.Marshal(input)
	l.log.Printf("LLM request (%s): %d bytes", AgentFrom(ctx), len(prompt)+len(in))
	raw, err := l.next.GenerateJSON(ctx, prompt, input)
	if err != nil {
		l.log.Printf("LLM error (%s): %v", AgentFrom(ctx), err)
	}
	return raw, err
}

// Chain applies middlewares right to left, so the first middleware is
// the outermost wrapper.
func Chain(client LLMClient, mws ...Middleware) LLMClient {
	for i := len(mws) - 1; i >= 0; i-- {
		client = mws[i](client)
	}
	return client
}
