// Package llmclient wraps the two model endpoints behind a small client
// interface. Cross-cutting concerns (logging, agent tagging) are applied
// via middleware wrappers rather than inside the backends.
package llmclient

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

var ErrInvalidJSON = errors.New("invalid json from LLM")

// LLMClient is the JSON-generating model client used by the agents.
type LLMClient interface {
	Name() string
	Close() error
	CountTokens(text string) int
	TokenCapacity() int
	GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error)
}

// TextGenerator is the plain prompt/completion surface of the insight
// model. Each call carries its own output token cap.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// PermanentError indicates an error that will not resolve with retries.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func NewPermanentError(err error) error {
	return &PermanentError{Err: err}
}

// CountTokens provides a rough token count for text. It counts
// whitespace-delimited words and falls back to a character heuristic.
func CountTokens(text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}
	words := strings.Fields(text)
	if len(words) > 0 {
		return len(words)
	}
	n := len(text) / 4
	if n == 0 {
		n = 1
	}
	return n
}
