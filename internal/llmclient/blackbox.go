package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// BlackboxClient calls the Blackbox chat completions API
// (OpenAI-compatible). It serves the code-insight agent, which issues
// single-turn prompt/completion requests with modest per-call token caps.
type BlackboxClient struct {
	http     *http.Client
	apiKey   string
	model    string
	baseURL  string
	tokenCap int
}

// NewBlackboxClient creates a client. If apiKey is empty, it falls back
// to the BLACKBOX_API_KEY env var.
func NewBlackboxClient(apiKey, model string, tokenCap int) (*BlackboxClient, error) {
	if apiKey == "" {
		apiKey = os.Getenv("BLACKBOX_API_KEY")
	}
	if tokenCap <= 0 {
		tokenCap = 600
	}
	return &BlackboxClient{
		http:     &http.Client{Timeout: 60 * time.Second},
		apiKey:   apiKey,
		model:    model,
		baseURL:  "https://api.blackbox.ai/chat/completions",
		tokenCap: tokenCap,
	}, nil
}

func (b *BlackboxClient) Name() string { return "Blackbox:" + b.model }
func (b *BlackboxClient) Close() error { return nil }
func (b *BlackboxClient) CountTokens(text string) int {
	return CountTokens(text)
}
func (b *BlackboxClient) TokenCapacity() int { return b.tokenCap }

type bbChatReq struct {
	Model     string      `json:"model"`
	Messages  []bbMessage `json:"messages"`
	MaxTokens int         `json:"max_tokens,omitempty"`
}
type bbMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
type bbChatResp struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// GenerateText sends a single user message and returns the raw
// completion text. maxTokens of zero uses the client default.
func (b *BlackboxClient) GenerateText(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		maxTokens = b.tokenCap
	}
	reqBody := bbChatReq{
		Model:     b.model,
		Messages:  []bbMessage{{Role: "user", Content: prompt}},
		MaxTokens: maxTokens,
	}
	body, _ := json.Marshal(reqBody)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if b.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+b.apiKey)
	}

	resp, err := b.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		const max = 2048
		if len(raw) > max {
			raw = raw[:max]
		}
		err := fmt.Errorf("blackbox: unexpected status %s: %s", resp.Status, string(raw))
		if resp.StatusCode == 400 && strings.Contains(string(raw), "context_length_exceeded") {
			return "", NewPermanentError(err)
		}
		return "", err
	}
	var out bbChatResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("blackbox: empty completion")
	}
	return out.Choices[0].Message.Content, nil
}

// GenerateJSON satisfies LLMClient by requesting text and validating it
// parses as JSON.
func (b *BlackboxClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	in, _ := json.MarshalIndent(input, "", "  ")
	text, err := b.GenerateText(ctx, prompt+"\n\n[INPUT JSON]\n"+string(in), 0)
	if err != nil {
		return nil, err
	}
	raw := json.RawMessage(text)
	var scratch any
	if err := json.Unmarshal(raw, &scratch); err != nil {
		return nil, ErrInvalidJSON
	}
	return raw, nil
}
