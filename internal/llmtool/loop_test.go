package llmtool

import (
	"context"
	"encoding/json"
	"testing"
)

type fakeLLM struct {
	responses []json.RawMessage
}

func (f *fakeLLM) Name() string                { return "fake" }
func (f *fakeLLM) Close() error                { return nil }
func (f *fakeLLM) CountTokens(text string) int { return len(text) }
func (f *fakeLLM) TokenCapacity() int          { return 1000 }
func (f *fakeLLM) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	if len(f.responses) == 0 {
		return nil, nil
	}
	out := f.responses[0]
	f.responses = f.responses[1:]
	return out, nil
}

type fakeTools struct {
	specs []ToolSpec
	calls []string
}

func (f *fakeTools) Specs() []ToolSpec { return f.specs }
func (f *fakeTools) Call(ctx context.Context, name string, input json.RawMessage) (json.RawMessage, error) {
	f.calls = append(f.calls, name)
	return json.RawMessage(`{"ok":true}`), nil
}

func testBuilder() PromptBuilder {
	return StructuredPromptBuilder(StructuredPromptSpec{
		Purpose: "test",
		OutputFields: []PromptField{
			{Name: "result", Type: "string", Required: true},
		},
	})
}

func TestToolLoop_ToolThenFinal(t *testing.T) {
	llm := &fakeLLM{
		responses: []json.RawMessage{
			json.RawMessage(`{"action":"tool","tool_name":"read_file","tool_input":{"path":"package.json"}}`),
			json.RawMessage(`{"action":"final","final":{"result":"done"}}`),
		},
	}
	tools := &fakeTools{specs: []ToolSpec{{Name: "read_file"}}}
	loop := &ToolLoop{LLM: llm, Tools: tools, MaxIters: 3}
	out, state, err := loop.Run(context.Background(), map[string]any{"x": 1}, testBuilder())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if state == nil || len(state.ToolResults) != 1 {
		t.Fatalf("expected 1 tool result, got %+v", state)
	}
	if string(out) != `{"result":"done"}` {
		t.Fatalf("unexpected final: %s", string(out))
	}
}

func TestToolLoop_AllowedList(t *testing.T) {
	llm := &fakeLLM{
		responses: []json.RawMessage{
			json.RawMessage(`{"action":"tool","tool_name":"delete_repo","tool_input":{}}`),
		},
	}
	tools := &fakeTools{specs: []ToolSpec{{Name: "delete_repo"}}}
	loop := &ToolLoop{LLM: llm, Tools: tools, MaxIters: 1, Allowed: []string{"read_file"}}
	_, _, err := loop.Run(context.Background(), nil, testBuilder())
	if err != ErrToolNotAllowed {
		t.Fatalf("expected ErrToolNotAllowed, got %v", err)
	}
}

func TestToolLoop_MaxIterations(t *testing.T) {
	llm := &fakeLLM{
		responses: []json.RawMessage{
			json.RawMessage(`{"action":"tool","tool_name":"read_file","tool_input":{"path":"a"}}`),
			json.RawMessage(`{"action":"tool","tool_name":"read_file","tool_input":{"path":"b"}}`),
		},
	}
	tools := &fakeTools{specs: []ToolSpec{{Name: "read_file"}}}
	loop := &ToolLoop{LLM: llm, Tools: tools, MaxIters: 1}
	_, _, err := loop.Run(context.Background(), nil, testBuilder())
	if err != ErrMaxIterations {
		t.Fatalf("expected ErrMaxIterations, got %v", err)
	}
}

func TestToolLoop_RepeatedCallReusesResult(t *testing.T) {
	llm := &fakeLLM{
		responses: []json.RawMessage{
			json.RawMessage(`{"action":"tool","tool_name":"read_file","tool_input":{"path":"package.json"}}`),
			json.RawMessage(`{"action":"tool","tool_name":"read_file","tool_input":{"path":"package.json"}}`),
			json.RawMessage(`{"action":"final","final":{"result":"done"}}`),
		},
	}
	tools := &fakeTools{specs: []ToolSpec{{Name: "read_file"}}}
	loop := &ToolLoop{LLM: llm, Tools: tools, MaxIters: 3}
	out, state, err := loop.Run(context.Background(), nil, testBuilder())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(tools.calls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(tools.calls))
	}
	if len(state.ToolResults) != 1 {
		t.Fatalf("expected 1 recorded result, got %d", len(state.ToolResults))
	}
	if string(out) != `{"result":"done"}` {
		t.Fatalf("unexpected final: %s", string(out))
	}
}

func TestParseAction_DirectFinal(t *testing.T) {
	env, err := ParseAction(json.RawMessage(`{"readme":"# hi"}`))
	if err != nil {
		t.Fatalf("ParseAction error: %v", err)
	}
	if env.Action != "final" {
		t.Fatalf("expected final, got %q", env.Action)
	}
	if string(env.Final) != `{"readme":"# hi"}` {
		t.Fatalf("unexpected final payload: %s", string(env.Final))
	}
}

func TestParseAction_EnvelopeWrappedInProse(t *testing.T) {
	raw := json.RawMessage("Sure! ```json\n{\"action\":\"final\",\"final\":{\"result\":\"ok\"}}\n```")
	env, err := ParseAction(raw)
	if err != nil {
		t.Fatalf("ParseAction error: %v", err)
	}
	if env.Action != "final" {
		t.Fatalf("expected final, got %q", env.Action)
	}
	if string(env.Final) != `{"result":"ok"}` {
		t.Fatalf("unexpected final payload: %s", string(env.Final))
	}
}

func TestParseAction_InvalidAction(t *testing.T) {
	if _, err := ParseAction(json.RawMessage(`{"action":"dance"}`)); err == nil {
		t.Fatal("expected error for unknown action")
	}
}

func TestTruncate(t *testing.T) {
	short := "hello"
	if Truncate(short) != short {
		t.Fatal("short content must pass through unchanged")
	}
	long := make([]byte, MaxFileChars+100)
	for i := range long {
		long[i] = 'x'
	}
	got := Truncate(string(long))
	if len(got) != MaxFileChars+len("\n...[truncated]") {
		t.Fatalf("unexpected truncated length %d", len(got))
	}
}
