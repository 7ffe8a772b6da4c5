package llmtool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// PromptField describes a single output field in a simple schema.
type PromptField struct {
	Name        string
	Type        string
	Required    bool
	Description string
}

// StructuredPromptSpec defines the sections for a structured prompt.
type StructuredPromptSpec struct {
	Purpose      string
	Background   string
	OutputFields []PromptField
	Constraints  []string
	Rules        []string
	OutputFormat string
}

// StructuredPromptBuilder renders a structured prompt including tool
// specs and accumulated tool results.
func StructuredPromptBuilder(spec StructuredPromptSpec) PromptBuilder {
	return func(_ context.Context, state *ToolState, tools []ToolSpec) (string, error) {
		if strings.TrimSpace(spec.Purpose) == "" {
			return "", fmt.Errorf("llmtool: purpose is empty")
		}
		inputJSON, err := formatAnyJSON(state.Input)
		if err != nil {
			return "", fmt.Errorf("llmtool: encode input: %w", err)
		}

		var buf bytes.Buffer
		writeSection(&buf, "PURPOSE", spec.Purpose)
		writeSection(&buf, "BACKGROUND", spec.Background)
		writeSection(&buf, "INPUT", inputJSON)
		writeSection(&buf, "OUTPUT", formatFields(spec.OutputFields))
		writeSection(&buf, "CONSTRAINTS", formatList(spec.Constraints))
		writeSection(&buf, "RULES", formatList(spec.Rules))
		writeSection(&buf, "OUTPUT_FORMAT", spec.OutputFormat)
		writeSection(&buf, "TOOLS", formatToolSpecs(tools))
		writeSection(&buf, "TOOL_RESULTS", formatToolResults(state.ToolResults))

		return strings.TrimSpace(buf.String()) + "\n", nil
	}
}

func writeSection(buf *bytes.Buffer, title, body string) {
	body = strings.TrimSpace(body)
	if body == "" {
		return
	}
	fmt.Fprintf(buf, "[%s]\n%s\n\n", title, body)
}

func formatAnyJSON(v any) (string, error) {
	if v == nil {
		return "null", nil
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func formatFields(fields []PromptField) string {
	var buf strings.Builder
	for _, f := range fields {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			continue
		}
		req := "optional"
		if f.Required {
			req = "required"
		}
		if f.Description != "" {
			fmt.Fprintf(&buf, "- %s (%s, %s): %s\n", name, f.Type, req, f.Description)
		} else {
			fmt.Fprintf(&buf, "- %s (%s, %s)\n", name, f.Type, req)
		}
	}
	return strings.TrimRight(buf.String(), "\n")
}

func formatList(items []string) string {
	var buf strings.Builder
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		fmt.Fprintf(&buf, "- %s\n", item)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func formatToolSpecs(tools []ToolSpec) string {
	if len(tools) == 0 {
		return ""
	}
	var buf strings.Builder
	buf.WriteString("Respond with {\"action\":\"tool\",\"tool_name\":...,\"tool_input\":{...}} to call a tool,\n")
	buf.WriteString("or {\"action\":\"final\",\"final\":{...}} to answer. Available tools:\n")
	for _, t := range tools {
		fmt.Fprintf(&buf, "- %s: %s", t.Name, t.Description)
		if t.InputHint != "" {
			fmt.Fprintf(&buf, " (input: %s)", t.InputHint)
		}
		buf.WriteString("\n")
	}
	return strings.TrimRight(buf.String(), "\n")
}

func formatToolResults(results []ToolResult) string {
	if len(results) == 0 {
		return ""
	}
	b, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return ""
	}
	return string(b)
}
