package llmtool

import (
	"context"
	"encoding/json"
	"fmt"

	"shipwright/internal/source"
)

// MaxFileChars bounds file content returned through the read_file tool.
// Longer files are cut and marked so the model knows content is missing.
const MaxFileChars = 3000

const truncationMarker = "\n...[truncated]"

// SourceTools exposes read-only repository access as loop tools.
type SourceTools struct {
	Reader source.Reader
	Owner  string
	Repo   string
}

func (t *SourceTools) Specs() []ToolSpec {
	return []ToolSpec{
		{
			Name:        "read_file",
			Description: "Read a file from the repository by path",
			InputHint:   `{"path": "src/index.ts"}`,
		},
		{
			Name:        "list_dir",
			Description: "List the entries of a repository directory",
			InputHint:   `{"path": "src"}`,
		},
	}
}

type toolPathInput struct {
	Path string `json:"path"`
}

func (t *SourceTools) Call(ctx context.Context, name string, input json.RawMessage) (json.RawMessage, error) {
	var in toolPathInput
	if len(input) > 0 {
		if err := json.Unmarshal(input, &in); err != nil {
			return nil, fmt.Errorf("llmtool: bad tool input: %w", err)
		}
	}
	switch name {
	case "read_file":
		content, ok := t.Reader.FileContent(ctx, t.Owner, t.Repo, in.Path)
		if !ok {
			return json.Marshal(map[string]string{"error": "file not found"})
		}
		return json.Marshal(map[string]string{"content": Truncate(content)})
	case "list_dir":
		entries, ok := t.Reader.Listing(ctx, t.Owner, t.Repo, in.Path)
		if !ok {
			return json.Marshal(map[string]string{"error": "directory not found"})
		}
		return json.Marshal(map[string]any{"entries": entries})
	default:
		return nil, ErrToolNotFound
	}
}

// Truncate cuts content to MaxFileChars and appends a marker when it did.
func Truncate(content string) string {
	if len(content) <= MaxFileChars {
		return content
	}
	return content[:MaxFileChars] + truncationMarker
}
