package llmtool

import (
	"encoding/json"
	"fmt"

	"shipwright/internal/util/jsonutil"
)

// ActionEnvelope describes the tool-loop action response from the LLM.
type ActionEnvelope struct {
	Action    string          `json:"action,omitempty"`
	ToolName  string          `json:"tool_name,omitempty"`
	ToolInput json.RawMessage `json:"tool_input,omitempty"`
	Final     json.RawMessage `json:"final,omitempty"`
}

// ParseAction parses the LLM response into an action envelope. A
// response with none of the envelope fields is treated as a direct final
// answer, which keeps models that skip the envelope usable. An envelope
// wrapped in prose or a code fence is rescued by brace extraction before
// giving up; the content model's output is not JSON-validated upstream.
func ParseAction(raw json.RawMessage) (ActionEnvelope, error) {
	var env ActionEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		obj, oerr := jsonutil.ExtractObject(string(raw))
		if oerr != nil {
			return ActionEnvelope{}, err
		}
		raw = json.RawMessage(obj)
		if err := json.Unmarshal(raw, &env); err != nil {
			return ActionEnvelope{}, err
		}
	}
	if env.Action == "" && env.ToolName == "" && len(env.Final) == 0 {
		env.Action = "final"
		env.Final = raw
	}

	if env.Action == "" {
		switch {
		case len(env.Final) > 0:
			env.Action = "final"
		case env.ToolName != "" || len(env.ToolInput) > 0:
			env.Action = "tool"
		}
	}
	switch env.Action {
	case "final", "tool":
		return env, nil
	default:
		return ActionEnvelope{}, fmt.Errorf("llmtool: invalid action %q", env.Action)
	}
}
