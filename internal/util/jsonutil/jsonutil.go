// Package jsonutil rescues structured data from model output. Models
// wrap JSON in prose or code fences often enough that direct unmarshal
// is only the first attempt, never the only one.
package jsonutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

var ErrNoJSONObject = errors.New("jsonutil: no JSON object found")

// UnmarshalFlex tries a direct unmarshal, then retries against the first
// brace-delimited substring. Use it whenever the bytes came from a model.
func UnmarshalFlex(raw []byte, v any) error {
	if err := json.Unmarshal(raw, v); err == nil {
		return nil
	}
	obj, err := ExtractObject(string(raw))
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(obj), v)
}

// ExtractObject returns the first balanced brace-delimited substring.
// Braces inside JSON strings are skipped.
func ExtractObject(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", ErrNoJSONObject
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}
	return "", ErrNoJSONObject
}

// StripCodeFences removes a surrounding markdown code fence, with or
// without a language tag. Text without a fence passes through unchanged.
func StripCodeFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
		first := strings.TrimSpace(trimmed[:idx])
		// A language tag is a single short word on the fence line.
		if first == "" || !strings.ContainsAny(first, " \t") {
			trimmed = trimmed[idx+1:]
		}
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// MarshalNoEscape encodes v into JSON without escaping <, >, and &.
func MarshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
