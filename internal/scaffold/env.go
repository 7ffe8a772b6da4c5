package scaffold

import (
	"strings"

	"shipwright/internal/analyzer"
)

// hintRule maps a variable-name substring to a placeholder value. Rules
// are ordered; the first matching category wins.
type hintRule struct {
	substr string
	hint   string
}

var hintRules = []hintRule{
	{"KEY", "your-key-here"},
	{"SECRET", "your-secret-here"},
	{"URL", "https://example.com"},
	{"TOKEN", "your-token-here"},
	{"ID", "your-id-here"},
	{"PASSWORD", "change-me"},
	{"HOST", "localhost"},
	{"DB", "localhost"},
	{"PORT", "3000"},
	{"ENV", "development"},
}

// BuildEnvTemplate renders one KEY=hint line per detected variable, with
// a comment header. Variables with no matching hint category get an
// empty value.
func BuildEnvTemplate(a analyzer.RepoAnalysis) string {
	var b strings.Builder
	b.WriteString("# Environment variables\n")
	b.WriteString("# Copy this file to .env and fill in real values.\n\n")
	for _, name := range a.EnvVarsDetected {
		b.WriteString(name)
		b.WriteString("=")
		b.WriteString(envHint(name))
		b.WriteString("\n")
	}
	return b.String()
}

func envHint(name string) string {
	upper := strings.ToUpper(name)
	for _, rule := range hintRules {
		if strings.Contains(upper, rule.substr) {
			return rule.hint
		}
	}
	return ""
}

// toSecretRef turns an env var name into a Vercel secret reference slug.
func toSecretRef(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "_", "-")
}
