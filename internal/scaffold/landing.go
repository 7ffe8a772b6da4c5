package scaffold

import (
	"fmt"
	"html"
	"strings"

	"shipwright/internal/analyzer"
)

// LandingCopy is the AI-sourced copy slot for the landing page. Empty
// fields fall back to analysis-derived defaults, so a zero value is a
// valid input.
type LandingCopy struct {
	Headline    string   `json:"headline"`
	Subheadline string   `json:"subheadline"`
	Features    []string `json:"features"`
}

// BuildLandingPage renders a single self-contained HTML document. The
// page always goes through this builder; AI copy only replaces the text
// slots, never the structure.
func BuildLandingPage(a analyzer.RepoAnalysis, repo string, copy LandingCopy) string {
	headline := strings.TrimSpace(copy.Headline)
	if headline == "" {
		headline = repo
	}
	subheadline := strings.TrimSpace(copy.Subheadline)
	if subheadline == "" {
		subheadline = a.Description
	}
	features := copy.Features
	if len(features) == 0 {
		features = []string{
			fmt.Sprintf("Built with %s", a.Framework),
			fmt.Sprintf("%s backend", a.BackendType),
			"Ready to deploy",
		}
	}

	var items strings.Builder
	for _, f := range features {
		fmt.Fprintf(&items, "      <li>%s</li>\n", html.EscapeString(f))
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>%s</title>
  <style>
    body { font-family: system-ui, sans-serif; margin: 0; color: #111; }
    main { max-width: 720px; margin: 0 auto; padding: 4rem 1.5rem; }
    h1 { font-size: 2.5rem; margin-bottom: 0.5rem; }
    p.sub { font-size: 1.2rem; color: #555; }
    ul { padding-left: 1.2rem; }
    li { margin: 0.5rem 0; }
    footer { margin-top: 4rem; font-size: 0.85rem; color: #999; }
  </style>
</head>
<body>
  <main>
    <h1>%s</h1>
    <p class="sub">%s</p>
    <ul>
%s    </ul>
    <footer>Generated for %s</footer>
  </main>
</body>
</html>
`,
		html.EscapeString(headline),
		html.EscapeString(headline),
		html.EscapeString(subheadline),
		items.String(),
		html.EscapeString(repo),
	)
}
