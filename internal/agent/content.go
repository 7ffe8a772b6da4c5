// Package agent holds the two AI collaborators of a ship run: the
// tool-calling content agent and the single-turn code-insight agent.
// Both degrade per field instead of failing on malformed model output.
package agent

import (
	"context"
	"strings"

	"shipwright/internal/analyzer"
	"shipwright/internal/llmclient"
	"shipwright/internal/llmtool"
	"shipwright/internal/scaffold"
	"shipwright/internal/source"
	"shipwright/internal/util/jsonutil"
)

// ContentMaxIters bounds the content agent's tool-call rounds.
const ContentMaxIters = 8

// ContentResult carries the content agent's deliverables. Every field is
// always populated; missing model output is replaced by its template
// default before the result is returned.
type ContentResult struct {
	Readme              string
	LandingCopy         scaffold.LandingCopy
	Recommendations     []string
	EnhancedDescription string
}

// ContentAgent explores the repository through loop tools and produces
// README text, landing-page copy, and deployment recommendations.
type ContentAgent struct {
	LLM      llmclient.LLMClient
	MaxIters int
}

var contentPromptSpec = llmtool.StructuredPromptSpec{
	Purpose: "Write deployment-ready content for the repository described in INPUT.",
	Background: "You are preparing a repository for its first public deploy. " +
		"Explore the repository with the tools when the analysis facts are not enough.",
	OutputFields: []llmtool.PromptField{
		{Name: "readme", Type: "string", Required: true, Description: "Complete Markdown README for the repository."},
		{Name: "landing_page_copy", Type: "object", Required: true, Description: `{"headline","subheadline","features":[3 strings]}`},
		{Name: "deployment_recommendations", Type: "[]string", Required: true, Description: "Exactly 3 concrete recommendations."},
		{Name: "enhanced_description", Type: "string", Required: false, Description: "One-paragraph project description."},
	},
	Constraints: []string{
		"Ground every claim in the analysis facts or in file content you read.",
		"Keep the README practical: setup, env vars, deploy steps.",
	},
	OutputFormat: "JSON only.",
}

type contentFinal struct {
	Readme                    string               `json:"readme"`
	LandingPageCopy           scaffold.LandingCopy `json:"landing_page_copy"`
	DeploymentRecommendations []string             `json:"deployment_recommendations"`
	EnhancedDescription       string               `json:"enhanced_description"`
}

// Run executes the bounded tool loop. Reaching the iteration cap without
// a final answer yields the deterministic fallback, not an error; only
// transport-level failures propagate to the caller.
func (a *ContentAgent) Run(ctx context.Context, reader source.Reader, owner, repo string, an analyzer.RepoAnalysis, description string) (ContentResult, error) {
	ctx = llmclient.WithAgent(ctx, "content")
	max := a.MaxIters
	if max <= 0 {
		max = ContentMaxIters
	}
	loop := &llmtool.ToolLoop{
		LLM:      a.LLM,
		Tools:    &llmtool.SourceTools{Reader: reader, Owner: owner, Repo: repo},
		MaxIters: max,
		Allowed:  []string{"read_file", "list_dir"},
	}
	input := map[string]any{
		"owner":       owner,
		"repo":        repo,
		"analysis":    an,
		"description": description,
	}
	raw, _, err := loop.Run(ctx, input, llmtool.StructuredPromptBuilder(contentPromptSpec))
	if err == llmtool.ErrMaxIterations {
		return ContentFallback(an, repo, description), nil
	}
	if err != nil {
		return ContentResult{}, err
	}

	// Per-field leniency: any field the model omitted or mangled falls
	// back to its template default independently.
	fallback := ContentFallback(an, repo, description)
	var parsed contentFinal
	if err := jsonutil.UnmarshalFlex(raw, &parsed); err != nil {
		return fallback, nil
	}
	out := fallback
	if strings.TrimSpace(parsed.Readme) != "" {
		out.Readme = parsed.Readme
	}
	if strings.TrimSpace(parsed.LandingPageCopy.Headline) != "" {
		out.LandingCopy.Headline = parsed.LandingPageCopy.Headline
	}
	if strings.TrimSpace(parsed.LandingPageCopy.Subheadline) != "" {
		out.LandingCopy.Subheadline = parsed.LandingPageCopy.Subheadline
	}
	if len(parsed.LandingPageCopy.Features) > 0 {
		out.LandingCopy.Features = parsed.LandingPageCopy.Features
	}
	if len(parsed.DeploymentRecommendations) > 0 {
		out.Recommendations = padRecommendations(parsed.DeploymentRecommendations, an)
	}
	if strings.TrimSpace(parsed.EnhancedDescription) != "" {
		out.EnhancedDescription = parsed.EnhancedDescription
	}
	return out, nil
}

// ContentFallback builds the agent's deliverables purely from the
// analysis, with no AI involved.
func ContentFallback(an analyzer.RepoAnalysis, repo, description string) ContentResult {
	return ContentResult{
		Readme:              scaffold.BuildReadme(an, repo, description),
		LandingCopy:         scaffold.LandingCopy{},
		Recommendations:     scaffold.DefaultRecommendations(an),
		EnhancedDescription: an.Description,
	}
}

// padRecommendations trims or pads to exactly three entries, reusing the
// rule-based defaults as filler.
func padRecommendations(recs []string, an analyzer.RepoAnalysis) []string {
	out := make([]string, 0, 3)
	for _, r := range recs {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		out = append(out, r)
		if len(out) == 3 {
			return out
		}
	}
	for _, f := range scaffold.DefaultRecommendations(an) {
		if len(out) == 3 {
			break
		}
		out = append(out, f)
	}
	return out
}
