package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"shipwright/internal/analyzer"
	"shipwright/internal/llmclient"
	"shipwright/internal/llmtool"
	"shipwright/internal/source"
	"shipwright/internal/util/jsonutil"
)

// Per-call output token caps for the three insight requests.
const (
	insightAnalysisTokens = 500
	insightVercelTokens   = 400
	insightEnvTokens      = 600
)

// entryPointCandidates are probed in order; the first hit becomes the
// code context for all three prompts.
var entryPointCandidates = []string{
	"src/index.ts",
	"src/index.js",
	"src/main.ts",
	"src/main.js",
	"src/app/page.tsx",
	"pages/index.tsx",
	"index.js",
	"app.js",
	"server.js",
}

// InsightResult carries the code-insight agent's output. Empty fields
// mean the corresponding sub-call failed; the orchestrator substitutes
// the template generator there.
type InsightResult struct {
	CodeInsights     []string
	RiskAssessment   string
	SuggestedScripts map[string]string
	VercelJSON       string
	EnvTemplate      string
}

// InsightAgent issues three independent single-turn completions against
// the code-insight model. Sub-calls fail independently; the agent as a
// whole errors only when all three transport-fail.
type InsightAgent struct {
	Text llmclient.TextGenerator
}

type insightContext struct {
	Owner      string               `json:"owner"`
	Repo       string               `json:"repo"`
	Analysis   analyzer.RepoAnalysis `json:"analysis"`
	Tree       []source.TreeEntry   `json:"tree,omitempty"`
	Manifest   string               `json:"manifest,omitempty"`
	EntryPath  string               `json:"entry_path,omitempty"`
	EntryPoint string               `json:"entry_point,omitempty"`
}

// Run gathers repository context once, then issues the three prompts.
func (a *InsightAgent) Run(ctx context.Context, reader source.Reader, owner, repo string, an analyzer.RepoAnalysis) (InsightResult, error) {
	ictx := a.gatherContext(ctx, reader, owner, repo, an)

	var out InsightResult
	failures := 0

	if err := a.runAnalysis(ctx, ictx, &out); err != nil {
		failures++
		out.CodeInsights = []string{fmt.Sprintf("%s is a %s project with a deployment risk score of %d/100.", repo, an.Framework, an.DeploymentRiskScore)}
	}
	if err := a.runVercelConfig(ctx, ictx, &out); err != nil {
		failures++
	}
	if err := a.runEnvTemplate(ctx, ictx, &out); err != nil {
		failures++
	}

	if failures == 3 {
		return InsightResult{}, fmt.Errorf("insight agent: all completions failed")
	}
	return out, nil
}

func (a *InsightAgent) gatherContext(ctx context.Context, reader source.Reader, owner, repo string, an analyzer.RepoAnalysis) insightContext {
	ictx := insightContext{Owner: owner, Repo: repo, Analysis: an}
	ictx.Tree = reader.FileTree(ctx, owner, repo, source.DefaultTreeDepth)
	if manifest, ok := reader.FileContent(ctx, owner, repo, "package.json"); ok {
		ictx.Manifest = llmtool.Truncate(manifest)
	}
	for _, candidate := range entryPointCandidates {
		if content, ok := reader.FileContent(ctx, owner, repo, candidate); ok {
			ictx.EntryPath = candidate
			ictx.EntryPoint = llmtool.Truncate(content)
			break
		}
	}
	return ictx
}

type insightAnalysisOut struct {
	CodeInsights     []string          `json:"code_insights"`
	RiskAssessment   string            `json:"risk_assessment"`
	SuggestedScripts map[string]string `json:"suggested_scripts"`
}

// runAnalysis requests structured insights. Parse failure after a
// successful call degrades to the templated summary, not an error.
func (a *InsightAgent) runAnalysis(ctx context.Context, ictx insightContext, out *InsightResult) error {
	prompt := insightPrompt(ictx,
		"Analyze this repository for deployment readiness.",
		`Respond with JSON only: {"code_insights":[strings],"risk_assessment":string,"suggested_scripts":{name:command}}`)
	text, err := a.Text.GenerateText(ctx, prompt, insightAnalysisTokens)
	if err != nil {
		return err
	}
	var parsed insightAnalysisOut
	if uerr := jsonutil.UnmarshalFlex([]byte(text), &parsed); uerr != nil {
		out.CodeInsights = []string{fmt.Sprintf("%s is a %s project with a deployment risk score of %d/100.",
			ictx.Repo, ictx.Analysis.Framework, ictx.Analysis.DeploymentRiskScore)}
		return nil
	}
	out.CodeInsights = parsed.CodeInsights
	out.RiskAssessment = parsed.RiskAssessment
	out.SuggestedScripts = parsed.SuggestedScripts
	return nil
}

// runVercelConfig requests raw config text and keeps the first
// brace-delimited substring, provided it parses.
func (a *InsightAgent) runVercelConfig(ctx context.Context, ictx insightContext, out *InsightResult) error {
	prompt := insightPrompt(ictx,
		"Produce a vercel.json deployment configuration for this repository.",
		"Respond with the JSON config object only, no commentary.")
	text, err := a.Text.GenerateText(ctx, prompt, insightVercelTokens)
	if err != nil {
		return err
	}
	obj, oerr := jsonutil.ExtractObject(text)
	if oerr != nil {
		return nil
	}
	var scratch map[string]any
	if json.Unmarshal([]byte(obj), &scratch) != nil {
		return nil
	}
	out.VercelJSON = obj
	return nil
}

// runEnvTemplate requests .env-style text and strips any code fence.
func (a *InsightAgent) runEnvTemplate(ctx context.Context, ictx insightContext, out *InsightResult) error {
	prompt := insightPrompt(ictx,
		"Produce a .env.example template for this repository.",
		"Respond with the env file content only: comment lines and KEY=value lines.")
	text, err := a.Text.GenerateText(ctx, prompt, insightEnvTokens)
	if err != nil {
		return err
	}
	out.EnvTemplate = jsonutil.StripCodeFences(text)
	return nil
}

func insightPrompt(ictx insightContext, task, format string) string {
	in, _ := json.MarshalIndent(ictx, "", "  ")
	var b strings.Builder
	b.WriteString(task)
	b.WriteString("\n\n[REPOSITORY CONTEXT]\n")
	b.Write(in)
	b.WriteString("\n\n")
	b.WriteString(format)
	return b.String()
}
