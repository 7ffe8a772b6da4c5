// Package orchestrator sequences a ship run: analyze the repository,
// consult the two AI agents, and merge their output with template
// fallbacks. The run is strictly sequential and attempts each external
// call exactly once; only the analyze stage can fail the whole run.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"

	"shipwright/internal/agent"
	"shipwright/internal/analyzer"
	"shipwright/internal/scaffold"
	"shipwright/internal/source"
)

// Provider tags identify which AI path contributed content to a result.
const (
	ProviderOpenAI   = "openai"
	ProviderBlackbox = "blackbox"
	ProviderTemplate = "template"
)

// ErrAnalysisFailed wraps the only fatal failure of a run.
var ErrAnalysisFailed = fmt.Errorf("analysis failed")

// ContentRunner is the content agent boundary.
type ContentRunner interface {
	Run(ctx context.Context, reader source.Reader, owner, repo string, an analyzer.RepoAnalysis, description string) (agent.ContentResult, error)
}

// InsightRunner is the code-insight agent boundary.
type InsightRunner interface {
	Run(ctx context.Context, reader source.Reader, owner, repo string, an analyzer.RepoAnalysis) (agent.InsightResult, error)
}

// AnalyzeFunc produces the fact sheet, or an error when the repository
// itself is unreachable.
type AnalyzeFunc func(ctx context.Context, reader source.Reader, owner, repo string) (analyzer.RepoAnalysis, error)

// Request describes one orchestration call.
type Request struct {
	Owner       string
	Repo        string
	Description string
	OnStep      StepFunc
}

// Result is the orchestration's final output, constructed exclusively
// here and returned by value.
type Result struct {
	Analysis        analyzer.RepoAnalysis `json:"analysis"`
	Readme          string                `json:"readme"`
	LandingHTML     string                `json:"landingHtml"`
	VercelJSON      string                `json:"vercelJson"`
	EnvTemplate     string                `json:"envTemplate"`
	PackageScripts  map[string]string     `json:"packageJsonScripts"`
	Recommendations []string              `json:"recommendations"`
	CodeInsights    []string              `json:"codeInsights,omitempty"`
	RiskAssessment  string                `json:"riskAssessment,omitempty"`
	Provider        string                `json:"provider"`
	Steps           []Step                `json:"steps"`
}

// Orchestrator wires the stages together. Analyze defaults to
// DefaultAnalyze when nil, so zero configuration beyond the agents works.
type Orchestrator struct {
	Analyze AnalyzeFunc
	Insight InsightRunner
	Content ContentRunner
}

// DefaultAnalyze verifies the repository is reachable, then runs the
// static analyzer. Reachability is the one hard precondition: past it,
// every downstream failure degrades instead of aborting.
func DefaultAnalyze(ctx context.Context, reader source.Reader, owner, repo string) (analyzer.RepoAnalysis, error) {
	if _, ok := reader.Listing(ctx, owner, repo, ""); !ok {
		return analyzer.RepoAnalysis{}, fmt.Errorf("%w: cannot read %s/%s", ErrAnalysisFailed, owner, repo)
	}
	return analyzer.Analyze(ctx, reader, owner, repo), nil
}

// Run executes the five stages: Analyze, CodeInsightAgent, ContentAgent,
// Merge, Done. Agent failures are recorded as error steps and replaced
// by template output; Analyze failure aborts with no partial result.
func (o *Orchestrator) Run(ctx context.Context, reader source.Reader, req Request) (Result, error) {
	tracker := newStepTracker(req.OnStep)
	analyze := o.Analyze
	if analyze == nil {
		analyze = DefaultAnalyze
	}

	id := tracker.start("Analyzing repository")
	an, err := analyze(ctx, reader, req.Owner, req.Repo)
	if err != nil {
		tracker.fail(id, err.Error())
		return Result{}, err
	}
	tracker.done(id, fmt.Sprintf("%s detected, risk %d/100", an.Framework, an.DeploymentRiskScore))

	id = tracker.start("Generating code insights")
	insight, insightErr := o.Insight.Run(ctx, reader, req.Owner, req.Repo, an)
	if insightErr != nil {
		tracker.fail(id, insightErr.Error())
	} else {
		tracker.done(id, fmt.Sprintf("%d insights", len(insight.CodeInsights)))
	}

	id = tracker.start("Writing deployment content")
	content, contentErr := o.Content.Run(ctx, reader, req.Owner, req.Repo, an, req.Description)
	if contentErr != nil {
		tracker.fail(id, contentErr.Error())
	} else {
		tracker.done(id, "README, landing copy, recommendations ready")
	}

	id = tracker.start("Merging results")
	result := merge(an, req, content, contentErr == nil, insight, insightErr == nil)
	tracker.done(id, "provider: "+result.Provider)

	id = tracker.start("Finalizing")
	tracker.done(id, "")
	result.Steps = tracker.steps
	return result, nil
}

// merge applies the fixed precedence rules: agent output when its agent
// succeeded and produced the field, template generator otherwise.
func merge(an analyzer.RepoAnalysis, req Request, content agent.ContentResult, contentOK bool, insight agent.InsightResult, insightOK bool) Result {
	out := Result{Analysis: an}

	if contentOK && content.Readme != "" {
		out.Readme = content.Readme
	} else {
		out.Readme = scaffold.BuildReadme(an, req.Repo, req.Description)
	}

	// The landing page always goes through the builder; AI copy only
	// fills the text slots.
	copy := scaffold.LandingCopy{}
	if contentOK {
		copy = content.LandingCopy
	}
	out.LandingHTML = scaffold.BuildLandingPage(an, req.Repo, copy)

	if insightOK && insight.VercelJSON != "" {
		out.VercelJSON = insight.VercelJSON
	} else if cfg := scaffold.BuildVercelConfig(an); cfg != nil {
		if b, err := json.MarshalIndent(cfg, "", "  "); err == nil {
			out.VercelJSON = string(b)
		}
	}

	if insightOK && insight.EnvTemplate != "" {
		out.EnvTemplate = insight.EnvTemplate
	} else {
		out.EnvTemplate = scaffold.BuildEnvTemplate(an)
	}

	if insightOK && len(insight.SuggestedScripts) > 0 {
		out.PackageScripts = insight.SuggestedScripts
	} else {
		out.PackageScripts = scaffold.SuggestedScripts(an)
	}

	if contentOK && len(content.Recommendations) > 0 {
		out.Recommendations = content.Recommendations
	} else {
		out.Recommendations = scaffold.DefaultRecommendations(an)
	}

	if insightOK {
		out.CodeInsights = insight.CodeInsights
		out.RiskAssessment = insight.RiskAssessment
	}

	switch {
	case contentOK:
		out.Provider = ProviderOpenAI
	case insightOK:
		out.Provider = ProviderBlackbox
	default:
		out.Provider = ProviderTemplate
	}
	return out
}
