// Package analyzer derives a structured fact sheet from a repository's
// manifest, env files, and Dockerfile. It performs no AI calls; every
// fact is a deterministic function of the fetched file contents.
package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"shipwright/internal/source"
)

// RepoAnalysis is the immutable fact sheet produced once per run.
type RepoAnalysis struct {
	Framework           string   `json:"framework"`
	PackageManager      string   `json:"packageManager"`
	BackendType         string   `json:"backendType"`
	HasDocker           bool     `json:"hasDocker"`
	EnvVarsDetected     []string `json:"envVarsDetected"`
	BuildScript         string   `json:"buildScript,omitempty"`
	MissingConfigs      []string `json:"missingConfigs"`
	DeploymentRiskScore int      `json:"deploymentRiskScore"`
	Description         string   `json:"description"`
}

// manifest is the subset of package.json the analyzer inspects.
type manifest struct {
	Name            string            `json:"name"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
	Scripts         map[string]string `json:"scripts"`
}

// frameworkRule maps a marker dependency to a framework name. Rules are
// checked in order; a meta-framework must appear before its underlying UI
// library so that e.g. a Next.js app is never classified as plain React.
type frameworkRule struct {
	dep  string
	name string
}

var frameworkRules = []frameworkRule{
	{"next", "Next.js"},
	{"nuxt", "Nuxt"},
	{"@sveltejs/kit", "SvelteKit"},
	{"@remix-run/react", "Remix"},
	{"astro", "Astro"},
	{"gatsby", "Gatsby"},
	{"react", "React"},
	{"vue", "Vue.js"},
	{"svelte", "Svelte"},
	{"@angular/core", "Angular"},
}

var backendRules = []frameworkRule{
	{"express", "Express"},
	{"fastify", "Fastify"},
	{"@nestjs/core", "NestJS"},
	{"koa", "Koa"},
	{"hono", "Hono"},
}

var envLineRe = regexp.MustCompile(`^[A-Z_][A-Z0-9_]*\s*=`)

// envFiles are read in this order; detected variables are unioned.
var envFiles = []string{".env.example", ".env.local", ".env"}

// Analyze inspects a fixed set of files and returns the fact sheet. A
// missing or unparsable manifest degrades every dependent fact to its
// unknown default; Analyze itself never fails once the reader is usable.
func Analyze(ctx context.Context, r source.Reader, owner, repo string) RepoAnalysis {
	a := RepoAnalysis{
		Framework:      "Unknown",
		PackageManager: "npm",
		BackendType:    "Frontend",
	}

	raw, ok := r.FileContent(ctx, owner, repo, "package.json")
	var m manifest
	hasManifest := false
	if ok {
		if err := json.Unmarshal([]byte(raw), &m); err == nil {
			hasManifest = true
		}
	}

	deps := mergeDeps(m.Dependencies, m.DevDependencies)
	if hasManifest {
		a.Framework = "Node.js"
		for _, rule := range frameworkRules {
			if _, found := deps[rule.dep]; found {
				a.Framework = rule.name
				break
			}
		}
		for _, rule := range backendRules {
			if _, found := deps[rule.dep]; found {
				a.BackendType = rule.name
				break
			}
		}
		a.BuildScript = m.Scripts["build"]
	}

	_, a.HasDocker = r.FileContent(ctx, owner, repo, "Dockerfile")
	a.EnvVarsDetected = detectEnvVars(ctx, r, owner, repo)
	a.MissingConfigs = missingConfigs(m, raw, a.Framework, a.HasDocker)
	a.DeploymentRiskScore = riskScore(a)
	a.Description = describe(owner, repo, a)
	return a
}

func mergeDeps(prod, dev map[string]string) map[string]string {
	merged := make(map[string]string, len(prod)+len(dev))
	for k, v := range prod {
		merged[k] = v
	}
	for k, v := range dev {
		merged[k] = v
	}
	return merged
}

func detectEnvVars(ctx context.Context, r source.Reader, owner, repo string) []string {
	seen := map[string]struct{}{}
	var vars []string
	for _, file := range envFiles {
		content, ok := r.FileContent(ctx, owner, repo, file)
		if !ok {
			continue
		}
		for _, line := range strings.Split(content, "\n") {
			line = strings.TrimSpace(line)
			if !envLineRe.MatchString(line) {
				continue
			}
			name := strings.TrimSpace(line[:strings.Index(line, "=")])
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			vars = append(vars, name)
		}
	}
	sort.Strings(vars)
	return vars
}

func missingConfigs(m manifest, rawManifest, framework string, hasDocker bool) []string {
	var missing []string
	if m.Scripts["build"] == "" {
		missing = append(missing, "build script")
	}
	if m.Scripts["start"] == "" {
		missing = append(missing, "start script")
	}
	if !hasDocker && m.Scripts["dev"] == "" {
		missing = append(missing, "dev script")
	}
	if framework == "Next.js" && !strings.Contains(rawManifest, "next.config.js") {
		missing = append(missing, "next.config.js")
	}
	return missing
}

// riskScore applies the fixed weighted rules and clamps to [0,100].
func riskScore(a RepoAnalysis) int {
	score := 0
	if a.BuildScript == "" {
		score += 20
	}
	if !a.HasDocker {
		score += 10
	}
	score += 5 * len(a.MissingConfigs)
	if len(a.EnvVarsDetected) > 5 {
		score += 15
	}
	if score > 100 {
		score = 100
	}
	return score
}

func describe(owner, repo string, a RepoAnalysis) string {
	kind := a.Framework
	if a.BackendType != "Frontend" {
		kind = fmt.Sprintf("%s + %s", a.Framework, a.BackendType)
	}
	return fmt.Sprintf("%s/%s — %s application", owner, repo, kind)
}
