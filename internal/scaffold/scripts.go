package scaffold

import (
	"shipwright/internal/analyzer"
)

// SuggestedScripts proposes package.json script entries. Suggestions are
// only made when the analyzer found no build script, and only for
// frameworks whose canonical scripts are unambiguous.
func SuggestedScripts(a analyzer.RepoAnalysis) map[string]string {
	if a.BuildScript != "" {
		return map[string]string{}
	}
	switch a.Framework {
	case "Next.js":
		return map[string]string{
			"dev":   "next dev",
			"build": "next build",
			"start": "next start",
		}
	case "React":
		return map[string]string{
			"dev":   "vite",
			"build": "vite build",
			"start": "vite preview",
		}
	}
	return map[string]string{}
}

// DefaultRecommendations derives rule-based deployment recommendations
// from the analysis, padded to exactly three entries.
func DefaultRecommendations(a analyzer.RepoAnalysis) []string {
	var recs []string
	if a.BuildScript == "" {
		recs = append(recs, "Add a build script to package.json so the platform can produce a production bundle.")
	}
	if !a.HasDocker {
		recs = append(recs, "Add a Dockerfile to make the deployment environment reproducible.")
	}
	if len(a.EnvVarsDetected) > 0 {
		recs = append(recs, "Configure the detected environment variables in your hosting provider before the first deploy.")
	}
	fillers := []string{
		"Enable a CI check that runs the build on every pull request.",
		"Pin dependency versions with a committed lockfile.",
		"Set up a staging environment before promoting to production.",
	}
	for _, f := range fillers {
		if len(recs) >= 3 {
			break
		}
		recs = append(recs, f)
	}
	return recs[:3]
}
