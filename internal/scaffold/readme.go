package scaffold

import (
	"fmt"
	"strings"

	"shipwright/internal/analyzer"
)

// BuildReadme renders the template README for a repository. The optional
// description overrides the analyzer-derived one.
func BuildReadme(a analyzer.RepoAnalysis, repo, description string) string {
	if strings.TrimSpace(description) == "" {
		description = a.Description
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", repo)
	fmt.Fprintf(&b, "%s\n\n", description)

	b.WriteString("## Tech Stack\n\n")
	fmt.Fprintf(&b, "- **Framework:** %s\n", a.Framework)
	fmt.Fprintf(&b, "- **Backend:** %s\n", a.BackendType)
	fmt.Fprintf(&b, "- **Package manager:** %s\n", a.PackageManager)
	if a.HasDocker {
		b.WriteString("- **Docker:** Dockerfile included\n")
	}
	b.WriteString("\n## Getting Started\n\n")
	b.WriteString("```bash\n")
	fmt.Fprintf(&b, "%s install\n", a.PackageManager)
	if a.BuildScript != "" {
		fmt.Fprintf(&b, "%s run build\n", a.PackageManager)
	}
	fmt.Fprintf(&b, "%s run dev\n", a.PackageManager)
	b.WriteString("```\n")

	if len(a.EnvVarsDetected) > 0 {
		b.WriteString("\n## Environment Variables\n\n")
		b.WriteString("Create a `.env` file with:\n\n")
		b.WriteString("```\n")
		for _, name := range a.EnvVarsDetected {
			fmt.Fprintf(&b, "%s=\n", name)
		}
		b.WriteString("```\n")
	}

	if len(a.MissingConfigs) > 0 {
		b.WriteString("\n## Before Deploying\n\n")
		for _, missing := range a.MissingConfigs {
			fmt.Fprintf(&b, "- Add a %s\n", missing)
		}
	}

	fmt.Fprintf(&b, "\n---\n\nDeployment risk score: %d/100\n", a.DeploymentRiskScore)
	return b.String()
}
