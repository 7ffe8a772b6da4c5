// Package scaffold holds the deterministic, non-AI artifact generators.
// Every function is total over a RepoAnalysis and free of hidden state:
// identical input yields byte-identical output.
package scaffold

import (
	"shipwright/internal/analyzer"
)

// VercelConfig is the Vercel-style deployment config artifact.
type VercelConfig struct {
	Framework       string            `json:"framework,omitempty"`
	BuildCommand    string            `json:"buildCommand"`
	OutputDirectory string            `json:"outputDirectory"`
	InstallCommand  string            `json:"installCommand"`
	DevCommand      string            `json:"devCommand"`
	Env             map[string]string `json:"env,omitempty"`
}

type vercelTarget struct {
	platform  string
	outputDir string
	devCmd    string
}

var vercelTargets = map[string]vercelTarget{
	"Next.js":   {"nextjs", ".next", "next dev"},
	"Nuxt":      {"nuxtjs", ".output", "nuxt dev"},
	"SvelteKit": {"sveltekit", ".svelte-kit", "vite dev"},
	"Remix":     {"remix", "build", "remix dev"},
	"Astro":     {"astro", "dist", "astro dev"},
	"Gatsby":    {"gatsby", "public", "gatsby develop"},
	"React":     {"create-react-app", "build", "react-scripts start"},
	"Vue.js":    {"vue", "dist", "vite dev"},
	"Svelte":    {"svelte", "dist", "vite dev"},
	"Angular":   {"angular", "dist", "ng serve"},
}

// BuildVercelConfig maps the detected framework onto a known platform and
// output directory. Unknown frameworks yield nil on purpose: emitting a
// speculative config for an unrecognized stack does more harm than
// omitting one.
func BuildVercelConfig(a analyzer.RepoAnalysis) *VercelConfig {
	target, ok := vercelTargets[a.Framework]
	if !ok {
		return nil
	}
	cfg := &VercelConfig{
		Framework:       target.platform,
		BuildCommand:    "npm run build",
		OutputDirectory: target.outputDir,
		InstallCommand:  "npm install",
		DevCommand:      target.devCmd,
	}
	if len(a.EnvVarsDetected) > 0 {
		cfg.Env = make(map[string]string, len(a.EnvVarsDetected))
		for _, name := range a.EnvVarsDetected {
			cfg.Env[name] = "@" + toSecretRef(name)
		}
	}
	return cfg
}
