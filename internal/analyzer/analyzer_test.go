package analyzer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipwright/internal/source"
)

// fakeReader serves repository files from a map.
type fakeReader struct {
	files map[string]string
}

func (f *fakeReader) FileContent(_ context.Context, _, _, path string) (string, bool) {
	content, ok := f.files[path]
	return content, ok
}

func (f *fakeReader) Listing(_ context.Context, _, _, _ string) ([]source.Entry, bool) {
	return nil, true
}

func (f *fakeReader) FileTree(_ context.Context, _, _ string, _ int) []source.TreeEntry {
	var out []source.TreeEntry
	for path := range f.files {
		out = append(out, source.TreeEntry{Path: path})
	}
	return out
}

func TestAnalyzeNextNoDockerNoEnv(t *testing.T) {
	r := &fakeReader{files: map[string]string{
		"package.json": `{"dependencies":{"next":"14.0.0"}}`,
	}}
	a := Analyze(context.Background(), r, "acme", "web")

	assert.Equal(t, "Next.js", a.Framework)
	assert.False(t, a.HasDocker)
	assert.Empty(t, a.EnvVarsDetected)
	assert.Equal(t, []string{"build script", "start script", "dev script", "next.config.js"}, a.MissingConfigs)
	// 20 (no build) + 10 (no docker) + 5*4 (missing configs) = 50.
	assert.Equal(t, 50, a.DeploymentRiskScore)
}

func TestAnalyzeMetaFrameworkBeatsUILibrary(t *testing.T) {
	r := &fakeReader{files: map[string]string{
		"package.json": `{"dependencies":{"react":"18.0.0","next":"14.0.0"}}`,
	}}
	a := Analyze(context.Background(), r, "acme", "web")
	assert.Equal(t, "Next.js", a.Framework)
}

func TestAnalyzeDevDependenciesCount(t *testing.T) {
	r := &fakeReader{files: map[string]string{
		"package.json": `{"devDependencies":{"vue":"3.4.0"}}`,
	}}
	a := Analyze(context.Background(), r, "acme", "web")
	assert.Equal(t, "Vue.js", a.Framework)
}

func TestAnalyzeBackendDetection(t *testing.T) {
	r := &fakeReader{files: map[string]string{
		"package.json": `{"dependencies":{"react":"18.0.0","express":"4.19.0"}}`,
	}}
	a := Analyze(context.Background(), r, "acme", "api")
	assert.Equal(t, "React", a.Framework)
	assert.Equal(t, "Express", a.BackendType)
}

func TestAnalyzeEnvVarParsing(t *testing.T) {
	r := &fakeReader{files: map[string]string{
		"package.json": `{"dependencies":{"next":"14.0.0"}}`,
		".env.example": "API_KEY=123\nmalformed line\nDB_HOST=localhost\n",
	}}
	a := Analyze(context.Background(), r, "acme", "web")
	assert.ElementsMatch(t, []string{"API_KEY", "DB_HOST"}, a.EnvVarsDetected)
}

func TestAnalyzeEnvVarsUnionedAcrossFiles(t *testing.T) {
	r := &fakeReader{files: map[string]string{
		"package.json": `{}`,
		".env.example": "API_KEY=\n",
		".env.local":   "API_KEY=other\nDB_URL=postgres://x\n",
		".env":         "PORT=3000\n# comment\nlowercase=no\n",
	}}
	a := Analyze(context.Background(), r, "acme", "web")
	assert.ElementsMatch(t, []string{"API_KEY", "DB_URL", "PORT"}, a.EnvVarsDetected)
}

func TestAnalyzeNoManifestDegrades(t *testing.T) {
	r := &fakeReader{files: map[string]string{}}
	a := Analyze(context.Background(), r, "acme", "mystery")

	assert.Equal(t, "Unknown", a.Framework)
	assert.Equal(t, "Frontend", a.BackendType)
	assert.Equal(t, "npm", a.PackageManager)
	assert.Empty(t, a.BuildScript)
}

func TestAnalyzeManifestWithScripts(t *testing.T) {
	r := &fakeReader{files: map[string]string{
		"package.json": `{"dependencies":{"next":"14.0.0"},"scripts":{"build":"next build","start":"next start","dev":"next dev"},"next.config.js":""}`,
		"Dockerfile":   "FROM node:20",
	}}
	a := Analyze(context.Background(), r, "acme", "web")

	assert.True(t, a.HasDocker)
	assert.Equal(t, "next build", a.BuildScript)
	assert.Empty(t, a.MissingConfigs)
	assert.Equal(t, 0, a.DeploymentRiskScore)
}

func TestRiskScoreBounds(t *testing.T) {
	cases := []map[string]string{
		{},
		{"package.json": `{}`},
		{"package.json": `{"dependencies":{"next":"14.0.0"}}`, ".env": "A_1=\nB_2=\nC_3=\nD_4=\nE_5=\nF_6=\n"},
	}
	for _, files := range cases {
		a := Analyze(context.Background(), &fakeReader{files: files}, "acme", "web")
		require.GreaterOrEqual(t, a.DeploymentRiskScore, 0)
		require.LessOrEqual(t, a.DeploymentRiskScore, 100)
	}
}

func TestRiskScoreEnvVarPenalty(t *testing.T) {
	r := &fakeReader{files: map[string]string{
		"package.json": `{"dependencies":{"next":"14.0.0"}}`,
		".env":         "A_1=\nB_2=\nC_3=\nD_4=\nE_5=\nF_6=\n",
	}}
	a := Analyze(context.Background(), r, "acme", "web")
	// 50 as in the base scenario, plus 15 for more than five env vars.
	assert.Equal(t, 65, a.DeploymentRiskScore)
}
