package agent

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipwright/internal/analyzer"
	"shipwright/internal/scaffold"
	"shipwright/internal/source"
)

// scriptedLLM replays canned JSON responses, or a fixed error.
type scriptedLLM struct {
	responses []json.RawMessage
	err       error
}

func (s *scriptedLLM) Name() string                { return "scripted" }
func (s *scriptedLLM) Close() error                { return nil }
func (s *scriptedLLM) CountTokens(text string) int { return len(text) }
func (s *scriptedLLM) TokenCapacity() int          { return 2000 }
func (s *scriptedLLM) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.responses) == 0 {
		return json.RawMessage(`{"action":"tool","tool_name":"read_file","tool_input":{"path":"package.json"}}`), nil
	}
	out := s.responses[0]
	s.responses = s.responses[1:]
	return out, nil
}

type mapReader struct {
	files map[string]string
}

func (m *mapReader) FileContent(_ context.Context, _, _, path string) (string, bool) {
	content, ok := m.files[path]
	return content, ok
}

func (m *mapReader) Listing(_ context.Context, _, _, _ string) ([]source.Entry, bool) {
	return nil, true
}

func (m *mapReader) FileTree(_ context.Context, _, _ string, _ int) []source.TreeEntry {
	var out []source.TreeEntry
	for path := range m.files {
		out = append(out, source.TreeEntry{Path: path})
	}
	return out
}

func testAnalysis() analyzer.RepoAnalysis {
	return analyzer.RepoAnalysis{
		Framework:           "Next.js",
		PackageManager:      "npm",
		BackendType:         "Frontend",
		DeploymentRiskScore: 50,
		Description:         "acme/web — Next.js application",
	}
}

func TestContentAgentParsesFinal(t *testing.T) {
	llm := &scriptedLLM{responses: []json.RawMessage{
		json.RawMessage(`{"action":"final","final":{
			"readme":"# custom readme",
			"landing_page_copy":{"headline":"Ship faster","subheadline":"sub","features":["a","b","c"]},
			"deployment_recommendations":["one","two","three"],
			"enhanced_description":"A polished description."
		}}`),
	}}
	a := &ContentAgent{LLM: llm}
	res, err := a.Run(context.Background(), &mapReader{}, "acme", "web", testAnalysis(), "")
	require.NoError(t, err)
	assert.Equal(t, "# custom readme", res.Readme)
	assert.Equal(t, "Ship faster", res.LandingCopy.Headline)
	assert.Equal(t, []string{"one", "two", "three"}, res.Recommendations)
	assert.Equal(t, "A polished description.", res.EnhancedDescription)
}

func TestContentAgentDefaultsMissingFields(t *testing.T) {
	llm := &scriptedLLM{responses: []json.RawMessage{
		json.RawMessage(`{"action":"final","final":{"readme":"# only readme"}}`),
	}}
	an := testAnalysis()
	a := &ContentAgent{LLM: llm}
	res, err := a.Run(context.Background(), &mapReader{}, "acme", "web", an, "")
	require.NoError(t, err)

	fallback := ContentFallback(an, "web", "")
	assert.Equal(t, "# only readme", res.Readme)
	assert.Equal(t, fallback.Recommendations, res.Recommendations)
	assert.Equal(t, fallback.EnhancedDescription, res.EnhancedDescription)
	assert.Empty(t, res.LandingCopy.Headline)
}

func TestContentAgentPadsRecommendations(t *testing.T) {
	llm := &scriptedLLM{responses: []json.RawMessage{
		json.RawMessage(`{"action":"final","final":{"deployment_recommendations":["just one"]}}`),
	}}
	a := &ContentAgent{LLM: llm}
	res, err := a.Run(context.Background(), &mapReader{}, "acme", "web", testAnalysis(), "")
	require.NoError(t, err)
	require.Len(t, res.Recommendations, 3)
	assert.Equal(t, "just one", res.Recommendations[0])
}

func TestContentAgentMaxItersFallsBack(t *testing.T) {
	// The scripted client keeps requesting tool calls; the loop must hit
	// its cap and yield the template fallback without an error.
	llm := &scriptedLLM{}
	an := testAnalysis()
	a := &ContentAgent{LLM: llm, MaxIters: 2}
	res, err := a.Run(context.Background(), &mapReader{files: map[string]string{"package.json": "{}"}}, "acme", "web", an, "desc")
	require.NoError(t, err)
	assert.Equal(t, ContentFallback(an, "web", "desc"), res)
}

func TestContentAgentTransportErrorPropagates(t *testing.T) {
	llm := &scriptedLLM{err: errors.New("connection refused")}
	a := &ContentAgent{LLM: llm}
	_, err := a.Run(context.Background(), &mapReader{}, "acme", "web", testAnalysis(), "")
	require.Error(t, err)
}

func TestContentFallbackMatchesGenerators(t *testing.T) {
	an := testAnalysis()
	fb := ContentFallback(an, "web", "desc")
	assert.Equal(t, scaffold.BuildReadme(an, "web", "desc"), fb.Readme)
	assert.Equal(t, scaffold.DefaultRecommendations(an), fb.Recommendations)
	assert.Equal(t, an.Description, fb.EnhancedDescription)
}
