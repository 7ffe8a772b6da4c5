// Package app wires the gateway: config, model clients, billing gate,
// orchestrator, run registry, and the HTTP server.
package app

import (
	"context"
	"fmt"
	"log"

	lru "github.com/hashicorp/golang-lru/v2"

	"shipwright/internal/agent"
	"shipwright/internal/analyzer"
	"shipwright/internal/billing"
	"shipwright/internal/gateway/config"
	"shipwright/internal/gateway/handler"
	"shipwright/internal/gateway/repository/artifact"
	"shipwright/internal/gateway/runtime"
	"shipwright/internal/gateway/server"
	"shipwright/internal/llmclient"
	"shipwright/internal/orchestrator"
	"shipwright/internal/source"
)

const analysisCacheSize = 256

type App struct {
	server *server.Server
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	gemini, err := llmclient.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, 2000)
	if err != nil {
		return nil, fmt.Errorf("failed to init content model client: %w", err)
	}
	contentLLM := llmclient.Chain(gemini, llmclient.WithLogging(nil))

	blackbox, err := llmclient.NewBlackboxClient(cfg.BlackboxAPIKey, cfg.BlackboxModel, 600)
	if err != nil {
		return nil, fmt.Errorf("failed to init insight model client: %w", err)
	}

	stripeProvider, err := billing.NewStripeProvider(cfg.StripeAPIKey)
	if err != nil {
		return nil, err
	}

	var artifactStore artifact.Store
	if cfg.Artifact.Enabled {
		s3, err := artifact.NewS3Store(artifact.S3Config{
			Endpoint:  cfg.Artifact.Endpoint,
			Region:    cfg.Artifact.Region,
			AccessKey: cfg.Artifact.AccessKey,
			SecretKey: cfg.Artifact.SecretKey,
			Bucket:    cfg.Artifact.Bucket,
			UseSSL:    cfg.Artifact.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to init artifact store: %w", err)
		}
		log.Printf("artifact store: s3 bucket=%s endpoint=%s", cfg.Artifact.Bucket, cfg.Artifact.Endpoint)
		artifactStore = s3
	}

	cache, err := lru.New[string, analyzer.RepoAnalysis](analysisCacheSize)
	if err != nil {
		return nil, err
	}

	orch := &orchestrator.Orchestrator{
		Analyze: cachedAnalyze(cache),
		Insight: &agent.InsightAgent{Text: blackbox},
		Content: &agent.ContentAgent{LLM: contentLLM, MaxIters: agent.ContentMaxIters},
	}

	h := &handler.Handler{
		Gate:      &billing.Gate{Provider: stripeProvider},
		Orch:      orch,
		Runs:      runtime.NewRuns(),
		Artifacts: artifactStore,
		NewReader: func(ctx context.Context, token string) source.Reader {
			return source.NewGitHubReader(ctx, token)
		},
	}

	return &App{server: server.New(cfg.Port, server.NewMux(h))}, nil
}

// cachedAnalyze memoizes the fact sheet per repository. The analysis is
// deterministic given the same fetched files, so repeat ships of the
// same repo skip the GitHub round-trips.
func cachedAnalyze(cache *lru.Cache[string, analyzer.RepoAnalysis]) orchestrator.AnalyzeFunc {
	return func(ctx context.Context, reader source.Reader, owner, repo string) (analyzer.RepoAnalysis, error) {
		key := owner + "/" + repo
		if an, ok := cache.Get(key); ok {
			return an, nil
		}
		an, err := orchestrator.DefaultAnalyze(ctx, reader, owner, repo)
		if err != nil {
			return analyzer.RepoAnalysis{}, err
		}
		cache.Add(key, an)
		return an, nil
	}
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}
