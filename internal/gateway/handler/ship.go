package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"shipwright/internal/billing"
	"shipwright/internal/gateway/runtime"
	"shipwright/internal/orchestrator"
)

// runTimeout bounds one whole orchestration, covering every external
// call inside it. Individual calls carry no timeout of their own, so
// the bound lives here at the entry point.
const runTimeout = 5 * time.Minute

type shipRequest struct {
	Owner       string `json:"owner"`
	Repo        string `json:"repo"`
	GithubToken string `json:"githubToken"`
	Description string `json:"description,omitempty"`
	Email       string `json:"email"`
	Name        string `json:"name,omitempty"`
}

// HandleShip starts one billing-gated run and returns its run ID. Steps
// and the final result are delivered on the run's watch stream.
func (h *Handler) HandleShip(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req shipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	req.Owner = strings.TrimSpace(req.Owner)
	req.Repo = strings.TrimSpace(req.Repo)
	req.Email = strings.TrimSpace(req.Email)
	if req.Owner == "" || req.Repo == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "owner, repo and email are required")
		return
	}

	status, err := h.Gate.Authorize(r.Context(), req.Email, req.Name)
	if err != nil {
		if errors.Is(err, billing.ErrNoAccess) {
			writeError(w, http.StatusPaymentRequired, "no active subscription or ship credits")
			return
		}
		writeError(w, http.StatusServiceUnavailable, "payment verification failed")
		return
	}

	runID := newRunID()
	events := h.Runs.Allocate(runID, 64)
	go h.execute(runID, events, req, status)

	writeJSON(w, http.StatusAccepted, map[string]string{"runId": runID})
}

// execute runs the orchestration off the request goroutine, publishing
// every step transition and the terminal event to the run channel.
func (h *Handler) execute(runID string, events chan runtime.Event, req shipRequest, status billing.Status) {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()
	defer h.Runs.ScheduleCleanup(runID)
	defer close(events)

	reader := h.NewReader(ctx, req.GithubToken)
	result, err := h.Orch.Run(ctx, reader, orchestrator.Request{
		Owner:       req.Owner,
		Repo:        req.Repo,
		Description: req.Description,
		OnStep: func(s orchestrator.Step) {
			step := s
			select {
			case events <- runtime.Event{Type: "step", Step: &step}:
			default:
				// Watcher fell behind; dropping a transition beats
				// blocking the run.
			}
		},
	})
	if err != nil {
		log.Printf("run %s failed: %v", runID, err)
		events <- runtime.Event{Type: "error", Error: err.Error()}
		return
	}

	h.Gate.Settle(ctx, status)
	h.persistArtifacts(ctx, runID, result)
	events <- runtime.Event{Type: "result", Result: &result}
}

// persistArtifacts stores the generated files for later download. The
// run already succeeded; storage failures are logged only.
func (h *Handler) persistArtifacts(ctx context.Context, runID string, result orchestrator.Result) {
	if h.Artifacts == nil {
		return
	}
	files := map[string]string{
		"README.md":    result.Readme,
		"index.html":   result.LandingHTML,
		"vercel.json":  result.VercelJSON,
		".env.example": result.EnvTemplate,
	}
	for name, content := range files {
		if content == "" {
			continue
		}
		if err := h.Artifacts.Put(ctx, runID, name, []byte(content)); err != nil {
			log.Printf("run %s: store %s: %v", runID, name, err)
		}
	}
}
