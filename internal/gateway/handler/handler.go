// Package handler exposes the ship API: start a run, watch its step
// stream, fetch its stored artifacts.
package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"shipwright/internal/billing"
	"shipwright/internal/gateway/repository/artifact"
	"shipwright/internal/gateway/runtime"
	"shipwright/internal/orchestrator"
	"shipwright/internal/source"
)

// ReaderFactory builds a source reader from the caller's token. Injected
// so tests can substitute a fake repository.
type ReaderFactory func(ctx context.Context, token string) source.Reader

type Handler struct {
	Gate      *billing.Gate
	Orch      *orchestrator.Orchestrator
	Runs      *runtime.Runs
	Artifacts artifact.Store // nil disables artifact persistence
	NewReader ReaderFactory
}

func newRunID() string {
	var b [12]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
