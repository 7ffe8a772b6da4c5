package handler

import (
	"net/http"
	"strings"
)

// HandleArtifact serves one stored artifact: /api/artifacts/{runID}/{name}.
func (h *Handler) HandleArtifact(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h.Artifacts == nil {
		writeError(w, http.StatusNotFound, "artifact storage disabled")
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/artifacts/")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		writeError(w, http.StatusBadRequest, "expected /api/artifacts/{run}/{name}")
		return
	}
	content, err := h.Artifacts.Get(r.Context(), parts[0], parts[1])
	if err != nil {
		writeError(w, http.StatusNotFound, "artifact not found")
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(content)
}
