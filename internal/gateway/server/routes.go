package server

import (
	"net/http"

	"shipwright/internal/gateway/handler"
	"shipwright/internal/gateway/middleware"
)

func NewMux(h *handler.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/ship", h.HandleShip)
	mux.HandleFunc("/api/watch/", h.HandleWatchSSE)
	mux.HandleFunc("/api/watch-ws/", h.HandleWatchWS)
	mux.HandleFunc("/api/artifacts/", h.HandleArtifact)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return middleware.CORS(mux)
}
