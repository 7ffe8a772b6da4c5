package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"shipwright/internal/util/jsonutil"
)

// HandleWatchSSE streams a run's events as server-sent events until the
// run completes or the client disconnects.
func (h *Handler) HandleWatchSSE(w http.ResponseWriter, r *http.Request) {
	runID := strings.TrimPrefix(r.URL.Path, "/api/watch/")
	ch, ok := h.Runs.Channel(runID)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown run")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	for {
		select {
		case ev, open := <-ch:
			if !open {
				return
			}
			// Result events carry landing-page HTML; encode without the
			// default <>& escaping so clients receive it verbatim.
			payload, err := jsonutil.MarshalNoEscape(ev)
			if err != nil {
				continue
			}
			if _, err := w.Write([]byte("data: " + string(payload) + "\n\n")); err != nil {
				return
			}
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

const (
	watchWSWriteWait = 10 * time.Second
	watchWSPongWait  = 60 * time.Second
	watchWSPingEvery = (watchWSPongWait * 9) / 10
)

var watchWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// HandleWatchWS streams the same run events over a websocket, for
// clients that keep one socket open across runs of the UI.
func (h *Handler) HandleWatchWS(w http.ResponseWriter, r *http.Request) {
	runID := strings.TrimPrefix(r.URL.Path, "/api/watch-ws/")
	ch, ok := h.Runs.Channel(runID)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown run")
		return
	}
	conn, err := watchWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(watchWSPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(watchWSPongWait))
	})
	// Reader goroutine only services control frames.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(watchWSPingEvery)
	defer ping.Stop()

	for {
		select {
		case ev, open := <-ch:
			if !open {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(watchWSWriteWait))
				return
			}
			payload, err := jsonutil.MarshalNoEscape(ev)
			if err != nil {
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(watchWSWriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(watchWSWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-r.Context().Done():
			return
		}
	}
}
