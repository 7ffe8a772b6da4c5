// Package runtime tracks in-flight ship runs and fans their step events
// out to watchers. Each run has a single producer (the orchestration
// goroutine) and a buffered channel per registration, so no step list
// crosses a concurrency boundary.
package runtime

import (
	"strings"
	"sync"
	"time"

	"shipwright/internal/orchestrator"
)

const completedRunRetention = 30 * time.Second

// Event is one message on a run's watch stream: a step transition, the
// final result, or a terminal error.
type Event struct {
	Type   string               `json:"type"` // "step", "result", "error"
	Step   *orchestrator.Step   `json:"step,omitempty"`
	Result *orchestrator.Result `json:"result,omitempty"`
	Error  string               `json:"error,omitempty"`
}

// Runs is the registry of active run event channels.
type Runs struct {
	mu     sync.RWMutex
	events map[string]chan Event
}

func NewRuns() *Runs {
	return &Runs{events: make(map[string]chan Event)}
}

// Allocate creates the event channel for a run. The buffer absorbs
// transitions emitted before any watcher attaches.
func (r *Runs) Allocate(runID string, size int) chan Event {
	if size <= 0 {
		size = 1
	}
	ch := make(chan Event, size)
	r.mu.Lock()
	r.events[strings.TrimSpace(runID)] = ch
	r.mu.Unlock()
	return ch
}

// Channel returns the event channel for a run, if it is still live.
func (r *Runs) Channel(runID string) (chan Event, bool) {
	r.mu.RLock()
	ch, ok := r.events[strings.TrimSpace(runID)]
	r.mu.RUnlock()
	return ch, ok
}

// ScheduleCleanup drops a completed run's channel after a retention
// window, leaving late watchers time to drain it.
func (r *Runs) ScheduleCleanup(runID string) {
	time.AfterFunc(completedRunRetention, func() {
		r.mu.Lock()
		delete(r.events, strings.TrimSpace(runID))
		r.mu.Unlock()
	})
}
