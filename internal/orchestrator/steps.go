package orchestrator

// StepStatus is the lifecycle state of one orchestration stage.
type StepStatus string

const (
	StepPending StepStatus = "pending"
	StepRunning StepStatus = "running"
	StepDone    StepStatus = "done"
	StepError   StepStatus = "error"
)

// Step is the transient, UI-facing record of one stage. IDs increase
// monotonically within a run; a step is mutable while running and frozen
// once done or errored.
type Step struct {
	ID     int        `json:"id"`
	Label  string     `json:"label"`
	Status StepStatus `json:"status"`
	Detail string     `json:"detail,omitempty"`
}

// StepFunc receives a snapshot on every step transition.
type StepFunc func(Step)

// stepTracker owns the run's step sequence. The run is single-threaded,
// so no locking is needed; the callback sees each transition in order.
type stepTracker struct {
	steps  []Step
	nextID int
	onStep StepFunc
}

func newStepTracker(onStep StepFunc) *stepTracker {
	return &stepTracker{nextID: 1, onStep: onStep}
}

func (t *stepTracker) emit(s Step) {
	if t.onStep != nil {
		t.onStep(s)
	}
}

// start appends a new step, reporting pending then running.
func (t *stepTracker) start(label string) int {
	s := Step{ID: t.nextID, Label: label, Status: StepPending}
	t.nextID++
	t.steps = append(t.steps, s)
	t.emit(s)
	idx := len(t.steps) - 1
	t.steps[idx].Status = StepRunning
	t.emit(t.steps[idx])
	return s.ID
}

func (t *stepTracker) done(id int, detail string) {
	t.finish(id, StepDone, detail)
}

func (t *stepTracker) fail(id int, detail string) {
	t.finish(id, StepError, detail)
}

func (t *stepTracker) finish(id int, status StepStatus, detail string) {
	if idx := t.index(id); idx >= 0 {
		t.steps[idx].Status = status
		t.steps[idx].Detail = detail
		t.emit(t.steps[idx])
	}
}

func (t *stepTracker) index(id int) int {
	for i := range t.steps {
		if t.steps[i].ID == id {
			return i
		}
	}
	return -1
}
