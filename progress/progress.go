// Package progress tracks named execution milestones ("thinking steps") for a
// single job. Steps are appended in order, each tagged with the tracker's
// current progress value, and the full sequence is attached to the terminal
// completed event before the tracker is reset for the next job.
package progress

import (
	"time"

	"github.com/hupe1980/agentbridge/event"
)

// Step is an immutable record of one milestone.
type Step struct {
	Title     string         `json:"title"`
	Timestamp string         `json:"timestamp"`
	Progress  int            `json:"progress"`
	Details   map[string]any `json:"details"`
}

// Tracker is an ordered, append-only log of steps. It requires no locking:
// exactly one job runs per process invocation and only the run loop appends.
type Tracker struct {
	emitter *event.Emitter
	steps   []Step
	current int
}

// NewTracker creates a Tracker that reports steps through em.
func NewTracker(em *event.Emitter) *Tracker {
	return &Tracker{emitter: em}
}

// AddStep appends a step at the current progress value. Unless report is
// false, a thinking_step event is emitted immediately.
func (t *Tracker) AddStep(title string, details map[string]any, report bool) Step {
	if details == nil {
		details = map[string]any{}
	}
	step := Step{
		Title:     title,
		Timestamp: time.Now().Format(time.RFC3339Nano),
		Progress:  t.current,
		Details:   details,
	}
	t.steps = append(t.steps, step)
	if report {
		t.emitter.Emit(event.TypeThinkingStep, title, map[string]any{"step": step})
	}
	return step
}

// SetProgress updates the value stamped onto subsequent steps. Values are
// caller-supplied display hints; monotonicity is not enforced.
func (t *Tracker) SetProgress(p int) { t.current = p }

// Snapshot returns the ordered step list accumulated so far.
func (t *Tracker) Snapshot() []Step {
	out := make([]Step, len(t.steps))
	copy(out, t.steps)
	return out
}

// Reset empties the log. Called at the start of each job; the sequence never
// survives across jobs.
func (t *Tracker) Reset() {
	t.steps = nil
	t.current = 0
}
