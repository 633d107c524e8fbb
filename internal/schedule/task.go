package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// State is the lifecycle of one task invocation:
// Idle -> Running -> Succeeded|Failed -> Idle.
type State string

const (
	Idle      State = "idle"
	Running   State = "running"
	Succeeded State = "succeeded"
	Failed    State = "failed"
)

// Task wraps a job handler in the invocation state machine. A failure or
// panic in the handler never propagates to the host; the next wake-up retries
// from Idle.
type Task struct {
	name string
	run  func(ctx context.Context) error
	log  *slog.Logger

	mu       sync.Mutex
	state    State
	lastRun  time.Time
	lastDone State
	lastErr  error
}

func NewTask(name string, run func(ctx context.Context) error, log *slog.Logger) *Task {
	if log == nil {
		log = slog.Default()
	}
	return &Task{name: name, run: run, log: log, state: Idle}
}

// Invoke runs the handler once and reports the outcome. Overlapping invokes
// are collapsed: a call that observes Running returns immediately.
func (t *Task) Invoke(ctx context.Context) State {
	t.mu.Lock()
	if t.state == Running {
		t.mu.Unlock()
		return Running
	}
	t.state = Running
	t.mu.Unlock()

	outcome := Succeeded
	var runErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				runErr = fmt.Errorf("job %s panicked: %v", t.name, r)
			}
		}()
		runErr = t.run(ctx)
	}()
	if runErr != nil {
		outcome = Failed
		t.log.Warn("background job failed", "job", t.name, "err", runErr)
	}

	t.mu.Lock()
	t.state = Idle
	t.lastRun = time.Now()
	t.lastDone = outcome
	t.lastErr = runErr
	t.mu.Unlock()
	return outcome
}

// State reports the current lifecycle state.
func (t *Task) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// LastOutcome reports the result of the most recent completed invocation.
func (t *Task) LastOutcome() (State, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastDone, t.lastErr
}
