// Package schedule hosts the background jobs of the daemon: named units with
// injected handlers, invoked on a loose periodic cadence.
package schedule

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Runner holds registered jobs keyed by name. Registration is idempotent so
// it can be re-asserted at every cold start without duplicating jobs.
type Runner struct {
	mu   sync.Mutex
	jobs map[string]*Task
	log  *slog.Logger
}

func NewRunner(log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{jobs: make(map[string]*Task), log: log}
}

// Register installs or replaces the job under its name.
func (r *Runner) Register(name string, run func(ctx context.Context) error) *Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := NewTask(name, run, r.log)
	r.jobs[name] = t
	return t
}

// Lookup returns the registered task, or nil.
func (r *Runner) Lookup(name string) *Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.jobs[name]
}

// RunDaily invokes the named job shortly after every local midnight until ctx
// is canceled. Wake-ups are best effort; the job itself must tolerate being
// invoked late, repeatedly, or not at all for a cycle.
func (r *Runner) RunDaily(ctx context.Context, name string, loc *time.Location) {
	task := r.Lookup(name)
	if task == nil {
		r.log.Error("unknown job", "job", name)
		return
	}
	next := nextMidnight(time.Now().In(loc))
	t := time.NewTimer(time.Until(next))
	for {
		select {
		case <-ctx.Done():
			if !t.Stop() {
				select {
				case <-t.C:
				default:
				}
			}
			return
		case <-t.C:
			task.Invoke(ctx)
			next = nextMidnight(time.Now().In(loc))
			t.Reset(time.Until(next))
		}
	}
}

// RunEvery invokes the named job on a fixed interval until ctx is canceled.
func (r *Runner) RunEvery(ctx context.Context, name string, every time.Duration) {
	task := r.Lookup(name)
	if task == nil {
		r.log.Error("unknown job", "job", name)
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			task.Invoke(ctx)
		}
	}
}

// nextMidnight returns the first instant of the day after t, plus a small
// slack so clock skew cannot land the wake-up just before the boundary.
func nextMidnight(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, 1).Add(time.Minute)
}
