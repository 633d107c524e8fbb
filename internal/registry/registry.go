// Package registry owns the live-handle state for scheduled reminders and
// guarantees that re-registering a medication never leaves stale base
// notifications behind.
package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/mkalvani/dosett/internal/model"
	"github.com/mkalvani/dosett/internal/notify"
	"github.com/mkalvani/dosett/internal/trigger"
)

// Registry serializes cancel-then-create per medication so overlapping
// registrations cannot leave two live base reminders. Operations on different
// medications run unordered relative to each other.
type Registry struct {
	notifier notify.Notifier

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(n notify.Notifier) *Registry {
	return &Registry{
		notifier: n,
		locks:    make(map[string]*sync.Mutex),
	}
}

// lockFor returns the critical-section lock for one medication id.
func (r *Registry) lockFor(medID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[medID]
	if !ok {
		l = &sync.Mutex{}
		r.locks[medID] = l
	}
	return l
}

// Register installs the plan's triggers for the medication after cancelling
// every live base handle tagged with the same id. The last call to complete
// for an id determines the final live handles.
func (r *Registry) Register(ctx context.Context, med model.MedicationSchedule, plan trigger.Plan) ([]notify.Handle, error) {
	l := r.lockFor(med.ID)
	l.Lock()
	defer l.Unlock()

	if err := r.cancelBase(ctx, med.ID); err != nil {
		return nil, err
	}

	payload := notify.BasePayload{
		MedicationID: med.ID,
		Name:         med.Name,
		Dosage:       med.Dosage,
	}

	var handles []notify.Handle
	for _, spec := range plan.Specs {
		h, err := r.install(ctx, spec, payload)
		if err != nil {
			// roll back anything installed by this call so a failed
			// registration leaves no partial state
			for _, done := range handles {
				_ = r.notifier.Cancel(ctx, done)
			}
			return nil, fmt.Errorf("install %s trigger for %s: %w", spec.Kind, med.ID, err)
		}
		handles = append(handles, h)
	}
	return handles, nil
}

// Unregister cancels the medication's live base handles. Absence is benign.
func (r *Registry) Unregister(ctx context.Context, medID string) error {
	l := r.lockFor(medID)
	l.Lock()
	defer l.Unlock()
	return r.cancelBase(ctx, medID)
}

// LiveBase reports the medication's live base handles, used by the
// missed-reminder check on resume.
func (r *Registry) LiveBase(ctx context.Context, medID string) ([]notify.Live, error) {
	live, err := r.notifier.ListLive(ctx)
	if err != nil {
		return nil, err
	}
	var out []notify.Live
	for _, lv := range live {
		if lv.Tag.MedicationID == medID && lv.Tag.Kind == model.KindBase {
			out = append(out, lv)
		}
	}
	return out, nil
}

func (r *Registry) cancelBase(ctx context.Context, medID string) error {
	stale, err := r.LiveBase(ctx, medID)
	if err != nil {
		return fmt.Errorf("query live handles for %s: %w", medID, err)
	}
	for _, lv := range stale {
		if err := r.notifier.Cancel(ctx, lv.Handle); err != nil {
			return fmt.Errorf("cancel stale handle for %s: %w", medID, err)
		}
	}
	return nil
}

func (r *Registry) install(ctx context.Context, spec trigger.Spec, p notify.Payload) (notify.Handle, error) {
	switch spec.Kind {
	case trigger.OneShot:
		return r.notifier.ScheduleOneShot(ctx, spec.FireAt, p)
	case trigger.Calendar:
		return r.notifier.ScheduleRepeating(ctx, notify.RepeatSpec{
			Hour:    spec.Hour,
			Minute:  spec.Minute,
			Weekday: spec.Weekday,
		}, p)
	case trigger.Interval:
		return r.notifier.ScheduleRepeating(ctx, notify.RepeatSpec{
			Every: spec.Every,
			First: spec.FireAt,
		}, p)
	}
	return "", fmt.Errorf("unknown trigger kind %q", spec.Kind)
}
