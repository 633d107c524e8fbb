package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mkalvani/dosett/internal/model"
	"github.com/mkalvani/dosett/internal/notify"
)

// Snooze installs a one-shot reminder at now+minutes under a snooze tag with
// a unique suffix. It never touches the base handle, so any number of snoozes
// may be outstanding for the same medication and none of them blocks a
// concurrent re-registration of the base schedule.
func (r *Registry) Snooze(ctx context.Context, med model.MedicationSchedule, now time.Time, minutes int) (time.Time, notify.Handle, error) {
	if minutes <= 0 {
		return time.Time{}, "", fmt.Errorf("snooze minutes must be positive, got %d", minutes)
	}
	fireAt := now.Add(time.Duration(minutes) * time.Minute)
	payload := notify.SnoozePayload{
		MedicationID: med.ID,
		Name:         med.Name,
		Suffix:       uuid.NewString(),
	}
	h, err := r.notifier.ScheduleOneShot(ctx, fireAt, payload)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("install snooze for %s: %w", med.ID, err)
	}
	return fireAt, h, nil
}

// CancelSnoozes cancels every outstanding snooze for the medication. Used
// when a dose is recorded so stale snoozes do not fire afterwards.
func (r *Registry) CancelSnoozes(ctx context.Context, medID string) error {
	live, err := r.notifier.ListLive(ctx)
	if err != nil {
		return err
	}
	for _, lv := range live {
		if lv.Tag.MedicationID == medID && lv.Tag.Kind == model.KindSnooze {
			if err := r.notifier.Cancel(ctx, lv.Handle); err != nil {
				return err
			}
		}
	}
	return nil
}
