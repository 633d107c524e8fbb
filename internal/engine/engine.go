// Package engine exposes the reminder scheduling operations consumed by the
// CLI and the background daemon.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mkalvani/dosett/internal/config"
	"github.com/mkalvani/dosett/internal/model"
	"github.com/mkalvani/dosett/internal/notify"
	"github.com/mkalvani/dosett/internal/recur"
	"github.com/mkalvani/dosett/internal/registry"
	"github.com/mkalvani/dosett/internal/trigger"
)

// Store is the persistence consumed by the engine. *db.DB satisfies it; tests
// substitute an in-memory database.
type Store interface {
	SaveMedication(m model.MedicationSchedule) error
	GetMedication(id string) (model.MedicationSchedule, error)
	ListMedications(onlyEnabled bool) ([]model.MedicationSchedule, error)
	SetEnabled(id string, enabled bool) error
	EnsurePending(medID string, scheduledAt time.Time) error
	LatestCompliance(medID string) (*model.ComplianceRecord, error)
	MarkStatus(medID string, status model.DoseStatus, actionAt time.Time) error
	ResetPendingBefore(cutoff time.Time) (int64, error)
	CountPending() (int, error)
}

// Engine wires resolver, planner, registry and store together.
type Engine struct {
	store      Store
	notifier   notify.Notifier
	reg        *registry.Registry
	cfg        config.Config
	capability trigger.Capability
	now        func() time.Time
	log        *slog.Logger
}

func New(store Store, notifier notify.Notifier, cfg config.Config, log *slog.Logger) (*Engine, error) {
	capability, err := trigger.ParseCapability(cfg.Notify.Capability)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	loc := cfg.Location()
	return &Engine{
		store:      store,
		notifier:   notifier,
		reg:        registry.New(notifier),
		cfg:        cfg,
		capability: capability,
		now:        func() time.Time { return time.Now().In(loc) },
		log:        log,
	}, nil
}

// SetClock replaces the time source. Test hook.
func (e *Engine) SetClock(now func() time.Time) { e.now = now }

// RegisterOrUpdate persists the schedule and re-arms exactly one base
// reminder for it, cancelling any previous one first. Returns the next fire
// instant (lead-adjusted) and an operator warning when the plan will not
// self-renew.
func (e *Engine) RegisterOrUpdate(ctx context.Context, med model.MedicationSchedule) (time.Time, string, error) {
	if err := med.Validate(); err != nil {
		return time.Time{}, "", err
	}
	if err := e.store.SaveMedication(med); err != nil {
		return time.Time{}, "", err
	}
	if !med.Enabled {
		return time.Time{}, "", e.reg.Unregister(ctx, med.ID)
	}

	now := e.now()
	doseAt := recur.NextOccurrence(now, med.Hour, med.Minute, med.Rule)
	// the reminder leads the dose by a fixed offset, so it may land on the
	// day (or month) before the rule's own day
	fireAt := doseAt.Add(-time.Duration(med.LeadMinutes) * time.Minute)

	plan := trigger.Build(fireAt, med.Rule, e.capability)
	if _, err := e.reg.Register(ctx, med, plan); err != nil {
		return time.Time{}, "", fmt.Errorf("%w: %v", ErrSchedulingFailed, err)
	}
	if err := e.store.EnsurePending(med.ID, doseAt); err != nil {
		// the reminder is armed; a missing pending row only degrades the
		// missed check, so log and keep going
		e.log.Warn("record pending occurrence", "medication", med.ID, "err", err)
	}
	return fireAt, plan.Warning, nil
}

// Cancel tears down the base reminder and disables the medication.
// Outstanding snoozes are left to expire on their own.
func (e *Engine) Cancel(ctx context.Context, medID string) error {
	if err := e.reg.Unregister(ctx, medID); err != nil {
		return err
	}
	return e.store.SetEnabled(medID, false)
}

// Snooze records the deferral and derives a one-shot occurrence offset from
// now, independent of the base schedule. minutes <= 0 uses the configured
// default.
func (e *Engine) Snooze(ctx context.Context, medID string, minutes int) (time.Time, error) {
	med, err := e.store.GetMedication(medID)
	if err != nil {
		return time.Time{}, err
	}
	if minutes <= 0 {
		minutes = e.cfg.Reminder.SnoozeMinutes
	}
	fireAt, _, err := e.reg.Snooze(ctx, med, e.now(), minutes)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrSchedulingFailed, err)
	}
	if err := e.store.MarkStatus(medID, model.StatusSnoozed, e.now()); err != nil {
		e.log.Warn("record snooze", "medication", medID, "err", err)
	}
	return fireAt, nil
}

// RecordDose resolves the current occurrence with a terminal status and
// cancels any outstanding snoozes for the medication.
func (e *Engine) RecordDose(ctx context.Context, medID string, status model.DoseStatus) error {
	switch status {
	case model.StatusTaken, model.StatusSkipped, model.StatusLate:
	default:
		return fmt.Errorf("status %q is not a dose action", status)
	}
	if _, err := e.store.GetMedication(medID); err != nil {
		return err
	}
	if err := e.store.MarkStatus(medID, status, e.now()); err != nil {
		return err
	}
	if err := e.reg.CancelSnoozes(ctx, medID); err != nil {
		e.log.Warn("cancel outstanding snoozes", "medication", medID, "err", err)
	}
	return nil
}

// CheckMissedOnResume returns a past-due pending occurrence, or nil. An
// occurrence whose base handle is gone is assumed resolved elsewhere and not
// surfaced, which guards against duplicate missed prompts.
func (e *Engine) CheckMissedOnResume(ctx context.Context) (*model.ReminderOccurrence, error) {
	meds, err := e.store.ListMedications(true)
	if err != nil {
		return nil, err
	}
	now := e.now()
	for _, med := range meds {
		rec, err := e.store.LatestCompliance(med.ID)
		if err != nil {
			return nil, err
		}
		if rec == nil || rec.Status != model.StatusPending || !rec.ScheduledAt.Before(now) {
			continue
		}
		live, err := e.reg.LiveBase(ctx, med.ID)
		if err != nil {
			return nil, err
		}
		if len(live) == 0 {
			continue
		}
		return &model.ReminderOccurrence{
			MedicationID: med.ID,
			At:           rec.ScheduledAt,
			Kind:         model.KindBase,
		}, nil
	}
	return nil, nil
}

// ScheduleIssue is a per-medication scheduling failure from a batch pass.
type ScheduleIssue struct {
	MedicationID string
	Err          error
}

// ScheduleAll re-arms every enabled medication. One medication's failure
// never prevents the others from being scheduled.
func (e *Engine) ScheduleAll(ctx context.Context) (int, []ScheduleIssue) {
	meds, err := e.store.ListMedications(true)
	if err != nil {
		return 0, []ScheduleIssue{{Err: err}}
	}
	var scheduled int
	var issues []ScheduleIssue
	for _, med := range meds {
		if _, warning, err := e.RegisterOrUpdate(ctx, med); err != nil {
			e.log.Warn("schedule medication", "medication", med.ID, "err", err)
			issues = append(issues, ScheduleIssue{MedicationID: med.ID, Err: err})
		} else {
			if warning != "" {
				e.log.Warn(warning, "medication", med.ID)
			}
			scheduled++
		}
	}
	return scheduled, issues
}

// RearmExpiredOneShots re-registers enabled medications whose base handle has
// fired and expired. This is the caller-side renewal for monthly schedules,
// which are never natively repeated.
func (e *Engine) RearmExpiredOneShots(ctx context.Context) error {
	meds, err := e.store.ListMedications(true)
	if err != nil {
		return err
	}
	for _, med := range meds {
		live, err := e.reg.LiveBase(ctx, med.ID)
		if err != nil {
			return err
		}
		if len(live) > 0 {
			continue
		}
		if _, _, err := e.RegisterOrUpdate(ctx, med); err != nil {
			e.log.Warn("re-arm medication", "medication", med.ID, "err", err)
		}
	}
	return nil
}

// RunDailyReset marks every pending dose scheduled before today's local
// midnight as missed. Safe to invoke zero, one or many times per boundary.
func (e *Engine) RunDailyReset(ctx context.Context) error {
	now := e.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	n, err := e.store.ResetPendingBefore(midnight)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrResetFailed, err)
	}
	if n > 0 {
		e.log.Info("daily reset", "reset", n)
	}
	return nil
}

// RequestPermission surfaces denial once at startup as a non-fatal warning;
// scheduling proceeds best-effort either way.
func (e *Engine) RequestPermission(ctx context.Context) error {
	granted, err := e.notifier.RequestPermission(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}
	if !granted {
		return ErrPermissionDenied
	}
	return nil
}

// NotifyDailySummary posts a recap notification when unresolved doses exist.
// Called once at daemon start; silence when nothing is pending.
func (e *Engine) NotifyDailySummary(ctx context.Context) error {
	n, err := e.store.CountPending()
	if err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	_, err = e.notifier.ScheduleOneShot(ctx, e.now().Add(5*time.Second), notify.SummaryPayload{Pending: n})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchedulingFailed, err)
	}
	return nil
}

// NextDose resolves the next dose instant (not lead-adjusted) for display.
func (e *Engine) NextDose(med model.MedicationSchedule) time.Time {
	return recur.NextOccurrence(e.now(), med.Hour, med.Minute, med.Rule)
}
