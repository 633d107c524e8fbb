package registry

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mkalvani/dosett/internal/model"
	"github.com/mkalvani/dosett/internal/notify/notifytest"
	"github.com/mkalvani/dosett/internal/trigger"
)

func testMed(id string) model.MedicationSchedule {
	return model.MedicationSchedule{
		ID:      id,
		Name:    "Metformin",
		Dosage:  "500mg",
		Hour:    8,
		Minute:  0,
		Rule:    model.RecurrenceRule{Freq: model.FreqDaily},
		Enabled: true,
	}
}

func dailyCalendarPlan() trigger.Plan {
	occ := time.Date(2025, 3, 12, 8, 0, 0, 0, time.UTC)
	return trigger.Build(occ, model.RecurrenceRule{Freq: model.FreqDaily}, trigger.CapCalendar)
}

func TestRegisterIdempotent(t *testing.T) {
	fake := notifytest.New()
	reg := New(fake)
	ctx := context.Background()
	med := testMed("metformin")

	for i := 0; i < 3; i++ {
		if _, err := reg.Register(ctx, med, dailyCalendarPlan()); err != nil {
			t.Fatalf("register %d: %v", i, err)
		}
	}
	if n := fake.LiveCount("metformin", "base"); n != 1 {
		t.Errorf("live base handles = %d, want exactly 1", n)
	}
}

func TestRegisterReplacesStaleHandle(t *testing.T) {
	fake := notifytest.New()
	reg := New(fake)
	ctx := context.Background()
	med := testMed("metformin")

	first, err := reg.Register(ctx, med, dailyCalendarPlan())
	if err != nil {
		t.Fatal(err)
	}
	second, err := reg.Register(ctx, med, dailyCalendarPlan())
	if err != nil {
		t.Fatal(err)
	}
	if first[0] == second[0] {
		t.Error("second registration reused the first handle")
	}
	live, _ := reg.LiveBase(ctx, "metformin")
	if len(live) != 1 || live[0].Handle != second[0] {
		t.Errorf("live = %v, want only the second handle %s", live, second[0])
	}
}

func TestRegisterIntervalPlanInstallsAllSpecs(t *testing.T) {
	fake := notifytest.New()
	reg := New(fake)
	ctx := context.Background()
	med := testMed("metformin")

	occ := time.Date(2025, 3, 12, 8, 0, 0, 0, time.UTC)
	plan := trigger.Build(occ, med.Rule, trigger.CapInterval)

	if _, err := reg.Register(ctx, med, plan); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.Register(ctx, med, plan); err != nil {
		t.Fatal(err)
	}
	// re-registration leaves exactly the latest plan's handles, nothing stale
	if n := fake.LiveCount("metformin", "base"); n != len(plan.Specs) {
		t.Errorf("live base handles = %d, want %d", n, len(plan.Specs))
	}
}

func TestRegisterRollsBackOnFailure(t *testing.T) {
	fake := notifytest.New()
	reg := New(fake)
	ctx := context.Background()
	med := testMed("metformin")

	fake.FailIDs["metformin"] = true
	if _, err := reg.Register(ctx, med, dailyCalendarPlan()); err == nil {
		t.Fatal("expected registration failure")
	}
	if n := fake.LiveCount("metformin", "base"); n != 0 {
		t.Errorf("live base handles after failed register = %d, want 0", n)
	}
}

func TestUnregisterAbsentIsBenign(t *testing.T) {
	reg := New(notifytest.New())
	if err := reg.Unregister(context.Background(), "never-registered"); err != nil {
		t.Errorf("unregister absent: %v", err)
	}
}

func TestSnoozeIndependence(t *testing.T) {
	fake := notifytest.New()
	reg := New(fake)
	ctx := context.Background()
	med := testMed("metformin")
	now := time.Date(2025, 3, 12, 8, 5, 0, 0, time.UTC)

	if _, err := reg.Register(ctx, med, dailyCalendarPlan()); err != nil {
		t.Fatal(err)
	}

	// two snoozes may be outstanding at once
	fireAt, _, err := reg.Snooze(ctx, med, now, 10)
	if err != nil {
		t.Fatal(err)
	}
	if want := now.Add(10 * time.Minute); !fireAt.Equal(want) {
		t.Errorf("fireAt = %v, want %v", fireAt, want)
	}
	if _, _, err := reg.Snooze(ctx, med, now, 20); err != nil {
		t.Fatal(err)
	}
	if n := fake.LiveCount("metformin", "snooze"); n != 2 {
		t.Fatalf("outstanding snoozes = %d, want 2", n)
	}

	// snoozing did not disturb the base handle
	if n := fake.LiveCount("metformin", "base"); n != 1 {
		t.Errorf("base handles after snooze = %d, want 1", n)
	}

	// re-registering the base does not cancel snoozes
	if _, err := reg.Register(ctx, med, dailyCalendarPlan()); err != nil {
		t.Fatal(err)
	}
	if n := fake.LiveCount("metformin", "snooze"); n != 2 {
		t.Errorf("snoozes after base re-register = %d, want 2", n)
	}

	// cancelling the base leaves snoozes live
	if err := reg.Unregister(ctx, med.ID); err != nil {
		t.Fatal(err)
	}
	if n := fake.LiveCount("metformin", "snooze"); n != 2 {
		t.Errorf("snoozes after base unregister = %d, want 2", n)
	}
}

func TestSnoozeRejectsNonPositiveMinutes(t *testing.T) {
	reg := New(notifytest.New())
	if _, _, err := reg.Snooze(context.Background(), testMed("m"), time.Now(), 0); err == nil {
		t.Error("expected error for zero minutes")
	}
}

func TestCancelSnoozes(t *testing.T) {
	fake := notifytest.New()
	reg := New(fake)
	ctx := context.Background()
	med := testMed("metformin")
	now := time.Now()

	if _, err := reg.Register(ctx, med, dailyCalendarPlan()); err != nil {
		t.Fatal(err)
	}
	if _, _, err := reg.Snooze(ctx, med, now, 10); err != nil {
		t.Fatal(err)
	}
	if err := reg.CancelSnoozes(ctx, med.ID); err != nil {
		t.Fatal(err)
	}
	if n := fake.LiveCount("metformin", "snooze"); n != 0 {
		t.Errorf("snoozes after cancel = %d, want 0", n)
	}
	if n := fake.LiveCount("metformin", "base"); n != 1 {
		t.Errorf("base handles after snooze cancel = %d, want 1", n)
	}
}

func TestConcurrentRegisterSameID(t *testing.T) {
	fake := notifytest.New()
	reg := New(fake)
	ctx := context.Background()
	med := testMed("metformin")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := reg.Register(ctx, med, dailyCalendarPlan()); err != nil {
				t.Errorf("concurrent register: %v", err)
			}
		}()
	}
	wg.Wait()

	if n := fake.LiveCount("metformin", "base"); n != 1 {
		t.Errorf("live base handles after 16 concurrent registers = %d, want 1", n)
	}
}
