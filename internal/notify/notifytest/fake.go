// Package notifytest provides an in-memory Notifier for tests.
package notifytest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mkalvani/dosett/internal/notify"
)

// Scheduled records one schedule call made against the fake.
type Scheduled struct {
	Handle  notify.Handle
	FireAt  time.Time
	Repeat  *notify.RepeatSpec
	Payload notify.Payload
}

// Fake implements notify.Notifier entirely in memory.
type Fake struct {
	mu      sync.Mutex
	seq     int
	live    map[notify.Handle]notify.Tag
	history []Scheduled

	// Denied makes RequestPermission report no grant.
	Denied bool
	// FailAll makes every schedule call fail.
	FailAll bool
	// FailIDs makes schedule calls fail for specific medication ids.
	FailIDs map[string]bool
}

func New() *Fake {
	return &Fake{
		live:    make(map[notify.Handle]notify.Tag),
		FailIDs: make(map[string]bool),
	}
}

func (f *Fake) RequestPermission(ctx context.Context) (bool, error) {
	return !f.Denied, nil
}

func (f *Fake) ScheduleOneShot(ctx context.Context, fireAt time.Time, p notify.Payload) (notify.Handle, error) {
	return f.schedule(Scheduled{FireAt: fireAt, Payload: p})
}

func (f *Fake) ScheduleRepeating(ctx context.Context, spec notify.RepeatSpec, p notify.Payload) (notify.Handle, error) {
	sp := spec
	return f.schedule(Scheduled{Repeat: &sp, Payload: p})
}

func (f *Fake) schedule(s Scheduled) (notify.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailAll {
		return "", errors.New("notifier unavailable")
	}
	tag := s.Payload.Tag()
	if f.FailIDs[tag.MedicationID] {
		return "", fmt.Errorf("notifier rejected %s", tag.MedicationID)
	}
	f.seq++
	h := notify.Handle(fmt.Sprintf("h-%d", f.seq))
	s.Handle = h
	f.live[h] = tag
	f.history = append(f.history, s)
	return h, nil
}

func (f *Fake) Cancel(ctx context.Context, h notify.Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.live, h)
	return nil
}

func (f *Fake) ListLive(ctx context.Context) ([]notify.Live, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]notify.Live, 0, len(f.live))
	for h, tag := range f.live {
		out = append(out, notify.Live{Handle: h, Tag: tag})
	}
	return out, nil
}

// Fire simulates the platform firing and expiring a handle.
func (f *Fake) Fire(h notify.Handle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.live, h)
}

// LiveCount reports live handles for a medication id and kind.
func (f *Fake) LiveCount(medID, kind string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, tag := range f.live {
		if tag.MedicationID == medID && string(tag.Kind) == kind {
			n++
		}
	}
	return n
}

// History returns all schedule calls in order.
func (f *Fake) History() []Scheduled {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Scheduled(nil), f.history...)
}
