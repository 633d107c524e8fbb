package notify

import (
	"context"
	"sync"
	"time"

	"github.com/gen2brain/beeep"
	"github.com/google/uuid"
)

// Desktop schedules notifications with in-process timers and delivers them
// through the system notification daemon via beeep. Desktop notification
// daemons have no native calendar-repeat support, so this is an
// interval-only platform; calendar specs are still honored by re-arming the
// timer after each firing.
type Desktop struct {
	mu   sync.Mutex
	live map[Handle]*armed
	now  func() time.Time
}

type armed struct {
	tag     Tag
	payload Payload
	timer   *time.Timer
	repeat  *RepeatSpec // nil for one-shots
}

func NewDesktop() *Desktop {
	return &Desktop{
		live: make(map[Handle]*armed),
		now:  time.Now,
	}
}

// RequestPermission is a no-op on desktop; the notification daemon accepts
// messages without a grant step.
func (d *Desktop) RequestPermission(ctx context.Context) (bool, error) {
	return true, nil
}

func (d *Desktop) ScheduleOneShot(ctx context.Context, fireAt time.Time, p Payload) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	h := Handle(uuid.NewString())
	d.mu.Lock()
	defer d.mu.Unlock()
	a := &armed{tag: p.Tag(), payload: p}
	a.timer = time.AfterFunc(time.Until(fireAt), func() { d.fire(h) })
	d.live[h] = a
	return h, nil
}

func (d *Desktop) ScheduleRepeating(ctx context.Context, spec RepeatSpec, p Payload) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	h := Handle(uuid.NewString())
	sp := spec
	d.mu.Lock()
	defer d.mu.Unlock()
	a := &armed{tag: p.Tag(), payload: p, repeat: &sp}
	a.timer = time.AfterFunc(time.Until(d.nextFire(&sp, d.now())), func() { d.fire(h) })
	d.live[h] = a
	return h, nil
}

func (d *Desktop) Cancel(ctx context.Context, h Handle) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if a, ok := d.live[h]; ok {
		a.timer.Stop()
		delete(d.live, h)
	}
	// absent handles are not an error; the notification may already have fired
	return nil
}

func (d *Desktop) ListLive(ctx context.Context) ([]Live, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Live, 0, len(d.live))
	for h, a := range d.live {
		out = append(out, Live{Handle: h, Tag: a.tag})
	}
	return out, nil
}

// fire delivers the notification and either expires the handle (one-shot) or
// re-arms it (repeating).
func (d *Desktop) fire(h Handle) {
	d.mu.Lock()
	a, ok := d.live[h]
	if !ok {
		d.mu.Unlock()
		return
	}
	if a.repeat == nil {
		delete(d.live, h)
	} else {
		a.timer = time.AfterFunc(time.Until(d.nextFire(a.repeat, d.now())), func() { d.fire(h) })
	}
	payload := a.payload
	d.mu.Unlock()

	title, message := render(payload)
	_ = beeep.Notify(title, message, "")
}

// nextFire computes the next fire instant for a repeating spec.
func (d *Desktop) nextFire(spec *RepeatSpec, now time.Time) time.Time {
	if spec.Every > 0 {
		next := spec.First
		for !next.After(now) {
			next = next.Add(spec.Every)
		}
		return next
	}
	cand := time.Date(now.Year(), now.Month(), now.Day(), spec.Hour, spec.Minute, 0, 0, now.Location())
	for !cand.After(now) || (spec.Weekday != nil && cand.Weekday() != *spec.Weekday) {
		cand = cand.AddDate(0, 0, 1)
	}
	return cand
}
