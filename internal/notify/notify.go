// Package notify is the boundary to the platform notification layer. The
// engine talks to the Notifier interface only; Desktop is the concrete
// implementation for local use.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mkalvani/dosett/internal/model"
)

// Handle is the opaque identifier for a live scheduled notification.
type Handle string

// Tag identifies the logical reminder a handle belongs to.
type Tag struct {
	MedicationID string
	Kind         model.OccurrenceKind
	Suffix       string // disambiguator, uuid for snoozes, empty for base
}

func (t Tag) Encode() string {
	return t.MedicationID + "|" + string(t.Kind) + "|" + t.Suffix
}

func ParseTag(s string) (Tag, error) {
	parts := strings.SplitN(s, "|", 3)
	if len(parts) != 3 {
		return Tag{}, fmt.Errorf("malformed tag %q", s)
	}
	return Tag{MedicationID: parts[0], Kind: model.OccurrenceKind(parts[1]), Suffix: parts[2]}, nil
}

// Live pairs a handle with the tag it was installed under.
type Live struct {
	Handle Handle
	Tag    Tag
}

// Payload is the closed set of notification contents. Each variant knows its
// own tag; the point of firing decodes the set exhaustively.
type Payload interface {
	Tag() Tag
}

// BasePayload is a recurring dose reminder.
type BasePayload struct {
	MedicationID string
	Name         string
	Dosage       string
}

func (p BasePayload) Tag() Tag {
	return Tag{MedicationID: p.MedicationID, Kind: model.KindBase}
}

// SnoozePayload is a derived one-shot offset from a snoozed reminder.
type SnoozePayload struct {
	MedicationID string
	Name         string
	Suffix       string
}

func (p SnoozePayload) Tag() Tag {
	return Tag{MedicationID: p.MedicationID, Kind: model.KindSnooze, Suffix: p.Suffix}
}

// SummaryPayload is the day-boundary summary prompt.
type SummaryPayload struct {
	Pending int
}

func (p SummaryPayload) Tag() Tag {
	return Tag{MedicationID: "daily", Kind: model.KindSummary}
}

// RepeatSpec describes a repeating trigger: either calendar fields or a fixed
// interval anchored at First.
type RepeatSpec struct {
	Hour    int
	Minute  int
	Weekday *time.Weekday
	Every   time.Duration // zero means calendar-field repetition
	First   time.Time     // interval repetition only
}

// Notifier is the capability consumed from the platform. All calls may
// suspend; callers must not assume synchronous completion.
type Notifier interface {
	RequestPermission(ctx context.Context) (bool, error)
	ScheduleOneShot(ctx context.Context, fireAt time.Time, p Payload) (Handle, error)
	ScheduleRepeating(ctx context.Context, spec RepeatSpec, p Payload) (Handle, error)
	Cancel(ctx context.Context, h Handle) error
	ListLive(ctx context.Context) ([]Live, error)
}

func render(p Payload) (title, message string) {
	switch v := p.(type) {
	case BasePayload:
		title = "Medication reminder"
		message = fmt.Sprintf("Time to take %s", v.Name)
		if v.Dosage != "" {
			message += " (" + v.Dosage + ")"
		}
	case SnoozePayload:
		title = "Snoozed reminder"
		message = fmt.Sprintf("Reminder for %s", v.Name)
	case SummaryPayload:
		title = "Daily dose summary"
		message = fmt.Sprintf("You have %d doses pending today", v.Pending)
	default:
		title = "Reminder"
		message = "Scheduled reminder"
	}
	return title, message
}
