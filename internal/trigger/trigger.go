// Package trigger maps resolved occurrences onto the trigger shapes the
// notification layer can actually repeat.
package trigger

import (
	"fmt"
	"time"

	"github.com/mkalvani/dosett/internal/model"
)

// Capability is the platform's repeat support class.
type Capability string

const (
	// CapCalendar platforms repeat natively on calendar fields.
	CapCalendar Capability = "calendar"
	// CapInterval platforms only repeat on fixed durations.
	CapInterval Capability = "interval"
)

func ParseCapability(s string) (Capability, error) {
	switch Capability(s) {
	case CapCalendar, CapInterval:
		return Capability(s), nil
	}
	return "", fmt.Errorf("unknown notify capability %q", s)
}

// Kind is the shape of a single trigger.
type Kind string

const (
	OneShot  Kind = "one-shot"
	Calendar Kind = "calendar"
	Interval Kind = "interval"
)

// Spec describes one trigger for the notification layer.
type Spec struct {
	Kind    Kind
	FireAt  time.Time     // OneShot: the instant; Interval: the first fire
	Hour    int           // Calendar
	Minute  int           // Calendar
	Weekday *time.Weekday // Calendar, weekly rules only
	Every   time.Duration // Interval
}

// Plan is the set of triggers to install for one occurrence, plus an operator
// warning when the plan will not self-renew.
type Plan struct {
	Specs   []Spec
	Warning string
}

// Build applies the policy table. Monthly recurrence is never natively
// repeated: calendar platforms get a plain one-shot that the caller re-arms,
// and interval platforms additionally get a warning because nothing re-fires
// without the caller's sweep.
//
// Weekly calendar triggers repeat on the occurrence's own weekday, which is
// the day before the rule's weekday when a lead time crosses midnight.
func Build(occurrence time.Time, rule model.RecurrenceRule, capability Capability) Plan {
	switch rule.Freq {
	case model.FreqMonthly:
		p := Plan{Specs: []Spec{{Kind: OneShot, FireAt: occurrence}}}
		if capability == CapInterval {
			p.Warning = fmt.Sprintf(
				"monthly reminder on day %d will not repeat on its own; it is re-armed after each firing",
				rule.MonthDay,
			)
		}
		return p

	case model.FreqWeekly:
		if capability == CapCalendar {
			wd := occurrence.Weekday()
			return Plan{Specs: []Spec{{
				Kind:    Calendar,
				Hour:    occurrence.Hour(),
				Minute:  occurrence.Minute(),
				Weekday: &wd,
			}}}
		}
		return oneShotThenInterval(occurrence, 7*24*time.Hour)

	default: // daily
		if capability == CapCalendar {
			return Plan{Specs: []Spec{{
				Kind:   Calendar,
				Hour:   occurrence.Hour(),
				Minute: occurrence.Minute(),
			}}}
		}
		return oneShotThenInterval(occurrence, 24*time.Hour)
	}
}

func oneShotThenInterval(occurrence time.Time, every time.Duration) Plan {
	return Plan{Specs: []Spec{
		{Kind: OneShot, FireAt: occurrence},
		{Kind: Interval, FireAt: occurrence.Add(every), Every: every},
	}}
}
