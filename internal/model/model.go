package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Frequency is the repeat class of a recurrence rule.
type Frequency string

const (
	FreqDaily   Frequency = "daily"
	FreqWeekly  Frequency = "weekly"
	FreqMonthly Frequency = "monthly"
)

// RecurrenceRule describes when a medication repeats. Values are immutable;
// editing a schedule replaces the rule rather than mutating it.
type RecurrenceRule struct {
	Freq     Frequency
	Weekday  time.Weekday // weekly only
	MonthDay int          // monthly only, 1..31
}

// ParseRule parses "daily", "weekly:Mon".."weekly:Sun" or "monthly:1".."monthly:31".
func ParseRule(s string) (RecurrenceRule, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch {
	case s == string(FreqDaily):
		return RecurrenceRule{Freq: FreqDaily}, nil
	case strings.HasPrefix(s, "weekly:"):
		day := strings.TrimPrefix(s, "weekly:")
		wd, ok := weekdayByName(day)
		if !ok {
			return RecurrenceRule{}, fmt.Errorf("%w: unknown weekday %q", ErrInvalidRule, day)
		}
		return RecurrenceRule{Freq: FreqWeekly, Weekday: wd}, nil
	case strings.HasPrefix(s, "monthly:"):
		n, err := strconv.Atoi(strings.TrimPrefix(s, "monthly:"))
		if err != nil || n < 1 || n > 31 {
			return RecurrenceRule{}, fmt.Errorf("%w: day of month must be 1..31", ErrInvalidRule)
		}
		return RecurrenceRule{Freq: FreqMonthly, MonthDay: n}, nil
	}
	return RecurrenceRule{}, fmt.Errorf("%w: %q", ErrInvalidRule, s)
}

func weekdayByName(s string) (time.Weekday, bool) {
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		name := strings.ToLower(wd.String())
		if s == name || s == name[:3] {
			return wd, true
		}
	}
	return 0, false
}

func (r RecurrenceRule) String() string {
	switch r.Freq {
	case FreqWeekly:
		return fmt.Sprintf("weekly:%s", r.Weekday.String()[:3])
	case FreqMonthly:
		return fmt.Sprintf("monthly:%d", r.MonthDay)
	default:
		return string(FreqDaily)
	}
}

// MedicationSchedule is the persisted schedule for one medication.
type MedicationSchedule struct {
	ID          string
	Name        string
	Dosage      string
	Hour        int
	Minute      int
	Rule        RecurrenceRule
	LeadMinutes int
	Enabled     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ParseTimeOfDay validates "HH:MM" strictly. Malformed input and out-of-range
// values are distinct failures; neither is ever coerced.
func ParseTimeOfDay(s string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTimeValue, s)
	}
	return h, m, nil
}

// Validate checks a schedule before it reaches storage or the notifier.
func (s MedicationSchedule) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("medication id is required")
	}
	if strings.Contains(s.ID, "|") {
		return fmt.Errorf("medication id must not contain '|'")
	}
	if s.Hour < 0 || s.Hour > 23 || s.Minute < 0 || s.Minute > 59 {
		return fmt.Errorf("%w: %02d:%02d", ErrInvalidTimeValue, s.Hour, s.Minute)
	}
	if s.LeadMinutes < 0 {
		return fmt.Errorf("lead minutes must be >= 0")
	}
	switch s.Rule.Freq {
	case FreqDaily:
	case FreqWeekly:
		if s.Rule.Weekday < time.Sunday || s.Rule.Weekday > time.Saturday {
			return fmt.Errorf("%w: weekday %d", ErrInvalidRule, s.Rule.Weekday)
		}
	case FreqMonthly:
		if s.Rule.MonthDay < 1 || s.Rule.MonthDay > 31 {
			return fmt.Errorf("%w: day of month %d", ErrInvalidRule, s.Rule.MonthDay)
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidRule, s.Rule.Freq)
	}
	return nil
}

// DoseStatus is the per-occurrence compliance outcome.
type DoseStatus string

const (
	StatusPending DoseStatus = "pending"
	StatusTaken   DoseStatus = "taken"
	StatusMissed  DoseStatus = "missed"
	StatusSnoozed DoseStatus = "snoozed"
	StatusSkipped DoseStatus = "skipped"
	StatusLate    DoseStatus = "late"
)

// ComplianceRecord is one dose outcome, owned by the store.
type ComplianceRecord struct {
	ID           int64
	MedicationID string
	ScheduledAt  time.Time
	ActionAt     *time.Time
	Status       DoseStatus
}

// OccurrenceKind distinguishes base reminders from derived snoozes.
type OccurrenceKind string

const (
	KindBase    OccurrenceKind = "base"
	KindSnooze  OccurrenceKind = "snooze"
	KindSummary OccurrenceKind = "summary"
)

// ReminderOccurrence is a resolved fire instant for one schedule.
type ReminderOccurrence struct {
	MedicationID string
	At           time.Time
	Kind         OccurrenceKind
}
