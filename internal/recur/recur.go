// Package recur resolves abstract medication schedules into concrete instants.
package recur

import (
	"time"

	"github.com/mkalvani/dosett/internal/model"
)

// NextOccurrence returns the next instant at hour:minute consistent with the
// rule, strictly after now when today's candidate has already passed.
func NextOccurrence(now time.Time, hour, minute int, rule model.RecurrenceRule) time.Time {
	loc := now.Location()

	switch rule.Freq {
	case model.FreqWeekly:
		cand := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, loc)
		for cand.Weekday() != rule.Weekday || !now.Before(cand) {
			cand = cand.AddDate(0, 0, 1)
		}
		return cand

	case model.FreqMonthly:
		cand := monthCandidate(now.Year(), now.Month(), rule.MonthDay, hour, minute, loc)
		if !now.Before(cand) {
			next := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc).AddDate(0, 1, 0)
			cand = monthCandidate(next.Year(), next.Month(), rule.MonthDay, hour, minute, loc)
		}
		return cand

	default: // daily
		cand := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, loc)
		if !now.Before(cand) {
			cand = cand.AddDate(0, 0, 1)
		}
		return cand
	}
}

// monthCandidate places day-of-month in the given month, clamping to the last
// day when the month is shorter. Clamping is policy, not an error.
func monthCandidate(year int, month time.Month, day, hour, minute int, loc *time.Location) time.Time {
	if last := daysIn(year, month, loc); day > last {
		day = last
	}
	return time.Date(year, month, day, hour, minute, 0, 0, loc)
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	// day 0 of the next month is the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// LeadTime shifts hour:minute back by lead minutes, wrapping across midnight.
func LeadTime(hour, minute, lead int) (leadHour, leadMinute int) {
	total := hour*60 + minute - lead
	for total < 0 {
		total += 24 * 60
	}
	return (total / 60) % 24, total % 60
}
