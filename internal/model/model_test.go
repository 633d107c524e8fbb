package model

import (
	"errors"
	"testing"
	"time"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		hour    int
		minute  int
		wantErr error
	}{
		{in: "08:30", hour: 8, minute: 30},
		{in: "0:00", hour: 0, minute: 0},
		{in: "23:59", hour: 23, minute: 59},
		{in: " 9:05 ", hour: 9, minute: 5},
		{in: "830", wantErr: ErrInvalidTimeFormat},
		{in: "8:5:0", wantErr: ErrInvalidTimeFormat},
		{in: "ab:cd", wantErr: ErrInvalidTimeFormat},
		{in: "", wantErr: ErrInvalidTimeFormat},
		{in: "24:00", wantErr: ErrInvalidTimeValue},
		{in: "12:60", wantErr: ErrInvalidTimeValue},
		{in: "-1:30", wantErr: ErrInvalidTimeValue},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			h, m, err := ParseTimeOfDay(tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if h != tt.hour || m != tt.minute {
				t.Errorf("got %02d:%02d, want %02d:%02d", h, m, tt.hour, tt.minute)
			}
		})
	}
}

func TestParseRule(t *testing.T) {
	tests := []struct {
		in   string
		want RecurrenceRule
		bad  bool
	}{
		{in: "daily", want: RecurrenceRule{Freq: FreqDaily}},
		{in: " Daily ", want: RecurrenceRule{Freq: FreqDaily}},
		{in: "weekly:mon", want: RecurrenceRule{Freq: FreqWeekly, Weekday: time.Monday}},
		{in: "weekly:monday", want: RecurrenceRule{Freq: FreqWeekly, Weekday: time.Monday}},
		{in: "weekly:Sun", want: RecurrenceRule{Freq: FreqWeekly, Weekday: time.Sunday}},
		{in: "monthly:1", want: RecurrenceRule{Freq: FreqMonthly, MonthDay: 1}},
		{in: "monthly:31", want: RecurrenceRule{Freq: FreqMonthly, MonthDay: 31}},
		{in: "monthly:0", bad: true},
		{in: "monthly:32", bad: true},
		{in: "monthly:x", bad: true},
		{in: "weekly:funday", bad: true},
		{in: "hourly", bad: true},
		{in: "", bad: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRule(tt.in)
			if tt.bad {
				if !errors.Is(err, ErrInvalidRule) {
					t.Fatalf("err = %v, want ErrInvalidRule", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRuleStringRoundTrip(t *testing.T) {
	rules := []RecurrenceRule{
		{Freq: FreqDaily},
		{Freq: FreqWeekly, Weekday: time.Thursday},
		{Freq: FreqMonthly, MonthDay: 15},
	}
	for _, r := range rules {
		back, err := ParseRule(r.String())
		if err != nil {
			t.Fatalf("%s: %v", r, err)
		}
		if back != r {
			t.Errorf("%s parsed back to %+v", r, back)
		}
	}
}

func TestValidate(t *testing.T) {
	valid := MedicationSchedule{
		ID:   "metformin",
		Name: "Metformin",
		Hour: 8, Minute: 0,
		Rule: RecurrenceRule{Freq: FreqDaily},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid schedule rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*MedicationSchedule)
	}{
		{"empty id", func(m *MedicationSchedule) { m.ID = "  " }},
		{"pipe in id", func(m *MedicationSchedule) { m.ID = "a|b" }},
		{"hour out of range", func(m *MedicationSchedule) { m.Hour = 24 }},
		{"minute out of range", func(m *MedicationSchedule) { m.Minute = 60 }},
		{"negative lead", func(m *MedicationSchedule) { m.LeadMinutes = -1 }},
		{"weekly bad weekday", func(m *MedicationSchedule) {
			m.Rule = RecurrenceRule{Freq: FreqWeekly, Weekday: time.Weekday(9)}
		}},
		{"monthly day zero", func(m *MedicationSchedule) {
			m.Rule = RecurrenceRule{Freq: FreqMonthly}
		}},
		{"unknown frequency", func(m *MedicationSchedule) {
			m.Rule = RecurrenceRule{Freq: "hourly"}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := valid
			tt.mutate(&m)
			if err := m.Validate(); err == nil {
				t.Error("expected validation failure")
			}
		})
	}
}
