package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mkalvani/dosett/internal/model"
)

// ErrNotFound is returned when a medication id has no row.
var ErrNotFound = errors.New("medication not found")

// SaveMedication inserts or updates a schedule. Every save replaces the rule
// columns wholesale; rules are values, not mutated in place.
func (d *DB) SaveMedication(m model.MedicationSchedule) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := d.Exec(`
		INSERT INTO medications (id, name, dosage, hour, minute, freq, weekday, month_day, lead_minutes, enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			dosage = excluded.dosage,
			hour = excluded.hour,
			minute = excluded.minute,
			freq = excluded.freq,
			weekday = excluded.weekday,
			month_day = excluded.month_day,
			lead_minutes = excluded.lead_minutes,
			enabled = excluded.enabled,
			updated_at = excluded.updated_at`,
		m.ID, m.Name, m.Dosage, m.Hour, m.Minute,
		string(m.Rule.Freq), int(m.Rule.Weekday), m.Rule.MonthDay,
		m.LeadMinutes, boolToInt(m.Enabled), now, now,
	)
	if err != nil {
		return fmt.Errorf("save medication %s: %w", m.ID, err)
	}
	return nil
}

// GetMedication loads one schedule by id.
func (d *DB) GetMedication(id string) (model.MedicationSchedule, error) {
	row := d.QueryRow(`
		SELECT id, name, dosage, hour, minute, freq, weekday, month_day, lead_minutes, enabled, created_at, updated_at
		FROM medications WHERE id = ?`, id)
	m, err := scanMedication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.MedicationSchedule{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return m, err
}

// ListMedications returns schedules, optionally only enabled ones.
func (d *DB) ListMedications(onlyEnabled bool) ([]model.MedicationSchedule, error) {
	q := `SELECT id, name, dosage, hour, minute, freq, weekday, month_day, lead_minutes, enabled, created_at, updated_at
		FROM medications`
	if onlyEnabled {
		q += ` WHERE enabled = 1`
	}
	q += ` ORDER BY hour, minute, id`

	rows, err := d.Query(q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MedicationSchedule
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// SetEnabled flips a medication's enabled flag. Removal is a disable, never a
// hard delete, since live notifications may still reference the row.
func (d *DB) SetEnabled(id string, enabled bool) error {
	res, err := d.Exec(`UPDATE medications SET enabled = ?, updated_at = ? WHERE id = ?`,
		boolToInt(enabled), time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMedication(r rowScanner) (model.MedicationSchedule, error) {
	var m model.MedicationSchedule
	var freq string
	var weekday, monthDay, enabled int
	var created, updated string
	err := r.Scan(&m.ID, &m.Name, &m.Dosage, &m.Hour, &m.Minute,
		&freq, &weekday, &monthDay, &m.LeadMinutes, &enabled, &created, &updated)
	if err != nil {
		return model.MedicationSchedule{}, err
	}
	m.Rule = model.RecurrenceRule{
		Freq:     model.Frequency(freq),
		Weekday:  time.Weekday(weekday),
		MonthDay: monthDay,
	}
	m.Enabled = enabled != 0
	m.CreatedAt, _ = time.Parse(time.RFC3339, created)
	m.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
	return m, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
