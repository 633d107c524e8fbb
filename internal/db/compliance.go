package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mkalvani/dosett/internal/model"
)

// EnsurePending records a pending compliance row for an upcoming occurrence.
// Re-registration of the same occurrence is a no-op thanks to the unique
// (medication_id, scheduled_at) constraint.
func (d *DB) EnsurePending(medID string, scheduledAt time.Time) error {
	_, err := d.Exec(`
		INSERT INTO compliance (medication_id, scheduled_at, status)
		VALUES (?, ?, ?)
		ON CONFLICT(medication_id, scheduled_at) DO NOTHING`,
		medID, scheduledAt.UTC().Format(time.RFC3339), string(model.StatusPending))
	if err != nil {
		return fmt.Errorf("ensure pending for %s: %w", medID, err)
	}
	return nil
}

// LatestCompliance returns the most recent record for a medication, or nil
// when none exists.
func (d *DB) LatestCompliance(medID string) (*model.ComplianceRecord, error) {
	row := d.QueryRow(`
		SELECT id, medication_id, scheduled_at, action_at, status
		FROM compliance WHERE medication_id = ?
		ORDER BY scheduled_at DESC LIMIT 1`, medID)
	rec, err := scanCompliance(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// MarkStatus resolves the most recent unresolved record for a medication.
// Snoozed records are still unresolved; taking a dose after snoozing it must
// land on the same row. When no unresolved record exists, a resolved record
// is appended so the action is still visible in history.
func (d *DB) MarkStatus(medID string, status model.DoseStatus, actionAt time.Time) error {
	at := actionAt.UTC().Format(time.RFC3339)
	res, err := d.Exec(`
		UPDATE compliance SET status = ?, action_at = ?
		WHERE id = (
			SELECT id FROM compliance
			WHERE medication_id = ? AND status IN (?, ?)
			ORDER BY scheduled_at DESC LIMIT 1
		)`, string(status), at, medID,
		string(model.StatusPending), string(model.StatusSnoozed))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	_, err = d.Exec(`
		INSERT INTO compliance (medication_id, scheduled_at, action_at, status)
		VALUES (?, ?, ?, ?)`,
		medID, at, at, string(status))
	return err
}

// ResetPendingBefore is the bulk day-boundary reset: every record still
// pending with a scheduled time before the cutoff becomes missed. Resolved
// records are never touched, so the reset is safe to run any number of times.
func (d *DB) ResetPendingBefore(cutoff time.Time) (int64, error) {
	res, err := d.Exec(`
		UPDATE compliance SET status = ?
		WHERE status = ? AND scheduled_at < ?`,
		string(model.StatusMissed), string(model.StatusPending),
		cutoff.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountPending reports how many unresolved doses exist, for the daily
// summary prompt.
func (d *DB) CountPending() (int, error) {
	var n int
	err := d.QueryRow(`SELECT count(1) FROM compliance WHERE status = ?`,
		string(model.StatusPending)).Scan(&n)
	return n, err
}

func scanCompliance(r rowScanner) (model.ComplianceRecord, error) {
	var rec model.ComplianceRecord
	var scheduled string
	var action sql.NullString
	var status string
	if err := r.Scan(&rec.ID, &rec.MedicationID, &scheduled, &action, &status); err != nil {
		return model.ComplianceRecord{}, err
	}
	rec.ScheduledAt, _ = time.Parse(time.RFC3339, scheduled)
	if action.Valid {
		if t, err := time.Parse(time.RFC3339, action.String); err == nil {
			rec.ActionAt = &t
		}
	}
	rec.Status = model.DoseStatus(status)
	return rec, nil
}
