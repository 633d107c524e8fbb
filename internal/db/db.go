package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaFS embed.FS

// DB wraps the sqlite handle with the medication and compliance queries.
type DB struct {
	*sql.DB
}

func appDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	base := filepath.Join(home, ".local", "share", "dosett")
	if err := os.MkdirAll(base, 0o755); err != nil {
		return "", err
	}
	return base, nil
}

// Open opens the database at the default location.
func Open() (*DB, error) {
	dir, err := appDataDir()
	if err != nil {
		return nil, err
	}
	return OpenPath(filepath.Join(dir, "dosett.db"))
}

// OpenPath opens and migrates the database at an explicit path.
func OpenPath(path string) (*DB, error) {
	dsn := fmt.Sprintf(
		"file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)",
		path,
	)

	sdb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := migrate(sdb); err != nil {
		_ = sdb.Close()
		return nil, err
	}

	if err := ensureScheduleColumns(sdb); err != nil {
		_ = sdb.Close()
		return nil, err
	}

	return &DB{DB: sdb}, nil
}

func migrate(db *sql.DB) error {
	b, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	if _, err := db.Exec(string(b)); err != nil {
		return errors.Join(fmt.Errorf("schema apply failed"), err)
	}
	return nil
}

// ensureScheduleColumns upgrades databases created before lead-time and
// enable/disable support existed. Safe to run on every open.
func ensureScheduleColumns(db *sql.DB) error {
	needLead := true
	needEnabled := true

	rows, err := db.Query(`PRAGMA table_info(medications)`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return err
		}
		switch strings.ToLower(name) {
		case "lead_minutes":
			needLead = false
		case "enabled":
			needEnabled = false
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if needLead {
		if _, err := tx.Exec(`ALTER TABLE medications ADD COLUMN lead_minutes INTEGER NOT NULL DEFAULT 0`); err != nil {
			return fmt.Errorf("add lead_minutes: %w", err)
		}
	}
	if needEnabled {
		if _, err := tx.Exec(`ALTER TABLE medications ADD COLUMN enabled INTEGER NOT NULL DEFAULT 1`); err != nil {
			return fmt.Errorf("add enabled: %w", err)
		}
	}
	if _, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_compliance_med ON compliance(medication_id)`); err != nil {
		return err
	}
	if _, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_compliance_status ON compliance(status)`); err != nil {
		return err
	}
	return tx.Commit()
}
