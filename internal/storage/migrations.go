package storage

import (
	"database/sql"
	"fmt"
)

// schemaSteps upgrades the database one version at a time. Step i moves the
// schema from version i to i+1; the current version lives in user_version.
var schemaSteps = []string{
	// One row per day; events hold the same JSON array as records.json.
	`CREATE TABLE IF NOT EXISTS day_records (
		date       TEXT PRIMARY KEY,
		start_time TEXT NOT NULL DEFAULT '08:00',
		events     TEXT NOT NULL DEFAULT '[]',
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

// upgradeSchema switches to WAL and applies the steps the database has not
// seen yet, each with its version bump in one transaction.
func upgradeSchema(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return fmt.Errorf("enabling WAL: %w", err)
	}
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	if version > len(schemaSteps) {
		return fmt.Errorf("schema version %d is newer than this build (%d)", version, len(schemaSteps))
	}

	for ; version < len(schemaSteps); version++ {
		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(schemaSteps[version]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("schema step %d: %w", version+1, err)
		}
		// PRAGMA does not take bind parameters.
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", version+1)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("schema step %d: %w", version+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("schema step %d: %w", version+1, err)
		}
	}
	return nil
}
