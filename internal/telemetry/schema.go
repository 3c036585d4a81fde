package telemetry

import (
	"database/sql"

	"codeberg.org/mutker/sensorctl/internal/errors"
)

func initSchema(db *sql.DB) error {
	errFactory := errors.New()

	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS samples (
            timestamp INTEGER NOT NULL,
            source TEXT NOT NULL,
            raw REAL,
            smoothed REAL,
            PRIMARY KEY (timestamp, source)
        )
    `)
	if err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}

	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS events (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            timestamp INTEGER NOT NULL,
            trigger_name TEXT NOT NULL,
            value REAL,
            threshold REAL
        )
    `)
	if err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}

	return nil
}
