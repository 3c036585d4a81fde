// Package telemetry persists processed readings and trigger firings to a
// local sqlite database. The active smoothing buffer stays in statfilter;
// this sink only records history for later inspection.
package telemetry

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"

	"codeberg.org/mutker/sensorctl/internal/errors"
	"codeberg.org/mutker/sensorctl/internal/logger"

	_ "github.com/mattn/go-sqlite3"
)

type sqliteRepository struct {
	db *sql.DB
	mu sync.Mutex
}

// No-op implementation used when telemetry is disabled
type noopRecorder struct{}

func NewRecorder(cfg Config) (Recorder, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	if !cfg.Enabled {
		logger.Debug().Msg("Telemetry disabled, using no-op recorder")
		return &noopRecorder{}, nil
	}

	logger.Debug().Msgf("Initializing telemetry repository at: %s", cfg.DBPath)

	// Ensure the directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), defaultDirPerm); err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	db, err := sql.Open("sqlite3", cfg.DBPath)
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	return &sqliteRepository{
		db: db,
	}, nil
}

func (r *sqliteRepository) RecordSample(ctx context.Context, sample *Sample) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	errFactory := errors.New()
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO samples (timestamp, source, raw, smoothed)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(timestamp, source) DO UPDATE SET
            raw = excluded.raw,
            smoothed = excluded.smoothed
    `,
		sample.Timestamp.Unix(),
		sample.Source,
		sample.Raw,
		sample.Smoothed,
	)
	if err != nil {
		return errFactory.Wrap(ErrStorageAccess, err)
	}

	return nil
}

func (r *sqliteRepository) RecordEvent(ctx context.Context, event *Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	errFactory := errors.New()
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO events (timestamp, trigger_name, value, threshold)
        VALUES (?, ?, ?, ?)
    `,
		event.Timestamp.Unix(),
		event.Trigger,
		event.Value,
		event.Threshold,
	)
	if err != nil {
		return errFactory.Wrap(ErrStorageAccess, err)
	}

	return nil
}

func (r *sqliteRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	errFactory := errors.New()
	if err := r.db.Close(); err != nil {
		return errFactory.Wrap(ErrStorageClose, err)
	}

	return nil
}

func (*noopRecorder) RecordSample(_ context.Context, _ *Sample) error {
	return nil
}

func (*noopRecorder) RecordEvent(_ context.Context, _ *Event) error {
	return nil
}

func (*noopRecorder) Close() error {
	return nil
}
