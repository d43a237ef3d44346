package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/callqa/slangcheck/internal/altsource"
	"github.com/callqa/slangcheck/internal/common"
	"github.com/callqa/slangcheck/internal/config"
	"github.com/callqa/slangcheck/internal/service"
	"github.com/callqa/slangcheck/internal/storage"
)

const (
	defaultDBPath     = "~/.local/share/slangcheck/slangcheck.db"
	durationPrecision = 10 * time.Millisecond
)

// openStorage opens the local store and applies pending migrations.
func openStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	dbPath = config.ExpandPath(dbPath)

	db, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// closeStorage closes the store, logging rather than failing on error.
func closeStorage(db *storage.SQLiteStorage) {
	if err := db.Close(); err != nil {
		common.LogError(err, "Failed to close database", nil)
	}
}

// openAlternateSource connects to the secondary transcription database when a
// DSN is configured. Returns a nil source (and a no-op cleanup) when it is
// not; callers treat that as cross-verification being unavailable.
func openAlternateSource(ctx context.Context) (service.AlternateSource, func(), error) {
	dsn := viper.GetString("altsource.dsn")
	if dsn == "" {
		return nil, func() {}, nil
	}

	pool, err := altsource.NewPool(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to alternate transcription database: %w", err)
	}

	return altsource.NewPostgresSource(pool), pool.Close, nil
}
