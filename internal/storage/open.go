package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/claude/liftlog/internal/config"
	"github.com/claude/liftlog/internal/storage/local"
	"github.com/claude/liftlog/internal/tracker"
)

// Compile-time checks: both stores satisfy the tracker contract.
var (
	_ tracker.BatchStore = (*DB)(nil)
	_ tracker.Store      = (*DB)(nil)
	_ tracker.Store      = (*local.Store)(nil)
	_ tracker.BatchStore = (*local.Store)(nil)
)

// Backend is the store selected by storage.driver.
type Backend struct {
	Store tracker.Store
	DB    *DB // nil unless the driver is postgres
	close func()
}

// Close releases the store.
func (b *Backend) Close() {
	if b.close != nil {
		b.close()
	}
}

// Open opens the configured store. For postgres it applies the migrations
// in migrationsPath first.
func Open(ctx context.Context, cfg *config.Config, migrationsPath string, log *slog.Logger) (*Backend, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		st, err := local.Open(cfg.Local.Path)
		if err != nil {
			return nil, err
		}
		log.Info("sqlite store opened", "path", cfg.Local.Path)
		return &Backend{Store: st, close: func() { st.Close() }}, nil

	case config.DriverPostgres:
		dsn := cfg.Database.DSN()
		version, err := RunMigrations(dsn, migrationsPath)
		if err != nil {
			return nil, err
		}
		log.Info("migrations applied", "version", version)

		db, err := New(ctx, dsn)
		if err != nil {
			return nil, err
		}
		log.Info("database connected")
		return &Backend{Store: db, DB: db, close: db.Close}, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}
