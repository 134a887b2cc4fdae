package storage

import (
	"context"
	"fmt"

	"github.com/Varun5711/expense-tracker/internal/config"
	"github.com/Varun5711/expense-tracker/internal/database"
)

// Open connects the backend selected by cfg.Driver and makes sure its schema exists.
func Open(ctx context.Context, cfg config.DatabaseConfig) (Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		conn, err := database.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return NewSQLiteStorage(conn), nil

	case config.DriverPostgres:
		db, err := database.NewDBManager(ctx, database.Config{
			PrimaryDSN:      cfg.PrimaryDSN,
			ReplicaDSNs:     cfg.ReplicaDSNs,
			MaxConns:        cfg.MaxConns,
			MinConns:        cfg.MinConns,
			MaxConnLifetime: cfg.MaxConnLifetime,
			MaxConnIdleTime: cfg.MaxConnIdleTime,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		return NewPostgresStorage(db), nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
