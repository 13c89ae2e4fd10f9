package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/your-org/persondir/internal/config"
)

// Open returns the person store selected by cfg.Storage.Driver and a func
// that releases it. The Postgres schema is migrated before returning.
func Open(ctx context.Context, cfg *config.Config) (PersonStore, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		slog.Warn("using in-memory person store; data is lost on restart")
		return NewMemoryStore(), func() {}, nil

	case config.DriverPostgres:
		db, err := NewPostgresStore(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		return db, db.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// OpenPictures connects to MinIO and ensures the bucket. It returns nil when
// no endpoint is configured.
func OpenPictures(ctx context.Context, cfg config.MinIOConfig) (*MinIOStore, error) {
	if cfg.Endpoint == "" {
		return nil, nil
	}
	s, err := NewMinIOStore(cfg)
	if err != nil {
		return nil, err
	}
	if err := s.EnsureBucket(ctx); err != nil {
		slog.Warn("ensure minio bucket", "bucket", cfg.Bucket, "error", err)
	}
	return s, nil
}
