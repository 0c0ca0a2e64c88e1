package factory

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/lorettarehm/audhd.ai/internal/config"
	storepkg "github.com/lorettarehm/audhd.ai/internal/store"
	storepg "github.com/lorettarehm/audhd.ai/internal/store/postgres"
	storesqlite "github.com/lorettarehm/audhd.ai/internal/store/sqlite"
)

// NewStore opens the store selected by cfg.DBDriver and makes sure its schema
// exists. The returned *sql.DB is owned by the caller.
func NewStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (storepkg.Store, *sql.DB, error) {
	var (
		db     *sql.DB
		err    error
		ensure func(context.Context, *sql.DB) error
		wrap   func(*sql.DB) storepkg.Store
	)
	switch cfg.DBDriver {
	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, nil, fmt.Errorf("JOURNAL_POSTGRES_DSN is required when DB_DRIVER=postgres")
		}
		db, err = storepg.Open(cfg.PostgresDSN)
		ensure, wrap = storepg.EnsureSchema, storepg.NewWithDB
	case "sqlite":
		if cfg.SQLitePath == "" {
			return nil, nil, fmt.Errorf("JOURNAL_SQLITE_PATH is required when DB_DRIVER=sqlite")
		}
		db, err = storesqlite.Open(cfg.SQLitePath)
		ensure, wrap = storesqlite.EnsureSchema, storesqlite.NewWithDB
	default:
		return nil, nil, fmt.Errorf("unknown DB_DRIVER: %s", cfg.DBDriver)
	}
	if err != nil {
		return nil, nil, err
	}

	// The schema must exist before the first request, so this runs inline.
	bootstrapTimeout := time.Duration(cfg.BootstrapTimeoutSeconds) * time.Second
	if bootstrapTimeout <= 0 {
		bootstrapTimeout = 5 * time.Second
	}
	bootstrapCtx, cancel := context.WithTimeout(ctx, bootstrapTimeout)
	defer cancel()
	if err := ensure(bootstrapCtx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("%s schema bootstrap: %w", cfg.DBDriver, err)
	}
	log.Debug().Str("driver", cfg.DBDriver).Msg("store schema ready")
	return wrap(db), db, nil
}
