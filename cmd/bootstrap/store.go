package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"skillmesh/internal/entitystore"
	"skillmesh/internal/entitystore/memoryengine"
	"skillmesh/internal/entitystore/postgresengine"
	"skillmesh/internal/pkg/config"
	"skillmesh/internal/usecase/commands"
	"skillmesh/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var StoreModule = fx.Module("store",
	fx.Provide(
		fx.Annotate(
			NewEntityStore,
			fx.As(new(entitystore.Store)),
			fx.As(new(commands.EntityStore)),
			fx.As(new(queries.EntityStore)),
		),
	),
)

// NewEntityStore selects the append-only engine from config. The postgres
// engine owns a pool for the process lifetime; the memory engine serves
// local runs without external services.
func NewEntityStore(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (entitystore.Store, error) {
	switch cfg.Store.Engine {
	case "memory":
		logger.Warn("using in-memory entity store, records do not survive restarts")
		return memoryengine.New(), nil

	case "postgres":
		pool, err := pgxpool.New(context.Background(), cfg.Store.BuildDSN())
		if err != nil {
			return nil, fmt.Errorf("failed to create store pool: %w", err)
		}

		engine, err := postgresengine.New(pool,
			postgresengine.WithTableName(cfg.Store.Table),
			postgresengine.WithLogger(logger),
		)
		if err != nil {
			pool.Close()
			return nil, err
		}

		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return engine.EnsureSchema(ctx)
			},
			OnStop: func(_ context.Context) error {
				pool.Close()
				return nil
			},
		})
		return engine, nil

	default:
		return nil, fmt.Errorf("unknown store engine %q", cfg.Store.Engine)
	}
}
