package components

import (
	"log/slog"

	"skillmesh/internal/pkg/config"
	"skillmesh/internal/reconcile"
	"skillmesh/internal/resolve"
	"skillmesh/internal/usecase/commands"
	"skillmesh/internal/usecase/queries"

	"go.uber.org/fx"
)

// ResolveModule wires canonical-state resolution and write reconciliation
// on top of the entity store.
var ResolveModule = fx.Module("resolve",
	fx.Provide(
		fx.Annotate(
			resolve.New,
			fx.As(new(commands.CanonicalResolver)),
			fx.As(new(queries.CanonicalResolver)),
		),
		fx.Annotate(
			NewReconciler,
			fx.As(new(commands.ConflictReconciler)),
		),
	),
)

func NewReconciler(cfg config.Config, logger *slog.Logger) *reconcile.Reconciler {
	return reconcile.New(cfg.Reconcile, logger)
}
