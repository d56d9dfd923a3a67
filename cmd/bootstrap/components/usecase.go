package components

import (
	"skillmesh/internal/infra/txvalidator"
	"skillmesh/internal/pkg/clock"
	"skillmesh/internal/usecase/commands"
	"skillmesh/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	fx.Annotate(
		txvalidator.New,
		fx.As(new(commands.TxValidator)),
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewProfileQueries,
		queries.NewPostQueries,
		queries.NewSessionQueries,
	),
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewProfileCommands,
		commands.NewPostCommands,
		commands.NewSessionCommands,
	),
)
