package bootstrap

import (
	"skillmesh/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	StoreModule,
	JWTModule,
	components.ResolveModule,
	components.UseCaseModule,
	components.HandlerModule,
)
