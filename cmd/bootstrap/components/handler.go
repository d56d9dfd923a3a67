package components

import (
	"skillmesh/internal/handler"
	"skillmesh/internal/handler/api"
	"skillmesh/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewProfileHandler,
		api.NewPostHandler,
		api.NewSessionHandler,
		middleware.NewAuthMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)
