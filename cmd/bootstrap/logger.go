package bootstrap

import (
	"log/slog"

	"skillmesh/internal/handler/middleware"
	"skillmesh/internal/pkg/config"

	"go.uber.org/fx"
)

var LoggerModule = fx.Module("logger",
	fx.Provide(
		NewLogger,
	),
)

// NewLogger builds the process-wide slog logger from config. The middleware
// package owns handler construction so request logging and application
// logging share one configuration.
func NewLogger(cfg config.Config) *slog.Logger {
	return middleware.NewLogger(cfg.Log).GetSlogLogger()
}
