package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"skillmesh/internal/handler/api"
	"skillmesh/internal/handler/middleware"
	"skillmesh/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(
	engine *gin.Engine,
	cfg config.Config,
	profileHandler *api.ProfileHandler,
	postHandler *api.PostHandler,
	sessionHandler *api.SessionHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, profileHandler, postHandler, sessionHandler, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(nil, cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(
	engine *gin.Engine,
	profileHandler *api.ProfileHandler,
	postHandler *api.PostHandler,
	sessionHandler *api.SessionHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		profiles := apiGroup.Group("/profiles")
		{
			addRoutes(profiles, []route{
				{Method: http.MethodGet, Path: "/:wallet", Handler: profileHandler.GetProfile},
				{Method: http.MethodGet, Path: "/:wallet/history", Handler: profileHandler.GetProfileHistory},
				{Method: http.MethodGet, Path: "/:wallet/availability", Handler: profileHandler.GetAvailability},
			})

			authRequired := profiles.Group("")
			authRequired.Use(authMiddleware.RequireAuth())
			addRoutes(authRequired, []route{
				{Method: http.MethodPost, Path: "", Handler: profileHandler.UpsertProfile},
				{Method: http.MethodDelete, Path: "", Handler: profileHandler.DeleteProfile},
				{Method: http.MethodPut, Path: "/availability", Handler: profileHandler.SetAvailability},
			})
		}

		posts := apiGroup.Group("/posts")
		{
			addRoutes(posts, []route{
				{Method: http.MethodGet, Path: "", Handler: postHandler.ListPosts},
			})

			authRequired := posts.Group("")
			authRequired.Use(authMiddleware.RequireAuth())
			addRoutes(authRequired, []route{
				{Method: http.MethodPost, Path: "", Handler: postHandler.CreatePost},
			})
		}

		sessions := apiGroup.Group("/sessions")
		sessions.Use(authMiddleware.RequireAuth())
		{
			addRoutes(sessions, []route{
				{Method: http.MethodPost, Path: "", Handler: sessionHandler.CreateSession},
				{Method: http.MethodGet, Path: "", Handler: sessionHandler.ListSessions},
				{Method: http.MethodGet, Path: "/:key", Handler: sessionHandler.GetSession},
				{Method: http.MethodPost, Path: "/:key/confirm", Handler: sessionHandler.ConfirmSession},
				{Method: http.MethodPost, Path: "/:key/reject", Handler: sessionHandler.RejectSession},
				{Method: http.MethodPost, Path: "/:key/payment", Handler: sessionHandler.SubmitPayment},
				{Method: http.MethodPost, Path: "/:key/payment/validate", Handler: sessionHandler.ValidatePayment},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
