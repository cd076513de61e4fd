package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"opsdesk/internal/interfaces/http/handlers"
	"opsdesk/internal/interfaces/http/middleware"
	"opsdesk/internal/shared/logger"
)

// Router wires the HTTP surface of the sync engine.
type Router struct {
	engine      *gin.Engine
	syncHandler *handlers.SyncHandler
}

func NewRouter(syncService handlers.SyncService, log logger.Interface) *Router {
	engine := gin.New()
	engine.Use(middleware.Logger(log))
	engine.Use(middleware.Recovery())

	return &Router{
		engine:      engine,
		syncHandler: handlers.NewSyncHandler(syncService, log),
	}
}

// SetupRoutes registers all API routes.
func (r *Router) SetupRoutes() {
	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.engine.Group("/api")
	{
		syncGroup := api.Group("/sync")
		{
			syncGroup.POST("", r.syncHandler.TriggerSync)
			syncGroup.GET("/status", r.syncHandler.GetStatus)
			syncGroup.GET("/runs", r.syncHandler.ListRuns)
			syncGroup.POST("/stop", r.syncHandler.StopSync)
		}
	}
}

// GetEngine returns the underlying gin engine.
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
