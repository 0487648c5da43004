// Package httpapi assembles the gin engine that fronts the session
// manager: session lifecycle, the WebSocket bridge, audit reads, health
// checks and swagger docs, mirroring the teacher's internal/routes.Router.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/btb36/escpos-emulator/internal/auditstore"
	"github.com/btb36/escpos-emulator/internal/config"
	"github.com/btb36/escpos-emulator/internal/database"
	"github.com/btb36/escpos-emulator/internal/middleware"
	"github.com/btb36/escpos-emulator/internal/session"
	"github.com/btb36/escpos-emulator/internal/utils"
)

// Router holds all dependencies for routing.
type Router struct {
	config  *config.Config
	logger  *zap.Logger
	db      *database.DB
	manager *session.Manager
	store   *auditstore.Repository
}

// NewRouter creates a new router instance.
func NewRouter(cfg *config.Config, logger *zap.Logger, db *database.DB, manager *session.Manager, store *auditstore.Repository) *Router {
	return &Router{
		config:  cfg,
		logger:  logger,
		db:      db,
		manager: manager,
		store:   store,
	}
}

// SetupRouter creates and configures the Gin engine.
func (r *Router) SetupRouter() *gin.Engine {
	if r.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	r.addMiddleware(router)
	r.addRoutes(router)

	return router
}

func (r *Router) addMiddleware(router *gin.Engine) {
	router.Use(middleware.RecoveryMiddleware(r.logger))
	router.Use(middleware.RequestIDMiddleware())

	serviceLogger := utils.NewServiceLogger(r.logger, "http-server")
	router.Use(middleware.LoggingMiddleware(serviceLogger))

	router.Use(middleware.CORSMiddleware(&r.config.Security))
	router.Use(middleware.RateLimitMiddleware(&r.config.Security, r.logger))

	r.logger.Info("middleware configured")
}

func (r *Router) addRoutes(router *gin.Engine) {
	healthHandler := NewHealthHandler(r.db, r.config, r.logger)
	sessionHandler := NewSessionHandler(r.manager, &r.config.Logging, r.logger)
	auditHandler := NewAuditHandler(r.store, r.logger)

	healthHandler.RegisterRoutes(router.Group(""))

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/sessions", sessionHandler.CreateSession)
		apiV1.GET("/sessions/:session_id/audit", auditHandler.ListRecords)
	}

	ws := router.Group("/ws")
	{
		ws.GET("/sessions/:session_id", sessionHandler.HandleConnection)
	}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
	router.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})

	r.logger.Info("all routes configured")
}
