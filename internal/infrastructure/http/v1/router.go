// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	appctx "tillpoint/internal/core/context"
	"tillpoint/internal/domain/auth"
	"tillpoint/internal/domain/catalog"
	"tillpoint/internal/domain/discount"
	"tillpoint/internal/domain/invoice"
	"tillpoint/internal/domain/returns"
	"tillpoint/internal/domain/session"
	"tillpoint/internal/infrastructure/http/v1/handlers"
	"tillpoint/internal/infrastructure/http/v1/middleware"
	"tillpoint/pkg/logger"
)

// RouterConfig holds everything the HTTP surface depends on.
type RouterConfig struct {
	Logger *logger.Logger

	// Pool is used for readiness checks only.
	Pool *pgxpool.Pool

	JWT      *auth.JWTService
	Registry *session.Registry

	Catalog  catalog.Provider
	Items    handlers.ItemGetter
	Settings catalog.SettingsProvider
	Rules    *discount.Resolver

	Commit  *invoice.Service
	Emitter *returns.Emitter
}

// sessionValidator adapts JWTService to the auth middleware.
type sessionValidator struct {
	jwt *auth.JWTService
}

func (v sessionValidator) ValidateToken(tokenString string) (*appctx.SessionContext, error) {
	claims, err := v.jwt.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return claims.ToSessionContext(), nil
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	base := handlers.NewBaseHandler()

	// Health endpoints (no auth)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("", healthHandler.Ready)
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	apiV1 := router.Group("/api/v1")
	{
		// Session open is the only unauthenticated endpoint.
		sessionHandler := handlers.NewSessionHandler(base, cfg.JWT, cfg.Registry)
		apiV1.POST("/sessions", sessionHandler.Open)

		protected := apiV1.Group("")
		protected.Use(middleware.Auth(sessionValidator{jwt: cfg.JWT}))

		catalogHandler := handlers.NewCatalogHandler(base, cfg.Catalog)
		protected.GET("/catalog", catalogHandler.List)

		draftHandler := handlers.NewDraftHandler(base, cfg.Registry, cfg.Catalog, cfg.Settings, cfg.Rules, cfg.Commit)
		draftGroup := protected.Group("/draft")
		{
			draftGroup.GET("", draftHandler.Get)
			draftGroup.POST("/lines", draftHandler.AddLine)
			draftGroup.PUT("/lines/:itemId", draftHandler.UpdateLine)
			draftGroup.DELETE("/lines/:itemId", draftHandler.RemoveLine)
			draftGroup.POST("/commit", draftHandler.Commit)
		}

		queueHandler := handlers.NewQueueHandler(base, cfg.Registry)
		draftGroup.POST("/park", queueHandler.Park)
		queueGroup := protected.Group("/queue")
		{
			queueGroup.GET("", queueHandler.List)
			queueGroup.POST("/:draftId/resume", queueHandler.Resume)
			queueGroup.DELETE("/:draftId", queueHandler.Discard)
		}

		returnHandler := handlers.NewReturnHandler(base, cfg.Items, cfg.Settings, cfg.Emitter)
		protected.POST("/returns/manual", returnHandler.CreateManual)
	}

	return router
}
