// Package router wires configuration into a ready gin engine.
package router

import (
	"context"
	"net/http"

	"github.com/arnavshah/autoschedule-api/pkg/auth"
	"github.com/arnavshah/autoschedule-api/pkg/config"
	"github.com/arnavshah/autoschedule-api/pkg/database"
	"github.com/arnavshah/autoschedule-api/pkg/handlers"
	"github.com/arnavshah/autoschedule-api/pkg/logging"
	"github.com/arnavshah/autoschedule-api/pkg/metrics"
	"github.com/arnavshah/autoschedule-api/pkg/travel"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Version is reported by the root route
const Version = "1.0.0"

// New registers every route on a fresh engine
func New(h *handlers.Handler, metricsHandler http.Handler, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(logging.GinLogger(logger), gin.Recovery())
	if h.Metrics != nil {
		r.Use(metrics.Middleware(h.Metrics))
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Autoschedule API",
			"version": Version,
		})
	})
	if metricsHandler != nil {
		r.GET("/metrics", gin.WrapH(metricsHandler))
	}

	r.POST("/admin/login", h.Login)

	admin := r.Group("/admin")
	admin.Use(h.AuthMiddleware())
	{
		admin.POST("/keys", h.GenerateKey)
		admin.GET("/keys", h.ListKeys)
		admin.PUT("/keys/:id", h.UpdateKeyLimit)
		admin.DELETE("/keys/:id", h.RevokeKey)
		admin.GET("/usage/:id", h.GetUsage)
	}

	api := r.Group("/api")
	api.Use(h.AccessMiddleware())
	{
		api.POST("/autoschedule", h.Autoschedule)
		api.POST("/autoschedule/stored", h.AutoscheduleStored)
		api.POST("/validate", h.ValidateInput)
		api.POST("/poll", h.Poll)
		api.POST("/route", h.Route)
		api.GET("/usage", h.GetMyUsage)

		api.GET("/events", h.ListEvents)
		api.POST("/events", h.CreateEvent)
		api.PUT("/events/:id", h.UpdateEvent)
		api.DELETE("/events/:id", h.DeleteEvent)

		api.GET("/workflows", h.ListWorkflows)
		api.POST("/workflows", h.CreateWorkflow)
		api.PUT("/workflows/:id", h.UpdateWorkflow)
		api.DELETE("/workflows/:id", h.DeleteWorkflow)
	}

	return r
}

// Setup opens the store, builds the travel-time oracle chain and returns the
// engine together with a cleanup func.
func Setup(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*gin.Engine, func(), error) {
	db, err := database.InitDB(database.Config{
		DatabaseURL: cfg.DatabaseURL,
		DataPath:    cfg.DataPath,
		Debug:       cfg.IsDevelopment(),
	})
	if err != nil {
		return nil, nil, err
	}

	created, err := auth.EnsureAdminExists(db, cfg.AdminUsername, cfg.AdminPassword)
	if err != nil {
		logger.Warn().Err(err).Msg("admin user not created")
	} else if created {
		logger.Info().Str("username", cfg.AdminUsername).Msg("default admin user created")
	}

	prom := metrics.NewPrometheus()
	directions := travel.NewDirectionsClient(travel.ClientConfig{
		BaseURL:       cfg.DirectionsBaseURL,
		APIKey:        cfg.APIKey,
		Timeout:       cfg.OracleTimeout,
		RatePerSecond: cfg.OracleRate,
	}, logger)

	var oracle travel.Oracle = travel.Observe(directions, prom)
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	if cfg.RedisAddr != "" {
		cacheCfg := travel.CacheConfig{
			RedisAddr:     cfg.RedisAddr,
			RedisPassword: cfg.RedisPassword,
			RedisDB:       cfg.RedisDB,
			TTL:           cfg.TravelCacheTTL,
		}
		client, err := travel.OpenRedis(ctx, cacheCfg)
		if err != nil {
			logger.Warn().Err(err).Msg("Redis cache unavailable, running without travel-time cache")
		} else {
			logger.Info().Str("addr", cfg.RedisAddr).Msg("travel-time cache initialized")
			cache := travel.NewRedisCache(oracle, client, cacheCfg, logger)
			oracle = cache
			dbCleanup := cleanup
			cleanup = func() {
				_ = cache.Close()
				dbCleanup()
			}
		}
	}

	h := &handlers.Handler{
		DB:                db,
		Oracle:            oracle,
		Routes:            directions,
		Metrics:           prom,
		Logger:            logger,
		AccessToken:       cfg.AccessToken,
		JWTSecret:         cfg.JWTSecret,
		HorizonDays:       cfg.HorizonDays,
		OracleConcurrency: cfg.OracleConcurrency,
	}
	return New(h, prom.Handler(), logger), cleanup, nil
}
