package router // package router defines how HTTP routes are registered for the API

import (
	"database/sql"

	"github.com/labstack/echo/v4" // Echo web framework for routing
	"github.com/redis/go-redis/v9"

	"github.com/global-DevLabs/zet-asociatie-sub002/internal/config"
	"github.com/global-DevLabs/zet-asociatie-sub002/internal/handler"
	"github.com/global-DevLabs/zet-asociatie-sub002/internal/middleware"
	"github.com/global-DevLabs/zet-asociatie-sub002/internal/repository"
	queue_publisher "github.com/global-DevLabs/zet-asociatie-sub002/internal/service"
)

// Register wires every route of the application onto the provided Echo
// instance.  The edge gate runs first on all requests; strict verification
// is applied per group so public endpoints (login, setup, health) stay
// reachable without an identity.
func Register(e *echo.Echo, cfg config.Config, db *sql.DB, rdb *redis.Client) {
	// Redirect policy runs before everything else and performs no I/O.
	e.Use(middleware.EdgeGate())

	e.GET("/healthz", handler.Health)

	users := repository.NewUserRepo(db)
	members := repository.NewMemberRepo(db)
	payments := repository.NewPaymentRepo(db)
	activities := repository.NewActivityRepo(db)
	codes := repository.NewSequenceRepo(db)

	authH := handler.NewAuthHandler(cfg, users)
	memberH := handler.NewMemberHandler(members, codes, queue_publisher.PublishAudit)
	paymentH := handler.NewPaymentHandler(payments, codes, queue_publisher.PublishAudit)
	activityH := handler.NewActivityHandler(activities, queue_publisher.PublishAudit)

	// Unauthenticated auth endpoints.  Login gets the Redis token bucket so
	// credential stuffing burns through a small per-IP budget.
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	g := e.Group("/v1/auth")
	g.POST("/login", authH.Login, limiter)
	g.POST("/logout", authH.Logout)

	// First-run setup; conflicts once any user exists.
	e.POST("/api/setup", authH.Setup)

	// Everything below requires a cryptographically verified identity.
	api := e.Group("/v1")
	api.Use(middleware.AuthGuard(cfg.JWTSecret))

	api.GET("/me", authH.Me)

	api.GET("/members", memberH.List)
	api.POST("/members", memberH.Create)
	api.GET("/members/:id", memberH.Get)
	api.PUT("/members/:id", memberH.Update)
	api.DELETE("/members/:id", memberH.Delete)

	api.GET("/payments", paymentH.List)
	api.POST("/payments", paymentH.Create)
	api.GET("/payments/:id", paymentH.Get)
	api.DELETE("/payments/:id", paymentH.Delete)

	api.GET("/activities", activityH.List)
	api.POST("/activities", activityH.Create)
	api.GET("/activities/:id", activityH.Get)
	api.PUT("/activities/:id", activityH.Update)
	api.POST("/activities/:id/archive", activityH.Archive)
	api.POST("/activities/:id/reactivate", activityH.Reactivate)
}
