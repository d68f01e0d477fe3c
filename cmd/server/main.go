package main // Entry point package

import (
	"log" // Logging library

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/global-DevLabs/zet-asociatie-sub002/internal/config"
	"github.com/global-DevLabs/zet-asociatie-sub002/internal/database"
	"github.com/global-DevLabs/zet-asociatie-sub002/internal/queue"
	"github.com/global-DevLabs/zet-asociatie-sub002/internal/router"
)

func main() {
	cfg := config.Load() // Load environment config

	db, err := database.Shared(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting disabled")
	}

	// Background audit trail consumer; reconnects on its own.
	go func() {
		if err := queue.StartAuditConsumer(); err != nil {
			log.Printf("audit consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.Register(e, cfg, db, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err)
	}
}
